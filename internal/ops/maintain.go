package ops

import (
	"github.com/hpungsan/plusblocks/internal/db"
)

// DefaultKeepRuns is how many sync runs the journal retains.
const DefaultKeepRuns = 50

// MaintainOutput reports one housekeeping pass.
type MaintainOutput struct {
	Pruned     int   `json:"pruned"`
	RunsPruned int64 `json:"runsPruned"`
}

// Maintain drops expired cache entries and trims the sync journal to keepRuns.
// keepRuns <= 0 uses DefaultKeepRuns.
func Maintain(env *Env, keepRuns int) (*MaintainOutput, error) {
	if keepRuns <= 0 {
		keepRuns = DefaultKeepRuns
	}
	cleared, err := ClearCache(env, ClearCacheInput{ExpiredOnly: true})
	if err != nil {
		return nil, err
	}
	out := &MaintainOutput{Pruned: cleared.Cleared}
	if env.Journal != nil {
		n, err := db.PruneRuns(env.Journal, keepRuns)
		if err != nil {
			return nil, err
		}
		out.RunsPruned = n
	}
	return out, nil
}
