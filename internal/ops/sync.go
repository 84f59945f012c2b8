package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/plusblocks/internal/bulksync"
	"github.com/hpungsan/plusblocks/internal/errors"
)

// SyncInput contains parameters for the SyncCatalog operation.
type SyncInput struct {
	Category     string // optional; required with Block
	Block        string // optional single-block mode
	Force        bool
	MetadataOnly bool
	Verbose      bool
}

// SyncCatalog checks the session and runs a bulk sync.
func SyncCatalog(ctx context.Context, env *Env, input SyncInput) (*bulksync.Report, error) {
	if env.Syncer == nil {
		return nil, errors.NewInvalidRequest("sync is not available in this mode")
	}
	category, err := parseOptionalContext(input.Category)
	if err != nil {
		return nil, err
	}
	slug := strings.TrimSpace(input.Block)
	if slug != "" && category == "" {
		return nil, errors.NewInvalidRequest("block requires a category")
	}
	if err := env.requireAuth(); err != nil {
		return nil, err
	}
	return env.Syncer.Run(ctx, bulksync.Options{
		Context:      category,
		Block:        slug,
		Force:        input.Force,
		MetadataOnly: input.MetadataOnly,
		Verbose:      input.Verbose,
	})
}
