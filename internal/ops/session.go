package ops

import (
	"context"

	"github.com/hpungsan/plusblocks/internal/browser"
	"github.com/hpungsan/plusblocks/internal/errors"
)

// LoginOutput reports the session after an interactive login.
type LoginOutput struct {
	browser.AuthState
	CookieFile string `json:"cookieFile"`
}

// Login runs the interactive sign-in and reports the stored session.
func Login(ctx context.Context, env *Env) (*LoginOutput, error) {
	if env.Login == nil {
		return nil, errors.NewInvalidRequest("interactive login is not available in this mode")
	}
	if err := env.Login(ctx); err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.NewInternal(err)
	}
	state := env.Session.AuthState(env.now())
	if !state.IsAuthenticated {
		return nil, errors.NewAuthRequired()
	}
	return &LoginOutput{AuthState: state, CookieFile: env.Session.Path()}, nil
}
