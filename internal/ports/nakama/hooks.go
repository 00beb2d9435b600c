package nakama

import (
	"context"
	"database/sql"

	"mahjong/internal/app"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// MakeBeforeAuthenticateCustom returns a hook that swaps the opaque signed
// credential clients present for the stable player id it carries. Nakama
// then keys the account on that id, so a player keeps one account across
// sessions and devices.
func MakeBeforeAuthenticateCustom(verifier *app.IdentityVerifier) func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, in *api.AuthenticateCustomRequest) (*api.AuthenticateCustomRequest, error) {
	return func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, in *api.AuthenticateCustomRequest) (*api.AuthenticateCustomRequest, error) {
		if in.GetAccount() == nil || in.GetAccount().GetId() == "" {
			return nil, runtime.NewError("missing credential", 3)
		}

		subject, err := verifier.Verify(in.GetAccount().GetId())
		if err != nil {
			logger.Warn("BeforeAuthenticateCustom: rejected credential: %v", err)
			return nil, runtime.NewError("invalid credential", 16)
		}

		in.Account.Id = subject
		return in, nil
	}
}
