package nakama

import (
	"context"
	"database/sql"

	"mahjong/internal/app"
	"mahjong/internal/bot"
	"mahjong/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, hooks and the match handler for the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := config.LoadGameConfig("data/game_config.json"); err != nil {
		logger.Warn("InitModule: Could not load game config: %v", err)
	}
	if err := bot.LoadIdentities("data/bot_identities.json"); err != nil {
		logger.Warn("InitModule: Could not load bot identities: %v", err)
	} else if err := bot.ProvisionBots(ctx, nk, logger); err != nil {
		logger.Warn("InitModule: Could not provision bots: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if secret := env["mahjong_identity_secret"]; secret != "" {
		verifier := app.NewIdentityVerifier(secret, env["mahjong_identity_issuer"])
		if err := initializer.RegisterBeforeAuthenticateCustom(MakeBeforeAuthenticateCustom(verifier)); err != nil {
			return err
		}
	}

	if err := initializer.RegisterMatch(MatchNameMahjong, NewMatch); err != nil {
		return err
	}

	logger.Info("Mahjong Go module loaded.")
	return nil
}
