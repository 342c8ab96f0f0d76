package commands

import (
	"context"
	"fmt"
	"time"

	"workspace-identity/internal/auth"
	"workspace-identity/internal/revocation"
)

type RevokeCmd struct {
	Token string `help:"Access or refresh token to revoke" required:"" env:"REVOKE_TOKEN"`
}

// Run revokes the token for the rest of its lifetime. The signature must verify
// so an operator cannot fill the ledger with arbitrary keys.
func (r *RevokeCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, log := newLogger(ctx, cfg, globals)

	tokens, err := auth.NewManager(cfg.Auth)
	if err != nil {
		return err
	}
	exp, err := tokens.ExtractExpiry(r.Token)
	if err != nil {
		return fmt.Errorf("inspect token: %w", err)
	}
	ttl := time.Until(exp)
	if ttl <= 0 {
		fmt.Println("token already expired; nothing to revoke")
		return nil
	}

	rdb, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	revoked, err := revocation.NewRedisLedger(rdb).Revoke(ctx, r.Token, ttl)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}
	if !revoked {
		fmt.Println("token was already revoked")
		return nil
	}
	log.Info("token revoked", "expires_at", exp.UTC().Format(time.RFC3339))
	fmt.Printf("revoked until %s\n", exp.UTC().Format(time.RFC3339))
	return nil
}
