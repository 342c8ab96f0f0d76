package commands

import (
	"context"

	"workspace-identity/internal/store/postgres"
)

type MigrateCmd struct{}

func (m *MigrateCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, log := newLogger(ctx, cfg, globals)

	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}
	log.Info("migrations applied")
	return nil
}
