package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"workspace-identity/internal/store/postgres"
	"workspace-identity/internal/users"
	"workspace-identity/pkg/utils"
)

type UserCmd struct {
	Deactivate UserDeactivateCmd `cmd:"" help:"Soft-delete a user"`
	Restore    UserRestoreCmd    `cmd:"" help:"Reactivate a soft-deleted user"`
}

type UserDeactivateCmd struct {
	ID uuid.UUID `arg:"" help:"User id"`
}

func (u *UserDeactivateCmd) Run(ctx context.Context, globals *Globals) error {
	return withUsers(ctx, globals, func(ctx context.Context, svc *users.Service) error {
		if err := svc.SoftDelete(ctx, u.ID); err != nil {
			return err
		}
		fmt.Printf("user %s deactivated\n", u.ID)
		return nil
	})
}

type UserRestoreCmd struct {
	ID uuid.UUID `arg:"" help:"User id"`
}

func (u *UserRestoreCmd) Run(ctx context.Context, globals *Globals) error {
	return withUsers(ctx, globals, func(ctx context.Context, svc *users.Service) error {
		if err := svc.Restore(ctx, u.ID); err != nil {
			return err
		}
		fmt.Printf("user %s restored\n", u.ID)
		return nil
	})
}

func withUsers(ctx context.Context, globals *Globals, fn func(context.Context, *users.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, _ = newLogger(ctx, cfg, globals)

	db, err := openPostgres(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(ctx, users.NewService(postgres.New(db, utils.RetryPolicy{})))
}
