package commands

import (
	"context"
	"encoding/json"
	"os"

	"github.com/google/uuid"

	"workspace-identity/internal/audit"
	"workspace-identity/internal/store/postgres"
)

type AuditCmd struct {
	List AuditListCmd `cmd:"" help:"Print a workspace's audit events as JSON lines, newest first"`
}

type AuditListCmd struct {
	Workspace uuid.UUID `help:"Workspace id" required:""`
	Limit     int       `help:"Maximum number of events (0 for all)" default:"50"`
}

func (a *AuditListCmd) Run(ctx context.Context, globals *Globals) error {
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

	events, err := audit.NewService(postgres.NewAuditRepo(db)).List(ctx, a.Workspace, a.Limit)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	for _, e := range events {
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
