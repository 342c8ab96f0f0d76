package main

import (
	"context"

	"github.com/alecthomas/kong"
	_ "github.com/jackc/pgx/v5/stdlib"

	"workspace-identity/cmd/identityctl/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Migrate commands.MigrateCmd `cmd:"" help:"Apply database migrations"`
		Revoke  commands.RevokeCmd  `cmd:"" help:"Revoke a bearer token until it expires"`
		User    commands.UserCmd    `cmd:"" help:"Deactivate or restore users"`
		Audit   commands.AuditCmd   `cmd:"" help:"Inspect the audit log"`
		Debug   bool                `help:"Enable debug logging."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("identityctl"),
		kong.Description("Operator tool for the workspace identity service."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
