package command

import (
	"context"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cuongbtq/fieldservice-be/internal/bootstrap"
)

type MigrateCommand struct {
	Options *Options
}

func (cmd MigrateCommand) Command(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back the PostgreSQL schema",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(_ *cobra.Command, args []string) error {
			return cmd.run(ctx, args[0])
		},
	}
}

func (cmd MigrateCommand) run(_ context.Context, direction string) error {
	cfg, appLogger, err := cmd.Options.load()
	if err != nil {
		return err
	}
	defer appLogger.Close()

	db, err := bootstrap.InitPostgreSQL(&cfg.Database, appLogger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to connect to postgresql")
	}
	defer db.Close()

	switch direction {
	case "up":
		return db.MigrateUp(cfg.Database.MigrationsPath)
	case "down":
		return db.MigrateDown(cfg.Database.MigrationsPath)
	default:
		return errors.Errorf("migration command %q is not supported", direction)
	}
}
