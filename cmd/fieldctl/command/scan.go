package command

import (
	"context"
	"encoding/json"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/cuongbtq/fieldservice-be/internal/bootstrap"
	"github.com/cuongbtq/fieldservice-be/internal/scan"
	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

type ScanCommand struct {
	Options *Options
}

func (cmd ScanCommand) Command(ctx context.Context) *cobra.Command {
	var organizationID string

	c := &cobra.Command{
		Use:       "scan [overdue|contracts]",
		Short:     "Run a status scan once and print the result as JSON",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{scan.NameOverdue, scan.NameContracts},
		RunE: func(c *cobra.Command, args []string) error {
			if organizationID != "" {
				if _, err := uuid.Parse(organizationID); err != nil {
					return errors.Wrap(err, "--org must be a UUID")
				}
			}
			return cmd.run(ctx, c.OutOrStdout(), args[0], organizationID)
		},
	}
	c.Flags().StringVar(&organizationID, "org", "", "Limit the scan to one organization")
	return c
}

func (cmd ScanCommand) run(ctx context.Context, out io.Writer, name, organizationID string) error {
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

	rdb, err := bootstrap.InitRedis(ctx, &cfg.Redis, appLogger.Logger)
	if err != nil {
		return errors.Wrap(err, "failed to connect to redis")
	}
	defer rdb.Close()

	store := storage.NewStorage(db.GetDB(), appLogger.Logger)
	runner := bootstrap.NewScanRunner(store, rdb, cfg.Worker.ScanLockTTL, appLogger.Logger)

	res, err := runner.Run(ctx, name, organizationID)
	if err != nil {
		return err
	}
	return writeResult(out, res)
}

func writeResult(out io.Writer, res scan.Result) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
