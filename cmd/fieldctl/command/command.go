// Package command holds the fieldctl subcommands.
package command

import (
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/bootstrap"
	"github.com/cuongbtq/fieldservice-be/internal/config"
	"github.com/cuongbtq/fieldservice-be/shared/logger"
)

// Options are the flags shared by every subcommand
type Options struct {
	ConfigPath string
}

func (o *Options) load() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load config")
	}

	appLogger, err := bootstrap.InitLogger(&cfg.Logging, "fieldctl")
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to initialize logger")
	}
	return cfg, appLogger, nil
}
