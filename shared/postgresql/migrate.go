package postgresql

import (
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratePsql "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

// MigrateUp applies all pending migrations found under dir
func (c *Client) MigrateUp(dir string) error {
	m, err := c.prepareMigration(dir)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			c.logger.Info("Database schema is up to date")
			return nil
		}
		return errors.Wrap(err, "failed to apply migrations")
	}

	c.logVersion(m)
	return nil
}

// MigrateDown rolls back every applied migration
func (c *Client) MigrateDown(dir string) error {
	m, err := c.prepareMigration(dir)
	if err != nil {
		return err
	}

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "failed to roll back migrations")
	}

	c.logger.Info("Database migrations rolled back")
	return nil
}

func (c *Client) prepareMigration(dir string) (*migrate.Migrate, error) {
	driver, err := migratePsql.WithInstance(c.db.DB, &migratePsql.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migration driver")
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, c.config.Database, driver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create migrations instance")
	}
	return m, nil
}

func (c *Client) logVersion(m *migrate.Migrate) {
	version, dirty, err := m.Version()
	if err != nil {
		c.logger.Warn("Could not read migration version", slog.Any("error", err))
		return
	}
	c.logger.Info("Database migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
}
