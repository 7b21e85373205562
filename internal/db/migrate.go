package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

// Reset drops the dataset tables and recreates them empty, with their indices.
func (d *Database) Reset(ctx context.Context) error {
	if d.config.ReadOnly {
		return errors.New("cannot reset a store opened read-only")
	}

	// migrate closes the connection it is given, so it gets its own.
	migrateDb, err := open(ctx, d.config)
	if err != nil {
		return err
	}

	m, err := d.newMigrate(migrateDb)
	if err != nil {
		_ = migrateDb.Close()
		return err
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnf("error closing migration: source %v, database %v", srcErr, dbErr)
		}
	}()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.WithMessagef(ErrSchemaMissing, "dropping dataset tables: %v", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.WithMessagef(ErrSchemaMissing, "creating dataset tables: %v", err)
	}
	log.WithField("driver", d.config.Driver).Debug("dataset schema reset")
	return nil
}

func (d *Database) newMigrate(sqlDb *sql.DB) (*migrate.Migrate, error) {
	dir := "migrations/postgres"
	if d.Dialect() == DialectSQLite {
		dir = "migrations/sqlite"
	}
	source, err := iofs.New(migrations, dir)
	if err != nil {
		return nil, errors.Wrap(err, "loading embedded migrations")
	}

	driver, err := migrationDriver(d.config.Driver, sqlDb)
	if err != nil {
		_ = source.Close()
		return nil, errors.Wrapf(err, "preparing %s migration driver", d.config.Driver)
	}

	m, err := migrate.NewWithInstance("iofs", source, d.config.Driver, driver)
	if err != nil {
		return nil, errors.Wrap(err, "preparing migration")
	}
	return m, nil
}

func migrationDriver(driver string, sqlDb *sql.DB) (database.Driver, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.WithInstance(sqlDb, &sqlite.Config{})
	case DriverPgx:
		return pgxmigrate.WithInstance(sqlDb, &pgxmigrate.Config{})
	default:
		return postgres.WithInstance(sqlDb, &postgres.Config{})
	}
}
