package db

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverPgx      = "pgx"
)

// Dialect names follow goqu's registered dialects.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

var (
	ErrStoreUnreachable = errors.New("store unreachable")
	ErrSchemaMissing    = errors.New("schema missing")
)

type Config struct {
	Driver   string
	Path     string
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	// ReadOnly opens sqlite stores with query_only and refuses to create a missing file.
	ReadOnly bool
}

func DefaultConfig() Config {
	return Config{
		Driver:   DriverSQLite,
		Path:     "kernel_logs.db",
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		Name:     "postgres",
		SSLMode:  "disable",
	}
}

func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("sqlite store requires a database path")
		}
	case DriverPostgres, DriverPgx:
		if c.URL == "" && c.Host == "" {
			return errors.New("postgres store requires a url or a host")
		}
		if c.URL == "" && (c.Port <= 0 || c.Port > 65535) {
			return errors.Errorf("invalid postgres port %d", c.Port)
		}
	default:
		return errors.Errorf("unknown database driver %q; supported drivers are %s, %s and %s",
			c.Driver, DriverSQLite, DriverPostgres, DriverPgx)
	}
	return nil
}

// DSN returns the data source name handed to sql.Open.
func (c Config) DSN() string {
	if c.Driver == DriverSQLite {
		dsn := c.Path + "?_pragma=busy_timeout(5000)"
		if c.ReadOnly {
			dsn += "&_pragma=query_only(1)"
		}
		return dsn
	}
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = "sslmode=" + c.SSLMode
	}
	return u.String()
}

func (c Config) dialect() Dialect {
	if c.Driver == DriverSQLite {
		return DialectSQLite
	}
	return DialectPostgres
}

// Database is a connected store together with the driver it was opened with.
type Database struct {
	*sql.DB
	config Config
}

func Connect(ctx context.Context, config Config) (*Database, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Driver == DriverSQLite {
		if err := prepareSQLitePath(config); err != nil {
			return nil, err
		}
	}

	sqlDb, err := open(ctx, config)
	if err != nil {
		return nil, err
	}
	if config.Driver == DriverSQLite {
		sqlDb.SetMaxOpenConns(1)
	}

	log.WithFields(log.Fields{"driver": config.Driver, "read_only": config.ReadOnly}).Debug("connected to store")
	return &Database{DB: sqlDb, config: config}, nil
}

func open(ctx context.Context, config Config) (*sql.DB, error) {
	sqlDb, err := sql.Open(config.Driver, config.DSN())
	if err != nil {
		return nil, errors.WithMessagef(ErrStoreUnreachable, "opening %s store: %v", config.Driver, err)
	}
	if err := sqlDb.PingContext(ctx); err != nil {
		_ = sqlDb.Close()
		return nil, errors.WithMessagef(ErrStoreUnreachable, "pinging %s store: %v", config.Driver, err)
	}
	return sqlDb, nil
}

func prepareSQLitePath(config Config) error {
	if config.ReadOnly {
		if _, err := os.Stat(config.Path); err != nil {
			return errors.WithMessagef(ErrStoreUnreachable, "sqlite store %s: %v", config.Path, err)
		}
		return nil
	}
	dir := filepath.Dir(config.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.WithMessagef(ErrStoreUnreachable, "creating directory %s for sqlite store: %v", dir, err)
	}
	return nil
}

func (d *Database) Driver() string {
	return d.config.Driver
}

func (d *Database) Dialect() Dialect {
	return d.config.dialect()
}

// Goqu wraps the connection in a goqu database using the store's dialect.
func (d *Database) Goqu() *goqu.Database {
	return goqu.New(string(d.Dialect()), d.DB)
}

// Rebind rewrites ? placeholders into the dialect's native placeholder syntax. Question marks
// inside quoted literals are left alone.
func Rebind(dialect Dialect, query string) string {
	if dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			b.WriteString("$" + strconv.Itoa(n))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
