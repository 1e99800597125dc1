package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Options selects the SQL dialect and where the database lives. For SQLite
// DSN is a file path; for MySQL it is a go-sql-driver DSN.
type Options struct {
	Driver string
	DSN    string
}

// Repository is the relational entity store for account groups, accounts,
// categories and transactions. Every query is scoped by owner_id.
type Repository struct {
	db      *sql.DB
	dialect string
	now     func() time.Time
}

// Open connects, runs pending migrations and returns a ready repository.
func Open(ctx context.Context, opts Options) (*Repository, error) {
	dsn, err := normalizeDSN(opts)
	if err != nil {
		return nil, err
	}

	if opts.Driver == DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(opts.DSN), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open(opts.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(opts.Driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.InfoContext(ctx, "Database ready", "driver", opts.Driver)

	return &Repository{
		db:      db,
		dialect: opts.Driver,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}, nil
}

func normalizeDSN(opts Options) (string, error) {
	switch opts.Driver {
	case DriverSQLite:
		if strings.TrimSpace(opts.DSN) == "" {
			return "", fmt.Errorf("sqlite database path is empty")
		}
		// Foreign keys are off by default in SQLite and the pragma is per
		// connection, so it must ride on the DSN.
		return opts.DSN + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite", nil
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(opts.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", opts.Driver)
	}
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Driver reports which dialect the repository was opened with.
func (r *Repository) Driver() string { return r.dialect }

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64, lead ...any) []any {
	args := make([]any, 0, len(lead)+len(ids))
	args = append(args, lead...)
	for _, id := range ids {
		args = append(args, id)
	}
	return args
}

func utc(t time.Time) time.Time { return t.UTC() }

// affected turns a zero-row write into ErrNotFound-style reporting.
func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}
