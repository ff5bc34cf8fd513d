package sqlkv

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Drivers selectable through the provider's driver name
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/jd-116/bulletin-board-api/db"
	"github.com/jd-116/bulletin-board-api/env"
)

// Supported driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Provider implements a key-value store as a single two-column SQL table
type Provider struct {
	driver string
	dsn    string
	db     *sql.DB
}

// NewProvider creates a new provider for the given driver,
// loading the data source name from the environment
func NewProvider(driver string) (*Provider, error) {
	switch driver {
	case DriverSQLite:
		return New(driver, env.GetEnvOrDefault("SQL_DSN", "bulletin.db"))
	case DriverPostgres:
		dsn, err := env.GetEnv("postgres data source name", "SQL_DSN")
		if err != nil {
			return nil, err
		}
		return New(driver, dsn)
	default:
		return nil, fmt.Errorf("unsupported SQL driver '%s'", driver)
	}
}

// New creates a provider for the given driver and data source name
func New(driver string, dsn string) (*Provider, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("unsupported SQL driver '%s'", driver)
	}

	return &Provider{
		driver: driver,
		dsn:    dsn,
	}, nil
}

// Connect opens and pings the database, then creates the table
func (p *Provider) Connect(ctx context.Context) error {
	conn, err := sql.Open(p.driver, p.dsn)
	if err != nil {
		return errors.Wrapf(err, "could not open %s database", p.driver)
	}

	// SQLite serializes writers; a single connection also keeps
	// in-memory databases alive for the lifetime of the provider
	if p.driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return errors.Wrapf(err, "could not ping %s database", p.driver)
	}

	_, err = conn.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "could not create the kv table")
	}

	p.db = conn
	return nil
}

// Disconnect closes the database
func (p *Provider) Disconnect(ctx context.Context) error {
	if p.db == nil {
		return nil
	}

	return p.db.Close()
}

// Get retrieves the value stored under key
func (p *Provider) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := p.db.QueryRowContext(ctx, p.rebind(`SELECT value FROM kv WHERE key = ?`), key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, db.NewNotFoundError(key)
		}

		return nil, errors.Wrapf(err, "could not get key '%s'", key)
	}

	return []byte(value), nil
}

// Set upserts the row for key
func (p *Provider) Set(ctx context.Context, key string, value []byte) error {
	_, err := p.db.ExecContext(ctx, p.rebind(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`), key, string(value))
	if err != nil {
		return errors.Wrapf(err, "could not set key '%s'", key)
	}

	return nil
}

// Delete removes the row for key, if any
func (p *Provider) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, p.rebind(`DELETE FROM kv WHERE key = ?`), key)
	if err != nil {
		return errors.Wrapf(err, "could not delete key '%s'", key)
	}

	return nil
}

// ListByPrefix selects every row whose key begins with prefix.
// SQLite's LIKE ignores ASCII case, so matches are re-checked exactly
func (p *Provider) ListByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	rows, err := p.db.QueryContext(ctx,
		p.rebind(`SELECT key, value FROM kv WHERE key LIKE ? ESCAPE '\'`), escapeLike(prefix)+"%")
	if err != nil {
		return nil, errors.Wrapf(err, "could not list prefix '%s'", prefix)
	}
	defer rows.Close()

	values := [][]byte{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, errors.Wrapf(err, "could not list prefix '%s'", prefix)
		}
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		values = append(values, []byte(value))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "could not list prefix '%s'", prefix)
	}

	return values, nil
}

// rebind rewrites "?" placeholders into the numbered form Postgres expects
func (p *Provider) rebind(query string) string {
	if p.driver != DriverPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}

// escapeLike escapes the LIKE wildcards and the escape character itself
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
