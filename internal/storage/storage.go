// Package storage persists contact messages. Records are append-only: the
// package offers no update, delete or query operations.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"gitlab.com/symplylade/portfolio-api/internal/config"
	"gitlab.com/symplylade/portfolio-api/internal/model"
	_ "modernc.org/sqlite"
)

func init() {
	sqlx.BindDriver(config.DriverSQLite, sqlx.QUESTION)
}

// schemas holds the DDL that creates the contact_messages table per driver.
var schemas = map[string]string{
	config.DriverMySQL: `
		CREATE TABLE IF NOT EXISTS contact_messages (
			id      INT AUTO_INCREMENT PRIMARY KEY,
			name    VARCHAR(255) NOT NULL,
			email   VARCHAR(255) NOT NULL,
			phone   VARCHAR(255) NOT NULL,
			message TEXT NOT NULL
		)`,
	config.DriverPostgres: `
		CREATE TABLE IF NOT EXISTS contact_messages (
			id      BIGSERIAL PRIMARY KEY,
			name    TEXT NOT NULL,
			email   TEXT NOT NULL,
			phone   TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
	config.DriverSQLite: `
		CREATE TABLE IF NOT EXISTS contact_messages (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT NOT NULL,
			email   TEXT NOT NULL,
			phone   TEXT NOT NULL,
			message TEXT NOT NULL
		)`,
}

const insertContactMessage = `
	INSERT INTO contact_messages (name, email, phone, message)
	VALUES (?, ?, ?, ?)`

// Store writes contact messages to a SQL database.
type Store struct {
	db     *sqlx.DB
	driver string
}

// DataSourceName builds the driver specific connection string for the given
// configuration.
func DataSourceName(cfg config.Database) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(cfg.User, cfg.Password),
			Host:   cfg.Host,
			Path:   "/" + cfg.Name,
		}
		return dsn.String()
	case config.DriverSQLite:
		return cfg.Path + "?_pragma=busy_timeout(5000)"
	default:
		dsn := mysql.NewConfig()
		dsn.User = cfg.User
		dsn.Passwd = cfg.Password
		dsn.Net = "tcp"
		dsn.Addr = cfg.Host
		dsn.DBName = cfg.Name
		dsn.ParseTime = true
		return dsn.FormatDSN()
	}
}

// Open connects to the configured database and checks that it is reachable.
func Open(ctx context.Context, cfg config.Database) (*Store, error) {
	db, err := sqlx.Open(cfg.Driver, DataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.Driver, err)
	}
	return &Store{db: db, driver: cfg.Driver}, nil
}

// New wraps an existing database handle. The handle can be a real database or
// a mock database within unit tests.
func New(sqlDB *sql.DB, driver string) *Store {
	return &Store{db: sqlx.NewDb(sqlDB, driver), driver: driver}
}

// DB exposes the underlying handle for tools that run raw SQL.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the contact_messages table if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	ddl, ok := schemas[s.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", s.driver)
	}
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create contact_messages: %w", err)
	}
	return nil
}

// CreateContactMessage stores msg and sets its Id to the generated key. Each
// call runs in its own session: a dedicated connection and transaction that are
// released before the call returns, whatever the outcome.
func (s *Store) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op after a successful commit

	id, err := s.insert(ctx, tx, msg)
	if err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit contact message: %w", err)
	}
	msg.Id = id
	return nil
}

// insert runs the INSERT in tx and returns the generated id. PostgreSQL has no
// LastInsertId, so the id is read back with RETURNING there.
func (s *Store) insert(ctx context.Context, tx *sqlx.Tx, msg *model.ContactMessage) (int64, error) {
	query := tx.Rebind(insertContactMessage)
	args := []interface{}{msg.Name, msg.Email, msg.Phone, msg.Message}
	if s.driver == config.DriverPostgres {
		var id int64
		err := tx.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id)
		return id, err
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
