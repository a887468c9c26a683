package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Driver names registered with database/sql
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// DB holds the database connection
var DB *sql.DB

const schema = `
CREATE TABLE IF NOT EXISTS site_documents (
	name TEXT PRIMARY KEY,
	body TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// InitDB opens the database with driver and dsn, checks the connection and
// creates the schema. The connection is also kept in DB.
func InitDB(driver, dsn string) (*sql.DB, error) {
	conn, err := Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := EnsureSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	DB = conn
	log.Printf("✓ Database connection established successfully (%s)", driver)
	return conn, nil
}

// Open opens a connection without touching the schema
func Open(driver, dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database connection string is empty")
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == DriverSQLite {
		// one writer at a time; in-memory databases live per connection
		conn.SetMaxOpenConns(1)
	}
	return conn, nil
}

// EnsureSchema creates the tables the site needs when they are missing
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	if _, err := conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
