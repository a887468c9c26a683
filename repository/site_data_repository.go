package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"securecam-site/db"
)

var numberedParam = regexp.MustCompile(`\$\d+`)

// SQLSiteDataRepository stores the site document as one row of site_documents
type SQLSiteDataRepository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// NewSQLSiteDataRepository creates a new SQLSiteDataRepository over an open connection
// (Postgres through pgx or SQLite through modernc.org/sqlite)
func NewSQLSiteDataRepository(conn *sql.DB, driver string) *SQLSiteDataRepository {
	return &SQLSiteDataRepository{db: conn, driver: driver, now: time.Now}
}

// rebind rewrites $N placeholders to ? for SQLite
func (r *SQLSiteDataRepository) rebind(query string) string {
	if r.driver != db.DriverSQLite {
		return query
	}
	return numberedParam.ReplaceAllString(query, "?")
}

// Ensure SQLSiteDataRepository implements SiteDataRepositoryInterface
var _ SiteDataRepositoryInterface = (*SQLSiteDataRepository)(nil)

// Load reads the stored document
func (r *SQLSiteDataRepository) Load(ctx context.Context) ([]byte, bool, error) {
	var body string
	err := r.db.QueryRowContext(ctx, r.rebind(`SELECT body FROM site_documents WHERE name = $1`), SiteDataKey).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		log.Printf("❌ SiteDataRepository.Load: %v", err)
		return nil, false, fmt.Errorf("failed to load site data: %w", err)
	}
	return []byte(body), true, nil
}

// Save upserts the document row
func (r *SQLSiteDataRepository) Save(ctx context.Context, raw []byte) error {
	query := `
		INSERT INTO site_documents (name, body, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`
	if _, err := r.db.ExecContext(ctx, r.rebind(query), SiteDataKey, string(raw), r.now().UTC()); err != nil {
		log.Printf("❌ SiteDataRepository.Save: %v", err)
		return fmt.Errorf("failed to save site data: %w", err)
	}
	return nil
}
