//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/postgres/migrations"
)

// Timeout bounds each setup statement.
const Timeout = 10 * time.Second

// URL returns the configured test database URL, or "".
func URL() string {
	for _, key := range []string{"UMT_TEST_DATABASE_URL", "UMT_DATABASE_URL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// Open returns a pool bound to a new migrated schema. The schema and pool
// are released when the test ends.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	base := URL()
	if base == "" {
		t.Skip("UMT_TEST_DATABASE_URL not set; skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	admin, err := sql.Open("pgx", base)
	require.NoError(t, err, "open admin connection")
	t.Cleanup(func() { _ = admin.Close() })

	schema := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	_, err = admin.ExecContext(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err, "create schema")
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), Timeout)
		defer cancel()
		if _, err := admin.ExecContext(ctx, "DROP SCHEMA "+schema+" CASCADE"); err != nil {
			t.Logf("failed to drop schema %s: %v", schema, err)
		}
	})

	scopedURL, err := withSearchPath(base, schema)
	require.NoError(t, err)

	db, err := sql.Open("pgx", scopedURL)
	require.NoError(t, err, "open scoped connection")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db), "apply migrations")
	return db
}

// Migrate applies every embedded migration to db.
func Migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// withSearchPath adds a search_path runtime parameter to a postgres URL.
// pgx forwards unknown query parameters to the server.
func withSearchPath(raw, schema string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SeedSubject inserts a subject with a fixed id.
func SeedSubject(t *testing.T, db *sql.DB, id int64, label string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO subjects (id, label) VALUES ($1, $2)`, id, label)
	require.NoError(t, err, "seed subject %d", id)
}

// SeedDepartment inserts a department with a fixed id.
func SeedDepartment(t *testing.T, db *sql.DB, id int64, label string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO departments (id, label) VALUES ($1, $2)`, id, label)
	require.NoError(t, err, "seed department %d", id)
}

// SeedCurator inserts c. Zero subject and department ids are stored as NULL.
func SeedCurator(t *testing.T, db *sql.DB, c domain.Curator) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO curators
			(email, name, subject_id, department_id, role_id, mentor_email, confirmed, password_hash, chat_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.Email, c.Name,
		nullInt(c.SubjectID), nullInt(c.DepartmentID), c.RoleID,
		sql.NullString{String: c.MentorEmail, Valid: c.MentorEmail != ""},
		c.Confirmed, c.PasswordHash, c.ChatID,
	)
	require.NoError(t, err, "seed curator %s", c.Email)
}

// Count returns SELECT COUNT(*) FROM table [WHERE where].
func Count(t *testing.T, db *sql.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n), "count %s", table)
	return n
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}
