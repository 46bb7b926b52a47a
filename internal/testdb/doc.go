//go:build integration

// Package testdb gives integration tests an isolated, migrated Postgres
// schema.
//
// Tests that need a database call Open. When no database URL is configured
// the test is skipped, so `go test -tags integration ./...` stays green on
// machines without Postgres:
//
//	db := testdb.Open(t)
//	testdb.SeedSubject(t, db, 1, "Математика")
//
// Every call creates a fresh schema, points the pool's search_path at it,
// applies the embedded goose migrations and drops the schema on cleanup.
// Work is committed for real, which lets tests observe advisory locks and
// after-commit hooks, and packages may still run in parallel.
//
// The URL is read from UMT_TEST_DATABASE_URL, falling back to
// UMT_DATABASE_URL.
package testdb
