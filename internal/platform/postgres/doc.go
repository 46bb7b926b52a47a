// Package postgres implements the store interfaces on PostgreSQL through
// database/sql and the pgx driver. Task ids are allocated under
// transaction-scoped advisory locks; see PostgresTaskStore.NextTaskID.
package postgres
