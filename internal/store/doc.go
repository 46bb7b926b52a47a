// Package store declares the persistence interfaces for curators, catalogs,
// tasks, assignments, reports and delivery outcomes, together with the
// transaction runner and its after-commit hooks.
package store
