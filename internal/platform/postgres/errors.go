package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// constraintErrors names the schema constraints whose violations have a
// dedicated sentinel. The mentor trigger raises its check violation under
// the constraint name curators_mentor_confirmed.
var constraintErrors = map[string]error{
	"tasks_pkey":                  store.ErrTaskIDTaken,
	"reports_task_curator_unique": fmt.Errorf("%w: report for task and curator", store.ErrDuplicate),
	"curators_mentor_confirmed":   fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrMentorNotConfirmed),
	"curators_no_self_mentor":     fmt.Errorf("%w: curator cannot mentor themselves", store.ErrInvalidEntity),
}

// MapError translates driver errors into store sentinels. The original
// error stays in the chain.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if sentinel, ok := constraintErrors[pgErr.ConstraintName]; ok {
		return fmt.Errorf("%w: %w", sentinel, err)
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %w", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		return fmt.Errorf("%w: foreign key %s: %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check %s: %w", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: column %s is required: %w", store.ErrInvalidEntity, pgErr.ColumnName, err)
	}
	return err
}
