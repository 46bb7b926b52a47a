package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

const curatorColumns = `
	c.email, c.name, COALESCE(c.subject_id, 0), COALESCE(c.department_id, 0), c.role_id,
	COALESCE(c.mentor_email, ''), c.confirmed, c.chat_id, c.password_hash,
	COALESCE(s.label, ''), COALESCE(d.label, ''), r.label`

const curatorJoins = `
	FROM curators c
	LEFT JOIN subjects s ON s.id = c.subject_id
	LEFT JOIN departments d ON d.id = c.department_id
	JOIN roles r ON r.id = c.role_id`

// PostgresCuratorStore implements store.CuratorStore.
type PostgresCuratorStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCuratorStore creates a curator store over db.
// If logger is nil, a default logger will be used.
func NewPostgresCuratorStore(db store.DBTX, logger *slog.Logger) *PostgresCuratorStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresCuratorStore{
		db:     db,
		logger: logger.With(slog.String("component", "curator_store")),
	}
}

var _ store.CuratorStore = (*PostgresCuratorStore)(nil)

// WithTx implements store.CuratorStore.
func (s *PostgresCuratorStore) WithTx(tx *sql.Tx) store.CuratorStore {
	return &PostgresCuratorStore{db: tx, logger: s.logger}
}

// GetByEmail implements store.CuratorStore.
func (s *PostgresCuratorStore) GetByEmail(ctx context.Context, email string) (*domain.Curator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + curatorColumns + curatorJoins + ` WHERE LOWER(c.email) = LOWER($1)`

	c, err := scanCurator(s.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("curator not found", slog.String("email", email))
			return nil, store.ErrCuratorNotFound
		}
		log.Error("failed to get curator", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return c, nil
}

// ListInScope implements store.CuratorStore.
func (s *PostgresCuratorStore) ListInScope(
	ctx context.Context,
	scope policy.Scope,
	filter store.RecipientFilter,
) ([]*domain.Curator, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if scope.Empty() {
		log.Debug("empty recipient scope", slog.String("scope", scope.Kind.String()))
		return nil, nil
	}

	var args queryArgs
	conds := []string{scopePredicate(scope, "c", &args)}

	switch {
	case filter.SingleEmail != "":
		conds = append(conds, "LOWER(c.email) = LOWER("+args.add(strings.TrimSpace(filter.SingleEmail))+")")
	case len(filter.Emails) > 0:
		conds = append(conds, "LOWER(c.email) = ANY("+args.add(lowerAll(filter.Emails))+")")
	default:
		if filter.SubjectID != 0 {
			conds = append(conds, "c.subject_id = "+args.add(filter.SubjectID))
		}
		if len(filter.DepartmentIDs) > 0 {
			conds = append(conds, "c.department_id = ANY("+args.add(filter.DepartmentIDs)+")")
		}
		if len(filter.RoleIDs) > 0 {
			conds = append(conds, "c.role_id = ANY("+args.add(filter.RoleIDs)+")")
		}
	}

	query := `SELECT ` + curatorColumns + curatorJoins +
		` WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY c.name, c.email`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list curators in scope",
			slog.String("error", err.Error()),
			slog.String("scope", scope.Kind.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []*domain.Curator
	for rows.Next() {
		c, err := scanCurator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan curator: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("listed curators in scope",
		slog.String("scope", scope.Kind.String()),
		slog.Int("count", len(out)))
	return out, nil
}

// NamesByChatID implements store.CuratorStore.
func (s *PostgresCuratorStore) NamesByChatID(ctx context.Context, chatIDs []int64) (map[int64]string, error) {
	names := make(map[int64]string, len(chatIDs))
	if len(chatIDs) == 0 {
		return names, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT chat_id, name FROM curators WHERE chat_id = ANY($1)`, chatIDs)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to resolve chat ids",
			slog.String("error", err.Error()),
			slog.Int("count", len(chatIDs)))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan chat id: %w", err)
		}
		names[id] = name
	}
	return names, MapError(rows.Err())
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCurator(row rowScanner) (*domain.Curator, error) {
	var c domain.Curator
	var chatID sql.NullInt64
	err := row.Scan(
		&c.Email,
		&c.Name,
		&c.SubjectID,
		&c.DepartmentID,
		&c.RoleID,
		&c.MentorEmail,
		&c.Confirmed,
		&chatID,
		&c.PasswordHash,
		&c.SubjectLabel,
		&c.DepartmentLabel,
		&c.RoleLabel,
	)
	if err != nil {
		return nil, err
	}
	if chatID.Valid {
		id := chatID.Int64
		c.ChatID = &id
	}
	return &c, nil
}
