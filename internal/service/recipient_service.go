package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// RecipientSelector is how an author addresses recipients. SingleEmail
// beats Emails, and either beats the group fields.
type RecipientSelector struct {
	SingleEmail   string
	Emails        []string
	SubjectID     int64
	DepartmentIDs []int64
	RoleIDs       []int64
}

// Individual reports whether the selector names curators by email. Blank
// addresses do not count.
func (s RecipientSelector) Individual() bool {
	return strings.TrimSpace(s.SingleEmail) != "" || len(s.emails()) > 0
}

func (s RecipientSelector) emails() []string {
	var out []string
	for _, e := range s.Emails {
		if e = strings.TrimSpace(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

// ValidateGroup checks the fields a group assignment needs.
func (s RecipientSelector) ValidateGroup() error {
	if s.SubjectID == 0 || len(s.DepartmentIDs) == 0 || len(s.RoleIDs) == 0 {
		return fmt.Errorf("%w: group assignment requires subject_id, department_ids and role_ids",
			domain.ErrValidation)
	}
	return nil
}

func (s RecipientSelector) filter() store.RecipientFilter {
	f := store.RecipientFilter{SingleEmail: strings.TrimSpace(s.SingleEmail)}
	if f.SingleEmail != "" {
		return f
	}
	if f.Emails = s.emails(); len(f.Emails) > 0 {
		return f
	}
	f.SubjectID = s.SubjectID
	f.DepartmentIDs = s.DepartmentIDs
	f.RoleIDs = s.RoleIDs
	return f
}

// RecipientService answers "whom may this author address".
type RecipientService interface {
	// AssignmentPolicy describes the assignment form for author.
	AssignmentPolicy(author *domain.Curator) policy.AssignmentPolicy

	// Resolve intersects author's scope with sel, ordered by name.
	Resolve(ctx context.Context, author *domain.Curator, sel RecipientSelector) ([]*domain.Curator, error)
}

type recipientServiceImpl struct {
	curators store.CuratorStore
	engine   *policy.Engine
	logger   *slog.Logger
}

// NewRecipientService creates a RecipientService.
func NewRecipientService(curators store.CuratorStore, engine *policy.Engine, logger *slog.Logger) (RecipientService, error) {
	if curators == nil {
		return nil, fmt.Errorf("%w: curators cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &recipientServiceImpl{
		curators: curators,
		engine:   engine,
		logger:   logger.With(slog.String("component", "recipient_service")),
	}, nil
}

func (s *recipientServiceImpl) AssignmentPolicy(author *domain.Curator) policy.AssignmentPolicy {
	return s.engine.AssignmentPolicy(author)
}

func (s *recipientServiceImpl) Resolve(
	ctx context.Context,
	author *domain.Curator,
	sel RecipientSelector,
) ([]*domain.Curator, error) {
	return resolveTargets(ctx, s.curators, s.engine, author, sel, logger.FromContextOrDefault(ctx, s.logger))
}

// resolveTargets is shared with AssignmentService so both paths apply the
// scope ceiling identically.
func resolveTargets(
	ctx context.Context,
	curators store.CuratorStore,
	engine *policy.Engine,
	author *domain.Curator,
	sel RecipientSelector,
	log *slog.Logger,
) ([]*domain.Curator, error) {
	scope := engine.BaseScope(author)
	targets, err := curators.ListInScope(ctx, scope, sel.filter())
	if err != nil {
		log.Error("failed to resolve recipients",
			slog.String("author", author.Email),
			slog.String("scope", scope.Kind.String()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("resolve recipients: %w", err)
	}
	log.Debug("resolved recipients",
		slog.String("scope", scope.Kind.String()),
		slog.Bool("individual", sel.Individual()),
		slog.Int("count", len(targets)))
	return targets, nil
}
