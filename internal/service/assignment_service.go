package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/platform/telemetry"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// NewTaskInput carries the author-supplied task fields.
type NewTaskInput struct {
	Deadline       time.Time
	Name           string
	Description    string
	ReportTemplate string
}

// CreationResult is the outcome of CreateTaskAndAssign.
type CreationResult struct {
	Task        *domain.Task
	Assignments []*domain.Assignment
	Delivery    domain.DeliveryResult
}

// AssignmentService creates tasks and fans them out to recipients.
type AssignmentService interface {
	// CreateTaskAndAssign validates the input, resolves recipients inside the
	// author's scope, stores the task with its assignments and reports in one
	// transaction, and delivers notifications once that transaction commits.
	// Delivery problems are reported in the result, never as an error.
	CreateTaskAndAssign(
		ctx context.Context,
		author *domain.Curator,
		in NewTaskInput,
		sel RecipientSelector,
	) (*CreationResult, error)
}

// AssignmentStores groups the stores AssignmentService writes to.
type AssignmentStores struct {
	Curators    store.CuratorStore
	Catalogs    store.CatalogStore
	Tasks       store.TaskStore
	Assignments store.AssignmentStore
	Reports     store.ReportStore
	DeliveryLog store.DeliveryLogStore
}

type assignmentServiceImpl struct {
	tx         store.Transactor
	stores     AssignmentStores
	engine     *policy.Engine
	reconciler *deliveryReconciler
	now        func() time.Time
	logger     *slog.Logger
}

// NewAssignmentService creates an AssignmentService. DeliveryLog may be nil.
func NewAssignmentService(
	tx store.Transactor,
	stores AssignmentStores,
	engine *policy.Engine,
	notifier Notifier,
	logger *slog.Logger,
) (AssignmentService, error) {
	switch {
	case tx == nil:
		return nil, fmt.Errorf("%w: transactor cannot be nil", domain.ErrValidation)
	case stores.Curators == nil, stores.Catalogs == nil, stores.Tasks == nil,
		stores.Assignments == nil, stores.Reports == nil:
		return nil, fmt.Errorf("%w: stores cannot be nil", domain.ErrValidation)
	case engine == nil:
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	case notifier == nil:
		return nil, fmt.Errorf("%w: notifier cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "assignment_service"))

	return &assignmentServiceImpl{
		tx:     tx,
		stores: stores,
		engine: engine,
		reconciler: &deliveryReconciler{
			notifier: notifier,
			curators: stores.Curators,
			log:      stores.DeliveryLog,
			logger:   logger,
		},
		now:    time.Now,
		logger: logger,
	}, nil
}

func (s *assignmentServiceImpl) CreateTaskAndAssign(
	ctx context.Context,
	author *domain.Curator,
	in NewTaskInput,
	sel RecipientSelector,
) (*CreationResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "assignment.create_task")
	defer span.End()
	log := logger.FromContextOrDefault(ctx, s.logger).With(slog.String("author", author.Email))

	if !author.Confirmed {
		return nil, ErrNotConfirmed
	}

	task := &domain.Task{
		Deadline:       in.Deadline,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		ReportTemplate: in.ReportTemplate,
		AuthorEmail:    author.Email,
	}
	if err := task.Validate(); err != nil {
		return nil, err
	}
	individual := sel.Individual()
	if !individual {
		if err := sel.ValidateGroup(); err != nil {
			return nil, err
		}
	}

	targets, err := resolveTargets(ctx, s.stores.Curators, s.engine, author, sel, log)
	if err != nil {
		return nil, newAssignmentError("resolve_recipients", "failed to resolve recipients", err)
	}
	if len(targets) == 0 {
		log.Info("no eligible recipients")
		return nil, ErrNoEligibleRecipients
	}

	subjectID := sel.SubjectID
	if subjectID == 0 {
		subjectID = author.SubjectID
	}
	prefix, err := s.taskPrefix(ctx, subjectID)
	if err != nil {
		return nil, newAssignmentError("task_prefix", "failed to load subject", err)
	}

	result := &CreationResult{Task: task}
	recipients := make(map[string]*domain.Curator, len(targets))
	for _, c := range targets {
		recipients[strings.ToLower(c.Email)] = c
	}

	err = s.tx.InTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		tasks := s.stores.Tasks.WithTx(tx)

		id, err := tasks.NextTaskID(ctx, subjectID, prefix)
		if err != nil {
			return newAssignmentError("allocate_id", "failed to allocate task id", err)
		}
		task.ID = id
		if err := tasks.Create(ctx, task); err != nil {
			return newAssignmentError("create_task", "failed to insert task", err)
		}

		var assignments []*domain.Assignment
		if individual {
			for _, c := range targets {
				assignments = append(assignments, domain.IndividualAssignment(task.ID, author.Email, c))
			}
		} else {
			assignments = domain.GroupAssignments(task.ID, author.Email, sel.SubjectID, sel.DepartmentIDs, sel.RoleIDs)
		}
		txAssignments := s.stores.Assignments.WithTx(tx)
		for _, a := range assignments {
			if err := txAssignments.Create(ctx, a); err != nil {
				return newAssignmentError("create_assignment", "failed to insert assignment", err)
			}
		}

		now := s.now()
		notCompleted := s.engine.Statuses().NotCompleted
		reports := make([]*domain.Report, len(targets))
		for i, c := range targets {
			reports[i] = domain.NewReport(task.ID, c.Email, notCompleted, now)
		}
		if _, err := s.stores.Reports.WithTx(tx).CreateBatch(ctx, reports); err != nil {
			return newAssignmentError("create_reports", "failed to open reports", err)
		}

		result.Assignments = assignments
		store.AfterCommit(ctx, func(ctx context.Context) {
			result.Delivery = s.reconciler.deliver(ctx, task.ID, assignments, recipients)
		})
		return nil
	})
	if err != nil {
		log.Error("task creation rolled back", slog.String("error", err.Error()))
		return nil, err
	}

	span.SetAttributes(
		attribute.String("task.id", task.ID),
		attribute.Int("task.assignments", len(result.Assignments)),
		attribute.Int("task.recipients", len(targets)),
	)
	log.Info("task created",
		slog.String("task_id", task.ID),
		slog.Bool("individual", individual),
		slog.Int("assignments", len(result.Assignments)),
		slog.Int("recipients", len(targets)),
		slog.Bool("delivery_ok", result.Delivery.OK))
	return result, nil
}

// taskPrefix derives the id prefix from the subject's name. Unknown subjects
// fall back to the default prefix.
func (s *assignmentServiceImpl) taskPrefix(ctx context.Context, subjectID int64) (string, error) {
	if subjectID == 0 {
		return s.engine.TaskPrefix(""), nil
	}
	subject, err := s.stores.Catalogs.Get(ctx, domain.CatalogSubjects, subjectID)
	if err != nil {
		if errors.Is(err, store.ErrCatalogEntryNotFound) {
			return s.engine.TaskPrefix(""), nil
		}
		return "", err
	}
	return s.engine.TaskPrefix(subject.Label), nil
}
