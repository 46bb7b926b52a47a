package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// CardFilter narrows the task cards a viewer asks for.
type CardFilter struct {
	Scope        domain.CardScope
	SubjectID    int64
	DepartmentID int64
	Query        string
}

// TaskDetailRow is one recipient's progress on a task.
type TaskDetailRow struct {
	Email       string
	Name        string
	Role        string
	Status      string
	CompletedAt *time.Time
	ReportURL   string
	ReportText  string
}

// ReportView is a single report with its task.
type ReportView struct {
	ReportID    int64
	Curator     string
	Role        string
	Task        string
	Status      string
	CompletedAt *time.Time
	Deadline    time.Time
	ReportURL   string
	ReportText  string
}

// DashboardService aggregates reports for the viewer's dashboards. Every
// read is limited to reports of curators inside the viewer's scope.
type DashboardService interface {
	// TaskCards summarizes tasks authored within the viewer's subject.
	TaskCards(ctx context.Context, viewer *domain.Curator, f CardFilter) ([]domain.TaskCard, error)

	// TaskDetail lists per-recipient progress on one task.
	// Returns ErrTaskNotFound if the task does not exist.
	TaskDetail(ctx context.Context, viewer *domain.Curator, taskID string) ([]TaskDetailRow, error)

	// ReportDetail returns one recipient's report on a task.
	// Returns ErrReportNotFound if it does not exist or is not visible.
	ReportDetail(ctx context.Context, viewer *domain.Curator, taskID, email string) (*ReportView, error)
}

type dashboardServiceImpl struct {
	tasks       store.TaskStore
	assignments store.AssignmentStore
	reports     store.ReportStore
	engine      *policy.Engine
	logger      *slog.Logger
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(
	tasks store.TaskStore,
	assignments store.AssignmentStore,
	reports store.ReportStore,
	engine *policy.Engine,
	logger *slog.Logger,
) (DashboardService, error) {
	if tasks == nil || assignments == nil || reports == nil {
		return nil, fmt.Errorf("%w: stores cannot be nil", domain.ErrValidation)
	}
	if engine == nil {
		return nil, fmt.Errorf("%w: engine cannot be nil", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &dashboardServiceImpl{
		tasks:       tasks,
		assignments: assignments,
		reports:     reports,
		engine:      engine,
		logger:      logger.With(slog.String("component", "dashboard_service")),
	}, nil
}

func (s *dashboardServiceImpl) TaskCards(
	ctx context.Context,
	viewer *domain.Curator,
	f CardFilter,
) ([]domain.TaskCard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	scope, ok := domain.ParseCardScope(string(f.Scope))
	if !ok {
		return nil, fmt.Errorf("%w: unknown scope %q", domain.ErrValidation, f.Scope)
	}

	visible := s.engine.BaseScope(viewer)
	authorSubject := viewer.SubjectID
	rows, err := s.reports.ListVisible(ctx, store.ReportQuery{
		Visible:               visible,
		AuthorSubjectID:       &authorSubject,
		RecipientSubjectID:    f.SubjectID,
		RecipientDepartmentID: f.DepartmentID,
		NameContains:          strings.TrimSpace(f.Query),
	})
	if err != nil {
		log.Error("failed to list visible reports", slog.String("error", err.Error()))
		return nil, newDashboardError("task_cards", "failed to list reports", err)
	}

	cards := aggregateCards(rows, s.engine.Statuses())
	if scope != domain.ScopeAll && len(cards) > 0 {
		ids := make([]string, len(cards))
		for i, c := range cards {
			ids[i] = c.ID
		}
		flags, err := s.assignments.Flags(ctx, ids, visible)
		if err != nil {
			log.Error("failed to load assignment flags", slog.String("error", err.Error()))
			return nil, newDashboardError("task_cards", "failed to classify tasks", err)
		}
		cards = filterByScope(cards, scope, flags)
	}

	log.Debug("built task cards",
		slog.String("scope", string(scope)),
		slog.Int("reports", len(rows)),
		slog.Int("cards", len(cards)))
	return cards, nil
}

func (s *dashboardServiceImpl) TaskDetail(
	ctx context.Context,
	viewer *domain.Curator,
	taskID string,
) ([]TaskDetailRow, error) {
	if _, err := s.tasks.GetByID(ctx, taskID); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, newDashboardError("task_detail", "failed to load task", err)
	}

	statuses := s.engine.Statuses()
	rows, err := s.reports.ListVisible(ctx, store.ReportQuery{
		Visible:          s.engine.BaseScope(viewer),
		TaskID:           taskID,
		ExcludeStatusIDs: statuses.ExcludedFromTotal,
	})
	if err != nil {
		return nil, newDashboardError("task_detail", "failed to list reports", err)
	}

	out := make([]TaskDetailRow, len(rows))
	for i, r := range rows {
		out[i] = TaskDetailRow{
			Email:       r.CuratorEmail,
			Name:        r.CuratorName,
			Role:        r.RoleLabel,
			Status:      statuses.Label(r.StatusID),
			CompletedAt: r.CompletedAt,
			ReportURL:   r.URL,
			ReportText:  r.Text,
		}
	}
	return out, nil
}

func (s *dashboardServiceImpl) ReportDetail(
	ctx context.Context,
	viewer *domain.Curator,
	taskID, email string,
) (*ReportView, error) {
	rows, err := s.reports.ListVisible(ctx, store.ReportQuery{
		Visible:      s.engine.BaseScope(viewer),
		TaskID:       taskID,
		CuratorEmail: strings.TrimSpace(email),
	})
	if err != nil {
		return nil, newDashboardError("report_detail", "failed to load report", err)
	}
	if len(rows) == 0 {
		return nil, ErrReportNotFound
	}

	r := rows[0]
	return &ReportView{
		ReportID:    r.ReportID,
		Curator:     r.CuratorName,
		Role:        r.RoleLabel,
		Task:        r.TaskName,
		Status:      s.engine.Statuses().Label(r.StatusID),
		CompletedAt: r.CompletedAt,
		Deadline:    r.TaskDeadline,
		ReportURL:   r.URL,
		ReportText:  r.Text,
	}, nil
}
