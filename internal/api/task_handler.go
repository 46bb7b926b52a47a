package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/umtracker/umtracker-api/internal/api/shared"
	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/service"
)

// TaskHandler serves task assignment and the task dashboards.
type TaskHandler struct {
	recipients  service.RecipientService
	assignments service.AssignmentService
	dashboard   service.DashboardService
	logger      *slog.Logger
}

// NewTaskHandler creates a TaskHandler.
func NewTaskHandler(
	recipients service.RecipientService,
	assignments service.AssignmentService,
	dashboard service.DashboardService,
	logger *slog.Logger,
) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		recipients:  recipients,
		assignments: assignments,
		dashboard:   dashboard,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// AssignmentPolicy handles GET /api/tasks/assignment-policy.
func (h *TaskHandler) AssignmentPolicy(w http.ResponseWriter, r *http.Request) {
	author, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, h.recipients.AssignmentPolicy(author))
}

// Recipients handles GET /api/tasks/recipients. Malformed numeric filters
// are ignored rather than rejected.
func (h *TaskHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	author, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}

	subjectID, _ := queryInt(r, "subject_id")
	departmentIDs := queryIntList(r, "department_ids")
	if len(departmentIDs) == 0 {
		if dep, ok := queryInt(r, "department_id"); ok && dep != 0 {
			departmentIDs = []int64{dep}
		}
	}

	targets, err := h.recipients.Resolve(r.Context(), author, service.RecipientSelector{
		SingleEmail:   r.URL.Query().Get("single_email"),
		Emails:        queryStringList(r, "emails"),
		SubjectID:     subjectID,
		DepartmentIDs: departmentIDs,
		RoleIDs:       queryIntList(r, "role_ids"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load recipients")
		return
	}

	out := make([]RecipientResponse, len(targets))
	for i, c := range targets {
		out[i] = RecipientResponse{
			Email:      c.Email,
			Name:       c.Name,
			Role:       c.RoleLabel,
			Subject:    c.SubjectLabel,
			Department: c.DepartmentLabel,
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// ListCards handles GET /api/tasks.
func (h *TaskHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	viewer, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}

	subjectID, okSubject := queryInt(r, "subject_id")
	departmentID, okDepartment := queryInt(r, "department_id")
	if !okSubject || !okDepartment {
		shared.RespondWithError(w, r, http.StatusBadRequest, "IDs must be integers")
		return
	}

	scope := r.URL.Query().Get("scope")
	cards, err := h.dashboard.TaskCards(r.Context(), viewer, service.CardFilter{
		Scope:        domain.CardScope(scope),
		SubjectID:    subjectID,
		DepartmentID: departmentID,
		Query:        r.URL.Query().Get("q"),
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load tasks")
		return
	}

	out := make([]TaskCardResponse, len(cards))
	for i, c := range cards {
		out[i] = newTaskCardResponse(c)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// Create handles POST /api/tasks. The task is persisted even when delivery
// fails: 201 when every assignment was delivered, 207 when some failed and
// 503 when the bot was down.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	author, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	res, err := h.assignments.CreateTaskAndAssign(r.Context(), author, service.NewTaskInput{
		Deadline:       req.Deadline,
		Name:           req.Name,
		Description:    req.Description,
		ReportTemplate: req.Report,
	}, req.selector())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create task")
		return
	}

	status := http.StatusCreated
	switch {
	case res.Delivery.BotUnavailable:
		status = http.StatusServiceUnavailable
	case !res.Delivery.OK:
		status = http.StatusMultiStatus
	}
	log.Info("task created",
		slog.String("task_id", res.Task.ID),
		slog.Int("status", status))
	shared.RespondWithJSON(w, r, status, newCreateTaskResponse(res))
}

// Detail handles GET /api/tasks/{id}.
func (h *TaskHandler) Detail(w http.ResponseWriter, r *http.Request) {
	viewer, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}

	rows, err := h.dashboard.TaskDetail(r.Context(), viewer, chi.URLParam(r, "id"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load task")
		return
	}

	out := make([]TaskDetailResponse, len(rows))
	for i, row := range rows {
		out[i] = TaskDetailResponse{
			Email:       row.Email,
			Name:        row.Name,
			Role:        row.Role,
			Status:      row.Status,
			CompletedAt: row.CompletedAt,
			ReportURL:   optionalString(row.ReportURL),
			ReportText:  optionalString(row.ReportText),
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, out)
}

// ReportDetail handles GET /api/tasks/reports/{id}/{email}.
func (h *TaskHandler) ReportDetail(w http.ResponseWriter, r *http.Request) {
	viewer, ok := curatorOrUnauthorized(w, r)
	if !ok {
		return
	}

	email := strings.TrimSpace(chi.URLParam(r, "email"))
	view, err := h.dashboard.ReportDetail(r.Context(), viewer, chi.URLParam(r, "id"), email)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load report")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ReportDetailResponse{
		ReportID:    view.ReportID,
		Curator:     view.Curator,
		Role:        view.Role,
		Task:        view.Task,
		Status:      view.Status,
		CompletedAt: view.CompletedAt,
		Deadline:    view.Deadline,
		ReportURL:   optionalString(view.ReportURL),
		ReportText:  optionalString(view.ReportText),
	})
}
