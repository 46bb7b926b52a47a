package api

import (
	"time"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/service"
)

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse is returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the RFC 3339 time the access token expires.
	ExpiresAt string `json:"expires_at"`
}

// ProfileResponse describes the authenticated curator.
type ProfileResponse struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	SubjectID    int64  `json:"subject_id"`
	DepartmentID int64  `json:"department_id"`
	RoleID       int64  `json:"role_id"`
	Subject      string `json:"subject"`
	Department   string `json:"department"`
	Role         string `json:"role"`
	MentorEmail  string `json:"mail_mg,omitempty"`
	Confirmed    bool   `json:"confirm"`
	HasChat      bool   `json:"has_chat"`
}

func newProfileResponse(c *domain.Curator) ProfileResponse {
	return ProfileResponse{
		Email:        c.Email,
		Name:         c.Name,
		SubjectID:    c.SubjectID,
		DepartmentID: c.DepartmentID,
		RoleID:       c.RoleID,
		Subject:      c.SubjectLabel,
		Department:   c.DepartmentLabel,
		Role:         c.RoleLabel,
		MentorEmail:  c.MentorEmail,
		Confirmed:    c.Confirmed,
		HasChat:      c.HasChatID(),
	}
}

// RecipientResponse is one curator an author may address.
type RecipientResponse struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
}

// CreateTaskRequest defines the payload for task creation. Either emails,
// single_email, or the full group triple must be supplied; department_id is
// accepted as a one-element department_ids.
type CreateTaskRequest struct {
	Deadline    time.Time `json:"deadline"`
	Name        string    `json:"name"        validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Report      string    `json:"report"      validate:"required"`

	SubjectID     int64    `json:"subject_id"`
	DepartmentIDs []int64  `json:"department_ids"`
	DepartmentID  *int64   `json:"department_id"`
	RoleIDs       []int64  `json:"role_ids"`
	Emails        []string `json:"emails"        validate:"omitempty,dive,required,email"`
	SingleEmail   string   `json:"single_email"`
}

func (req CreateTaskRequest) selector() service.RecipientSelector {
	deps := req.DepartmentIDs
	if len(deps) == 0 && req.DepartmentID != nil {
		deps = []int64{*req.DepartmentID}
	}
	return service.RecipientSelector{
		SingleEmail:   req.SingleEmail,
		Emails:        req.Emails,
		SubjectID:     req.SubjectID,
		DepartmentIDs: deps,
		RoleIDs:       req.RoleIDs,
	}
}

// AssignmentDeliveryResponse is the delivery outcome of one assignment.
type AssignmentDeliveryResponse struct {
	AssignmentID int64    `json:"assignment_id"`
	Status       string   `json:"status"`
	Undelivered  []string `json:"undelivered"`
	Error        *string  `json:"error"`
}

// CreateTaskResponse is returned by task creation whether or not delivery
// succeeded.
type CreateTaskResponse struct {
	TaskID         string                       `json:"id_task"`
	Assignments    []AssignmentDeliveryResponse `json:"assignments"`
	Summary        domain.DeliverySummary       `json:"summary"`
	OK             bool                         `json:"ok"`
	UndeliveredAll []string                     `json:"undelivered_all"`
	BotUnavailable bool                         `json:"bot_unavailable"`
}

func newCreateTaskResponse(res *service.CreationResult) CreateTaskResponse {
	d := res.Delivery
	items := make([]AssignmentDeliveryResponse, len(d.Assignments))
	for i, it := range d.Assignments {
		undelivered := it.UndeliveredNames
		if undelivered == nil {
			undelivered = []string{}
		}
		items[i] = AssignmentDeliveryResponse{
			AssignmentID: it.AssignmentID,
			Status:       string(it.Status),
			Undelivered:  undelivered,
			Error:        optionalString(it.Error),
		}
	}
	all := d.UndeliveredAll
	if all == nil {
		all = []string{}
	}
	return CreateTaskResponse{
		TaskID:         res.Task.ID,
		Assignments:    items,
		Summary:        d.Summary,
		OK:             d.OK,
		UndeliveredAll: all,
		BotUnavailable: d.BotUnavailable,
	}
}

// TaskCardResponse summarizes one task on the dashboard.
type TaskCardResponse struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"`
	Completed      int        `json:"completed"`
	Total          int        `json:"total"`
	NotCompleted   int        `json:"notCompleted"`
	Deadline       time.Time  `json:"deadline"`
	Created        *time.Time `json:"created"`
	Description    string     `json:"description"`
	SampleCurators []string   `json:"sampleCurators"`
	OnTime         int        `json:"on_time"`
}

func newTaskCardResponse(c domain.TaskCard) TaskCardResponse {
	names := c.SampleNames
	if names == nil {
		names = []string{}
	}
	return TaskCardResponse{
		ID:             c.ID,
		Title:          c.Title,
		Status:         c.Status,
		Progress:       int(c.Progress),
		Completed:      c.Completed,
		Total:          c.Total,
		NotCompleted:   c.NotCompleted,
		Deadline:       c.Deadline,
		Created:        c.Created,
		Description:    c.Description,
		SampleCurators: names,
		OnTime:         c.OnTime,
	}
}

// TaskDetailResponse is one recipient's progress on a task.
type TaskDetailResponse struct {
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
	ReportURL   *string    `json:"reportUrl"`
	ReportText  *string    `json:"reportText"`
}

// ReportDetailResponse is a single report.
type ReportDetailResponse struct {
	ReportID    int64      `json:"id_report"`
	Curator     string     `json:"curator"`
	Role        string     `json:"role"`
	Task        string     `json:"task"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completedAt"`
	Deadline    time.Time  `json:"deadline"`
	ReportURL   *string    `json:"reportUrl"`
	ReportText  *string    `json:"reportText"`
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
