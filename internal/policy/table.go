package policy

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ScopeRule names how an author's recipient ceiling is computed.
type ScopeRule string

// Scope rules understood by the engine.
const (
	RuleAll          ScopeRule = "all"
	RuleMentees      ScopeRule = "mentees"
	RuleSubjectRoles ScopeRule = "subject_roles"
	RuleNone         ScopeRule = "none"
)

// RoleRule is the capability row of one role.
type RoleRule struct {
	Scope                   ScopeRule `yaml:"scope" validate:"required,oneof=all mentees subject_roles none"`
	ScopeRoleIDs            []int64   `yaml:"scope_role_ids" validate:"required_if=Scope subject_roles"`
	CanPickSubject          bool      `yaml:"can_pick_subject"`
	CanPickDepartment       bool      `yaml:"can_pick_department"`
	AllowedRecipientRoleIDs []int64   `yaml:"allowed_recipient_role_ids"`
}

// Statuses configures how report statuses are classified.
type Statuses struct {
	NotCompleted      int64            `yaml:"not_completed" validate:"required,gt=0"`
	Cancelled         int64            `yaml:"cancelled" validate:"required,gt=0"`
	Completed         []int64          `yaml:"completed" validate:"required,min=1"`
	ExcludedFromTotal []int64          `yaml:"excluded_from_total"`
	DefaultLabel      string           `yaml:"default_label" validate:"required"`
	Labels            map[int64]string `yaml:"labels"`
}

// IsCompleted reports whether id counts as done, on time or late.
func (s Statuses) IsCompleted(id int64) bool {
	return slices.Contains(s.Completed, id)
}

// IsExcluded reports whether reports with id are left out of totals.
func (s Statuses) IsExcluded(id int64) bool {
	return slices.Contains(s.ExcludedFromTotal, id)
}

// Label maps a status id to its API label.
func (s Statuses) Label(id int64) string {
	if l, ok := s.Labels[id]; ok {
		return l
	}
	return s.DefaultLabel
}

// TaskIDs configures task id prefixes.
type TaskIDs struct {
	DefaultPrefix   string            `yaml:"default_prefix" validate:"required"`
	SubjectPrefixes map[string]string `yaml:"subject_prefixes"`
}

// Table is the full policy document.
type Table struct {
	Roles          map[int64]RoleRule `yaml:"roles" validate:"required,dive"`
	ManagerRoleIDs []int64            `yaml:"manager_role_ids"`
	Statuses       Statuses           `yaml:"statuses" validate:"required"`
	TaskIDs        TaskIDs            `yaml:"task_ids" validate:"required"`
}

var validate = validator.New()

// Validate checks structural constraints on the table.
func (t *Table) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("invalid policy table: %w", err)
	}
	for id := range t.Roles {
		if id <= 0 {
			return fmt.Errorf("invalid policy table: role id %d must be positive", id)
		}
	}
	for name, prefix := range t.TaskIDs.SubjectPrefixes {
		if prefix == "" || strings.Contains(prefix, "-") {
			return fmt.Errorf("invalid policy table: prefix %q for subject %q", prefix, name)
		}
	}
	if strings.Contains(t.TaskIDs.DefaultPrefix, "-") {
		return fmt.Errorf("invalid policy table: default prefix %q", t.TaskIDs.DefaultPrefix)
	}
	return nil
}
