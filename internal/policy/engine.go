// Package policy decides what each role may do: which curators an author may
// address, which pickers the assignment form offers, how report statuses are
// classified, and how task id prefixes are derived from subject names.
//
// All decisions come from a Table loaded once at startup and read-only
// afterwards.
package policy

import (
	"strings"
	"unicode"

	"github.com/umtracker/umtracker-api/internal/domain"
)

// Denial reasons surfaced in the assignment policy payload.
const (
	ReasonNotConfirmed = "Your profile is not confirmed, contact your manager"
	ReasonRoleDenied   = "Your role cannot assign tasks"
)

// AssignmentDefaults pre-fills the assignment form.
type AssignmentDefaults struct {
	SubjectID    int64 `json:"subject_id"`
	DepartmentID int64 `json:"department_id"`
	RoleID       int64 `json:"role_id"`
}

// AssignmentPolicy describes what the assignment form may offer an author.
type AssignmentPolicy struct {
	CanAssign               bool               `json:"can_assign"`
	ReasonIfDenied          *string            `json:"reason_if_denied"`
	CanPickSubject          bool               `json:"can_pick_subject"`
	CanPickDepartment       bool               `json:"can_pick_department"`
	AllowedRecipientRoleIDs []int64            `json:"allowed_recipient_role_ids"`
	Defaults                AssignmentDefaults `json:"defaults"`
}

// Engine evaluates a Table.
type Engine struct {
	table *Table
}

// NewEngine wraps a validated table.
func NewEngine(t *Table) *Engine {
	return &Engine{table: t}
}

// BaseScope returns the ceiling of curators author may address.
func (e *Engine) BaseScope(author *domain.Curator) Scope {
	rule, ok := e.table.Roles[author.RoleID]
	if !ok {
		return Scope{Kind: ScopeNone}
	}
	switch rule.Scope {
	case RuleAll:
		return Scope{Kind: ScopeAll}
	case RuleMentees:
		return Scope{
			Kind:         ScopeMentees,
			SubjectID:    author.SubjectID,
			DepartmentID: author.DepartmentID,
			MentorEmail:  author.Email,
		}
	case RuleSubjectRoles:
		return Scope{
			Kind:      ScopeSubjectRoles,
			SubjectID: author.SubjectID,
			RoleIDs:   append([]int64(nil), rule.ScopeRoleIDs...),
		}
	default:
		return Scope{Kind: ScopeNone}
	}
}

// AssignmentPolicy is a pure function of the author's role and confirmation.
func (e *Engine) AssignmentPolicy(author *domain.Curator) AssignmentPolicy {
	if !author.Confirmed {
		reason := ReasonNotConfirmed
		return AssignmentPolicy{
			ReasonIfDenied:          &reason,
			AllowedRecipientRoleIDs: []int64{},
		}
	}

	p := AssignmentPolicy{
		CanAssign:               true,
		AllowedRecipientRoleIDs: []int64{},
		Defaults: AssignmentDefaults{
			SubjectID:    author.SubjectID,
			DepartmentID: author.DepartmentID,
			RoleID:       author.RoleID,
		},
	}

	rule, ok := e.table.Roles[author.RoleID]
	if !ok || rule.Scope == RuleNone {
		reason := ReasonRoleDenied
		p.CanAssign = false
		p.ReasonIfDenied = &reason
		return p
	}

	p.CanPickSubject = rule.CanPickSubject
	p.CanPickDepartment = rule.CanPickDepartment
	p.AllowedRecipientRoleIDs = append(p.AllowedRecipientRoleIDs, rule.AllowedRecipientRoleIDs...)
	return p
}

// Statuses returns the status classification.
func (e *Engine) Statuses() Statuses {
	return e.table.Statuses
}

// ManagerRoleIDs lists the roles offered at manager registration.
func (e *Engine) ManagerRoleIDs() []int64 {
	return append([]int64(nil), e.table.ManagerRoleIDs...)
}

// TaskPrefix derives the task id prefix for a subject name: the configured
// mapping first, then the first three letters of the lowercased name, then
// the default prefix. Non-letters are skipped so the prefix never contains
// the id separator.
func (e *Engine) TaskPrefix(subjectName string) string {
	name := strings.ToLower(strings.TrimSpace(subjectName))
	if name == "" {
		return e.table.TaskIDs.DefaultPrefix
	}
	if p, ok := e.table.TaskIDs.SubjectPrefixes[name]; ok && p != "" {
		return p
	}
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, r)
			if len(letters) == 3 {
				break
			}
		}
	}
	if len(letters) == 0 {
		return e.table.TaskIDs.DefaultPrefix
	}
	return string(letters)
}
