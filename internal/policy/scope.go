package policy

import (
	"slices"
	"strings"

	"github.com/umtracker/umtracker-api/internal/domain"
)

// ScopeKind selects which predicate a Scope represents.
type ScopeKind int

// Scope kinds.
const (
	ScopeNone ScopeKind = iota
	ScopeAll
	ScopeMentees
	ScopeSubjectRoles
)

// Scope is the set of curators an author may address, before any explicit
// filter. Stores translate it into a query predicate; Allows evaluates it in
// memory.
type Scope struct {
	Kind         ScopeKind
	SubjectID    int64
	DepartmentID int64
	MentorEmail  string
	RoleIDs      []int64
}

// Allows reports whether c falls inside the scope.
func (s Scope) Allows(c *domain.Curator) bool {
	switch s.Kind {
	case ScopeAll:
		return true
	case ScopeMentees:
		return c.SubjectID == s.SubjectID &&
			c.DepartmentID == s.DepartmentID &&
			c.MentorEmail != "" &&
			strings.EqualFold(c.MentorEmail, s.MentorEmail)
	case ScopeSubjectRoles:
		return c.SubjectID == s.SubjectID && slices.Contains(s.RoleIDs, c.RoleID)
	default:
		return false
	}
}

// Empty reports whether the scope can never match anyone.
func (s Scope) Empty() bool {
	switch s.Kind {
	case ScopeAll:
		return false
	case ScopeMentees:
		return s.MentorEmail == ""
	case ScopeSubjectRoles:
		return len(s.RoleIDs) == 0
	default:
		return true
	}
}

func (k ScopeKind) String() string {
	switch k {
	case ScopeAll:
		return "all"
	case ScopeMentees:
		return "mentees"
	case ScopeSubjectRoles:
		return "subject_roles"
	default:
		return "none"
	}
}
