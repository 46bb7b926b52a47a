package postgres

import (
	"strconv"
	"strings"

	"github.com/umtracker/umtracker-api/internal/policy"
)

// queryArgs accumulates positional arguments while a query is assembled.
type queryArgs []any

// add appends v and returns its placeholder.
func (a *queryArgs) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

// scopePredicate renders scope as a predicate over the curators table
// aliased as alias.
func scopePredicate(scope policy.Scope, alias string, args *queryArgs) string {
	switch scope.Kind {
	case policy.ScopeAll:
		return "TRUE"
	case policy.ScopeMentees:
		return "(" + alias + ".subject_id = " + args.add(scope.SubjectID) +
			" AND " + alias + ".department_id = " + args.add(scope.DepartmentID) +
			" AND LOWER(" + alias + ".mentor_email) = LOWER(" + args.add(scope.MentorEmail) + "))"
	case policy.ScopeSubjectRoles:
		return "(" + alias + ".subject_id = " + args.add(scope.SubjectID) +
			" AND " + alias + ".role_id = ANY(" + args.add(scope.RoleIDs) + "))"
	default:
		return "FALSE"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// prefixPattern builds a LIKE pattern matching ids that start with prefix-.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "-%"
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}
