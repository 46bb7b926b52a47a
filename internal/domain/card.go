package domain

import "time"

// Card status labels.
const (
	CardCompleted  = "Completed"
	CardInProgress = "In progress"
	CardNotStarted = "Not started"
)

// CardScope filters task cards by how the task was assigned.
type CardScope string

// Card scopes.
const (
	ScopeAll        CardScope = "all"
	ScopeGroup      CardScope = "group"
	ScopeIndividual CardScope = "individual"
)

// ParseCardScope maps an empty value to ScopeAll and rejects unknown values.
func ParseCardScope(s string) (CardScope, bool) {
	switch CardScope(s) {
	case "", ScopeAll:
		return ScopeAll, true
	case ScopeGroup:
		return ScopeGroup, true
	case ScopeIndividual:
		return ScopeIndividual, true
	}
	return "", false
}

// TaskCard summarizes a task's progress over the reports a viewer may see.
type TaskCard struct {
	ID           string
	Title        string
	Description  string
	Deadline     time.Time
	Created      *time.Time
	Status       string
	Total        int
	Completed    int
	NotCompleted int
	Progress     float64
	OnTime       int
	SampleNames  []string
}
