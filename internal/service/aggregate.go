package service

import (
	"slices"
	"strings"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/policy"
	"github.com/umtracker/umtracker-api/internal/store"
)

// maxSampleNames bounds TaskCard.SampleNames.
const maxSampleNames = 3

// aggregateCards folds visible report rows into one card per task. Tasks
// with a visible cancelled report are dropped. The result is ordered by
// deadline, then id, both descending.
func aggregateCards(rows []domain.ReportRow, statuses policy.Statuses) []domain.TaskCard {
	type acc struct {
		card      domain.TaskCard
		names     map[string]struct{}
		cancelled bool
	}

	byTask := make(map[string]*acc)
	var order []string
	for _, r := range rows {
		a, ok := byTask[r.TaskID]
		if !ok {
			a = &acc{
				card: domain.TaskCard{
					ID:          r.TaskID,
					Title:       r.TaskName,
					Description: r.TaskDescription,
					Deadline:    r.TaskDeadline,
				},
				names: make(map[string]struct{}),
			}
			byTask[r.TaskID] = a
			order = append(order, r.TaskID)
		}
		if r.StatusID == statuses.Cancelled {
			a.cancelled = true
		}

		c := &a.card
		if !statuses.IsExcluded(r.StatusID) {
			c.Total++
		}
		if statuses.IsCompleted(r.StatusID) {
			c.Completed++
			if r.CompletedAt != nil && !r.CompletedAt.After(r.TaskDeadline) {
				c.OnTime++
			}
		}
		if r.CuratorName != "" {
			a.names[r.CuratorName] = struct{}{}
		}
		if c.Created == nil || r.StartedAt.Before(*c.Created) {
			started := r.StartedAt
			c.Created = &started
		}
	}

	cards := make([]domain.TaskCard, 0, len(order))
	for _, id := range order {
		a := byTask[id]
		if a.cancelled {
			continue
		}
		c := a.card
		c.NotCompleted = c.Total - c.Completed
		if c.Total > 0 {
			c.Progress = 100 * float64(c.Completed) / float64(c.Total)
		}
		c.Status = cardStatus(c.Total, c.Completed)
		c.SampleNames = sampleNames(a.names)
		cards = append(cards, c)
	}

	slices.SortStableFunc(cards, func(a, b domain.TaskCard) int {
		if c := b.Deadline.Compare(a.Deadline); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return cards
}

func cardStatus(total, completed int) string {
	switch {
	case total > 0 && completed == total:
		return domain.CardCompleted
	case completed > 0:
		return domain.CardInProgress
	default:
		return domain.CardNotStarted
	}
}

func sampleNames(set map[string]struct{}) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	slices.Sort(names)
	if len(names) > maxSampleNames {
		names = names[:maxSampleNames]
	}
	return names
}

// filterByScope keeps cards whose assignment shape matches scope. group
// means the task has a template assignment; individual means it has a
// personal assignment to a visible curator and no template.
func filterByScope(cards []domain.TaskCard, scope domain.CardScope, flags map[string]store.AssignmentFlags) []domain.TaskCard {
	if scope == domain.ScopeAll {
		return cards
	}
	out := cards[:0]
	for _, c := range cards {
		f := flags[c.ID]
		switch scope {
		case domain.ScopeGroup:
			if f.HasGroup {
				out = append(out, c)
			}
		case domain.ScopeIndividual:
			if f.HasPersonal && !f.HasGroup {
				out = append(out, c)
			}
		}
	}
	return out
}
