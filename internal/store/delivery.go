package store

import (
	"context"

	"github.com/umtracker/umtracker-api/internal/domain"
)

// DeliveryLogStore records the outcome of bot deliveries.
type DeliveryLogStore interface {
	// Record appends one log row per assignment outcome.
	Record(ctx context.Context, taskID string, items []domain.AssignmentDelivery) error
}
