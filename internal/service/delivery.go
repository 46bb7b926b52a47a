package service

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/umtracker/umtracker-api/internal/domain"
	"github.com/umtracker/umtracker-api/internal/platform/botclient"
	"github.com/umtracker/umtracker-api/internal/platform/logger"
	"github.com/umtracker/umtracker-api/internal/platform/telemetry"
	"github.com/umtracker/umtracker-api/internal/store"
)

// Notifier delivers assignments to recipients' chats.
type Notifier interface {
	// Ping reports whether deliveries can be attempted at all.
	Ping(ctx context.Context) bool

	// SendAssignment delivers one assignment. Failures are data.
	SendAssignment(ctx context.Context, assignmentID int64) botclient.SendResult
}

// deliveryReconciler sends every assignment of a freshly committed task and
// folds the bot's answers into a DeliveryResult.
type deliveryReconciler struct {
	notifier Notifier
	curators store.CuratorStore
	log      store.DeliveryLogStore
	logger   *slog.Logger
}

// deliver never fails. recipients maps lowercased email to the curator an
// individual assignment targets.
func (r *deliveryReconciler) deliver(
	ctx context.Context,
	taskID string,
	assignments []*domain.Assignment,
	recipients map[string]*domain.Curator,
) domain.DeliveryResult {
	ctx, span := telemetry.Tracer().Start(ctx, "delivery.deliver")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", taskID),
		attribute.Int("delivery.assignments", len(assignments)),
	)
	log := logger.FromContextOrDefault(ctx, r.logger).With(slog.String("task_id", taskID))

	if !r.notifier.Ping(ctx) {
		log.Warn("bot unavailable, skipping delivery", slog.Int("assignments", len(assignments)))
		span.SetStatus(codes.Error, domain.DeliveryErrBotUnavailable)
		items := make([]domain.AssignmentDelivery, len(assignments))
		for i, a := range assignments {
			items[i] = domain.AssignmentDelivery{
				AssignmentID:     a.ID,
				Status:           domain.DeliveryFailed,
				UndeliveredNames: []string{},
				Error:            domain.DeliveryErrBotUnavailable,
			}
		}
		r.record(ctx, log, taskID, items)
		summary, _ := domain.Summarize(items)
		return domain.DeliveryResult{
			Assignments:    items,
			Summary:        summary,
			OK:             false,
			UndeliveredAll: []string{},
			BotUnavailable: true,
		}
	}

	items := make([]domain.AssignmentDelivery, 0, len(assignments))
	var allUndelivered []int64
	for _, a := range assignments {
		if !a.IsTemplate() {
			if c, ok := recipients[strings.ToLower(a.CuratorEmail)]; ok && !c.HasChatID() {
				items = append(items, domain.AssignmentDelivery{
					AssignmentID: a.ID,
					Status:       domain.DeliveryFailed,
					Error:        domain.DeliveryErrNoChatID,
				})
				continue
			}
		}

		res := r.notifier.SendAssignment(ctx, a.ID)
		items = append(items, domain.AssignmentDelivery{
			AssignmentID:   a.ID,
			Status:         reconcileStatus(!a.IsTemplate(), res),
			UndeliveredIDs: res.Undelivered,
			Error:          res.Error,
		})
		allUndelivered = append(allUndelivered, res.Undelivered...)
	}

	names := r.resolveNames(ctx, log, allUndelivered)
	undeliveredAll := make([]string, 0, len(allUndelivered))
	for _, id := range allUndelivered {
		undeliveredAll = append(undeliveredAll, names(id))
	}
	for i := range items {
		items[i].UndeliveredNames = make([]string, 0, len(items[i].UndeliveredIDs))
		for _, id := range items[i].UndeliveredIDs {
			items[i].UndeliveredNames = append(items[i].UndeliveredNames, names(id))
		}
	}

	r.record(ctx, log, taskID, items)

	summary, ok := domain.Summarize(items)
	span.SetAttributes(
		attribute.Int("delivery.sent", summary.Sent),
		attribute.Int("delivery.partial", summary.Partial),
		attribute.Int("delivery.failed", summary.Failed),
	)
	log.Info("delivery finished",
		slog.Int("total", summary.Total),
		slog.Int("sent", summary.Sent),
		slog.Int("partial", summary.Partial),
		slog.Int("failed", summary.Failed))

	return domain.DeliveryResult{
		Assignments:    items,
		Summary:        summary,
		OK:             ok,
		UndeliveredAll: undeliveredAll,
	}
}

// reconcileStatus corrects the bot's verdict for one assignment. A personal
// assignment with any undelivered handle failed outright; a group one is
// partially sent.
func reconcileStatus(individual bool, res botclient.SendResult) domain.DeliveryStatus {
	status := res.Status
	if status != domain.DeliverySent {
		switch {
		case individual && len(res.Undelivered) > 0:
			status = domain.DeliveryFailed
		case len(res.Undelivered) > 0 && status != domain.DeliveryFailed:
			status = domain.DeliveryPartiallySent
		case res.Error != "":
			status = domain.DeliveryFailed
		}
	}
	if status != domain.DeliverySent && status != domain.DeliveryPartiallySent {
		return domain.DeliveryFailed
	}
	return status
}

// resolveNames looks all handles up in one query. Unknown handles, or all of
// them when the lookup fails, render as the number itself.
func (r *deliveryReconciler) resolveNames(ctx context.Context, log *slog.Logger, ids []int64) func(int64) string {
	var known map[int64]string
	if len(ids) > 0 {
		var err error
		known, err = r.curators.NamesByChatID(ctx, ids)
		if err != nil {
			log.Error("failed to resolve undelivered handles", slog.String("error", err.Error()))
		}
	}
	return func(id int64) string {
		if name, ok := known[id]; ok {
			return name
		}
		return strconv.FormatInt(id, 10)
	}
}

func (r *deliveryReconciler) record(ctx context.Context, log *slog.Logger, taskID string, items []domain.AssignmentDelivery) {
	if r.log == nil || len(items) == 0 {
		return
	}
	if err := r.log.Record(ctx, taskID, items); err != nil {
		log.Error("failed to record delivery outcome", slog.String("error", err.Error()))
	}
}
