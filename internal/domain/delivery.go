package domain

// DeliveryStatus is the outcome of notifying the recipients of one assignment.
type DeliveryStatus string

// Delivery outcomes.
const (
	DeliverySent          DeliveryStatus = "sent"
	DeliveryPartiallySent DeliveryStatus = "partially_sent"
	DeliveryFailed        DeliveryStatus = "failed"
)

// Delivery error codes produced locally rather than by the bot.
const (
	DeliveryErrNoChatID       = "no_id_tg"
	DeliveryErrBotUnavailable = "bot_unavailable"
	DeliveryErrUnknown        = "unknown_error"
)

// AssignmentDelivery is the reconciled outcome for one assignment.
type AssignmentDelivery struct {
	AssignmentID     int64          `json:"assignment_id"`
	Status           DeliveryStatus `json:"status"`
	UndeliveredIDs   []int64        `json:"-"`
	UndeliveredNames []string       `json:"undelivered"`
	Error            string         `json:"error,omitempty"`
}

// DeliverySummary counts outcomes across a batch.
type DeliverySummary struct {
	Total   int `json:"total"`
	Sent    int `json:"sent"`
	Partial int `json:"partial"`
	Failed  int `json:"failed"`
}

// DeliveryResult is the outcome of notifying every assignment of a new task.
type DeliveryResult struct {
	Assignments    []AssignmentDelivery
	Summary        DeliverySummary
	OK             bool
	UndeliveredAll []string
	BotUnavailable bool
}

// Summarize counts outcomes and derives OK.
func Summarize(items []AssignmentDelivery) (DeliverySummary, bool) {
	s := DeliverySummary{Total: len(items)}
	for _, it := range items {
		switch it.Status {
		case DeliverySent:
			s.Sent++
		case DeliveryPartiallySent:
			s.Partial++
		default:
			s.Failed++
		}
	}
	return s, s.Failed == 0
}
