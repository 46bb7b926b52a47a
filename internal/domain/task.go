package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTaskNameLength bounds the task title.
const MaxTaskNameLength = 200

// Task is a unit of work authored by one curator and fanned out to recipients.
type Task struct {
	ID             string    `json:"id_task"`
	Deadline       time.Time `json:"deadline"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	ReportTemplate string    `json:"report"`
	AuthorEmail    string    `json:"mail_author"`
}

// Validate checks the task fields supplied by the author.
func (t *Task) Validate() error {
	if t.Deadline.IsZero() {
		return fmt.Errorf("%w: deadline is required", ErrValidation)
	}
	name := strings.TrimSpace(t.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxTaskNameLength {
		return fmt.Errorf("%w: name must be at most %d characters", ErrValidation, MaxTaskNameLength)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if strings.TrimSpace(t.ReportTemplate) == "" {
		return fmt.Errorf("%w: report template is required", ErrValidation)
	}
	if t.AuthorEmail == "" {
		return fmt.Errorf("%w: author is required", ErrValidation)
	}
	return nil
}

// FormatTaskID renders a task identifier.
func FormatTaskID(prefix string, seq int) string {
	return prefix + "-" + strconv.Itoa(seq)
}

// ParseTaskID splits id at its first dash and parses the numeric suffix.
// Identifiers whose suffix is not a positive integer are rejected with
// ErrInvalidTaskID.
func ParseTaskID(id string) (prefix string, seq int, err error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, ErrInvalidTaskID
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n <= 0 {
		return "", 0, ErrInvalidTaskID
	}
	return parts[0], n, nil
}

// NextTaskSequence returns one more than the largest valid suffix among ids
// that carry prefix. Malformed ids and ids of other prefixes are skipped.
func NextTaskSequence(prefix string, ids []string) int {
	maxSeq := 0
	for _, id := range ids {
		p, n, err := ParseTaskID(id)
		if err != nil || p != prefix {
			continue
		}
		if n > maxSeq {
			maxSeq = n
		}
	}
	return maxSeq + 1
}
