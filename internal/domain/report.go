package domain

import "time"

// Report is the progress record of one recipient for one task.
type Report struct {
	ID           int64      `json:"id_report"`
	TaskID       string     `json:"id_task"`
	CuratorEmail string     `json:"mail"`
	StatusID     int64      `json:"id_status"`
	StartedAt    time.Time  `json:"timestamp_start"`
	CompletedAt  *time.Time `json:"timestamp_end,omitempty"`
	Text         string     `json:"report_text,omitempty"`
	URL          string     `json:"report_url,omitempty"`
}

// NewReport opens a report for a freshly assigned recipient.
func NewReport(taskID, curatorEmail string, statusID int64, now time.Time) *Report {
	return &Report{
		TaskID:       taskID,
		CuratorEmail: curatorEmail,
		StatusID:     statusID,
		StartedAt:    now.UTC(),
	}
}

// ReportRow is a report joined with its task and recipient, as seen by a viewer.
type ReportRow struct {
	ReportID        int64
	TaskID          string
	TaskName        string
	TaskDeadline    time.Time
	TaskDescription string
	CuratorEmail    string
	CuratorName     string
	RoleLabel       string
	StatusID        int64
	StartedAt       time.Time
	CompletedAt     *time.Time
	Text            string
	URL             string
}
