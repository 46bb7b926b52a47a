package domain

// Curator is an account that authors tasks, receives them, or both.
// Email is the canonical identity; ChatID is only the delivery handle used by
// the notification bot and may be absent.
type Curator struct {
	Email        string `json:"email"`
	Name         string `json:"name"`
	SubjectID    int64  `json:"subject_id"`
	DepartmentID int64  `json:"department_id"`
	RoleID       int64  `json:"role_id"`
	MentorEmail  string `json:"mentor_email,omitempty"`
	Confirmed    bool   `json:"confirmed"`
	ChatID       *int64 `json:"-"`
	PasswordHash string `json:"-"`

	// Labels resolved from the catalogs when the store joins them in.
	SubjectLabel    string `json:"subject,omitempty"`
	DepartmentLabel string `json:"department,omitempty"`
	RoleLabel       string `json:"role,omitempty"`
}

// HasChatID reports whether the bot can reach this curator.
func (c *Curator) HasChatID() bool {
	return c.ChatID != nil && *c.ChatID != 0
}
