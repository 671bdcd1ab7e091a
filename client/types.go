package client

import (
	"fmt"
	"strings"
	"time"
)

// User is an account on the Atelier server.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Task is a design request tracked by the server.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority,omitempty"`
	Assignee    *User     `json:"assignee,omitempty"`
	Requester   *User     `json:"requester,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTask is the payload for submitting a design request.
type NewTask struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// TaskFilter narrows a task listing. Zero values mean no filtering.
type TaskFilter struct {
	Status   string
	Assignee string
	Search   string
}

// ApprovalEvent is one entry in an approval's change history.
type ApprovalEvent struct {
	Actor  string    `json:"actor"`
	Action string    `json:"action"`
	Note   string    `json:"note,omitempty"`
	At     time.Time `json:"at"`
}

// Approval tracks a task change awaiting reviewer sign-off. The server keeps
// the history newest-first, so History[0] is the latest event.
type Approval struct {
	ID        string          `json:"id"`
	TaskID    string          `json:"taskId"`
	State     string          `json:"state"`
	Reason    string          `json:"reason,omitempty"`
	Requester *User           `json:"requester,omitempty"`
	History   []ApprovalEvent `json:"history,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// LatestEvent returns the newest history entry, or nil for an empty history.
func (a *Approval) LatestEvent() *ApprovalEvent {
	if len(a.History) == 0 {
		return nil
	}
	return &a.History[0]
}

// TaskFile is one attachment in a task's file manifest. Checksum is the
// sha256 hex digest of the file contents when the server knows it.
type TaskFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	Checksum string `json:"checksum,omitempty"`
	URL      string `json:"url"`
}

// HTTPError is returned by the typed API calls when the server answers with
// an unexpected status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if preview := strings.TrimSpace(e.Body); preview != "" {
		return fmt.Sprintf("unexpected HTTP status %d: %s", e.StatusCode, truncate(preview, 200))
	}
	return fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// SanitizeName turns a task title into a safe directory name: lowercase,
// word separators collapsed to single hyphens, everything else dropped.
func SanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	var b strings.Builder
	pendingDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_' || r == ':' || r == '.':
			pendingDash = true
		}
	}
	return b.String()
}
