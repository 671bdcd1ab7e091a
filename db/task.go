package db

// Task is a locally cached design request. The row keeps the fields the
// list/search/export commands need plus the raw JSON payload the server
// returned, so detail views work without another round trip.
type Task struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	Assignee  string `json:"assignee"`
	UpdatedAt string `json:"updated_at"`
	Data      string `json:"data"` // raw task JSON as served by the API
}
