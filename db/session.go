package db

// Session holds the locally persisted login session: the bearer token for
// API calls, the refresh cookie the server expects back on refresh and
// logout, and the user identity returned at login. Exactly one row exists
// at a time; clearing the session removes the row entirely, user data
// included.
type Session struct {
	ID            int    `gorm:"primaryKey" json:"-"`
	AccessToken   string `json:"access_token,omitempty"`
	RefreshCookie string `json:"refresh_cookie,omitempty"`
	UserID        string `json:"user_id,omitempty"`
	UserName      string `json:"user_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
	UserRole      string `json:"user_role,omitempty"`
	SavedAt       string `json:"saved_at,omitempty"`
}
