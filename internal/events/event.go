package events

import "time"

// Account lifecycle actions emitted by the services.
const (
	ActionRegistered    = "registered"
	ActionStatusChanged = "status_changed"
	ActionRoleChanged   = "role_changed"
	ActionPasswordReset = "password_reset"
	ActionTeamAdded     = "team_member_added"
	ActionTeamRemoved   = "team_member_removed"
)

// Event describes one account lifecycle change. Events feed the admin live
// view and the out-of-process notification queue; they carry no credentials.
type Event struct {
	Action      string    `json:"action"`
	CompanyID   string    `json:"companyId"`
	CompanyName string    `json:"companyName,omitempty"`
	Detail      string    `json:"detail,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
