package domain

import "time"

// Role describes the access level granted by the access gate.
type Role string

const (
	RoleNone     Role = "none"
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Session is the explicit per-user state threaded through the access gate and
// the quota tracker. It is held server-side keyed by the cookie session ID and
// is lost on process restart; nothing is persisted.
type Session struct {
	ID               string
	Authenticated    bool
	Role             Role
	QuotaCount       int
	QuotaWindowStart time.Time
}

// Throttled reports whether the session is subject to the generation quota.
// Admins are never throttled.
func (s Session) Throttled() bool {
	return s.Role != RoleAdmin
}
