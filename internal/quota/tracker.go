package quota

import (
	"time"

	"kreator/internal/domain"
)

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed     bool
	Remaining   int
	WaitSeconds int
}

// Tracker enforces the per-session generation quota: non-admin sessions get
// at most Limit successful generations per rolling Window. The window only
// rolls forward lazily when a check or a success is recorded; there is no
// background timer.
type Tracker struct {
	Limit  int
	Window time.Duration

	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// New returns a tracker with the observed production constants: 5 requests
// per hour.
func New() *Tracker {
	return &Tracker{Limit: 5, Window: time.Hour}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Check decides whether the session may run another generation. It returns
// the possibly-rolled session state; callers must store it back. Admin
// sessions are never throttled.
func (t *Tracker) Check(sess domain.Session) (domain.Session, Decision) {
	if !sess.Throttled() {
		return sess, Decision{Allowed: true, Remaining: -1}
	}

	now := t.now()
	if sess.QuotaWindowStart.IsZero() || now.Sub(sess.QuotaWindowStart) > t.Window {
		sess.QuotaCount = 0
		sess.QuotaWindowStart = now
	}

	if sess.QuotaCount >= t.Limit {
		wait := t.Window - now.Sub(sess.QuotaWindowStart)
		if wait < 0 {
			wait = 0
		}
		return sess, Decision{Allowed: false, WaitSeconds: int(wait.Seconds()) + 1}
	}

	return sess, Decision{Allowed: true, Remaining: t.Limit - sess.QuotaCount}
}

// RecordSuccess consumes one quota unit. It must be called only after a
// confirmed successful generation; failed attempts never consume quota.
func (t *Tracker) RecordSuccess(sess domain.Session) domain.Session {
	if !sess.Throttled() {
		return sess
	}
	now := t.now()
	if sess.QuotaWindowStart.IsZero() || now.Sub(sess.QuotaWindowStart) > t.Window {
		sess.QuotaCount = 0
		sess.QuotaWindowStart = now
	}
	sess.QuotaCount++
	return sess
}

// Remaining reports how many generations are left in the current window
// without mutating the window. Admin sessions report -1 (unlimited).
func (t *Tracker) Remaining(sess domain.Session) int {
	if !sess.Throttled() {
		return -1
	}
	now := t.now()
	if sess.QuotaWindowStart.IsZero() || now.Sub(sess.QuotaWindowStart) > t.Window {
		return t.Limit
	}
	if sess.QuotaCount >= t.Limit {
		return 0
	}
	return t.Limit - sess.QuotaCount
}
