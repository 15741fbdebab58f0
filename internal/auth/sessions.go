package auth

import (
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"kreator/internal/domain"
)

const (
	sessionName    = "kreator-session"
	sessionIDKey   = "session_id"
	sessionRoleKey = "role"
)

// Manager binds browser cookies to server-side session state. The cookie
// carries only an opaque session ID and the role claim; quota counters live
// in memory keyed by that ID, so concurrent users never share a counter.
type Manager struct {
	store sessions.Store

	mu    sync.Mutex
	state map[string]domain.Session
}

// NewManager builds a cookie-backed session manager. The secret must be at
// least 32 bytes of entropy; it is padded or truncated to the AES-256 key
// size the cookie store expects.
func NewManager(secret string, secure bool) *Manager {
	key := make([]byte, 32)
	copy(key, []byte(secret))

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{store: store, state: make(map[string]domain.Session)}
}

// Establish creates authenticated session state for the given role and
// writes the session cookie.
func (m *Manager) Establish(w http.ResponseWriter, r *http.Request, role domain.Role) (domain.Session, error) {
	cookie, err := m.store.Get(r, sessionName)
	if err != nil {
		// A cookie signed with a rotated secret decodes into a fresh session.
		cookie, _ = m.store.New(r, sessionName)
	}

	sess := domain.Session{
		ID:            uuid.NewString(),
		Authenticated: true,
		Role:          role,
	}
	cookie.Values[sessionIDKey] = sess.ID
	cookie.Values[sessionRoleKey] = string(role)
	if err := cookie.Save(r, w); err != nil {
		return domain.Session{}, err
	}

	m.mu.Lock()
	m.state[sess.ID] = sess
	m.mu.Unlock()
	return sess, nil
}

// Current resolves the session for the request. A request without a valid
// cookie yields an unauthenticated zero session.
func (m *Manager) Current(r *http.Request) domain.Session {
	cookie, err := m.store.Get(r, sessionName)
	if err != nil {
		return domain.Session{}
	}
	id, _ := cookie.Values[sessionIDKey].(string)
	if id == "" {
		return domain.Session{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.state[id]
	if !ok {
		// Process restarted since the cookie was issued; the role claim in
		// the cookie is still trusted because the cookie is authenticated.
		role, _ := cookie.Values[sessionRoleKey].(string)
		if role == "" {
			return domain.Session{}
		}
		sess = domain.Session{ID: id, Authenticated: true, Role: domain.Role(role)}
		m.state[id] = sess
	}
	return sess
}

// Update stores mutated session state (e.g. quota counters) back into the
// server-side map.
func (m *Manager) Update(sess domain.Session) {
	if sess.ID == "" {
		return
	}
	m.mu.Lock()
	m.state[sess.ID] = sess
	m.mu.Unlock()
}

// Clear destroys the session state and expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	cookie, err := m.store.Get(r, sessionName)
	if err == nil {
		if id, _ := cookie.Values[sessionIDKey].(string); id != "" {
			m.mu.Lock()
			delete(m.state, id)
			m.mu.Unlock()
		}
	} else {
		cookie, _ = m.store.New(r, sessionName)
	}
	cookie.Values = make(map[interface{}]interface{})
	cookie.Options.MaxAge = -1
	return cookie.Save(r, w)
}
