package auth

import (
	"crypto/subtle"

	"kreator/internal/domain"
)

// Credential pairs a role with the plaintext secret that grants it.
type Credential struct {
	Role   domain.Role
	Secret string
}

// Gate validates submitted credentials against the configured secret set.
// Secrets are checked in priority order (admin before standard); the first
// match wins. An empty set means the gate is open and every attempt yields
// the default role, which callers must have opted into explicitly.
type Gate struct {
	credentials []Credential
	defaultRole domain.Role
}

// NewGate builds a gate from the configured admin and standard passwords.
// Empty secrets are skipped so a partially configured gate still works.
func NewGate(adminSecret, standardSecret string) *Gate {
	g := &Gate{defaultRole: domain.RoleStandard}
	if adminSecret != "" {
		g.credentials = append(g.credentials, Credential{Role: domain.RoleAdmin, Secret: adminSecret})
	}
	if standardSecret != "" {
		g.credentials = append(g.credentials, Credential{Role: domain.RoleStandard, Secret: standardSecret})
	}
	return g
}

// Open reports whether the gate has no configured secrets.
func (g *Gate) Open() bool {
	return len(g.credentials) == 0
}

// Authenticate compares the supplied credential against each configured
// secret and returns the granted role. With no secrets configured the
// default role is granted for any input, including an empty one.
func (g *Gate) Authenticate(credential string) (domain.Role, error) {
	if g.Open() {
		return g.defaultRole, nil
	}
	for _, c := range g.credentials {
		if subtle.ConstantTimeCompare([]byte(credential), []byte(c.Secret)) == 1 {
			return c.Role, nil
		}
	}
	return domain.RoleNone, domain.ErrAuthFailure
}
