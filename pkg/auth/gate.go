// Package auth decides whether a content write may proceed. A write carries
// either a bearer edit token or a signed admin session cookie.
package auth

import (
	"crypto/subtle"
	"strings"

	content "github.com/goliatone/go-content"
)

// Methods reported in Identity.Method.
const (
	MethodOpen    = "open"
	MethodToken   = "token"
	MethodSession = "session"
)

// Credentials are the proofs presented with a write request.
type Credentials struct {
	// Bearer is the token from the Authorization header, without the scheme.
	Bearer string
	// Session is the raw session cookie value.
	Session string
}

// Identity describes who was allowed through the gate.
type Identity struct {
	Subject string `json:"subject,omitempty"`
	Method  string `json:"method"`
}

// Gate authorizes content writes.
//
// With no EditToken the gate is open and every write is allowed. With an
// EditToken a write needs either that exact bearer token or a session that
// Sessions verifies.
type Gate struct {
	EditToken string
	Sessions  *SessionManager
}

// Open reports whether the gate allows unauthenticated writes.
func (g Gate) Open() bool {
	return g.EditToken == ""
}

// Authorize returns the identity behind creds or content.ErrUnauthorized.
func (g Gate) Authorize(creds Credentials) (Identity, error) {
	if g.Open() {
		return Identity{Method: MethodOpen}, nil
	}
	if creds.Bearer != "" && subtle.ConstantTimeCompare([]byte(creds.Bearer), []byte(g.EditToken)) == 1 {
		return Identity{Method: MethodToken}, nil
	}
	if g.Sessions != nil && creds.Session != "" {
		claims, err := g.Sessions.Verify(creds.Session)
		if err == nil {
			return Identity{Subject: claims.Subject, Method: MethodSession}, nil
		}
	}
	return Identity{}, content.ErrUnauthorized
}

// BearerToken extracts the token from an Authorization header value. The
// scheme is matched case-insensitively.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	const scheme = "bearer "
	if len(header) < len(scheme) || !strings.EqualFold(header[:len(scheme)], scheme) {
		return ""
	}
	return strings.TrimSpace(header[len(scheme):])
}

// Status is the public description of the gate used by the admin UI.
type Status struct {
	TokenConfigured bool `json:"tokenConfigured"`
	RequiresAuth    bool `json:"requiresAuth"`
	IsDevelopment   bool `json:"isDevelopment"`
}

// NewStatus describes the gate. Outside development the admin UI always asks
// for credentials; in development it only does so when no token is set.
func NewStatus(tokenConfigured, development bool) Status {
	requiresAuth := true
	if development {
		requiresAuth = !tokenConfigured
	}
	return Status{
		TokenConfigured: tokenConfigured,
		RequiresAuth:    requiresAuth,
		IsDevelopment:   development,
	}
}
