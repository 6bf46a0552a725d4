package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName is the session cookie set after a successful login.
	CookieName = "landing.session-token"
	// DefaultMaxAge is the lifetime of a session.
	DefaultMaxAge = 24 * time.Hour

	issuer = "go-content"
)

var (
	ErrNoSecret       = errors.New("auth: session secret not configured")
	ErrInvalidSession = errors.New("auth: invalid session")
)

// Claims are the JWT claims carried by the session cookie.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionOption configures a SessionManager.
type SessionOption func(*SessionManager)

// WithMaxAge overrides DefaultMaxAge.
func WithMaxAge(maxAge time.Duration) SessionOption {
	return func(m *SessionManager) {
		if maxAge > 0 {
			m.maxAge = maxAge
		}
	}
}

// WithSecureCookie marks cookies Secure. Production deployments set it.
func WithSecureCookie(secure bool) SessionOption {
	return func(m *SessionManager) {
		m.secure = secure
	}
}

// WithSessionClock overrides the clock used to issue and verify tokens.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// SessionManager issues and verifies HS256 session tokens.
type SessionManager struct {
	secret []byte
	maxAge time.Duration
	secure bool
	now    func() time.Time
}

// NewSessionManager returns a manager signing with secret.
func NewSessionManager(secret string, opts ...SessionOption) (*SessionManager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	m := &SessionManager{
		secret: []byte(secret),
		maxAge: DefaultMaxAge,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m, nil
}

// MaxAge returns the session lifetime.
func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue signs a session for username.
func (m *SessionManager) Issue(username string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.maxAge)
	claims := Claims{
		Name: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign session: %w", err)
	}
	return token, expires, nil
}

// Verify parses token and checks signature, algorithm, issuer and expiry.
func (m *SessionManager) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

// Cookie wraps token in the session cookie.
func (m *SessionManager) Cookie(token string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		MaxAge:   int(m.maxAge / time.Second),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearCookie expires the session cookie.
func (m *SessionManager) ClearCookie() *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
