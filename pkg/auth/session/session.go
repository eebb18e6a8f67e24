// Package session provides a cookie-based scheme that resolves the
// session ID cookie to the user holding that session token.
package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/rhuss/portier/pkg/auth"
	"github.com/rhuss/portier/pkg/debug"
	"github.com/rhuss/portier/pkg/users"
)

// DefaultCookieName is the cookie read when none is configured.
const DefaultCookieName = "_my_session_id"

// Scheme resolves the session cookie against the user repository.
type Scheme struct {
	auth.Base
	repo       users.Repository
	cookieName string
}

// New creates a session scheme. An empty cookieName selects
// DefaultCookieName.
func New(repo users.Repository, cookieName string) *Scheme {
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Scheme{repo: repo, cookieName: cookieName}
}

// Name returns "session".
func (s *Scheme) Name() string { return "session" }

// CookieName returns the name of the session cookie.
func (s *Scheme) CookieName() string { return s.cookieName }

// Credentials returns the session cookie value.
func (s *Scheme) Credentials(r *http.Request) (string, bool) {
	return s.SessionCookie(r)
}

// SessionCookie returns the value of the session cookie. An empty value
// counts as absent.
func (s *Scheme) SessionCookie(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	c, err := r.Cookie(s.cookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// UserForSessionID returns the first user whose session token equals
// sessionID, or nil.
func (s *Scheme) UserForSessionID(ctx context.Context, sessionID string) *users.User {
	if s.repo == nil || sessionID == "" {
		return nil
	}

	found, err := s.repo.Search(ctx, users.Filter{users.FieldSessionToken: sessionID})
	if err != nil {
		debug.Log("auth", "session: user search failed", "error", err)
		return nil
	}
	if len(found) == 0 || found[0].SessionToken == nil {
		return nil
	}

	// Compare hashes so the comparison time does not depend on the
	// common prefix length.
	want := sha256.Sum256([]byte(*found[0].SessionToken))
	got := sha256.Sum256([]byte(sessionID))
	if subtle.ConstantTimeCompare(want[:], got[:]) != 1 {
		return nil
	}
	return found[0]
}

// CurrentUser resolves the session cookie of r.
func (s *Scheme) CurrentUser(ctx context.Context, r *http.Request) *users.User {
	id, ok := s.SessionCookie(r)
	if !ok {
		return nil
	}
	return s.UserForSessionID(ctx, id)
}
