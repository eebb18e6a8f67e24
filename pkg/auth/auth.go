package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rhuss/portier/pkg/users"
)

// Scheme is an authentication mechanism.
type Scheme interface {
	// Name identifies the scheme in logs and metrics.
	Name() string

	// RequiresAuth reports whether path must be authenticated given the
	// ordered exclusion list.
	RequiresAuth(path string, excludedPaths []string) bool

	// AuthorizationHeader returns the raw Authorization header value.
	AuthorizationHeader(r *http.Request) (string, bool)

	// Credentials returns whatever credential material the scheme reads
	// from the request, or false when there is none.
	Credentials(r *http.Request) (string, bool)

	// CurrentUser resolves the request to a user, or nil.
	CurrentUser(ctx context.Context, r *http.Request) *users.User
}

// Base implements the scheme-independent parts of Scheme. Embed it in a
// concrete scheme and override CurrentUser (and Credentials if the
// scheme does not read the Authorization header). On its own it never
// resolves a user.
type Base struct{}

// Name returns "auth".
func (Base) Name() string { return "auth" }

// RequiresAuth applies the path-exclusion rules. See RequiresAuth.
func (Base) RequiresAuth(path string, excludedPaths []string) bool {
	return RequiresAuth(path, excludedPaths)
}

// AuthorizationHeader returns the first value stored under the literal
// "Authorization" header key.
func (Base) AuthorizationHeader(r *http.Request) (string, bool) {
	if r == nil {
		return "", false
	}
	values, ok := r.Header["Authorization"]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// Credentials returns the Authorization header.
func (b Base) Credentials(r *http.Request) (string, bool) {
	return b.AuthorizationHeader(r)
}

// CurrentUser always returns nil.
func (Base) CurrentUser(context.Context, *http.Request) *users.User {
	return nil
}

// RequiresAuth reports whether path needs authentication.
//
// An empty path or an empty exclusion list always requires auth. Entries
// are checked in order and the first match exempts the path:
//   - "prefix*" matches any path starting with "prefix";
//   - any other entry matches the path exactly, or the path with one
//     trailing slash appended ("/status/" exempts "/status").
//
// Matching is case-sensitive and does no normalisation.
func RequiresAuth(path string, excludedPaths []string) bool {
	if path == "" || len(excludedPaths) == 0 {
		return true
	}

	for _, p := range excludedPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			if strings.HasPrefix(path, prefix) {
				return false
			}
			continue
		}
		if p == path || p == path+"/" {
			return false
		}
	}

	return true
}
