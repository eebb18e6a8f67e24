// Package basic implements HTTP Basic authentication against a user
// repository.
//
// Resolution is a pipeline of stages, each returning its result and a
// presence flag:
//
//	Authorization header
//	  -> ExtractBase64AuthorizationHeader   ("Basic " prefix stripped)
//	  -> DecodeBase64AuthorizationHeader    (standard base64, UTF-8)
//	  -> ExtractUserCredentials             (split at the first ':')
//	  -> UserObjectFromCredentials          (lookup by email, bcrypt check)
//
// The first absent result short-circuits the rest and CurrentUser returns
// nil. The decoded credentials never leave the pipeline: they are not
// logged and not stored.
package basic

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/rhuss/portier/pkg/auth"
	"github.com/rhuss/portier/pkg/debug"
	"github.com/rhuss/portier/pkg/users"
)

// Prefix is the Authorization scheme token, including the separating
// space. Matching is case-sensitive.
const Prefix = "Basic "

// Scheme resolves requests carrying Basic credentials.
type Scheme struct {
	auth.Base
	repo users.Repository
}

// New creates a Basic scheme backed by repo.
func New(repo users.Repository) *Scheme {
	return &Scheme{repo: repo}
}

// Name returns "basic".
func (s *Scheme) Name() string { return "basic" }

// ExtractBase64AuthorizationHeader strips the "Basic " prefix and returns
// the remaining text verbatim. The text may be empty.
func ExtractBase64AuthorizationHeader(header string) (string, bool) {
	return strings.CutPrefix(header, Prefix)
}

// DecodeBase64AuthorizationHeader decodes standard padded base64 and
// returns the result if it is valid UTF-8.
func DecodeBase64AuthorizationHeader(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// ExtractUserCredentials splits decoded at its first colon. The password
// keeps any further colons and may be empty.
func ExtractUserCredentials(decoded string) (email, password string, ok bool) {
	return strings.Cut(decoded, ":")
}

// UserObjectFromCredentials looks up users by email and checks password
// against the first match only. Later matches are never consulted, even
// when the first one fails. Repository errors count as no match.
func (s *Scheme) UserObjectFromCredentials(ctx context.Context, email, password string) *users.User {
	if s.repo == nil {
		return nil
	}

	found, err := s.repo.Search(ctx, users.Filter{users.FieldEmail: email})
	if err != nil {
		debug.Log("auth", "basic: user search failed", "error", err)
		return nil
	}
	if len(found) == 0 {
		debug.Log("auth", "basic: no matching user")
		return nil
	}

	candidate := found[0]
	if !candidate.IsValidPassword(password) {
		debug.Log("auth", "basic: password mismatch")
		return nil
	}
	return candidate
}

// CurrentUser runs the full pipeline for r.
func (s *Scheme) CurrentUser(ctx context.Context, r *http.Request) *users.User {
	header, ok := s.AuthorizationHeader(r)
	if !ok {
		return nil
	}
	encoded, ok := ExtractBase64AuthorizationHeader(header)
	if !ok {
		debug.Log("auth", "basic: not a Basic header")
		return nil
	}
	decoded, ok := DecodeBase64AuthorizationHeader(encoded)
	if !ok {
		debug.Log("auth", "basic: undecodable credentials")
		return nil
	}
	email, password, ok := ExtractUserCredentials(decoded)
	if !ok {
		debug.Log("auth", "basic: no credential separator")
		return nil
	}
	return s.UserObjectFromCredentials(ctx, email, password)
}
