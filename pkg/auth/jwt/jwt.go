// Package jwt provides a bearer-token scheme that validates HMAC-signed
// JWTs (HS256/384/512) and resolves their subject claim to a stored user.
//
// Every token must carry an exp claim. Issuer and audience are checked
// when configured. The scheme never issues tokens.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/rhuss/portier/pkg/auth"
	"github.com/rhuss/portier/pkg/debug"
	"github.com/rhuss/portier/pkg/users"
)

// BearerPrefix precedes the token in the Authorization header.
const BearerPrefix = "Bearer "

// Config holds the JWT scheme configuration.
type Config struct {
	// Secret is the shared HMAC key. Required.
	Secret []byte

	// Issuer, if set, must equal the iss claim.
	Issuer string

	// Audience, if set, must appear in the aud claim.
	Audience string

	// UserClaim names the claim holding the user ID. Default: "sub".
	UserClaim string
}

// Scheme validates JWT bearer tokens.
type Scheme struct {
	auth.Base
	secret    []byte
	userClaim string
	parser    *jwtlib.Parser
	repo      users.Repository
}

// New creates a JWT scheme resolving subjects against repo.
func New(cfg Config, repo users.Repository) (*Scheme, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("jwt: secret is required")
	}

	opts := []jwtlib.ParserOption{
		jwtlib.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwtlib.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwtlib.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwtlib.WithAudience(cfg.Audience))
	}

	claim := cfg.UserClaim
	if claim == "" {
		claim = "sub"
	}

	return &Scheme{
		secret:    cfg.Secret,
		userClaim: claim,
		parser:    jwtlib.NewParser(opts...),
		repo:      repo,
	}, nil
}

// Name returns "jwt".
func (s *Scheme) Name() string { return "jwt" }

// Credentials returns the bearer token. An empty token counts as absent.
func (s *Scheme) Credentials(r *http.Request) (string, bool) {
	header, ok := s.AuthorizationHeader(r)
	if !ok {
		return "", false
	}
	token, ok := strings.CutPrefix(header, BearerPrefix)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

// Subject verifies tokenStr and returns its user claim.
func (s *Scheme) Subject(tokenStr string) (string, error) {
	claims := jwtlib.MapClaims{}
	_, err := s.parser.ParseWithClaims(tokenStr, claims, func(*jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid JWT: %w", err)
	}

	subject, _ := claims[s.userClaim].(string)
	if subject == "" {
		return "", fmt.Errorf("JWT missing %q claim", s.userClaim)
	}
	return subject, nil
}

// CurrentUser validates the bearer token and looks up its subject by ID.
func (s *Scheme) CurrentUser(ctx context.Context, r *http.Request) *users.User {
	tokenStr, ok := s.Credentials(r)
	if !ok {
		return nil
	}

	subject, err := s.Subject(tokenStr)
	if err != nil {
		debug.Log("auth", "jwt: validation failed", "error", err)
		return nil
	}
	if s.repo == nil {
		return nil
	}

	found, err := s.repo.Search(ctx, users.Filter{users.FieldID: subject})
	if err != nil {
		debug.Log("auth", "jwt: user search failed", "error", err)
		return nil
	}
	if len(found) == 0 {
		debug.Log("auth", "jwt: unknown subject")
		return nil
	}
	return found[0]
}
