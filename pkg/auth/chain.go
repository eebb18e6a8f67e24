package auth

import (
	"context"
	"net/http"

	"github.com/rhuss/portier/pkg/users"
)

// Chain tries several schemes in order. It is itself a Scheme, so the
// hosting application can install it like any single scheme.
type Chain struct {
	Base

	// Schemes are evaluated left to right.
	Schemes []Scheme
}

// NewChain creates a chain over the given schemes.
func NewChain(schemes ...Scheme) *Chain {
	return &Chain{Schemes: schemes}
}

// Name returns "chain".
func (c *Chain) Name() string { return "chain" }

// Credentials returns the credential material of the first scheme that
// finds any.
func (c *Chain) Credentials(r *http.Request) (string, bool) {
	for _, s := range c.Schemes {
		if v, ok := s.Credentials(r); ok {
			return v, true
		}
	}
	return "", false
}

// CurrentUser returns the first user any scheme resolves. Stops on the
// first non-nil result.
func (c *Chain) CurrentUser(ctx context.Context, r *http.Request) *users.User {
	for _, s := range c.Schemes {
		if u := s.CurrentUser(ctx, r); u != nil {
			return u
		}
	}
	return nil
}
