package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/rhuss/portier/pkg/api"
	"github.com/rhuss/portier/pkg/auth"
	"github.com/rhuss/portier/pkg/storage"
	"github.com/rhuss/portier/pkg/transport"
	"github.com/rhuss/portier/pkg/users"
)

// healthChecker is implemented by repositories that can report their
// backend's health.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Adapter serves the portier API over HTTP.
// It routes requests to the appropriate handler and serializes responses.
type Adapter struct {
	repo users.Repository
	mux  *http.ServeMux
}

// NewAdapter creates an HTTP adapter backed by repo.
func NewAdapter(repo users.Repository) *Adapter {
	a := &Adapter{
		repo: repo,
		mux:  http.NewServeMux(),
	}

	a.mux.HandleFunc("GET /api/v1/status", a.handleStatus)
	a.mux.HandleFunc("GET /api/v1/status/{$}", a.handleStatus)
	a.mux.HandleFunc("GET /api/v1/stats", a.handleStats)
	a.mux.HandleFunc("GET /api/v1/unauthorized", a.handleUnauthorized)
	a.mux.HandleFunc("GET /api/v1/unauthorized/{$}", a.handleUnauthorized)
	a.mux.HandleFunc("GET /api/v1/forbidden", a.handleForbidden)
	a.mux.HandleFunc("GET /api/v1/forbidden/{$}", a.handleForbidden)
	a.mux.HandleFunc("GET /api/v1/users", a.handleListUsers)
	a.mux.HandleFunc("GET /api/v1/users/me", a.handleCurrentUser)
	a.mux.HandleFunc("GET /api/v1/users/{id}", a.handleGetUser)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)

	return a
}

// Handle registers an additional handler on the adapter's mux.
func (a *Adapter) Handle(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.mux
}

// handleStatus handles GET /api/v1/status.
func (a *Adapter) handleStatus(w http.ResponseWriter, r *http.Request) {
	transport.WriteJSON(w, http.StatusOK, api.Status{Status: "OK"})
}

// handleStats handles GET /api/v1/stats.
func (a *Adapter) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := a.repo.Count(r.Context())
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.Stats{Users: n})
}

// handleUnauthorized always answers 401. It lets clients exercise the
// error format without credentials.
func (a *Adapter) handleUnauthorized(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w, api.NewUnauthorizedError())
}

// handleForbidden always answers 403.
func (a *Adapter) handleForbidden(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w, api.NewForbiddenError())
}

// handleListUsers handles GET /api/v1/users.
func (a *Adapter) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := a.repo.Search(r.Context(), users.Filter{})
	if err != nil {
		a.writeStoreError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewUserList(list))
}

// handleCurrentUser handles GET /api/v1/users/me.
func (a *Adapter) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	u := auth.UserFromContext(r.Context())
	if u == nil {
		transport.WriteAPIError(w, api.NewNotFoundError("no authenticated user"))
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewUser(u))
}

// handleGetUser handles GET /api/v1/users/{id}.
func (a *Adapter) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	u, err := a.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			transport.WriteAPIError(w, api.NewNotFoundError("user "+id+" not found"))
			return
		}
		a.writeStoreError(w, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, api.NewUser(u))
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if hc, ok := a.repo.(healthChecker); ok {
		if err := hc.HealthCheck(r.Context()); err != nil {
			transport.WriteErrorResponse(w, api.NewServerError("storage unavailable"), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// writeStoreError maps repository errors onto API errors. Internal
// details are not exposed to the client.
func (a *Adapter) writeStoreError(w http.ResponseWriter, err error) {
	var apiErr *api.APIError
	switch {
	case errors.As(err, &apiErr):
		transport.WriteAPIError(w, apiErr)
	case errors.Is(err, storage.ErrNotFound):
		transport.WriteAPIError(w, api.NewNotFoundError(err.Error()))
	case errors.Is(err, storage.ErrInvalidFilter):
		transport.WriteAPIError(w, api.NewInvalidRequestError("", err.Error()))
	default:
		transport.WriteAPIError(w, api.NewServerError("storage error"))
	}
}
