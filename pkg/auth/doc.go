// Package auth provides pluggable request authentication for portier.
//
// A Scheme decides whether a path needs authentication, extracts the
// credential material a request carries and resolves it to a users.User.
// Base supplies the path-exclusion matcher and Authorization header
// lookup; concrete schemes (basic, session, jwt) embed it and override
// CurrentUser. The hosting application picks the active scheme through
// configuration and installs it with Middleware.
//
// Resolution is total: every failure, whether a malformed header, bad
// encoding, repository error or wrong password, yields a nil user. Callers
// cannot tell the stages apart, which keeps the endpoint from revealing
// whether an account exists.
package auth
