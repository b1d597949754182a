// cmd/api/context.go
// Request-context accessors for the authenticated user and visit session.
package main

import (
	"context"
	"net/http"

	"github.com/aoideee/locallibrary/internal/data"
)

type contextKey string

const (
	userContextKey    = contextKey("user")
	sessionContextKey = contextKey("session")
)

// contextSetUser returns a copy of r carrying user.
func (app *applicationDependencies) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser is only called after authenticate has run, so a missing
// value is a programming error.
func (app *applicationDependencies) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}

// contextSetSession returns a copy of r carrying the visit session id.
func (app *applicationDependencies) contextSetSession(r *http.Request, sessionID string) *http.Request {
	ctx := context.WithValue(r.Context(), sessionContextKey, sessionID)
	return r.WithContext(ctx)
}

// contextGetSession returns the visit session id, or "" when the request
// has none.
func (app *applicationDependencies) contextGetSession(r *http.Request) string {
	sessionID, _ := r.Context().Value(sessionContextKey).(string)
	return sessionID
}
