package auth

import (
	"context"
	"errors"
	"fmt"

	"fleetHQ/models"
	"fleetHQ/repository"
)

// Caller is the identity the scheduling core trusts for one request.
type Caller struct {
	UserID   int64
	Username string
	Role     models.Role
}

// ErrUnknownUser is returned when a valid token names a user with no local record.
var ErrUnknownUser = errors.New("unknown user")

type callerKey struct{}

// WithCaller stores the caller in context.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom retrieves the caller from context (if any).
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}

// ResolveCaller maps a token principal to the stored user. The role is read
// from the store so a token claiming "admin" cannot elevate a non-admin.
func ResolveCaller(ctx context.Context, users repository.UserStore, p *Principal) (Caller, error) {
	if p == nil {
		return Caller{}, errors.New("missing principal")
	}
	if users == nil {
		return Caller{}, errors.New("users store not configured")
	}
	u, err := users.GetByUsername(ctx, p.Name)
	if err != nil {
		return Caller{}, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return Caller{}, ErrUnknownUser
	}
	return Caller{UserID: u.ID, Username: u.Username, Role: u.Role}, nil
}
