package auth

import (
	"fleetHQ/internal/apperr"
	"fleetHQ/models"
)

// Elevated reports whether the caller may see and mutate every owner's records.
func (c Caller) Elevated() bool {
	return c.Role == models.RoleAdmin
}

// ScopeOwner returns the owner filter for list queries: nil for elevated
// callers, the caller's own id otherwise.
func ScopeOwner(c Caller) *int64 {
	if c.Elevated() {
		return nil
	}
	id := c.UserID
	return &id
}

// Authorize fails with Forbidden unless the caller owns the record or is elevated.
func Authorize(c Caller, ownerID int64) error {
	if c.Elevated() || (c.UserID != 0 && c.UserID == ownerID) {
		return nil
	}
	return apperr.Forbidden("not authorized to access this resource")
}
