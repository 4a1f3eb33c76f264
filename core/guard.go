package core

import "slices"

// RequireRole is the single role gate used by every page. With no roles
// given any authenticated user passes. The check is advisory; the API
// enforces roles on its own.
func RequireRole(user *User, roles ...Role) error {
	if user == nil {
		return ErrNotAuthenticated
	}
	if len(roles) == 0 || slices.Contains(roles, user.Role) {
		return nil
	}
	return &AuthorizationError{Role: user.Role, Required: roles}
}
