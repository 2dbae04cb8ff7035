package identity

import "errors"

// Sentinel errors returned by the identity service.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrResetMismatch      = errors.New("wrong email or answer")
	ErrSelfDelete         = errors.New("cannot delete your own account")
	ErrSelfDemote         = errors.New("cannot lower your own role")
	ErrRoleTooHigh        = errors.New("cannot assign a role above your own")
)
