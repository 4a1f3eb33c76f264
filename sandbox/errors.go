package sandbox

import "errors"

// Storage errors
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrApplicationNotFound = errors.New("KYC not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrFarmNotFound        = errors.New("Farm not found")
)

// Auth errors
var (
	ErrUserExists         = errors.New("Email already registered")
	ErrUsernameTaken      = errors.New("Username already taken")
	ErrInvalidCredentials = errors.New("Incorrect email or password")
	ErrInactiveAccount    = errors.New("Inactive user account")
	ErrMissingAuthHeader  = errors.New("Not authenticated")
	ErrInvalidToken       = errors.New("Could not validate credentials")
	ErrSessionExpired     = errors.New("Session expired")
	ErrForbidden          = errors.New("Not enough permissions")
)

// Marketplace errors
var (
	ErrVerificationRequired = errors.New("KYC verification required")
	ErrNotReviewable        = errors.New("KYC application has already been reviewed")
	ErrFarmOwnership        = errors.New("Invalid farm or farm ownership")
	ErrDocumentTooLarge     = errors.New("uploaded file is too large")
	ErrInvalidRequest       = errors.New("invalid request body")
)
