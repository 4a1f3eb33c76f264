package core

import (
	"errors"
	"fmt"
)

// Session errors
var (
	ErrNoCredential     = errors.New("no credential stored")
	ErrNotAuthenticated = errors.New("not logged in")
	ErrActionInProgress = errors.New("action already in progress")
	ErrClosed           = errors.New("view closed")

	// ErrCredentialChanged means a validation result arrived for a
	// credential that has since been replaced, so it was discarded.
	ErrCredentialChanged = errors.New("credential changed during validation")
)

// Validation messages (client input)
var (
	ErrEmailRequired     = errors.New("email is required")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrUsernameRequired  = errors.New("username is required")
	ErrPasswordRequired  = errors.New("password is required")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrFullNameRequired  = errors.New("full name is required")
	ErrInvalidRole       = errors.New("invalid role")
	ErrBusinessRequired  = errors.New("business name is required for this role")
	ErrDocumentType      = errors.New("invalid document type")
	ErrDocumentNumber    = errors.New("document number is required")
	ErrDocumentFile      = errors.New("document file is required")
	ErrApplicationActive = errors.New("a KYC application is already awaiting review")
	ErrAlreadyVerified   = errors.New("KYC application already approved")
	ErrNoSelection       = errors.New("select an application to review")
	ErrInvalidDecision   = errors.New("decision must be approved or rejected")
)

// Farm and listing validation
var (
	ErrFarmNameRequired     = errors.New("farm name is required")
	ErrFarmLocationRequired = errors.New("farm location is required")
	ErrTitleRequired        = errors.New("listing title is required")
	ErrProduceType          = errors.New("invalid produce type")
	ErrFarmRequired         = errors.New("choose the farm this produce comes from")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInvalidPrice         = errors.New("price must be positive")
	ErrDatesRequired        = errors.New("harvest and expiry dates are required (YYYY-MM-DD)")
	ErrExpiryBeforeHarvest  = errors.New("expiry date must be after harvest date")
)

const genericTransportMessage = "Could not reach the marketplace. Please try again."

// TransportError is a network failure or an unparsable response
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// APIError is a non-2xx response from the remote API
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Detail)
}

// Unauthorized reports whether the API rejected the credential.
func (e *APIError) Unauthorized() bool {
	return e.Status == 401
}

// ServerFault reports a 5xx: the server failed, the request was not judged.
func (e *APIError) ServerFault() bool {
	return e.Status >= 500
}

// AuthenticationError is a login rejected by the server
type AuthenticationError struct {
	Detail string
	Err    error
}

func (e *AuthenticationError) Error() string { return "authentication failed: " + e.Detail }
func (e *AuthenticationError) Unwrap() error { return e.Err }

// RegistrationError is a registration rejected by the server
type RegistrationError struct {
	Detail string
	Err    error
}

func (e *RegistrationError) Error() string { return "registration failed: " + e.Detail }
func (e *RegistrationError) Unwrap() error { return e.Err }

// SessionInvalidError means the stored credential could not be confirmed.
// The session has already been cleared when this is returned.
type SessionInvalidError struct {
	Err error
}

func (e *SessionInvalidError) Error() string {
	return fmt.Sprintf("session invalid: %v", e.Err)
}

func (e *SessionInvalidError) Unwrap() error { return e.Err }

// AuthorizationError is a role mismatch for a page
type AuthorizationError struct {
	Role     Role
	Required []Role
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q is not permitted here", e.Role)
}

// ValidationError blocks a submission before any request is made
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}

// UserMessage maps any error to the text shown to the user
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		transport *TransportError
		authn     *AuthenticationError
		reg       *RegistrationError
		sess      *SessionInvalidError
		authz     *AuthorizationError
		valid     *ValidationError
		api       *APIError
	)

	switch {
	case errors.As(err, &authn):
		return authn.Detail
	case errors.As(err, &reg):
		return reg.Detail
	case errors.As(err, &sess):
		return "Your session has expired. Please log in again."
	case errors.As(err, &authz):
		return "You do not have permission to view this page."
	case errors.As(err, &valid):
		return valid.Err.Error()
	case errors.As(err, &transport):
		return genericTransportMessage
	case errors.As(err, &api):
		if api.Detail != "" && !api.ServerFault() {
			return api.Detail
		}
		return genericTransportMessage
	case errors.Is(err, ErrNoCredential), errors.Is(err, ErrNotAuthenticated):
		return "Please log in to continue."
	case errors.Is(err, ErrActionInProgress):
		return "Please wait for the current request to finish."
	case errors.Is(err, ErrCredentialChanged):
		return "Your session changed. Please try again."
	}
	return err.Error()
}
