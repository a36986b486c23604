package domain

import "errors"

// Backend failure taxonomy. Errors returned by the backend adapter unwrap to
// exactly one of these.
var (
	ErrAuthExpired        = errors.New("session expired")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrServerFault        = errors.New("server error")
	ErrNetworkUnreachable = errors.New("backend unreachable")
	ErrRequestRejected    = errors.New("request rejected")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Session errors.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrCorruptedSession  = errors.New("session has no valid user role")
	ErrTenantMismatch    = errors.New("tenant does not match the user's own tenant")
	ErrNoOperatingTenant = errors.New("no operating tenant selected")
	ErrMissingDepartment = errors.New("user is not assigned to a department")
	ErrInvalidTransition = errors.New("invalid session state transition")
)

// ErrPartialSignup is returned when signup created the account but a later
// step failed. Nothing is rolled back.
var ErrPartialSignup = errors.New("signup partially completed")
