package backend

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// ErrorKind classifies a failed backend call.
type ErrorKind string

const (
	KindAuthExpired        ErrorKind = "auth_expired"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindPermissionDenied   ErrorKind = "permission_denied"
	KindNotFound           ErrorKind = "not_found"
	KindValidation         ErrorKind = "validation"
	KindServerFault        ErrorKind = "server_fault"
	KindNetwork            ErrorKind = "network"
	KindRejected           ErrorKind = "rejected"
)

// APIError is returned for every failed backend call. It unwraps to the
// domain sentinel of its kind.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Method     string
	Path       string
	// Detail is the backend's message, normalized to one readable string.
	Detail string
	// Err is the transport error for KindNetwork.
	Err error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("backend %s %s: %s: %v", e.Method, e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("backend %s %s: %d %s: %s", e.Method, e.Path, e.StatusCode, e.Kind, e.Message())
}

func (e *APIError) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Message is the user-facing text of the error.
func (e *APIError) Message() string {
	switch e.Kind {
	case KindValidation, KindRejected, KindInvalidCredentials:
		if e.Detail != "" {
			return e.Detail
		}
	}
	return e.Kind.defaultMessage()
}

// IsKind reports whether err is an *APIError of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *APIError
	return errors.As(err, &e) && e.Kind == kind
}

// classify maps an HTTP status to an error kind. A 401 means an expired
// session for authenticated requests and bad credentials for anonymous ones.
func classify(status int, authenticated bool) ErrorKind {
	switch {
	case status == http.StatusUnauthorized && authenticated:
		return KindAuthExpired
	case status == http.StatusUnauthorized:
		return KindInvalidCredentials
	case status == http.StatusForbidden:
		return KindPermissionDenied
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServerFault
	default:
		return KindRejected
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindAuthExpired:
		return domain.ErrAuthExpired
	case KindInvalidCredentials:
		return domain.ErrInvalidCredentials
	case KindPermissionDenied:
		return domain.ErrPermissionDenied
	case KindNotFound:
		return domain.ErrNotFound
	case KindValidation:
		return domain.ErrValidation
	case KindServerFault:
		return domain.ErrServerFault
	case KindNetwork:
		return domain.ErrNetworkUnreachable
	default:
		return domain.ErrRequestRejected
	}
}

func (k ErrorKind) notification() domain.NotificationKind {
	switch k {
	case KindAuthExpired:
		return domain.NotifySessionExpired
	case KindPermissionDenied:
		return domain.NotifyPermissionDenied
	case KindNotFound:
		return domain.NotifyNotFound
	case KindValidation:
		return domain.NotifyValidation
	case KindServerFault:
		return domain.NotifyServerError
	case KindNetwork:
		return domain.NotifyNetwork
	default:
		return domain.NotifyRequestRejected
	}
}

func (k ErrorKind) defaultMessage() string {
	switch k {
	case KindAuthExpired:
		return "Your session has expired. Please log in again."
	case KindInvalidCredentials:
		return "Incorrect username or password."
	case KindPermissionDenied:
		return "You do not have permission to perform this action."
	case KindNotFound:
		return "The requested resource was not found."
	case KindValidation:
		return "Some of the submitted data is invalid."
	case KindServerFault:
		return "The server encountered an error. Please try again later."
	case KindNetwork:
		return "Unable to reach the server. Check your connection and try again."
	default:
		return "The request was rejected."
	}
}
