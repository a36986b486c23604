package domain

import "time"

// NotificationKind selects how the dashboard renders a toast.
type NotificationKind string

const (
	NotifySessionExpired   NotificationKind = "session_expired"
	NotifyPermissionDenied NotificationKind = "permission_denied"
	NotifyNotFound         NotificationKind = "not_found"
	NotifyValidation       NotificationKind = "validation"
	NotifyServerError      NotificationKind = "server_error"
	NotifyNetwork          NotificationKind = "network"
	NotifyRequestRejected  NotificationKind = "request_rejected"
	NotifyInfo             NotificationKind = "info"
	NotifySuccess          NotificationKind = "success"
)

// Notification is a dismissible toast.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// Navigation is a forced client-side navigation, e.g. to the login screen.
type Navigation struct {
	ID        string    `json:"id"`
	Target    string    `json:"target"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
