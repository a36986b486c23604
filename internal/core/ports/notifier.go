package ports

import "github.com/ticketdesk/dashboard/internal/core/domain"

// Notifier surfaces toasts to the user of one browser session.
type Notifier interface {
	Notify(kind domain.NotificationKind, message string)
}

// Navigator forces the browser session to another screen.
type Navigator interface {
	Navigate(target, reason string)
}

// Feedback is the combined user-facing side-effect surface of a session.
type Feedback interface {
	Notifier
	Navigator
}
