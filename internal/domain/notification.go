package domain

// Notification is a user-facing message emitted after an operation
type Notification struct {
	Message string
	Success bool
}

// Notifier receives notifications for the UI layer
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// NoOpNotifier discards notifications (for batch use and tests).
type NoOpNotifier struct{}

func (NoOpNotifier) Notify(Notification) {}
