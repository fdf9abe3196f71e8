package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/storefront/internal/domain"
)

// ChannelNotifier adapts domain.Notifier to a channel for Bubble Tea.
type ChannelNotifier struct {
	ch chan<- domain.Notification
}

// NewChannelNotifier creates a new channel-based notifier.
func NewChannelNotifier(ch chan<- domain.Notification) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

// Notify sends n to the channel (non-blocking if full).
func (o *ChannelNotifier) Notify(n domain.Notification) {
	select {
	case o.ch <- n:
	default: // Dropped; the status bar only shows the latest anyway
	}
}

// waitForNotification blocks until the next notification arrives.
// The model re-arms it after every NotificationMsg.
func waitForNotification(ch <-chan domain.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return NotificationMsg{Notification: n}
	}
}
