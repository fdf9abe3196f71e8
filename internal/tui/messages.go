package tui

import (
	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/session"
)

// Message types for the TUI

// NotificationMsg carries a notification emitted by the core
type NotificationMsg struct {
	domain.Notification
}

// ClearStatusMsg clears the status bar if no newer notification replaced it
type ClearStatusMsg struct {
	Seq int
}

// TickMsg advances the loading spinner
type TickMsg struct{}

// LoggedInMsg signals the result of a sign in
type LoggedInMsg struct {
	Session session.Session
	Err     error
}

// SignedUpMsg signals the result of an account creation
type SignedUpMsg struct {
	Email string
	Err   error
}

// CatalogRefreshedMsg signals that a refresh finished. The catalog
// itself is read back from the engine.
type CatalogRefreshedMsg struct {
	Err error
}

// MutationDoneMsg signals that a create, update or delete finished
type MutationDoneMsg struct {
	Op  string
	ID  string
	Err error
}

// ProductLoadedMsg carries a freshly fetched product for the detail screen
type ProductLoadedMsg struct {
	Product *domain.Product
	Err     error
}

// AddressesLoadedMsg signals that the order wizard has the address list
type AddressesLoadedMsg struct {
	Err error
}

// AddressAddedMsg signals the result of saving a new address
type AddressAddedMsg struct {
	Address *domain.Address
	Err     error
}

// OrderPlacedMsg signals the result of placing an order
type OrderPlacedMsg struct {
	Order *domain.Order
	Err   error
}

// LinkOpenedMsg signals the result of opening a product link
type LinkOpenedMsg struct {
	Err error
}
