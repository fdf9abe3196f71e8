// Package order drives the three-step checkout: review the item, pick
// or add a shipping address, confirm.
package order

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/storefront/internal/domain"
)

// Step is a wizard stage
type Step int

const (
	StepItems Step = iota
	StepSelectAddress
	StepConfirm
)

// Steps returns the stages in order
func Steps() []Step {
	return []Step{StepItems, StepSelectAddress, StepConfirm}
}

func (s Step) String() string {
	switch s {
	case StepItems:
		return "Items"
	case StepSelectAddress:
		return "Select Address"
	case StepConfirm:
		return "Confirm Order"
	default:
		return "Unknown"
	}
}

const (
	msgSelectAddress = "Please select an address!"
	msgOrderPlaced   = "Order placed successfully!"
	msgOrderFailed   = "Failed to place order"
	msgAddressAdded  = "Address saved"
	msgAddressFailed = "Failed to save address"
)

// ErrNoAddress is returned when moving past address selection without one
var ErrNoAddress = &domain.ValidationError{Message: msgSelectAddress}

// Item is the product being ordered
type Item struct {
	Product  domain.Product
	Quantity int
}

// Repository is the slice of the store API the wizard needs
type Repository interface {
	domain.AddressRepository
	domain.OrderRepository
}

// Wizard holds checkout state. It is safe for concurrent use; the TUI
// reads it from View while commands mutate it.
type Wizard struct {
	repo     Repository
	notifier domain.Notifier
	logger   *slog.Logger

	mu        sync.RWMutex
	step      Step
	item      Item
	addresses []domain.Address
	selected  string
	draft     domain.AddressInput
	inlineErr error
}

// NewWizard starts a checkout for item. A quantity below one is raised to one.
func NewWizard(repo Repository, item Item, notifier domain.Notifier, logger *slog.Logger) *Wizard {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = domain.NoOpNotifier{}
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	return &Wizard{repo: repo, item: item, notifier: notifier, logger: logger}
}

// Step returns the current stage
func (w *Wizard) Step() Step {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.step
}

// Item returns the product and quantity being ordered
func (w *Wizard) Item() Item {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.item
}

// Addresses returns a copy of the loaded addresses
func (w *Wizard) Addresses() []domain.Address {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]domain.Address, len(w.addresses))
	copy(out, w.addresses)
	return out
}

// Selected returns the selected address, if any
func (w *Wizard) Selected() (domain.Address, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, a := range w.addresses {
		if a.ID == w.selected {
			return a, true
		}
	}
	return domain.Address{}, false
}

// InlineError is the message shown under the current step, or nil
func (w *Wizard) InlineError() error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.inlineErr
}

// Draft returns the new-address form contents
func (w *Wizard) Draft() domain.AddressInput {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.draft
}

// SetDraft replaces the new-address form contents
func (w *Wizard) SetDraft(input domain.AddressInput) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = input
}

// LoadAddresses fetches the user's saved addresses. On failure the
// current list is kept.
func (w *Wizard) LoadAddresses(ctx context.Context) error {
	addrs, err := w.repo.ListAddresses(ctx)
	if err != nil {
		w.logger.Error("failed to load addresses", "error", err)
		return &domain.FetchError{Op: "addresses", Err: err}
	}
	w.mu.Lock()
	w.addresses = addrs
	w.mu.Unlock()
	w.logger.Debug("loaded addresses", "count", len(addrs))
	return nil
}

// AddAddress validates and saves the draft address, appends it to the
// list and clears the draft.
func (w *Wizard) AddAddress(ctx context.Context) (*domain.Address, error) {
	input := w.Draft()
	if err := domain.Validate(input); err != nil {
		w.setInlineError(err)
		return nil, err
	}

	addr, err := w.repo.CreateAddress(ctx, input)
	if err != nil {
		w.logger.Error("failed to save address", "error", err)
		w.notifier.Notify(domain.Notification{Message: msgAddressFailed})
		return nil, &domain.MutationError{Op: "create address", Err: err}
	}

	// Without an ID the address can't be selected; pick up the
	// server's copy instead.
	var reloaded []domain.Address
	if addr.ID == "" {
		reloaded, addr = w.reloadFor(ctx, input, addr)
	}

	w.mu.Lock()
	switch {
	case reloaded != nil:
		w.addresses = reloaded
	case addr.ID != "":
		w.addresses = append(w.addresses, *addr)
	}
	w.draft = domain.AddressInput{}
	w.inlineErr = nil
	if addr.ID != "" && w.selected == "" {
		w.selected = addr.ID
	}
	w.mu.Unlock()

	w.notifier.Notify(domain.Notification{Message: msgAddressAdded, Success: true})
	return addr, nil
}

// reloadFor refetches the address list after the server saved input
// without returning an ID. It returns the fresh list and the newest
// entry matching input, or nil and addr when the list can't be loaded.
func (w *Wizard) reloadFor(ctx context.Context, input domain.AddressInput, addr *domain.Address) ([]domain.Address, *domain.Address) {
	addrs, err := w.repo.ListAddresses(ctx)
	if err != nil {
		w.logger.Error("failed to reload addresses", "error", err)
		return nil, addr
	}
	if addrs == nil {
		addrs = []domain.Address{}
	}
	for i := len(addrs) - 1; i >= 0; i-- {
		if addrs[i].ID != "" && addrs[i].Input() == input {
			found := addrs[i]
			return addrs, &found
		}
	}
	w.logger.Warn("saved address missing from reloaded list", "name", input.Name)
	return addrs, addr
}

// SelectAddress picks a loaded address by ID
func (w *Wizard) SelectAddress(id string) error {
	if id == "" {
		return ErrNoAddress
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.addresses {
		if a.ID == id {
			w.selected = id
			w.inlineErr = nil
			return nil
		}
	}
	return domain.ErrNotFound
}

// Next advances one step. Leaving address selection requires an address.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepSelectAddress && w.selected == "" {
		w.inlineErr = ErrNoAddress
		return ErrNoAddress
	}
	if w.step < StepConfirm {
		w.step++
	}
	w.inlineErr = nil
	return nil
}

// Back returns to the previous step; it is a no-op on the first step
func (w *Wizard) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepItems {
		w.step--
	}
	w.inlineErr = nil
}

// PlaceOrder submits the order for the selected address and the item
func (w *Wizard) PlaceOrder(ctx context.Context) (*domain.Order, error) {
	w.mu.RLock()
	req := domain.OrderRequest{
		AddressID: w.selected,
		ProductID: w.item.Product.ID,
		Quantity:  w.item.Quantity,
	}
	w.mu.RUnlock()

	if req.AddressID == "" {
		w.setInlineError(ErrNoAddress)
		w.notifier.Notify(domain.Notification{Message: msgSelectAddress})
		return nil, ErrNoAddress
	}

	placed, err := w.repo.PlaceOrder(ctx, req)
	if err != nil {
		w.logger.Error("failed to place order", "address", req.AddressID, "product", req.ProductID, "error", err)
		msg := msgOrderFailed
		if errors.Is(err, domain.ErrServerOffline) {
			msg += ": server unreachable"
		}
		w.notifier.Notify(domain.Notification{Message: msg})
		return nil, &domain.MutationError{Op: "place order", Err: err}
	}

	w.setInlineError(nil)

	w.logger.Info("order placed", "order", placed.ID, "product", req.ProductID, "quantity", req.Quantity)
	w.notifier.Notify(domain.Notification{Message: msgOrderPlaced, Success: true})
	return placed, nil
}

func (w *Wizard) setInlineError(err error) {
	w.mu.Lock()
	w.inlineErr = err
	w.mu.Unlock()
}
