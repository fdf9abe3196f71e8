package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/storefront/internal/catalog"
	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/order"
	"github.com/mmcdole/storefront/internal/session"
)

// Command factories for async operations

const (
	fetchTimeout  = 30 * time.Second
	mutateTimeout = 20 * time.Second
)

// LinkOpener opens a link outside the terminal
type LinkOpener interface {
	Open(link string) error
}

// LoginCmd signs in with creds
func LoginCmd(sessions *session.Manager, creds domain.Credentials) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		s, err := sessions.Login(ctx, creds)
		return LoggedInMsg{Session: s, Err: err}
	}
}

// SignupCmd creates an account
func SignupCmd(sessions *session.Manager, req domain.SignupRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		err := sessions.Signup(ctx, req)
		return SignedUpMsg{Email: req.Email, Err: err}
	}
}

// RefreshCmd reloads the catalog into the engine
func RefreshCmd(engine *catalog.Engine) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		return CatalogRefreshedMsg{Err: engine.Refresh(ctx)}
	}
}

// SaveProductCmd creates or updates a product. The engine refreshes
// the catalog before this returns.
func SaveProductCmd(engine *catalog.Engine, input domain.ProductInput, existingID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout+fetchTimeout)
		defer cancel()

		op := "create"
		if existingID != "" {
			op = "update"
		}
		err := engine.CreateOrUpdate(ctx, input, existingID)
		return MutationDoneMsg{Op: op, ID: existingID, Err: err}
	}
}

// DeleteProductCmd removes a product
func DeleteProductCmd(engine *catalog.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout+fetchTimeout)
		defer cancel()

		return MutationDoneMsg{Op: "delete", ID: id, Err: engine.Remove(ctx, id)}
	}
}

// LoadProductCmd fetches the latest copy of a product
func LoadProductCmd(engine *catalog.Engine, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		p, err := engine.FetchProduct(ctx, id)
		return ProductLoadedMsg{Product: p, Err: err}
	}
}

// LoadAddressesCmd loads the wizard's address list
func LoadAddressesCmd(w *order.Wizard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()

		return AddressesLoadedMsg{Err: w.LoadAddresses(ctx)}
	}
}

// AddAddressCmd saves the wizard's address draft
func AddAddressCmd(w *order.Wizard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		a, err := w.AddAddress(ctx)
		return AddressAddedMsg{Address: a, Err: err}
	}
}

// PlaceOrderCmd submits the order
func PlaceOrderCmd(w *order.Wizard) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), mutateTimeout)
		defer cancel()

		o, err := w.PlaceOrder(ctx)
		return OrderPlacedMsg{Order: o, Err: err}
	}
}

// OpenLinkCmd opens link with opener
func OpenLinkCmd(opener LinkOpener, link string) tea.Cmd {
	return func() tea.Msg {
		return LinkOpenedMsg{Err: opener.Open(link)}
	}
}

// TickCmd returns a command that sends a tick after a delay
func TickCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return TickMsg{}
	})
}

// ClearStatusCmd returns a command that clears status after a delay
func ClearStatusCmd(delay time.Duration, seq int) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}
