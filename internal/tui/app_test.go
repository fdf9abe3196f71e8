package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/mmcdole/storefront/internal/order"
	"github.com/mmcdole/storefront/internal/session"
)

// fakeBackend is an in-memory store API
type fakeBackend struct {
	mu         sync.Mutex
	products   []domain.Product
	categories []string
	addresses  []domain.Address
	listErr    error
	orders     []domain.OrderRequest
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products: []domain.Product{
			{ID: "1", Name: "Red Mug", Category: "KITCHEN", Price: decimal.NewFromInt(10), AvailableItems: 5},
			{ID: "2", Name: "Blue Mug", Category: "KITCHEN", Price: decimal.NewFromInt(5), AvailableItems: 3},
			{ID: "3", Name: "Desk Lamp", Category: "HOME", Price: decimal.NewFromInt(30), AvailableItems: 1},
		},
		categories: []string{"HOME", "KITCHEN"},
	}
}

func (b *fakeBackend) ListProducts(context.Context) ([]domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]domain.Product, len(b.products))
	copy(out, b.products)
	return out, nil
}

func (b *fakeBackend) ListCategories(context.Context) ([]string, error) {
	return b.categories, nil
}

func (b *fakeBackend) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (b *fakeBackend) CreateProduct(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := domain.Product{ID: fmt.Sprintf("%d", len(b.products)+1), Name: in.Name, Category: in.Category, Price: in.Price}
	b.products = append(b.products, p)
	return &p, nil
}

func (b *fakeBackend) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func (b *fakeBackend) DeleteProduct(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, p := range b.products {
		if p.ID == id {
			b.products = append(b.products[:i], b.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (b *fakeBackend) ListAddresses(context.Context) ([]domain.Address, error) {
	return b.addresses, nil
}

func (b *fakeBackend) CreateAddress(_ context.Context, in domain.AddressInput) (*domain.Address, error) {
	a := domain.Address{ID: "a-new", Name: in.Name, Street: in.Street, City: in.City}
	b.addresses = append(b.addresses, a)
	return &a, nil
}

func (b *fakeBackend) PlaceOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	b.orders = append(b.orders, req)
	return &domain.Order{ID: "o-1", AddressID: req.AddressID, ProductID: req.ProductID, Quantity: req.Quantity}, nil
}

type fakeAuth struct{}

func (fakeAuth) SignIn(_ context.Context, creds domain.Credentials) (string, error) {
	return "token-" + creds.Username, nil
}

func (fakeAuth) SignUp(context.Context, domain.SignupRequest) error { return nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestModel returns a signed-in model with the catalog loaded
func newTestModel(t *testing.T, username string) (Model, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	sessions := session.NewManager(fakeAuth{}, nil, []string{"admin@demo.com"}, nil, discardLogger())
	s, ok := sessions.Restore("token", username, false)
	require.True(t, ok)

	m := NewModel(Deps{
		Sessions: sessions,
		Connect:  func(string) Backend { return backend },
		Logger:   discardLogger(),
	})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	next, _ = next.Update(LoggedInMsg{Session: s})
	m = next.(Model)
	require.NotNil(t, m.Engine)
	require.NoError(t, m.Engine.Refresh(context.Background()))
	next, _ = m.Update(CatalogRefreshedMsg{})
	return next.(Model), backend
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func listIDs(m Model) []string {
	var ids []string
	for _, p := range m.List.Products() {
		ids = append(ids, p.ID)
	}
	return ids
}

func TestModel_Catalog(t *testing.T) {
	t.Run("Should show the catalog after sign in", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		assert.Equal(t, ScreenCatalog, m.Screen)
		assert.Equal(t, []string{"1", "2", "3"}, listIDs(m))
		assert.Equal(t, []string{domain.CategoryAll, "HOME", "KITCHEN"}, m.categories)
		assert.NotEmpty(t, m.View())
	})

	t.Run("Should cycle categories", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "tab")
		assert.Equal(t, "HOME", m.Engine.View().Category)
		assert.Equal(t, []string{"3"}, listIDs(m))

		m = press(t, m, "tab", "tab")
		assert.Equal(t, domain.CategoryAll, m.Engine.View().Category)
	})

	t.Run("Should filter while typing a search", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "/", "m", "U", "g")
		assert.True(t, m.searching)
		assert.Equal(t, "mUg", m.Engine.View().Search)
		assert.Equal(t, []string{"1", "2"}, listIDs(m))

		m = press(t, m, "enter")
		assert.False(t, m.searching)
		assert.Equal(t, "mUg", m.Engine.View().Search)

		m = press(t, m, "esc")
		assert.Empty(t, m.Engine.View().Search)
		assert.Len(t, m.List.Products(), 3)
	})

	t.Run("Should suggest names when a search matches nothing", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "/", "l", "a", "m", "q")
		assert.Empty(t, m.List.Products())
		assert.Contains(t, m.emptyHint(m.Engine.View()), "Desk Lamp")
	})

	t.Run("Should apply the chosen sort", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "s")
		require.True(t, m.SortModal.IsVisible())
		m = press(t, m, "down", "enter")
		assert.Equal(t, domain.SortPriceDesc, m.Engine.View().Sort)
		assert.Equal(t, []string{"3", "1", "2"}, listIDs(m))
	})

	t.Run("Should refuse admin actions for shoppers", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "a")
		assert.Equal(t, ScreenCatalog, m.Screen)
		assert.True(t, m.StatusIsErr)

		m = press(t, m, "d")
		assert.Equal(t, OverlayNone, m.Overlay)
	})

	t.Run("Should flag an offline catalog after a failed refresh", func(t *testing.T) {
		m, backend := newTestModel(t, "shopper@demo.com")
		assert.Empty(t, m.staleNotice())

		backend.listErr = errors.New("connection refused")
		err := m.Engine.Refresh(context.Background())
		require.Error(t, err)

		next, _ := m.Update(CatalogRefreshedMsg{Err: err})
		m = next.(Model)
		assert.Equal(t, ScreenCatalog, m.Screen)
		assert.Len(t, m.List.Products(), 3)
		assert.Contains(t, m.renderFooter(), "Offline, showing catalog from")

		backend.listErr = nil
		require.NoError(t, m.Engine.Refresh(context.Background()))
		next, _ = m.Update(CatalogRefreshedMsg{})
		m = next.(Model)
		assert.Empty(t, m.staleNotice())
	})

	t.Run("Should return to sign in when the token is rejected", func(t *testing.T) {
		m, backend := newTestModel(t, "shopper@demo.com")
		backend.listErr = domain.ErrUnauthenticated
		err := m.Engine.Refresh(context.Background())
		require.Error(t, err)

		next, _ := m.Update(CatalogRefreshedMsg{Err: err})
		m = next.(Model)
		assert.Equal(t, ScreenLogin, m.Screen)
		assert.Nil(t, m.Engine)
		assert.False(t, m.sessions.Current().Valid())
	})
}

func TestModel_Status(t *testing.T) {
	t.Run("Should show a notification until its own clear arrives", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		next, _ := m.Update(NotificationMsg{domain.Notification{Message: "first", Success: true}})
		m = next.(Model)
		firstSeq := m.statusSeq
		next, _ = m.Update(NotificationMsg{domain.Notification{Message: "Failed to delete product"}})
		m = next.(Model)

		next, _ = m.Update(ClearStatusMsg{Seq: firstSeq})
		m = next.(Model)
		assert.Equal(t, "Failed to delete product", m.StatusMsg)
		assert.True(t, m.StatusIsErr)

		next, _ = m.Update(ClearStatusMsg{Seq: m.statusSeq})
		m = next.(Model)
		assert.Empty(t, m.StatusMsg)
	})
}

func TestModel_Admin(t *testing.T) {
	t.Run("Should reject a bad price before saving", func(t *testing.T) {
		m, backend := newTestModel(t, "admin@demo.com")
		m = press(t, m, "a")
		require.Equal(t, ScreenProductForm, m.Screen)

		m.ProductForm.SetValue("name", "Teapot")
		m.ProductForm.SetValue("category", "KITCHEN")
		m.ProductForm.SetValue("price", "cheap")
		m, _ = m.submitProductForm()

		assert.False(t, m.saving)
		assert.Contains(t, m.ProductForm.Error(), "price")
		assert.Len(t, backend.products, 3)
	})

	t.Run("Should leave the form once the product is saved", func(t *testing.T) {
		m, backend := newTestModel(t, "admin@demo.com")
		m = press(t, m, "a")
		m.ProductForm.SetValue("name", "Teapot")
		m.ProductForm.SetValue("category", "KITCHEN")
		m.ProductForm.SetValue("price", "12.50")
		m, _ = m.submitProductForm()
		require.True(t, m.saving)

		input, err := m.draft.Input()
		require.NoError(t, err)
		require.NoError(t, m.Engine.CreateOrUpdate(context.Background(), input, ""))

		next, _ := m.Update(MutationDoneMsg{Op: "create"})
		m = next.(Model)
		assert.Equal(t, ScreenCatalog, m.Screen)
		assert.Len(t, backend.products, 4)
		assert.Len(t, m.List.Products(), 4)
		assert.Equal(t, uint64(1), m.syncedGen)
	})

	t.Run("Should title the form by what it edits", func(t *testing.T) {
		m, _ := newTestModel(t, "admin@demo.com")
		added := press(t, m, "a")
		require.Equal(t, ScreenProductForm, added.Screen)
		assert.Equal(t, "Add product", added.ProductForm.Title())

		edited := press(t, m, "e")
		require.Equal(t, ScreenProductForm, edited.Screen)
		assert.Equal(t, "Edit product", edited.ProductForm.Title())
		assert.Equal(t, "Red Mug", edited.ProductForm.Value("name"))
	})

	t.Run("Should ask before deleting", func(t *testing.T) {
		m, _ := newTestModel(t, "admin@demo.com")
		m = press(t, m, "d")
		require.Equal(t, OverlayConfirmDelete, m.Overlay)
		require.NotNil(t, m.pendingDelete)
		assert.Equal(t, "1", m.pendingDelete.ID)
		assert.NotEmpty(t, m.View())

		m = press(t, m, "n")
		assert.Equal(t, OverlayNone, m.Overlay)
		assert.Nil(t, m.pendingDelete)
	})
}

func TestModel_Order(t *testing.T) {
	t.Run("Should walk the wizard to a placed order", func(t *testing.T) {
		m, backend := newTestModel(t, "shopper@demo.com")
		backend.addresses = []domain.Address{{ID: "a1", Name: "Home", Street: "1 Main St", City: "Pune"}}

		m = press(t, m, "enter")
		require.Equal(t, ScreenDetail, m.Screen)
		m = press(t, m, "+", "+")
		assert.Equal(t, 3, m.quantity)

		m = press(t, m, "b")
		require.Equal(t, ScreenOrder, m.Screen)
		require.NotNil(t, m.Wizard)
		require.NoError(t, m.Wizard.LoadAddresses(context.Background()))

		m = press(t, m, "enter")
		assert.Equal(t, order.StepSelectAddress, m.Wizard.Step())
		m = press(t, m, "enter")
		assert.Equal(t, order.StepConfirm, m.Wizard.Step())
		assert.NotEmpty(t, m.View())

		placed, err := m.Wizard.PlaceOrder(context.Background())
		require.NoError(t, err)
		next, _ := m.Update(OrderPlacedMsg{Order: placed})
		m = next.(Model)

		assert.Equal(t, ScreenCatalog, m.Screen)
		assert.Nil(t, m.Wizard)
		require.Len(t, backend.orders, 1)
		assert.Equal(t, domain.OrderRequest{AddressID: "a1", ProductID: "1", Quantity: 3}, backend.orders[0])
	})

	t.Run("Should stay on address selection without an address", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "b", "enter", "enter")
		require.NotNil(t, m.Wizard)
		assert.Equal(t, order.StepSelectAddress, m.Wizard.Step())
		assert.ErrorIs(t, m.Wizard.InlineError(), domain.ErrValidation)
	})

	t.Run("Should cap the quantity at the stock", func(t *testing.T) {
		m, _ := newTestModel(t, "shopper@demo.com")
		m = press(t, m, "G", "enter", "+", "+")
		require.NotNil(t, m.detail)
		assert.Equal(t, "3", m.detail.ID)
		assert.Equal(t, 1, m.quantity)
	})
}

func TestModel_Login(t *testing.T) {
	t.Run("Should show a validation error for a bad email", func(t *testing.T) {
		sessions := session.NewManager(fakeAuth{}, nil, nil, nil, discardLogger())
		m := NewModel(Deps{Sessions: sessions, Logger: discardLogger()})
		next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
		m = next.(Model)

		_, err := sessions.Login(context.Background(), domain.Credentials{Username: "nope", Password: "x"})
		require.Error(t, err)
		next, _ = m.Update(LoggedInMsg{Err: err})
		m = next.(Model)

		assert.Equal(t, ScreenLogin, m.Screen)
		assert.Contains(t, m.LoginForm.Error(), "username")
		assert.NotEmpty(t, m.View())
	})

	t.Run("Should prefill the email after signing up", func(t *testing.T) {
		sessions := session.NewManager(fakeAuth{}, nil, nil, nil, discardLogger())
		m := NewModel(Deps{Sessions: sessions, Logger: discardLogger()})
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
		m = next.(Model)
		require.Equal(t, ScreenSignup, m.Screen)

		next, _ = m.Update(SignedUpMsg{Email: "new@demo.com"})
		m = next.(Model)
		assert.Equal(t, ScreenLogin, m.Screen)
		assert.Equal(t, "new@demo.com", m.LoginForm.Value("username"))
	})
}
