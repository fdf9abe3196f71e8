package order

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/storefront/internal/domain"
)

type fakeRepo struct {
	addresses []domain.Address
	noID      bool
	listErr   error
	createErr error
	orderErr  error
	orders    []domain.OrderRequest
	created   []domain.AddressInput
}

func (r *fakeRepo) ListAddresses(context.Context) ([]domain.Address, error) {
	return r.addresses, r.listErr
}

func (r *fakeRepo) CreateAddress(_ context.Context, in domain.AddressInput) (*domain.Address, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.created = append(r.created, in)
	if r.noID {
		// The server stores the address but answers without an ID
		r.addresses = append(r.addresses, domain.Address{
			ID: "srv-1", Name: in.Name, ContactNumber: in.ContactNumber, Street: in.Street,
			City: in.City, State: in.State, Landmark: in.Landmark, ZipCode: in.ZipCode,
		})
		return &domain.Address{Name: in.Name, Street: in.Street, City: in.City}, nil
	}
	return &domain.Address{ID: "new", Name: in.Name, Street: in.Street, City: in.City}, nil
}

func (r *fakeRepo) PlaceOrder(_ context.Context, req domain.OrderRequest) (*domain.Order, error) {
	if r.orderErr != nil {
		return nil, r.orderErr
	}
	r.orders = append(r.orders, req)
	return &domain.Order{ID: "o1", AddressID: req.AddressID, ProductID: req.ProductID, Quantity: req.Quantity}, nil
}

type notes []domain.Notification

func (n *notes) Notify(note domain.Notification) { *n = append(*n, note) }

func testItem() Item {
	return Item{Product: domain.Product{ID: "p1", Name: "Lamp", Price: decimal.NewFromInt(30)}, Quantity: 2}
}

func validAddress() domain.AddressInput {
	return domain.AddressInput{
		Name:          "Home",
		ContactNumber: "5550100",
		Street:        "1 Main St",
		City:          "Springfield",
		State:         "IL",
		ZipCode:       "62701",
	}
}

func TestWizardSteps(t *testing.T) {
	t.Run("Should block leaving address selection without an address", func(t *testing.T) {
		w := NewWizard(&fakeRepo{}, testItem(), nil, nil)
		assert.Equal(t, StepItems, w.Step())

		require.NoError(t, w.Next())
		assert.Equal(t, StepSelectAddress, w.Step())

		err := w.Next()
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Equal(t, "Please select an address!", err.Error())
		assert.Equal(t, StepSelectAddress, w.Step())
		assert.Equal(t, err, w.InlineError())
	})

	t.Run("Should advance once an address is selected", func(t *testing.T) {
		repo := &fakeRepo{addresses: []domain.Address{{ID: "a1", Name: "Home", Street: "1 Main", City: "X"}}}
		w := NewWizard(repo, testItem(), nil, nil)
		require.NoError(t, w.LoadAddresses(context.Background()))
		require.NoError(t, w.Next())
		require.NoError(t, w.SelectAddress("a1"))
		require.NoError(t, w.Next())
		assert.Equal(t, StepConfirm, w.Step())
		assert.Nil(t, w.InlineError())

		require.NoError(t, w.Next())
		assert.Equal(t, StepConfirm, w.Step())

		w.Back()
		w.Back()
		w.Back()
		assert.Equal(t, StepItems, w.Step())
	})

	t.Run("Should refuse unknown addresses", func(t *testing.T) {
		w := NewWizard(&fakeRepo{}, testItem(), nil, nil)
		assert.True(t, errors.Is(w.SelectAddress("ghost"), domain.ErrNotFound))
	})

	t.Run("Should refuse an empty address ID", func(t *testing.T) {
		repo := &fakeRepo{addresses: []domain.Address{{Name: "Unsaved"}}}
		w := NewWizard(repo, testItem(), nil, nil)
		require.NoError(t, w.LoadAddresses(context.Background()))
		assert.ErrorIs(t, w.SelectAddress(""), ErrNoAddress)
		_, ok := w.Selected()
		assert.False(t, ok)
	})

	t.Run("Should raise quantity to one", func(t *testing.T) {
		w := NewWizard(&fakeRepo{}, Item{Quantity: 0}, nil, nil)
		assert.Equal(t, 1, w.Item().Quantity)
	})

	t.Run("Should name the steps", func(t *testing.T) {
		labels := []string{}
		for _, s := range Steps() {
			labels = append(labels, s.String())
		}
		assert.Equal(t, []string{"Items", "Select Address", "Confirm Order"}, labels)
	})
}

func TestWizardAddresses(t *testing.T) {
	t.Run("Should keep current list when loading fails", func(t *testing.T) {
		repo := &fakeRepo{addresses: []domain.Address{{ID: "a1"}}}
		w := NewWizard(repo, testItem(), nil, nil)
		require.NoError(t, w.LoadAddresses(context.Background()))

		repo.listErr = domain.ErrServerOffline
		err := w.LoadAddresses(context.Background())
		assert.True(t, errors.Is(err, domain.ErrServerOffline))
		assert.Len(t, w.Addresses(), 1)
	})

	t.Run("Should add, select and reset the draft", func(t *testing.T) {
		var n notes
		repo := &fakeRepo{}
		w := NewWizard(repo, testItem(), &n, nil)
		w.SetDraft(validAddress())

		addr, err := w.AddAddress(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new", addr.ID)
		assert.Len(t, w.Addresses(), 1)
		assert.Equal(t, domain.AddressInput{}, w.Draft())
		sel, ok := w.Selected()
		assert.True(t, ok)
		assert.Equal(t, "Home, 1 Main St, Springfield", sel.Label())
		assert.True(t, n[0].Success)
	})

	t.Run("Should pick up the server copy when the reply has no ID", func(t *testing.T) {
		repo := &fakeRepo{noID: true}
		w := NewWizard(repo, testItem(), nil, nil)
		require.NoError(t, w.Next())
		w.SetDraft(validAddress())

		addr, err := w.AddAddress(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "srv-1", addr.ID)
		require.Len(t, w.Addresses(), 1)
		assert.Equal(t, "srv-1", w.Addresses()[0].ID)

		require.NoError(t, w.Next())
		assert.Equal(t, StepConfirm, w.Step())
		_, err = w.PlaceOrder(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "srv-1", repo.orders[0].AddressID)
	})

	t.Run("Should not list an address it can't select", func(t *testing.T) {
		repo := &fakeRepo{noID: true, listErr: domain.ErrServerOffline}
		w := NewWizard(repo, testItem(), nil, nil)
		w.SetDraft(validAddress())

		addr, err := w.AddAddress(context.Background())
		require.NoError(t, err)
		assert.Empty(t, addr.ID)
		assert.Empty(t, w.Addresses())
		_, ok := w.Selected()
		assert.False(t, ok)
	})

	t.Run("Should validate the draft locally", func(t *testing.T) {
		repo := &fakeRepo{}
		w := NewWizard(repo, testItem(), nil, nil)
		in := validAddress()
		in.ZipCode = ""
		w.SetDraft(in)

		_, err := w.AddAddress(context.Background())
		var verr *domain.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "zipCode", verr.Field)
		assert.Empty(t, repo.created)
		assert.Equal(t, in, w.Draft())
	})

	t.Run("Should keep the draft when saving fails", func(t *testing.T) {
		var n notes
		repo := &fakeRepo{createErr: domain.ErrUnauthenticated}
		w := NewWizard(repo, testItem(), &n, nil)
		w.SetDraft(validAddress())

		_, err := w.AddAddress(context.Background())
		assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
		assert.Equal(t, validAddress(), w.Draft())
		assert.False(t, n[0].Success)
	})
}

func TestWizardPlaceOrder(t *testing.T) {
	t.Run("Should require an address", func(t *testing.T) {
		var n notes
		repo := &fakeRepo{}
		w := NewWizard(repo, testItem(), &n, nil)

		_, err := w.PlaceOrder(context.Background())
		assert.ErrorIs(t, err, ErrNoAddress)
		assert.Empty(t, repo.orders)
		assert.Equal(t, "Please select an address!", n[0].Message)
	})

	t.Run("Should submit the address with the item", func(t *testing.T) {
		var n notes
		repo := &fakeRepo{addresses: []domain.Address{{ID: "a1"}}}
		w := NewWizard(repo, testItem(), &n, nil)
		require.NoError(t, w.LoadAddresses(context.Background()))
		require.NoError(t, w.SelectAddress("a1"))

		placed, err := w.PlaceOrder(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "o1", placed.ID)
		assert.Equal(t, []domain.OrderRequest{{AddressID: "a1", ProductID: "p1", Quantity: 2}}, repo.orders)
		assert.Equal(t, "Order placed successfully!", n[len(n)-1].Message)
	})

	t.Run("Should report failures", func(t *testing.T) {
		var n notes
		repo := &fakeRepo{addresses: []domain.Address{{ID: "a1"}}, orderErr: domain.ErrServerOffline}
		w := NewWizard(repo, testItem(), &n, nil)
		require.NoError(t, w.LoadAddresses(context.Background()))
		require.NoError(t, w.SelectAddress("a1"))

		_, err := w.PlaceOrder(context.Background())
		var merr *domain.MutationError
		require.True(t, errors.As(err, &merr))
		assert.Equal(t, "Failed to place order: server unreachable", n[0].Message)
	})
}
