package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/storefront/internal/domain"
)

// fakeRepo is an in-memory ProductRepository that counts list calls
type fakeRepo struct {
	mu         sync.Mutex
	products   []domain.Product
	categories []string
	listCalls  int
	listErr    error
	catErr     error
	mutateErr  error
	nextID     int
}

func (r *fakeRepo) ListProducts(context.Context) ([]domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Product, len(r.products))
	copy(out, r.products)
	return out, nil
}

func (r *fakeRepo) ListCategories(context.Context) ([]string, error) {
	if r.catErr != nil {
		return nil, r.catErr
	}
	return r.categories, nil
}

func (r *fakeRepo) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) CreateProduct(_ context.Context, in domain.ProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	r.nextID++
	p := domain.Product{ID: fmt.Sprintf("new-%d", r.nextID), Name: in.Name, Category: in.Category, Price: in.Price}
	r.products = append(r.products, p)
	return &p, nil
}

func (r *fakeRepo) UpdateProduct(_ context.Context, id string, in domain.ProductInput) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return nil, r.mutateErr
	}
	for i := range r.products {
		if r.products[i].ID == id {
			r.products[i].Name = in.Name
			r.products[i].Category = in.Category
			r.products[i].Price = in.Price
			p := r.products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mutateErr != nil {
		return r.mutateErr
	}
	for i := range r.products {
		if r.products[i].ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeStore struct {
	snap        domain.CatalogSnapshot
	has         bool
	saves       int
	invalidated int
}

func (s *fakeStore) GetCatalog() (domain.CatalogSnapshot, bool) { return s.snap, s.has }
func (s *fakeStore) SaveCatalog(snap domain.CatalogSnapshot) error {
	s.snap, s.has = snap, true
	s.saves++
	return nil
}
func (s *fakeStore) InvalidateCatalog() { s.has = false; s.invalidated++ }
func (s *fakeStore) InvalidateAll()     { s.has = false }
func (s *fakeStore) Close() error       { return nil }

type recorder struct {
	mu    sync.Mutex
	notes []domain.Notification
}

func (r *recorder) Notify(n domain.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) successes() int { return r.count(true) }
func (r *recorder) failures() int  { return r.count(false) }

func (r *recorder) count(success bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, note := range r.notes {
		if note.Success == success {
			n++
		}
	}
	return n
}

// gatedRepo holds its first ListProducts call until released, then fails it
type gatedRepo struct {
	*fakeRepo
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (g *gatedRepo) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
		return nil, errors.New("slow fetch timed out")
	}
	return g.fakeRepo.ListProducts(ctx)
}

func newTestEngine(t *testing.T) (*Engine, *fakeRepo, *fakeStore, *recorder) {
	t.Helper()
	repo := &fakeRepo{
		products: []domain.Product{
			product("41", "Red Mug", "KITCHEN", "10", "2024-01-01"),
			product("42", "Blue Mug", "KITCHEN", "5", "2024-03-01"),
			product("43", "Lamp", "HOME", "30", "2023-06-15"),
		},
		categories: []string{"KITCHEN", "HOME"},
	}
	st := &fakeStore{}
	rec := &recorder{}
	e := NewEngine(repo, st, rec, nil)
	require.NoError(t, e.Refresh(context.Background()))
	repo.listCalls = 0
	st.saves = 0
	return e, repo, st, rec
}

func validInput(name string) domain.ProductInput {
	return domain.ProductInput{Name: name, Category: "KITCHEN", Price: decimal.NewFromInt(12)}
}

func TestEngineRefresh(t *testing.T) {
	t.Run("Should replace cache and persist snapshot", func(t *testing.T) {
		e, repo, st, _ := newTestEngine(t)
		repo.products = repo.products[:1]

		require.NoError(t, e.Refresh(context.Background()))
		assert.Len(t, e.Products(), 1)
		assert.Equal(t, 1, st.saves)
		assert.Len(t, st.snap.Products, 1)
		assert.Nil(t, e.LastError())
		assert.False(t, e.FetchedAt().IsZero())
	})

	t.Run("Should keep previous cache and notify on failure", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)
		repo.listErr = fmt.Errorf("%w: dial tcp", domain.ErrServerOffline)

		err := e.Refresh(context.Background())
		require.Error(t, err)

		var ferr *domain.FetchError
		require.True(t, errors.As(err, &ferr))
		assert.True(t, errors.Is(err, domain.ErrServerOffline))
		assert.Len(t, e.Products(), 3)
		assert.Equal(t, 1, rec.failures())
		assert.Equal(t, err, e.LastError())
	})

	t.Run("Should keep previous categories when categories fail", func(t *testing.T) {
		e, repo, _, _ := newTestEngine(t)
		repo.products = nil
		repo.catErr = errors.New("boom")

		require.Error(t, e.Refresh(context.Background()))
		assert.Len(t, e.Products(), 3)
		assert.Equal(t, []string{"ALL", "KITCHEN", "HOME"}, e.Categories())
	})

	t.Run("Should drop a late failure from an older refresh", func(t *testing.T) {
		repo := &gatedRepo{
			fakeRepo: &fakeRepo{
				products:   []domain.Product{product("1", "Mug", "KITCHEN", "3", "")},
				categories: []string{"KITCHEN"},
			},
			entered: make(chan struct{}),
			release: make(chan struct{}),
		}
		rec := &recorder{}
		e := NewEngine(repo, &fakeStore{}, rec, nil)

		done := make(chan error, 1)
		go func() { done <- e.Refresh(context.Background()) }()
		<-repo.entered

		require.NoError(t, e.Refresh(context.Background()))
		close(repo.release)

		assert.NoError(t, <-done)
		assert.Nil(t, e.LastError())
		assert.Equal(t, 0, rec.failures())
		assert.Len(t, e.Products(), 1)
	})

	t.Run("Should clear last error after a good refresh", func(t *testing.T) {
		e, repo, _, _ := newTestEngine(t)
		repo.listErr = errors.New("boom")
		require.Error(t, e.Refresh(context.Background()))
		repo.listErr = nil
		require.NoError(t, e.Refresh(context.Background()))
		assert.Nil(t, e.LastError())
	})
}

func TestEngineWarm(t *testing.T) {
	t.Run("Should seed cache from snapshot", func(t *testing.T) {
		st := &fakeStore{has: true, snap: domain.CatalogSnapshot{
			Products:   []domain.Product{product("1", "Cached", "HOME", "1", "")},
			Categories: []string{"HOME"},
		}}
		e := NewEngine(&fakeRepo{}, st, nil, nil)
		assert.True(t, e.Warm())
		assert.Len(t, e.Products(), 1)
		assert.Equal(t, []string{"ALL", "HOME"}, e.Categories())
	})

	t.Run("Should not override a refreshed cache", func(t *testing.T) {
		e, _, st, _ := newTestEngine(t)
		st.snap = domain.CatalogSnapshot{Products: nil}
		st.has = true
		assert.False(t, e.Warm())
		assert.Len(t, e.Products(), 3)
	})

	t.Run("Should report nothing cached", func(t *testing.T) {
		e := NewEngine(&fakeRepo{}, &fakeStore{}, nil, nil)
		assert.False(t, e.Warm())
		assert.Empty(t, e.Products())
	})
}

func TestEngineView(t *testing.T) {
	t.Run("Should derive from the current view without network", func(t *testing.T) {
		e, repo, _, _ := newTestEngine(t)
		e.SetFilter("KITCHEN")
		e.SetSearch("MUG")
		e.SetSort(domain.SortPriceAsc)

		got := e.Derived()
		assert.Equal(t, []string{"42", "41"}, ids(got))
		assert.Equal(t, 0, repo.listCalls)
	})

	t.Run("Should reset empty filter to ALL", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t)
		e.SetFilter("HOME")
		e.SetFilter("")
		assert.Equal(t, domain.CategoryAll, e.View().Category)
		assert.Len(t, e.Derived(), 3)
	})

	t.Run("Should look up cached products", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t)
		p, ok := e.Product("43")
		assert.True(t, ok)
		assert.Equal(t, "Lamp", p.Name)
		_, ok = e.Product("nope")
		assert.False(t, ok)
	})

	t.Run("Should return a copy of products", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t)
		got := e.Products()
		got[0].Name = "changed"
		p, _ := e.Product("41")
		assert.Equal(t, "Red Mug", p.Name)
	})
}

func TestEngineCreateOrUpdate(t *testing.T) {
	t.Run("Should create, refresh once and notify", func(t *testing.T) {
		e, repo, st, rec := newTestEngine(t)

		require.NoError(t, e.CreateOrUpdate(context.Background(), validInput("Teapot"), ""))
		assert.Equal(t, 1, repo.listCalls)
		assert.Equal(t, 1, rec.successes())
		assert.Equal(t, 0, rec.failures())
		assert.Equal(t, "Product added successfully", rec.notes[0].Message)
		assert.Equal(t, uint64(1), e.Generation())
		assert.Equal(t, 1, st.invalidated)
		assert.Len(t, e.Products(), 4)
	})

	t.Run("Should update when an id is given", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)

		require.NoError(t, e.CreateOrUpdate(context.Background(), validInput("Green Mug"), "41"))
		assert.Equal(t, 1, repo.listCalls)
		assert.Equal(t, "Product modified successfully", rec.notes[0].Message)
		p, ok := e.Product("41")
		require.True(t, ok)
		assert.Equal(t, "Green Mug", p.Name)
	})

	t.Run("Should not refresh or touch cache on failure", func(t *testing.T) {
		e, repo, st, rec := newTestEngine(t)
		repo.mutateErr = domain.ErrUnauthenticated
		before := e.Products()

		err := e.CreateOrUpdate(context.Background(), validInput("Teapot"), "")
		require.Error(t, err)

		var merr *domain.MutationError
		require.True(t, errors.As(err, &merr))
		assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
		assert.Equal(t, 0, repo.listCalls)
		assert.Equal(t, 0, rec.successes())
		assert.Equal(t, 1, rec.failures())
		assert.Equal(t, before, e.Products())
		assert.Equal(t, uint64(0), e.Generation())
		assert.Equal(t, 0, st.invalidated)
	})

	t.Run("Should reject invalid input before calling the store", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)
		in := validInput("")

		err := e.CreateOrUpdate(context.Background(), in, "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrValidation))
		assert.Equal(t, 0, repo.nextID)
		assert.Equal(t, 0, repo.listCalls)
		assert.Equal(t, 1, rec.failures())
	})

	t.Run("Should reject a negative price", func(t *testing.T) {
		e, _, _, _ := newTestEngine(t)
		in := validInput("Teapot")
		in.Price = decimal.NewFromInt(-1)
		assert.True(t, errors.Is(e.CreateOrUpdate(context.Background(), in, ""), domain.ErrValidation))
	})
}

func TestEngineRemove(t *testing.T) {
	t.Run("Should delete, refresh once and notify", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)

		require.NoError(t, e.Remove(context.Background(), "42"))
		assert.Equal(t, 1, repo.listCalls)
		assert.Equal(t, 1, rec.successes())
		assert.Equal(t, "Product deleted successfully", rec.notes[0].Message)
		_, ok := e.Product("42")
		assert.False(t, ok)
	})

	t.Run("Should keep the product when delete fails", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)
		repo.mutateErr = fmt.Errorf("%w: request timed out", domain.ErrServerOffline)

		err := e.Remove(context.Background(), "42")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete product 42")
		_, ok := e.Product("42")
		assert.True(t, ok)
		assert.Equal(t, 0, repo.listCalls)
		assert.Equal(t, 1, rec.failures())
		assert.Contains(t, rec.notes[0].Message, "server unreachable")
	})

	t.Run("Should report success even if the follow-up refresh fails", func(t *testing.T) {
		e, repo, _, rec := newTestEngine(t)
		repo.listErr = errors.New("boom")

		require.NoError(t, e.Remove(context.Background(), "42"))
		assert.Equal(t, 1, repo.listCalls)
		assert.Equal(t, 1, rec.successes())
		assert.Equal(t, 1, rec.failures())
		assert.Error(t, e.LastError())
	})
}

func TestEngineFetchProduct(t *testing.T) {
	e, _, _, _ := newTestEngine(t)

	p, err := e.FetchProduct(context.Background(), "43")
	require.NoError(t, err)
	assert.Equal(t, "Lamp", p.Name)

	_, err = e.FetchProduct(context.Background(), "missing")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
