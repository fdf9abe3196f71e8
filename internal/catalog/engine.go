package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/storefront/internal/domain"
)

const (
	msgAdded    = "Product added successfully"
	msgModified = "Product modified successfully"
	msgDeleted  = "Product deleted successfully"
)

// Engine owns the client-side product cache and the view parameters
// applied to it. Refresh is the only writer of the cache; every other
// method reads a consistent reference under the lock.
type Engine struct {
	repo     domain.ProductRepository
	store    domain.CatalogStore
	notifier domain.Notifier
	logger   *slog.Logger

	mu         sync.RWMutex
	products   []domain.Product
	categories []string
	fetchedAt  time.Time
	view       domain.ViewState
	lastErr    error

	generation atomic.Uint64

	// refreshSeq orders overlapping refreshes; an older fetch that
	// finishes late never overwrites a newer one.
	refreshSeq atomic.Uint64
	appliedSeq uint64
}

// NewEngine creates an engine with an empty cache and the default view.
func NewEngine(
	repo domain.ProductRepository,
	store domain.CatalogStore,
	notifier domain.Notifier,
	logger *slog.Logger,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = domain.NoOpNotifier{}
	}
	return &Engine{
		repo:     repo,
		store:    store,
		notifier: notifier,
		logger:   logger,
		view:     domain.NewViewState(),
	}
}

// Warm seeds the cache from the local snapshot. Returns false when there
// is nothing cached or a refresh has already populated the cache.
func (e *Engine) Warm() bool {
	if e.store == nil {
		return false
	}
	snap, ok := e.store.GetCatalog()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.appliedSeq > 0 {
		return false
	}
	e.products = snap.Products
	e.categories = snap.Categories
	e.fetchedAt = snap.FetchedAt
	e.logger.Debug("warmed catalog from cache", "count", len(snap.Products), "fetchedAt", snap.FetchedAt)
	return true
}

// Refresh fetches products and categories and replaces the cache in one
// swap. On failure the previous cache stays in place and a failure
// notification is emitted.
func (e *Engine) Refresh(ctx context.Context) error {
	seq := e.refreshSeq.Add(1)

	products, err := e.repo.ListProducts(ctx)
	if err != nil {
		return e.fetchFailed(seq, "products", err)
	}
	categories, err := e.repo.ListCategories(ctx)
	if err != nil {
		return e.fetchFailed(seq, "categories", err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	snap := domain.CatalogSnapshot{
		Products:   products,
		Categories: categories,
		FetchedAt:  time.Now(),
	}

	e.mu.Lock()
	if seq < e.appliedSeq {
		e.mu.Unlock()
		e.logger.Debug("discarding stale refresh", "seq", seq, "applied", e.appliedSeq)
		return nil
	}
	e.appliedSeq = seq
	e.products = snap.Products
	e.categories = snap.Categories
	e.fetchedAt = snap.FetchedAt
	e.lastErr = nil
	e.mu.Unlock()

	if e.store != nil {
		if err := e.store.SaveCatalog(snap); err != nil {
			e.logger.Error("failed to save catalog", "error", err)
		}
	}
	e.logger.Debug("refreshed catalog", "count", len(products), "categories", len(categories))
	return nil
}

// fetchFailed records a refresh failure. A failure from a refresh older
// than the applied one is dropped: the cache is already newer.
func (e *Engine) fetchFailed(seq uint64, op string, err error) error {
	ferr := &domain.FetchError{Op: op, Err: err}
	e.mu.Lock()
	if seq < e.appliedSeq {
		e.mu.Unlock()
		e.logger.Debug("discarding stale refresh failure", "seq", seq, "op", op, "error", err)
		return nil
	}
	e.lastErr = ferr
	e.mu.Unlock()

	e.logger.Error("failed to refresh catalog", "op", op, "error", err)
	e.notifier.Notify(domain.Notification{Message: failureMessage("Failed to load products", err)})
	return ferr
}

// FetchProduct loads a single product from the store without touching
// the cache. Used by the detail view.
func (e *Engine) FetchProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := e.repo.GetProduct(ctx, id)
	if err != nil {
		e.logger.Error("failed to fetch product", "id", id, "error", err)
		return nil, &domain.FetchError{Op: "product " + id, Err: err}
	}
	return p, nil
}

// SetFilter selects a category. An empty category means ALL.
func (e *Engine) SetFilter(category string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Category = category
	e.view = e.view.Normalized()
}

// SetSearch sets the name search text
func (e *Engine) SetSearch(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Search = text
}

// SetSort selects the sort option
func (e *Engine) SetSort(option domain.SortOption) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.Sort = option
}

// View returns the current view parameters
func (e *Engine) View() domain.ViewState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.view
}

// Derived returns the cached products with the current view applied
func (e *Engine) Derived() []domain.Product {
	e.mu.RLock()
	products, view := e.products, e.view
	e.mu.RUnlock()
	return Derive(products, view)
}

// Products returns a copy of the full cache in collection order
func (e *Engine) Products() []domain.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.Product, len(e.products))
	copy(out, e.products)
	return out
}

// Product looks up a cached product by ID
func (e *Engine) Product(id string) (domain.Product, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Categories returns ALL followed by the server's categories
func (e *Engine) Categories() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, 0, len(e.categories)+1)
	out = append(out, domain.CategoryAll)
	for _, c := range e.categories {
		if c != domain.CategoryAll {
			out = append(out, c)
		}
	}
	return out
}

// FetchedAt returns when the cache was last filled
func (e *Engine) FetchedAt() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.fetchedAt
}

// LastError returns the error of the most recent failed refresh, or nil
// once a refresh succeeds.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// Generation counts successful mutations. Views can compare it to tell
// whether their copy of the list predates an edit.
func (e *Engine) Generation() uint64 {
	return e.generation.Load()
}

// CreateOrUpdate updates the product when existingID is set, otherwise
// creates it. Success refreshes the cache exactly once.
func (e *Engine) CreateOrUpdate(ctx context.Context, input domain.ProductInput, existingID string) error {
	op, msg := "create product", msgAdded
	if existingID != "" {
		op, msg = "update product", msgModified
	}

	if err := input.Validate(); err != nil {
		e.notifier.Notify(domain.Notification{Message: failureMessage("Failed to save product", err)})
		return &domain.MutationError{Op: op, ID: existingID, Err: err}
	}

	var err error
	if existingID != "" {
		_, err = e.repo.UpdateProduct(ctx, existingID, input)
	} else {
		_, err = e.repo.CreateProduct(ctx, input)
	}
	if err != nil {
		e.logger.Error("failed to save product", "op", op, "id", existingID, "error", err)
		e.notifier.Notify(domain.Notification{Message: failureMessage("Failed to save product", err)})
		return &domain.MutationError{Op: op, ID: existingID, Err: err}
	}

	e.mutated(ctx, op, existingID, msg)
	return nil
}

// Remove deletes a product. Success refreshes the cache exactly once.
func (e *Engine) Remove(ctx context.Context, id string) error {
	const op = "delete product"
	if err := e.repo.DeleteProduct(ctx, id); err != nil {
		e.logger.Error("failed to delete product", "id", id, "error", err)
		e.notifier.Notify(domain.Notification{Message: failureMessage("Failed to delete product", err)})
		return &domain.MutationError{Op: op, ID: id, Err: err}
	}

	e.mutated(ctx, op, id, msgDeleted)
	return nil
}

// mutated runs the post-mutation sequence. A failing refresh reports its
// own failure notification after the success one.
func (e *Engine) mutated(ctx context.Context, op, id, msg string) {
	gen := e.generation.Add(1)
	if e.store != nil {
		e.store.InvalidateCatalog()
	}
	e.logger.Info("product mutated", "op", op, "id", id, "generation", gen)
	e.notifier.Notify(domain.Notification{Message: msg, Success: true})
	_ = e.Refresh(ctx)
}

// failureMessage prefixes err with a user-facing summary. Session and
// connectivity errors get a short hint instead of the raw chain.
func failureMessage(prefix string, err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return prefix + ": please sign in again"
	case errors.Is(err, domain.ErrServerOffline):
		return prefix + ": server unreachable"
	case errors.Is(err, domain.ErrNotFound):
		return prefix + ": not found"
	default:
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return prefix + ": " + verr.Error()
		}
		return prefix
	}
}
