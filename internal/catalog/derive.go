package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/storefront/internal/domain"
)

// Derive applies the view to a product collection: category filter, then
// case-insensitive name search, then a stable sort. The input slice is
// never modified and the result is always a fresh slice.
func Derive(products []domain.Product, view domain.ViewState) []domain.Product {
	view = view.Normalized()
	query := strings.ToLower(view.Search)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if view.Category != domain.CategoryAll && p.Category != view.Category {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		out = append(out, p)
	}

	sortProducts(out, view.Sort)
	return out
}

// sortProducts orders in place. SortNone leaves collection order alone.
func sortProducts(products []domain.Product, option domain.SortOption) {
	switch option {
	case domain.SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.GreaterThan(products[j].Price)
		})
	case domain.SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price.LessThan(products[j].Price)
		})
	case domain.SortNewest:
		// Parse once; items without a usable date sink to the bottom
		type dated struct {
			at time.Time
			ok bool
		}
		keys := make([]dated, len(products))
		idx := make([]int, len(products))
		for i, p := range products {
			idx[i] = i
			at, ok := p.AddedAt()
			keys[i] = dated{at: at, ok: ok}
		}
		sort.SliceStable(idx, func(a, b int) bool {
			ka, kb := keys[idx[a]], keys[idx[b]]
			if ka.ok != kb.ok {
				return ka.ok
			}
			if !ka.ok {
				return false
			}
			return ka.at.After(kb.at)
		})
		sorted := make([]domain.Product, len(products))
		for i, j := range idx {
			sorted[i] = products[j]
		}
		copy(products, sorted)
	}
}
