package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mmcdole/storefront/internal/domain"
)

func product(id, name, category, price, added string) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     decimal.RequireFromString(price),
		AddedDate: added,
	}
}

func ids(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.ID
	}
	return out
}

func sampleCatalog() []domain.Product {
	return []domain.Product{
		product("1", "Red Mug", "KITCHEN", "10", "2024-01-01"),
		product("2", "Blue Mug", "KITCHEN", "5", "2024-03-01"),
		product("3", "Lamp", "HOME", "30", "2023-06-15"),
	}
}

func TestDerive(t *testing.T) {
	t.Run("Should filter by category, search and sort ascending", func(t *testing.T) {
		view := domain.ViewState{Category: "KITCHEN", Search: "mug", Sort: domain.SortPriceAsc}
		got := Derive(sampleCatalog(), view)
		assert.Equal(t, []string{"2", "1"}, ids(got))
		assert.Equal(t, "Blue Mug", got[0].Name)
	})

	t.Run("Should return everything in collection order for the default view", func(t *testing.T) {
		got := Derive(sampleCatalog(), domain.NewViewState())
		assert.Equal(t, []string{"1", "2", "3"}, ids(got))
	})

	t.Run("Should treat an empty category as ALL", func(t *testing.T) {
		got := Derive(sampleCatalog(), domain.ViewState{})
		assert.Len(t, got, 3)
	})

	t.Run("Should return nothing for an unknown category", func(t *testing.T) {
		got := Derive(sampleCatalog(), domain.ViewState{Category: "GARDEN"})
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	t.Run("Should match search case-insensitively on name only", func(t *testing.T) {
		got := Derive(sampleCatalog(), domain.ViewState{Category: domain.CategoryAll, Search: "LAM"})
		assert.Equal(t, []string{"3"}, ids(got))

		got = Derive(sampleCatalog(), domain.ViewState{Category: domain.CategoryAll, Search: "home"})
		assert.Empty(t, got)
	})

	t.Run("Should sort by price descending", func(t *testing.T) {
		got := Derive(sampleCatalog(), domain.ViewState{Sort: domain.SortPriceDesc})
		assert.Equal(t, []string{"3", "1", "2"}, ids(got))
	})

	t.Run("Should keep equal prices in collection order", func(t *testing.T) {
		products := []domain.Product{
			product("a", "A", "X", "5", ""),
			product("b", "B", "X", "7", ""),
			product("c", "C", "X", "5", ""),
			product("d", "D", "X", "5", ""),
		}
		asc := Derive(products, domain.ViewState{Sort: domain.SortPriceAsc})
		assert.Equal(t, []string{"a", "c", "d", "b"}, ids(asc))

		desc := Derive(products, domain.ViewState{Sort: domain.SortPriceDesc})
		assert.Equal(t, []string{"b", "a", "c", "d"}, ids(desc))
	})

	t.Run("Should sort newest first with bad dates last", func(t *testing.T) {
		products := []domain.Product{
			product("bad", "Bad", "X", "1", "not a date"),
			product("old", "Old", "X", "1", "2020-01-01"),
			product("empty", "Empty", "X", "1", ""),
			product("new", "New", "X", "1", "2024-05-01T08:00:00Z"),
		}
		got := Derive(products, domain.ViewState{Sort: domain.SortNewest})
		assert.Equal(t, []string{"new", "old", "bad", "empty"}, ids(got))
	})

	t.Run("Should not modify the input", func(t *testing.T) {
		products := sampleCatalog()
		before := ids(products)
		_ = Derive(products, domain.ViewState{Sort: domain.SortPriceDesc})
		_ = Derive(products, domain.ViewState{Sort: domain.SortNewest})
		assert.Equal(t, before, ids(products))
	})

	t.Run("Should be deterministic", func(t *testing.T) {
		view := domain.ViewState{Category: "KITCHEN", Sort: domain.SortNewest}
		assert.Equal(t, Derive(sampleCatalog(), view), Derive(sampleCatalog(), view))
	})

	t.Run("Should handle an empty catalog", func(t *testing.T) {
		assert.Empty(t, Derive(nil, domain.ViewState{Search: "x", Sort: domain.SortNewest}))
	})
}
