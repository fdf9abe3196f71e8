// Package search holds the fuzzy helpers behind the quick-open palette
// and the "did you mean" hint. The catalog filter itself stays a strict
// substring match.
package search

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/storefront/internal/domain"
)

// Result is a quick-open match with the positions to highlight
type Result struct {
	Product        domain.Product
	MatchedIndexes []int // Rune positions in Product.Name
	Score          int   // Higher is better
}

// Index implements sahilm/fuzzy.Source over product names. Lowercase
// names are computed once at build time.
type Index struct {
	products   []domain.Product
	lowerNames []string
}

// NewIndex builds an index over products
func NewIndex(products []domain.Product) *Index {
	idx := &Index{
		products:   products,
		lowerNames: make([]string, len(products)),
	}
	for i, p := range products {
		idx.lowerNames[i] = strings.ToLower(p.Name)
	}
	return idx
}

// String returns the lowercase name at i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerNames[i] }

// Len returns the number of products (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.products) }

// Find ranks products by fuzzy name match, best first. An empty query
// returns every product in index order.
func (idx *Index) Find(query string) []Result {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]Result, len(idx.products))
		for i, p := range idx.products {
			results[i] = Result{Product: p}
		}
		return results
	}

	matches := fuzzy.FindFrom(query, idx)
	results := make([]Result, len(matches))
	for i, m := range matches {
		results[i] = Result{
			Product:        idx.products[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}
	return results
}

// QuickOpen is Find over a one-off index
func QuickOpen(query string, products []domain.Product) []Result {
	return NewIndex(products).Find(query)
}
