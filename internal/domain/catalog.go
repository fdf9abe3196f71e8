package domain

import (
	"strings"
	"time"
)

// CategoryAll is the synthetic category meaning "no category filter"
const CategoryAll = "ALL"

// SortOption selects the ordering of the derived product list
type SortOption int

const (
	SortNone SortOption = iota
	SortPriceDesc
	SortPriceAsc
	SortNewest
)

// SortOptions returns every option in menu order
func SortOptions() []SortOption {
	return []SortOption{SortNone, SortPriceDesc, SortPriceAsc, SortNewest}
}

// String returns the wire/config name of the option
func (o SortOption) String() string {
	switch o {
	case SortPriceDesc:
		return "PRICE_DESC"
	case SortPriceAsc:
		return "PRICE_ASC"
	case SortNewest:
		return "NEWEST"
	default:
		return "NONE"
	}
}

// Label returns the display name of the option
func (o SortOption) Label() string {
	switch o {
	case SortPriceDesc:
		return "Price: High to Low"
	case SortPriceAsc:
		return "Price: Low to High"
	case SortNewest:
		return "Newest"
	default:
		return "Default"
	}
}

// ParseSortOption accepts the canonical names, the older
// PRICE_HIGH_TO_LOW / PRICE_LOW_TO_HIGH spellings and the empty string.
func ParseSortOption(s string) (SortOption, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "NONE", "DEFAULT":
		return SortNone, true
	case "PRICE_DESC", "PRICE_HIGH_TO_LOW":
		return SortPriceDesc, true
	case "PRICE_ASC", "PRICE_LOW_TO_HIGH":
		return SortPriceAsc, true
	case "NEWEST":
		return SortNewest, true
	default:
		return SortNone, false
	}
}

// ViewState holds the client-side filter, search and sort parameters.
// It is transient and never persisted.
type ViewState struct {
	Category string
	Search   string
	Sort     SortOption
}

// NewViewState returns the unfiltered, unsorted view
func NewViewState() ViewState {
	return ViewState{Category: CategoryAll, Sort: SortNone}
}

// Normalized maps an empty category to ALL
func (v ViewState) Normalized() ViewState {
	if v.Category == "" {
		v.Category = CategoryAll
	}
	return v
}

// CatalogSnapshot is the last good catalog fetched from the store
type CatalogSnapshot struct {
	Products   []Product
	Categories []string // Server categories, without the ALL sentinel
	FetchedAt  time.Time
}
