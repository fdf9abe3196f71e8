package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// addedDateLayouts are tried in order when parsing Product.AddedDate
var addedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006-01",
	"2006",
}

// minEpochDigits keeps short numbers from being read as 1970 timestamps
const minEpochDigits = 10

// Product is a catalog entry owned by the remote store.
// The client only ever holds a read-mostly copy of it.
type Product struct {
	ID             string
	Name           string
	Category       string
	Price          decimal.Decimal
	Description    string
	ImageURL       string
	Manufacturer   string
	AvailableItems int
	AddedDate      string // As returned by the server, parsed lazily
}

// AddedAt parses AddedDate. Returns false when the date is empty or
// does not match any known layout.
func (p Product) AddedAt() (time.Time, bool) {
	raw := strings.TrimSpace(p.AddedDate)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range addedDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	// Numeric epochs: milliseconds from JS-backed servers, else seconds
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 && len(raw) >= minEpochDigits {
		if n >= 1e11 {
			return time.UnixMilli(n).UTC(), true
		}
		return time.Unix(n, 0).UTC(), true
	}
	return time.Time{}, false
}

// FormattedPrice renders the price the way the storefront displays it
func (p Product) FormattedPrice() string {
	return "₹ " + p.Price.StringFixedBank(2)
}

// Input returns the mutable fields of the product as a ProductInput
func (p Product) Input() ProductInput {
	return ProductInput{
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price,
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Manufacturer:   p.Manufacturer,
		AvailableItems: p.AvailableItems,
	}
}

// ProductInput carries the fields sent on create and update
type ProductInput struct {
	Name           string          `validate:"required"`
	Category       string          `validate:"required"`
	Price          decimal.Decimal `validate:"-"`
	Description    string
	ImageURL       string `validate:"omitempty,url"`
	Manufacturer   string
	AvailableItems int `validate:"gte=0"`
}

// Address is a saved shipping address
type Address struct {
	ID            string
	Name          string
	ContactNumber string
	Street        string
	City          string
	State         string
	Landmark      string
	ZipCode       string
}

// Label returns the one-line form used in address pickers
func (a Address) Label() string {
	return a.Name + ", " + a.Street + ", " + a.City
}

// Input returns the address without its ID
func (a Address) Input() AddressInput {
	return AddressInput{
		Name:          a.Name,
		ContactNumber: a.ContactNumber,
		Street:        a.Street,
		City:          a.City,
		State:         a.State,
		Landmark:      a.Landmark,
		ZipCode:       a.ZipCode,
	}
}

// AddressInput is the body of an address creation request
type AddressInput struct {
	Name          string `validate:"required"`
	ContactNumber string `validate:"required"`
	Street        string `validate:"required"`
	City          string `validate:"required"`
	State         string `validate:"required"`
	Landmark      string
	ZipCode       string `validate:"required"`
}

// OrderRequest is the body of an order placement request.
// ProductID and Quantity are optional; the address is always required.
type OrderRequest struct {
	AddressID string
	ProductID string
	Quantity  int
}

// Order is the server's acknowledgement of a placed order
type Order struct {
	ID        string
	AddressID string
	ProductID string
	Quantity  int
}

// Credentials are used to sign in
type Credentials struct {
	Username string `validate:"required,email"`
	Password string `validate:"required"`
}

// SignupRequest is the body of an account creation request
type SignupRequest struct {
	FirstName       string `validate:"required"`
	LastName        string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	ContactNumber   string `validate:"required"`
}
