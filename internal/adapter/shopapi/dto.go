package shopapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/mmcdole/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// flexString accepts a JSON string or number. The store returns numeric ids
// on some deployments and string ids on others.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", string(data))
	}
	*f = flexString(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string. Fractions are
// truncated; values outside the int range are rejected.
type flexInt int

var (
	maxFlexInt = decimal.NewFromInt(math.MaxInt)
	minFlexInt = decimal.NewFromInt(math.MinInt)
)

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var s flexString
	if err := s.UnmarshalJSON(data); err != nil {
		return err
	}
	if s == "" {
		*f = 0
		return nil
	}
	n, err := decimal.NewFromString(string(s))
	if err != nil {
		return fmt.Errorf("invalid integer %q", string(s))
	}
	n = n.Truncate(0)
	if n.GreaterThan(maxFlexInt) || n.LessThan(minFlexInt) {
		return fmt.Errorf("integer %q out of range", string(s))
	}
	*f = flexInt(n.IntPart())
	return nil
}

// ProductDTO is the wire form of a product
type ProductDTO struct {
	ID             flexString      `json:"id"`
	Name           string          `json:"name"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"imageUrl"`
	Manufacturer   string          `json:"manufacturer"`
	AvailableItems flexInt         `json:"availableItems"`
	AddedDate      flexString      `json:"addedDate"`
}

// productInputDTO is the body of POST/PUT /api/products
type productInputDTO struct {
	Name           string      `json:"name"`
	Category       string      `json:"category"`
	Price          json.Number `json:"price"`
	Description    string      `json:"description"`
	ImageURL       string      `json:"imageUrl"`
	Manufacturer   string      `json:"manufacturer,omitempty"`
	AvailableItems int         `json:"availableItems"`
}

// AddressDTO is the wire form of an address
type AddressDTO struct {
	ID            flexString `json:"id"`
	Name          string     `json:"name"`
	ContactNumber string     `json:"contactNumber"`
	Street        string     `json:"street"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Landmark      string     `json:"landmark"`
	ZipCode       string     `json:"zipCode"`
}

type addressInputDTO struct {
	Name          string `json:"name"`
	ContactNumber string `json:"contactNumber"`
	Street        string `json:"street"`
	City          string `json:"city"`
	State         string `json:"state"`
	Landmark      string `json:"landmark"`
	ZipCode       string `json:"zipCode"`
}

type orderRequestDTO struct {
	Address  string `json:"address"`
	Product  string `json:"product,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
}

// OrderDTO is the wire form of a placed order
type OrderDTO struct {
	ID       flexString `json:"id"`
	Address  flexString `json:"address"`
	Product  flexString `json:"product"`
	Quantity flexInt    `json:"quantity"`
}

type signinRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type signinResponseDTO struct {
	Token string `json:"token"`
}

type signupRequestDTO struct {
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	ContactNumber   string `json:"contactNumber"`
}

// MapProduct converts the wire form to a domain product
func MapProduct(d ProductDTO) domain.Product {
	return domain.Product{
		ID:             string(d.ID),
		Name:           d.Name,
		Category:       d.Category,
		Price:          d.Price,
		Description:    d.Description,
		ImageURL:       d.ImageURL,
		Manufacturer:   d.Manufacturer,
		AvailableItems: int(d.AvailableItems),
		AddedDate:      string(d.AddedDate),
	}
}

// MapProducts converts a slice, preserving server order
func MapProducts(dtos []ProductDTO) []domain.Product {
	products := make([]domain.Product, len(dtos))
	for i, d := range dtos {
		products[i] = MapProduct(d)
	}
	return products
}

func toProductInputDTO(in domain.ProductInput) productInputDTO {
	return productInputDTO{
		Name:           in.Name,
		Category:       in.Category,
		Price:          json.Number(in.Price.String()),
		Description:    in.Description,
		ImageURL:       in.ImageURL,
		Manufacturer:   in.Manufacturer,
		AvailableItems: in.AvailableItems,
	}
}

// MapAddress converts the wire form to a domain address
func MapAddress(d AddressDTO) domain.Address {
	return domain.Address{
		ID:            string(d.ID),
		Name:          d.Name,
		ContactNumber: d.ContactNumber,
		Street:        d.Street,
		City:          d.City,
		State:         d.State,
		Landmark:      d.Landmark,
		ZipCode:       d.ZipCode,
	}
}

func toAddressInputDTO(in domain.AddressInput) addressInputDTO {
	return addressInputDTO(in)
}

// MapOrder converts the wire form to a domain order
func MapOrder(d OrderDTO) domain.Order {
	return domain.Order{
		ID:        string(d.ID),
		AddressID: string(d.Address),
		ProductID: string(d.Product),
		Quantity:  int(d.Quantity),
	}
}
