package catalog

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmcdole/storefront/internal/domain"
)

// Draft is the in-progress state of the add/edit product form.
// Numeric fields are kept as typed text until Validate or Input is called.
type Draft struct {
	existingID string

	Name           string
	Category       string
	Price          string
	Description    string
	ImageURL       string
	Manufacturer   string
	AvailableItems string
}

// NewDraft returns an empty draft for a new product
func NewDraft() *Draft {
	return &Draft{}
}

// EditDraft returns a draft pre-filled from an existing product
func EditDraft(p domain.Product) *Draft {
	return &Draft{
		existingID:     p.ID,
		Name:           p.Name,
		Category:       p.Category,
		Price:          p.Price.String(),
		Description:    p.Description,
		ImageURL:       p.ImageURL,
		Manufacturer:   p.Manufacturer,
		AvailableItems: strconv.Itoa(p.AvailableItems),
	}
}

// ExistingID is the product being edited, or "" for a new product
func (d *Draft) ExistingID() string { return d.existingID }

// IsEdit reports whether the draft targets an existing product
func (d *Draft) IsEdit() bool { return d.existingID != "" }

func (d *Draft) SetName(v string)           { d.Name = v }
func (d *Draft) SetCategory(v string)       { d.Category = v }
func (d *Draft) SetPrice(v string)          { d.Price = v }
func (d *Draft) SetDescription(v string)    { d.Description = v }
func (d *Draft) SetImageURL(v string)       { d.ImageURL = v }
func (d *Draft) SetManufacturer(v string)   { d.Manufacturer = v }
func (d *Draft) SetAvailableItems(v string) { d.AvailableItems = v }

// Input parses the draft into a ProductInput and validates it
func (d *Draft) Input() (domain.ProductInput, error) {
	input := domain.ProductInput{
		Name:         strings.TrimSpace(d.Name),
		Category:     strings.TrimSpace(d.Category),
		Description:  strings.TrimSpace(d.Description),
		ImageURL:     strings.TrimSpace(d.ImageURL),
		Manufacturer: strings.TrimSpace(d.Manufacturer),
	}

	price := strings.TrimSpace(d.Price)
	if price == "" {
		return input, &domain.ValidationError{Field: "price", Message: "is required"}
	}
	dec, err := decimal.NewFromString(price)
	if err != nil {
		return input, &domain.ValidationError{Field: "price", Message: "must be a number"}
	}
	input.Price = dec

	if items := strings.TrimSpace(d.AvailableItems); items != "" {
		n, err := strconv.Atoi(items)
		if err != nil {
			return input, &domain.ValidationError{Field: "availableItems", Message: "must be a whole number"}
		}
		input.AvailableItems = n
	}

	if err := input.Validate(); err != nil {
		return input, err
	}
	return input, nil
}

// Validate reports the first problem with the draft, or nil
func (d *Draft) Validate() error {
	_, err := d.Input()
	return err
}
