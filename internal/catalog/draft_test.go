package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/storefront/internal/domain"
)

func TestDraft(t *testing.T) {
	t.Run("Should build input from setters", func(t *testing.T) {
		d := NewDraft()
		d.SetName(" Teapot ")
		d.SetCategory("KITCHEN")
		d.SetPrice("19.99")
		d.SetDescription("Holds tea")
		d.SetImageURL("https://img.example.com/teapot.png")
		d.SetManufacturer("Acme")
		d.SetAvailableItems("4")

		in, err := d.Input()
		require.NoError(t, err)
		assert.Equal(t, "Teapot", in.Name)
		assert.Equal(t, "19.99", in.Price.String())
		assert.Equal(t, 4, in.AvailableItems)
		assert.False(t, d.IsEdit())
		assert.Empty(t, d.ExistingID())
	})

	t.Run("Should prefill from an existing product", func(t *testing.T) {
		p := product("7", "Lamp", "HOME", "30.5", "")
		p.AvailableItems = 2
		d := EditDraft(p)

		assert.True(t, d.IsEdit())
		assert.Equal(t, "7", d.ExistingID())
		assert.Equal(t, "30.5", d.Price)
		assert.Equal(t, "2", d.AvailableItems)
		assert.NoError(t, d.Validate())
	})

	t.Run("Should reject bad fields", func(t *testing.T) {
		cases := []struct {
			name  string
			edit  func(d *Draft)
			field string
		}{
			{"missing name", func(d *Draft) { d.SetName("") }, "name"},
			{"missing category", func(d *Draft) { d.SetCategory("  ") }, "category"},
			{"missing price", func(d *Draft) { d.SetPrice("") }, "price"},
			{"non-numeric price", func(d *Draft) { d.SetPrice("cheap") }, "price"},
			{"negative price", func(d *Draft) { d.SetPrice("-3") }, "price"},
			{"bad stock", func(d *Draft) { d.SetAvailableItems("lots") }, "availableItems"},
			{"negative stock", func(d *Draft) { d.SetAvailableItems("-1") }, "availableItems"},
			{"bad image url", func(d *Draft) { d.SetImageURL("not a url") }, "imageURL"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				d := EditDraft(product("7", "Lamp", "HOME", "30", ""))
				tc.edit(d)

				err := d.Validate()
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))

				var verr *domain.ValidationError
				require.True(t, errors.As(err, &verr))
				assert.Equal(t, tc.field, verr.Field)
			})
		}
	})
}
