package shopapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mmcdole/storefront/internal/domain"
)

const (
	addressesPath = "/api/addresses"
	ordersPath    = "/api/orders"
)

// ListAddresses returns the signed-in user's saved addresses
func (c *Client) ListAddresses(ctx context.Context) ([]domain.Address, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.Get(addressesPath)
	if err := c.check(resp, err, http.MethodGet, addressesPath); err != nil {
		return nil, err
	}

	var dtos []AddressDTO
	if err := decode(resp.Body(), &dtos); err != nil {
		return nil, err
	}
	addresses := make([]domain.Address, len(dtos))
	for i, d := range dtos {
		addresses[i] = MapAddress(d)
	}
	return addresses, nil
}

// CreateAddress saves a new address
func (c *Client) CreateAddress(ctx context.Context, input domain.AddressInput) (*domain.Address, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(toAddressInputDTO(input)).
		Post(addressesPath)
	if err := c.check(resp, err, http.MethodPost, addressesPath); err != nil {
		return nil, err
	}

	var dto AddressDTO
	if len(resp.Body()) > 0 && json.Unmarshal(resp.Body(), &dto) != nil {
		c.logger.Debug("address response was not JSON", "body", resp.String())
	}
	if dto.ID == "" {
		// Echo the input back when the server omits the body
		dto = AddressDTO{
			Name:          input.Name,
			ContactNumber: input.ContactNumber,
			Street:        input.Street,
			City:          input.City,
			State:         input.State,
			Landmark:      input.Landmark,
			ZipCode:       input.ZipCode,
		}
	}
	addr := MapAddress(dto)
	return &addr, nil
}

// PlaceOrder submits an order for the selected address
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (*domain.Order, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := req.
		SetHeader("Content-Type", "application/json").
		SetBody(orderRequestDTO{
			Address:  order.AddressID,
			Product:  order.ProductID,
			Quantity: order.Quantity,
		}).
		Post(ordersPath)
	if err := c.check(resp, err, http.MethodPost, ordersPath); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if len(resp.Body()) > 0 && json.Unmarshal(resp.Body(), &dto) != nil {
		c.logger.Debug("order response was not JSON", "body", resp.String())
	}
	placed := MapOrder(dto)
	if placed.AddressID == "" {
		placed.AddressID = order.AddressID
	}
	return &placed, nil
}
