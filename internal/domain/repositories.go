package domain

import "context"

// ProductRepository provides access to the remote product store
type ProductRepository interface {
	// ListProducts returns the full catalog in server order
	ListProducts(ctx context.Context) ([]Product, error)

	// ListCategories returns the server's category names (without ALL)
	ListCategories(ctx context.Context) ([]string, error)

	// GetProduct returns a single product
	GetProduct(ctx context.Context, id string) (*Product, error)

	// CreateProduct creates a product and returns the stored version
	CreateProduct(ctx context.Context, input ProductInput) (*Product, error)

	// UpdateProduct replaces the product's fields and returns the stored version
	UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error)

	// DeleteProduct removes a product
	DeleteProduct(ctx context.Context, id string) error
}

// AuthRepository issues session tokens and creates accounts
type AuthRepository interface {
	// SignIn returns the session token for valid credentials
	SignIn(ctx context.Context, creds Credentials) (string, error)

	// SignUp creates a new account
	SignUp(ctx context.Context, req SignupRequest) error
}

// AddressRepository provides access to the user's saved addresses
type AddressRepository interface {
	ListAddresses(ctx context.Context) ([]Address, error)
	CreateAddress(ctx context.Context, input AddressInput) (*Address, error)
}

// OrderRepository places orders
type OrderRepository interface {
	PlaceOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// StoreClient combines every repository the remote API implements
type StoreClient interface {
	ProductRepository
	AuthRepository
	AddressRepository
	OrderRepository
}
