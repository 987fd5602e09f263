package port

import (
	"context"
	"time"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, branchID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) error
	UpdateProduct(ctx context.Context, p domain.Product) error
	DeleteProduct(ctx context.Context, id string) error

	// DecrementStock conditionally reduces stock_quantity; returns false
	// when the remaining stock is insufficient. The guard is a single
	// atomic statement, so stock never goes negative under concurrency.
	DecrementStock(ctx context.Context, productID string, quantity int) (bool, error)
}

type SaleRepository interface {
	// CreateSale persists the sale header only; line items are a
	// separate write so partial-commit states stay observable.
	CreateSale(ctx context.Context, sale domain.Sale) error
	CreateSaleItems(ctx context.Context, items []domain.SaleItem) error
	ListSales(ctx context.Context, branchID string) ([]domain.Sale, error)
	ListSalesBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.Sale, error)
	GetSale(ctx context.Context, id string) (*domain.Sale, error)

	// UpdateSaleStatus applies the transition only if the stored status
	// still equals from; returns false otherwise.
	UpdateSaleStatus(ctx context.Context, id string, from, to domain.SaleStatus) (bool, error)
}

type CustomerRepository interface {
	ListCustomers(ctx context.Context, branchID string) ([]domain.Customer, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	CreateCustomer(ctx context.Context, c domain.Customer) error
	UpdateCustomer(ctx context.Context, c domain.Customer) error
	DeleteCustomer(ctx context.Context, id string) error
	CountCustomers(ctx context.Context, branchID string) (int, error)
}

type ProfileRepository interface {
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	CreateProfile(ctx context.Context, p domain.Profile) error
}

type BranchRepository interface {
	ListBranches(ctx context.Context) ([]domain.Branch, error)
	GetBranch(ctx context.Context, id string) (*domain.Branch, error)
}
