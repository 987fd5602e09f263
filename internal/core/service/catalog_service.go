package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidProduct  = errors.New("invalid product")
)

// CatalogService manages the branch-scoped product catalog and keeps
// the Redis stock mirror primed.
type CatalogService struct {
	products port.ProductRepository
	cache    port.CacheRepository
	now      func() time.Time
}

func NewCatalogService(products port.ProductRepository, cache port.CacheRepository) *CatalogService {
	return &CatalogService{products: products, cache: cache, now: time.Now}
}

func (s *CatalogService) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}
	return s.products.ListProducts(ctx, branchID)
}

// SearchProducts filters the branch catalog by name, SKU or part
// number, case-insensitively. Filtering happens in memory; branch
// catalogs are small.
func (s *CatalogService) SearchProducts(ctx context.Context, branchID, term string) ([]domain.Product, error) {
	all, err := s.ListProducts(ctx, branchID)
	if err != nil {
		return nil, err
	}
	if term == "" {
		return all, nil
	}
	term = strings.ToLower(term)
	var out []domain.Product
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.SKU), term) ||
			strings.Contains(strings.ToLower(p.PartNumber), term) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.products.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.primeMirror(ctx, p)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if p.ID == "" {
		return nil, ErrProductNotFound
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}
	existing, err := s.products.GetProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrProductNotFound
	}
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = s.now()
	if err := s.products.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.primeMirror(ctx, p)
	return &p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	existing, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}
	return s.products.DeleteProduct(ctx, id)
}

// LowStock returns products at or below their reorder level.
func (s *CatalogService) LowStock(ctx context.Context, branchID string) ([]domain.Product, error) {
	all, err := s.ListProducts(ctx, branchID)
	if err != nil {
		return nil, err
	}
	var out []domain.Product
	for _, p := range all {
		if p.LowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

// CachedStock serves POS availability polls from the Redis mirror,
// backfilling it from MySQL on a miss.
func (s *CatalogService) CachedStock(ctx context.Context, productID string) (int, error) {
	qty, ok, err := s.cache.GetStock(ctx, productID)
	if err == nil && ok {
		return qty, nil
	}
	if err != nil {
		log.Printf("stock mirror read failed for product %s: %v", productID, err)
	}
	p, err := s.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	s.primeMirror(ctx, *p)
	return p.StockQuantity, nil
}

func (s *CatalogService) primeMirror(ctx context.Context, p domain.Product) {
	if err := s.cache.SetStock(ctx, p.ID, p.StockQuantity); err != nil {
		log.Printf("stock mirror prime failed for product %s: %v", p.ID, err)
	}
}

func validateProduct(p domain.Product) error {
	if p.Name == "" || p.SKU == "" || p.BranchID == "" {
		return ErrInvalidProduct
	}
	if p.Price.LessThan(decimal.Zero) || p.CostPrice.LessThan(decimal.Zero) {
		return ErrInvalidProduct
	}
	if p.StockQuantity < 0 || p.MinStockLevel < 0 {
		return ErrInvalidProduct
	}
	return nil
}
