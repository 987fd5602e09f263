package handler

import (
	"context"
	"sync"
	"time"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

// In-memory fakes for the port interfaces, just enough backing for
// httptest-driven route tests.

type memProductRepo struct {
	mu       sync.Mutex
	products []domain.Product
}

func (m *memProductRepo) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if p.BranchID == branchID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProductRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memProductRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
	return nil
}

func (m *memProductRepo) UpdateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
		}
	}
	return nil
}

func (m *memProductRepo) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memProductRepo) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == productID {
			if m.products[i].StockQuantity < quantity {
				return false, nil
			}
			m.products[i].StockQuantity -= quantity
			return true, nil
		}
	}
	return false, nil
}

type memSaleRepo struct {
	mu    sync.Mutex
	sales []domain.Sale
	items map[string][]domain.SaleItem
}

func newMemSaleRepo() *memSaleRepo {
	return &memSaleRepo{items: make(map[string][]domain.SaleItem)}
}

func (m *memSaleRepo) CreateSale(ctx context.Context, sale domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sale.Items = nil
	m.sales = append(m.sales, sale)
	return nil
}

func (m *memSaleRepo) CreateSaleItems(ctx context.Context, items []domain.SaleItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range items {
		m.items[item.SaleID] = append(m.items[item.SaleID], item)
	}
	return nil
}

func (m *memSaleRepo) ListSales(ctx context.Context, branchID string) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sale
	for _, s := range m.sales {
		if s.BranchID == branchID {
			s.Items = m.items[s.ID]
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSaleRepo) ListSalesBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sale
	for _, s := range m.sales {
		if s.BranchID == branchID && !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memSaleRepo) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			s.Items = m.items[s.ID]
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memSaleRepo) UpdateSaleStatus(ctx context.Context, id string, from, to domain.SaleStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.sales {
		if m.sales[i].ID == id && m.sales[i].Status == from {
			m.sales[i].Status = to
			return true, nil
		}
	}
	return false, nil
}

type memCustomerRepo struct {
	mu        sync.Mutex
	customers []domain.Customer
}

func (m *memCustomerRepo) ListCustomers(ctx context.Context, branchID string) ([]domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Customer
	for _, c := range m.customers {
		if c.BranchID == branchID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCustomerRepo) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.ID == id {
			out := c
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memCustomerRepo) CreateCustomer(ctx context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, c)
	return nil
}

func (m *memCustomerRepo) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == c.ID {
			m.customers[i] = c
		}
	}
	return nil
}

func (m *memCustomerRepo) DeleteCustomer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memCustomerRepo) CountCustomers(ctx context.Context, branchID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, c := range m.customers {
		if c.BranchID == branchID {
			count++
		}
	}
	return count, nil
}

type memProfileRepo struct {
	mu       sync.Mutex
	profiles []domain.Profile
}

func (m *memProfileRepo) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.Email == email {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *memProfileRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, p)
	return nil
}

type memBranchRepo struct {
	branches []domain.Branch
}

func (m *memBranchRepo) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	return m.branches, nil
}

func (m *memBranchRepo) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	for _, b := range m.branches {
		if b.ID == id {
			out := b
			return &out, nil
		}
	}
	return nil, nil
}

type memCacheRepo struct {
	mu             sync.Mutex
	stock          map[string]int
	idempotencySet map[string]bool
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{
		stock:          make(map[string]int),
		idempotencySet: make(map[string]bool),
	}
}

func (m *memCacheRepo) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.stock[productID]
	if !ok || current < quantity {
		return false, nil
	}
	m.stock[productID] = current - quantity
	return true, nil
}

func (m *memCacheRepo) IncrementStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] += quantity
	return nil
}

func (m *memCacheRepo) SetStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] = quantity
	return nil
}

func (m *memCacheRepo) GetStock(ctx context.Context, productID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.stock[productID]
	return qty, ok, nil
}

func (m *memCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *memCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}
