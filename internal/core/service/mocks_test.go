package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

// Hand-rolled in-memory fakes for the port interfaces.

type mockCacheRepo struct {
	mu             sync.Mutex
	stock          map[string]int
	idempotencySet map[string]bool
}

func newMockCacheRepo() *mockCacheRepo {
	return &mockCacheRepo{
		stock:          make(map[string]int),
		idempotencySet: make(map[string]bool),
	}
}

func (m *mockCacheRepo) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.stock[productID]
	if !ok || current < quantity {
		return false, nil
	}
	m.stock[productID] = current - quantity
	return true, nil
}

func (m *mockCacheRepo) IncrementStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] += quantity
	return nil
}

func (m *mockCacheRepo) SetStock(ctx context.Context, productID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stock[productID] = quantity
	return nil
}

func (m *mockCacheRepo) GetStock(ctx context.Context, productID string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	qty, ok := m.stock[productID]
	return qty, ok, nil
}

func (m *mockCacheRepo) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.idempotencySet[key] {
		return false, nil
	}
	m.idempotencySet[key] = true
	return true, nil
}

func (m *mockCacheRepo) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.idempotencySet, key)
	return nil
}

type mockProductRepo struct {
	mu           sync.Mutex
	products     []domain.Product
	decrementErr error
}

func newMockProductRepo(products ...domain.Product) *mockProductRepo {
	return &mockProductRepo{products: products}
}

func (m *mockProductRepo) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Product
	for _, p := range m.products {
		if p.BranchID == branchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockProductRepo) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
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

func (m *mockProductRepo) CreateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products = append(m.products, p)
	return nil
}

func (m *mockProductRepo) UpdateProduct(ctx context.Context, p domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == p.ID {
			m.products[i] = p
			return nil
		}
	}
	return nil
}

func (m *mockProductRepo) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockProductRepo) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decrementErr != nil {
		return false, m.decrementErr
	}
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

func (m *mockProductRepo) stockOf(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == productID {
			return p.StockQuantity
		}
	}
	return -1
}

type mockSaleRepo struct {
	mu             sync.Mutex
	sales          []domain.Sale
	items          map[string][]domain.SaleItem
	createSaleErr  error
	createItemsErr error
}

func newMockSaleRepo() *mockSaleRepo {
	return &mockSaleRepo{items: make(map[string][]domain.SaleItem)}
}

func (m *mockSaleRepo) CreateSale(ctx context.Context, sale domain.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createSaleErr != nil {
		return m.createSaleErr
	}
	sale.Items = nil
	m.sales = append(m.sales, sale)
	return nil
}

func (m *mockSaleRepo) CreateSaleItems(ctx context.Context, items []domain.SaleItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createItemsErr != nil {
		return m.createItemsErr
	}
	for _, item := range items {
		m.items[item.SaleID] = append(m.items[item.SaleID], item)
	}
	return nil
}

func (m *mockSaleRepo) ListSales(ctx context.Context, branchID string) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sale
	for _, s := range m.sales {
		if s.BranchID == branchID {
			s.Items = m.items[s.ID]
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSaleRepo) ListSalesBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Sale
	for _, s := range m.sales {
		if s.BranchID == branchID && !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSaleRepo) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
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

func (m *mockSaleRepo) UpdateSaleStatus(ctx context.Context, id string, from, to domain.SaleStatus) (bool, error) {
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

func (m *mockSaleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sales)
}

type mockCustomerRepo struct {
	mu        sync.Mutex
	customers []domain.Customer
}

func newMockCustomerRepo(customers ...domain.Customer) *mockCustomerRepo {
	return &mockCustomerRepo{customers: customers}
}

func (m *mockCustomerRepo) ListCustomers(ctx context.Context, branchID string) ([]domain.Customer, error) {
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

func (m *mockCustomerRepo) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
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

func (m *mockCustomerRepo) CreateCustomer(ctx context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers = append(m.customers, c)
	return nil
}

func (m *mockCustomerRepo) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == c.ID {
			m.customers[i] = c
			return nil
		}
	}
	return nil
}

func (m *mockCustomerRepo) DeleteCustomer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.customers {
		if m.customers[i].ID == id {
			m.customers = append(m.customers[:i], m.customers[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockCustomerRepo) CountCustomers(ctx context.Context, branchID string) (int, error) {
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

type mockProfileRepo struct {
	mu       sync.Mutex
	profiles []domain.Profile
}

func (m *mockProfileRepo) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if strings.EqualFold(p.Email, email) {
			out := p
			return &out, nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, p)
	return nil
}
