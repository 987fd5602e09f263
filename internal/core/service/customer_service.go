package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

var (
	ErrCustomerNotFound = errors.New("customer not found")
	ErrInvalidCustomer  = errors.New("invalid customer")
)

type CustomerService struct {
	customers port.CustomerRepository
	now       func() time.Time
}

func NewCustomerService(customers port.CustomerRepository) *CustomerService {
	return &CustomerService{customers: customers, now: time.Now}
}

func (s *CustomerService) ListCustomers(ctx context.Context, branchID string) ([]domain.Customer, error) {
	if branchID == "" {
		return nil, ErrMissingContext
	}
	return s.customers.ListCustomers(ctx, branchID)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	c, err := s.customers.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrCustomerNotFound
	}
	return c, nil
}

func (s *CustomerService) CreateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if c.Name == "" || c.Phone == "" || c.BranchID == "" {
		return nil, ErrInvalidCustomer
	}
	now := s.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := s.customers.CreateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &c, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if c.Name == "" || c.Phone == "" {
		return nil, ErrInvalidCustomer
	}
	existing, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.BranchID = existing.BranchID
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = s.now()
	if err := s.customers.UpdateCustomer(ctx, c); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return &c, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id string) error {
	if _, err := s.GetCustomer(ctx, id); err != nil {
		return err
	}
	return s.customers.DeleteCustomer(ctx, id)
}
