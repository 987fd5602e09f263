package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
)

// MySQLAdapter is the source of truth for the catalog, customers,
// sales ledger and profiles.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

// --- products ---

const productColumns = `id, sku, name, description, category, brand, part_number,
		price, cost_price, stock_quantity, min_stock_level, branch_id, created_at, updated_at`

func (m *MySQLAdapter) ListProducts(ctx context.Context, branchID string) ([]domain.Product, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE branch_id = ? ORDER BY name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *MySQLAdapter) CreateProduct(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, description, category, brand, part_number,
			price, cost_price, stock_quantity, min_stock_level, branch_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.SKU, p.Name, p.Description, p.Category, p.Brand, p.PartNumber,
		p.Price, p.CostPrice, p.StockQuantity, p.MinStockLevel, p.BranchID,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateProduct(ctx context.Context, p domain.Product) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET sku = ?, name = ?, description = ?, category = ?, brand = ?, part_number = ?,
			price = ?, cost_price = ?, stock_quantity = ?, min_stock_level = ?, updated_at = ?
		WHERE id = ?`,
		p.SKU, p.Name, p.Description, p.Category, p.Brand, p.PartNumber,
		p.Price, p.CostPrice, p.StockQuantity, p.MinStockLevel, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteProduct(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	return nil
}

// DecrementStock is a single conditional UPDATE; the stock_quantity
// guard makes the decrement atomic so stock never goes negative.
func (m *MySQLAdapter) DecrementStock(ctx context.Context, productID string, quantity int) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - ?, updated_at = NOW()
		WHERE id = ? AND stock_quantity >= ?`,
		quantity, productID, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// --- sales ---

const saleColumns = `id, customer_id, cashier_id, branch_id, total_amount, currency,
		payment_method, status, receipt_number, created_at, updated_at`

func (m *MySQLAdapter) CreateSale(ctx context.Context, sale domain.Sale) error {
	var customerID sql.NullString
	if sale.CustomerID != "" {
		customerID = sql.NullString{String: sale.CustomerID, Valid: true}
	}
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO sales (id, customer_id, cashier_id, branch_id, total_amount, currency,
			payment_method, status, receipt_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sale.ID, customerID, sale.CashierID, sale.BranchID, sale.TotalAmount, sale.Currency,
		string(sale.PaymentMethod), string(sale.Status), sale.ReceiptNumber,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert sale: %w", err)
	}
	return nil
}

// CreateSaleItems writes all line items of one sale in a single
// transaction: either the sale has its full item set or none.
func (m *MySQLAdapter) CreateSaleItems(ctx context.Context, items []domain.SaleItem) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, product_name, part_number,
				quantity, unit_price, total_price, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, item.SaleID, item.ProductID, item.ProductName, item.PartNumber,
			item.Quantity, item.UnitPrice, item.TotalPrice, item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert sale item: %w", err)
		}
	}

	return tx.Commit()
}

func (m *MySQLAdapter) ListSales(ctx context.Context, branchID string) ([]domain.Sale, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales WHERE branch_id = ? ORDER BY created_at DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	sales, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	return m.attachItems(ctx, sales)
}

func (m *MySQLAdapter) ListSalesBetween(ctx context.Context, branchID string, from, to time.Time) ([]domain.Sale, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales WHERE branch_id = ? AND created_at >= ? AND created_at <= ?
		ORDER BY created_at`, branchID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query sales: %w", err)
	}
	defer rows.Close()

	return collectSales(rows)
}

func (m *MySQLAdapter) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales WHERE id = ?`, id)
	sale, err := scanSale(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	items, err := m.getSaleItems(ctx, sale.ID)
	if err != nil {
		return nil, err
	}
	sale.Items = items
	return &sale, nil
}

func (m *MySQLAdapter) UpdateSaleStatus(ctx context.Context, id string, from, to domain.SaleStatus) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		UPDATE sales SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?`,
		string(to), id, string(from),
	)
	if err != nil {
		return false, fmt.Errorf("update sale status: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLAdapter) getSaleItems(ctx context.Context, saleID string) ([]domain.SaleItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, product_name, part_number,
			quantity, unit_price, total_price, created_at
		FROM sale_items WHERE sale_id = ? ORDER BY created_at`, saleID)
	if err != nil {
		return nil, fmt.Errorf("query sale items: %w", err)
	}
	defer rows.Close()

	var out []domain.SaleItem
	for rows.Next() {
		var item domain.SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.PartNumber, &item.Quantity, &item.UnitPrice, &item.TotalPrice,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) attachItems(ctx context.Context, sales []domain.Sale) ([]domain.Sale, error) {
	for i := range sales {
		items, err := m.getSaleItems(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

// --- customers ---

const customerColumns = `id, name, email, phone, address, kra_pin, branch_id, created_at, updated_at`

func (m *MySQLAdapter) ListCustomers(ctx context.Context, branchID string) ([]domain.Customer, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers WHERE branch_id = ? ORDER BY name`, branchID)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+customerColumns+`
		FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (m *MySQLAdapter) CreateCustomer(ctx context.Context, c domain.Customer) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, address, kra_pin, branch_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Phone, c.Address, c.KraPIN, c.BranchID,
		c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) UpdateCustomer(ctx context.Context, c domain.Customer) error {
	_, err := m.db.ExecContext(ctx, `
		UPDATE customers
		SET name = ?, email = ?, phone = ?, address = ?, kra_pin = ?, updated_at = ?
		WHERE id = ?`,
		c.Name, c.Email, c.Phone, c.Address, c.KraPIN, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) DeleteCustomer(ctx context.Context, id string) error {
	_, err := m.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) CountCustomers(ctx context.Context, branchID string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM customers WHERE branch_id = ?`, branchID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return count, nil
}

// --- profiles ---

func (m *MySQLAdapter) GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var p domain.Profile
	var role string
	err := m.db.QueryRowContext(ctx, `
		SELECT id, email, full_name, role, branch_id, country, currency, password_hash,
			created_at, updated_at
		FROM profiles WHERE email = ?`, email,
	).Scan(&p.ID, &p.Email, &p.FullName, &role, &p.BranchID, &p.Country, &p.Currency,
		&p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	p.Role = domain.Role(role)
	return &p, nil
}

func (m *MySQLAdapter) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO profiles (id, email, full_name, role, branch_id, country, currency,
			password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.FullName, string(p.Role), p.BranchID, p.Country, p.Currency,
		p.PasswordHash, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// --- branches ---

func (m *MySQLAdapter) ListBranches(ctx context.Context) ([]domain.Branch, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, name, address, country, currency, phone, email, created_at, updated_at
		FROM branches ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query branches: %w", err)
	}
	defer rows.Close()

	var out []domain.Branch
	for rows.Next() {
		var b domain.Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Address, &b.Country, &b.Currency,
			&b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (m *MySQLAdapter) GetBranch(ctx context.Context, id string) (*domain.Branch, error) {
	var b domain.Branch
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, address, country, currency, phone, email, created_at, updated_at
		FROM branches WHERE id = ?`, id,
	).Scan(&b.ID, &b.Name, &b.Address, &b.Country, &b.Currency,
		&b.Phone, &b.Email, &b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query branch: %w", err)
	}
	return &b, nil
}

// --- scan helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Description, &p.Category, &p.Brand,
		&p.PartNumber, &p.Price, &p.CostPrice, &p.StockQuantity, &p.MinStockLevel,
		&p.BranchID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return p, fmt.Errorf("scan product: %w", err)
	}
	return p, err
}

func scanSale(row rowScanner) (domain.Sale, error) {
	var s domain.Sale
	var customerID sql.NullString
	var method, status string
	err := row.Scan(&s.ID, &customerID, &s.CashierID, &s.BranchID, &s.TotalAmount,
		&s.Currency, &method, &status, &s.ReceiptNumber, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			err = fmt.Errorf("scan sale: %w", err)
		}
		return s, err
	}
	s.CustomerID = customerID.String
	s.PaymentMethod = domain.PaymentMethod(method)
	s.Status = domain.SaleStatus(status)
	return s, nil
}

func scanCustomer(row rowScanner) (domain.Customer, error) {
	var c domain.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.KraPIN,
		&c.BranchID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return c, fmt.Errorf("scan customer: %w", err)
	}
	return c, err
}

func collectSales(rows *sql.Rows) ([]domain.Sale, error) {
	var out []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
