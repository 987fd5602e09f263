package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/1062291-rgb/masuma-east-hub/internal/core/domain"
	"github.com/1062291-rgb/masuma-east-hub/internal/core/service"
	"github.com/1062291-rgb/masuma-east-hub/internal/port"
)

type Server struct {
	engine    *gin.Engine
	auth      *service.AuthService
	catalog   *service.CatalogService
	customers *service.CustomerService
	sales     *service.SaleService
	reports   *service.ReportService
	branches  port.BranchRepository
	branding  service.Branding
}

func NewServer(
	auth *service.AuthService,
	catalog *service.CatalogService,
	customers *service.CustomerService,
	sales *service.SaleService,
	reports *service.ReportService,
	branches port.BranchRepository,
) *Server {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	s := &Server{
		engine:    r,
		auth:      auth,
		catalog:   catalog,
		customers: customers,
		sales:     sales,
		reports:   reports,
		branches:  branches,
		branding:  service.DefaultBranding(),
	}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/auth/login", s.login)
		v1.GET("/branches", s.listBranches)

		products := v1.Group("/products")
		products.GET("", s.listProducts)
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.GET(":id/stock", s.productStock)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)

		customers := v1.Group("/customers")
		customers.GET("", s.listCustomers)
		customers.POST("", s.createCustomer)
		customers.GET(":id", s.getCustomer)
		customers.PUT(":id", s.updateCustomer)
		customers.DELETE(":id", s.deleteCustomer)

		sales := v1.Group("/sales")
		sales.GET("", s.listSales)
		sales.GET(":id", s.getSale)
		sales.GET(":id/receipt", s.saleReceipt)
		sales.POST(":id/refund", s.refundSale)

		v1.POST("/pos/checkout", s.checkout)

		reports := v1.Group("/reports")
		reports.GET("/summary", s.reportSummary)
		reports.GET("/daily", s.reportDaily)
		reports.GET("/categories", s.reportCategories)
		reports.GET("/export", s.reportExport)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// --- auth ---

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	profile, err := s.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) listBranches(c *gin.Context) {
	branches, err := s.branches.ListBranches(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, branches)
}

// --- products ---

func (s *Server) listProducts(c *gin.Context) {
	branchID := c.Query("branch_id")
	var (
		products []domain.Product
		err      error
	)
	switch {
	case c.Query("low_stock") == "1":
		products, err = s.catalog.LowStock(c.Request.Context(), branchID)
	default:
		products, err = s.catalog.SearchProducts(c.Request.Context(), branchID, c.Query("search"))
	}
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) productStock(c *gin.Context) {
	qty, err := s.catalog.CachedStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product_id": c.Param("id"), "stock_quantity": qty})
}

func (s *Server) createProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	created, err := s.catalog.CreateProduct(c.Request.Context(), p)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p.ID = c.Param("id")
	updated, err := s.catalog.UpdateProduct(c.Request.Context(), p)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	if err := s.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- customers ---

func (s *Server) listCustomers(c *gin.Context) {
	customers, err := s.customers.ListCustomers(c.Request.Context(), c.Query("branch_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (s *Server) getCustomer(c *gin.Context) {
	cust, err := s.customers.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (s *Server) createCustomer(c *gin.Context) {
	var cust domain.Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	created, err := s.customers.CreateCustomer(c.Request.Context(), cust)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateCustomer(c *gin.Context) {
	var cust domain.Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cust.ID = c.Param("id")
	updated, err := s.customers.UpdateCustomer(c.Request.Context(), cust)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCustomer(c *gin.Context) {
	if err := s.customers.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// --- sales ---

func (s *Server) listSales(c *gin.Context) {
	sales, err := s.sales.ListSales(c.Request.Context(), c.Query("branch_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (s *Server) getSale(c *gin.Context) {
	sale, err := s.sales.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (s *Server) refundSale(c *gin.Context) {
	sale, err := s.sales.MarkRefunded(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (s *Server) saleReceipt(c *gin.Context) {
	ctx := c.Request.Context()
	sale, err := s.sales.GetSale(ctx, c.Param("id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	var customer *domain.Customer
	if sale.CustomerID != "" {
		customer, err = s.customers.GetCustomer(ctx, sale.CustomerID)
		if err != nil && !errors.Is(err, service.ErrCustomerNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
	}
	text := service.RenderReceipt(*sale, sale.Items, customer, s.branding, time.Now())
	c.String(http.StatusOK, text)
}

// --- POS checkout ---

type checkoutItemReq struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutReq struct {
	RequestID     string            `json:"request_id"`
	BranchID      string            `json:"branch_id"`
	CashierID     string            `json:"cashier_id"`
	CustomerID    string            `json:"customer_id"`
	PaymentMethod string            `json:"payment_method"`
	Currency      string            `json:"currency"`
	Items         []checkoutItemReq `json:"items"`
}

type checkoutResp struct {
	Sale    *domain.Sale `json:"sale"`
	Partial bool         `json:"partial"`
	Stage   string       `json:"stage,omitempty"`
	Warning string       `json:"warning,omitempty"`
}

func (s *Server) checkout(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cart := service.NewCart()
	for _, item := range req.Items {
		p, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
			return
		}
		if err := cart.AddItem(*p, item.Quantity); err != nil {
			c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
			return
		}
	}

	sale, err := s.sales.Submit(ctx, cart, service.SaleContext{
		RequestID:     req.RequestID,
		BranchID:      req.BranchID,
		CashierID:     req.CashierID,
		CustomerID:    req.CustomerID,
		PaymentMethod: method,
		Currency:      req.Currency,
	})
	if err != nil {
		var partial *service.PartialCommitError
		if errors.As(err, &partial) {
			// The header is committed; report the sale along with what
			// is missing rather than a blanket failure.
			c.JSON(http.StatusCreated, checkoutResp{
				Sale:    sale,
				Partial: true,
				Stage:   string(partial.Stage),
				Warning: partial.Err.Error(),
			})
			return
		}
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, checkoutResp{Sale: sale})
}

// --- reports ---

func (s *Server) reportSummary(c *gin.Context) {
	summary, err := s.reports.Summary(c.Request.Context(), c.Query("branch_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) reportDaily(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	daily, err := s.reports.DailySales(c.Request.Context(), c.Query("branch_id"), from, to)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, daily)
}

func (s *Server) reportCategories(c *gin.Context) {
	categories, err := s.reports.CategoryStock(c.Request.Context(), c.Query("branch_id"))
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) reportExport(c *gin.Context) {
	from, to, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := s.reports.TextReport(c.Request.Context(), c.Query("branch_id"), c.Query("currency"), from, to)
	if err != nil {
		c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.String(http.StatusOK, text)
}

// dateRange parses from/to query params (YYYY-MM-DD), defaulting to
// the last 30 days.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -30)
	to := now
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, errors.New("invalid from date")
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return from, to, errors.New("invalid to date")
		}
		// include the whole end day
		to = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return from, to, nil
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingContext),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProduct),
		errors.Is(err, service.ErrInvalidCustomer):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrSaleNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateSubmission),
		errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientStock):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
