package controllers_test

import (
	"context"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/controllers"
	"checkout-service/models"
	"checkout-service/repository"
	"checkout-service/routes"
	"checkout-service/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memCatalog serves as both product repository and inventory ledger so
// handler tests see consistent stock.
type memCatalog struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func newMemCatalog(products ...models.Product) *memCatalog {
	c := &memCatalog{products: make(map[uuid.UUID]*models.Product)}
	for i := range products {
		p := products[i]
		c.products[p.ID] = &p
	}
	return c
}

func (c *memCatalog) Create(_ context.Context, product *models.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *product
	c.products[product.ID] = &cp
	return nil
}

func (c *memCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *memCatalog) FindAll(_ context.Context, page, limit int) ([]models.Product, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Product, 0, len(c.products))
	for _, p := range c.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (c *memCatalog) Reserve(_ context.Context, productID uuid.UUID, quantity int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if p.Stock < quantity {
		return 0, repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return p.Stock, nil
}

func (c *memCatalog) Release(_ context.Context, productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[productID]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

func (c *memCatalog) stock(id uuid.UUID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}

type memOrders struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*models.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[uuid.UUID]*models.Order)}
}

func (r *memOrders) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memOrders) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *memOrders) FindByUserID(_ context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memOrders) FindAll(_ context.Context, page, limit int) ([]models.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrders) TotalAmount(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, o := range r.orders {
		total += int64(o.TotalAmount)
	}
	return total, nil
}

func (r *memOrders) MarkFulfilled(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.Status != models.OrderStatusPending {
		return repository.ErrInvalidTransition
	}
	o.Status = models.OrderStatusFulfilled
	o.FulfilledAt = &at
	return nil
}

type memCarts struct {
	mu    sync.Mutex
	carts map[string]*models.Cart
	idem  map[string]string
}

func newMemCarts() *memCarts {
	return &memCarts{carts: make(map[string]*models.Cart), idem: make(map[string]string)}
}

func (r *memCarts) Get(_ context.Context, userID string) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[userID]
	if !ok {
		return nil, nil
	}
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp, nil
}

func (r *memCarts) Save(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *cart
	cp.Items = append([]models.CartItem(nil), cart.Items...)
	r.carts[cart.UserID] = &cp
	return nil
}

func (r *memCarts) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, userID)
	return nil
}

func (r *memCarts) ReserveIdempotentKey(_ context.Context, key string, _ time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.idem[key]; ok {
		return false, nil
	}
	r.idem[key] = repository.IdempotencyInProgress
	return true, nil
}

func (r *memCarts) GetIdempotentOrder(_ context.Context, key string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.idem[key], nil
}

func (r *memCarts) PutIdempotentOrder(_ context.Context, key, orderID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idem[key] = orderID
	return nil
}

func (r *memCarts) DeleteIdempotentKey(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.idem, key)
	return nil
}

type testEnv struct {
	router  *gin.Engine
	catalog *memCatalog
	orders  *memOrders
	carts   *memCarts
}

func newTestEnv(products ...models.Product) *testEnv {
	catalog := newMemCatalog(products...)
	orders := newMemOrders()
	carts := newMemCarts()
	log := zap.NewNop()

	orderService := services.NewOrderService(orders, catalog, catalog, carts, nil, nil, "", time.Hour, log)
	cartService := services.NewCartService(carts, catalog, log)
	productService := services.NewProductService(catalog, catalog, log)

	r := gin.New()
	routes.Register(r,
		controllers.NewOrderController(orderService, log),
		controllers.NewCartController(cartService, log),
		controllers.NewProductController(productService, log))

	return &testEnv{router: r, catalog: catalog, orders: orders, carts: carts}
}
