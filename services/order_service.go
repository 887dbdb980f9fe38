package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/errs"
	"checkout-service/kafka"
	"checkout-service/models"
	"checkout-service/repository"

	awspkg "checkout-service/aws"
)

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentInfo     models.PaymentInfo     `json:"payment_info"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type MetaData struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	TotalOrders int64 `json:"total_orders"`
	TotalPages  int64 `json:"total_pages"`
	HasMore     bool  `json:"has_more"`
}

type OrderListResponse struct {
	Orders []models.Order `json:"orders"`
	Meta   MetaData       `json:"meta"`
}

// AdminOrderListResponse additionally carries the aggregate total across
// all orders, not just the returned page.
type AdminOrderListResponse struct {
	Orders      []models.Order `json:"orders"`
	TotalAmount int64          `json:"total_amount"`
	Meta        MetaData       `json:"meta"`
}

// OrderService owns checkout: it validates the request, reserves stock
// through the inventory ledger, materializes the immutable order snapshot
// and clears the cart. A checkout either commits all of its effects or
// none: reservations made before a failure are released before the error
// propagates.
type OrderService struct {
	orders      repository.OrderRepository
	products    repository.ProductRepository
	inventory   repository.InventoryRepository
	carts       repository.CartRepository
	producer    kafka.ProducerAPI
	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	idemTTL     time.Duration
	log         *zap.Logger
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	inventory repository.InventoryRepository,
	carts repository.CartRepository,
	producer kafka.ProducerAPI,
	snsClient awspkg.SNSPublisher,
	snsTopicArn string,
	idemTTL time.Duration,
	log *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:      orders,
		products:    products,
		inventory:   inventory,
		carts:       carts,
		producer:    producer,
		snsClient:   snsClient,
		snsTopicArn: snsTopicArn,
		idemTTL:     idemTTL,
		log:         log,
	}
}

type reservation struct {
	productID uuid.UUID
	quantity  int
}

// Checkout converts an item list into a persisted pending order.
//
// The sequence is a saga: each line reserves stock with a conditional
// decrement, and any failure releases the reservations already made in
// this call before the triggering error is returned. On success the order
// and its snapshots are persisted in one transaction and the user's cart
// is deleted.
//
// An optional idempotency key deduplicates retries: the key is claimed
// atomically before the saga runs, so a key that already committed returns
// the original order without touching stock, and a concurrent duplicate of
// an in-flight checkout is rejected instead of committing twice.
func (s *OrderService) Checkout(ctx context.Context, userID, idempotencyKey string, req *CreateOrderRequest) (*models.Order, *errs.Error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errs.Validation("Invalid user ID format")
	}

	if len(req.Items) == 0 {
		return nil, errs.Validation("At least one item is required")
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			return nil, errs.Validation("Quantity must be at least 1")
		}
	}

	if idempotencyKey != "" {
		if existing, svcErr := s.claimIdempotencyKey(ctx, idempotencyKey); svcErr != nil {
			return nil, svcErr
		} else if existing != nil {
			return existing, nil
		}
	}

	reserved := make([]reservation, 0, len(req.Items))
	items := make([]models.OrderItem, 0, len(req.Items))
	totalAmount := 0

	for _, item := range req.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			s.rollback(ctx, reserved, idempotencyKey)
			if errors.Is(err, repository.ErrNotFound) {
				return nil, errs.NotFound(fmt.Sprintf("Product not found: %s", item.ProductID), err)
			}
			return nil, errs.Internal(err)
		}

		if _, err := s.inventory.Reserve(ctx, item.ProductID, item.Quantity); err != nil {
			s.rollback(ctx, reserved, idempotencyKey)
			switch {
			case errors.Is(err, repository.ErrInsufficientStock):
				return nil, errs.InsufficientStock(fmt.Sprintf("Insufficient stock for %s", product.Name), err)
			case errors.Is(err, repository.ErrNotFound):
				return nil, errs.NotFound(fmt.Sprintf("Product not found: %s", item.ProductID), err)
			default:
				return nil, errs.Internal(err)
			}
		}
		reserved = append(reserved, reservation{productID: item.ProductID, quantity: item.Quantity})

		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price,
		})
		totalAmount += product.Price * item.Quantity
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     newOrderNumber(now),
		UserID:          userUUID,
		Items:           items,
		ShippingAddress: req.ShippingAddress,
		PaymentInfo:     req.PaymentInfo,
		TotalAmount:     totalAmount,
		Status:          models.OrderStatusPending,
		PaidAt:          &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.rollback(ctx, reserved, idempotencyKey)
		return nil, errs.Internal(err)
	}

	// The cart lives in Redis and cannot join the Postgres transaction;
	// deletion after commit is best-effort. A stale cart is advisory only
	// since checkout re-validates against the ledger.
	if err := s.carts.Delete(ctx, userID); err != nil {
		s.log.Warn("failed to delete cart after checkout",
			zap.String("user_id", userID),
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}

	if idempotencyKey != "" {
		if err := s.carts.PutIdempotentOrder(ctx, idempotencyKey, order.ID.String(), s.idemTTL); err != nil {
			s.log.Warn("failed to record idempotency key",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}

	s.publishEvent(ctx, models.EventOrderCreated, order)

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID),
		zap.Int("items", len(items)),
		zap.Int("total_amount", totalAmount))

	return order, nil
}

// claimIdempotencyKey atomically claims the key for this checkout. A nil,
// nil return means the claim succeeded and the saga may run. When the
// claim is lost, the key either resolves to the order it already
// committed, or another checkout still holds it and the duplicate is
// rejected with a conflict.
func (s *OrderService) claimIdempotencyKey(ctx context.Context, key string) (*models.Order, *errs.Error) {
	claimed, err := s.carts.ReserveIdempotentKey(ctx, key, s.idemTTL)
	if err != nil {
		return nil, errs.Internal(err)
	}
	if claimed {
		return nil, nil
	}

	val, err := s.carts.GetIdempotentOrder(ctx, key)
	if err != nil {
		return nil, errs.Internal(err)
	}
	id, parseErr := uuid.Parse(val)
	if parseErr != nil {
		return nil, errs.Conflict("Checkout with this idempotency key is already in progress")
	}
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.Conflict("Checkout with this idempotency key is already in progress")
		}
		return nil, errs.Internal(err)
	}
	return order, nil
}

// rollback compensates a failed checkout: reservations are released and,
// when a key was claimed, the claim is dropped so a retry can run the saga
// again.
func (s *OrderService) rollback(ctx context.Context, reserved []reservation, idempotencyKey string) {
	s.releaseAll(ctx, reserved)
	if idempotencyKey == "" {
		return
	}
	if err := s.carts.DeleteIdempotentKey(ctx, idempotencyKey); err != nil {
		s.log.Warn("failed to release idempotency key", zap.Error(err))
	}
}

// releaseAll compensates reservations already made in this checkout, in
// reverse order. A release that fails is logged; stock reconciliation is
// an operational concern at that point.
func (s *OrderService) releaseAll(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := s.inventory.Release(ctx, r.productID, r.quantity); err != nil {
			s.log.Error("failed to release reservation",
				zap.String("product_id", r.productID.String()),
				zap.Int("quantity", r.quantity),
				zap.Error(err))
		}
	}
}

// GetUserOrders retrieves paginated orders for a specific user
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, page, limit int) (*OrderListResponse, *errs.Error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errs.Validation("Invalid user ID format")
	}

	orders, total, err := s.orders.FindByUserID(ctx, userUUID, page, limit)
	if err != nil {
		return nil, errs.Internal(err)
	}

	return &OrderListResponse{
		Orders: orders,
		Meta:   buildMeta(page, limit, total),
	}, nil
}

// GetOrderByID retrieves a single order for its owner or an admin. A
// non-owner gets NotFound rather than Forbidden so order ids are not
// probeable.
func (s *OrderService) GetOrderByID(ctx context.Context, userID, role string, orderID uuid.UUID) (*models.Order, *errs.Error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errs.Validation("Invalid user ID format")
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.NotFound("Order not found", err)
		}
		return nil, errs.Internal(err)
	}

	if order.UserID != userUUID && role != "admin" {
		return nil, errs.NotFound("Order not found", nil)
	}

	return order, nil
}

// GetAllOrders retrieves paginated orders for all users plus the aggregate
// total amount (admin only).
func (s *OrderService) GetAllOrders(ctx context.Context, page, limit int) (*AdminOrderListResponse, *errs.Error) {
	orders, total, err := s.orders.FindAll(ctx, page, limit)
	if err != nil {
		return nil, errs.Internal(err)
	}

	totalAmount, err := s.orders.TotalAmount(ctx)
	if err != nil {
		return nil, errs.Internal(err)
	}

	return &AdminOrderListResponse{
		Orders:      orders,
		TotalAmount: totalAmount,
		Meta:        buildMeta(page, limit, total),
	}, nil
}

// UpdateStatus applies the pending -> fulfilled transition. Any other
// target status, and any repeat fulfillment, is rejected and leaves the
// order unchanged.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string) (*models.Order, *errs.Error) {
	if status != models.OrderStatusFulfilled {
		return nil, errs.InvalidTransition(fmt.Sprintf("Unsupported status transition to %q", status), nil)
	}

	if err := s.orders.MarkFulfilled(ctx, orderID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, errs.NotFound("Order not found", err)
		case errors.Is(err, repository.ErrInvalidTransition):
			return nil, errs.InvalidTransition("Order has already been fulfilled", err)
		default:
			return nil, errs.Internal(err)
		}
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, errs.Internal(err)
	}

	s.publishEvent(ctx, models.EventOrderFulfilled, order)

	return order, nil
}

// publishEvent fans an order lifecycle event out to Kafka and, when
// configured, SNS. Both are best-effort.
func (s *OrderService) publishEvent(ctx context.Context, event string, order *models.Order) {
	evt := models.OrderEvent{
		Event:     event,
		OrderID:   order.ID.String(),
		UserID:    order.UserID.String(),
		Amount:    order.TotalAmount,
		Status:    order.Status,
		Timestamp: time.Now().UTC(),
	}

	if s.producer != nil {
		if err := s.producer.SendOrderEvent(ctx, evt); err != nil {
			s.log.Warn("kafka publish failed", zap.String("event", event), zap.Error(err))
		}
	}

	if s.snsClient != nil && s.snsTopicArn != "" {
		data, err := json.Marshal(evt)
		if err != nil {
			return
		}
		if err := s.snsClient.Publish(ctx, s.snsTopicArn, data); err != nil {
			s.log.Warn("sns publish failed", zap.String("event", event), zap.Error(err))
		}
	}
}

func newOrderNumber(now time.Time) string {
	return "ORD-" + now.Format("20060102-150405") + "-" + uuid.New().String()[:8]
}

func buildMeta(page, limit int, total int64) MetaData {
	return MetaData{
		Page:        page,
		Limit:       limit,
		TotalOrders: total,
		TotalPages:  calculateTotalPages(total, limit),
		HasMore:     total > int64(page*limit),
	}
}

func calculateTotalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
