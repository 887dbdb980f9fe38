package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/middleware"
	"checkout-service/services"
)

type OrderController struct {
	orderService *services.OrderService
	log          *zap.Logger
}

func NewOrderController(orderService *services.OrderService, log *zap.Logger) *OrderController {
	return &OrderController{
		orderService: orderService,
		log:          log,
	}
}

// CreateOrder handles checkout requests. An optional Idempotency-Key
// header makes retries safe: a known key returns the original order.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.Checkout(c.Request.Context(), userID, c.GetHeader("Idempotency-Key"), &req)
	if svcErr != nil {
		respondError(c, oc.log, svcErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
}

// GetMyOrders returns paginated orders for the authenticated user
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := parsePaginationParams(c)

	result, svcErr := oc.orderService.GetUserOrders(c.Request.Context(), userID, page, limit)
	if svcErr != nil {
		respondError(c, oc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a single order to its owner or an admin
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	order, svcErr := oc.orderService.GetOrderByID(c.Request.Context(), userID, middleware.GetRole(c), orderID)
	if svcErr != nil {
		respondError(c, oc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// GetAllOrders returns all orders plus the aggregate total (admin only)
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	result, svcErr := oc.orderService.GetAllOrders(c.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(c, oc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateOrderStatus applies the pending -> fulfilled transition (admin only)
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req services.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	order, svcErr := oc.orderService.UpdateStatus(c.Request.Context(), orderID, req.Status)
	if svcErr != nil {
		respondError(c, oc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
