package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/middleware"
	"checkout-service/services"
)

type CartController struct {
	cartService *services.CartService
	log         *zap.Logger
}

func NewCartController(cartService *services.CartService, log *zap.Logger) *CartController {
	return &CartController{
		cartService: cartService,
		log:         log,
	}
}

// GetCart returns the current cart for a user
func (cc *CartController) GetCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, svcErr := cc.cartService.GetCart(c.Request.Context(), userID)
	if svcErr != nil {
		respondError(c, cc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
}

// AddItem adds or replaces an item line in the cart
func (cc *CartController) AddItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, svcErr := cc.cartService.AddItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if svcErr != nil {
		respondError(c, cc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item added to cart successfully", "cart": cart})
}

// UpdateItem changes a line's quantity; quantity 0 removes the line
func (cc *CartController) UpdateItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req services.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	cart, svcErr := cc.cartService.UpdateItem(c.Request.Context(), userID, req.ProductID, req.Quantity)
	if svcErr != nil {
		respondError(c, cc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart updated successfully", "cart": cart})
}

// RemoveItem removes a specific product line from the cart
func (cc *CartController) RemoveItem(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	cart, svcErr := cc.cartService.RemoveItem(c.Request.Context(), userID, productID)
	if svcErr != nil {
		respondError(c, cc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Item removed from cart", "cart": cart})
}

// ClearCart removes all items from the cart
func (cc *CartController) ClearCart(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cart, svcErr := cc.cartService.Clear(c.Request.Context(), userID)
	if svcErr != nil {
		respondError(c, cc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared successfully", "cart": cart})
}
