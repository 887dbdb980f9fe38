package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"checkout-service/services"
)

type ProductController struct {
	productService *services.ProductService
	log            *zap.Logger
}

func NewProductController(productService *services.ProductService, log *zap.Logger) *ProductController {
	return &ProductController{
		productService: productService,
		log:            log,
	}
}

// CreateProduct creates a catalog entry with its initial stock (admin only)
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.CreateProduct(c.Request.Context(), &req)
	if svcErr != nil {
		respondError(c, pc.log, svcErr)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// GetProduct returns a single product
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	product, svcErr := pc.productService.GetProduct(c.Request.Context(), id)
	if svcErr != nil {
		respondError(c, pc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// ListProducts returns a paginated product listing
func (pc *ProductController) ListProducts(c *gin.Context) {
	page, limit := parsePaginationParams(c)

	result, svcErr := pc.productService.ListProducts(c.Request.Context(), page, limit)
	if svcErr != nil {
		respondError(c, pc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RestockProduct adds stock to a product (admin only)
func (pc *ProductController) RestockProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID format"})
		return
	}

	var req services.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	product, svcErr := pc.productService.Restock(c.Request.Context(), id, req.Quantity)
	if svcErr != nil {
		respondError(c, pc.log, svcErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}
