package routes

import (
	"github.com/gin-gonic/gin"

	"checkout-service/controllers"
	"checkout-service/middleware"
)

// Register wires all HTTP routes. Admin routes are gated on the role
// header in addition to authentication.
func Register(
	r *gin.Engine,
	orderController *controllers.OrderController,
	cartController *controllers.CartController,
	productController *controllers.ProductController,
) {
	orderRoutes := r.Group("/order")
	orderRoutes.Use(middleware.AuthMiddleware())
	{
		orderRoutes.POST("", orderController.CreateOrder)
		orderRoutes.GET("/me", orderController.GetMyOrders)
		orderRoutes.GET("/:id", orderController.GetOrderByID)
	}

	cartRoutes := r.Group("/cart")
	cartRoutes.Use(middleware.AuthMiddleware())
	{
		cartRoutes.GET("", cartController.GetCart)
		cartRoutes.POST("/items", cartController.AddItem)
		cartRoutes.PUT("/items", cartController.UpdateItem)
		cartRoutes.DELETE("/items/:product_id", cartController.RemoveItem)
		cartRoutes.DELETE("", cartController.ClearCart)
	}

	productRoutes := r.Group("/products")
	{
		productRoutes.GET("", productController.ListProducts)
		productRoutes.GET("/:id", productController.GetProduct)
	}

	adminRoutes := r.Group("/admin")
	adminRoutes.Use(middleware.AuthMiddleware(), middleware.AdminOnly())
	{
		adminRoutes.GET("/orders", orderController.GetAllOrders)
		adminRoutes.PUT("/order/:id", orderController.UpdateOrderStatus)
		adminRoutes.POST("/products", productController.CreateProduct)
		adminRoutes.PATCH("/products/:id/stock", productController.RestockProduct)
	}
}
