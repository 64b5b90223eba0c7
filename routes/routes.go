package routes

import (
	"net/http"
	"time"

	"github.com/Aaenoor/eco-market-backend/controllers"
	"github.com/Aaenoor/eco-market-backend/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(
	r *gin.Engine,
	checkout *controllers.CheckoutController,
	orders *controllers.OrderController,
	products *controllers.ProductController,
) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Payment initiation opens a provider payment per call, so it gets its
	// own rate limit.
	r.POST("/pay", middleware.RateLimitMiddleware(rate.Every(time.Minute/30), 10), checkout.Pay)

	market := r.Group("/ecoMarket")
	{
		market.POST("/ordersTotalBill", checkout.SetTotalBill)
		market.GET("/success", checkout.Success)
		market.GET("/cancel", checkout.Cancel)
		market.GET("/ordersHistory", checkout.OrdersHistory)

		market.GET("/orders", orders.GetOrders)
		market.POST("/orders", orders.SubmitOrder)

		market.GET("/products", products.GetProducts)
		market.GET("/products/featured", products.GetFeaturedProducts)
		market.GET("/productDetails", products.GetProductDetails)
		market.POST("/product", products.CreateProduct)
		market.DELETE("/product/:name", products.DeleteProduct)
	}
}
