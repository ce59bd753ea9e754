package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joseguilhermeromano/Pastel360/controllers"
)

type Controllers struct {
	Orders        *controllers.OrderController
	Customers     *controllers.CustomerController
	Products      *controllers.ProductController
	Notifications *controllers.NotificationController
}

func RegisterRoutes(router *gin.Engine, c Controllers) {
	controllers.RegisterValidation()

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "OK", "service": "pastel360-api"})
	})

	orders := router.Group("/orders")
	{
		orders.POST("", c.Orders.CreateOrder)
		orders.GET("", c.Orders.GetOrders)
		orders.GET("/:id", c.Orders.GetOrderByID)
		orders.PUT("/:id", c.Orders.UpdateOrder)
		orders.PATCH("/:id", c.Orders.UpdateOrder)
		orders.DELETE("/:id", c.Orders.DeleteOrder)
		orders.POST("/:id/restore", c.Orders.RestoreOrder)
	}
	router.GET("/order-items/:id", c.Orders.GetOrderItem)

	customers := router.Group("/customers")
	{
		customers.POST("", c.Customers.CreateCustomer)
		customers.GET("", c.Customers.GetCustomers)
		customers.GET("/:id", c.Customers.GetCustomerByID)
		customers.PUT("/:id", c.Customers.UpdateCustomer)
		customers.PATCH("/:id", c.Customers.UpdateCustomer)
		customers.DELETE("/:id", c.Customers.DeleteCustomer)
	}

	products := router.Group("/products")
	{
		products.POST("", c.Products.CreateProduct)
		products.GET("", c.Products.GetProducts)
		products.GET("/image/:filename", c.Products.GetImage)
		products.GET("/:id", c.Products.GetProductByID)
		products.PUT("/:id", c.Products.UpdateProduct)
		products.PATCH("/:id", c.Products.UpdateProduct)
		products.DELETE("/:id", c.Products.DeleteProduct)
	}

	router.GET("/notifications", c.Notifications.GetNotificationLogs)
}
