package router

import (
	_ "github.com/dariast03/reparo-sys-sub001/docs"
	"github.com/dariast03/reparo-sys-sub001/internal/handlers"
	"github.com/dariast03/reparo-sys-sub001/internal/middleware"
	"github.com/dariast03/reparo-sys-sub001/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Stock    service.StockService
	Orders   service.OrderService
	Parts    service.PartsService
	Commerce service.CommerceService
}

func Router(svc Services, log *zap.Logger) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Content-Type", middleware.HeaderActorID, middleware.HeaderIdempotencyKey},
		ExposeHeaders: []string{"Content-Length"},
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	products := handlers.NewProductHandler(svc.Stock, svc.Commerce, log)
	orders := handlers.NewOrderHandler(svc.Orders, svc.Parts, log)
	commerce := handlers.NewCommerceHandler(svc.Commerce, log)

	api := r.Group("/api/v1", middleware.Actor(log))
	{
		api.POST("/products", products.Create)
		api.GET("/products", products.List)
		api.GET("/products/:id", products.Get)
		api.PATCH("/products/:id", products.Update)
		api.GET("/products/:id/movements", products.Movements)
		api.GET("/products/:id/verify", products.Verify)
		api.POST("/products/:id/adjustments", products.Adjust)
		api.GET("/stock/low", products.LowStock)

		api.POST("/orders", orders.Create)
		api.GET("/orders", orders.List)
		api.GET("/orders/:id", orders.Get)
		api.POST("/orders/:id/transitions", orders.Transition)
		api.GET("/orders/:id/history", orders.History)
		api.GET("/orders/:id/verify", orders.Verify)
		api.PATCH("/orders/:id/costs", orders.UpdateCosts)
		api.PUT("/orders/:id/technician", orders.AssignTechnician)
		api.GET("/orders/:id/parts", orders.Parts)
		api.PUT("/orders/:id/parts/:productId", orders.UseItem)
		api.DELETE("/orders/:id/parts/:productId", orders.RemovePart)

		api.POST("/sales", commerce.FinalizeSale)
		api.GET("/sales/:id", commerce.GetSale)
		api.POST("/purchase-orders", commerce.CreatePurchaseOrder)
		api.GET("/purchase-orders/:id", commerce.GetPurchaseOrder)
		api.POST("/purchase-orders/:id/receipts", commerce.ReceivePurchase)
		api.POST("/purchase-orders/:id/cancel", commerce.CancelPurchaseOrder)
	}

	return r
}
