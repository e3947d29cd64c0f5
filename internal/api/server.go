package api

import (
	"net/http"

	"github.com/RoyceAzure/lab/marketplace/internal/api/handler"
	"github.com/RoyceAzure/lab/marketplace/internal/api/middleware"
	"github.com/RoyceAzure/lab/marketplace/internal/infra/gateway"
	"github.com/RoyceAzure/lab/marketplace/internal/service"
	"github.com/RoyceAzure/lab/marketplace/internal/token"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	engine *gin.Engine
}

type Services struct {
	User     service.IUserService
	Product  service.IProductService
	Cart     service.ICartService
	Checkout service.ICheckoutService
	Order    service.IOrderService
	Payment  service.IPaymentService
}

func NewServer(services Services, paymentGateway gateway.IPaymentGateway, tokenMaker *token.JWTMaker, logger *zap.Logger) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.Logger(logger))

	authHandler := handler.NewAuthHandler(services.User, logger)
	productHandler := handler.NewProductHandler(services.Product, logger)
	cartHandler := handler.NewCartHandler(services.Cart, logger)
	orderHandler := handler.NewOrderHandler(services.Checkout, services.Order, services.Payment, logger)
	webhookHandler := handler.NewWebhookHandler(services.Payment, paymentGateway, logger)

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// webhook不走auth, 簽名驗證在handler裡
	engine.POST("/webhooks/paystack", webhookHandler.HandlePaystack)

	v1 := engine.Group("/api/v1")
	{
		v1.POST("/auth/register", authHandler.Register)
		v1.POST("/auth/login", authHandler.Login)

		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:id", productHandler.GetProduct)

		// callback由gateway redirect觸發, 用戶此時不一定帶著token
		v1.GET("/payments/callback", orderHandler.Callback)

		authorized := v1.Group("")
		authorized.Use(middleware.Auth(tokenMaker))
		{
			authorized.POST("/products", productHandler.CreateProduct)
			authorized.PUT("/products/:id", productHandler.UpdateProduct)
			authorized.DELETE("/products/:id", productHandler.DeleteProduct)

			authorized.GET("/cart", cartHandler.GetCart)
			authorized.POST("/cart/items", cartHandler.AddItem)
			authorized.PUT("/cart/items/:product_id", cartHandler.UpdateItem)
			authorized.DELETE("/cart/items/:product_id", cartHandler.RemoveItem)
			authorized.DELETE("/cart", cartHandler.ClearCart)

			authorized.POST("/checkout", orderHandler.Checkout)
			authorized.GET("/orders", orderHandler.ListOrders)
			authorized.GET("/orders/:id", orderHandler.GetOrder)
			authorized.GET("/seller/sold-items", orderHandler.ListSoldItems)
		}
	}

	return &Server{engine: engine}
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}
