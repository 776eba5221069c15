package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"prakritikart_back_end/internal/handlers/customer"
	"prakritikart_back_end/internal/handlers/seller"
	"prakritikart_back_end/internal/middleware"
	services "prakritikart_back_end/internal/service"
)

// SetupRouter câble les routes et injecte le service de paiement
func SetupRouter(payments *services.PaymentService) *gin.Engine {
	customer.Payments = payments

	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	corsConfig.AllowOrigins = strings.Split(origins, ",")
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit())

	// --- OAuth (web) ---
	api.GET("/auth/:provider", customer.BeginAuth)
	api.GET("/auth/:provider/callback", customer.CallbackAuth)

	// --- Côté client ---
	cust := api.Group("/customer")
	{
		cust.POST("/signup", middleware.RegisterRateLimit(), customer.SignUp)
		cust.POST("/login", middleware.LoginRateLimit(), customer.Login)

		// Catalogue public
		cust.GET("/products/home", customer.GetHomeProducts)
		cust.GET("/products/:id", customer.GetProduct)
		cust.GET("/products/search", middleware.SearchRateLimit(), customer.SearchProductsHandler)

		auth := cust.Group("")
		auth.Use(middleware.CustomerAuthRequired())
		{
			auth.GET("/me", customer.Me)

			auth.POST("/address", customer.AddAddress)
			auth.GET("/address", customer.GetAddresses)
			auth.PUT("/address/:id", customer.UpdateAddress)
			auth.DELETE("/address/:id", customer.DeleteAddress)

			auth.POST("/cart", middleware.CartRateLimit(), customer.AddToCart)
			auth.GET("/cart", customer.GetCart)
			auth.GET("/cart/details", customer.GetCartDetails)
			auth.DELETE("/cart/:productId", customer.RemoveFromCart)
			auth.GET("/cart/ws", customer.CartWebSocket)

			auth.POST("/create-order", customer.CreateOrder)
			auth.POST("/verify-payment", customer.VerifyPayment)
			auth.GET("/order/get-order-items", customer.GetOrderItems)
			auth.GET("/order/ws", customer.OrderWebSocket)
		}
	}

	// --- Côté vendeur ---
	sell := api.Group("/seller")
	{
		sell.POST("/signup", middleware.RegisterRateLimit(), seller.SignUp)
		sell.POST("/login", middleware.LoginRateLimit(), seller.Login)

		sell.GET("/info/:id", seller.GetSellerInfo)

		auth := sell.Group("")
		auth.Use(middleware.SellerAuthRequired())
		{
			auth.GET("/requiredinfo", seller.RequiredInfo)
			auth.POST("/add/sellerinfo", seller.AddSellerInfo)
			auth.POST("/add/product", seller.AddProduct)
			auth.PUT("/product/:id", seller.UpdateProduct)
			auth.GET("/products", seller.GetSellerProducts)
			auth.POST("/upload/image", seller.UploadImage)
		}
	}

	return r
}
