package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/config"
	"github.com/ikkim/teashop-backend/internal/app/controller"
	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/internal/middleware"
)

// Controllers groups every HTTP handler set the API mounts.
type Controllers struct {
	Auth      *controller.AuthController
	User      *controller.UserController
	Product   *controller.ProductController
	Cart      *controller.CartController
	Order     *controller.OrderController
	Payment   *controller.PaymentController
	Review    *controller.ReviewController
	Contact   *controller.ContactController
	WebSocket *controller.WebSocketController
}

type Router struct {
	controllers    Controllers
	authMiddleware *middleware.AuthMiddleware
	rateLimiter    *middleware.RateLimiter
	config         *config.Config
}

// NewRouter wires the API. rateLimiter may be nil to disable throttling.
func NewRouter(
	controllers Controllers,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		controllers:    controllers,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		config:         cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)
	errors.UseJSONFieldNames()

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.PrometheusMetrics())
	router.Use(cors.New(corsConfig(r.config.CORS.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Tea shop API is running",
		})
	})
	router.GET("/metrics", middleware.MetricsHandler())

	// Local blob store fallback serves its files here.
	if r.config.S3.Bucket == "" && r.config.Storage.LocalDir != "" {
		router.Static(r.config.Storage.PublicBaseURL, r.config.Storage.LocalDir)
	}

	auth := r.authMiddleware.Authenticate()
	optionalAuth := r.authMiddleware.OptionalAuthenticate()
	adminOnly := r.authMiddleware.RequireRole(model.RoleAdmin)
	throttle := r.throttle()

	ctl := r.controllers
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", throttle, ctl.Auth.Register)
			authGroup.POST("/login", throttle, ctl.Auth.Login)
			authGroup.POST("/refresh", ctl.Auth.Refresh)
			authGroup.POST("/logout", auth, ctl.Auth.Logout)
		}

		users := v1.Group("/users", auth)
		{
			users.GET("/me", ctl.User.GetMe)
			users.PUT("/me", ctl.User.UpdateMe)
			users.POST("/change-password", ctl.User.ChangePassword)

			users.GET("", adminOnly, ctl.User.ListUsers)
			users.GET("/:id", adminOnly, ctl.User.GetUser)
			users.DELETE("/:id", adminOnly, ctl.User.DeleteUser)
		}

		products := v1.Group("/products")
		{
			products.GET("", ctl.Product.GetAllProducts)
			products.GET("/categories", ctl.Product.GetCategories)
			products.GET("/:id", ctl.Product.GetProductByID)

			products.POST("", auth, adminOnly, ctl.Product.CreateProduct)
			products.PUT("/:id", auth, adminOnly, ctl.Product.UpdateProduct)
			products.DELETE("/:id", auth, adminOnly, ctl.Product.DeleteProduct)
			products.POST("/:id/stock/decrement", auth, adminOnly, ctl.Product.DecrementStock)
		}

		cart := v1.Group("/cart", auth)
		{
			cart.GET("", ctl.Cart.GetCart)
			cart.DELETE("", ctl.Cart.ClearCart)
			cart.POST("/items/:productId", ctl.Cart.AddItem)
			cart.PUT("/items/:productId", ctl.Cart.UpdateItem)
			cart.DELETE("/items/:productId", ctl.Cart.RemoveItem)
		}

		orders := v1.Group("/orders")
		{
			orders.POST("", throttle, optionalAuth, ctl.Order.CreateOrder)
			orders.GET("/my-orders", auth, ctl.Order.GetMyOrders)

			orders.GET("", auth, adminOnly, ctl.Order.GetAllOrders)
			orders.GET("/export", auth, adminOnly, ctl.Order.ExportOrders)
			orders.PUT("/:id/status", auth, adminOnly, ctl.Order.UpdateOrderStatus)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("/create-order", throttle, ctl.Payment.CreateOrder)
			payments.POST("/verify-payment", throttle, ctl.Payment.VerifyPayment)
			payments.GET("/:paymentId", auth, adminOnly, ctl.Payment.GetPayment)
		}

		reviews := v1.Group("/reviews")
		{
			reviews.GET("/product/:productId", ctl.Review.ListProductReviews)
			reviews.POST("/product/:productId", auth, ctl.Review.CreateReview)
			reviews.PUT("/:reviewId", auth, ctl.Review.UpdateReview)
			reviews.DELETE("/:reviewId", auth, ctl.Review.DeleteReview)
		}

		v1.POST("/contact/submit", throttle, ctl.Contact.Submit)

		v1.GET("/ws/orders", auth, ctl.WebSocket.OrderEvents)
	}

	return router
}

func (r *Router) throttle() gin.HandlerFunc {
	if r.rateLimiter == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return r.rateLimiter.Middleware()
}

// corsConfig allows the configured storefront origins. A "*" entry opens the
// API to any origin, without credentials.
func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	for _, o := range allowedOrigins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	if len(allowedOrigins) == 0 {
		cfg.AllowOrigins = []string{"http://localhost:3000"}
	} else {
		cfg.AllowOrigins = allowedOrigins
	}
	return cfg
}
