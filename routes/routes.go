package routes

import (
	"net/http"
	"time"

	"restaurant-api/auth"
	"restaurant-api/handlers"
	"restaurant-api/middleware"
	"restaurant-api/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	serviceName    = "restaurant-api"
	serviceVersion = "1.0.0"
	idempotencyTTL = 24 * time.Hour
)

type Deps struct {
	Log      *zap.Logger
	Tokens   *auth.TokenService
	Users    *repository.UserRepository
	Roles    *repository.RoleRepository
	Products *repository.ProductRepository
	Orders   *repository.OrderRepository
	// Cache enables Idempotency-Key replay on order creation when set.
	Cache middleware.ResponseCache
}

// NewRouter builds the engine with the request pipeline every route shares.
func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(d.Log),
		gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
			d.Log.Error("panic recovered", zap.Any("panic", recovered))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
		}),
		middleware.ErrorResponder(d.Log),
		middleware.Identity(d.Tokens, d.Users),
	)
	SetupRoutes(r, d)
	return r
}

func SetupRoutes(r *gin.Engine, d Deps) {
	authHandler := &handlers.AuthHandler{Users: d.Users, Tokens: d.Tokens}
	users := &handlers.UserHandler{Users: d.Users, Roles: d.Roles}
	products := &handlers.ProductHandler{Products: d.Products}
	orders := &handlers.OrderHandler{Orders: d.Orders, Users: d.Users, Products: d.Products}

	// ── Public routes ──────────────────────────────────────────────
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": serviceName, "version": serviceVersion})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	r.POST("/auth", authHandler.SignIn)

	// ── Users ──────────────────────────────────────────────────────
	r.POST("/users", middleware.RequireAdmin(), users.CreateUser)
	r.GET("/users", middleware.RequireAdmin(), users.ListUsers)
	self := r.Group("/users/:uid", middleware.RequireAuth())
	{
		self.GET("", users.GetUser)
		self.PUT("", users.UpdateUser)
		self.DELETE("", users.DeleteUser)
	}

	// ── Products ───────────────────────────────────────────────────
	menu := r.Group("/products")
	{
		menu.GET("", middleware.RequireAuth(), products.ListProducts)
		menu.GET("/:productId", middleware.RequireAuth(), products.GetProduct)
		menu.POST("", middleware.RequireAdmin(), products.CreateProduct)
		menu.PUT("/:productId", middleware.RequireAdminOrChef(), products.UpdateProduct)
		menu.DELETE("/:productId", middleware.RequireAdmin(), products.DeleteProduct)
	}

	// ── Orders ─────────────────────────────────────────────────────
	place := []gin.HandlerFunc{middleware.RequireChefOrWaiter()}
	if d.Cache != nil {
		place = append(place, middleware.Idempotency(d.Cache, idempotencyTTL, d.Log))
	}
	r.POST("/orders", append(place, orders.CreateOrder)...)

	tickets := r.Group("/orders", middleware.RequireAuth())
	{
		tickets.GET("", orders.ListOrders)
		tickets.GET("/:orderId", orders.GetOrder)
		tickets.PUT("/:orderId", orders.UpdateOrder)
		tickets.DELETE("/:orderId", orders.DeleteOrder)
		tickets.GET("/:orderId/history", orders.GetOrderHistory)
	}
}
