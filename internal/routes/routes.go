package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"kle_back_end/internal/cache"
	"kle_back_end/internal/handlers"
	"kle_back_end/internal/middleware"
)

// Options règle les middlewares transverses. Les limiters sont nil sans Redis.
type Options struct {
	CORSOrigins     []string
	RequestTimeout  time.Duration
	LoginLimiter    *cache.Limiter
	RegisterLimiter *cache.Limiter
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders: []string{"X-RateLimit-Remaining", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	r.Use(middleware.Timeout(opts.RequestTimeout))

	auth := func(failStatus int) gin.HandlerFunc {
		return middleware.AuthRequired(h.Auth, failStatus)
	}

	r.GET("/health", h.Healthz)

	// Auth
	r.POST("/register", middleware.RegisterRateLimit(opts.RegisterLimiter), h.Register)
	r.POST("/login", middleware.LoginRateLimit(opts.LoginLimiter), h.Login)
	r.GET("/me", auth(http.StatusUnauthorized), h.Me)

	// Catalogue
	r.GET("/products", h.ListProducts)
	r.POST("/add-product", auth(http.StatusUnauthorized), h.CreateProduct)
	r.GET("/product/:id", auth(http.StatusUnauthorized), h.GetProduct)
	r.PATCH("/product/edit/:id", auth(http.StatusBadRequest), h.UpdateProduct)
	r.DELETE("/product/delete/:id", auth(http.StatusUnauthorized), h.DeleteProduct)

	// Panier
	r.GET("/cart", auth(http.StatusUnauthorized), h.GetCart)
	r.POST("/cart/add", auth(http.StatusUnauthorized), h.AddToCart)
	r.DELETE("/cart/product/delete", auth(http.StatusUnauthorized), h.RemoveFromCart)
}
