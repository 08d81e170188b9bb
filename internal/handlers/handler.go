package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/services"
)

// Pinger rapporte l'état des backends (Scylla, Redis, MinIO).
type Pinger interface {
	Ping(ctx context.Context) map[string]string
}

// Handler regroupe les services utilisés par les routes HTTP.
type Handler struct {
	Auth    *services.AuthService
	Catalog *services.CatalogService
	Carts   *services.CartService
	Health  Pinger
}

func New(auth *services.AuthService, catalog *services.CatalogService, carts *services.CartService, health Pinger) *Handler {
	return &Handler{Auth: auth, Catalog: catalog, Carts: carts, Health: health}
}

// statusTable associe une catégorie d'erreur au code HTTP d'une route.
type statusTable map[error]int

// statusFor choisit le code HTTP de err ; un délai dépassé donne toujours 504.
func statusFor(err error, table statusTable, fallback int) int {
	if errors.Is(err, services.ErrTimeout) {
		return http.StatusGatewayTimeout
	}
	for kind, status := range table {
		if errors.Is(err, kind) {
			return status
		}
	}
	return fallback
}

func fail(c *gin.Context, err error, table statusTable, fallback int) {
	c.JSON(statusFor(err, table, fallback), gin.H{"message": services.Message(err)})
}
