package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/cache"
)

const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
)

// LoginFailedKey est posé par le handler de login quand l'email ou le mot de passe est refusé.
const LoginFailedKey = "login_failed"

// LoginRateLimit bloque un email après LoginMaxAttempts identifiants refusés.
// Les requêtes incomplètes ou en erreur serveur ne comptent pas.
// Sans limiter (Redis non configuré) la route n'est pas limitée.
func LoginRateLimit(limiter *cache.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || strings.TrimSpace(input.Email) == "" {
			c.Next()
			return
		}
		email := strings.ToLower(strings.TrimSpace(input.Email))

		ctx := c.Request.Context()
		if blockedFor(c, limiter, email, "Too many failed attempts") {
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := limiter.Reset(ctx, email); err != nil {
				log.Printf("⚠️ Reset rate limit %s impossible: %v", email, err)
			}
			return
		}
		if !c.GetBool(LoginFailedKey) {
			return
		}
		remaining, err := limiter.Hit(ctx, email)
		if err != nil {
			log.Printf("⚠️ Rate limit %s indisponible: %v", email, err)
			return
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
	}
}

// RegisterRateLimit limite les inscriptions réussies par IP.
func RegisterRateLimit(limiter *cache.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		ip := c.ClientIP()
		if blockedFor(c, limiter, ip, "Too many registrations") {
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if _, err := limiter.Hit(c.Request.Context(), ip); err != nil {
				log.Printf("⚠️ Rate limit %s indisponible: %v", ip, err)
			}
		}
	}
}

// blockedFor répond 429 si id est en cooldown. Une panne Redis laisse passer la requête.
func blockedFor(c *gin.Context, limiter *cache.Limiter, id, message string) bool {
	wait, err := limiter.Blocked(c.Request.Context(), id)
	if err != nil {
		log.Printf("⚠️ Rate limit %s indisponible: %v", id, err)
		return false
	}
	if wait <= 0 {
		return false
	}

	minutes := int(wait.Minutes())
	if minutes < 1 {
		minutes = 1
	}
	c.Header("Retry-After", fmt.Sprintf("%d", int(wait.Seconds())))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"message":     fmt.Sprintf("%s, please retry in %d minutes", message, minutes),
		"retry_after": int(wait.Seconds()),
	})
	return true
}
