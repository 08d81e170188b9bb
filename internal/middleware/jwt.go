package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/utils"
)

const claimsKey = "claims"

// TokenVerifier décode un bearer token en claims.
type TokenVerifier interface {
	Authenticate(token string) (*utils.Claims, error)
}

// AuthRequired vérifie le token et place les claims dans le contexte gin.
// failStatus est le code renvoyé quand le token est absent ou invalide
// (certaines routes historiques répondent 400 au lieu de 401).
func AuthRequired(verifier TokenVerifier, failStatus int) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(failStatus, gin.H{"message": "Unauthorized"})
			return
		}

		claims, err := verifier.Authenticate(token)
		if err != nil {
			log.Printf("❌ Token refusé sur %s: %v", c.FullPath(), err)
			c.AbortWithStatusJSON(failStatus, gin.H{"message": "Unauthorized"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// bearerToken lit "Authorization: Bearer <jwt>", puis l'en-tête "token" des anciens clients.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return strings.TrimSpace(c.GetHeader("token"))
}

// Claims renvoie les claims posés par AuthRequired, nil sinon.
func Claims(c *gin.Context) *utils.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
