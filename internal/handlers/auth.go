package handlers

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/surveyforge/survey-service/internal/config"
	"github.com/surveyforge/survey-service/internal/models"
)

const participantContextKey = "participant"

const defaultParticipantKind = "user"

// InitAuth configures the Casdoor SDK once at startup.
func InitAuth(cfg config.CasdoorConfig) {
	casdoorsdk.InitConfig(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Certificate,
		cfg.Organization,
		cfg.Application,
	)
}

// AuthMiddleware verifies the bearer token against Casdoor and stores the
// resolved participant in the request context. The participant kind comes
// from the Casdoor user type so non-user actors (bots, service accounts) can
// also hold attempts.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing bearer token",
			})
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
			})
			return
		}

		kind := claims.Type
		if kind == "" {
			kind = defaultParticipantKind
		}

		c.Set(participantContextKey, models.Participant{
			Kind: kind,
			ID:   claims.Id,
		})
		c.Next()
	}
}
