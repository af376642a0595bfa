package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/matheusmosca/storefront/internal/identity"
)

const userIDKey = "storefront.user_id"

// Authenticate resolve o bearer token e guarda o ID do usuário no contexto
func Authenticate(resolver identity.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": identity.ErrUnauthorizedIdentity.Error()})
			return
		}

		userID, err := resolver.ResolveUser(c.Request.Context(), token)
		if err != nil {
			if statusFor(err) != http.StatusUnauthorized {
				logger.Error("❌ Identity resolution failed", zap.Error(err))
			}
			abortWithError(c, err, "Failed to resolve identity")
			return
		}

		trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String("user_id", userID))
		c.Set(userIDKey, userID)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
