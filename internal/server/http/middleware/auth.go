package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
)

const (
	// PartnerIDContextKey is a gin context key for the acting partner.
	PartnerIDContextKey = "partnerID"
	// PartnerHeader carries the acting partner on service-to-service calls.
	PartnerHeader       = "X-Partner-ID"
	authCookieName      = "deliverydesk_token"
)

// TokenParser resolves a partner bearer token to a partner id.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// PartnerAuth authenticates console requests with a partner token.
func PartnerAuth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		partnerID, err := parser.ParseToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Set(PartnerIDContextKey, partnerID)
		c.Next()
	}
}

// ServiceAuth checks the shared service token presented by console instances.
func ServiceAuth(token auth.ServiceToken) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !token.Verify(bearerToken(c)) {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}

// PartnerScope requires the partner header and, when the route names a partner, that both agree.
func PartnerScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		partnerID := strings.TrimSpace(c.GetHeader(PartnerHeader))
		if partnerID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Code: dto.CodeBadRequest, Error: "missing partner header"})
			return
		}
		if routed := c.Param("partnerID"); routed != "" && routed != partnerID {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Code: dto.CodeForbidden, Error: "partner mismatch"})
			return
		}
		c.Set(PartnerIDContextKey, partnerID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

func extractToken(c *gin.Context) string {
	if token := bearerToken(c); token != "" {
		return token
	}
	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}
