package middleware

import (
	"net/http"
	"strings"

	"emergency-response-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by AuthMiddleware
const (
	CtxUserID      = "userID"
	CtxRole        = "role"
	CtxHospitalID  = "hospitalID"
	CtxAmbulanceID = "ambulanceID"
)

// AuthMiddleware validates JWT access token from Authorization header
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxRole, claims.Role)
		if claims.HospitalID != nil {
			c.Set(CtxHospitalID, *claims.HospitalID)
		}
		if claims.AmbulanceID != nil {
			c.Set(CtxAmbulanceID, *claims.AmbulanceID)
		}

		c.Next()
	}
}

// RequireRole checks that the authenticated account has one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

// HospitalID returns the hospital bound to the caller's account. The second
// return is false for non-hospital accounts.
func HospitalID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxHospitalID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// AmbulanceID returns the vehicle bound to the caller's driver account.
func AmbulanceID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(CtxAmbulanceID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
