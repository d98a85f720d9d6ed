package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/middleware"
	"github.com/mentorhub/forum/utils"
)

// SessionController revokes tokens issued by the platform's auth service.
type SessionController struct{}

// NewSessionController creates a new SessionController instance.
func NewSessionController() *SessionController {
	return &SessionController{}
}

// Logout invalidates the token by blacklisting it until expiration.
func (s *SessionController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	claimsVal, ok := ctx.Get(middleware.ContextClaimsKey)
	claims, _ := claimsVal.(*utils.Claims)
	if !ok || claims == nil || token == "" {
		utils.Error(ctx, http.StatusUnauthorized, 40107, "invalid authorization header")
		return
	}

	expiresAt := time.Now().Add(72 * time.Hour)
	if claims.RegisteredClaims.ExpiresAt != nil {
		expiresAt = claims.RegisteredClaims.ExpiresAt.Time
	}

	utils.BlacklistToken(token, expiresAt)
	utils.Success(ctx, gin.H{"message": "logged out"})
}
