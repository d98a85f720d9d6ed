package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"
	// ContextRoleKey stores the verified role.
	ContextRoleKey = "role"
	// ContextTokenKey stores the raw bearer token for logout.
	ContextTokenKey = "token"
	// ContextClaimsKey stores the parsed claims.
	ContextClaimsKey = "claims"
)

// bearerToken extracts the token; ok is false when the header is absent.
func bearerToken(ctx *gin.Context) (token string, present bool, code int, msg string) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false, 40101, "authorization header missing"
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", true, 40102, "invalid authorization header format"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", true, 40103, "empty bearer token"
	}
	return token, true, 0, ""
}

// authenticate verifies the token and stores the identity in the context.
func authenticate(ctx *gin.Context, token string) (int, string) {
	if utils.IsTokenBlacklisted(token) {
		return 40104, "token revoked"
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return 40105, "invalid token"
	}
	id := claims.Identity()
	ctx.Set(ContextUserIDKey, id.UserID)
	ctx.Set(ContextUsernameKey, id.Username)
	ctx.Set(ContextRoleKey, id.Role)
	ctx.Set(ContextTokenKey, token)
	ctx.Set(ContextClaimsKey, claims)
	return 0, ""
}

// AuthRequired ensures the request is authenticated via JWT.
func AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, _, code, msg := bearerToken(ctx)
		if code == 0 {
			code, msg = authenticate(ctx, token)
		}
		if code != 0 {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// OptionalAuth resolves the identity when a bearer token is sent and lets
// anonymous requests through. A bad token is still rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, present, code, msg := bearerToken(ctx)
		if !present {
			ctx.Next()
			return
		}
		if code == 0 {
			code, msg = authenticate(ctx, token)
		}
		if code != 0 {
			utils.Error(ctx, http.StatusUnauthorized, code, msg)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// RequireRole rejects authenticated callers whose verified role is not role.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if CurrentIdentity(ctx).Role != role {
			utils.Error(ctx, http.StatusForbidden, 40310, "insufficient role")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// CurrentIdentity returns the verified caller, or the anonymous identity.
func CurrentIdentity(ctx *gin.Context) models.Identity {
	var id models.Identity
	if v, ok := ctx.Get(ContextUserIDKey); ok {
		id.UserID, _ = v.(string)
	}
	if v, ok := ctx.Get(ContextUsernameKey); ok {
		id.Username, _ = v.(string)
	}
	if v, ok := ctx.Get(ContextRoleKey); ok {
		id.Role, _ = v.(models.Role)
	}
	return id
}
