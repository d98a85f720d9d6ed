package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/models"
)

// ContextOriginKey stores the surface a request arrived through.
const ContextOriginKey = "route_origin"

// RouteOrigin stamps the surface of a route group. The value is fixed by the
// router, never read from the request, and is cross-checked against the
// verified role by the ownership guard.
func RouteOrigin(origin models.RouteOrigin) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(ContextOriginKey, origin)
		ctx.Next()
	}
}

// Origin returns the stamped surface, defaulting to the neutral forum surface.
func Origin(ctx *gin.Context) models.RouteOrigin {
	if v, ok := ctx.Get(ContextOriginKey); ok {
		if o, ok := v.(models.RouteOrigin); ok {
			return o
		}
	}
	return models.OriginForum
}
