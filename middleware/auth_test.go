package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/forum/config"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Override(config.AppConfig{JWTSecret: "middleware-secret"})
	utils.SetRedis(nil)
	os.Exit(m.Run())
}

func serve(t *testing.T, r *gin.Engine, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func probe(seen *models.Identity, origin *models.RouteOrigin) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		*seen = CurrentIdentity(ctx)
		*origin = Origin(ctx)
		ctx.Status(http.StatusNoContent)
	}
}

func TestOptionalAuthLetsAnonymousThrough(t *testing.T) {
	var seen models.Identity
	var origin models.RouteOrigin
	r := gin.New()
	r.GET("/probe", OptionalAuth(), probe(&seen, &origin))

	w := serve(t, r, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.False(t, seen.Authenticated())
	assert.Equal(t, models.OriginForum, origin)

	w = serve(t, r, "Basic abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthRequiredSetsIdentity(t *testing.T) {
	var seen models.Identity
	var origin models.RouteOrigin
	r := gin.New()
	r.GET("/probe", RouteOrigin(models.OriginMentor), AuthRequired(), probe(&seen, &origin))

	w := serve(t, r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := utils.GenerateToken(models.Identity{UserID: "m7", Username: "mo", Role: models.RoleMentor}, time.Hour)
	require.NoError(t, err)
	w = serve(t, r, "Bearer "+tok)
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, models.Identity{UserID: "m7", Username: "mo", Role: models.RoleMentor}, seen)
	assert.Equal(t, models.OriginMentor, origin)
}

func TestRequireRole(t *testing.T) {
	var seen models.Identity
	var origin models.RouteOrigin
	r := gin.New()
	r.GET("/probe", AuthRequired(), RequireRole(models.RoleAdmin), probe(&seen, &origin))

	tok, err := utils.GenerateToken(models.Identity{UserID: "s7", Role: models.RoleStudent}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, serve(t, r, "Bearer "+tok).Code)

	tok, err = utils.GenerateToken(models.Identity{UserID: "a7", Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, serve(t, r, "Bearer "+tok).Code)
}
