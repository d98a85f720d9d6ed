package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/forum/config"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/store"
	"github.com/mentorhub/forum/utils"
)

type envelope struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Data    map[string]interface{} `json:"data"`
}

type harness struct {
	t      *testing.T
	router *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	config.Override(config.AppConfig{
		JWTSecret: "router-test-secret",
		GinMode:   "test",
		GinPath:   filepath.Join(t.TempDir(), "gin.log"),
		Storage:   "memory",
	})
	utils.SetRedis(nil)
	svc := services.New(store.NewMemoryPostStore(), store.NewMemoryModeratorStore())
	return &harness{t: t, router: SetupRouter(svc)}
}

func (h *harness) token(id models.Identity) string {
	h.t.Helper()
	tok, err := utils.GenerateToken(id, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (h *harness) createPost(token string, body gin.H) string {
	h.t.Helper()
	status, env := h.do(http.MethodPost, "/api/v1/forum/posts", token, body)
	require.Equal(h.t, http.StatusCreated, status, env.Message)
	post := env.Data["post"].(map[string]interface{})
	return post["id"].(string)
}

var (
	student = models.Identity{UserID: "s1", Username: "sara", Role: models.RoleStudent}
	other   = models.Identity{UserID: "s2", Username: "tom", Role: models.RoleStudent}
	mentor  = models.Identity{UserID: "m1", Username: "maya", Role: models.RoleMentor}
	admin   = models.Identity{UserID: "a1", Username: "ada", Role: models.RoleAdmin}
)

func TestHealth(t *testing.T) {
	h := newHarness(t)
	status, env := h.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Data["status"])

	status, env = h.do(http.MethodGet, "/api/v1/nothing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40400, env.Code)
}

func TestAnonymousReadsAndWriteRequiresAuth(t *testing.T) {
	h := newHarness(t)
	h.createPost(h.token(student), gin.H{"title": "hello", "content": "world", "category": "general", "visibility": "public"})
	h.createPost(h.token(mentor), gin.H{"title": "lounge", "content": "mentors only", "category": "mentor-lounge"})

	status, env := h.do(http.MethodGet, "/api/v1/forum/posts", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data["items"], 1)

	status, env = h.do(http.MethodGet, "/api/v1/forum/posts", h.token(mentor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data["items"], 2)

	status, env = h.do(http.MethodGet, "/api/v1/forum/categories", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data["items"], 7)

	status, env = h.do(http.MethodPost, "/api/v1/forum/posts", "", gin.H{"title": "x", "content": "y", "category": "general"})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40101, env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/forum/posts", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40105, env.Code)
}

func TestCreatePostBindingValidation(t *testing.T) {
	h := newHarness(t)
	tok := h.token(student)

	status, env := h.do(http.MethodPost, "/api/v1/forum/posts", tok, gin.H{"title": "x", "content": "y", "category": "gossip"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 40020, env.Code)

	status, _ = h.do(http.MethodPost, "/api/v1/forum/posts", tok, gin.H{"title": "x", "content": "y", "category": "general", "visibility": "secret"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = h.do(http.MethodPost, "/api/v1/forum/posts", tok, gin.H{"title": "x", "content": "y", "category": "announcements"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40304, env.Code)
}

func TestOwnershipRoutes(t *testing.T) {
	h := newHarness(t)
	id := h.createPost(h.token(student), gin.H{"title": "mine", "content": "body", "category": "general"})

	status, env := h.do(http.MethodPatch, "/api/v1/mentor/posts/"+id, h.token(student), gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40302, env.Code)
	assert.Equal(t, "route-origin", env.Data["cause"])

	status, env = h.do(http.MethodPatch, "/api/v1/student/posts/"+id, h.token(other), gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40301, env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/student/posts/"+id+"/permissions", h.token(student), nil)
	require.Equal(t, http.StatusOK, status)
	perms := env.Data["permissions"].(map[string]interface{})
	assert.Equal(t, true, perms["can_edit"])

	status, env = h.do(http.MethodPatch, "/api/v1/student/posts/"+id, h.token(student), gin.H{"title": "edited"})
	require.Equal(t, http.StatusOK, status)
	post := env.Data["post"].(map[string]interface{})
	assert.Equal(t, "edited", post["title"])
	assert.Equal(t, true, post["edited"])
	assert.EqualValues(t, 1, post["edit_count"])

	status, _ = h.do(http.MethodDelete, "/api/v1/forum/posts/"+id, h.token(student), nil)
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodDelete, "/api/v1/student/posts/"+id, h.token(student), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40402, env.Code)
}

func TestModerationFlow(t *testing.T) {
	h := newHarness(t)
	id := h.createPost(h.token(student), gin.H{"title": "hello", "content": "body", "category": "general", "visibility": "students"})

	status, env := h.do(http.MethodGet, "/api/v1/admin/moderators", h.token(mentor), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40310, env.Code)

	status, env = h.do(http.MethodDelete, "/api/v1/moderation/posts/"+id, h.token(mentor), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40304, env.Code)

	status, _ = h.do(http.MethodPut, "/api/v1/admin/moderators/m1", h.token(admin), gin.H{"role": "mentor", "categories": []string{"career"}})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodDelete, "/api/v1/moderation/posts/"+id, h.token(mentor), nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, 40303, env.Code)

	status, _ = h.do(http.MethodPut, "/api/v1/admin/moderators/m1", h.token(admin), gin.H{"role": "mentor", "categories": []string{"general"}})
	require.Equal(t, http.StatusOK, status)

	status, env = h.do(http.MethodGet, "/api/v1/moderation/me", h.token(mentor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env.Data["is_moderator"])

	status, env = h.do(http.MethodGet, "/api/v1/moderation/posts", h.token(mentor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, env.Data["items"], 1)

	status, env = h.do(http.MethodDelete, "/api/v1/moderation/posts/"+id, h.token(mentor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "m1", env.Data["deleted_by"])

	status, env = h.do(http.MethodDelete, "/api/v1/student/posts/"+id, h.token(student), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40402, env.Code)

	status, env = h.do(http.MethodGet, "/api/v1/admin/posts/"+id+"/audit", h.token(admin), nil)
	require.Equal(t, http.StatusOK, status)
	post := env.Data["post"].(map[string]interface{})
	assert.Equal(t, true, post["is_deleted"])
	assert.Equal(t, "m1", post["deleted_by"])

	status, _ = h.do(http.MethodDelete, "/api/v1/admin/moderators/m1", h.token(admin), nil)
	require.Equal(t, http.StatusOK, status)
	status, env = h.do(http.MethodDelete, "/api/v1/admin/moderators/ghost", h.token(admin), nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40403, env.Code)
}

func TestAssignModeratorBinding(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(http.MethodPut, "/api/v1/admin/moderators/u9", h.token(admin), gin.H{"role": "admin", "categories": []string{"general"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = h.do(http.MethodPut, "/api/v1/admin/moderators/u9", h.token(admin), gin.H{"role": "student", "categories": []string{"gossip"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUpvoteReplyAndReport(t *testing.T) {
	h := newHarness(t)
	id := h.createPost(h.token(student), gin.H{"title": "hello", "content": "body", "category": "general"})

	status, env := h.do(http.MethodPost, "/api/v1/forum/posts/"+id+"/upvote", h.token(other), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, env.Data["upvoted"])
	assert.EqualValues(t, 1, env.Data["upvotes"])

	status, _ = h.do(http.MethodPost, "/api/v1/forum/posts/"+id+"/replies", h.token(other), gin.H{"message": "thanks"})
	require.Equal(t, http.StatusCreated, status)

	status, env = h.do(http.MethodPost, "/api/v1/forum/posts/"+id+"/report", h.token(mentor), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Data["report_count"])

	status, env = h.do(http.MethodGet, "/api/v1/forum/posts/"+id, "", nil)
	require.Equal(t, http.StatusOK, status)
	post := env.Data["post"].(map[string]interface{})
	assert.Len(t, post["replies"], 1)
	assert.NotContains(t, post, "reported_by")
}

func TestLogoutRevokesToken(t *testing.T) {
	h := newHarness(t)
	tok := h.token(models.Identity{UserID: "s-logout", Role: models.RoleStudent})

	status, _ := h.do(http.MethodPost, "/api/v1/session/logout", tok, nil)
	require.Equal(t, http.StatusOK, status)

	status, env := h.do(http.MethodGet, "/api/v1/forum/posts", tok, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, 40104, env.Code)
}
