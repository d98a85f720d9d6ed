package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mentorhub/forum/config"
	"github.com/mentorhub/forum/controllers"
	"github.com/mentorhub/forum/middleware"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *services.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	controllers.RegisterValidators()

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	forumController := controllers.NewForumController(svc.Forum)
	modController := controllers.NewModeratorController(svc)
	sessionController := controllers.NewSessionController()

	api := r.Group("/api/v1")
	api.POST("/session/logout", middleware.AuthRequired(), sessionController.Logout)

	forum := api.Group("/forum", middleware.RouteOrigin(models.OriginForum))
	forum.GET("/categories", middleware.OptionalAuth(), forumController.ListCategories)
	forum.GET("/posts", middleware.OptionalAuth(), forumController.ListPosts)
	forum.GET("/posts/:id", middleware.OptionalAuth(), forumController.GetPost)

	forumWrite := forum.Group("", middleware.AuthRequired())
	forumWrite.POST("/posts", forumController.CreatePost)
	forumWrite.POST("/posts/:id/replies", forumController.CreateReply)
	forumWrite.POST("/posts/:id/upvote", forumController.ToggleUpvote)
	forumWrite.POST("/posts/:id/report", forumController.ReportPost)
	registerOwnership(forumWrite, forumController)

	// Role surfaces share the ownership routes; the guard checks the stamped
	// origin against the token role.
	student := api.Group("/student", middleware.RouteOrigin(models.OriginStudent), middleware.AuthRequired())
	registerOwnership(student, forumController)
	mentor := api.Group("/mentor", middleware.RouteOrigin(models.OriginMentor), middleware.AuthRequired())
	registerOwnership(mentor, forumController)

	moderation := api.Group("/moderation", middleware.AuthRequired())
	moderation.GET("/me", modController.Me)
	moderation.GET("/posts", modController.ListPosts)
	moderation.DELETE("/posts/:id", modController.DeletePost)
	moderation.DELETE("/posts/:id/replies/:replyId", modController.DeleteReply)

	admin := api.Group("/admin", middleware.RouteOrigin(models.OriginAdmin), middleware.AuthRequired(), middleware.RequireRole(models.RoleAdmin))
	registerOwnership(admin, forumController)
	admin.GET("/moderators", modController.ListModerators)
	admin.PUT("/moderators/:userId", modController.AssignModerator)
	admin.DELETE("/moderators/:userId", modController.RevokeModerator)
	admin.GET("/posts/:id/audit", modController.AuditPost)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}

func registerOwnership(g *gin.RouterGroup, c *controllers.ForumController) {
	g.GET("/posts/:id/permissions", c.Permissions)
	g.PATCH("/posts/:id", c.UpdatePost)
	g.DELETE("/posts/:id", c.DeletePost)
	g.DELETE("/posts/:id/replies/:replyId", c.DeleteReply)
}
