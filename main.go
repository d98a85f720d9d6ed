package main

import (
	"strings"
	"time"

	"github.com/mentorhub/forum/config"
	"github.com/mentorhub/forum/models"
	"github.com/mentorhub/forum/routes"
	"github.com/mentorhub/forum/services"
	"github.com/mentorhub/forum/store"
	"github.com/mentorhub/forum/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	var (
		posts  store.PostStore
		grants store.ModeratorStore
	)
	switch strings.ToLower(cfg.Storage) {
	case "memory":
		utils.Sugar.Warn("using in-memory storage; data is lost on restart")
		posts = store.NewMemoryPostStore()
		grants = store.NewMemoryModeratorStore()
	default:
		db := config.InitDatabase(&models.Post{}, &models.Moderator{})
		posts = store.NewGormPostStore(db)
		grants = store.NewGormModeratorStore(db)
	}

	var opts []services.Option
	if utils.GetRedis() != nil {
		opts = append(opts, services.WithCache(utils.RedisCache{}, time.Duration(cfg.CountCacheSeconds)*time.Second))
	}
	svc := services.New(posts, grants, opts...)

	r := routes.SetupRouter(svc)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
