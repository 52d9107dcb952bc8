package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/workoutlog/internal/config"
	"github.com/workoutlog/internal/db"
	"github.com/workoutlog/internal/handler"
	"github.com/workoutlog/internal/router"
	"github.com/workoutlog/internal/stats"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	gdb, err := db.Init(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 初始化聚合存储
	var store stats.Store
	if cfg.StatsBackend == "memory" {
		store = stats.NewMemoryStore()
	} else {
		store, err = stats.NewDynamoStore(context.Background(), stats.DynamoConfig{
			Table:    cfg.StatsTable,
			Region:   cfg.AWSRegion,
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			log.Fatalf("failed to initialize stats store: %v", err)
		}
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(handler.NewAPI(gdb, store), cfg.SessionSecret)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
