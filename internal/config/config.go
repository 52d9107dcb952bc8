package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr       string
	Port             string
	DatabasePath     string
	SessionSecret    string
	GinMode          string
	StatsBackend     string
	StatsTable       string
	AWSRegion        string
	DynamoDBEndpoint string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若工作目录存在 .env 文件则先行加载。
func Load() AppConfig {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "workoutlog.db"
	}

	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		sessionSecret = "workoutlog-dev-secret"
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	// 统计聚合存储：默认指向本地 DynamoDB，与开发环境的初始化脚本一致；
	// memory 模式用于无外部依赖的本地运行和测试。
	statsBackend := strings.TrimSpace(strings.ToLower(os.Getenv("STATS_BACKEND")))
	if statsBackend != "memory" {
		statsBackend = "dynamodb"
	}

	statsTable := strings.TrimSpace(os.Getenv("STATS_TABLE"))
	if statsTable == "" {
		statsTable = "WorkoutStats"
	}

	awsRegion := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if awsRegion == "" {
		awsRegion = "us-east-1"
	}

	dynamoEndpoint := strings.TrimSpace(os.Getenv("DYNAMODB_ENDPOINT"))
	if dynamoEndpoint == "" {
		dynamoEndpoint = "http://localhost:8000"
	}

	return AppConfig{
		ListenAddr:       listenAddr,
		Port:             port,
		DatabasePath:     databasePath,
		SessionSecret:    sessionSecret,
		GinMode:          ginMode,
		StatsBackend:     statsBackend,
		StatsTable:       statsTable,
		AWSRegion:        awsRegion,
		DynamoDBEndpoint: dynamoEndpoint,
	}
}
