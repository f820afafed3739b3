// @title 趣味闯关学习平台 API
// @version 1.0
// @description 面向中小学生的闯关式答题学习平台后端服务。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

package main

import (
	"flag"
	"log"

	"quiz_edu_backend/internal/app"
	"quiz_edu_backend/internal/config"
	"quiz_edu_backend/pkg/configwatcher"
	"quiz_edu_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	// 命令行参数
	migrateOnly := flag.Bool("migrate-only", false, "只执行数据库迁移，完成后退出")
	migrate := flag.Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	seed := flag.Bool("seed", false, "启动时写入示例课程与题库（课程表非空时跳过）")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 设置迁移标志
	cfg.ForceMigrate = *migrate || *migrateOnly
	cfg.MigrateOnly = *migrateOnly
	cfg.SeedCatalog = *seed

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	// 迁移完成后直接退出
	if *migrateOnly {
		log.Println("数据库迁移完成，退出程序")
		return
	}

	// 配置热加载（仅限流等非连接类配置生效）
	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded",
			zap.Int("rate_limit_max_requests", newCfg.RateLimit.MaxRequests),
			zap.Int("progress_cache_ttl_seconds", newCfg.Progress.CacheTTLSeconds),
		)
		application.Config.RateLimit = newCfg.RateLimit
		application.Config.Progress = newCfg.Progress
	})

	application.Run()
}
