// 手动写入示例课程与题库脚本
//
// 正常部署通过 ./quiz_edu_backend -seed 在启动时写入。
// 此脚本仅用于不启动服务的场景，例如初始化测试环境数据库。
//
// 用法: go run scripts/seed_catalog.go

package main

import (
	"log"
	"os"

	"quiz_edu_backend/internal/config"
	"quiz_edu_backend/pkg/database"
	"quiz_edu_backend/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	cfg.ForceMigrate = true
	db, err := database.InitDB(&cfg.Database, &cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	log.Println("写入示例课程与题库...")
	if err := database.SeedSampleCatalog(db); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	log.Println("完成！")
}
