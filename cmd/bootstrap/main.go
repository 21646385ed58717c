// Package main 系统初始化入口：建表与向量集合准备
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"scholar-sync-api/internal/config"
	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/wire"
)

func main() {
	_ = godotenv.Load()

	fmt.Println("Starting system bootstrap...")

	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// 2. 初始化数据层
	dataLayer, cleanup, err := wire.InitializeDataLayer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize data layer: %v", err)
	}
	defer cleanup()

	// 3. 同步 PostgreSQL 表结构
	fmt.Println("Migrating database schema...")
	if err := dataLayer.PgClient.DB().AutoMigrate(
		&entity.Profile{},
		&entity.DocumentGroup{},
		&entity.Document{},
		&entity.Chunk{},
		&entity.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}
	fmt.Println("Database schema up to date.")

	// 4. 准备 Milvus 向量集合（Milvus 不可达时跳过）
	if dataLayer.VectorRepo != nil {
		fmt.Println("Ensuring vector collection...")
		if err := dataLayer.VectorRepo.EnsureChunkEmbeddingsCollection(ctx); err != nil {
			log.Fatalf("failed to ensure vector collection: %v", err)
		}
		fmt.Println("Vector collection ready.")
	} else {
		fmt.Println("Milvus not available, skipping vector collection setup.")
	}

	fmt.Println("Bootstrap completed successfully.")
}
