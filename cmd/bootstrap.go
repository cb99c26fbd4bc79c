package cmd

import (
	"context"
	"fmt"

	"cardscan/common/database"
	"cardscan/common/logger"
	commonRedis "cardscan/common/redis"
	"cardscan/internal/config"
	"cardscan/internal/model"
	"cardscan/internal/ocr"
	"cardscan/internal/ocr/tesseract"
	"cardscan/internal/svc"

	"go.uber.org/zap"
)

// newEngine 创建 OCR 引擎，测试时可替换
var newEngine = func(cfg *config.Config) ocr.Engine {
	return tesseract.New(cfg.OCR.Languages...)
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}

	logger.Init(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	return cfg, nil
}

// bootstrap 加载配置并初始化数据库、缓存和服务上下文
func bootstrap(ctx context.Context) (*config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if err := database.Init(&cfg.Database); err != nil {
		return nil, nil, fmt.Errorf("初始化数据库失败: %w", err)
	}
	db := database.GetDB()
	if err := model.AutoMigrate(db); err != nil {
		_ = database.Close()
		return nil, nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	if cfg.Redis.Enabled {
		if err := commonRedis.Init(ctx, &cfg.Redis); err != nil {
			// Redis 不可用时退回进程内缓存
			logger.Warn("连接 Redis 失败，使用进程内缓存", zap.Error(err))
		}
	}

	svc.Init(cfg, db, commonRedis.GetClient(), newEngine(cfg))
	logger.Info("服务上下文已初始化",
		zap.String("driver", cfg.Database.Driver),
		zap.String("cache", svc.Ctx.Cache.Name()),
		zap.String("engine", svc.Ctx.Engine.Name()),
	)

	cleanup := func() {
		if err := commonRedis.Close(); err != nil {
			logger.Warn("关闭 Redis 失败", zap.Error(err))
		}
		if err := database.Close(); err != nil {
			logger.Warn("关闭数据库失败", zap.Error(err))
		}
		logger.Sync()
	}
	return cfg, cleanup, nil
}
