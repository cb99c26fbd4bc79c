package svc

import (
	"cardscan/internal/cache"
	"cardscan/internal/config"
	"cardscan/internal/ocr"
	"cardscan/internal/pipeline"
	"cardscan/internal/preprocess"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ServiceContext 全局服务上下文
type ServiceContext struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Cache    cache.Cache
	Engine   ocr.Engine
	Pipeline *pipeline.Pipeline
}

var Ctx *ServiceContext

// Init 初始化服务上下文，rdb 为 nil 时使用进程内缓存
func Init(cfg *config.Config, db *gorm.DB, rdb *redis.Client, engine ocr.Engine) {
	Ctx = New(cfg, db, rdb, engine)
}

// New 创建服务上下文
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, engine ocr.Engine) *ServiceContext {
	var client redis.UniversalClient
	if rdb != nil {
		client = rdb
	}
	return &ServiceContext{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Cache:    cache.New(client, cfg.CacheTTL()),
		Engine:   engine,
		Pipeline: NewPipeline(cfg, engine),
	}
}

// NewPipeline 按配置创建识别流水线
func NewPipeline(cfg *config.Config, engine ocr.Engine) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Engine: engine,
		Preprocess: preprocess.Options{
			ScaleFactor: cfg.Pipeline.ScaleFactor,
			BlockSize:   cfg.Pipeline.BlockSize,
			C:           cfg.Pipeline.C,
			MaxPixels:   cfg.Upload.MaxPixels,
			TempDir:     cfg.Upload.TempDir,
		},
		Threshold:   cfg.OCR.ConfidenceThreshold,
		Languages:   cfg.OCR.Languages,
		Concurrency: cfg.Pipeline.Concurrency,
	}
}
