package logic

import (
	"context"
	"path/filepath"
	"testing"

	"cardscan/common/database"
	"cardscan/internal/config"
	"cardscan/internal/model"
	"cardscan/internal/ocr"
	"cardscan/internal/svc"
	"cardscan/internal/types"

	"github.com/stretchr/testify/require"
)

// setupStore 每个测试使用独立的 SQLite 文件
func setupStore(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "cards.db")
	cfg.Database.LogLevel = "silent"
	cfg.Upload.TempDir = filepath.Join(t.TempDir(), "temp")

	db, err := database.Open(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	engine := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		return ocr.Result{}, nil
	})
	svc.Init(&cfg, db, nil, engine)
	return &cfg
}

func mustCreate(t *testing.T, req *types.CreateContactRequest) *types.ContactInfo {
	t.Helper()
	info, err := NewContactLogic(context.Background()).Create(req)
	require.NoError(t, err)
	return info
}
