package logic

import (
	"context"
	"errors"
	"os"
	"time"

	"cardscan/common/logger"
	"cardscan/internal/ocr"
	"cardscan/internal/svc"
	"cardscan/internal/types"

	"go.uber.org/zap"
)

// 自检项
const (
	ComponentOCR      = "ocr"
	ComponentDatabase = "database"
	ComponentTempDir  = "temp_dir"
	ComponentCache    = "cache"
)

const cacheProbeKey = "cardscan:probe"

// SystemLogic 系统自检逻辑
type SystemLogic struct {
	ctx context.Context
}

// NewSystemLogic 创建系统自检逻辑
func NewSystemLogic(ctx context.Context) *SystemLogic {
	return &SystemLogic{ctx: ctx}
}

// Test 依次检查 OCR 引擎、数据库、临时目录与缓存
func (l *SystemLogic) Test() *types.SystemTestResult {
	checks := []struct {
		name string
		fn   func() (string, error)
	}{
		{ComponentOCR, l.checkOCR},
		{ComponentDatabase, l.checkDatabase},
		{ComponentTempDir, l.checkTempDir},
		{ComponentCache, l.checkCache},
	}

	result := &types.SystemTestResult{OK: true}
	for _, check := range checks {
		status := &types.ComponentStatus{Name: check.name, OK: true}
		msg, err := check.fn()
		if err != nil {
			status.OK = false
			status.Message = err.Error()
			result.OK = false
			logger.Warn("系统自检失败", zap.String("component", check.name), zap.Error(err))
		} else {
			status.Message = msg
		}
		result.Components = append(result.Components, status)
	}
	return result
}

func (l *SystemLogic) checkOCR() (string, error) {
	engine := svc.Ctx.Engine
	if engine == nil {
		return "", errors.New("OCR engine not configured")
	}
	if checker, ok := engine.(ocr.Checker); ok {
		if err := checker.Check(l.ctx); err != nil {
			return "", err
		}
	}
	return engine.Name() + " ready", nil
}

func (l *SystemLogic) checkDatabase() (string, error) {
	if err := NewContactLogic(l.ctx).Ping(); err != nil {
		return "", err
	}
	return svc.Ctx.DB.Dialector.Name() + " connected", nil
}

func (l *SystemLogic) checkTempDir() (string, error) {
	dir := svc.Ctx.Config.Upload.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, ".probe_*")
	if err != nil {
		return "", err
	}
	f.Close()
	if err := os.Remove(f.Name()); err != nil {
		return "", err
	}
	return dir + " writable", nil
}

func (l *SystemLogic) checkCache() (string, error) {
	c := svc.Ctx.Cache
	if err := c.Set(l.ctx, cacheProbeKey, []byte("ok"), time.Second); err != nil {
		return "", err
	}
	if _, _, err := c.Get(l.ctx, cacheProbeKey); err != nil {
		return "", err
	}
	return c.Name(), nil
}

// Health 健康检查，数据库不可用时返回错误
func (l *SystemLogic) Health() (map[string]any, error) {
	status := map[string]any{
		"status":   "ok",
		"database": "ok",
		"time":     time.Now().Format(time.RFC3339),
	}
	if err := NewContactLogic(l.ctx).Ping(); err != nil {
		status["status"] = "degraded"
		status["database"] = err.Error()
		return status, err
	}
	return status, nil
}
