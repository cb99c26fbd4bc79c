package logger

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// DefaultSlowThreshold 慢查询阈值
const DefaultSlowThreshold = 200 * time.Millisecond

// GormLogger 将 GORM 日志输出到 zap
type GormLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormlogger.LogLevel
}

// NewGormLogger 创建 GORM 日志适配器
func NewGormLogger() *GormLogger {
	return &GormLogger{
		SlowThreshold: DefaultSlowThreshold,
		LogLevel:      gormlogger.Warn,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.LogLevel = level
	return &cp
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		L().Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		L().Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		L().Sugar().Errorf(msg, data...)
	}
}

// Trace 记录 SQL 执行情况，记录不存在不视为错误
func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.SlowThreshold > 0 && elapsed > l.SlowThreshold
	if !failed && !slow && l.LogLevel < gormlogger.Info {
		return
	}

	sql, rows := fc()
	caller := shortCaller(utils.FileWithLineNum())
	lg := L().WithOptions(zap.WithCaller(false))

	if IsJson() {
		fields := []zap.Field{
			zap.String("caller", caller),
			zap.Duration("latency", elapsed),
			zap.Int64("rows", rows),
			zap.String("sql", sql),
		}
		switch {
		case failed:
			lg.Error("SQL", append(fields, zap.Error(err))...)
		case slow:
			lg.Warn("SQL SLOW", fields...)
		default:
			lg.Debug("SQL", fields...)
		}
		return
	}

	msg := fmt.Sprintf("%s [%.3fms] [rows:%d] %s", caller, float64(elapsed.Microseconds())/1000, rows, sql)
	switch {
	case failed:
		lg.Error(msg, zap.Error(err))
	case slow:
		lg.Warn("SLOW " + msg)
	default:
		lg.Debug(msg)
	}
}

// shortCaller 只保留 目录/文件名:行号
func shortCaller(caller string) string {
	dir := filepath.Base(filepath.Dir(caller))
	return dir + "/" + filepath.Base(caller)
}
