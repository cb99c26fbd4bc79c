package utils

import (
	"fmt"
	"runtime/debug"

	"cardscan/common/logger"

	"go.uber.org/zap"
)

// Recover 捕获 panic 并写入日志，需在 defer 中调用
func Recover(name string) {
	if r := recover(); r != nil {
		logger.Error("goroutine panic recovered",
			zap.String("name", name),
			zap.String("panic", fmt.Sprint(r)),
			zap.ByteString("stack", debug.Stack()),
		)
	}
}

// SafeGo 安全地启动一个带名称的 goroutine
func SafeGo(name string, fn func()) {
	go func() {
		defer Recover(name)
		fn()
	}()
}
