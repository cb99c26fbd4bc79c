package logger

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Middleware HTTP 访问日志中间件
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// 交给全局错误处理器生成响应后再记录状态码
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.IP()),
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			fields = append(fields, zap.String("request_id", rid))
		}

		lg := L().WithOptions(zap.WithCaller(false))
		switch {
		case status >= fiber.StatusInternalServerError:
			lg.Error("HTTP", fields...)
		case status >= fiber.StatusBadRequest:
			lg.Warn("HTTP", fields...)
		default:
			lg.Info("HTTP", fields...)
		}
		return nil
	}
}
