package handler

import (
	"errors"

	"cardscan/common/logger"
	"cardscan/common/response"
	"cardscan/internal/types"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail 业务错误转为统一响应
func fail(c *fiber.Ctx, err error) error {
	return failWithData(c, err, nil)
}

func failWithData(c *fiber.Ctx, err error, data any) error {
	appErr := types.AsAppError(err)
	status := appErr.HTTPStatus()
	if status >= fiber.StatusInternalServerError {
		logger.Error("请求处理失败", zap.String("path", c.Path()), zap.Error(err))
	}
	if data == nil && appErr.Details != "" {
		data = fiber.Map{"details": appErr.Details}
	}
	return response.Fail(c, status, string(appErr.Code), appErr.Message, data)
}

// ErrorHandler fiber 全局错误处理
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code := types.ErrCodeUnknown
		switch fe.Code {
		case fiber.StatusRequestEntityTooLarge:
			code = types.ErrCodeFileTooLarge
		case fiber.StatusNotFound:
			code = types.ErrCodeNotFound
		case fiber.StatusBadRequest:
			code = types.ErrCodeInvalidParameter
		}
		return response.Fail(c, fe.Code, string(code), fe.Message, nil)
	}
	return fail(c, err)
}

func badRequest(message string) error {
	return types.NewAppError(types.ErrCodeInvalidParameter, message)
}
