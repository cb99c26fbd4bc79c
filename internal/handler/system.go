package handler

import (
	"cardscan/common/response"
	"cardscan/internal/logic"
	"cardscan/internal/types"

	"github.com/gofiber/fiber/v2"
)

// Health 健康检查
func Health(c *fiber.Ctx) error {
	status, err := logic.NewSystemLogic(c.UserContext()).Health()
	if err != nil {
		return response.Fail(c, fiber.StatusServiceUnavailable, string(types.ErrCodeDBUnavailable), types.ErrDBUnavailable.Message, status)
	}
	return response.Success(c, status)
}

// SystemTest 组件自检
func SystemTest(c *fiber.Ctx) error {
	result := logic.NewSystemLogic(c.UserContext()).Test()
	if !result.OK {
		return response.Fail(c, fiber.StatusServiceUnavailable, string(types.ErrCodeUnknown), "Some components are unavailable", result)
	}
	return response.Success(c, result)
}
