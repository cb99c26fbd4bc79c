package handler

import (
	"cardscan/common/response"
	"cardscan/internal/logic"
	"cardscan/internal/types"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid contact id")
	}
	return uint(id), nil
}

// ContactCreate 保存联系人
func ContactCreate(c *fiber.Ctx) error {
	var req types.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, badRequest("Invalid request body"))
	}

	info, err := logic.NewContactLogic(c.UserContext()).Create(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessWithMessage(c, "Contact saved successfully", info)
}

// ContactList 联系人列表
func ContactList(c *fiber.Ctx) error {
	var req types.ListContactsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, badRequest("Invalid request body"))
		}
	}

	list, total, err := logic.NewContactLogic(c.UserContext()).List(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Page(c, list, total, req.Page, req.PageSize)
}

// ContactGet 联系人详情
func ContactGet(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}

	info, err := logic.NewContactLogic(c.UserContext()).GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, info)
}

// ContactUpdate 更新联系人
func ContactUpdate(c *fiber.Ctx) error {
	var req types.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, badRequest("Invalid request body"))
	}
	if req.ID == 0 {
		return fail(c, badRequest("Contact id is required"))
	}

	info, err := logic.NewContactLogic(c.UserContext()).Update(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, info)
}

// ContactDelete 删除联系人
func ContactDelete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}

	if err := logic.NewContactLogic(c.UserContext()).Delete(id); err != nil {
		return fail(c, err)
	}
	return response.Success(c, nil)
}

// ContactDuplicates 检查疑似重复
func ContactDuplicates(c *fiber.Ctx) error {
	var req types.DuplicateCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, badRequest("Invalid request body"))
	}

	result, err := logic.NewContactLogic(c.UserContext()).CheckDuplicates(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, result)
}

// ContactMerge 合并联系人
func ContactMerge(c *fiber.Ctx) error {
	var req types.MergeContactsRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, badRequest("Invalid request body"))
	}

	info, err := logic.NewContactLogic(c.UserContext()).Merge(&req)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessWithMessage(c, "Contacts merged successfully", info)
}
