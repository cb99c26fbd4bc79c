package handler

import (
	"bytes"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"cardscan/common/response"
	"cardscan/internal/logic"
	"cardscan/internal/types"

	"github.com/gofiber/fiber/v2"
)

// 导出文件类型
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// TemplateFileName 导入模板文件名
const TemplateFileName = "contacts_template.csv"

// ContactExport 导出联系人，format 为 csv 或 excel
func ContactExport(c *fiber.Ctx) error {
	format, err := logic.NormalizeFormat(c.Query("format"))
	if err != nil {
		return fail(c, err)
	}

	var buf bytes.Buffer
	if err := logic.NewExchangeLogic(c.UserContext()).Export(&buf, format); err != nil {
		return fail(c, err)
	}

	contentType := ContentTypeCSV
	if format == logic.FormatExcel {
		contentType = ContentTypeXLSX
	}
	return response.Attachment(c, logic.ExportFileName(format, time.Now()), contentType, buf.Bytes())
}

// ContactImport 从 CSV 或 XLSX 导入联系人
func ContactImport(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fail(c, types.NewAppError(types.ErrCodeFileMissing, "Please upload a CSV or Excel file"))
	}

	format := logic.FormatCSV
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".csv":
	case ".xlsx":
		format = logic.FormatExcel
	default:
		return fail(c, types.NewAppErrorWithDetails(types.ErrCodeUnsupportedFile, "Unsupported file type", "allowed: csv, xlsx"))
	}

	skip := true
	if v := c.FormValue("skipDuplicates"); v != "" {
		if skip, err = strconv.ParseBool(v); err != nil {
			return fail(c, badRequest("Invalid skipDuplicates"))
		}
	}

	f, err := fh.Open()
	if err != nil {
		return fail(c, types.NewAppErrorWithCause(types.ErrCodeFileMissing, "Unable to read upload", err))
	}
	defer f.Close()

	result, err := logic.NewExchangeLogic(c.UserContext()).Import(f, format, skip)
	if err != nil {
		if result == nil {
			return fail(c, err)
		}
		return failWithData(c, err, result)
	}
	return response.SuccessWithMessage(c, result.Message, result)
}

// ContactTemplate 下载导入模板
func ContactTemplate(c *fiber.Ctx) error {
	return response.Attachment(c, TemplateFileName, ContentTypeCSV, logic.Template())
}
