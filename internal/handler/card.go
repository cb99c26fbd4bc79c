package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"cardscan/common/response"
	"cardscan/internal/pipeline"
	"cardscan/internal/svc"
	"cardscan/internal/types"

	"github.com/gofiber/fiber/v2"
)

// ExtractResponse 识别响应
type ExtractResponse struct {
	Results []pipeline.CardResult `json:"results"`
	Summary pipeline.Summary      `json:"summary"`
}

type upload struct {
	source string
	header *multipart.FileHeader
}

// CardExtract 上传名片图片并识别，files 为上传文件，camera 为拍照图片
func CardExtract(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fail(c, types.ErrFileMissing)
	}

	var uploads []upload
	for _, fh := range form.File["files"] {
		uploads = append(uploads, upload{source: pipeline.SourceUpload, header: fh})
	}
	for _, fh := range form.File["camera"] {
		uploads = append(uploads, upload{source: pipeline.SourceCamera, header: fh})
	}
	if len(uploads) == 0 {
		return fail(c, types.ErrFileMissing)
	}

	results := make([]pipeline.CardResult, len(uploads))
	cards := make([]pipeline.Card, 0, len(uploads))
	slots := make([]int, 0, len(uploads))
	for i, u := range uploads {
		card, err := readUpload(u)
		if err != nil {
			results[i] = pipeline.CardResult{
				Index:    i,
				Source:   u.source,
				Filename: u.header.Filename,
				Error:    types.AsAppError(err),
			}
			continue
		}
		cards = append(cards, card)
		slots = append(slots, i)
	}

	processed, _ := svc.Ctx.Pipeline.ProcessAll(c.UserContext(), cards)
	for j, r := range processed {
		r.Index = slots[j]
		results[slots[j]] = r
	}

	return response.Success(c, ExtractResponse{
		Results: results,
		Summary: pipeline.Summarize(results),
	})
}

// readUpload 校验类型与大小并读取内容
func readUpload(u upload) (pipeline.Card, error) {
	cfg := svc.Ctx.Config.Upload
	fh := u.header

	if !cfg.IsAllowedType(filepath.Ext(fh.Filename)) && !cfg.IsAllowedType(contentSubtype(fh)) {
		return pipeline.Card{}, types.NewAppErrorWithDetails(types.ErrCodeUnsupportedFile,
			"Unsupported file type", fmt.Sprintf("allowed: %s", strings.Join(cfg.AllowedTypes, ", ")))
	}
	if fh.Size > cfg.MaxFileSize {
		return pipeline.Card{}, types.NewAppErrorWithDetails(types.ErrCodeFileTooLarge,
			"File is too large", fmt.Sprintf("max %d MB", cfg.MaxFileSize>>20))
	}

	f, err := fh.Open()
	if err != nil {
		return pipeline.Card{}, types.NewAppErrorWithCause(types.ErrCodeFileMissing, "Unable to read upload", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Card{}, types.NewAppErrorWithCause(types.ErrCodeFileMissing, "Unable to read upload", err)
	}

	return pipeline.Card{Source: u.source, Filename: fh.Filename, Data: data}, nil
}

// contentSubtype image/jpeg → jpeg
func contentSubtype(fh *multipart.FileHeader) string {
	ct := fh.Header.Get(fiber.HeaderContentType)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	mainType, sub, ok := strings.Cut(strings.TrimSpace(ct), "/")
	if !ok || mainType != "image" {
		return ""
	}
	return sub
}
