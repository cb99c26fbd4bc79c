package tesseract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cardscan/internal/ocr"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage 默认识别语言
const DefaultLanguage = "eng"

// Engine 基于 gosseract 的 Tesseract 引擎
type Engine struct {
	languages     []string
	clientFactory func() *gosseract.Client
}

// New 创建 Tesseract 引擎，languages 为空时使用 eng
func New(languages ...string) *Engine {
	if len(languages) == 0 {
		languages = []string{DefaultLanguage}
	}
	return &Engine{languages: languages, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return "tesseract" }

// Check 检查 Tesseract 库是否可用
func (e *Engine) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v := gosseract.Version(); v == "" {
		return errors.New("tesseract version unavailable")
	}
	return nil
}

// Version Tesseract 版本
func (e *Engine) Version() string {
	return gosseract.Version()
}

// Recognize 按文本行识别，置信度缩放到 [0,1]
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	langs := in.Languages
	if len(langs) == 0 {
		langs = e.languages
	}
	if err := c.SetLanguage(langs...); err != nil {
		return ocr.Result{}, fmt.Errorf("set languages: %w", err)
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	lines, err := recognizeLines(c)
	if err != nil {
		return ocr.Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	return ocr.Result{
		InputID: in.ID,
		Text:    ocr.JoinLines(lines),
		Lines:   lines,
	}, nil
}

func recognizeLines(c *gosseract.Client) ([]ocr.Line, error) {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err == nil && len(boxes) > 0 {
		lines := make([]ocr.Line, 0, len(boxes))
		for _, b := range boxes {
			text := strings.TrimSpace(b.Word)
			if text == "" {
				continue
			}
			lines = append(lines, ocr.Line{Text: text, Confidence: b.Confidence / 100.0})
		}
		return lines, nil
	}

	// 没有版面信息时退回纯文本
	text, err := c.Text()
	if err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	var lines []ocr.Line
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, ocr.Line{Text: l, Confidence: 1})
		}
	}
	return lines, nil
}
