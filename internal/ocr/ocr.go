package ocr

import (
	"context"
	"strings"
)

// DefaultConfidenceThreshold 默认置信度阈值
const DefaultConfidenceThreshold = 0.5

// Input OCR 输入
type Input struct {
	ID        string
	Image     []byte // 编码后的图片，通常为 PNG
	Languages []string
}

// Line 一行识别结果，Confidence 取值 [0,1]
type Line struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Result 单张图片的识别结果
type Result struct {
	InputID string
	Text    string
	Lines   []Line
}

// Engine OCR 引擎
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Checker 可自检的引擎
type Checker interface {
	Check(ctx context.Context) error
}

// EngineFunc 函数适配为 Engine
type EngineFunc func(ctx context.Context, input Input) (Result, error)

func (f EngineFunc) Name() string { return "func" }

func (f EngineFunc) Recognize(ctx context.Context, input Input) (Result, error) {
	return f(ctx, input)
}

// FilterLines 保留置信度严格大于阈值的非空行，文本会去除两端空白
func FilterLines(lines []Line, threshold float64) []Line {
	return filter(lines, func(c float64) bool { return c > threshold })
}

func filter(lines []Line, keep func(float64) bool) []Line {
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		text := strings.TrimSpace(l.Text)
		if text == "" || !keep(l.Confidence) {
			continue
		}
		out = append(out, Line{Text: text, Confidence: l.Confidence})
	}
	return out
}

// JoinLines 按换行拼接文本
func JoinLines(lines []Line) string {
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// ExtractText 识别并返回过滤后的文本，没有可用文本时返回空字符串
func ExtractText(ctx context.Context, engine Engine, input Input, threshold float64) (string, error) {
	res, err := engine.Recognize(ctx, input)
	if err != nil {
		return "", err
	}
	return JoinLines(FilterLines(ResultLines(res), threshold)), nil
}

// ExtractTextWithConfidence 识别并返回置信度不低于阈值的行
func ExtractTextWithConfidence(ctx context.Context, engine Engine, input Input, threshold float64) ([]Line, error) {
	res, err := engine.Recognize(ctx, input)
	if err != nil {
		return nil, err
	}
	return filter(ResultLines(res), func(c float64) bool { return c >= threshold }), nil
}

// ResultLines 返回识别行，引擎只给出整段文本时按行拆分，置信度记为 1
func ResultLines(res Result) []Line {
	if len(res.Lines) > 0 || strings.TrimSpace(res.Text) == "" {
		return res.Lines
	}
	parts := strings.Split(res.Text, "\n")
	lines := make([]Line, 0, len(parts))
	for _, p := range parts {
		lines = append(lines, Line{Text: p, Confidence: 1})
	}
	return lines
}
