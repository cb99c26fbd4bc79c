package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"cardscan/common/logger"
	"cardscan/internal/classify"
	"cardscan/internal/ocr"
	"cardscan/internal/preprocess"
	"cardscan/internal/types"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// 名片来源
const (
	SourceUpload = "upload"
	SourceCamera = "camera"
	SourceFile   = "file"
)

// Pipeline 预处理 → OCR → 字段归类
type Pipeline struct {
	Engine      ocr.Engine
	Preprocess  preprocess.Options
	Threshold   float64
	Languages   []string
	Concurrency int
}

// Card 待识别的名片图片
type Card struct {
	Source   string
	Filename string
	Data     []byte
}

// CardResult 单张名片的识别结果，失败时 Error 非空
type CardResult struct {
	Index    int              `json:"index"`
	Source   string           `json:"source"`
	Filename string           `json:"filename"`
	RawText  string           `json:"rawText"`
	Fields   *classify.Fields `json:"fields,omitempty"`
	Error    *types.AppError  `json:"error,omitempty"`
}

// OK 是否识别成功
func (r CardResult) OK() bool {
	return r.Error == nil && r.Fields != nil
}

// Summary 批处理统计
type Summary struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Process 处理单张名片
func (p *Pipeline) Process(ctx context.Context, card Card) CardResult {
	return p.process(ctx, 0, card)
}

// ProcessAll 并发处理多张名片，结果顺序与输入一致
func (p *Pipeline) ProcessAll(ctx context.Context, cards []Card) ([]CardResult, Summary) {
	results := make([]CardResult, len(cards))
	if len(cards) == 0 {
		return results, Summary{}
	}

	size := p.Concurrency
	if size <= 0 {
		size = 1
	}
	size = min(size, len(cards))

	pool, err := ants.NewPool(size)
	if err != nil {
		logger.Warn("创建识别协程池失败，改为串行处理", zap.Error(err))
		for i, card := range cards {
			results[i] = p.run(ctx, i, card)
		}
		return results, Summarize(results)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, card := range cards {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i] = p.run(ctx, i, card)
		})
		if err != nil {
			wg.Done()
			results[i] = failed(i, card, types.NewAppErrorWithCause(types.ErrCodeOCRFailed, "Unable to schedule card", err))
		}
	}
	wg.Wait()

	return results, Summarize(results)
}

// run 捕获单张名片处理中的 panic，避免影响其他名片
func (p *Pipeline) run(ctx context.Context, idx int, card Card) (res CardResult) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("名片处理 panic", zap.Int("index", idx), zap.Any("panic", r))
			res = failed(idx, card, types.NewAppErrorWithDetails(types.ErrCodeOCRFailed, "Card processing crashed", fmt.Sprint(r)))
		}
	}()
	if err := ctx.Err(); err != nil {
		return failed(idx, card, types.NewAppErrorWithCause(types.ErrCodeOCRFailed, "Processing cancelled", err))
	}
	return p.process(ctx, idx, card)
}

func (p *Pipeline) process(ctx context.Context, idx int, card Card) CardResult {
	start := time.Now()
	log := logger.L().With(zap.Int("index", idx), zap.String("filename", card.Filename))

	if len(card.Data) == 0 {
		return failed(idx, card, types.ErrFileMissing)
	}

	pre, err := preprocess.Preprocess(ctx, card.Data, p.Preprocess)
	if err != nil {
		log.Warn("图片预处理失败", zap.Error(err))
		return failed(idx, card, stageError(types.ErrCodePreprocessFailed, "Image preprocessing failed", err))
	}
	if pre.Path != "" {
		defer func() {
			if err := os.Remove(pre.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Warn("删除临时文件失败", zap.String("path", pre.Path), zap.Error(err))
			}
		}()
	}
	log.Debug("图片预处理完成", zap.Int("width", pre.Width), zap.Int("height", pre.Height))

	input := ocr.Input{
		ID:        fmt.Sprintf("%s-%d", card.Source, idx),
		Image:     pre.PNG,
		Languages: p.Languages,
	}
	text, err := ocr.ExtractText(ctx, p.Engine, input, p.Threshold)
	if err != nil {
		log.Error("文字识别失败", zap.String("engine", p.Engine.Name()), zap.Error(err))
		return failed(idx, card, stageError(types.ErrCodeOCRFailed, "Text recognition failed", err))
	}
	if text == "" {
		log.Warn("未识别到文字")
		return failed(idx, card, types.ErrNoTextExtracted)
	}

	fields := classify.Classify(text)
	log.Info("名片识别完成",
		zap.Int("phones", len(fields.Phone)),
		zap.Int("emails", len(fields.Email)),
		zap.Int("websites", len(fields.Website)),
		zap.Duration("latency", time.Since(start)),
	)

	return CardResult{
		Index:    idx,
		Source:   card.Source,
		Filename: card.Filename,
		RawText:  text,
		Fields:   &fields,
	}
}

// stageError 保留已有的业务错误，其余归为当前阶段错误
func stageError(code types.ErrorCode, message string, err error) *types.AppError {
	var appErr *types.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return types.NewAppErrorWithCause(code, message, err)
}

func failed(idx int, card Card, err *types.AppError) CardResult {
	return CardResult{
		Index:    idx,
		Source:   card.Source,
		Filename: card.Filename,
		Error:    err,
	}
}

// Summarize 统计成功与失败数量
func Summarize(results []CardResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}
