package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"cardscan/internal/ocr"
	"cardscan/internal/preprocess"
	"cardscan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleLines = []ocr.Line{
	{Text: "John Smith", Confidence: 0.95},
	{Text: "Senior Software Engineer", Confidence: 0.91},
	{Text: "Tech Solutions Inc.", Confidence: 0.88},
	{Text: "smudge", Confidence: 0.2},
	{Text: "123 Main Street, Suite 100", Confidence: 0.86},
	{Text: "New York, NY 10001", Confidence: 0.9},
	{Text: "Phone: (555) 123-4567", Confidence: 0.93},
	{Text: "Email: john.smith@techsolutions.com", Confidence: 0.92},
	{Text: "Website: www.techsolutions.com", Confidence: 0.9},
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 16, 8))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.SetGray(8, 4, color.Gray{Y: 0})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newPipeline(engine ocr.Engine) *Pipeline {
	return &Pipeline{
		Engine:      engine,
		Preprocess:  preprocess.DefaultOptions(),
		Threshold:   ocr.DefaultConfidenceThreshold,
		Languages:   []string{"eng"},
		Concurrency: 2,
	}
}

func TestProcess_SampleCard(t *testing.T) {
	var gotInput ocr.Input
	engine := ocr.EngineFunc(func(_ context.Context, in ocr.Input) (ocr.Result, error) {
		gotInput = in
		return ocr.Result{InputID: in.ID, Lines: sampleLines}, nil
	})

	res := newPipeline(engine).Process(context.Background(), Card{Source: SourceUpload, Filename: "card.png", Data: pngBytes(t)})

	require.Nil(t, res.Error)
	require.NotNil(t, res.Fields)
	assert.True(t, res.OK())
	assert.NotContains(t, res.RawText, "smudge")
	assert.Equal(t, "John Smith", res.Fields.Name)
	assert.Equal(t, "Tech Solutions Inc.", res.Fields.Company)
	assert.Equal(t, "123 Main Street, Suite 100, New York, NY 10001", res.Fields.Address)
	assert.Equal(t, []string{"eng"}, gotInput.Languages)

	// 预处理后的图片以 PNG 送入引擎
	_, format, err := image.Decode(bytes.NewReader(gotInput.Image))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
}

func TestProcess_StageErrors(t *testing.T) {
	empty := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		return ocr.Result{Lines: []ocr.Line{{Text: "faint", Confidence: 0.1}}}, nil
	})
	broken := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		return ocr.Result{}, errors.New("engine down")
	})

	tests := []struct {
		name   string
		engine ocr.Engine
		data   []byte
		want   types.ErrorCode
	}{
		{"missing data", empty, nil, types.ErrCodeFileMissing},
		{"undecodable", empty, []byte("plain text"), types.ErrCodeUnsupportedFile},
		{"no text", empty, pngBytes(t), types.ErrCodeNoTextExtracted},
		{"engine failure", broken, pngBytes(t), types.ErrCodeOCRFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newPipeline(tt.engine).Process(context.Background(), Card{Filename: "x.png", Data: tt.data})
			require.NotNil(t, res.Error)
			assert.Equal(t, tt.want, res.Error.Code)
			assert.Nil(t, res.Fields)
			assert.False(t, res.OK())
		})
	}
}

func TestProcess_RemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	engine := ocr.EngineFunc(func(_ context.Context, in ocr.Input) (ocr.Result, error) {
		return ocr.Result{Lines: sampleLines}, nil
	})
	p := newPipeline(engine)
	p.Preprocess.TempDir = dir

	res := p.Process(context.Background(), Card{Data: pngBytes(t)})
	require.True(t, res.OK())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessAll_PreservesOrder(t *testing.T) {
	var calls atomic.Int32
	engine := ocr.EngineFunc(func(_ context.Context, in ocr.Input) (ocr.Result, error) {
		calls.Add(1)
		name := "Card " + in.ID[strings.LastIndex(in.ID, "-")+1:]
		return ocr.Result{Lines: []ocr.Line{{Text: name, Confidence: 0.9}}}, nil
	})

	cards := []Card{
		{Source: SourceUpload, Filename: "a.png", Data: pngBytes(t)},
		{Source: SourceUpload, Filename: "b.png", Data: []byte("broken")},
		{Source: SourceCamera, Filename: "c.png", Data: pngBytes(t)},
		{Source: SourceUpload, Filename: "d.png", Data: pngBytes(t)},
	}

	results, summary := newPipeline(engine).ProcessAll(context.Background(), cards)
	require.Len(t, results, 4)
	assert.Equal(t, Summary{Total: 4, Succeeded: 3, Failed: 1}, summary)
	assert.Equal(t, int32(3), calls.Load())

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, cards[i].Filename, r.Filename)
	}
	assert.Equal(t, "Card 0", results[0].Fields.Name)
	assert.Equal(t, types.ErrCodeUnsupportedFile, results[1].Error.Code)
	assert.Equal(t, "Card 2", results[2].Fields.Name)
	assert.Equal(t, SourceCamera, results[2].Source)
	assert.Equal(t, "Card 3", results[3].Fields.Name)
}

func TestProcessAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		t.Fatal("engine must not run after cancellation")
		return ocr.Result{}, nil
	})

	results, summary := newPipeline(engine).ProcessAll(ctx, []Card{{Data: pngBytes(t)}, {Data: pngBytes(t)}})
	assert.Equal(t, Summary{Total: 2, Failed: 2}, summary)
	for _, r := range results {
		require.NotNil(t, r.Error)
		assert.ErrorIs(t, r.Error, context.Canceled)
	}
}

func TestProcessAll_RecoversPanic(t *testing.T) {
	engine := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		panic("segfault in engine")
	})
	results, summary := newPipeline(engine).ProcessAll(context.Background(), []Card{{Data: pngBytes(t)}})
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, types.ErrCodeOCRFailed, results[0].Error.Code)
}

func TestProcessAll_Empty(t *testing.T) {
	results, summary := newPipeline(nil).ProcessAll(context.Background(), nil)
	assert.Empty(t, results)
	assert.Zero(t, summary.Total)
}

func TestProcess_OversizedImage(t *testing.T) {
	engine := ocr.EngineFunc(func(context.Context, ocr.Input) (ocr.Result, error) {
		t.Fatal("engine must not run for oversized images")
		return ocr.Result{}, nil
	})
	p := newPipeline(engine)
	p.Preprocess.MaxPixels = 100

	res := p.Process(context.Background(), Card{Filename: "big.png", Data: pngBytes(t)})
	require.NotNil(t, res.Error)
	assert.Equal(t, types.ErrCodeFileTooLarge, res.Error.Code)
}
