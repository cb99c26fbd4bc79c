package tesseract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os/exec"
	"strings"
	"testing"

	"cardscan/internal/ocr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

func ensureTesseractAvailable(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed in PATH")
	}
}

func renderCard(t *testing.T, lines ...string) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 320, 40+30*len(lines)))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	for i, l := range lines {
		d := &font.Drawer{
			Dst:  img,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(10, 40+30*i),
		}
		d.DrawString(l)
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEngine_Recognize(t *testing.T) {
	ensureTesseractAvailable(t)

	e := New()
	require.NoError(t, e.Check(context.Background()))

	res, err := e.Recognize(context.Background(), ocr.Input{ID: "card-1", Image: renderCard(t, "HELLO CARD", "JOHN SMITH")})
	require.NoError(t, err)
	assert.Equal(t, "card-1", res.InputID)
	require.NotEmpty(t, res.Lines)
	for _, l := range res.Lines {
		assert.GreaterOrEqual(t, l.Confidence, 0.0)
		assert.LessOrEqual(t, l.Confidence, 1.0)
	}
	assert.Contains(t, strings.ToLower(res.Text), "hello")
}

func TestEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Recognize(ctx, ocr.Input{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_DefaultLanguage(t *testing.T) {
	assert.Equal(t, []string{DefaultLanguage}, New().languages)
	assert.Equal(t, []string{"eng", "deu"}, New("eng", "deu").languages)
	assert.Equal(t, "tesseract", New().Name())
}
