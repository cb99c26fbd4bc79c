package preprocess

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cardscan/internal/types"

	"gocv.io/x/gocv"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// TempFilePrefix 预处理输出文件前缀
const TempFilePrefix = "preprocessed_"

// DefaultMaxPixels 输入图片默认像素上限（宽×高）
const DefaultMaxPixels = 25_000_000

// Options 预处理参数
type Options struct {
	ScaleFactor float64 // 放大倍数
	BlockSize   int     // 自适应阈值邻域大小，奇数
	C           float64 // 从加权均值中减去的常数
	MaxPixels   int     // 输入宽×高上限
	TempDir     string  // 为空时不落盘
}

// DefaultOptions 默认预处理参数
func DefaultOptions() Options {
	return Options{
		ScaleFactor: 1.5,
		BlockSize:   11,
		C:           2,
		MaxPixels:   DefaultMaxPixels,
	}
}

// Result 预处理结果
type Result struct {
	Image  *image.Gray
	PNG    []byte // 编码后的输出，直接送入 OCR
	Path   string
	Width  int
	Height int
}

// Inspect 只读取图片头，校验格式与尺寸
func Inspect(data []byte, maxPixels int) (image.Config, string, error) {
	if len(data) == 0 {
		return image.Config{}, "", types.NewAppError(types.ErrCodeFileMissing, "Image data is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, "", types.NewAppErrorWithCause(types.ErrCodeUnsupportedFile, "Unable to decode image", err)
	}
	if err := checkPixels(cfg.Width, cfg.Height, maxPixels); err != nil {
		return image.Config{}, "", err
	}
	return cfg, format, nil
}

func checkPixels(w, h, maxPixels int) error {
	if w <= 0 || h <= 0 {
		return types.NewAppErrorWithDetails(types.ErrCodeUnsupportedFile, "Image has no pixels", fmt.Sprintf("%dx%d", w, h))
	}
	if maxPixels > 0 && w*h > maxPixels {
		return types.NewAppErrorWithDetails(types.ErrCodeFileTooLarge, "Image dimensions exceed the limit",
			fmt.Sprintf("%dx%d exceeds %d pixels", w, h, maxPixels))
	}
	return nil
}

// Decode 解码图片，支持 jpeg/png/gif/bmp/tiff/webp
func Decode(data []byte) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", types.NewAppError(types.ErrCodeFileMissing, "Image data is empty")
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", types.NewAppErrorWithCause(types.ErrCodeUnsupportedFile, "Unable to decode image", err)
	}
	return img, format, nil
}

// Preprocess 放大、灰度化并做自适应高斯阈值，提升 OCR 识别率
func Preprocess(ctx context.Context, data []byte, opts Options) (*Result, error) {
	opts = normalize(opts)
	_, format, err := Inspect(data, opts.MaxPixels)
	if err != nil {
		return nil, err
	}

	src, err := decodeMat(data, format)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return process(ctx, src, opts)
}

// PreprocessFile 从文件读取图片并预处理
func PreprocessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.NewAppErrorWithDetails(types.ErrCodeFileMissing, "Image file not found", path)
		}
		return nil, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to read image", err)
	}
	return Preprocess(ctx, data, opts)
}

// PreprocessImage 对已解码的图片做预处理
func PreprocessImage(ctx context.Context, src image.Image, opts Options) (*Result, error) {
	opts = normalize(opts)
	b := src.Bounds()
	if err := checkPixels(b.Dx(), b.Dy(), opts.MaxPixels); err != nil {
		return nil, err
	}

	var (
		m   gocv.Mat
		err error
	)
	if g, ok := src.(*image.Gray); ok {
		m, err = gocv.ImageGrayToMatGray(g)
	} else {
		m, err = gocv.ImageToMatRGB(src)
	}
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to convert image", err)
	}
	defer m.Close()
	return process(ctx, m, opts)
}

// decodeMat 使用 OpenCV 解码，OpenCV 不支持的格式（gif）先用 image 解码再转换
func decodeMat(data []byte, format string) (gocv.Mat, error) {
	if format != "gif" {
		m, err := gocv.IMDecode(data, gocv.IMReadColor)
		if err != nil {
			return gocv.Mat{}, types.NewAppErrorWithCause(types.ErrCodeUnsupportedFile, "Unable to decode image", err)
		}
		if !m.Empty() {
			return m, nil
		}
		m.Close()
	}

	img, _, err := Decode(data)
	if err != nil {
		return gocv.Mat{}, err
	}
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to convert image", err)
	}
	return m, nil
}

func process(ctx context.Context, src gocv.Mat, opts Options) (*Result, error) {
	w := int(math.Round(float64(src.Cols()) * opts.ScaleFactor))
	h := int(math.Round(float64(src.Rows()) * opts.ScaleFactor))
	if w <= 0 || h <= 0 {
		return nil, types.NewAppErrorWithDetails(types.ErrCodePreprocessFailed, "Image is too small",
			fmt.Sprintf("%dx%d", src.Cols(), src.Rows()))
	}

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(src, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationCubic)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gray := gocv.NewMat()
	defer gray.Close()
	if scaled.Channels() == 1 {
		scaled.CopyTo(&gray)
	} else {
		gocv.CvtColor(scaled, &gray, gocv.ColorBGRToGray)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.AdaptiveThreshold(gray, &binary, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		opts.BlockSize, float32(opts.C))

	buf, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to encode preprocessed image", err)
	}
	png := bytes.Clone(buf.GetBytes())
	buf.Close()

	img, err := binary.ToImage()
	if err != nil {
		return nil, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to convert preprocessed image", err)
	}
	out, ok := img.(*image.Gray)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrCodePreprocessFailed, "Unexpected preprocessed image type", fmt.Sprintf("%T", img))
	}

	res := &Result{Image: out, PNG: png, Width: w, Height: h}
	if opts.TempDir != "" {
		path, err := save(png, opts.TempDir)
		if err != nil {
			return nil, types.NewAppErrorWithCause(types.ErrCodePreprocessFailed, "Unable to save preprocessed image", err)
		}
		res.Path = path
	}
	return res, nil
}

func normalize(opts Options) Options {
	def := DefaultOptions()
	if opts.ScaleFactor <= 0 {
		opts.ScaleFactor = def.ScaleFactor
	}
	if opts.BlockSize < 3 {
		opts.BlockSize = def.BlockSize
	}
	if opts.BlockSize%2 == 0 {
		opts.BlockSize++
	}
	if opts.MaxPixels <= 0 {
		opts.MaxPixels = def.MaxPixels
	}
	return opts
}

func save(data []byte, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, fmt.Sprintf("%s%d_*.png", TempFilePrefix, time.Now().UnixNano()))
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// CleanupTempFiles 删除目录中早于 olderThan 的预处理文件，olderThan 为 0 时全部删除
// 目录不存在不视为错误
func CleanupTempFiles(dir string, olderThan time.Duration) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), TempFilePrefix) {
			continue
		}
		if olderThan > 0 {
			info, err := e.Info()
			if err != nil || info.ModTime().After(cutoff) {
				continue
			}
		}
		if err := os.Remove(filepath.Join(dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
