package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	commonConfig "cardscan/common/config"
)

// UploadConfig 上传配置
type UploadConfig struct {
	AllowedTypes []string `yaml:"allowed_types" env:"UPLOAD_ALLOWED_TYPES" envSeparator:","`
	MaxFileSize  int64    `yaml:"max_file_size" env:"UPLOAD_MAX_FILE_SIZE"` // 字节
	MaxPixels    int      `yaml:"max_pixels" env:"UPLOAD_MAX_PIXELS"`       // 宽×高
	TempDir      string   `yaml:"temp_dir" env:"UPLOAD_TEMP_DIR"`
}

// OCRConfig OCR 配置
type OCRConfig struct {
	Languages           []string `yaml:"languages" env:"OCR_LANGUAGES" envSeparator:","`
	ConfidenceThreshold float64  `yaml:"confidence_threshold" env:"OCR_CONFIDENCE_THRESHOLD"`
}

// CacheConfig 联系人缓存配置
type CacheConfig struct {
	TTL int `yaml:"ttl" env:"CACHE_TTL"` // 秒，0 表示不缓存
}

// CleanupConfig 临时文件清理配置
type CleanupConfig struct {
	Interval time.Duration `yaml:"interval" env:"CLEANUP_INTERVAL"` // 0 表示关闭
	MaxAge   time.Duration `yaml:"max_age" env:"CLEANUP_MAX_AGE"`
}

// PipelineConfig 名片批处理配置
type PipelineConfig struct {
	Concurrency int     `yaml:"concurrency" env:"PIPELINE_CONCURRENCY"`
	ScaleFactor float64 `yaml:"scale_factor"`
	BlockSize   int     `yaml:"block_size"`
	C           float64 `yaml:"c"`
}

// PaginationConfig 分页配置
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Config 应用配置
type Config struct {
	commonConfig.Config `yaml:",inline"`
	Upload              UploadConfig     `yaml:"upload"`
	OCR                 OCRConfig        `yaml:"ocr"`
	Cache               CacheConfig      `yaml:"cache"`
	Cleanup             CleanupConfig    `yaml:"cleanup"`
	Pipeline            PipelineConfig   `yaml:"pipeline"`
	Pagination          PaginationConfig `yaml:"pagination"`
}

var (
	globalConfig *Config
	mu           sync.RWMutex
)

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		Config: commonConfig.Default(),
		Upload: UploadConfig{
			AllowedTypes: []string{"jpg", "jpeg", "png"},
			MaxFileSize:  10 << 20,
			MaxPixels:    25_000_000,
			TempDir:      "temp",
		},
		OCR: OCRConfig{
			Languages:           []string{"eng"},
			ConfidenceThreshold: 0.5,
		},
		Cache: CacheConfig{TTL: 60},
		Cleanup: CleanupConfig{
			Interval: 30 * time.Minute,
			MaxAge:   time.Hour,
		},
		Pipeline: PipelineConfig{
			Concurrency: 2,
			ScaleFactor: 1.5,
			BlockSize:   11,
			C:           2,
		},
		Pagination: PaginationConfig{
			DefaultPageSize: 10,
			MaxPageSize:     100,
		},
	}
}

// LoadConfig 加载配置文件，环境变量覆盖文件中的值
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := commonConfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	SetConfig(&cfg)
	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("服务端口无效: %d", c.Server.Port)
	}
	if c.OCR.ConfidenceThreshold < 0 || c.OCR.ConfidenceThreshold > 1 {
		return fmt.Errorf("OCR 置信度阈值必须在 [0,1] 之间: %v", c.OCR.ConfidenceThreshold)
	}
	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload.allowed_types 不能为空")
	}
	if c.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload.max_file_size 必须大于 0")
	}
	if c.Upload.MaxPixels <= 0 {
		return fmt.Errorf("upload.max_pixels 必须大于 0")
	}
	if c.Pipeline.BlockSize < 3 || c.Pipeline.BlockSize%2 == 0 {
		return fmt.Errorf("pipeline.block_size 必须为不小于 3 的奇数: %d", c.Pipeline.BlockSize)
	}
	if c.Pagination.MaxPageSize <= 0 {
		c.Pagination.MaxPageSize = 100
	}
	if c.Pagination.DefaultPageSize <= 0 || c.Pagination.DefaultPageSize > c.Pagination.MaxPageSize {
		c.Pagination.DefaultPageSize = min(10, c.Pagination.MaxPageSize)
	}
	if c.Pipeline.Concurrency <= 0 {
		c.Pipeline.Concurrency = 1
	}
	return nil
}

// IsAllowedType 判断扩展名是否允许上传，大小写不敏感，可带前导点
func (u *UploadConfig) IsAllowedType(ext string) bool {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	for _, t := range u.AllowedTypes {
		if strings.TrimPrefix(strings.ToLower(t), ".") == ext {
			return true
		}
	}
	return false
}

// CacheTTL 缓存过期时间
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTL) * time.Second
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	mu.RLock()
	defer mu.RUnlock()
	return globalConfig
}

// SetConfig 设置全局配置
func SetConfig(cfg *Config) {
	mu.Lock()
	globalConfig = cfg
	mu.Unlock()
}
