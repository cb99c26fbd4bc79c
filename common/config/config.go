package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config 全局配置结构
type Config struct {
	App      AppConfig      `yaml:"app"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Env     string `yaml:"env" env:"APP_ENV"` // dev, test, prod
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port         int    `yaml:"port" env:"SERVER_PORT"`
	Host         string `yaml:"host" env:"SERVER_HOST"`
	ReadTimeout  int    `yaml:"read_timeout"`
	WriteTimeout int    `yaml:"write_timeout"`
	BodyLimit    int    `yaml:"body_limit"` // MB
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string   `yaml:"driver" env:"DB_DRIVER"` // mysql, postgres, sqlite
	Host            string   `yaml:"host" env:"DB_HOST"`
	Port            int      `yaml:"port" env:"DB_PORT"`
	Username        string   `yaml:"username" env:"DB_USER"`
	Password        string   `yaml:"password" env:"DB_PASSWORD"`
	Database        string   `yaml:"database" env:"DB_NAME"`
	SQLitePath      string   `yaml:"sqlite_path" env:"DB_SQLITE_PATH"`
	SSLMode         string   `yaml:"ssl_mode" env:"DB_SSL_MODE"`
	Charset         string   `yaml:"charset"`
	Replicas        []string `yaml:"replicas"` // 只读副本 DSN
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	MaxOpenConns    int      `yaml:"max_open_conns"`
	ConnMaxLifetime int      `yaml:"conn_max_lifetime"`
	LogLevel        string   `yaml:"log_level"` // silent, error, warn, info
}

// RedisConfig Redis配置
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST"`
	Port     int    `yaml:"port" env:"REDIS_PORT"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL"`   // debug, info, warn, error
	Format     string `yaml:"format" env:"LOG_FORMAT"` // json, console
	Output     string `yaml:"output"`                  // stdout, file, both
	FilePath   string `yaml:"file_path"`
	MaxSize    int    `yaml:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"` // days
}

// 默认端口
const (
	DefaultMySQLPort    = 3306
	DefaultPostgresPort = 5432
)

// Default 返回默认配置
func Default() Config {
	return Config{
		App: AppConfig{
			Name:    "cardscan",
			Version: "0.1.0",
			Env:     "dev",
		},
		Server: ServerConfig{
			Port:      8080,
			Host:      "0.0.0.0",
			BodyLimit: 50,
		},
		Database: DatabaseConfig{
			Driver:          "mysql",
			Host:            "localhost",
			Username:        "root",
			Database:        "business_cards",
			Charset:         "utf8mb4",
			SSLMode:         "disable",
			MaxIdleConns:    5,
			MaxOpenConns:    20,
			ConnMaxLifetime: 3600,
			LogLevel:        "warn",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: "stdout",
		},
	}
}

// Decode 将 YAML 文件和环境变量依次解析到 target
// 文件不存在时只应用环境变量
func Decode(path string, target any) error {
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, target); err != nil {
				return fmt.Errorf("解析配置文件失败: %w", err)
			}
		case os.IsNotExist(err):
		default:
			return fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}
	return nil
}

// Validate 校验数据库配置
func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Driver)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("数据库端口无效: %d", c.Port)
	}
	return nil
}

// ResolvedPort 返回端口，未配置时按驱动取默认值
func (c *DatabaseConfig) ResolvedPort() int {
	if c.Port > 0 {
		return c.Port
	}
	switch c.Driver {
	case "postgres":
		return DefaultPostgresPort
	default:
		return DefaultMySQLPort
	}
}

// ResolvedSQLitePath 返回 SQLite 文件路径，未配置时使用 <database>.db
func (c *DatabaseConfig) ResolvedSQLitePath() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	if c.Database == "" {
		return "business_cards.db"
	}
	return c.Database + ".db"
}
