// Package cmd 提供 cardscan CLI 的命令实现
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	// Version 当前版本号
	Version = "0.1.0"
	// DefaultConfigFile 默认配置文件
	DefaultConfigFile = "config/config.yml"
)

var (
	// 全局配置
	cfgFile string
	debug   bool
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "cardscan",
	Short: "名片识别与联系人管理",
	Long: `cardscan 识别名片图片中的文字，归类为姓名、职位、公司、电话、邮箱、网站和地址，
并保存到 MySQL、PostgreSQL 或 SQLite，支持 CSV/Excel 导入导出。`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", DefaultConfigFile, "配置文件路径")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "启用调试日志")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetRootCmd 返回根命令（用于测试）
func GetRootCmd() *cobra.Command {
	return rootCmd
}
