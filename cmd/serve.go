package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardscan/common/logger"
	"cardscan/common/utils"
	"cardscan/internal/router"
	"cardscan/internal/scheduler"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

// serveCmd 启动 HTTP 服务
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	Example: `  cardscan serve
  cardscan serve --config config/config.yml --port 9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "监听端口 (覆盖配置文件)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, cleanup, err := bootstrap(commandContext(cmd))
	if err != nil {
		return err
	}
	defer cleanup()

	if servePort > 0 {
		cfg.Server.Port = servePort
	}

	sched := scheduler.New()
	if err := sched.Start(cfg.Upload.TempDir, cfg.Cleanup.Interval, cfg.Cleanup.MaxAge); err != nil {
		return fmt.Errorf("启动定时任务失败: %w", err)
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			logger.Warn("停止定时任务失败", zap.Error(err))
		}
	}()

	app := router.NewApp(cfg)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	errCh := make(chan error, 1)
	utils.SafeGo("http-server", func() {
		logger.Info("服务器启动", zap.String("addr", "http://"+addr))
		errCh <- app.Listen(addr)
	})

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("服务器启动失败: %w", err)
		}
		return nil
	case <-quit:
	}

	logger.Info("正在关闭服务器...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("服务器关闭失败", zap.Error(err))
		return err
	}
	logger.Info("服务器已关闭")
	return nil
}
