package scheduler

import (
	"sync"
	"time"

	"cardscan/common/logger"
	"cardscan/internal/preprocess"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// CleanupJobName 临时文件清理任务名
const CleanupJobName = "temp-cleanup"

// Scheduler 定时任务调度
type Scheduler struct {
	mu        sync.Mutex
	scheduler gocron.Scheduler
}

// New 创建调度器
func New() *Scheduler {
	return &Scheduler{}
}

// Start 注册临时文件清理任务，interval 为 0 时不启动
func (s *Scheduler) Start(tempDir string, interval, maxAge time.Duration) error {
	if interval <= 0 {
		logger.Info("临时文件清理已关闭")
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler != nil {
		return nil
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(Cleanup, tempDir, maxAge),
		gocron.WithName(CleanupJobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return err
	}

	sched.Start()
	s.scheduler = sched
	logger.Info("临时文件清理已启动",
		zap.String("dir", tempDir),
		zap.Duration("interval", interval),
		zap.Duration("maxAge", maxAge),
	)
	return nil
}

// Stop 停止调度
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduler == nil {
		return nil
	}
	err := s.scheduler.Shutdown()
	s.scheduler = nil
	return err
}

// Running 是否已启动
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler != nil
}

// Cleanup 执行一次清理
func Cleanup(tempDir string, maxAge time.Duration) {
	n, err := preprocess.CleanupTempFiles(tempDir, maxAge)
	if err != nil {
		logger.Warn("清理临时文件失败", zap.String("dir", tempDir), zap.Error(err))
	}
	if n > 0 {
		logger.Info("已清理临时文件", zap.String("dir", tempDir), zap.Int("count", n))
	}
}
