package job

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Purger 删除 before 之前上传的合同记录
type Purger interface {
	Purge(ctx context.Context, before time.Time) (int, error)
}

// RetentionSpec 每天凌晨 2 点执行（秒 分 时 日 月 周）
const RetentionSpec = "0 0 2 * * *"

// StartCronJob 启动保留期清理任务，retentionDays <= 0 时不启动
func StartCronJob(purger Purger, retentionDays int, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New(cron.WithSeconds())
	if retentionDays <= 0 {
		log.Info("retention purge disabled")
		return c, nil
	}

	_, err := c.AddFunc(RetentionSpec, func() {
		PurgeExpired(context.Background(), purger, retentionDays, time.Now(), log)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	log.Info("retention purge scheduled", zap.String("spec", RetentionSpec), zap.Int("retention_days", retentionDays))
	return c, nil
}

// PurgeExpired 执行一次清理，返回删除的记录数
func PurgeExpired(ctx context.Context, purger Purger, retentionDays int, now time.Time, log *zap.Logger) int {
	cutoff := now.AddDate(0, 0, -retentionDays)
	n, err := purger.Purge(ctx, cutoff)
	if err != nil {
		log.Error("[Cron] retention purge failed", zap.Time("cutoff", cutoff), zap.Int("deleted", n), zap.Error(err))
		return n
	}
	log.Info("[Cron] retention purge done", zap.Time("cutoff", cutoff), zap.Int("deleted", n))
	return n
}
