package store

import (
	"context"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/data/redisStore"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

const reportKeyPrefix = "report:"

// RedisReportStore holds rendered compliance reports keyed by the job that produced them.
type RedisReportStore struct {
	redis  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisReportStore(redis *redisStore.Store) *RedisReportStore {
	return &RedisReportStore{
		redis:  redis,
		logger: logger_i.NewLogger("ReportStore"),
	}
}

func (s *RedisReportStore) SaveReport(ctx context.Context, jobId string, report string) error {
	if err := s.redis.PutText(ctx, reportKeyPrefix+jobId, report, config.RedisReportStoreTTL); err != nil {
		s.logger.WithTrace(ctx).Error("Saving report failed", "jobId", jobId, "error", err)
		return err
	}
	return nil
}

func (s *RedisReportStore) GetReport(ctx context.Context, jobId string) (string, bool) {
	report, found, err := s.redis.FetchText(ctx, reportKeyPrefix+jobId)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Reading report failed", "jobId", jobId, "error", err)
		return "", false
	}
	return report, found
}
