package store

import (
	"context"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/data/redisStore"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

const jobKeyPrefix = "job:"

// RedisJobStore keeps triage and ingest jobs as JSON, expiring after RedisJobStoreTTL.
type RedisJobStore struct {
	redis  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisJobStore(redis *redisStore.Store) *RedisJobStore {
	return &RedisJobStore{
		redis:  redis,
		logger: logger_i.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, j jobModel.Job) error {
	log := s.logger.WithTrace(ctx).With("jobId", j.Id, "type", j.JobType)
	if err := s.redis.PutJSON(ctx, jobKeyPrefix+j.Id, j, config.RedisJobStoreTTL); err != nil {
		log.Error("Persisting job failed", "error", err)
		return err
	}
	log.Debug("Job persisted", "status", j.Status, "step", j.CurrentStep)
	return nil
}

// GetJob reports false for unknown ids and for unreadable records alike.
func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var j jobModel.Job
	found, err := s.redis.FetchJSON(ctx, jobKeyPrefix+jobId, &j)
	if err != nil {
		s.logger.WithTrace(ctx).Error("Loading job failed", "jobId", jobId, "error", err)
		return jobModel.Job{}, false
	}
	return j, found
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobId string) {
	log := s.logger.WithTrace(ctx).With("jobId", jobId)
	if err := s.redis.Remove(ctx, jobKeyPrefix+jobId); err != nil {
		log.Error("Removing job failed", "error", err)
		return
	}
	log.Debug("Job removed")
}
