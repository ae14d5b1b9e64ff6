package store

import (
	"context"
	"errors"

	"github.com/akolanti/ogtriage/internal/config"
	"github.com/akolanti/ogtriage/internal/data/redisStore"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
)

type Stores struct {
	Jobs    jobModel.JobStore
	Reports jobModel.ReportStore
	Redis   bool
	closers []*redisStore.Store
}

// Open connects the job and report stores to redis. When redis is offline and
// fallback is set, both live in memory; otherwise the connection error is returned.
func Open(ctx context.Context, addr string, password string, fallback bool) (*Stores, error) {
	jobs, err := redisStore.Connect(ctx, redisStore.Options{Addr: addr, Password: password, DB: config.RedisJobStore})
	if err == nil {
		var reports *redisStore.Store
		reports, err = redisStore.Connect(ctx, redisStore.Options{Addr: addr, Password: password, DB: config.RedisReportStore})
		if err == nil {
			return &Stores{
				Jobs:    NewRedisJobStore(jobs),
				Reports: NewRedisReportStore(reports),
				Redis:   true,
				closers: []*redisStore.Store{jobs, reports},
			}, nil
		}
		_ = jobs.Close()
	}
	if !fallback {
		return nil, err
	}
	inMemLogger.Warn("Redis stores are offline, using in memory stores", "error", err)
	return &Stores{Jobs: InitInMemoryJobStore(), Reports: InitInMemoryReportStore()}, nil
}

func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
