package store

import (
	"context"
	"sync"

	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/akolanti/ogtriage/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.Job
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.Job),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStored jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[jobToStored.Id] = jobToStored
	inMemLogger.Debug("Saved job to store", "jobId", jobToStored.Id, "status", jobToStored.Status)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}

type InMemoryReportStore struct {
	mu      sync.RWMutex
	reports map[string]string
}

func InitInMemoryReportStore() *InMemoryReportStore {
	return &InMemoryReportStore{reports: make(map[string]string)}
}

func (store *InMemoryReportStore) SaveReport(ctx context.Context, jobId string, report string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.reports[jobId] = report
	return nil
}

func (store *InMemoryReportStore) GetReport(ctx context.Context, jobId string) (string, bool) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	r, ok := store.reports[jobId]
	return r, ok
}
