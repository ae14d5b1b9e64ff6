package job

import (
	"context"
	"testing"

	"github.com/akolanti/ogtriage/internal/data/store"
	"github.com/akolanti/ogtriage/internal/domain/jobModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(buffer int) *Service {
	return InitJobService(ServiceConfig{
		JobChannel:        make(chan jobModel.Job, buffer),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
		ReportStore:       store.InitInMemoryReportStore(),
	})
}

func TestEnqueue_StoresAndQueues(t *testing.T) {
	s := newService(2)
	ctx := context.Background()
	j := NewJob("j1", "t1", jobModel.JobTypeTriage, "doc.pdf", "/tmp/doc.pdf")

	require.NoError(t, s.Enqueue(ctx, j))

	got, ok := s.GetJob(ctx, "j1")
	require.True(t, ok)
	assert.Equal(t, jobModel.JobStatusQueued, got.Status)
	assert.Equal(t, jobModel.TriageInit, got.CurrentStep)
	assert.Equal(t, "j1", (<-s.JobChannel).Id)
	assert.Len(t, s.DispatcherChannel, 1, "triage jobs signal the dispatcher")
}

func TestEnqueue_FullQueue(t *testing.T) {
	s := newService(1)
	ctx := context.Background()
	require.NoError(t, s.Enqueue(ctx, NewJob("a", "", jobModel.JobTypeIngest, "a.pdf", "")))

	err := s.Enqueue(ctx, NewJob("b", "", jobModel.JobTypeIngest, "b.pdf", ""))
	assert.ErrorIs(t, err, ErrQueueFull)
	_, ok := s.GetJob(ctx, "b")
	assert.False(t, ok, "rejected job must not linger in the store")
}

func TestNewJob_IngestStep(t *testing.T) {
	j := NewJob("x", "", jobModel.JobTypeIngest, "reg.pdf", "/p")
	assert.Equal(t, jobModel.IngestInit, j.CurrentStep)
	assert.Equal(t, "reg.pdf", j.JobPayload.DocumentName)
}

func TestGetReport_EmptyId(t *testing.T) {
	_, ok := newService(1).GetReport(context.Background(), "")
	assert.False(t, ok)
}
