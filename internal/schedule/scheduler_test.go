package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingJob struct {
	runs  atomic.Int32
	block chan struct{}
}

func (j *countingJob) Name() string { return "counting" }

func (j *countingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return nil
}

func TestAddJobRejectsBadSpecAndDuplicates(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{}
	require.Error(t, s.AddJob(job, "every minute"))
	require.NoError(t, s.AddJob(job, "*/5 * * * *"))
	require.Error(t, s.AddJob(job, "*/5 * * * *"))
	require.True(t, s.Next("missing").IsZero())
}

func TestStartSchedulesNextRun(t *testing.T) {
	s := NewCronScheduler()
	require.NoError(t, s.AddJob(&countingJob{}, "* * * * *"))
	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool { return !s.Next("counting").IsZero() }, time.Second, 10*time.Millisecond)
	require.WithinDuration(t, time.Now(), s.Next("counting"), time.Minute+time.Second)
}

func TestWrapSkipsOverlappingRuns(t *testing.T) {
	s := NewCronScheduler()
	job := &countingJob{block: make(chan struct{})}
	run := s.wrap(job, "* * * * *")

	done := make(chan struct{})
	go func() {
		run()
		close(done)
	}()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)

	run()
	require.EqualValues(t, 1, job.runs.Load())

	close(job.block)
	<-done
	job.block = nil
	run()
	require.EqualValues(t, 2, job.runs.Load())
}
