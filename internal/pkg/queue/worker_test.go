package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memQueue struct {
	mu      sync.Mutex
	ready   []*Job
	retried []*Job
}

func (q *memQueue) Enqueue(ctx context.Context, jobType string, payload any) (string, error) {
	raw, _ := json.Marshal(payload)
	q.mu.Lock()
	defer q.mu.Unlock()
	job := &Job{ID: jobType + "-1", Type: jobType, Payload: raw}
	q.ready = append(q.ready, job)
	return job.ID, nil
}

func (q *memQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	q.mu.Lock()
	if len(q.ready) > 0 {
		job := q.ready[0]
		q.ready = q.ready[1:]
		q.mu.Unlock()
		return job, nil
	}
	q.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, nil
	}
}

func (q *memQueue) Retry(ctx context.Context, job *Job, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	job.Attempts++
	q.retried = append(q.retried, job)
	return nil
}

func (q *memQueue) MoveDelayedToReady(ctx context.Context) (int, error) { return 0, nil }

func TestWorker_ProcessesAndStops(t *testing.T) {
	q := &memQueue{}
	_, err := q.Enqueue(context.Background(), "notify", map[string]int{"userId": 7})
	require.NoError(t, err)

	got := make(chan int64, 1)
	w := NewWorker(q, WorkerConfig{Workers: 2, PollTimeout: 10 * time.Millisecond}, zerolog.Nop())
	w.Handle("notify", func(ctx context.Context, job *Job) error {
		var p struct {
			UserID int64 `json:"userId"`
		}
		require.NoError(t, json.Unmarshal(job.Payload, &p))
		got <- p.UserID
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)

	select {
	case id := <-got:
		assert.Equal(t, int64(7), id)
	case <-time.After(2 * time.Second):
		t.Fatal("job was not processed")
	}

	cancel()
	w.Wait()
}

func TestWorker_RetriesUntilMaxAttempts(t *testing.T) {
	q := &memQueue{}
	w := NewWorker(q, WorkerConfig{MaxAttempts: 2}, zerolog.Nop())
	w.Handle("notify", func(ctx context.Context, job *Job) error { return errors.New("smtp down") })

	job := &Job{ID: "a", Type: "notify"}
	w.process(context.Background(), 0, job)
	require.Len(t, q.retried, 1)
	assert.Equal(t, 1, job.Attempts)

	w.process(context.Background(), 0, job)
	assert.Len(t, q.retried, 1)
}

func TestWorker_UnknownTypeDropped(t *testing.T) {
	q := &memQueue{}
	w := NewWorker(q, WorkerConfig{}, zerolog.Nop())
	w.process(context.Background(), 0, &Job{ID: "x", Type: "mystery"})
	assert.Empty(t, q.retried)
}
