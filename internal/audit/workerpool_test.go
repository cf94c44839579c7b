package audit

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	tests := []struct {
		name           string
		numTasks       int
		numWorkers     int
		expectedErrors int
	}{
		{
			name:       "Simple tasks",
			numTasks:   5,
			numWorkers: 2,
		},
		{
			name:           "One failing task",
			numTasks:       2,
			numWorkers:     2,
			expectedErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wp := NewWorkerPool(tt.numWorkers)

			var executed atomic.Int32
			for i := 0; i < tt.numTasks; i++ {
				i := i
				err := wp.AddTask(context.Background(), Task{
					UserID: i,
					Run: func() error {
						if i == tt.numTasks-1 && tt.expectedErrors > 0 {
							return assert.AnError
						}
						executed.Add(1)
						return nil
					},
				})
				require.NoError(t, err, "failed to add task to pool")
			}

			// Close drains the queue before returning.
			wp.Close()

			assert.Equal(t, int32(tt.numTasks-tt.expectedErrors), executed.Load())
			assert.Equal(t, int64(tt.expectedErrors), wp.Failed())
		})
	}
}

func TestWorkerPool_CanceledContext(t *testing.T) {
	wp := NewWorkerPool(0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := wp.AddTask(ctx, Task{Run: func() error {
		t.Error("task should not be executed")
		return nil
	}})
	assert.ErrorIs(t, err, context.Canceled)

	wp.Close()
	wp.Close()
	assert.Zero(t, wp.Failed())
}
