package audit

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

type WorkerPoolI interface {
	AddTask(ctx context.Context, task Task) error
	Failed() int64
	Close()
}

// Task reconciles one account.
type Task struct {
	UserID int
	Run    func() error
}

type WorkerPool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	once   sync.Once
	failed atomic.Int64
}

func NewWorkerPool(size int) *WorkerPool {
	wp := &WorkerPool{tasks: make(chan Task, size)}

	wp.wg.Add(size)
	for i := 0; i < size; i++ {
		go wp.worker()
	}
	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()
	for task := range wp.tasks {
		if err := task.Run(); err != nil {
			wp.failed.Add(1)
			zap.L().Error("audit task failed", zap.Int("userID", task.UserID), zap.Error(err))
		}
	}
}

func (wp *WorkerPool) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case wp.tasks <- task:
		return nil
	}
}

// Failed counts tasks that returned an error since the pool started.
func (wp *WorkerPool) Failed() int64 {
	return wp.failed.Load()
}

// Close stops accepting tasks and waits for the workers to drain the queue.
// AddTask must not be called after Close.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		close(wp.tasks)
	})
	wp.wg.Wait()
}
