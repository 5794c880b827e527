package syncq

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Command is one outbound delivery, such as a chat announcement.
type Command struct {
	Name string
	Run  func(ctx context.Context) error
}

// Queue delivers commands in order on a single worker. Failed commands are
// retried with a linear backoff and dropped after MaxAttempts.
type Queue struct {
	commands    chan Command
	log         *slog.Logger
	maxAttempts int
	backoff     time.Duration

	wg   sync.WaitGroup
	once sync.Once
}

func New(capacity, maxAttempts int, backoff time.Duration, logger *slog.Logger) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	if capacity < 1 {
		capacity = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		commands:    make(chan Command, capacity),
		log:         logger,
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Push enqueues without blocking. It reports false when the queue is full.
func (q *Queue) Push(cmd Command) bool {
	select {
	case q.commands <- cmd:
		return true
	default:
		q.log.Warn("delivery queue full, dropping command", "command", cmd.Name)
		return false
	}
}

// Start runs the worker until ctx is cancelled. Commands still queued at
// that point are abandoned.
func (q *Queue) Start(ctx context.Context) {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case cmd := <-q.commands:
					q.deliver(ctx, cmd)
				}
			}
		}()
	})
}

// Wait blocks until the worker has exited.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) Len() int {
	return len(q.commands)
}

func (q *Queue) deliver(ctx context.Context, cmd Command) {
	for attempt := 1; ; attempt++ {
		err := cmd.Run(ctx)
		if err == nil {
			return
		}
		if attempt >= q.maxAttempts || ctx.Err() != nil {
			q.log.Error("delivery failed", "command", cmd.Name, "attempts", attempt, "err", err)
			return
		}
		q.log.Warn("delivery retry", "command", cmd.Name, "attempt", attempt, "err", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt) * q.backoff):
		}
	}
}
