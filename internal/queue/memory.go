package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQueueFull is returned by MemoryQueue.Send when the buffer is full.
var ErrQueueFull = errors.New("queue full")

// HandlerFunc processes one raw message body.
type HandlerFunc func(ctx context.Context, body string) error

// MemoryQueue is an in-process queue for local runs. Messages are not
// redelivered when the handler fails.
type MemoryQueue struct {
	ch chan string
}

// NewMemoryQueue returns a queue holding up to size pending messages.
func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{ch: make(chan string, size)}
}

// Send enqueues msg without blocking.
func (q *MemoryQueue) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := EncodeMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	select {
	case q.ch <- string(payload):
		return nil
	default:
		return ErrQueueFull
	}
}

// Consume runs handle for each message with at most concurrency handlers in
// flight. It returns once ctx is done and in-flight handlers have finished.
func (q *MemoryQueue) Consume(ctx context.Context, concurrency int, handle HandlerFunc) {
	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case body := <-q.ch:
			select {
			case <-ctx.Done():
				return
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				_ = handle(ctx, body)
			}()
		}
	}
}

var _ Client = (*MemoryQueue)(nil)
