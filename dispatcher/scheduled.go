package dispatcher

import (
	"context"
	"time"
)

// ScheduledTask is a delayed action with deterministic cancellation, instead of a fire-and-forget timer. Used for cleanup work like delayed message deletion.
type ScheduledTask struct {
	cancel context.CancelFunc
	done   chan struct{}
	fired  bool
}

func newScheduledTask(parent context.Context, delay time.Duration, fn func(ctx context.Context), onFinish func()) *ScheduledTask {
	ctx, cancel := context.WithCancel(parent)
	task := &ScheduledTask{
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(task.done)
		defer onFinish()
		defer cancel()

		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			task.fired = true
			fn(ctx)
		case <-ctx.Done():
		}
	}()
	return task
}

// Cancel stops the task if it has not started running. Safe to call more than once.
func (t *ScheduledTask) Cancel() {
	t.cancel()
}

// Done is closed once the task has either run or been cancelled.
func (t *ScheduledTask) Done() <-chan struct{} {
	return t.done
}

// Fired reports whether fn actually ran. Only meaningful after Done is closed.
func (t *ScheduledTask) Fired() bool {
	return t.fired
}
