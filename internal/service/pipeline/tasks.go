package pipeline

import (
	"context"
	"sync"
)

// taskRegistry holds at most one in-flight send per session.
type taskRegistry struct {
	mu    sync.Mutex
	tasks map[string]context.CancelFunc
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{tasks: make(map[string]context.CancelFunc)}
}

// begin registers a send for sessionID. The returned release must be called once the
// send is over; it also cancels the task context.
func (r *taskRegistry) begin(parent context.Context, sessionID string) (context.Context, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.tasks[sessionID]; busy {
		return nil, nil, ErrSendInFlight
	}

	ctx, cancel := context.WithCancel(parent)
	r.tasks[sessionID] = cancel
	var once sync.Once
	release := func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.tasks, sessionID)
			r.mu.Unlock()
			cancel()
		})
	}
	return ctx, release, nil
}

// cancel aborts the in-flight send of sessionID, reporting whether there was one.
func (r *taskRegistry) cancel(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	cancel, ok := r.tasks[sessionID]
	if ok {
		cancel()
	}
	return ok
}

func (r *taskRegistry) pending(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tasks[sessionID]
	return ok
}
