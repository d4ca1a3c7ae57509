package job

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"sync"
)

// taskExecutor is the internal interface for type-erased task execution,
// letting tasks with different payload types share one registry.
type taskExecutor interface {
	Execute(ctx context.Context, payload json.RawMessage) error
}

// taskRegistry stores registered task executors by name.
type taskRegistry struct {
	executors map[string]taskExecutor
	mu        sync.RWMutex
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{
		executors: make(map[string]taskExecutor),
	}
}

func (r *taskRegistry) register(name string, executor taskExecutor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executors[name] = executor
}

func (r *taskRegistry) get(name string) (taskExecutor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	executor, ok := r.executors[name]
	return executor, ok
}

func (r *taskRegistry) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Collect(maps.Keys(r.executors))
}

// taskWrapper adapts a typed task handler for type-erased storage. It
// deserializes the JSON payload and calls the typed Handle method.
type taskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}] struct {
	task T
}

func newTaskWrapper[P any, T interface {
	Name() string
	Handle(context.Context, P) error
}](task T) *taskWrapper[P, T] {
	return &taskWrapper[P, T]{task: task}
}

// Execute deserializes the payload and calls the typed handler. An absent
// payload yields the zero value of P.
func (w *taskWrapper[P, T]) Execute(ctx context.Context, raw json.RawMessage) error {
	var payload P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return errors.Join(ErrInvalidPayload, err)
		}
	}
	return w.task.Handle(ctx, payload)
}

// scheduledTaskExecutor adapts a scheduled task's no-payload handler to the
// executor interface. The payload is always ignored.
type scheduledTaskExecutor struct {
	handler scheduledHandler
}

func (e *scheduledTaskExecutor) Execute(ctx context.Context, _ json.RawMessage) error {
	return e.handler(ctx)
}
