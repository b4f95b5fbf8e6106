package estimate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	expirable "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"

	"github.com/Raymond2967/faircost/internal/report"
	"github.com/Raymond2967/faircost/internal/request"
)

// TaskStatus is the lifecycle state of an asynchronous estimation.
type TaskStatus string

const (
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// TaskSnapshot is a point-in-time view of a task.
type TaskSnapshot struct {
	Status   TaskStatus     `json:"status"`
	Progress Progress       `json:"progress"`
	Report   *report.Report `json:"report,omitempty"`
	Error    string         `json:"error,omitempty"`
}

type task struct {
	mu   sync.Mutex
	snap TaskSnapshot
}

func (t *task) update(fn func(*TaskSnapshot)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.snap)
}

func (t *task) snapshot() TaskSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// ErrTimeout reports that a run exceeded the runner's deadline. The run is
// abandoned and its in-flight oracle calls are cancelled through the context;
// partial results are discarded.
var ErrTimeout = errors.New("estimation timed out")

// Runner executes estimations asynchronously, tracking each one in a bounded
// TTL store so finished and stale tasks age out instead of accumulating.
// The store is an injected dependency of whoever polls it; there is no
// process-wide task map.
type Runner struct {
	coord   *Coordinator
	timeout time.Duration
	tasks   *expirable.LRU[string, *task]
}

// NewRunner builds a runner. timeout bounds each run (zero means 60s), ttl
// bounds how long a finished task stays pollable, capacity bounds the store.
func NewRunner(coord *Coordinator, timeout, ttl time.Duration, capacity int) *Runner {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if capacity <= 0 {
		capacity = 128
	}
	return &Runner{
		coord:   coord,
		timeout: timeout,
		tasks:   expirable.NewLRU[string, *task](capacity, nil, ttl),
	}
}

// Start validates the request synchronously, then launches the estimation in
// the background and returns the task ID for polling. Validation errors are
// returned immediately; they never become a failed task.
func (r *Runner) Start(in request.Input) (string, error) {
	if err := r.coord.Validate(in); err != nil {
		return "", err
	}
	id := uuid.NewString()
	t := &task{snap: TaskSnapshot{Status: TaskRunning}}
	r.tasks.Add(id, t)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		rep, err := r.coord.Run(ctx, in, func(p Progress) {
			t.update(func(s *TaskSnapshot) { s.Progress = p })
		})
		t.update(func(s *TaskSnapshot) {
			if err != nil {
				s.Status = TaskFailed
				if errors.Is(err, context.DeadlineExceeded) {
					s.Error = ErrTimeout.Error()
				} else {
					s.Error = err.Error()
				}
				return
			}
			s.Status = TaskDone
			s.Report = rep
		})
		if err != nil {
			log.Warn().Str("stage", "runner").Str("task", id).Err(err).Msg("estimation task failed")
		}
	}()
	return id, nil
}

// Lookup returns the current snapshot for a task ID. ok is false when the ID
// is unknown or the task has aged out of the store.
func (r *Runner) Lookup(id string) (TaskSnapshot, bool) {
	t, ok := r.tasks.Get(id)
	if !ok {
		return TaskSnapshot{}, false
	}
	return t.snapshot(), true
}
