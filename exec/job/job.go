// Package job implements the job/process table (spec.md §4.5): every
// background or pipeline-stage task, with cancellation and reaping.
package job

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/lifo-sh/lifo-sh/internal/invariant"
)

// State is a job's lifecycle state.
type State int

const (
	StateRunning State = iota
	StateExited
	StateSignalled
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateSignalled:
		return "signalled"
	default:
		return "unknown"
	}
}

// Status is a job's terminal or in-flight state; Code is only meaningful
// when State is StateExited.
type Status struct {
	State State
	Code  int
}

// Job is one tracked task (spec.md §4.5: id, pid, cmdline, cancel_token,
// completion_handle, state).
type Job struct {
	ID      int
	PID     int
	Cmdline string

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	status Status
}

// Context returns the job's cancellation token, to be plumbed into
// ctx.CommandContext.Signal.
func (j *Job) Context() context.Context { return j.ctx }

// Done is the completion handle: closed once the job reaches a terminal state.
func (j *Job) Done() <-chan struct{} { return j.done }

// Status returns the job's current status.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Cancel requests cooperative cancellation via the job's context.
func (j *Job) Cancel() { j.cancel() }

// MarkExited records a normal exit with the given code, if not already terminal.
func (j *Job) MarkExited(code int) { j.finish(Status{State: StateExited, Code: code}) }

// MarkSignalled records that the job was cancelled/killed, if not already terminal.
func (j *Job) MarkSignalled() { j.finish(Status{State: StateSignalled}) }

func (j *Job) finish(st Status) {
	j.mu.Lock()
	if j.status.State != StateRunning {
		j.mu.Unlock()
		return
	}
	j.status = st
	j.mu.Unlock()
	close(j.done)
}

// Table is the job/process table. PID 1 is reserved for the shell itself
// and is never assigned to a Job (spec.md §4.5).
type Table struct {
	mu     sync.Mutex
	nextID int
	jobs   map[int]*Job
}

// New creates an empty table. Job IDs start at 1, so the first job gets
// PID 2, leaving PID 1 reserved for the shell.
func New() *Table {
	return &Table{nextID: 1, jobs: make(map[int]*Job)}
}

// Add registers a new running job for cmdline and returns it.
func (t *Table) Add(cmdline string) *Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	ctx, cancel := context.WithCancel(context.Background())
	j := &Job{
		ID:      id,
		PID:     id + 1,
		Cmdline: cmdline,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		status:  Status{State: StateRunning},
	}
	invariant.Invariant(j.PID != 1, "job PID must never collide with the reserved shell PID 1")
	t.jobs[id] = j
	return j
}

// Get looks up a job by id.
func (t *Table) Get(id int) (*Job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

// List returns every tracked job, ascending by id.
func (t *Table) List() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// CollectDone removes and returns every job that has reached a terminal
// state, ascending by id (spec.md §4.5 "collect_done").
func (t *Table) CollectDone() []*Job {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []*Job
	for id, j := range t.jobs {
		if j.Status().State != StateRunning {
			out = append(out, j)
			delete(t.jobs, id)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out
}

// Kill cancels the job owning pid. Refuses pid 1, the reserved shell pid
// (spec.md §4.5).
func (t *Table) Kill(pid int) error {
	if pid == 1 {
		return fmt.Errorf("kill: operation not permitted: pid 1 is the shell")
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, j := range t.jobs {
		if j.PID == pid {
			j.Cancel()
			return nil
		}
	}
	return fmt.Errorf("kill: no such process: %d", pid)
}
