package boardclient

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultWorkers = 4
	channelBuffer  = 64
)

// Lanes a task card can be dropped on.
const (
	LaneTodo       = "todo"
	LaneInProgress = "in-progress"
	LaneCompleted  = "completed"
)

func validLane(lane string) bool {
	switch lane {
	case LaneTodo, LaneInProgress, LaneCompleted:
		return true
	}
	return false
}

// TaskAPI is the surface the board needs from the HTTP client.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (*Task, error)
}

type moveOp struct {
	opID   string
	taskID string
	lane   string
}

// pendingMove tracks a task's unconfirmed optimistic state: how many of its
// moves are still in flight and the lane of the latest one.
type pendingMove struct {
	count int
	lane  string
}

// Board holds the client-side view of the task list and implements the
// optimistic move contract: a drop mutates the in-memory state immediately,
// the persisting call runs in the background, and a persistence failure
// discards the speculative state in favour of a fresh authoritative fetch.
//
// Moves are sharded to a fixed worker set by task id, so updates to the
// same task are persisted in the order they were applied. Without that
// ordering, a later drag's optimistic state could be clobbered by an
// earlier call resolving late.
type Board struct {
	api TaskAPI
	log zerolog.Logger

	mu      sync.RWMutex
	tasks   map[string]Task
	pending map[string]*pendingMove

	workers []chan moveOp
	wg      sync.WaitGroup
}

// NewBoard creates a Board backed by api with numWorkers persistence
// workers. If numWorkers <= 0, a small default is used.
func NewBoard(api TaskAPI, numWorkers int, log zerolog.Logger) *Board {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	b := &Board{
		api:     api,
		log:     log,
		tasks:   make(map[string]Task),
		pending: make(map[string]*pendingMove),
		workers: make([]chan moveOp, numWorkers),
	}
	for i := range b.workers {
		b.workers[i] = make(chan moveOp, channelBuffer)
	}
	return b
}

// Start launches the persistence workers. They stop when ctx is cancelled.
func (b *Board) Start(ctx context.Context) {
	for i, ch := range b.workers {
		b.wg.Add(1)
		go b.runWorker(ctx, i, ch)
	}
}

// Wait blocks until all workers have exited. Call after cancelling the
// context passed to Start.
func (b *Board) Wait() {
	b.wg.Wait()
}

// Refresh replaces the in-memory state with the server's task list. Tasks
// with moves still in flight keep their optimistic lane: the server list
// predates those PUTs, so taking its status verbatim would roll back a move
// that is about to land.
func (b *Board) Refresh(ctx context.Context) error {
	tasks, err := b.api.ListTasks(ctx)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = make(map[string]Task, len(tasks))
	for _, t := range tasks {
		b.tasks[t.ID] = t
	}
	for id, p := range b.pending {
		if t, ok := b.tasks[id]; ok {
			t.Status = p.lane
			b.tasks[id] = t
		}
	}
	return nil
}

// Move handles a card drop. Dropping on an unknown lane, an unknown task,
// or the task's current lane is a no-op. Otherwise the new status is
// applied optimistically and the persisting update is enqueued; Move never
// waits for the network. It reports whether a move was applied.
func (b *Board) Move(taskID, lane string) bool {
	if !validLane(lane) {
		return false
	}

	b.mu.Lock()
	task, ok := b.tasks[taskID]
	if !ok || task.Status == lane {
		b.mu.Unlock()
		return false
	}
	task.Status = lane
	b.tasks[taskID] = task
	p := b.pending[taskID]
	if p == nil {
		p = &pendingMove{}
		b.pending[taskID] = p
	}
	p.count++
	p.lane = lane
	b.mu.Unlock()

	op := moveOp{opID: uuid.NewString(), taskID: taskID, lane: lane}
	b.workers[b.shardIndex(taskID)] <- op

	b.log.Debug().
		Str("op_id", op.opID).
		Str("task_id", taskID).
		Str("lane", lane).
		Msg("optimistic move applied")
	return true
}

// Snapshot returns the current view, newest-created-first like the server.
func (b *Board) Snapshot() []Task {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Lane returns the tasks currently in the given lane.
func (b *Board) Lane(lane string) []Task {
	var out []Task
	for _, t := range b.Snapshot() {
		if t.Status == lane {
			out = append(out, t)
		}
	}
	return out
}

// shardIndex maps a task id deterministically to a worker index.
func (b *Board) shardIndex(taskID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(taskID))
	return int(h.Sum32()) % len(b.workers)
}

func (b *Board) runWorker(ctx context.Context, id int, ch <-chan moveOp) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case op, ok := <-ch:
			if !ok {
				return
			}
			b.persist(ctx, id, op)
		}
	}
}

// persist pushes one move to the server. Success merges the authoritative
// task back into the view; failure triggers a full reconciliation.
func (b *Board) persist(ctx context.Context, workerID int, op moveOp) {
	updated, err := b.api.UpdateTask(ctx, op.taskID, TaskPatch{Status: &op.lane})
	if err != nil {
		b.settleOp(op.taskID)
		b.log.Warn().Err(err).
			Str("op_id", op.opID).
			Str("task_id", op.taskID).
			Int("worker_id", workerID).
			Msg("move persist failed, refetching")

		if err := b.Refresh(ctx); err != nil {
			b.log.Error().Err(err).
				Str("op_id", op.opID).
				Msg("reconciliation refetch failed")
		}
		return
	}

	b.mu.Lock()
	// Merge only when this was the task's last in-flight move. An earlier
	// move resolving under a later one must not clobber the newer optimistic
	// state; the later op's own round trip will converge it.
	if b.settleOpLocked(op.taskID) {
		if _, ok := b.tasks[op.taskID]; ok {
			b.tasks[op.taskID] = *updated
		}
	}
	b.mu.Unlock()
}

func (b *Board) settleOp(taskID string) {
	b.mu.Lock()
	b.settleOpLocked(taskID)
	b.mu.Unlock()
}

// settleOpLocked retires one in-flight move for the task and reports whether
// it was the last one. Callers must hold b.mu.
func (b *Board) settleOpLocked(taskID string) bool {
	p := b.pending[taskID]
	if p == nil {
		return true
	}
	p.count--
	if p.count > 0 {
		return false
	}
	delete(b.pending, taskID)
	return true
}
