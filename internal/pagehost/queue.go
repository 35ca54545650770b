package pagehost

import "sync"

type taskKind int

const (
	taskLoad     taskKind = iota // page (re)loaded: start a new activation
	taskNotify                   // DOM changed
	taskActivate                 // overlay control clicked
)

type task struct {
	kind       taskKind
	activation string
	handler    string
}

// queue feeds the session loop. Consecutive DOM notifications for the same
// activation collapse into one: a pass reads the whole document anyway.
type queue struct {
	mu      sync.Mutex
	tasks   []task
	dropped uint64
	ready   chan struct{}
}

func newQueue() *queue {
	return &queue{ready: make(chan struct{}, 1)}
}

// push appends t and wakes the loop. It reports false when t was merged
// into the pending tail.
func (q *queue) push(t task) bool {
	q.mu.Lock()
	if t.kind == taskNotify && len(q.tasks) > 0 {
		if tail := q.tasks[len(q.tasks)-1]; tail.kind == taskNotify && tail.activation == t.activation {
			q.dropped++
			q.mu.Unlock()
			return false
		}
	}
	q.tasks = append(q.tasks, t)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
	return true
}

// drain returns every pending task in arrival order.
func (q *queue) drain() []task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.tasks
	q.tasks = nil
	return out
}

func (q *queue) coalesced() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
