package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lixenwraith/softkey/core"
	"github.com/lixenwraith/softkey/parameter"
)

// Handler is the single-consumer callback loop the engine runs on. All input
// processing and every deferred retry executes here, which is what lets the
// shadow state go lock-free: there is never a second writer. "Deferring" work
// means posting a delayed callback, never blocking the loop
type Handler struct {
	queue chan func()

	mu      sync.Mutex
	timers  []*time.Timer
	stopped bool
	done    chan struct{}
}

// NewHandler creates and starts the handler loop
func NewHandler() *Handler {
	h := &Handler{
		queue: make(chan func(), parameter.HandlerQueueSize),
		done:  make(chan struct{}),
	}
	core.Go(h.run)
	return h
}

func (h *Handler) run() {
	for fn := range h.queue {
		fn()
	}
	close(h.done)
}

// Post enqueues fn for execution on the handler goroutine. Dropped silently
// after Stop. The send never blocks: a callback running on the loop may post,
// and blocking into its own full queue would deadlock the session, so a full
// queue drops the callback and logs instead
func (h *Handler) Post(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	select {
	case h.queue <- fn:
	default:
		logrus.Warn("handler queue full, callback dropped")
	}
}

// PostDelayed schedules fn to run on the handler goroutine after d.
// Cancellation is implicit: stopping the handler drops pending timers
func (h *Handler) PostDelayed(d time.Duration, fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	t := time.AfterFunc(d, func() {
		h.Post(fn)
	})
	h.timers = append(h.timers, t)
}

// Stop shuts the loop down after draining already-posted callbacks and
// cancels pending delayed posts. Blocks until the loop exits
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		<-h.done
		return
	}
	h.stopped = true
	for _, t := range h.timers {
		t.Stop()
	}
	h.timers = nil
	close(h.queue)
	h.mu.Unlock()
	<-h.done
}
