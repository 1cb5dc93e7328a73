// Package taskstream turns an untrusted, partially-available JSON-Lines
// stream of generated tasks into a de-duplicated, complexity-scored task
// list, with a best-effort asynchronous expansion phase for complex tasks.
package taskstream

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cliky/cliky/models"
)

var (
	// ErrNoTasks is reported when a completed stream yields zero valid
	// tasks; an empty success is treated as a generation failure.
	ErrNoTasks = errors.New("no valid tasks parsed")
	// ErrStreamFailed wraps transport-level failures of the upstream
	// text stream.
	ErrStreamFailed = errors.New("task stream failed")
)

// sessionState tracks where a generation session is in its lifecycle.
// Only stateStreaming schedules buffer re-scans; every transition out of
// it invalidates the pending debounce timer.
type sessionState int

const (
	stateIdle sessionState = iota
	stateStreaming
	stateFinalizing
	stateFinalized
	stateFailed
)

// defaultDebounce bounds how often the growing buffer is re-scanned
// against a stream that may deliver many small chunks per second. A
// tuning constant, not a correctness requirement.
const defaultDebounce = 300 * time.Millisecond

// Callbacks is the caller-facing surface of a session. All callbacks are
// optional and receive a private snapshot of the task list. Dispatch is
// serialized: no incremental update is ever delivered after the
// finalized list.
type Callbacks struct {
	// OnIncrementalUpdate fires zero or more times while streaming, each
	// time newly-completed lines produced tasks. The list only grows.
	OnIncrementalUpdate func(tasks []models.Task)
	// OnFinalized fires once when the authoritative list is derived from
	// the complete final text.
	OnFinalized func(tasks []models.Task)
	// OnFinalizeError fires once instead of OnFinalized when the run
	// fails terminally (transport error or empty result).
	OnFinalizeError func(err error)
	// OnExpansionMerged fires at most once, strictly after OnFinalized,
	// when subtasks for complex tasks have been merged in.
	OnExpansionMerged func(tasks []models.Task)
	// OnExpansionWarning fires instead of OnExpansionMerged when the
	// enrichment attempt fails. Never escalates to a run failure.
	OnExpansionWarning func(err error)
}

// Option configures a Session.
type Option func(*Session)

// WithDebounce overrides the incremental re-scan delay.
func WithDebounce(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithExpander attaches the enrichment collaborator used to expand
// complex tasks after finalization. Without one, expansion is skipped.
func WithExpander(e Expander) Option {
	return func(s *Session) { s.expander = e }
}

// Session owns the state of one generation run: the growing text buffer,
// the scan position, the accumulated task list, and the debounce timer.
// Concurrent runs must each use their own Session.
type Session struct {
	// dispatchMu serializes callback delivery so a late-firing debounce
	// scan can never surface a stale incremental list after the
	// finalized one. Lock order: dispatchMu before mu, never inverted.
	dispatchMu sync.Mutex
	mu         sync.Mutex

	state    sessionState
	debounce time.Duration
	cb       Callbacks
	expander Expander

	buffer             string
	processedLineCount int
	tasks              []models.Task
	seen               map[string]struct{}

	timer *time.Timer
	// gen invalidates late-firing timers and in-flight expansions from
	// an abandoned run after Reset.
	gen          int
	expandCancel context.CancelFunc
}

// NewSession creates a fresh, idle generation session.
func NewSession(cb Callbacks, opts ...Option) *Session {
	s := &Session{
		state:    stateIdle,
		debounce: defaultDebounce,
		cb:       cb,
		seen:     make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpdateBuffer supplies the stream buffer's current full content (not a
// delta) while the stream is open. It schedules a debounced scan for
// newly-completed lines; updates arriving after finalization are ignored.
func (s *Session) UpdateBuffer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateIdle {
		s.state = stateStreaming
	}
	if s.state != stateStreaming {
		return
	}
	s.buffer = text
	if s.timer == nil {
		gen := s.gen
		s.timer = time.AfterFunc(s.debounce, func() { s.scan(gen) })
	}
}

// scan parses lines completed since the last scan. The buffer's last
// split segment is never consumed: without a trailing newline it may
// still be mid-write, and parsing truncated JSON that happens to be
// valid is worse than waiting for the next update.
func (s *Session) scan(gen int) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if gen != s.gen || s.state != stateStreaming {
		s.mu.Unlock()
		return
	}
	s.timer = nil

	parts := strings.Split(s.buffer, "\n")
	complete := parts[:len(parts)-1]
	added := false
	for i := s.processedLineCount; i < len(complete); i++ {
		task, ok := ParseLine(complete[i])
		if !ok {
			continue
		}
		if _, dup := s.seen[task.ID]; dup {
			// first occurrence wins during the incremental phase
			continue
		}
		s.seen[task.ID] = struct{}{}
		s.tasks = append(s.tasks, task)
		added = true
	}
	s.processedLineCount = len(complete)

	var snapshot []models.Task
	if added && s.cb.OnIncrementalUpdate != nil {
		snapshot = s.snapshotLocked()
	}
	s.mu.Unlock()

	if snapshot != nil {
		s.cb.OnIncrementalUpdate(snapshot)
	}
}

// Complete finalizes the session with the stream's complete final text.
// The full text is re-parsed from scratch and the result replaces
// whatever the incremental phase accumulated; re-parsing a few dozen
// lines is cheap and eliminates reconciliation bugs between the debounced
// scans and the final buffer. A finalized list with zero tasks is a
// terminal failure.
func (s *Session) Complete(finalText string) error {
	s.mu.Lock()
	if s.state == stateFinalized || s.state == stateFailed {
		s.mu.Unlock()
		return nil
	}
	s.state = stateFinalizing
	s.stopTimerLocked()
	s.mu.Unlock()

	finalTasks := make([]models.Task, 0, 16)
	seen := make(map[string]struct{})
	for _, line := range strings.Split(finalText, "\n") {
		task, ok := ParseLine(line)
		if !ok {
			continue
		}
		if _, dup := seen[task.ID]; dup {
			continue
		}
		seen[task.ID] = struct{}{}
		finalTasks = append(finalTasks, task)
	}

	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if len(finalTasks) == 0 {
		s.state = stateFailed
		s.tasks = nil
		s.seen = seen
		s.mu.Unlock()
		if s.cb.OnFinalizeError != nil {
			s.cb.OnFinalizeError(ErrNoTasks)
		}
		return ErrNoTasks
	}

	s.tasks = finalTasks
	s.seen = seen
	s.state = stateFinalized
	snapshot := s.snapshotLocked()

	var complex []models.Task
	if s.expander != nil {
		for _, t := range finalTasks {
			if IsComplex(t) {
				complex = append(complex, t)
			}
		}
	}
	gen := s.gen
	var ctx context.Context
	if len(complex) > 0 {
		ctx, s.expandCancel = context.WithCancel(context.Background())
	}
	s.mu.Unlock()

	if s.cb.OnFinalized != nil {
		s.cb.OnFinalized(snapshot)
	}
	// Expansion is lower priority than delivering the finalized list, so
	// it starts only after the caller has been notified.
	if len(complex) > 0 {
		go s.expand(ctx, gen, complex)
	}
	return nil
}

// Fail records a transport-level failure of the upstream stream and ends
// the run. No retry happens at this layer.
func (s *Session) Fail(cause error) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	s.mu.Lock()
	if s.state == stateFinalized || s.state == stateFailed {
		s.mu.Unlock()
		return
	}
	s.state = stateFailed
	s.stopTimerLocked()
	s.mu.Unlock()

	if s.cb.OnFinalizeError != nil {
		s.cb.OnFinalizeError(fmt.Errorf("%w: %v", ErrStreamFailed, cause))
	}
}

// UpdateStatus applies a local, caller-driven status change to one task.
// Status edits survive later subtask merges into other tasks.
func (s *Session) UpdateStatus(id string, status models.TaskStatus) bool {
	if !models.ValidStatus(status) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Status = status
			return true
		}
	}
	return false
}

// Tasks returns a snapshot of the current task list in arrival order.
func (s *Session) Tasks() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ParsingComplete reports whether the session reached a terminal state.
func (s *Session) ParsingComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateFinalized || s.state == stateFailed
}

// Reset clears all session state and cancels the pending debounce timer
// and any in-flight expansion, so a new run can never receive stale
// results from an abandoned one.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopTimerLocked()
	if s.expandCancel != nil {
		s.expandCancel()
		s.expandCancel = nil
	}
	s.state = stateIdle
	s.buffer = ""
	s.processedLineCount = 0
	s.tasks = nil
	s.seen = make(map[string]struct{})
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) snapshotLocked() []models.Task {
	out := make([]models.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}
