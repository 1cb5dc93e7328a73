package taskstream

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cliky/cliky/models"
)

const testDebounce = 5 * time.Millisecond

func waitForTasks(t *testing.T, ch <-chan []models.Task) []models.Task {
	t.Helper()
	select {
	case tasks := <-ch:
		return tasks
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for callback")
		return nil
	}
}

func waitForErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error callback")
		return nil
	}
}

func TestSession_IncompleteLastLineIsNotConsumed(t *testing.T) {
	updates := make(chan []models.Task, 8)
	s := NewSession(Callbacks{
		OnIncrementalUpdate: func(tasks []models.Task) { updates <- tasks },
	}, WithDebounce(testDebounce))

	// No trailing newline: the only line may still be mid-write.
	first := `{"id":1,"title":"A","description":"d"}`
	s.UpdateBuffer(first)
	time.Sleep(10 * testDebounce)
	if got := s.Tasks(); len(got) != 0 {
		t.Fatalf("no task should be exposed before its newline arrives, got %d", len(got))
	}

	s.UpdateBuffer(first + "\n" + `{"id":2,"title":"B","description":"d"}` + "\n")
	tasks := waitForTasks(t, updates)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after trailing newline, got %d", len(tasks))
	}
	if tasks[0].ID != "1" || tasks[1].ID != "2" {
		t.Errorf("tasks out of arrival order: %q, %q", tasks[0].ID, tasks[1].ID)
	}
}

func TestSession_IncrementalListNeverShrinks(t *testing.T) {
	updates := make(chan []models.Task, 16)
	s := NewSession(Callbacks{
		OnIncrementalUpdate: func(tasks []models.Task) { updates <- tasks },
	}, WithDebounce(testDebounce))

	var buf strings.Builder
	lastLen := 0
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&buf, `{"id":%d,"title":"T%d","description":"d"}`+"\n", i, i)
		// interleave garbage the reducer must tolerate
		buf.WriteString("not json\n")
		s.UpdateBuffer(buf.String())
		tasks := waitForTasks(t, updates)
		if len(tasks) < lastLen {
			t.Fatalf("exposed list shrank from %d to %d", lastLen, len(tasks))
		}
		lastLen = len(tasks)
	}
	if lastLen != 5 {
		t.Fatalf("expected 5 tasks accumulated, got %d", lastLen)
	}
}

func TestSession_DuplicateIDsFirstWins(t *testing.T) {
	updates := make(chan []models.Task, 8)
	s := NewSession(Callbacks{
		OnIncrementalUpdate: func(tasks []models.Task) { updates <- tasks },
	}, WithDebounce(testDebounce))

	s.UpdateBuffer(`{"id":1,"title":"first","description":"d"}` + "\n" +
		`{"id":1,"title":"second","description":"d"}` + "\n")
	tasks := waitForTasks(t, updates)
	if len(tasks) != 1 {
		t.Fatalf("duplicate id must not produce duplicate tasks, got %d", len(tasks))
	}
	if tasks[0].Title != "first" {
		t.Errorf("first occurrence should win, got title %q", tasks[0].Title)
	}
}

func TestSession_FinalizationSupersedesIncremental(t *testing.T) {
	finalized := make(chan []models.Task, 1)
	s := NewSession(Callbacks{
		OnFinalized: func(tasks []models.Task) { finalized <- tasks },
	}, WithDebounce(testDebounce))

	// Let the incremental phase accumulate one task.
	s.UpdateBuffer(`{"id":9,"title":"stale","description":"d"}` + "\n")
	time.Sleep(10 * testDebounce)

	finalText := `{"id":1,"title":"A","description":"d"}` + "\n" +
		`{"id":2,"title":"B","description":"d"}`
	if err := s.Complete(finalText); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}

	tasks := waitForTasks(t, finalized)
	if len(tasks) != 2 || tasks[0].ID != "1" || tasks[1].ID != "2" {
		t.Fatalf("finalized list must equal the reparse of the final text, got %+v", tasks)
	}
	if got := s.Tasks(); len(got) != 2 || got[0].ID != "1" {
		t.Errorf("exposed list must be replaced, not merged: %+v", got)
	}
	if !s.ParsingComplete() {
		t.Error("session should report parsing complete")
	}
}

func TestSession_FinalizeToleratesMalformedLines(t *testing.T) {
	finalized := make(chan []models.Task, 1)
	failures := make(chan error, 1)
	s := NewSession(Callbacks{
		OnFinalized:     func(tasks []models.Task) { finalized <- tasks },
		OnFinalizeError: func(err error) { failures <- err },
	})

	finalText := `{"id":1,"title":"A","description":"d"}` + "\n" +
		`{"broken` + "\n" +
		`{"id":2,"title":"B","description":"d"}`
	if err := s.Complete(finalText); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	tasks := waitForTasks(t, finalized)
	if len(tasks) != 2 {
		t.Fatalf("malformed line must be dropped silently, got %d tasks", len(tasks))
	}
	select {
	case err := <-failures:
		t.Fatalf("unexpected finalize error: %v", err)
	default:
	}
}

func TestSession_EmptyResultIsTerminalFailure(t *testing.T) {
	failures := make(chan error, 1)
	s := NewSession(Callbacks{
		OnFinalizeError: func(err error) { failures <- err },
	})

	err := s.Complete("complete nonsense\nno tasks here\n")
	if !errors.Is(err, ErrNoTasks) {
		t.Fatalf("Complete() = %v, want ErrNoTasks", err)
	}
	if cbErr := waitForErr(t, failures); !errors.Is(cbErr, ErrNoTasks) {
		t.Fatalf("callback error = %v, want ErrNoTasks", cbErr)
	}
}

func TestSession_LateDebounceAfterFinalizeIsNoop(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(event string) {
		mu.Lock()
		order = append(order, event)
		mu.Unlock()
	}
	done := make(chan struct{}, 4)
	s := NewSession(Callbacks{
		OnIncrementalUpdate: func([]models.Task) { record("incremental"); done <- struct{}{} },
		OnFinalized:         func([]models.Task) { record("finalized"); done <- struct{}{} },
	}, WithDebounce(50*time.Millisecond))

	line := `{"id":1,"title":"A","description":"d"}` + "\n"
	s.UpdateBuffer(line)
	// Finalize before the debounce timer fires.
	if err := s.Complete(line); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	<-done
	time.Sleep(120 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 1 || order[0] != "finalized" {
		t.Fatalf("stale debounce scan must not fire after finalization, got %v", order)
	}
}

func TestSession_TransportFailure(t *testing.T) {
	failures := make(chan error, 1)
	s := NewSession(Callbacks{
		OnFinalizeError: func(err error) { failures <- err },
	}, WithDebounce(testDebounce))

	s.UpdateBuffer(`{"id":1,"title":"A","description":"d"}` + "\n")
	cause := errors.New("connection reset")
	s.Fail(cause)

	err := waitForErr(t, failures)
	if !errors.Is(err, ErrStreamFailed) {
		t.Fatalf("error = %v, want ErrStreamFailed", err)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("error should carry the transport cause, got %v", err)
	}
	if !s.ParsingComplete() {
		t.Error("failed session should be terminal")
	}
}

func TestSession_CompleteIsIdempotent(t *testing.T) {
	count := 0
	s := NewSession(Callbacks{
		OnFinalized: func([]models.Task) { count++ },
	})
	line := `{"id":1,"title":"A","description":"d"}`
	if err := s.Complete(line); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if err := s.Complete(line); err != nil {
		t.Fatalf("second Complete() error: %v", err)
	}
	if count != 1 {
		t.Fatalf("OnFinalized fired %d times, want exactly once", count)
	}
}

func TestSession_UpdateBufferAfterFinalizeIgnored(t *testing.T) {
	s := NewSession(Callbacks{}, WithDebounce(testDebounce))
	if err := s.Complete(`{"id":1,"title":"A","description":"d"}`); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	s.UpdateBuffer(`{"id":2,"title":"B","description":"d"}` + "\n")
	time.Sleep(10 * testDebounce)
	if got := s.Tasks(); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("buffer updates after finalize must be ignored, got %+v", got)
	}
}

func TestSession_ResetClearsState(t *testing.T) {
	s := NewSession(Callbacks{}, WithDebounce(testDebounce))
	if err := s.Complete(`{"id":1,"title":"A","description":"d"}`); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	s.Reset()

	if got := s.Tasks(); len(got) != 0 {
		t.Fatalf("Reset() must clear tasks, got %d", len(got))
	}
	if s.ParsingComplete() {
		t.Error("Reset() must return the session to idle")
	}

	// The session is reusable for a fresh run.
	if err := s.Complete(`{"id":5,"title":"N","description":"d"}`); err != nil {
		t.Fatalf("Complete() after Reset() error: %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].ID != "5" {
		t.Fatalf("fresh run after Reset() broken: %+v", got)
	}
}

func TestSession_NonMonotonicIDsTolerated(t *testing.T) {
	finalized := make(chan []models.Task, 1)
	s := NewSession(Callbacks{
		OnFinalized: func(tasks []models.Task) { finalized <- tasks },
	})

	finalText := `{"id":7,"title":"G","description":"d"}` + "\n" +
		`{"id":3,"title":"C","description":"d"}` + "\n" +
		`{"id":42,"title":"Z","description":"d"}`
	if err := s.Complete(finalText); err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	tasks := waitForTasks(t, finalized)
	want := []string{"7", "3", "42"}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("order must follow first successful parse, not id order: got %v", tasks)
		}
	}
}
