package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/user/harvester-service/internal/repository"
)

// fakeQueue is an in-memory WorkQueue over string units, ordered by how long
// ago each was marked, never-marked units first.
type fakeQueue struct {
	mu     sync.Mutex
	units  []string
	marked map[string]int // unit -> mark sequence
	seq    int
}

func newFakeQueue(units ...string) *fakeQueue {
	return &fakeQueue{units: units, marked: map[string]int{}}
}

func (q *fakeQueue) Next(_ context.Context) (string, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.units) == 0 {
		return "", repository.ErrEmptyQueue
	}
	best := q.units[0]
	for _, u := range q.units[1:] {
		if q.marked[u] < q.marked[best] {
			best = u
		}
	}
	return best, nil
}

func (q *fakeQueue) MarkProcessed(_ context.Context, unit string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	q.marked[unit] = q.seq
	return nil
}

func (q *fakeQueue) add(unit string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.units = append(q.units, unit)
}

func TestCycleControllerFairRotation(t *testing.T) {
	queue := newFakeQueue("a", "b", "c")

	var processed []string
	ctx, cancel := context.WithCancel(context.Background())
	process := func(_ context.Context, unit string) error {
		processed = append(processed, unit)
		if len(processed) == 6 {
			cancel()
		}
		return nil
	}

	ctrl := NewCycleController("test", queue, process, 0, time.Millisecond)
	err := ctrl.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(processed) != len(want) {
		t.Fatalf("processed %d units, want %d: %v", len(processed), len(want), processed)
	}
	for i := range want {
		if processed[i] != want[i] {
			t.Fatalf("processed order = %v, want %v", processed, want)
		}
	}
}

func TestCycleControllerPollsEmptyQueue(t *testing.T) {
	queue := newFakeQueue()

	ctx, cancel := context.WithCancel(context.Background())
	process := func(_ context.Context, unit string) error {
		cancel()
		return nil
	}
	ctrl := NewCycleController("test", queue, process, 0, time.Millisecond)

	// Make a unit appear after the controller has started polling.
	go func() {
		time.Sleep(10 * time.Millisecond)
		queue.add("late")
	}()

	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("controller never picked up the late unit")
	}
}

func TestCycleControllerPropagatesProcessError(t *testing.T) {
	queue := newFakeQueue("a")
	storeDown := errors.New("store down")
	process := func(_ context.Context, unit string) error { return storeDown }

	ctrl := NewCycleController("test", queue, process, 0, time.Millisecond)
	err := ctrl.Run(context.Background())
	if !errors.Is(err, storeDown) {
		t.Fatalf("Run returned %v, want wrapped store error", err)
	}
	if len(queue.marked) != 0 {
		t.Fatal("unit must not be marked processed after a store failure")
	}
}

func TestCycleControllerMarksAfterProcess(t *testing.T) {
	queue := newFakeQueue("a", "b")

	ctx, cancel := context.WithCancel(context.Background())
	count := 0
	process := func(_ context.Context, unit string) error {
		count++
		if count == 4 {
			cancel()
		}
		return nil
	}

	ctrl := NewCycleController("test", queue, process, 0, time.Millisecond)
	_ = ctrl.Run(ctx)

	// Both units were marked, twice each round: no unit starves.
	if queue.marked["a"] == 0 || queue.marked["b"] == 0 {
		t.Fatalf("marks = %v, want both units marked", queue.marked)
	}
}
