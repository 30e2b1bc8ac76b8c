package board

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flushRecorder struct {
	mu      sync.Mutex
	batches []map[string]Position
}

func (r *flushRecorder) flush(updates map[string]Position) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, updates)
}

func (r *flushRecorder) batchCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.batches)
}

func (r *flushRecorder) batch(i int) map[string]Position {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.batches[i]
}

func TestScheduler_CoalescesLastWrite(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(30*time.Millisecond, rec.flush)

	sched.Schedule("a", Position{X: 1})
	sched.Schedule("a", Position{X: 2})

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, rec.batchCount())
	assert.Equal(t, 2.0, rec.batch(0)["a"].X)
}

func TestScheduler_IndependentIDs(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(30*time.Millisecond, rec.flush)

	sched.Schedule("a", Position{X: 1})
	sched.Schedule("b", Position{X: 5})

	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, rec.batchCount())
	batch := rec.batch(0)
	assert.Len(t, batch, 2)
	assert.Equal(t, 1.0, batch["a"].X)
	assert.Equal(t, 5.0, batch["b"].X)
}

func TestScheduler_Reschedules(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(50*time.Millisecond, rec.flush)

	sched.Schedule("a", Position{X: 1})
	time.Sleep(30 * time.Millisecond)
	// Still inside the window: the timer restarts, no flush yet.
	sched.Schedule("a", Position{X: 2})
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, rec.batchCount())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, rec.batchCount())
	assert.Equal(t, 2.0, rec.batch(0)["a"].X)
}

func TestScheduler_FlushImmediate(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(time.Hour, rec.flush)

	sched.Schedule("a", Position{X: 3})
	assert.Equal(t, 1, sched.Pending())

	sched.Flush()
	assert.Equal(t, 1, rec.batchCount())
	assert.Equal(t, 0, sched.Pending())
}

func TestScheduler_FlushEmptyIsNoop(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(time.Hour, rec.flush)

	sched.Flush()
	assert.Equal(t, 0, rec.batchCount())
}

func TestScheduler_StopDiscards(t *testing.T) {
	rec := &flushRecorder{}
	sched := NewScheduler(20*time.Millisecond, rec.flush)

	sched.Schedule("a", Position{X: 1})
	sched.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 0, rec.batchCount())
	assert.Equal(t, 0, sched.Pending())
}
