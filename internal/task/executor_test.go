package task

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteAsync(t *testing.T) {
	e := NewExecutor(2, 8)
	defer e.Stop()

	var done sync.WaitGroup
	var count atomic.Int32

	for i := 0; i < 5; i++ {
		done.Add(1)
		queued := e.Execute("increment", func() {
			count.Add(1)
			done.Done()
		}, true)
		assert.True(t, queued)
	}

	done.Wait()
	assert.Equal(t, int32(5), count.Load())
}

func TestExecuteSync(t *testing.T) {
	e := NewExecutor(2, 8)
	defer e.Stop()

	ran := false
	queued := e.Execute("sync-job", func() { ran = true }, false)

	assert.False(t, queued)
	assert.True(t, ran, "synchronous job must complete before Execute returns")
}

func TestFullQueueFallsBackToSync(t *testing.T) {
	e := NewExecutor(1, 1)
	defer e.Stop()

	block := make(chan struct{})
	// Occupy the single worker and fill the single queue slot
	e.Execute("blocker", func() { <-block }, true)
	for !e.Execute("filler", func() {}, true) {
		// the worker may have grabbed the first job already; keep
		// pushing until the slot is actually occupied
	}

	ran := false
	queued := e.Execute("overflow", func() { ran = true }, true)

	assert.False(t, queued, "full queue should fall back to synchronous execution")
	assert.True(t, ran)

	close(block)
}

func TestStoppedExecutorRunsSync(t *testing.T) {
	e := NewExecutor(1, 4)
	e.Stop()

	ran := false
	queued := e.Execute("after-stop", func() { ran = true }, true)

	assert.False(t, queued)
	assert.True(t, ran)
}

func TestNoWorkersRunsSync(t *testing.T) {
	e := NewExecutor(0, 0)

	ran := false
	queued := e.Execute("no-pool", func() { ran = true }, true)

	assert.False(t, queued)
	assert.True(t, ran)
}

func TestExecuteDelayed(t *testing.T) {
	e := NewExecutor(1, 4)
	defer e.Stop()

	done := make(chan struct{})
	start := time.Now()
	queued := e.ExecuteDelayed("delayed", func() { close(done) }, 20*time.Millisecond, true)
	require.True(t, queued)

	select {
	case <-done:
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("delayed job never ran")
	}
}

func TestExecuteDelayedSyncSkipsDelay(t *testing.T) {
	e := NewExecutor(1, 4)
	e.Stop()

	ran := false
	queued := e.ExecuteDelayed("delayed-sync", func() { ran = true }, time.Hour, true)

	assert.False(t, queued)
	assert.True(t, ran, "stopped pool must run the job immediately")
}

func TestPanicDoesNotKillWorker(t *testing.T) {
	e := NewExecutor(1, 4)
	defer e.Stop()

	var done sync.WaitGroup
	done.Add(1)

	e.Execute("panicker", func() { panic("boom") }, true)
	e.Execute("survivor", func() { done.Done() }, true)

	waitCh := make(chan struct{})
	go func() {
		done.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(2 * time.Second):
		t.Fatal("worker died after panic")
	}
}

func TestStopWaitsForInFlightJobs(t *testing.T) {
	e := NewExecutor(2, 8)

	var count atomic.Int32
	for i := 0; i < 10; i++ {
		e.Execute("counted", func() {
			time.Sleep(time.Millisecond)
			count.Add(1)
		}, true)
	}

	e.Stop()
	assert.Equal(t, int32(10), count.Load(), "Stop must wait for queued jobs")
}
