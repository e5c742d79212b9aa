package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func intChunks(n int) []interface{} {
	chunks := make([]interface{}, n)
	for i := range chunks {
		chunks[i] = i
	}
	return chunks
}

func TestEveryChunkProcessedExactlyOnce(t *testing.T) {
	p := New(3, time.Millisecond, testLogger())

	var mu sync.Mutex
	seen := make(map[int]int)

	p.Run(intChunks(10), func(chunk interface{}) {
		mu.Lock()
		seen[chunk.(int)]++
		mu.Unlock()
	})

	require.Len(t, seen, 10)
	for chunk, count := range seen {
		assert.Equal(t, 1, count, "chunk %d executed %d times", chunk, count)
	}
}

func TestPeakConcurrencyBoundedByLimit(t *testing.T) {
	const limit = 3
	p := New(limit, time.Millisecond, testLogger())

	var inFlight, peak, executions atomic.Int64

	p.Run(intChunks(10), func(chunk interface{}) {
		current := inFlight.Add(1)
		for {
			old := peak.Load()
			if current <= old || peak.CompareAndSwap(old, current) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		executions.Add(1)
	})

	assert.Equal(t, int64(10), executions.Load())
	assert.LessOrEqual(t, peak.Load(), int64(limit))
	assert.Equal(t, int64(0), inFlight.Load(), "Run returned with handlers in flight")
}

func TestProgressReportedAfterEachTermination(t *testing.T) {
	p := New(2, time.Millisecond, testLogger())

	var mu sync.Mutex
	var reports [][2]int
	p.OnProgress(func(completed, total int) {
		mu.Lock()
		reports = append(reports, [2]int{completed, total})
		mu.Unlock()
	})

	p.Run(intChunks(5), func(chunk interface{}) {})

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, [2]int{5, 5}, last)

	prev := 0
	for _, r := range reports {
		assert.Greater(t, r[0], prev, "progress must be monotonic")
		assert.Equal(t, 5, r[1])
		prev = r[0]
	}
}

func TestPanickingHandlerConsumesChunk(t *testing.T) {
	p := New(2, time.Millisecond, testLogger())

	var executions atomic.Int64
	p.Run(intChunks(6), func(chunk interface{}) {
		executions.Add(1)
		if chunk.(int)%2 == 0 {
			panic("malformed chunk")
		}
	})

	// Run returns: crashed handlers are detected as terminated and their
	// chunks are consumed, not retried.
	assert.Equal(t, int64(6), executions.Load())
}

func TestEmptyQueueDrainsImmediately(t *testing.T) {
	p := New(4, time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		p.Run(nil, func(chunk interface{}) { t.Error("handler called with no chunks") })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pool did not drain an empty queue")
	}
}
