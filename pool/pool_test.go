// ABOUTME: Tests for the worker pool
// ABOUTME: Checks every submitted task runs and sizing defaults

package pool

import (
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsAllTasks(t *testing.T) {
	p := NewWorkerPool(4, 2)
	defer p.Close()

	var done atomic.Int64

	for range 100 {
		p.Submit(func() { done.Add(1) })
	}

	p.Wait()

	assert.Equal(t, int64(100), done.Load())
}

func TestWorkerPoolReusableAfterWait(t *testing.T) {
	p := NewWorkerPool(2, 0)
	defer p.Close()

	var done atomic.Int64

	p.Submit(func() { done.Add(1) })
	p.Wait()
	p.Submit(func() { done.Add(1) })
	p.Wait()

	assert.Equal(t, int64(2), done.Load())
}

func TestWorkerPoolSize(t *testing.T) {
	p := NewWorkerPool(0, 1)
	defer p.Close()

	assert.Equal(t, runtime.NumCPU(), p.Size())

	q := NewWorkerPool(3, 1)
	defer q.Close()

	assert.Equal(t, 3, q.Size())
}

func TestWorkerPoolEach(t *testing.T) {
	p := NewWorkerPool(3, 3)
	defer p.Close()

	seen := make([]atomic.Int64, 50)

	p.Each(len(seen), func(i int) { seen[i].Add(1) })

	for i := range seen {
		assert.Equal(t, int64(1), seen[i].Load(), "index %d", i)
	}

	p.Each(0, func(int) { t.Fatal("no task expected") })
}
