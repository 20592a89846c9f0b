package search

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobLifecycle(t *testing.T) {
	job := newJob("s1", 10)

	assert.Equal(t, "s1", job.SearchID())
	assert.Equal(t, StateRunning, job.State())
	assert.False(t, job.Cancelled())

	job.Cancel()
	assert.Equal(t, StateCancelling, job.State())
	assert.True(t, job.Cancelled())

	// Cancel is idempotent.
	job.Cancel()
	assert.Equal(t, StateCancelling, job.State())

	job.finish(StateDone)
	assert.Equal(t, StateDone, job.State())

	// Cancelling a finished job leaves its terminal state alone.
	job.Cancel()
	assert.Equal(t, StateDone, job.State())
}

func TestJobCounters(t *testing.T) {
	job := newJob("s1", 0)

	job.AddTotal(5)
	job.AddTotal(3)
	job.AddProcessed()
	job.AddProcessed()
	assert.True(t, job.TryAddMatch())

	processed, total, matches := job.Counters()
	assert.Equal(t, 2, processed)
	assert.Equal(t, 8, total)
	assert.Equal(t, 1, matches)

	// maxItems of zero means no cap.
	assert.False(t, job.LimitReached())
}

func TestJobMatchCap(t *testing.T) {
	job := newJob("s1", 2)

	assert.True(t, job.TryAddMatch())
	assert.False(t, job.LimitReached())
	assert.True(t, job.TryAddMatch())
	assert.True(t, job.LimitReached())
	assert.False(t, job.TryAddMatch())

	_, _, matches := job.Counters()
	assert.Equal(t, 2, matches)
}

func TestJobMatchCapUnderContention(t *testing.T) {
	job := newJob("s1", 25)

	var wg sync.WaitGroup
	claimed := make(chan bool, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed <- job.TryAddMatch()
		}()
	}
	wg.Wait()
	close(claimed)

	won := 0
	for ok := range claimed {
		if ok {
			won++
		}
	}
	assert.Equal(t, 25, won)
	assert.True(t, job.LimitReached())
}
