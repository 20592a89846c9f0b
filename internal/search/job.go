package search

import "sync"

// JobState is the lifecycle state of one search job.
type JobState string

const (
	StateRunning    JobState = "running"
	StateCancelling JobState = "cancelling"
	StateDone       JobState = "done"
	StateErrored    JobState = "errored"
)

// Job is the stateful unit of work for one searchId. Workers hold a
// reference only to check cancellation and report progress; every state
// transition goes through Job methods so they stay race-free.
type Job struct {
	mu        sync.Mutex
	searchID  string
	state     JobState
	cancelled bool

	processed int
	total     int
	matches   int
	maxItems  int
}

func newJob(searchID string, maxItems int) *Job {
	return &Job{
		searchID: searchID,
		state:    StateRunning,
		maxItems: maxItems,
	}
}

// SearchID returns the identifier this job is keyed under.
func (j *Job) SearchID() string {
	return j.searchID
}

// State returns the current lifecycle state.
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Cancel flags the job for cooperative cancellation. Idempotent; cancelling
// a finished job is a no-op. It returns immediately without waiting for
// workers to observe the flag.
func (j *Job) Cancel() {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.cancelled = true
	if j.state == StateRunning {
		j.state = StateCancelling
	}
}

// Cancelled reports whether cancellation has been requested. Workers check
// this before starting each unit of work.
func (j *Job) Cancelled() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.cancelled
}

// finish moves the job to a terminal state. Called once by the orchestrator
// just before the terminal event is emitted.
func (j *Job) finish(state JobState) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = state
}

// AddTotal grows the known work total as enumeration proceeds.
func (j *Job) AddTotal(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.total += n
}

// AddProcessed counts one listing as handled, matched or not.
func (j *Job) AddProcessed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.processed++
}

// TryAddMatch claims a match slot. It returns false when the maxItems cap is
// already reached, in which case the caller must not emit the match.
func (j *Job) TryAddMatch() bool {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.maxItems > 0 && j.matches >= j.maxItems {
		return false
	}
	j.matches++
	return true
}

// LimitReached reports whether the maxItems cap is exhausted. Workers use it
// as an early-exit signal alongside Cancelled.
func (j *Job) LimitReached() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.maxItems > 0 && j.matches >= j.maxItems
}

// Counters returns a consistent snapshot of the progress counters.
func (j *Job) Counters() (processed, total, matches int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.processed, j.total, j.matches
}
