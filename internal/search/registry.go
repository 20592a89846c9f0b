package search

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Registry is the process-wide table of in-flight search jobs, keyed by
// searchId. It is the only structure mutated from both the search-start path
// and the cancel path, so all access is serialized here.
type Registry struct {
	mu     sync.Mutex
	jobs   map[string]*Job
	logger *log.Logger
}

// JobInfo is a read-only snapshot of one registered job.
type JobInfo struct {
	SearchID  string   `json:"searchId"`
	State     JobState `json:"state"`
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Matches   int      `json:"matches"`
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.New(os.Stdout, "[registry] ", log.LstdFlags)
	}
	return &Registry{
		jobs:   make(map[string]*Job),
		logger: logger,
	}
}

// Start inserts a new job for searchID. A second start for an id still in
// flight is a caller error.
func (r *Registry) Start(searchID string, maxItems int) (*Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[searchID]; exists {
		return nil, fmt.Errorf("search %q already running", searchID)
	}

	job := newJob(searchID, maxItems)
	r.jobs[searchID] = job
	r.logger.Printf("job started: %s (active: %d)", searchID, len(r.jobs))
	return job, nil
}

// Cancel flags the job for searchID. Unknown or already-finished ids are
// silently accepted; cancelling twice is a no-op. Returns immediately.
func (r *Registry) Cancel(searchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if job, ok := r.jobs[searchID]; ok {
		job.Cancel()
		r.logger.Printf("cancel requested: %s", searchID)
	}
}

// Remove deletes the job entry. Invoked exactly once by the orchestrator
// when the terminal event has been emitted.
func (r *Registry) Remove(searchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[searchID]; ok {
		delete(r.jobs, searchID)
		r.logger.Printf("job removed: %s (active: %d)", searchID, len(r.jobs))
	}
}

// Get returns the job for searchID, or nil.
func (r *Registry) Get(searchID string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[searchID]
}

// Len returns the number of in-flight jobs.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}

// Snapshot returns read-only info for every in-flight job.
func (r *Registry) Snapshot() []JobInfo {
	r.mu.Lock()
	jobs := make([]*Job, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	r.mu.Unlock()

	infos := make([]JobInfo, 0, len(jobs))
	for _, job := range jobs {
		processed, total, matches := job.Counters()
		infos = append(infos, JobInfo{
			SearchID:  job.SearchID(),
			State:     job.State(),
			Processed: processed,
			Total:     total,
			Matches:   matches,
		})
	}
	return infos
}
