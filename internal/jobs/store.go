package jobs

import (
	"fmt"
	"sync"
	"time"

	"server/internal/domain"
	"server/internal/metrics"
)

// Store is the single source of truth for job existence and state: a
// concurrent in-memory mapping from job identifier to job record. Records are
// never exposed by reference; every read returns a snapshot so callers cannot
// observe a half-applied update.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*domain.Job)}
}

// Create inserts a new record in state queued. Identifier collisions are an
// internal invariant violation given uuid generation, but they are still
// checked.
func (s *Store) Create(id string, input domain.GenerateRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[id]; exists {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateJob, id)
	}
	now := time.Now().UTC()
	s.jobs[id] = &domain.Job{
		ID:        id,
		State:     domain.JobStateQueued,
		Progress:  0,
		Message:   "Job queued for processing",
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}
	metrics.StoredJobs.Set(float64(len(s.jobs)))
	return nil
}

// Get returns the current snapshot of the record.
func (s *Store) Get(id string) (domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	return snapshot(job), nil
}

// Update applies the mutation atomically with respect to other updates and
// reads on the same id, and returns the post-mutation snapshot.
func (s *Store) Update(id string, mutate func(*domain.Job)) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.Job{}, fmt.Errorf("%w: %s", domain.ErrJobNotFound, id)
	}
	mutate(job)
	job.UpdatedAt = time.Now().UTC()
	return snapshot(job), nil
}

// Len reports the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.jobs)
}

// Sweep evicts terminal jobs whose last update is older than ttl and returns
// how many were removed. Non-terminal jobs are never evicted.
func (s *Store) Sweep(ttl time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if !job.State.Terminal() {
			continue
		}
		expiry := job.UpdatedAt
		if !job.CompletedAt.IsZero() {
			expiry = job.CompletedAt
		}
		if now.Sub(expiry) > ttl {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.StoredJobs.Set(float64(len(s.jobs)))
	}
	return removed
}

func snapshot(job *domain.Job) domain.Job {
	out := *job
	if job.Result != nil {
		out.Result = append([]byte(nil), job.Result...)
	}
	return out
}
