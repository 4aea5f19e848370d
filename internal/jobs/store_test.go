package jobs

import (
	"errors"
	"sync"
	"testing"
	"time"

	"server/internal/domain"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore()
	input := domain.GenerateRequest{Image: "aGVsbG8=", Type: "glb"}

	if err := store.Create("job-1", input); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	job, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if job.State != domain.JobStateQueued {
		t.Fatalf("state = %s, want queued", job.State)
	}
	if job.Progress != 0 {
		t.Fatalf("progress = %d, want 0", job.Progress)
	}
	if job.Input.Image != input.Image {
		t.Fatalf("input not retained: %q", job.Input.Image)
	}
	if job.CreatedAt.IsZero() {
		t.Fatalf("expected CreatedAt to be stamped")
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	store := NewStore()
	if err := store.Create("job-1", domain.GenerateRequest{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	err := store.Create("job-1", domain.GenerateRequest{})
	if !errors.Is(err, domain.ErrDuplicateJob) {
		t.Fatalf("error = %v, want ErrDuplicateJob", err)
	}
}

func TestStoreGetUnknown(t *testing.T) {
	store := NewStore()
	_, err := store.Get("missing")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestStoreUpdateUnknown(t *testing.T) {
	store := NewStore()
	_, err := store.Update("missing", func(j *domain.Job) {})
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	store := NewStore()
	if err := store.Create("job-1", domain.GenerateRequest{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := store.Update("job-1", func(j *domain.Job) {
		j.Result = []byte("artifact")
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	first, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	first.Result[0] = 'X'

	second, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if string(second.Result) != "artifact" {
		t.Fatalf("stored result mutated through snapshot: %q", second.Result)
	}
}

func TestStoreConcurrentUpdatesAndReads(t *testing.T) {
	store := NewStore()
	if err := store.Create("job-1", domain.GenerateRequest{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = store.Update("job-1", func(j *domain.Job) {
				if j.Progress < 100 {
					j.Progress++
				}
			})
		}()
		go func() {
			defer wg.Done()
			job, err := store.Get("job-1")
			if err != nil {
				t.Errorf("Get error: %v", err)
				return
			}
			if job.Progress < 0 || job.Progress > 100 {
				t.Errorf("observed out-of-range progress %d", job.Progress)
			}
		}()
	}
	wg.Wait()

	job, err := store.Get("job-1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if job.Progress != 50 {
		t.Fatalf("progress = %d, want 50", job.Progress)
	}
}

func TestStoreSweepEvictsOnlyExpiredTerminalJobs(t *testing.T) {
	store := NewStore()
	now := time.Now().UTC()

	for _, id := range []string{"done-old", "done-new", "running", "failed-old"} {
		if err := store.Create(id, domain.GenerateRequest{}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	mustUpdate := func(id string, mutate func(*domain.Job)) {
		t.Helper()
		if _, err := store.Update(id, mutate); err != nil {
			t.Fatalf("Update %s error: %v", id, err)
		}
	}
	mustUpdate("done-old", func(j *domain.Job) {
		j.State = domain.JobStateCompleted
		j.CompletedAt = now.Add(-2 * time.Hour)
	})
	mustUpdate("done-new", func(j *domain.Job) {
		j.State = domain.JobStateCompleted
		j.CompletedAt = now.Add(-time.Minute)
	})
	mustUpdate("running", func(j *domain.Job) {
		j.State = domain.JobStateProcessing
	})
	// Failed jobs have no CompletedAt; expiry falls back to the last update.
	store.mu.Lock()
	store.jobs["failed-old"].State = domain.JobStateFailed
	store.jobs["failed-old"].UpdatedAt = now.Add(-3 * time.Hour)
	store.mu.Unlock()

	removed := store.Sweep(time.Hour, now)
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	if _, err := store.Get("done-old"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("done-old should be evicted, got %v", err)
	}
	if _, err := store.Get("failed-old"); !errors.Is(err, domain.ErrJobNotFound) {
		t.Fatalf("failed-old should be evicted, got %v", err)
	}
	if _, err := store.Get("done-new"); err != nil {
		t.Fatalf("done-new should survive: %v", err)
	}
	if _, err := store.Get("running"); err != nil {
		t.Fatalf("running should never be evicted: %v", err)
	}
}
