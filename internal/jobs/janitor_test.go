package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

func TestJanitorEvictsExpiredJobs(t *testing.T) {
	store := NewStore()
	if err := store.Create("old", domain.GenerateRequest{}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := store.Update("old", func(j *domain.Job) {
		j.State = domain.JobStateCompleted
		j.CompletedAt = time.Now().UTC().Add(-time.Hour)
	}); err != nil {
		t.Fatalf("Update error: %v", err)
	}

	janitor := NewJanitor(store, zerolog.Nop(), time.Minute, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go janitor.Run(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := store.Get("old"); errors.Is(err, domain.ErrJobNotFound) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expired job was never evicted")
}
