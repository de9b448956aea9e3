package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/harulab/interp-practice/internal/domain/entities"
	"github.com/harulab/interp-practice/internal/domain/repositories"
)

func TestMemorySessionStore_CreateAndGet(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	session := entities.NewProcessingSession("https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.SourceID != "dQw4w9WgXcQ" {
		t.Fatalf("source id %q", got.SourceID)
	}
	if got.Status != entities.StatusStarted {
		t.Fatalf("new session status %q", got.Status)
	}

	// the store must hand out copies, not its internal pointer
	got.Progress = 99
	again, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.Progress == 99 {
		t.Fatalf("store leaked its internal session pointer")
	}
}

func TestMemorySessionStore_Update(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	session := entities.NewProcessingSession("https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ")
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	status := entities.StatusCompleted
	step := entities.StepCompleted
	progress := 100
	err := store.Update(ctx, session.ID, repositories.SessionUpdate{
		Status:   &status,
		Step:     &step,
		Progress: &progress,
		Artifact: map[string]string{"srt": "https://example.com/a.srt"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.Get(ctx, session.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != entities.StatusCompleted || got.Progress != 100 {
		t.Fatalf("update not applied: status=%q progress=%d", got.Status, got.Progress)
	}
	if got.ArtifactURL["srt"] != "https://example.com/a.srt" {
		t.Fatalf("artifact url not applied: %v", got.ArtifactURL)
	}
	// fields the update leaves nil must survive
	if got.SourceURL != "https://youtu.be/dQw4w9WgXcQ" {
		t.Fatalf("untouched field lost: %q", got.SourceURL)
	}
}

func TestMemorySessionStore_NotFound(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	if _, err := store.Get(ctx, uuid.New()); err == nil {
		t.Fatalf("expected not-found error")
	}
	if err := store.Update(ctx, uuid.New(), repositories.SessionUpdate{}); err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestMemorySessionStore_Delete(t *testing.T) {
	store := NewMemorySessionStore(time.Hour)
	ctx := context.Background()

	session := entities.NewProcessingSession("https://youtu.be/abc12345678", "abc12345678")
	if err := store.Create(ctx, session); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := store.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, session.ID); err == nil {
		t.Fatalf("expected not-found after delete")
	}
}
