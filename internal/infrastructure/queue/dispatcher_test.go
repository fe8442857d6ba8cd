package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/haripriya/clinic-backend/internal/core/ports"
)

type recordingRepo struct {
	mu     sync.Mutex
	events []ports.AuthEvent
	err    error
}

func (r *recordingRepo) InsertAuthEvent(_ context.Context, e ports.AuthEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recordingRepo) snapshot() []ports.AuthEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ports.AuthEvent(nil), r.events...)
}

func TestAuditDispatcher_PersistsInOrderPerEmail(t *testing.T) {
	repo := &recordingRepo{}
	d := NewAuditDispatcher(3, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	emails := []string{"a@x.com", "b@x.com", "c@x.com"}
	for i := 0; i < 20; i++ {
		for _, email := range emails {
			d.Record(ports.AuthEvent{Type: ports.AuthEventLoginFailed, Email: email, Reason: fmt.Sprint(i)})
		}
	}

	cancel()
	d.Wait()

	got := repo.snapshot()
	if len(got) != 60 {
		t.Fatalf("expected 60 persisted events, got %d", len(got))
	}
	next := map[string]int{}
	for _, e := range got {
		if e.Reason != fmt.Sprint(next[e.Email]) {
			t.Fatalf("out of order for %s: expected %d, got %s", e.Email, next[e.Email], e.Reason)
		}
		next[e.Email]++
	}
}

func TestAuditDispatcher_RecordNeverBlocks(t *testing.T) {
	repo := &recordingRepo{}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	// Workers not started: the buffer fills and further events are dropped.
	for i := 0; i < channelBuffer+10; i++ {
		d.Record(ports.AuthEvent{Type: ports.AuthEventLoginSucceeded, Email: "a@x.com"})
	}
	if n := len(d.workers[0]); n != channelBuffer {
		t.Fatalf("expected full buffer of %d, got %d", channelBuffer, n)
	}
}

func TestAuditDispatcher_RepoErrorDoesNotStopWorker(t *testing.T) {
	repo := &recordingRepo{err: errors.New("mongo down")}
	d := NewAuditDispatcher(1, repo, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	d.Start(ctx)

	d.Record(ports.AuthEvent{Type: ports.AuthEventLoginFailed, Email: "a@x.com"})
	d.Record(ports.AuthEvent{Type: ports.AuthEventLoginFailed, Email: "a@x.com"})

	cancel()
	d.Wait()

	if len(d.workers[0]) != 0 {
		t.Fatalf("expected queue drained")
	}
}

func TestAuditDispatcher_ShardIndexIsStable(t *testing.T) {
	d := NewAuditDispatcher(0, &recordingRepo{}, zerolog.Nop())
	if len(d.workers) != defaultWorkers {
		t.Fatalf("expected %d workers, got %d", defaultWorkers, len(d.workers))
	}
	first := d.shardIndex("a@x.com")
	for i := 0; i < 10; i++ {
		if d.shardIndex("a@x.com") != first {
			t.Fatalf("shard index changed between calls")
		}
	}
}
