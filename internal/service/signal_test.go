package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/totegamma/tagnote/internal/domain"
)

func TestSignalServiceRealtime(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	signal := NewSignalService(rdb)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output := make(chan domain.NoteEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- signal.Realtime(ctx, output)
	}()

	for {
		subs, err := rdb.PubSubNumSub(ctx, EventChannel).Result()
		if err != nil {
			t.Fatalf("numsub failed: %v", err)
		}
		if subs[EventChannel] > 0 {
			break
		}
		select {
		case <-ctx.Done():
			t.Fatalf("subscriber never registered")
		case <-time.After(10 * time.Millisecond):
		}
	}

	sent := domain.NoteEvent{Type: domain.NoteCreated, NoteID: 7, Time: time.Now().UTC()}
	if err := signal.Publish(ctx, sent); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case got := <-output:
		if got.Type != sent.Type || got.NoteID != sent.NoteID {
			t.Fatalf("expected %+v got %+v", sent, got)
		}
	case <-ctx.Done():
		t.Fatalf("no event received")
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("realtime returned error: %v", err)
	}
}
