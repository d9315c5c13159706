package jobs

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/agrunetcore/farmhub/internal/mq"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/internal/store"
	"github.com/agrunetcore/farmhub/types"
)

// memoryBus is a single-process broker backend for tests.
type memoryBus struct {
	mu    sync.Mutex
	chans map[string]chan mq.Message
}

func newMemoryBus() *memoryBus {
	return &memoryBus{chans: make(map[string]chan mq.Message)}
}

func (b *memoryBus) channel(name string) chan mq.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.chans[name]
	if !ok {
		ch = make(chan mq.Message, 16)
		b.chans[name] = ch
	}
	return ch
}

func (b *memoryBus) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	b.channel(channel) <- mq.Message{ID: "1", Data: data, Attributes: attrs}
	return "1", nil
}

func (b *memoryBus) Subscribe(ctx context.Context, channel string, handler mq.Handler) error {
	ch := b.channel(channel)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-ch:
			if err := handler(ctx, msg); err != nil {
				return err
			}
		}
	}
}

func (b *memoryBus) Close() error { return nil }

func TestSnapshotEagerLoad(t *testing.T) {
	ctx := context.Background()
	repo := store.NewFarmerRepository(filepath.Join(t.TempDir(), "data.json"))
	svc := services.NewFarmerService(repo)

	if _, err := svc.Register(ctx, types.Farmer{Name: "Existing", Email: "e@x.com"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	snapshot := NewSnapshot(svc)
	if snapshot.Current() != nil {
		t.Fatalf("expected empty snapshot before start")
	}

	StartSnapshot(ctx, snapshot, nil, "")
	if got := snapshot.Current(); len(got) != 1 || got[0].Name != "Existing" {
		t.Fatalf("expected eager load of existing rows, got %v", got)
	}
}

func TestSnapshotRefreshesOnRegistrationEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const topic = "farmer.registered"
	bus := mq.New(newMemoryBus())
	repo := store.NewFarmerRepository(filepath.Join(t.TempDir(), "data.json"))
	svc := services.NewFarmerService(repo).WithEventBus(bus, topic)

	snapshot := NewSnapshot(svc)
	StartSnapshot(ctx, snapshot, bus, topic)
	if len(snapshot.Current()) != 0 {
		t.Fatalf("expected empty initial snapshot")
	}

	// A burst of registrations coalesces into one reload that sees all of
	// them.
	for _, name := range []string{"First", "Second", "Third"} {
		if _, err := svc.Register(ctx, types.Farmer{Name: name, Email: "f@x.com"}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		if len(snapshot.Current()) == 3 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot never caught up, have %v", snapshot.Current())
		}
		time.Sleep(20 * time.Millisecond)
	}
}
