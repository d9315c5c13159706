package jobs

import (
	"context"
	"log"
	"sync"

	"github.com/agrunetcore/farmhub/internal/mq"
	"github.com/agrunetcore/farmhub/internal/query"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/types"
)

// Snapshot keeps an in-memory copy of the farmer collection, refreshed when
// registration events arrive. Bursts of registrations are debounced so a
// batch of events triggers a single reload of the flat file.
type Snapshot struct {
	farmers  *services.FarmerService
	debounce *query.Debouncer

	mu      sync.RWMutex
	current []types.Farmer
}

func NewSnapshot(farmers *services.FarmerService) *Snapshot {
	s := &Snapshot{farmers: farmers}
	s.debounce = query.NewDebouncer(query.DebounceDelay, func(string) {
		s.reload(context.Background())
	})
	return s
}

// Current returns the last loaded collection.
func (s *Snapshot) Current() []types.Farmer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Start loads the snapshot once and, when a bus is configured, keeps it
// fresh by consuming registration events until ctx is done.
func StartSnapshot(ctx context.Context, snapshot *Snapshot, bus *mq.MQ, topic string) {
	snapshot.reload(ctx)
	if bus == nil {
		return
	}

	go func() {
		defer snapshot.debounce.Stop()
		err := bus.Subscribe(ctx, topic, func(ctx context.Context, msg mq.Message) error {
			snapshot.debounce.Set(msg.Attributes["farmerId"])
			return nil
		})
		if err != nil && ctx.Err() == nil {
			log.Printf("snapshot job stopped: %v", err)
		}
	}()
}

func (s *Snapshot) reload(ctx context.Context) {
	farmers, err := s.farmers.List(ctx)
	if err != nil {
		log.Printf("snapshot reload error: %v", err)
		return
	}
	s.mu.Lock()
	s.current = farmers
	s.mu.Unlock()
}
