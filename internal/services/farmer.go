package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/agrunetcore/farmhub/internal/mq"
	"github.com/agrunetcore/farmhub/types"
)

// FarmerRepository defines persistence operations for farmer records.
type FarmerRepository interface {
	List(ctx context.Context) ([]types.Farmer, error)
	Append(ctx context.Context, farmer types.Farmer) error
}

// FarmerService encapsulates farmer use-cases: listing with normalization
// and registering new farmers.
type FarmerService struct {
	repo  FarmerRepository
	bus   *mq.MQ
	topic string
	now   func() time.Time
}

func NewFarmerService(repo FarmerRepository) *FarmerService {
	return &FarmerService{repo: repo, now: time.Now}
}

// WithEventBus enables publishing of registration events to the named
// topic. A nil bus leaves publishing disabled.
func (s *FarmerService) WithEventBus(bus *mq.MQ, topic string) *FarmerService {
	s.bus = bus
	s.topic = topic
	return s
}

// List fetches the farmer collection. Legacy rows without a stored
// createdAt get one defaulted to now; rows written through Register always
// carry their registration timestamp.
func (s *FarmerService) List(ctx context.Context) ([]types.Farmer, error) {
	farmers, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC().Format(time.RFC3339)
	for i := range farmers {
		if farmers[i].CreatedAt == "" {
			farmers[i].CreatedAt = now
		}
	}
	return farmers, nil
}

// Register stores a new farmer, assigning identity and registration time,
// and publishes a registration event when a bus is configured. Event
// publish failures are logged, never surfaced: the record is already
// durable at that point.
func (s *FarmerService) Register(ctx context.Context, farmer types.Farmer) (types.Farmer, error) {
	if farmer.ID == "" {
		farmer.ID = uuid.NewString()
	}
	if farmer.CreatedAt == "" {
		farmer.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}

	if err := s.repo.Append(ctx, farmer); err != nil {
		return types.Farmer{}, err
	}

	s.publishRegistered(ctx, farmer)
	return farmer, nil
}

// RegistrationEvent is the payload published after a successful
// registration.
type RegistrationEvent struct {
	FarmerID  string `json:"farmerId"`
	Name      string `json:"name"`
	FarmType  string `json:"farmType"`
	CreatedAt string `json:"createdAt"`
}

func (s *FarmerService) publishRegistered(ctx context.Context, farmer types.Farmer) {
	if s.bus == nil {
		return
	}

	event := RegistrationEvent{
		FarmerID:  farmer.ID,
		Name:      farmer.Name,
		FarmType:  farmer.FarmType,
		CreatedAt: farmer.CreatedAt,
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("farmer: encode registration event: %v", err)
		return
	}
	if _, err := s.bus.Publish(ctx, s.topic, data, map[string]string{"farmerId": farmer.ID}); err != nil {
		log.Printf("farmer: publish registration event: %v", err)
	}
}
