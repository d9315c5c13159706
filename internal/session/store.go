package session

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/agrunetcore/farmhub/types"
)

// Record is the persisted shape of a session.
type Record struct {
	User         types.User `json:"user"`
	LastActivity int64      `json:"lastActivity"`
}

// Backend defines the key/value operations a session store needs.
type Backend interface {
	Save(ctx context.Context, token string, data []byte, ttl time.Duration) error
	Load(ctx context.Context, token string) ([]byte, error)
	Delete(ctx context.Context, token string) error
}

// Store manages session records with explicit begin/restore/touch/end
// lifecycle. It is constructed once at application start and passed to
// consumers; there is no ambient singleton.
type Store struct {
	backend Backend
	limit   time.Duration
	now     func() time.Time
}

func NewStore(backend Backend, limit time.Duration) *Store {
	if limit <= 0 {
		limit = InactivityLimit
	}
	return &Store{backend: backend, limit: limit, now: time.Now}
}

// Begin persists a fresh session record for the identity and token.
func (s *Store) Begin(ctx context.Context, user types.User, token string) (*Session, error) {
	now := s.now()
	record := Record{User: user, LastActivity: now.UnixMilli()}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	if err := s.backend.Save(ctx, token, data, s.limit); err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, LastActivity: now}, nil
}

// Restore resolves the session for a token. Missing, malformed, or expired
// stored data resolves to absent; it never fails hard. Expired records are
// cleared as a side effect so the next restore is cheap.
func (s *Store) Restore(ctx context.Context, token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}

	data, err := s.backend.Load(ctx, token)
	if err != nil || len(data) == 0 {
		return nil, false
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("session: discarding malformed record: %v", err)
		return nil, false
	}

	lastActivity := time.UnixMilli(record.LastActivity)
	if IsExpired(s.now(), lastActivity, s.limit) {
		_ = s.backend.Delete(ctx, token)
		return nil, false
	}

	return &Session{User: record.User, Token: token, LastActivity: lastActivity}, true
}

// Touch refreshes the last-activity timestamp for a live session. It is
// invoked on every tracked user interaction.
func (s *Store) Touch(ctx context.Context, token string) error {
	data, err := s.backend.Load(ctx, token)
	if err != nil || len(data) == 0 {
		return err
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return err
	}

	record.LastActivity = s.now().UnixMilli()
	updated, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.backend.Save(ctx, token, updated, s.limit)
}

// End clears the persisted session. Ending an unknown token is a no-op.
func (s *Store) End(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.backend.Delete(ctx, token)
}

// InactivityLimit returns the configured idle limit.
func (s *Store) InactivityLimit() time.Duration {
	return s.limit
}
