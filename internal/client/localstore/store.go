// Package localstore keeps the device's fallback snapshot: the message
// list, the device id and the profile, each as one JSON value in the
// local key-value repository.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/client/repositories/kv"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/shared"
)

type Store struct {
	repo kv.Repository
	seed models.Seed
	now  func() time.Time

	mu       sync.Mutex
	deviceID string
}

// New returns a Store over repo. A nil seed means models.DefaultSeed.
func New(repo kv.Repository, seed models.Seed) *Store {
	if seed == nil {
		seed = models.DefaultSeed
	}
	return &Store{repo: repo, seed: seed, now: time.Now}
}

// Seed materializes the configured seed set at the current time.
func (s *Store) Seed() []models.Message {
	return s.seed.Messages(s.now())
}

// SnapshotSavedAt reports when the message snapshot was last written.
// ok is false while the wall still comes from the seed set.
func (s *Store) SnapshotSavedAt(ctx context.Context) (at time.Time, ok bool, err error) {
	return s.repo.UpdatedAt(ctx, common.MessagesKey)
}

// LoadMessages returns the saved snapshot in display order, or the seed
// set when nothing was saved yet.
func (s *Store) LoadMessages(ctx context.Context) ([]models.Message, error) {
	raw, err := s.repo.Get(ctx, common.MessagesKey)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return s.Seed(), nil
	}

	msgs := make([]models.Message, 0)
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, fmt.Errorf("message snapshot: %w: %w", common.ErrDecode, err)
	}
	if !models.IsSorted(msgs) {
		models.SortMessages(msgs)
	}
	return msgs, nil
}

// SaveMessages replaces the snapshot with msgs.
func (s *Store) SaveMessages(ctx context.Context, msgs []models.Message) error {
	raw, err := json.Marshal(models.CloneMessages(msgs))
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, common.MessagesKey, raw)
}

// DeviceID returns the persisted device token, creating it on first use.
func (s *Store) DeviceID(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.deviceID != "" {
		return s.deviceID, nil
	}

	raw, err := s.repo.Get(ctx, common.DeviceIDKey)
	if err != nil {
		return "", err
	}
	if len(raw) > 0 {
		s.deviceID = string(raw)
		return s.deviceID, nil
	}

	id, err := shared.NewDeviceID()
	if err != nil {
		return "", fmt.Errorf("generate device id: %w", err)
	}
	if err := s.repo.Set(ctx, common.DeviceIDKey, []byte(id)); err != nil {
		return "", err
	}
	s.deviceID = id
	return id, nil
}

// LoadProfile returns the saved profile, or (nil, nil) if there is none.
func (s *Store) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	raw, err := s.repo.Get(ctx, common.ProfileKey)
	if err != nil || raw == nil {
		return nil, err
	}

	var p models.UserProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("profile snapshot: %w: %w", common.ErrDecode, err)
	}
	return &p, nil
}

func (s *Store) SaveProfile(ctx context.Context, p models.UserProfile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.repo.Set(ctx, common.ProfileKey, raw)
}

// Mirror stores the messages and profile together, so a later offline
// start shows the last synced wall.
func (s *Store) Mirror(ctx context.Context, msgs []models.Message, p models.UserProfile) error {
	rawMsgs, err := json.Marshal(models.CloneMessages(msgs))
	if err != nil {
		return err
	}
	rawProfile, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return s.repo.SetMany(ctx, map[string][]byte{
		common.MessagesKey: rawMsgs,
		common.ProfileKey:  rawProfile,
	})
}
