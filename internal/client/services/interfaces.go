package services

import (
	"context"

	"github.com/dmitrijs2005/treehole/internal/client/models"
)

// RemoteStore is the cloud side of the wall, implemented by remote.Adapter.
type RemoteStore interface {
	Configured() bool
	ListMessages(ctx context.Context) ([]models.Message, error)
	AddMessage(ctx context.Context, to, content string, timestamp int64) error
	BatchInsertMessages(ctx context.Context, msgs []models.Message) error
	DeleteMessage(ctx context.Context, actor *models.UserProfile, id string) error
	SetPinned(ctx context.Context, actor *models.UserProfile, id string, pinned bool) error
	GetProfile(ctx context.Context, deviceID string) (*models.UserProfile, error)
	UpsertProfile(ctx context.Context, deviceID string, p models.UserProfile) error
}

// LocalStore is the device's fallback snapshot, implemented by
// localstore.Store.
type LocalStore interface {
	Seed() []models.Message
	LoadMessages(ctx context.Context) ([]models.Message, error)
	SaveMessages(ctx context.Context, msgs []models.Message) error
	DeviceID(ctx context.Context) (string, error)
	LoadProfile(ctx context.Context) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p models.UserProfile) error
	Mirror(ctx context.Context, msgs []models.Message, p models.UserProfile) error
}
