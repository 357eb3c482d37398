package remote

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/treehole/internal/client/access"
	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/logging"
)

// Adapter exposes message and profile operations in application terms.
// A nil backend means no remote connection is configured.
type Adapter struct {
	backend Backend
	log     logging.Logger
}

func NewAdapter(backend Backend, log logging.Logger) *Adapter {
	if log == nil {
		log = logging.Discard()
	}
	return &Adapter{backend: backend, log: log.With("component", "remote")}
}

// Configured reports whether a backend is attached.
func (a *Adapter) Configured() bool {
	return a.backend != nil
}

func (a *Adapter) fail(op string, err error) error {
	switch {
	case errors.Is(err, common.ErrRemoteUnavailable):
		return fmt.Errorf("%s: %w", op, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w: %w", op, common.ErrTimeout, err)
	default:
		return fmt.Errorf("%s: %w: %w", op, common.ErrRemoteOperationFailed, err)
	}
}

func (a *Adapter) ready(op string) error {
	if a.backend == nil {
		return fmt.Errorf("%s: %w", op, common.ErrRemoteUnavailable)
	}
	return nil
}

// ListMessages returns every message in display order.
func (a *Adapter) ListMessages(ctx context.Context) ([]models.Message, error) {
	const op = "list messages"
	if err := a.ready(op); err != nil {
		return nil, err
	}

	rows, err := a.backend.ListMessages(ctx)
	if err != nil {
		a.log.Error(ctx, "list messages failed", "error", err)
		return nil, a.fail(op, err)
	}

	msgs, err := decodeMessageRows(rows)
	if err != nil {
		a.log.Error(ctx, "message rows rejected", "error", err)
		return nil, a.fail(op, err)
	}
	if !models.IsSorted(msgs) {
		a.log.Debug(ctx, "backend returned messages out of display order")
		models.SortMessages(msgs)
	}
	return msgs, nil
}

// AddMessage inserts a single unpinned message.
func (a *Adapter) AddMessage(ctx context.Context, to, content string, timestamp int64) error {
	const op = "add message"
	if err := a.ready(op); err != nil {
		return err
	}

	row := encodeNewMessage(models.Message{To: to, Content: content, Timestamp: timestamp})
	if err := a.backend.InsertMessages(ctx, []MessageRow{row}); err != nil {
		return a.fail(op, err)
	}
	return nil
}

// BatchInsertMessages inserts msgs in one call. Ids are assigned remotely.
func (a *Adapter) BatchInsertMessages(ctx context.Context, msgs []models.Message) error {
	const op = "batch insert messages"
	if err := a.ready(op); err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}

	rows := make([]MessageRow, 0, len(msgs))
	for _, m := range msgs {
		rows = append(rows, encodeNewMessage(m))
	}
	if err := a.backend.InsertMessages(ctx, rows); err != nil {
		return a.fail(op, err)
	}
	return nil
}

// DeleteMessage removes a message on behalf of actor. Non-VIP actors get
// common.ErrUpgradeRequired before anything is sent.
func (a *Adapter) DeleteMessage(ctx context.Context, actor *models.UserProfile, id string) error {
	const op = "delete message"
	if err := access.RequirePrivileged(actor, op); err != nil {
		return err
	}
	if err := a.ready(op); err != nil {
		return err
	}

	if err := a.backend.DeleteMessage(ctx, actor.DeviceID, id); err != nil {
		return a.fail(op, err)
	}
	return nil
}

// SetPinned updates the pinned flag on behalf of actor, gated like
// DeleteMessage.
func (a *Adapter) SetPinned(ctx context.Context, actor *models.UserProfile, id string, pinned bool) error {
	const op = "set pinned"
	if err := access.RequirePrivileged(actor, op); err != nil {
		return err
	}
	if err := a.ready(op); err != nil {
		return err
	}

	if err := a.backend.SetPinned(ctx, actor.DeviceID, id, pinned); err != nil {
		return a.fail(op, err)
	}
	return nil
}

// GetProfile returns the device's profile, or (nil, nil) when none exists.
func (a *Adapter) GetProfile(ctx context.Context, deviceID string) (*models.UserProfile, error) {
	const op = "get profile"
	if err := a.ready(op); err != nil {
		return nil, err
	}

	row, err := a.backend.GetProfile(ctx, deviceID)
	if errors.Is(err, common.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, a.fail(op, err)
	}

	p, err := decodeProfileRow(*row)
	if err != nil {
		return nil, a.fail(op, err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces the profile row for deviceID.
func (a *Adapter) UpsertProfile(ctx context.Context, deviceID string, p models.UserProfile) error {
	const op = "upsert profile"
	if err := a.ready(op); err != nil {
		return err
	}

	if err := a.backend.UpsertProfile(ctx, encodeProfile(deviceID, p)); err != nil {
		return a.fail(op, err)
	}
	return nil
}

func (a *Adapter) Close() error {
	if a.backend == nil {
		return nil
	}
	return a.backend.Close()
}
