package remote

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/treehole/internal/common"
)

// memBackend is an in-memory Backend that records calls.
type memBackend struct {
	rows     []MessageRow
	profiles map[string]ProfileRow
	nextID   int
	calls    []string
	err      error
}

func newMemBackend() *memBackend {
	return &memBackend{profiles: map[string]ProfileRow{}}
}

func (m *memBackend) record(call string) error {
	m.calls = append(m.calls, call)
	return m.err
}

func (m *memBackend) ListMessages(ctx context.Context) ([]MessageRow, error) {
	if err := m.record("list"); err != nil {
		return nil, err
	}
	return append([]MessageRow(nil), m.rows...), nil
}

func (m *memBackend) InsertMessages(ctx context.Context, rows []MessageRow) error {
	if err := m.record(fmt.Sprintf("insert:%d", len(rows))); err != nil {
		return err
	}
	for _, r := range rows {
		m.nextID++
		id := RowID(strconv.Itoa(m.nextID))
		r.ID = &id
		m.rows = append(m.rows, r)
	}
	return nil
}

func (m *memBackend) DeleteMessage(ctx context.Context, actorID, id string) error {
	if err := m.record("delete:" + actorID + ":" + id); err != nil {
		return err
	}
	for i, r := range m.rows {
		if string(*r.ID) == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *memBackend) SetPinned(ctx context.Context, actorID, id string, pinned bool) error {
	if err := m.record(fmt.Sprintf("pin:%s:%s:%t", actorID, id, pinned)); err != nil {
		return err
	}
	for i, r := range m.rows {
		if string(*r.ID) == id {
			p := pinned
			m.rows[i].IsPinned = &p
			return nil
		}
	}
	return common.ErrNotFound
}

func (m *memBackend) GetProfile(ctx context.Context, deviceID string) (*ProfileRow, error) {
	if err := m.record("get-profile:" + deviceID); err != nil {
		return nil, err
	}
	row, ok := m.profiles[deviceID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", deviceID, common.ErrNotFound)
	}
	return &row, nil
}

func (m *memBackend) UpsertProfile(ctx context.Context, row ProfileRow) error {
	if err := m.record("upsert-profile:" + row.ID); err != nil {
		return err
	}
	m.profiles[row.ID] = row
	return nil
}

func (m *memBackend) Close() error { return nil }
