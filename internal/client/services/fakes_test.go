package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/treehole/internal/client/access"
	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
)

var errBoom = errors.New("boom")

// fakeRemote is an in-memory RemoteStore. Per-operation errors are keyed
// by the call name recorded in calls.
type fakeRemote struct {
	mu       sync.Mutex
	disabled bool
	msgs     []models.Message
	profiles map[string]models.UserProfile
	nextID   int
	calls    []string
	errs     map[string]error

	// listGate, when set, blocks ListMessages until closed or ctx is done.
	listGate     chan struct{}
	ignoreCancel bool
}

func newFakeRemote(msgs ...models.Message) *fakeRemote {
	return &fakeRemote{msgs: msgs, profiles: map[string]models.UserProfile{}, errs: map[string]error{}}
}

func (f *fakeRemote) record(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeRemote) setErr(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeRemote) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) Configured() bool { return !f.disabled }

func (f *fakeRemote) ListMessages(ctx context.Context) ([]models.Message, error) {
	if f.listGate != nil {
		if f.ignoreCancel {
			<-f.listGate
		} else {
			select {
			case <-f.listGate:
			case <-ctx.Done():
				return nil, fmt.Errorf("list messages: %w: %w", common.ErrTimeout, ctx.Err())
			}
		}
	}
	if err := f.record("list"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := models.CloneMessages(f.msgs)
	models.SortMessages(out)
	return out, nil
}

func (f *fakeRemote) AddMessage(ctx context.Context, to, content string, ts int64) error {
	if err := f.record("add"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.msgs = append(f.msgs, models.Message{ID: "r" + strconv.Itoa(f.nextID), To: to, Content: content, Timestamp: ts})
	return nil
}

func (f *fakeRemote) BatchInsertMessages(ctx context.Context, msgs []models.Message) error {
	if err := f.record("batch"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range msgs {
		f.nextID++
		m.ID = "r" + strconv.Itoa(f.nextID)
		f.msgs = append(f.msgs, m)
	}
	return nil
}

func (f *fakeRemote) DeleteMessage(ctx context.Context, actor *models.UserProfile, id string) error {
	if err := access.RequirePrivileged(actor, "delete message"); err != nil {
		return err
	}
	if err := f.record("delete"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := models.IndexByID(f.msgs, id); i >= 0 {
		f.msgs = append(f.msgs[:i], f.msgs[i+1:]...)
	}
	return nil
}

func (f *fakeRemote) SetPinned(ctx context.Context, actor *models.UserProfile, id string, pinned bool) error {
	if err := access.RequirePrivileged(actor, "set pinned"); err != nil {
		return err
	}
	if err := f.record("pin"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := models.IndexByID(f.msgs, id)
	if i < 0 {
		return common.ErrNotFound
	}
	f.msgs[i].IsPinned = pinned
	return nil
}

func (f *fakeRemote) GetProfile(ctx context.Context, deviceID string) (*models.UserProfile, error) {
	if err := f.record("get-profile"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[deviceID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeRemote) UpsertProfile(ctx context.Context, deviceID string, p models.UserProfile) error {
	if err := f.record("upsert-profile"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[deviceID] = p
	return nil
}

// fakeLocal is an in-memory LocalStore.
type fakeLocal struct {
	mu       sync.Mutex
	deviceID string
	seed     []models.Message
	snapshot []models.Message
	has      bool
	profile  *models.UserProfile
	mirrors  int

	saveErr    error
	loadErr    error
	profileErr error
	deviceErr  error
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{
		deviceID: "u_device",
		seed: []models.Message{
			{ID: "m1", To: "Seed A", Content: "pinned seed", Timestamp: 100, IsPinned: true},
			{ID: "m2", To: "Seed B", Content: "older seed", Timestamp: 50},
		},
	}
}

func (l *fakeLocal) Seed() []models.Message { return models.CloneMessages(l.seed) }

func (l *fakeLocal) LoadMessages(ctx context.Context) ([]models.Message, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	if !l.has {
		return l.Seed(), nil
	}
	return models.CloneMessages(l.snapshot), nil
}

func (l *fakeLocal) SaveMessages(ctx context.Context, msgs []models.Message) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.saveErr != nil {
		return l.saveErr
	}
	l.snapshot = models.CloneMessages(msgs)
	l.has = true
	return nil
}

func (l *fakeLocal) Snapshot() ([]models.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return models.CloneMessages(l.snapshot), l.has
}

func (l *fakeLocal) DeviceID(ctx context.Context) (string, error) {
	if l.deviceErr != nil {
		return "", l.deviceErr
	}
	return l.deviceID, nil
}

func (l *fakeLocal) LoadProfile(ctx context.Context) (*models.UserProfile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.profile == nil {
		return nil, nil
	}
	p := *l.profile
	return &p, nil
}

func (l *fakeLocal) SaveProfile(ctx context.Context, p models.UserProfile) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.profileErr != nil {
		return l.profileErr
	}
	l.profile = &p
	return nil
}

func (l *fakeLocal) Mirror(ctx context.Context, msgs []models.Message, p models.UserProfile) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.mirrors++
	if l.saveErr != nil {
		return l.saveErr
	}
	l.snapshot = models.CloneMessages(msgs)
	l.has = true
	l.profile = &p
	return nil
}
