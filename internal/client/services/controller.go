// Package services holds the sync controller: it owns the wall's messages,
// the current user and the connection mode, and routes every mutation to
// the cloud or to the local snapshot.
package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/treehole/internal/client/access"
	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/dmitrijs2005/treehole/internal/logging"
	"github.com/google/uuid"
)

const (
	DefaultStartupTimeout = 8 * time.Second
	FreeVIPPeriod         = 7 * 24 * time.Hour
	freeVIPMarker         = "douyin"

	cancelledAdvisory = "startup cancelled, switched to local mode"
)

type Option func(*Controller)

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithStartupTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type Controller struct {
	remote  RemoteStore
	local   LocalStore
	log     logging.Logger
	timeout time.Duration
	now     func() time.Time
	newID   func() string

	wg sync.WaitGroup

	mu         sync.Mutex
	started    bool
	state      State
	messages   []models.Message
	user       *models.UserProfile
	advisory   string
	generation uint64
}

func NewController(remote RemoteStore, local LocalStore, opts ...Option) *Controller {
	c := &Controller{
		remote:   remote,
		local:    local,
		log:      logging.Discard(),
		timeout:  DefaultStartupTimeout,
		now:      time.Now,
		newID:    uuid.NewString,
		messages: []models.Message{},
	}
	for _, o := range opts {
		o(c)
	}
	c.log = c.log.With("component", "controller")
	return c
}

type cloudResult struct {
	messages   []models.Message
	profile    *models.UserProfile
	profileErr error
	err        error
}

// Start loads the wall once. Without a remote it goes straight to local
// mode. Otherwise the cloud load races the startup timeout; when the timer
// wins the controller falls back to local mode and the late result is
// discarded. Cancelling ctx falls back the same way and Start returns
// ctx.Err(). Otherwise Start only fails when the local store itself is
// unusable.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return common.ErrAlreadyStarted
	}
	c.started = true
	c.state = StateLoading
	c.mu.Unlock()

	// Local reads must survive a cancelled startup.
	localCtx := context.WithoutCancel(ctx)
	deviceID, err := c.local.DeviceID(localCtx)
	if err != nil {
		return fmt.Errorf("device id: %w", err)
	}
	user := c.localProfile(localCtx, deviceID)

	c.mu.Lock()
	c.user = &user
	gen := c.generation
	c.mu.Unlock()

	if c.remote == nil || !c.remote.Configured() {
		c.log.Info(ctx, "no remote configured, starting in local mode")
		c.mu.Lock()
		c.enterLocalLocked(localCtx, StateLocalMode, "")
		c.mu.Unlock()
		return nil
	}
	if err := ctx.Err(); err != nil {
		c.fallback(localCtx, cancelledAdvisory)
		return err
	}

	loadCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		res := c.loadCloud(loadCtx, user)
		c.applyCloud(loadCtx, gen, res)
	}()

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		c.fallback(localCtx, fmt.Sprintf("cloud did not answer within %s, switched to local mode", c.timeout))
		return nil
	case <-ctx.Done():
		c.fallback(localCtx, cancelledAdvisory)
		return ctx.Err()
	}
}

// Close waits for a startup load that outlived Start.
func (c *Controller) Close() {
	c.wg.Wait()
}

func (c *Controller) localProfile(ctx context.Context, deviceID string) models.UserProfile {
	p, err := c.local.LoadProfile(ctx)
	if err != nil {
		c.log.Warn(ctx, "local profile unreadable, using default", "error", err)
	}
	if p == nil || p.DeviceID != deviceID {
		return models.DefaultProfile(deviceID)
	}
	return *p
}

func (c *Controller) loadCloud(ctx context.Context, user models.UserProfile) cloudResult {
	msgs, err := c.remote.ListMessages(ctx)
	if err != nil {
		return cloudResult{err: err}
	}

	if len(msgs) == 0 {
		c.log.Info(ctx, "remote wall is empty, inserting seed messages")
		if err := c.remote.BatchInsertMessages(ctx, c.local.Seed()); err != nil {
			return cloudResult{err: err}
		}
		if msgs, err = c.remote.ListMessages(ctx); err != nil {
			return cloudResult{err: err}
		}
	}

	res := cloudResult{messages: msgs}
	p, err := c.remote.GetProfile(ctx, user.DeviceID)
	switch {
	case err != nil:
		res.profileErr = err
	case p != nil:
		res.profile = p
	default:
		if err := c.remote.UpsertProfile(ctx, user.DeviceID, user); err != nil {
			res.profileErr = err
		}
	}
	return res
}

// applyCloud commits a cloud load started under loadCtx. A load that
// failed because loadCtx was cancelled is treated as a cancelled startup.
func (c *Controller) applyCloud(loadCtx context.Context, gen uint64, res cloudResult) {
	ctx := context.WithoutCancel(loadCtx)
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Info(ctx, "discarding late cloud result", "generation", gen, "current", c.generation)
		return
	}

	if res.err != nil && loadCtx.Err() != nil {
		c.generation++
		c.log.Warn(ctx, "cloud load interrupted", "error", res.err)
		c.enterLocalLocked(ctx, StateLocalMode, cancelledAdvisory)
		return
	}
	if res.err != nil {
		c.log.Error(ctx, "cloud load failed", "error", res.err)
		c.enterLocalLocked(ctx, StateError, fmt.Sprintf("cloud load failed: %v", res.err))
		return
	}

	c.state = StateCloudSynced
	c.messages = res.messages
	if res.profile != nil {
		c.user = res.profile
	}
	if res.profileErr != nil {
		c.log.Warn(ctx, "profile sync failed", "error", res.profileErr)
		c.advisory = fmt.Sprintf("profile sync failed: %v", res.profileErr)
	}
	c.mirrorLocked(ctx)
}

func (c *Controller) fallback(ctx context.Context, advisory string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateLoading {
		return
	}
	c.generation++
	c.log.Warn(ctx, "falling back to local mode", "reason", advisory)
	c.enterLocalLocked(ctx, StateLocalMode, advisory)
}

func (c *Controller) enterLocalLocked(ctx context.Context, state State, advisory string) {
	c.state = state
	c.advisory = advisory

	msgs, err := c.local.LoadMessages(ctx)
	if err != nil {
		c.log.Error(ctx, "local snapshot unreadable, showing seed messages", "error", err)
		msgs = c.local.Seed()
		if c.advisory == "" {
			c.advisory = fmt.Sprintf("local data unreadable: %v", err)
		}
	}
	c.messages = msgs
}

// mirrorLocked keeps the local snapshot in step with the cloud wall.
func (c *Controller) mirrorLocked(ctx context.Context) {
	if err := c.local.Mirror(ctx, c.messages, *c.user); err != nil {
		c.log.Warn(ctx, "local mirror failed", "error", err)
	}
}

func (c *Controller) failLocked(ctx context.Context, action string, err error) error {
	c.log.Error(ctx, action+" failed", "error", err)
	c.advisory = fmt.Sprintf("%s failed: %v", action, err)
	return err
}

func (c *Controller) readyLocked() error {
	if c.state == StateLoading || c.user == nil {
		return common.ErrNotReady
	}
	return nil
}

func (c *Controller) cloudLocked() bool {
	return c.state == StateCloudSynced
}

// refreshLocked re-reads the cloud wall after a confirmed write. A failed
// read keeps the current list and raises an advisory.
func (c *Controller) refreshLocked(ctx context.Context) bool {
	msgs, err := c.remote.ListMessages(ctx)
	if err != nil {
		c.log.Warn(ctx, "refresh failed", "error", err)
		c.advisory = fmt.Sprintf("saved, but refreshing the wall failed: %v", err)
		return false
	}
	c.messages = msgs
	c.mirrorLocked(ctx)
	return true
}

// AddMessage posts a message to the wall.
func (c *Controller) AddMessage(ctx context.Context, to, content string) error {
	to, content = strings.TrimSpace(to), strings.TrimSpace(content)
	if to == "" || content == "" {
		return fmt.Errorf("recipient and content are required: %w", common.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}

	ts := models.Millis(c.now())

	if c.cloudLocked() {
		if err := c.remote.AddMessage(ctx, to, content, ts); err != nil {
			return c.failLocked(ctx, "post message", err)
		}
		c.refreshLocked(ctx)
		return nil
	}

	next := make([]models.Message, 0, len(c.messages)+1)
	next = append(next, models.Message{ID: c.newID(), To: to, Content: content, Timestamp: ts})
	next = append(next, c.messages...)
	models.SortMessages(next)
	if err := c.local.SaveMessages(ctx, next); err != nil {
		return c.failLocked(ctx, "post message", err)
	}
	c.messages = next
	return nil
}

// DeleteMessage removes a message. It needs VIP.
func (c *Controller) DeleteMessage(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}
	if err := access.RequirePrivileged(c.user, "delete message"); err != nil {
		return err
	}

	idx := models.IndexByID(c.messages, id)
	if idx < 0 {
		return fmt.Errorf("message %s: %w", id, common.ErrNotFound)
	}

	next := make([]models.Message, 0, len(c.messages)-1)
	next = append(next, c.messages[:idx]...)
	next = append(next, c.messages[idx+1:]...)

	if c.cloudLocked() {
		if err := c.remote.DeleteMessage(ctx, c.user, id); err != nil {
			return c.failLocked(ctx, "delete message", err)
		}
		c.messages = next
		c.mirrorLocked(ctx)
		return nil
	}

	if err := c.local.SaveMessages(ctx, next); err != nil {
		return c.failLocked(ctx, "delete message", err)
	}
	c.messages = next
	return nil
}

// TogglePin flips a message's pinned flag. It needs VIP.
func (c *Controller) TogglePin(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}
	if err := access.RequirePrivileged(c.user, "pin message"); err != nil {
		return err
	}

	idx := models.IndexByID(c.messages, id)
	if idx < 0 {
		return fmt.Errorf("message %s: %w", id, common.ErrNotFound)
	}

	next := models.CloneMessages(c.messages)
	next[idx].IsPinned = !next[idx].IsPinned
	models.SortMessages(next)

	if c.cloudLocked() {
		if err := c.remote.SetPinned(ctx, c.user, id, next[models.IndexByID(next, id)].IsPinned); err != nil {
			return c.failLocked(ctx, "pin message", err)
		}
		if !c.refreshLocked(ctx) {
			c.messages = next
		}
		return nil
	}

	if err := c.local.SaveMessages(ctx, next); err != nil {
		return c.failLocked(ctx, "pin message", err)
	}
	c.messages = next
	return nil
}

// UpdateProfile applies the nickname and avatar of p to the current user.
// Device id and VIP fields always come from the current profile.
func (c *Controller) UpdateProfile(ctx context.Context, p models.UserProfile) error {
	nickname := strings.TrimSpace(p.Nickname)
	if nickname == "" {
		return fmt.Errorf("nickname is required: %w", common.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}

	next := *c.user
	next.Nickname = nickname
	if avatar := strings.TrimSpace(p.Avatar); avatar != "" {
		next.Avatar = avatar
	}
	return c.saveProfileLocked(ctx, next)
}

// UpgradeVIP grants VIP without an expiry.
func (c *Controller) UpgradeVIP(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}

	p := *c.user
	p.IsVip = true
	p.VipExpiry = nil
	return c.saveProfileLocked(ctx, p)
}

// ClaimFreeVIP grants a week of VIP for a shared short-video link.
func (c *Controller) ClaimFreeVIP(ctx context.Context, link string) error {
	if !strings.Contains(strings.ToLower(link), freeVIPMarker) {
		return fmt.Errorf("link is not a %s share: %w", freeVIPMarker, common.ErrValidation)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}

	expiry := models.Millis(c.now().Add(FreeVIPPeriod))
	p := *c.user
	p.IsVip = true
	p.VipExpiry = &expiry
	return c.saveProfileLocked(ctx, p)
}

func (c *Controller) saveProfileLocked(ctx context.Context, p models.UserProfile) error {
	if c.cloudLocked() {
		if err := c.remote.UpsertProfile(ctx, p.DeviceID, p); err != nil {
			return c.failLocked(ctx, "save profile", err)
		}
		c.user = &p
		if err := c.local.SaveProfile(ctx, p); err != nil {
			c.log.Warn(ctx, "local profile copy failed", "error", err)
		}
		return nil
	}

	if err := c.local.SaveProfile(ctx, p); err != nil {
		return c.failLocked(ctx, "save profile", err)
	}
	c.user = &p
	return nil
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Messages returns a copy of the wall in display order.
func (c *Controller) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.CloneMessages(c.messages)
}

// User returns a copy of the current profile, or nil before Start.
func (c *Controller) User() *models.UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

func (c *Controller) CanMutatePrivileged() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return access.CanMutatePrivileged(c.user)
}

// Advisory returns the pending notice for the user, if any.
func (c *Controller) Advisory() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.advisory
}

func (c *Controller) DismissAdvisory() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.advisory = ""
}

// Search filters the wall by recipient.
func (c *Controller) Search(query string) models.SearchResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return models.Search(c.messages, query)
}
