package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/treehole/internal/client/avatar"
	"github.com/dmitrijs2005/treehole/internal/client/client"
	"github.com/dmitrijs2005/treehole/internal/client/config"
	"github.com/dmitrijs2005/treehole/internal/client/localstore"
	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/client/remote"
	"github.com/dmitrijs2005/treehole/internal/client/repositories/kv"
	"github.com/dmitrijs2005/treehole/internal/client/services"
	"github.com/dmitrijs2005/treehole/internal/logging"
)

// wall is the controller surface the commands use.
type wall interface {
	Start(ctx context.Context) error
	Close()
	State() services.State
	Messages() []models.Message
	User() *models.UserProfile
	CanMutatePrivileged() bool
	Search(query string) models.SearchResult
	AddMessage(ctx context.Context, to, content string) error
	DeleteMessage(ctx context.Context, id string) error
	TogglePin(ctx context.Context, id string) error
	UpdateProfile(ctx context.Context, p models.UserProfile) error
	UpgradeVIP(ctx context.Context) error
	ClaimFreeVIP(ctx context.Context, link string) error
	Advisory() string
	DismissAdvisory()
}

// snapshotter reports the age of the local fallback copy.
type snapshotter interface {
	SnapshotSavedAt(ctx context.Context) (time.Time, bool, error)
}

type avatarUploader interface {
	Enabled() bool
	Upload(ctx context.Context, deviceID, path string) (string, error)
}

type App struct {
	wall     wall
	uploader avatarUploader
	snapshot snapshotter
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
	width    int

	remoteConfigured bool
	notice           string
	closers          []io.Closer
}

// NewApp wires the local store, the remote backend and the controller
// from cfg. A remote that cannot be opened leaves the app in local mode
// with a notice instead of failing.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	client.SetMigrationLogger(log)

	db, err := client.OpenDataDir(ctx, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open local database: %w", err)
	}

	var seed models.Seed
	if cfg.SeedFile != "" {
		if seed, err = models.LoadSeedFile(cfg.SeedFile); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	store := localstore.New(kv.NewSQLiteRepository(db), seed)

	a := &App{
		uploader: avatar.NewUploader(cfg.Avatar),
		snapshot: store,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
		width:    terminalWidth(),
		closers:  []io.Closer{db},
	}

	backend, err := client.OpenBackend(ctx, cfg, log)
	if err != nil {
		log.Warn(ctx, "remote backend unavailable", "error", err)
		a.notice = fmt.Sprintf("Cloud is not reachable (%v). Working locally.", err)
		backend = nil
	}
	adapter := remote.NewAdapter(backend, log)
	a.closers = append(a.closers, adapter)
	a.remoteConfigured = adapter.Configured()

	a.wall = services.NewController(adapter, store,
		services.WithLogger(log),
		services.WithStartupTimeout(cfg.StartupTimeout),
	)
	return a, nil
}

// Run loads the wall and serves the REPL until the user leaves. A panic
// is logged with its stack and reported as a request to restart.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error(ctx, "unexpected failure", "panic", r, "stack", string(debug.Stack()))
			printlnFn("Something went wrong and treehole has to stop. Please restart it.")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	defer a.Close()

	printlnFn("Welcome to treehole (type 'help' for commands)")
	if a.notice != "" {
		printlnFn(a.notice)
	}
	printlnFn("Loading the wall...")

	if err := a.wall.Start(ctx); err != nil {
		return err
	}
	a.FlushAdvisory()
	_ = a.List(ctx)

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close waits for background work and releases connections.
func (a *App) Close() {
	a.wall.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) status() string {
	s := a.wall.State().String()
	if u := a.wall.User(); u != nil {
		s = u.Nickname + " " + s
		if u.IsVip {
			s += " VIP"
		}
	}
	return fmt.Sprintf("(%s)", s)
}

// FlushAdvisory prints and dismisses the pending advisory. It reports
// whether one was printed.
func (a *App) FlushAdvisory() bool {
	msg := a.wall.Advisory()
	if msg == "" {
		return false
	}
	printlnFn("Notice:", msg)
	a.wall.DismissAdvisory()
	return true
}
