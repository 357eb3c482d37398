package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/treehole/internal/client/config"
	"github.com/dmitrijs2005/treehole/internal/client/models"
	"github.com/dmitrijs2005/treehole/internal/common"
)

func (a *App) Profile(ctx context.Context) error {
	u := a.wall.User()
	if u == nil {
		return common.ErrNotReady
	}

	printlnFn("Nickname:", u.Nickname)
	printlnFn("Avatar:  ", u.Avatar)
	printlnFn("Device:  ", u.DeviceID)
	switch {
	case u.IsVip && u.VipExpiry != nil:
		printlnFn("VIP until", time.UnixMilli(*u.VipExpiry).Format(timeLayout))
	case u.IsVip:
		printlnFn("VIP member")
	default:
		printlnFn("Regular member")
	}
	return nil
}

func (a *App) Nickname(ctx context.Context, name string) error {
	u := a.wall.User()
	if u == nil {
		return common.ErrNotReady
	}
	if err := a.wall.UpdateProfile(ctx, models.UserProfile{Nickname: name, Avatar: u.Avatar}); err != nil {
		return err
	}
	printlnFn("Nickname updated.")
	return nil
}

// Avatar uploads the image at path and makes it the profile picture.
func (a *App) Avatar(ctx context.Context, path string) error {
	u := a.wall.User()
	if u == nil {
		return common.ErrNotReady
	}
	if !a.uploader.Enabled() {
		return common.ErrAvatarStorageDisabled
	}

	url, err := a.uploader.Upload(ctx, u.DeviceID, path)
	if err != nil {
		return err
	}
	if err := a.wall.UpdateProfile(ctx, models.UserProfile{Nickname: u.Nickname, Avatar: url}); err != nil {
		return err
	}
	printlnFn("Avatar updated:", url)
	return nil
}

func (a *App) UpgradeVIP(ctx context.Context) error {
	if u := a.wall.User(); u != nil && u.IsVip {
		printlnFn("You are already a VIP member.")
		return nil
	}
	if err := a.wall.UpgradeVIP(ctx); err != nil {
		return err
	}
	printlnFn("Welcome to VIP! You can now pin and delete messages.")
	return nil
}

func (a *App) Claim(ctx context.Context, link string) error {
	if err := a.wall.ClaimFreeVIP(ctx, link); err != nil {
		return err
	}
	printlnFn("Thanks for sharing! VIP is active for 7 days.")
	return nil
}

func (a *App) Status(ctx context.Context) error {
	printlnFn("Mode:    ", a.wall.State())
	if a.remoteConfigured {
		printlnFn("Remote:   configured")
	} else {
		printlnFn("Remote:   not configured")
	}
	printlnFn("Messages:", len(a.wall.Messages()))
	if a.snapshot != nil {
		at, ok, err := a.snapshot.SnapshotSavedAt(ctx)
		switch {
		case err != nil:
			a.log.Warn(ctx, "snapshot time unavailable", "error", err)
		case ok:
			printlnFn("Saved:   ", at.Local().Format(time.DateTime))
		default:
			printlnFn("Saved:    never")
		}
	}
	if u := a.wall.User(); u != nil {
		printlnFn("Device:  ", u.DeviceID)
	}
	if !a.remoteConfigured {
		printlnFn(fmt.Sprintf("Set %s and %s to sync with the cloud.", config.EnvRemoteURL, config.EnvAPIKey))
	}
	return nil
}
