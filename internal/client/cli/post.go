package cli

import (
	"context"

	"github.com/dmitrijs2005/treehole/internal/common"
)

// Post prompts for a recipient and a multiline message and publishes it.
func (a *App) Post(ctx context.Context) error {
	to, err := GetSimpleText(a.reader, "To whom?", a.out)
	if err != nil {
		return err
	}
	content, err := GetMultiline(a.reader, "Your message", a.out)
	if err != nil {
		return err
	}

	if err := a.wall.AddMessage(ctx, to, content); err != nil {
		return err
	}
	printlnFn("Posted.")
	return nil
}

// Pin toggles the pinned flag of a message.
func (a *App) Pin(ctx context.Context, id string) error {
	if err := a.wall.TogglePin(ctx, id); err != nil {
		return err
	}
	printlnFn("Done.")
	return nil
}

// Delete removes a message after confirmation. Non-VIP users get the
// upgrade offer without being asked.
func (a *App) Delete(ctx context.Context, id string) error {
	if !a.wall.CanMutatePrivileged() {
		return common.ErrUpgradeRequired
	}

	ok, err := Confirm(a.reader, "Delete message #"+id+"?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Cancelled.")
		return nil
	}

	if err := a.wall.DeleteMessage(ctx, id); err != nil {
		return err
	}
	printlnFn("Deleted.")
	return nil
}
