package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/treehole/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const helpText = `Available commands:
  list              show the wall
  search <name>     find messages by recipient
  post              write a message
  pin <id>          pin or unpin a message (VIP)
  delete <id>       delete a message (VIP)
  profile           show your profile
  nickname <name>   change your nickname
  avatar <path>     upload a new avatar image
  vip               upgrade to VIP
  claim <link>      claim a free week of VIP with a douyin share link
  status            show connection status
  exit | quit       leave the program`

const upgradeOffer = "This action is for VIP members. Type 'vip' to upgrade, or 'claim <douyin link>' for a free week."

// execIface defines the command surface the REPL needs. The real App type
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	List(ctx context.Context) error
	Search(ctx context.Context, query string) error
	Post(ctx context.Context) error
	Pin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Profile(ctx context.Context) error
	Nickname(ctx context.Context, name string) error
	Avatar(ctx context.Context, path string) error
	UpgradeVIP(ctx context.Context) error
	Claim(ctx context.Context, link string) error
	Status(ctx context.Context) error
	FlushAdvisory() bool
}

// runREPL reads commands line by line and dispatches them to a until EOF,
// "exit" or "quit". A pending advisory is printed after each command; a
// handler error is shown unless the advisory already reported it.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("treehole %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), cmd))

		var cmdErr error
		switch cmd {
		case "help", "?":
			printlnFn(helpText)

		case "l", "list":
			cmdErr = a.List(ctx)

		case "search":
			cmdErr = a.Search(ctx, arg)

		case "post":
			cmdErr = a.Post(ctx)

		case "pin":
			if arg == "" {
				printlnFn("Usage: pin <id>")
				continue
			}
			cmdErr = a.Pin(ctx, arg)

		case "delete", "rm":
			if arg == "" {
				printlnFn("Usage: delete <id>")
				continue
			}
			cmdErr = a.Delete(ctx, arg)

		case "profile":
			cmdErr = a.Profile(ctx)

		case "nickname":
			if arg == "" {
				printlnFn("Usage: nickname <name>")
				continue
			}
			cmdErr = a.Nickname(ctx, arg)

		case "avatar":
			if arg == "" {
				printlnFn("Usage: avatar <path>")
				continue
			}
			cmdErr = a.Avatar(ctx, arg)

		case "vip":
			cmdErr = a.UpgradeVIP(ctx)

		case "claim":
			if arg == "" {
				printlnFn("Usage: claim <link>")
				continue
			}
			cmdErr = a.Claim(ctx, arg)

		case "status":
			cmdErr = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		advised := a.FlushAdvisory()
		if !advised || userError(cmdErr) {
			showError(cmdErr)
		}
	}
}

func userError(err error) bool {
	for _, target := range []error{
		common.ErrUpgradeRequired, common.ErrNotFound, common.ErrValidation,
		common.ErrAvatarStorageDisabled, common.ErrNotReady,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func showError(err error) {
	switch {
	case err == nil:
	case errors.Is(err, common.ErrUpgradeRequired):
		printlnFn(upgradeOffer)
	case errors.Is(err, common.ErrNotFound):
		printlnFn("No such message.")
	case errors.Is(err, common.ErrValidation):
		printlnFn("Invalid input:", err)
	case errors.Is(err, common.ErrAvatarStorageDisabled):
		printlnFn("Avatar uploads are not configured.")
	case errors.Is(err, common.ErrNotReady):
		printlnFn("The wall is still loading, try again in a moment.")
	default:
		printlnFn("Error:", err)
	}
}
