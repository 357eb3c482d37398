package cli

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dmitrijs2005/treehole/internal/client/models"
)

const timeLayout = "2006-01-02 15:04"

func (a *App) List(ctx context.Context) error {
	msgs := a.wall.Messages()
	if len(msgs) == 0 {
		printlnFn("The wall is empty. Type 'post' to write the first message.")
		return nil
	}
	a.printMessages(msgs)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	res := a.wall.Search(query)
	if res.Fallback {
		printlnFn(fmt.Sprintf("Nobody named %q yet. Latest messages instead:", res.Query))
	} else if res.Query != "" {
		printlnFn(fmt.Sprintf("%d message(s) for %q:", len(res.Messages), res.Query))
	}
	a.printMessages(res.Messages)
	return nil
}

func (a *App) printMessages(msgs []models.Message) {
	sep := strings.Repeat("-", min(a.width, 60))
	for _, m := range msgs {
		printlnFn(formatMessage(m, a.width))
		printlnFn(sep)
	}
}

// formatMessage renders one message as a header line followed by the
// content wrapped to width.
func formatMessage(m models.Message, width int) string {
	var b strings.Builder
	if m.IsPinned {
		b.WriteString("[pinned] ")
	}
	fmt.Fprintf(&b, "#%s  To: %s  %s\n", m.ID, m.To, time.UnixMilli(m.Timestamp).Format(timeLayout))
	for _, line := range wrap(m.Content, width-2) {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// wrap splits s into lines of at most width runes, keeping its own line
// breaks.
func wrap(s string, width int) []string {
	if width < 10 {
		width = 10
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		for utf8.RuneCountInString(para) > width {
			r := []rune(para)
			out = append(out, string(r[:width]))
			para = string(r[width:])
		}
		out = append(out, para)
	}
	return out
}
