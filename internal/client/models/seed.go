package models

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/treehole/internal/timex"
)

// SeedEntry describes one sample message. Age is subtracted from the
// current time when the seed is materialized.
type SeedEntry struct {
	To      string         `json:"to"`
	Content string         `json:"content"`
	Age     timex.Duration `json:"age"`
	Pinned  bool           `json:"pinned"`
}

// Seed is the demo content injected into an empty wall.
type Seed []SeedEntry

// DefaultSeed is used when no seed file is configured.
var DefaultSeed = Seed{
	{
		To:      "林晚秋",
		Content: "那天在三号教学楼楼道里闻到的栀子花香，其实是你身上的味道对吧？",
		Age:     timex.Duration{Duration: time.Hour},
		Pinned:  true,
	},
	{
		To:      "张煜恒",
		Content: "祝你在伦敦一切顺利，记得带伞。",
		Age:     timex.Duration{Duration: 2 * time.Hour},
	},
}

// Messages materializes the seed relative to now, with ids m1, m2, ...
// The result is in display order.
func (s Seed) Messages(now time.Time) []Message {
	out := make([]Message, 0, len(s))
	for i, e := range s {
		out = append(out, Message{
			ID:        fmt.Sprintf("m%d", i+1),
			To:        e.To,
			Content:   e.Content,
			Timestamp: Millis(now.Add(-e.Age.Duration)),
			IsPinned:  e.Pinned,
		})
	}
	SortMessages(out)
	return out
}

// LoadSeedFile reads a JSON array of SeedEntry values.
func LoadSeedFile(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var s Seed
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	for i, e := range s {
		if e.To == "" || e.Content == "" {
			return nil, fmt.Errorf("seed entry %d: recipient and content are required", i)
		}
	}
	return s, nil
}
