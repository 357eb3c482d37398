// Package models defines the records the treehole client works with:
// messages on the wall, the per-device user profile and the seed set used
// to populate an empty wall.
package models

import (
	"slices"
	"time"
)

// Message is a single note addressed to a named recipient.
// JSON tags follow the local snapshot format (camelCase).
type Message struct {
	ID        string `json:"id"`
	To        string `json:"to"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
	IsPinned  bool   `json:"isPinned"`
}

// compareMessages orders pinned messages first, newer first within each group.
func compareMessages(a, b Message) int {
	if a.IsPinned != b.IsPinned {
		if a.IsPinned {
			return -1
		}
		return 1
	}
	switch {
	case a.Timestamp > b.Timestamp:
		return -1
	case a.Timestamp < b.Timestamp:
		return 1
	}
	return 0
}

// SortMessages sorts msgs in place in display order. Ties keep their
// relative order.
func SortMessages(msgs []Message) {
	slices.SortStableFunc(msgs, compareMessages)
}

// IsSorted reports whether msgs is already in display order.
func IsSorted(msgs []Message) bool {
	return slices.IsSortedFunc(msgs, compareMessages)
}

// IndexByID returns the position of the message with id, or -1.
func IndexByID(msgs []Message, id string) int {
	return slices.IndexFunc(msgs, func(m Message) bool { return m.ID == id })
}

// CloneMessages returns a copy that the caller may modify freely.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return []Message{}
	}
	return slices.Clone(msgs)
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
