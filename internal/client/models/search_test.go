package models

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func wall() []Message {
	msgs := []Message{
		{ID: "1", To: "Alice", Timestamp: 5, IsPinned: true},
		{ID: "2", To: "alicia", Timestamp: 4},
		{ID: "3", To: "Bob", Timestamp: 3},
	}
	SortMessages(msgs)
	return msgs
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	res := Search(wall(), "   ")
	require.False(t, res.Fallback)
	require.Len(t, res.Messages, 3)
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	res := Search(wall(), " ALI ")
	require.False(t, res.Fallback)
	require.Equal(t, []string{"1", "2"}, ids(res.Messages))
	require.Equal(t, "ali", res.Query)
}

func TestSearch_NoMatchFallsBackToRecommendations(t *testing.T) {
	msgs := make([]Message, 0, 15)
	for i := 0; i < 15; i++ {
		msgs = append(msgs, Message{ID: fmt.Sprint(i), To: "x", Timestamp: int64(100 - i)})
	}

	res := Search(msgs, "nobody")
	require.True(t, res.Fallback)
	require.Len(t, res.Messages, RecommendationLimit)
	require.Equal(t, "0", res.Messages[0].ID)
}

func TestSearch_NoMatchOnEmptyWall(t *testing.T) {
	res := Search(nil, "nobody")
	require.True(t, res.Fallback)
	require.Empty(t, res.Messages)
}
