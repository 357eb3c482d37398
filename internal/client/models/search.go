package models

import "strings"

// RecommendationLimit caps the list shown when a search finds nothing.
const RecommendationLimit = 10

// SearchResult is what a recipient search displays. Fallback is set when
// nothing matched and Messages holds recommendations instead.
type SearchResult struct {
	Query    string
	Messages []Message
	Fallback bool
}

// Search filters msgs by a case-insensitive substring of the recipient.
// An empty query returns everything. msgs is expected in display order.
func Search(msgs []Message, query string) SearchResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return SearchResult{Messages: CloneMessages(msgs)}
	}

	matched := make([]Message, 0)
	for _, m := range msgs {
		if strings.Contains(strings.ToLower(m.To), q) {
			matched = append(matched, m)
		}
	}
	if len(matched) > 0 {
		return SearchResult{Query: q, Messages: matched}
	}

	n := min(len(msgs), RecommendationLimit)
	return SearchResult{Query: q, Messages: CloneMessages(msgs[:n]), Fallback: true}
}
