package chat

import "sort"

// Summarize groups messages by session and returns one summary per session,
// newest conversation first. Within a session the message with the latest
// timestamp wins; on equal timestamps the first one seen is kept. Sessions
// with equal timestamps keep the order in which they first appeared.
func Summarize(messages []Message) []SessionSummary {
	index := make(map[string]int)
	out := make([]SessionSummary, 0)

	for _, m := range messages {
		i, ok := index[m.SessionID]
		if !ok {
			index[m.SessionID] = len(out)
			out = append(out, SessionSummary{
				SessionID:   m.SessionID,
				LastMessage: m.Content,
				Timestamp:   m.Timestamp.Time,
			})
			continue
		}
		if m.Timestamp.Time.After(out[i].Timestamp) {
			out[i].LastMessage = m.Content
			out[i].Timestamp = m.Timestamp.Time
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})
	return out
}
