package transcription

import (
	"encoding/json"
	"strings"
)

type sentenceInfo struct {
	SentenceInfo []struct {
		Text      string  `json:"text"`
		StartTime float64 `json:"start_time"`
		EndTime   float64 `json:"end_time"`
	} `json:"sentence_info"`
}

// FlattenResult turns a provider result field into text. A JSON document of
// the form {"sentence_info":[{"text":...}]} yields the in-order concatenation
// of its texts and the matching segments; anything else is returned as-is.
func FlattenResult(raw string) (string, []Segment) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return raw, nil
	}
	var doc sentenceInfo
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil || doc.SentenceInfo == nil {
		return raw, nil
	}

	var sb strings.Builder
	segments := make([]Segment, 0, len(doc.SentenceInfo))
	for _, s := range doc.SentenceInfo {
		sb.WriteString(s.Text)
		segments = append(segments, Segment{
			Start: s.StartTime / 1000,
			End:   s.EndTime / 1000,
			Text:  s.Text,
		})
	}
	return sb.String(), segments
}
