package pipeline

import (
	"encoding/json"
	"strings"
)

// parseTopicList decodes the topic-split response. The model is asked for a
// bare JSON array but often wraps it in a code fence or falls back to a
// bulleted list; both are tolerated. An empty result means the split failed.
func parseTopicList(raw string) []string {
	cleaned := strings.TrimSpace(raw)
	cleaned = stripCodeFence(cleaned)

	var topics []string
	if err := json.Unmarshal([]byte(cleaned), &topics); err == nil {
		return trimNonEmpty(topics)
	}
	return topicsFromListMarkers(cleaned)
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	lines := strings.Split(s, "\n")
	if len(lines) < 3 {
		return s
	}
	if strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[1 : len(lines)-1]
	} else {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func topicsFromListMarkers(s string) []string {
	var topics []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line[0] != '-' && line[0] != '*' && (line[0] < '0' || line[0] > '9') {
			continue
		}
		topic := strings.TrimSpace(strings.TrimLeft(line, "-*0123456789.) "))
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}

func trimNonEmpty(items []string) []string {
	out := items[:0]
	for _, item := range items {
		if t := strings.TrimSpace(item); t != "" {
			out = append(out, t)
		}
	}
	return out
}
