package pipeline

import (
	"fmt"
	"strings"
)

// QualityError marks a section whose best draft stayed below the confidence
// threshold after every allowed attempt. It fails the section, not the
// siblings or the batch.
type QualityError struct {
	Topic      string
	Confidence float64
	Attempts   int
	Issues     []string
}

func (e *QualityError) Error() string {
	msg := fmt.Sprintf("section %q below confidence threshold after %d attempts (best %.2f)",
		e.Topic, e.Attempts, e.Confidence)
	if len(e.Issues) > 0 {
		msg += ": " + strings.Join(e.Issues, "; ")
	}
	return msg
}
