package execution

import (
	"strings"
)

// TruncationMarker is appended to shortened messages.
const TruncationMarker = " ... [TRUNCATED]"

// MessageTruncator shortens error messages for compact reports.
type MessageTruncator interface {
	Truncate(msg string, limit int) (string, bool)
}

// FirstLineTruncator keeps the first line of a message and cuts it at limit bytes.
// Multi-line messages, such as the list of accepted first-line formats, are
// reduced to their opening sentence.
type FirstLineTruncator struct{}

// Truncate returns the shortened message and whether anything was removed.
// A limit of zero or less disables truncation.
func (t *FirstLineTruncator) Truncate(msg string, limit int) (string, bool) {
	if limit <= 0 {
		return msg, false
	}

	out := msg
	cut := false
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = out[:i]
		cut = true
	}
	if len(out) > limit {
		out = out[:limit]
		cut = true
	}
	if cut {
		out += TruncationMarker
	}
	return out, cut
}
