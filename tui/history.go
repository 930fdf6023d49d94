package tui

// History keeps submitted input lines for up/down recall. The line being
// typed when browsing starts is kept as a draft and comes back after the
// newest entry.
type History struct {
	entries []string
	limit   int
	pos     int // len(entries) when not browsing
	draft   string
}

// NewHistory creates a history holding at most limit lines.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Push records a submitted line and stops browsing. Repeating the newest
// line is a no-op.
func (h *History) Push(line string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != line {
		h.entries = append(h.entries, line)
		if over := len(h.entries) - h.limit; over > 0 {
			h.entries = h.entries[over:]
		}
	}
	h.Reset()
}

// Len returns the number of stored lines.
func (h *History) Len() int { return len(h.entries) }

// Prev steps to an older line. current is the input line as shown; it is
// kept as the draft when browsing starts. ok is false when there is no
// history.
func (h *History) Prev(current string) (line string, ok bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if !h.browsing() {
		h.draft = current
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// Next steps to a newer line. Stepping past the newest line returns the
// draft. ok is false when not browsing.
func (h *History) Next() (line string, ok bool) {
	if !h.browsing() {
		return "", false
	}
	h.pos++
	if h.pos == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.pos], true
}

// Reset stops browsing and drops the draft.
func (h *History) Reset() {
	h.pos = len(h.entries)
	h.draft = ""
}

func (h *History) browsing() bool { return h.pos < len(h.entries) }
