package domain

import "time"

// Message is a provider-agnostic snapshot of an email message.
// It carries the minimum fields needed for categorization and action
// decisions; providers extract them from their native formats. A Message
// is never mutated in place; changes are expressed as an Action.
type Message struct {
	ID        string
	Sender    string
	Subject   string
	Date      time.Time // zero when the provider could not supply one
	Labels    map[string]struct{}
	IsRead    bool
	IsStarred bool
}

// HasLabel reports whether the message currently carries the label.
func (m *Message) HasLabel(label string) bool {
	_, ok := m.Labels[label]
	return ok
}

// AgeHours returns the message age in hours relative to now, or -1 when
// the message has no usable date.
func (m *Message) AgeHours(now time.Time) float64 {
	if m.Date.IsZero() {
		return -1
	}
	return now.Sub(m.Date).Hours()
}
