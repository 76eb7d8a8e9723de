package issues

import "go.uber.org/multierr"

// List is a Sink that keeps every issue in arrival order.
type List struct {
	items   []Issue
	highest Severity
}

// NewList returns an empty list.
func NewList() *List {
	return &List{}
}

// Add appends an issue.
func (l *List) Add(i Issue) {
	if len(l.items) == 0 || i.Severity > l.highest {
		l.highest = i.Severity
	}
	l.items = append(l.items, i)
}

// Merge appends all issues from other.
func (l *List) Merge(other *List) {
	if other == nil {
		return
	}
	for _, i := range other.items {
		l.Add(i)
	}
}

// Issues returns the collected issues.
func (l *List) Issues() []Issue {
	return l.items
}

// Len returns the number of collected issues.
func (l *List) Len() int {
	return len(l.items)
}

// Highest returns the most serious severity seen. ok is false when empty.
func (l *List) Highest() (s Severity, ok bool) {
	if len(l.items) == 0 {
		return Note, false
	}
	return l.highest, true
}

// HasStop reports whether any Stop issue was recorded.
func (l *List) HasStop() bool {
	s, ok := l.Highest()
	return ok && s == Stop
}

// Count returns the number of issues with the given severity.
func (l *List) Count(s Severity) int {
	n := 0
	for _, i := range l.items {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// WithKey returns the issues recorded under key.
func (l *List) WithKey(key string) []Issue {
	var out []Issue
	for _, i := range l.items {
		if i.Key == key {
			out = append(out, i)
		}
	}
	return out
}

// Err combines every Stop issue into one error, or returns nil.
func (l *List) Err() error {
	var err error
	for _, i := range l.items {
		if i.Severity == Stop {
			err = multierr.Append(err, i.Err())
		}
	}
	return err
}

// Clear removes all issues.
func (l *List) Clear() {
	l.items = l.items[:0]
	l.highest = Note
}
