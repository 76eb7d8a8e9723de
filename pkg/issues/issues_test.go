package issues

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		s    Severity
		want string
	}{
		{Note, "note"},
		{Warning, "warning"},
		{Stop, "stop"},
		{Severity(7), "Unknown(7)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.s.String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestList_Highest(t *testing.T) {
	l := NewList()
	if _, ok := l.Highest(); ok {
		t.Error("empty list should report no highest severity")
	}

	Notef(l, "a", "first")
	Warnf(l, "b", "second %d", 2)
	Notef(l, "c", "third")

	s, ok := l.Highest()
	if !ok || s != Warning {
		t.Errorf("Highest() = %v, %v; want warning, true", s, ok)
	}
	if l.HasStop() {
		t.Error("HasStop() should be false without a stop issue")
	}
	if l.Len() != 3 {
		t.Errorf("Len() = %d, want 3", l.Len())
	}
	if l.Count(Note) != 2 {
		t.Errorf("Count(Note) = %d, want 2", l.Count(Note))
	}
	if got := l.WithKey("b"); len(got) != 1 || got[0].Message != "second 2" {
		t.Errorf("WithKey(b) = %v", got)
	}
}

func TestList_Err(t *testing.T) {
	l := NewList()
	Warnf(l, "w", "only a warning")
	if err := l.Err(); err != nil {
		t.Fatalf("Err() with no stops = %v, want nil", err)
	}

	err1 := Stopf(l, "s1", "first stop")
	StopAt(l, 12, "s2", "second stop")

	if !errors.Is(err1, ErrStop) {
		t.Errorf("Stopf error should wrap ErrStop, got %v", err1)
	}

	err := l.Err()
	if err == nil {
		t.Fatal("Err() should be non-nil after stops")
	}
	if n := len(multierr.Errors(err)); n != 2 {
		t.Errorf("expected 2 combined errors, got %d", n)
	}
	if !strings.Contains(err.Error(), "line 12") {
		t.Errorf("combined error should mention line 12: %v", err)
	}
}

func TestList_MergeAndClear(t *testing.T) {
	a := NewList()
	b := NewList()
	Notef(a, "n", "note")
	Stopf(b, "s", "stop")

	a.Merge(b)
	a.Merge(nil)
	if !a.HasStop() || a.Len() != 2 {
		t.Errorf("after merge: HasStop=%v Len=%d", a.HasStop(), a.Len())
	}

	a.Clear()
	if a.Len() != 0 || a.HasStop() {
		t.Error("Clear() should empty the list")
	}
}

func TestIssue_String(t *testing.T) {
	i := Issue{Severity: Warning, Key: "k", Message: "msg", Line: 3}
	if got := i.String(); got != "warning: line 3: msg [k]" {
		t.Errorf("String() = %q", got)
	}
	i.Line = 0
	if got := i.String(); got != "warning: msg [k]" {
		t.Errorf("String() = %q", got)
	}
}
