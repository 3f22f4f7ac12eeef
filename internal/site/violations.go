package site

import (
	"fmt"
	"strings"
)

// Violation is one invariant breach found during validation, with enough
// context (document, field, reason) to fix the source file directly.
type Violation struct {
	Document string // identifier, or source path when no identifier exists
	Field    string
	Reason   string
}

func (v Violation) String() string {
	if v.Field == "" {
		return fmt.Sprintf("%s: %s", v.Document, v.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", v.Document, v.Field, v.Reason)
}

// Violations accumulates every validation failure across one batch so a single
// build reports all broken documents instead of stopping at the first. It is
// an explicit accumulator value, not an exception path.
type Violations struct {
	items []Violation
}

func (v *Violations) Add(document, field, reason string) {
	v.items = append(v.items, Violation{Document: document, Field: field, Reason: reason})
}

func (v *Violations) Addf(document, field, format string, args ...any) {
	v.Add(document, field, fmt.Sprintf(format, args...))
}

// Items returns the collected violations in the order they were found.
func (v *Violations) Items() []Violation { return v.items }

func (v *Violations) Empty() bool { return len(v.items) == 0 }

// Err returns the accumulator as an error, or nil when nothing was collected.
func (v *Violations) Err() error {
	if v.Empty() {
		return nil
	}
	return v
}

func (v *Violations) Error() string {
	parts := make([]string, 0, len(v.items))
	for _, item := range v.items {
		parts = append(parts, item.String())
	}
	return fmt.Sprintf("validation failed (%d violations): %s", len(v.items), strings.Join(parts, "; "))
}
