package validator

import (
	"sort"
	"strings"
)

// Errors maps a field name to its error messages.
type Errors map[string][]string

// Add records msg for field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether at least one field failed.
func (e Errors) Any() bool {
	return len(e) > 0
}

// Err returns e as an error, or nil when no field failed.
func (e Errors) Err() error {
	if !e.Any() {
		return nil
	}
	return e
}

// Error implements error with a stable, field-sorted summary.
func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
