package service

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrValidation is wrapped by every input rejection from the use cases.
var ErrValidation = errors.New("validation failed")

// ValidationError lists the offending fields by name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Problems collects field errors while validating one input.
type Problems map[string]string

func (p Problems) Require(field, value string) {
	if strings.TrimSpace(value) == "" {
		p[field] = "is required"
	}
}

func (p Problems) Check(ok bool, field, msg string) {
	if !ok {
		if _, seen := p[field]; !seen {
			p[field] = msg
		}
	}
}

// Err returns nil when nothing was recorded.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return &ValidationError{Fields: map[string]string(p)}
}
