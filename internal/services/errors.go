package services

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed or missing input with field-level detail.
// It is raised before any storage access, so a validation failure never leaves
// partial state behind.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Fields[field] = message
}

func (e *ValidationError) hasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, e.Fields[f]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// RuleEvaluationError marks a misconfigured commission rule (tier gap,
// overlap, unknown type). It is a configuration fault: operators fix the rule,
// the sale submission itself is fine.
type RuleEvaluationError struct {
	RuleID uint
	Reason string
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("commission rule %d is misconfigured: %s", e.RuleID, e.Reason)
}

// PersistenceError wraps a failed transaction. The whole operation was rolled
// back; callers retry the full request, never individual sub-steps.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
