package domain

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError reports an absent candidate or topic. It is a structured
// negative result, recoverable by the caller.
type NotFoundError struct {
	Kind string // "candidate", "topic"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// AmbiguousError reports input that matched several alternatives and
// needs disambiguation.
type AmbiguousError struct {
	Topic   string
	Options []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("topic %q is ambiguous: %s", e.Topic, strings.Join(e.Options, ", "))
}

// ValidationError reports malformed input to a tool or operation.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// UpstreamError wraps a failure of an external collaborator (embedding,
// generation, lookup) including timeouts.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsAmbiguous reports whether err is an AmbiguousError.
func IsAmbiguous(err error) bool {
	var amb *AmbiguousError
	return errors.As(err, &amb)
}
