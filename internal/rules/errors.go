package rules

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors reported for malformed rules.
var (
	// ErrEmptyTrigger indicates a rule without a trigger suffix.
	ErrEmptyTrigger = errors.New("empty trigger suffix")
	// ErrDuplicateTrigger indicates a trigger configured more than once.
	ErrDuplicateTrigger = errors.New("duplicate trigger suffix")
	// ErrNoHiddenSuffixes indicates a rule that hides nothing.
	ErrNoHiddenSuffixes = errors.New("no hidden suffixes")
	// ErrSelfHiding indicates a hidden suffix equal to its own trigger.
	ErrSelfHiding = errors.New("hidden suffix equals trigger")
)

// Problem describes one rejected rule or suffix.
type Problem struct {
	Trigger string
	Suffix  string
	Err     error
}

func (p Problem) Error() string {
	switch {
	case p.Suffix != "":
		return fmt.Sprintf("rule %q: suffix %q: %v", p.Trigger, p.Suffix, p.Err)
	default:
		return fmt.Sprintf("rule %q: %v", p.Trigger, p.Err)
	}
}

func (p Problem) Unwrap() error {
	return p.Err
}

// ValidationError collects every problem found while building a Set. The Set
// returned alongside it holds the valid remainder and is safe to use.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return "invalid hide rules: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Problems))
	for _, p := range e.Problems {
		errs = append(errs, p)
	}
	return errs
}
