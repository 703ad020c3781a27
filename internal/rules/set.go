// Package rules holds hide-rule snapshots: which suffixes a trigger file
// folds away beneath itself.
package rules

import (
	"slices"
	"sort"
	"strings"
	"sync/atomic"
)

// Rule folds every sibling named base+Hidden[i] under the file named
// base+Trigger.
type Rule struct {
	Trigger string
	Hidden  []string
}

// Set is an immutable, ordered snapshot of hide rules. The zero value and a
// nil *Set both behave as an empty set, which disables grouping.
type Set struct {
	rules []Rule
}

var empty = &Set{}

// Empty returns the set with no rules.
func Empty() *Set {
	return empty
}

// New validates rules and builds a Set from the valid ones, keeping their
// order. Malformed rules and suffixes are dropped and reported through a
// *ValidationError; the returned Set is never nil.
func New(rules ...Rule) (*Set, error) {
	var problems []Problem
	seen := make(map[string]bool, len(rules))
	out := make([]Rule, 0, len(rules))

	for _, r := range rules {
		trigger := strings.TrimSpace(r.Trigger)
		if trigger == "" {
			problems = append(problems, Problem{Trigger: r.Trigger, Err: ErrEmptyTrigger})
			continue
		}
		if seen[trigger] {
			problems = append(problems, Problem{Trigger: trigger, Err: ErrDuplicateTrigger})
			continue
		}

		hidden := make([]string, 0, len(r.Hidden))
		for _, s := range r.Hidden {
			s = strings.TrimSpace(s)
			switch {
			case s == "" || slices.Contains(hidden, s):
				continue
			case s == trigger:
				problems = append(problems, Problem{Trigger: trigger, Suffix: s, Err: ErrSelfHiding})
				continue
			}
			hidden = append(hidden, s)
		}
		if len(hidden) == 0 {
			problems = append(problems, Problem{Trigger: trigger, Err: ErrNoHiddenSuffixes})
			continue
		}

		seen[trigger] = true
		out = append(out, Rule{Trigger: trigger, Hidden: hidden})
	}

	set := &Set{rules: out}
	if len(problems) > 0 {
		return set, &ValidationError{Problems: problems}
	}
	return set, nil
}

// FromMap builds a Set from a trigger -> hidden suffixes mapping. Map order is
// undefined, so triggers are taken in lexicographic order.
func FromMap(m map[string][]string) (*Set, error) {
	triggers := make([]string, 0, len(m))
	for trigger := range m {
		triggers = append(triggers, trigger)
	}
	sort.Strings(triggers)

	rules := make([]Rule, 0, len(triggers))
	for _, trigger := range triggers {
		rules = append(rules, Rule{Trigger: trigger, Hidden: m[trigger]})
	}
	return New(rules...)
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Rule returns the i-th rule. The hidden slice is shared and must not be
// modified.
func (s *Set) Rule(i int) Rule {
	return s.rules[i]
}

// Rules returns a deep copy of the rules in order.
func (s *Set) Rules() []Rule {
	if s == nil {
		return nil
	}
	out := make([]Rule, len(s.rules))
	for i, r := range s.rules {
		out[i] = Rule{Trigger: r.Trigger, Hidden: slices.Clone(r.Hidden)}
	}
	return out
}

// Lookup returns the rule for trigger.
func (s *Set) Lookup(trigger string) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	for _, r := range s.rules {
		if r.Trigger == trigger {
			return Rule{Trigger: r.Trigger, Hidden: slices.Clone(r.Hidden)}, true
		}
	}
	return Rule{}, false
}

// Store publishes Set snapshots. Readers always observe a complete set: a
// reload swaps the whole value.
type Store struct {
	current atomic.Pointer[Set]
}

// NewStore creates a Store holding initial (or the empty set when nil).
func NewStore(initial *Set) *Store {
	st := &Store{}
	st.Publish(initial)
	return st
}

// Snapshot returns the current set. It never returns nil.
func (st *Store) Snapshot() *Set {
	if s := st.current.Load(); s != nil {
		return s
	}
	return empty
}

// Publish replaces the current set.
func (st *Store) Publish(s *Set) {
	if s == nil {
		s = empty
	}
	st.current.Store(s)
}
