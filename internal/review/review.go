// Package review provides the transition tables shared by the gap and FAQ lifecycles.
package review

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
)

var (
	// ErrInvalidTransition indicates a move from a terminal or non-adjacent state.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrNotReady indicates a transition whose readiness condition is not met.
	ErrNotReady = errors.New("not ready")
)

// Machine is a transition table over a string-backed status type.
type Machine[S ~string] struct {
	edges map[S][]S
}

// NewMachine creates a Machine from an adjacency table. States absent from
// the table, or mapped to no targets, are terminal.
func NewMachine[S ~string](edges map[S][]S) Machine[S] {
	return Machine[S]{edges: edges}
}

// Can reports whether from → to is an allowed edge.
func (m Machine[S]) Can(from, to S) bool {
	return slices.Contains(m.edges[from], to)
}

// Check returns an error wrapping ErrInvalidTransition when from → to is not allowed.
func (m Machine[S]) Check(from, to S) error {
	if m.Can(from, to) {
		return nil
	}
	if m.Terminal(from) {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, from, to)
}

// Terminal reports whether no transitions leave s.
func (m Machine[S]) Terminal(s S) bool {
	return len(m.edges[s]) == 0
}

// Path returns the shortest chain of states leading from → to, excluding from.
// Returns nil when to is unreachable.
func (m Machine[S]) Path(from, to S) []S {
	if from == to {
		return nil
	}

	prev := map[S]S{from: from}
	queue := []S{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, next := range m.edges[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				var path []S
				for s := to; s != from; s = prev[s] {
					path = append(path, s)
				}
				slices.Reverse(path)
				return path
			}
			queue = append(queue, next)
		}
	}

	return nil
}

// MapHTTPStatus maps workflow errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidTransition) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNotReady) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
