// Package fsm holds the transition tables for status driven entities.
package fsm

import (
	"masar-finance/internal/shared/apperror"
)

// Table maps each state to the states it may move to.
type Table[S ~string] map[S][]S

// Can reports whether from -> to is allowed.
func (t Table[S]) Can(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (t Table[S]) Terminal(s S) bool {
	return len(t[s]) == 0
}

// Check returns nil when from -> to is allowed. Otherwise it returns an error
// naming both states that matches sentinel under errors.Is.
func (t Table[S]) Check(from, to S, sentinel *apperror.AppError) error {
	if t.Can(from, to) {
		return nil
	}
	return apperror.WithDetail(sentinel, "cannot move from %s to %s", from, to)
}
