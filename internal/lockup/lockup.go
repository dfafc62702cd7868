// Package lockup implements the per-holder registry of time locks.
//
// Each holder owns an unordered set of independent locks, stored as a
// growable slice plus an explicit aggregate (total amount and count).
// Removal is swap-remove: the removed slot is overwritten with the last
// live entry and the slice shrinks by one. Indexes handed out by LockAt
// are therefore only meaningful until the next removal for that holder.
//
// The registry never looks at balances and never prunes matured locks on
// its own; the token layer decides when a lock may be removed.
package lockup

import (
	"errors"
	"time"
)

// Registry errors.
var (
	ErrZeroAmount      = errors.New("lock amount is zero")
	ErrDueNotInFuture  = errors.New("lock due time is not in the future")
	ErrIndexOutOfRange = errors.New("lock index out of range")
	ErrOverflow        = errors.New("locked amount overflows")
)

// Lock restricts Amount of a holder's balance until Due.
// Locks are never mutated, only removed.
type Lock struct {
	Amount uint64    `json:"amount"`
	Due    time.Time `json:"due"`
}

// IsDue reports whether the lock may be released at now (Due <= now).
func (l Lock) IsDue(now time.Time) bool {
	return !l.Due.After(now)
}

// Totals is the aggregate over a set of locks.
type Totals struct {
	Amount uint64 `json:"amount"`
	Count  int    `json:"count"`
}
