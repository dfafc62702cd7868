package lockup

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// holderState owns one holder's locks. total always equals the sum and
// length of locks.
type holderState struct {
	locks []Lock
	total Totals
}

// Registry maps holders to their locks. It is not safe for concurrent
// use; the token serializes every call.
type Registry struct {
	holders map[types.Address]*holderState
	all     Totals // Aggregate over every holder.

	// Undo journal since the last Commit.
	journal []change
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{holders: make(map[types.Address]*holderState)}
}

// Add appends a lock for holder. amount must be positive and due must
// be strictly after now.
func (r *Registry) Add(holder types.Address, amount uint64, due, now time.Time) error {
	if amount == 0 {
		return ErrZeroAmount
	}
	if !due.After(now) {
		return fmt.Errorf("%w: due %s, now %s", ErrDueNotInFuture, due.UTC().Format(time.RFC3339), now.UTC().Format(time.RFC3339))
	}

	st := r.holders[holder]
	var held uint64
	if st != nil {
		held = st.total.Amount
	}
	if held+amount < held || r.all.Amount+amount < r.all.Amount {
		return ErrOverflow
	}

	r.push(holder, Lock{Amount: amount, Due: due})
	r.journal = append(r.journal, change{kind: changeAdd, holder: holder})
	return nil
}

// RemoveAt swap-removes the lock at index and returns it. It does not
// check whether the lock is due.
func (r *Registry) RemoveAt(holder types.Address, index int) (Lock, error) {
	st := r.holders[holder]
	if st == nil || index < 0 || index >= st.total.Count {
		return Lock{}, fmt.Errorf("%w: index %d, holder has %d locks", ErrIndexOutOfRange, index, r.TotalLocked(holder).Count)
	}
	removed := r.swapRemove(holder, st, index)
	r.journal = append(r.journal, change{kind: changeRemove, holder: holder, index: index, lock: removed})
	return removed, nil
}

// RemoveAllDue removes every lock with Due <= now in a single forward
// pass and returns the removed locks in removal order.
func (r *Registry) RemoveAllDue(holder types.Address, now time.Time) []Lock {
	st := r.holders[holder]
	if st == nil {
		return nil
	}

	var removed []Lock
	i := 0
	for i < st.total.Count {
		if !st.locks[i].IsDue(now) {
			i++
			continue
		}
		// Slot i now holds the former last entry; test it before moving on.
		l := r.swapRemove(holder, st, i)
		r.journal = append(r.journal, change{kind: changeRemove, holder: holder, index: i, lock: l})
		removed = append(removed, l)
	}
	return removed
}

// Clear drops every lock of holder regardless of due time and returns
// the totals that were cleared.
func (r *Registry) Clear(holder types.Address) Totals {
	st := r.holders[holder]
	if st == nil {
		return Totals{}
	}
	prev := st.total
	r.journal = append(r.journal, change{kind: changeClear, holder: holder, locks: st.locks})
	r.all.Amount -= prev.Amount
	r.all.Count -= prev.Count
	delete(r.holders, holder)
	return prev
}

// TotalLocked returns the aggregate of holder's live locks.
func (r *Registry) TotalLocked(holder types.Address) Totals {
	if st := r.holders[holder]; st != nil {
		return st.total
	}
	return Totals{}
}

// LockAt returns the lock at index.
func (r *Registry) LockAt(holder types.Address, index int) (Lock, error) {
	st := r.holders[holder]
	if st == nil || index < 0 || index >= st.total.Count {
		return Lock{}, fmt.Errorf("%w: index %d, holder has %d locks", ErrIndexOutOfRange, index, r.TotalLocked(holder).Count)
	}
	return st.locks[index], nil
}

// Locks returns a copy of holder's locks in storage order.
func (r *Registry) Locks(holder types.Address) []Lock {
	st := r.holders[holder]
	if st == nil {
		return nil
	}
	out := make([]Lock, st.total.Count)
	copy(out, st.locks)
	return out
}

// Aggregate returns totals over every holder.
func (r *Registry) Aggregate() Totals {
	return r.all
}

// Holders returns the number of holders with at least one lock.
func (r *Registry) Holders() int {
	return len(r.holders)
}

func (r *Registry) push(holder types.Address, l Lock) {
	st := r.holders[holder]
	if st == nil {
		st = &holderState{}
		r.holders[holder] = st
	}
	st.locks = append(st.locks, l)
	r.credit(st, l.Amount)
}

// credit accounts for one more lock of amount in st and the aggregate.
func (r *Registry) credit(st *holderState, amount uint64) {
	st.total.Amount += amount
	st.total.Count++
	r.all.Amount += amount
	r.all.Count++
}

// swapRemove overwrites slot i with the last live entry and shrinks the
// slice. Holders left without locks are dropped from the map.
func (r *Registry) swapRemove(holder types.Address, st *holderState, i int) Lock {
	last := st.total.Count - 1
	removed := st.locks[i]
	st.locks[i] = st.locks[last]
	st.locks[last] = Lock{}
	st.locks = st.locks[:last]

	st.total.Amount -= removed.Amount
	st.total.Count--
	r.all.Amount -= removed.Amount
	r.all.Count--

	if st.total.Count == 0 {
		delete(r.holders, holder)
	}
	return removed
}
