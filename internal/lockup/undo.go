package lockup

import (
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

type changeKind uint8

const (
	changeAdd changeKind = iota
	changeRemove
	changeClear
)

// change records what is needed to undo one registry mutation.
type change struct {
	kind   changeKind
	holder types.Address
	index  int    // changeRemove: slot the lock was removed from.
	lock   Lock   // changeRemove: the removed lock.
	locks  []Lock // changeClear: the cleared slice.
}

// Snapshot returns an identifier for the current state. Passing it to
// RevertToSnapshot undoes every mutation made since.
func (r *Registry) Snapshot() int {
	return len(r.journal)
}

// RevertToSnapshot undoes mutations in reverse order back to id.
func (r *Registry) RevertToSnapshot(id int) {
	if id < 0 || id > len(r.journal) {
		return
	}
	for i := len(r.journal) - 1; i >= id; i-- {
		r.undo(r.journal[i])
	}
	if n := len(r.journal) - id; n > 0 {
		klog.Lockup.Debug().Int("changes", n).Msg("Registry changes reverted")
	}
	r.journal = r.journal[:id]
}

// Commit discards the undo journal. Earlier snapshots become invalid.
func (r *Registry) Commit() {
	clear(r.journal)
	r.journal = r.journal[:0]
}

func (r *Registry) undo(c change) {
	switch c.kind {
	case changeAdd:
		st := r.holders[c.holder]
		r.swapRemove(c.holder, st, st.total.Count-1)

	case changeRemove:
		st := r.holders[c.holder]
		if st == nil {
			st = &holderState{}
			r.holders[c.holder] = st
		}
		if c.index == st.total.Count {
			// The removed lock was the last entry; nothing was moved.
			r.push(c.holder, c.lock)
			return
		}
		moved := st.locks[c.index]
		st.locks[c.index] = c.lock
		st.locks = append(st.locks, moved)
		r.credit(st, c.lock.Amount)

	case changeClear:
		for _, l := range c.locks {
			r.push(c.holder, l)
		}
	}
}
