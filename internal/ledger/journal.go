package ledger

import "github.com/Klingon-tech/klingnet-lockup/pkg/types"

type entryKind uint8

const (
	entryBalance entryKind = iota
	entryAllowance
	entrySupply
)

// entry records the value a slot held before a write.
type entry struct {
	kind entryKind
	addr types.Address
	key  allowanceKey
	prev uint64
}

// Snapshot returns an identifier for the current state.
func (l *Ledger) Snapshot() int {
	return len(l.journal)
}

// RevertToSnapshot restores every slot written since id.
func (l *Ledger) RevertToSnapshot(id int) {
	if id < 0 || id > len(l.journal) {
		return
	}
	for i := len(l.journal) - 1; i >= id; i-- {
		e := l.journal[i]
		switch e.kind {
		case entryBalance:
			if e.prev == 0 {
				delete(l.balances, e.addr)
			} else {
				l.balances[e.addr] = e.prev
			}
		case entryAllowance:
			if e.prev == 0 {
				delete(l.allowances, e.key)
			} else {
				l.allowances[e.key] = e.prev
			}
		case entrySupply:
			l.supply = e.prev
		}
	}
	l.journal = l.journal[:id]
}

// Commit discards the undo journal.
func (l *Ledger) Commit() {
	l.journal = l.journal[:0]
}
