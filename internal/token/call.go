package token

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/ledger"
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// call carries the context of one mutating operation.
type call struct {
	now     time.Time
	caller  types.Address
	receipt *event.Receipt

	undo     []func()
	created  int
	released map[string]int
}

func (c *call) emit(evs ...event.Event) {
	c.receipt.Emit(evs...)
}

// onRevert registers fn to run if the call fails.
func (c *call) onRevert(fn func()) {
	c.undo = append(c.undo, fn)
}

func (c *call) release(path string, n int) {
	if c.released == nil {
		c.released = make(map[string]int)
	}
	c.released[path] += n
}

// exec runs fn under the write lock. If fn or the sink fails, every
// ledger, registry and gate change made by fn is rolled back.
func (t *Token) exec(op string, caller types.Address, fn func(c *call) error) (*event.Receipt, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	c := &call{
		now:     now,
		caller:  caller,
		receipt: event.NewReceipt(op, caller, now),
	}
	ledgerSnap := t.ledger.Snapshot()
	locksSnap := t.locks.Snapshot()

	err := fn(c)
	if err == nil && t.sink != nil {
		if serr := t.sink.Record(c.receipt); serr != nil {
			err = fmt.Errorf("record receipt: %w", serr)
		}
	}
	if err != nil {
		t.ledger.RevertToSnapshot(ledgerSnap)
		t.locks.RevertToSnapshot(locksSnap)
		for i := len(c.undo) - 1; i >= 0; i-- {
			c.undo[i]()
		}
		t.metrics.ObserveCall(op, err)
		klog.Token.Debug().
			Str("op", op).
			Str("caller", caller.Short()).
			Err(err).
			Msg("Call reverted")
		return nil, err
	}

	t.ledger.Commit()
	t.locks.Commit()

	t.metrics.ObserveCall(op, nil)
	t.metrics.AddLocks(c.created)
	for path, n := range c.released {
		t.metrics.RemoveLocks(path, n)
	}
	agg := t.locks.Aggregate()
	t.metrics.SetLocked(agg.Amount, agg.Count)

	klog.Token.Debug().
		Str("op", op).
		Str("caller", caller.Short()).
		Int("events", len(c.receipt.Events)).
		Msg("Call committed")
	return c.receipt, nil
}

// saveGate arranges for the access gate to be restored if the call fails.
func (t *Token) saveGate(c *call) {
	st := t.gate.State()
	c.onRevert(func() { t.gate.Restore(st) })
}

// requireSpendable checks that holder can part with amount. It reports
// ledger.ErrInsufficientBalance when the balance itself is too small and
// ErrInsufficientUnlockedBalance when only the locks are in the way.
func (t *Token) requireSpendable(holder types.Address, amount uint64) error {
	bal := t.ledger.BalanceOf(holder)
	if amount > bal {
		return fmt.Errorf("%w: have %d, need %d", ledger.ErrInsufficientBalance, bal, amount)
	}
	locked := t.locks.TotalLocked(holder).Amount
	if free := bal - locked; amount > free {
		return fmt.Errorf("%w: unlocked %d, need %d", ErrInsufficientUnlockedBalance, free, amount)
	}
	return nil
}
