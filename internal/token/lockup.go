package token

import (
	"fmt"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/ledger"
	"github.com/Klingon-tech/klingnet-lockup/internal/lockup"
	"github.com/Klingon-tech/klingnet-lockup/internal/metrics"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// TransferWithLockUp transfers amount to to and locks it there until due.
// The recipient's balance grows immediately; the funds become spendable
// once the lock is released.
func (t *Token) TransferWithLockUp(caller, to types.Address, amount uint64, due time.Time) (*event.Receipt, error) {
	return t.exec("TransferWithLockUp", caller, func(c *call) error {
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		if err := t.guard.RequireNotFrozen(caller); err != nil {
			return err
		}
		if to.IsZero() {
			return fmt.Errorf("%w: lock for zero address", ledger.ErrInvalidAddress)
		}
		if amount == 0 {
			return lockup.ErrZeroAmount
		}
		if !due.After(c.now) {
			return fmt.Errorf("%w: due %s", ErrDueNotInFuture, due.UTC().Format(time.RFC3339))
		}
		if err := t.requireSpendable(caller, amount); err != nil {
			return err
		}
		if err := t.ledger.Transfer(caller, to, amount); err != nil {
			return err
		}
		if err := t.locks.Add(to, amount, due, c.now); err != nil {
			return err
		}
		c.created++
		c.emit(
			event.Transfer(caller, to, amount),
			event.Lock(to, amount, due),
		)
		return nil
	})
}

// Unlock releases the lock at index for holder once it is due. Anyone
// may call it; the funds stay with holder.
func (t *Token) Unlock(caller, holder types.Address, index int) (*event.Receipt, error) {
	return t.exec("Unlock", caller, func(c *call) error {
		l, err := t.locks.LockAt(holder, index)
		if err != nil {
			return err
		}
		if !l.IsDue(c.now) {
			return fmt.Errorf("%w: lock %d due %s", ErrLockNotDue, index, l.Due.UTC().Format(time.RFC3339))
		}
		if _, err := t.locks.RemoveAt(holder, index); err != nil {
			return err
		}
		c.release(metrics.PathUnlock, 1)
		c.emit(event.Unlock(holder, l.Amount))
		return nil
	})
}

// UnlockAll releases every due lock of holder, emitting one Unlock event
// per lock. It succeeds without effect when nothing is due.
func (t *Token) UnlockAll(caller, holder types.Address) (*event.Receipt, error) {
	return t.exec("UnlockAll", caller, func(c *call) error {
		removed := t.locks.RemoveAllDue(holder, c.now)
		for _, l := range removed {
			c.emit(event.Unlock(holder, l.Amount))
		}
		c.release(metrics.PathUnlockAll, len(removed))
		return nil
	})
}

// ReleaseLock drops every lock of holder regardless of due time.
// Owner only.
func (t *Token) ReleaseLock(caller, holder types.Address) (*event.Receipt, error) {
	return t.exec("ReleaseLock", caller, func(c *call) error {
		if err := t.guard.RequireOwner(caller); err != nil {
			return err
		}
		prev := t.locks.Clear(holder)
		if prev.Count == 0 {
			return nil
		}
		c.release(metrics.PathRelease, prev.Count)
		c.emit(event.Unlock(holder, prev.Amount))
		return nil
	})
}

// TotalLocked returns the locked amount and the number of locks of holder.
func (t *Token) TotalLocked(holder types.Address) (uint64, int) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	tot := t.locks.TotalLocked(holder)
	return tot.Amount, tot.Count
}

// LockInfo returns the lock at index for holder.
func (t *Token) LockInfo(holder types.Address, index int) (uint64, time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	l, err := t.locks.LockAt(holder, index)
	if err != nil {
		return 0, time.Time{}, err
	}
	return l.Amount, l.Due, nil
}

// Locks returns a copy of holder's locks in index order.
func (t *Token) Locks(holder types.Address) []lockup.Lock {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.locks.Locks(holder)
}
