package token

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/ledger"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Transfer moves amount of caller's unlocked balance to to.
func (t *Token) Transfer(caller, to types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("Transfer", caller, func(c *call) error {
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		if err := t.guard.RequireNotFrozen(caller); err != nil {
			return err
		}
		if to.IsZero() {
			return fmt.Errorf("%w: transfer to zero address", ledger.ErrInvalidAddress)
		}
		if err := t.requireSpendable(caller, amount); err != nil {
			return err
		}
		if err := t.ledger.Transfer(caller, to, amount); err != nil {
			return err
		}
		c.emit(event.Transfer(caller, to, amount))
		return nil
	})
}

// TransferFrom moves amount of from's unlocked balance to to, spending
// caller's allowance.
func (t *Token) TransferFrom(caller, from, to types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("TransferFrom", caller, func(c *call) error {
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		if err := t.guard.RequireNotFrozen(from); err != nil {
			return err
		}
		if from.IsZero() || to.IsZero() {
			return fmt.Errorf("%w: transfer between %s and %s", ledger.ErrInvalidAddress, from.Short(), to.Short())
		}
		if err := t.requireSpendable(from, amount); err != nil {
			return err
		}
		remaining, err := t.ledger.SpendAllowance(from, caller, amount)
		if err != nil {
			return err
		}
		if err := t.ledger.Transfer(from, to, amount); err != nil {
			return err
		}
		c.emit(
			event.Transfer(from, to, amount),
			event.Approval(from, caller, remaining),
		)
		return nil
	})
}

// Approve sets spender's allowance over caller's tokens to amount.
func (t *Token) Approve(caller, spender types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("Approve", caller, func(c *call) error {
		if err := t.ledger.Approve(caller, spender, amount); err != nil {
			return err
		}
		c.emit(event.Approval(caller, spender, amount))
		return nil
	})
}
