package token

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/ledger"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Mint creates amount tokens for to. Owner only, bounded by the cap.
func (t *Token) Mint(caller, to types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("Mint", caller, func(c *call) error {
		if err := t.guard.RequireOwner(caller); err != nil {
			return err
		}
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		if t.mintingFinished {
			return ErrMintingFinished
		}
		supply := t.ledger.TotalSupply()
		if supply+amount < supply {
			return fmt.Errorf("%w: total supply", ledger.ErrOverflow)
		}
		if t.cfg.Cap > 0 && supply+amount > t.cfg.Cap {
			return fmt.Errorf("%w: supply %d + %d > cap %d", ErrCapExceeded, supply, amount, t.cfg.Cap)
		}
		if err := t.ledger.Mint(to, amount); err != nil {
			return err
		}
		c.emit(
			event.Transfer(types.Address{}, to, amount),
			event.Mint(to, amount),
		)
		return nil
	})
}

// FinishMint permanently disables minting. Owner only.
func (t *Token) FinishMint(caller types.Address) (*event.Receipt, error) {
	return t.exec("FinishMint", caller, func(c *call) error {
		if err := t.guard.RequireOwner(caller); err != nil {
			return err
		}
		if t.mintingFinished {
			return fmt.Errorf("%w: already finished", ErrMintingFinished)
		}
		t.mintingFinished = true
		c.onRevert(func() { t.mintingFinished = false })
		c.emit(event.MintFinished())
		return nil
	})
}

// Burn destroys amount of caller's unlocked balance.
func (t *Token) Burn(caller types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("Burn", caller, func(c *call) error {
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		return t.burn(c, caller, amount)
	})
}

// BurnFrom destroys amount of account's unlocked balance, spending
// caller's allowance.
func (t *Token) BurnFrom(caller, account types.Address, amount uint64) (*event.Receipt, error) {
	return t.exec("BurnFrom", caller, func(c *call) error {
		if err := t.guard.RequireNotPaused(); err != nil {
			return err
		}
		if account.IsZero() {
			return fmt.Errorf("%w: burn from zero address", ledger.ErrInvalidAddress)
		}
		remaining, err := t.ledger.SpendAllowance(account, caller, amount)
		if err != nil {
			return err
		}
		if err := t.burn(c, account, amount); err != nil {
			return err
		}
		c.emit(event.Approval(account, caller, remaining))
		return nil
	})
}

func (t *Token) burn(c *call, from types.Address, amount uint64) error {
	if from.IsZero() {
		return fmt.Errorf("%w: burn from zero address", ledger.ErrInvalidAddress)
	}
	if err := t.requireSpendable(from, amount); err != nil {
		return err
	}
	if err := t.ledger.Burn(from, amount); err != nil {
		return err
	}
	c.emit(
		event.Transfer(from, types.Address{}, amount),
		event.Burn(from, amount),
	)
	return nil
}
