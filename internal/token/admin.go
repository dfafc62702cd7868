package token

import (
	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Pause blocks transfers, locks, minting and burning. Owner only.
func (t *Token) Pause(caller types.Address) (*event.Receipt, error) {
	return t.exec("Pause", caller, func(c *call) error {
		t.saveGate(c)
		if err := t.gate.Pause(caller); err != nil {
			return err
		}
		c.emit(event.Paused(caller))
		return nil
	})
}

// Unpause lifts a pause. Owner only.
func (t *Token) Unpause(caller types.Address) (*event.Receipt, error) {
	return t.exec("Unpause", caller, func(c *call) error {
		t.saveGate(c)
		if err := t.gate.Unpause(caller); err != nil {
			return err
		}
		c.emit(event.Unpaused(caller))
		return nil
	})
}

// Freeze stops target from sending tokens. Owner only.
func (t *Token) Freeze(caller, target types.Address) (*event.Receipt, error) {
	return t.exec("Freeze", caller, func(c *call) error {
		t.saveGate(c)
		if err := t.gate.Freeze(caller, target); err != nil {
			return err
		}
		c.emit(event.Freeze(target))
		return nil
	})
}

// Unfreeze lets target send tokens again. Owner only.
func (t *Token) Unfreeze(caller, target types.Address) (*event.Receipt, error) {
	return t.exec("Unfreeze", caller, func(c *call) error {
		t.saveGate(c)
		if err := t.gate.Unfreeze(caller, target); err != nil {
			return err
		}
		c.emit(event.Unfreeze(target))
		return nil
	})
}

// TransferOwnership hands the token to next. Owner only.
func (t *Token) TransferOwnership(caller, next types.Address) (*event.Receipt, error) {
	return t.exec("TransferOwnership", caller, func(c *call) error {
		t.saveGate(c)
		prev, err := t.gate.TransferOwnership(caller, next)
		if err != nil {
			return err
		}
		c.emit(event.OwnershipTransferred(prev, next))
		return nil
	})
}

// RenounceOwnership leaves the token without an owner, disabling every
// owner-only operation for good.
func (t *Token) RenounceOwnership(caller types.Address) (*event.Receipt, error) {
	return t.exec("RenounceOwnership", caller, func(c *call) error {
		t.saveGate(c)
		prev, err := t.gate.RenounceOwnership(caller)
		if err != nil {
			return err
		}
		c.emit(event.OwnershipTransferred(prev, types.Address{}))
		return nil
	})
}
