package access

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

var (
	owner = types.Address{0x01}
	alice = types.Address{0xa1}
	bob   = types.Address{0xb0}
)

func TestRequireOwner(t *testing.T) {
	g := NewGate(owner)
	if err := g.RequireOwner(owner); err != nil {
		t.Fatalf("RequireOwner(owner): %v", err)
	}
	if err := g.RequireOwner(alice); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("RequireOwner(alice) = %v, want ErrUnauthorized", err)
	}

	unowned := NewGate(types.Address{})
	if err := unowned.RequireOwner(types.Address{}); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("zero owner accepted zero caller: %v", err)
	}
}

func TestOwnership(t *testing.T) {
	g := NewGate(owner)

	if _, err := g.TransferOwnership(alice, bob); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("non-owner transfer = %v, want ErrUnauthorized", err)
	}
	if _, err := g.TransferOwnership(owner, types.Address{}); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("transfer to zero = %v, want ErrInvalidAddress", err)
	}
	prev, err := g.TransferOwnership(owner, alice)
	if err != nil {
		t.Fatalf("TransferOwnership: %v", err)
	}
	if prev != owner || g.Owner() != alice {
		t.Errorf("prev=%s owner=%s", prev.Short(), g.Owner().Short())
	}

	if _, err := g.RenounceOwnership(alice); err != nil {
		t.Fatalf("RenounceOwnership: %v", err)
	}
	if !g.Owner().IsZero() {
		t.Error("owner not cleared")
	}
	if err := g.Pause(alice); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Pause after renounce = %v, want ErrUnauthorized", err)
	}
}

func TestPause(t *testing.T) {
	g := NewGate(owner)

	if err := g.Unpause(owner); !errors.Is(err, ErrNotPaused) {
		t.Errorf("Unpause while running = %v, want ErrNotPaused", err)
	}
	if err := g.Pause(alice); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Pause by non-owner = %v, want ErrUnauthorized", err)
	}
	if err := g.Pause(owner); err != nil {
		t.Fatalf("Pause: %v", err)
	}
	if err := g.RequireNotPaused(); !errors.Is(err, ErrPaused) {
		t.Errorf("RequireNotPaused = %v, want ErrPaused", err)
	}
	if err := g.Pause(owner); !errors.Is(err, ErrPaused) {
		t.Errorf("double Pause = %v, want ErrPaused", err)
	}
	if err := g.Unpause(owner); err != nil {
		t.Fatalf("Unpause: %v", err)
	}
	if g.Paused() {
		t.Error("still paused")
	}
}

func TestFreeze(t *testing.T) {
	g := NewGate(owner)

	if err := g.Freeze(alice, bob); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Freeze by non-owner = %v, want ErrUnauthorized", err)
	}
	if err := g.Freeze(owner, bob); err != nil {
		t.Fatalf("Freeze: %v", err)
	}
	if err := g.RequireNotFrozen(bob); !errors.Is(err, ErrFrozen) {
		t.Errorf("RequireNotFrozen = %v, want ErrFrozen", err)
	}
	if err := g.RequireNotFrozen(alice); err != nil {
		t.Errorf("alice reported frozen: %v", err)
	}
	if err := g.Freeze(owner, bob); !errors.Is(err, ErrFrozen) {
		t.Errorf("double Freeze = %v, want ErrFrozen", err)
	}
	if err := g.Unfreeze(owner, alice); !errors.Is(err, ErrNotFrozen) {
		t.Errorf("Unfreeze unfrozen = %v, want ErrNotFrozen", err)
	}
	if err := g.Unfreeze(owner, bob); err != nil {
		t.Fatalf("Unfreeze: %v", err)
	}
	if g.IsFrozen(bob) {
		t.Error("bob still frozen")
	}
}

func TestStateRestore(t *testing.T) {
	g := NewGate(owner)
	g.Freeze(owner, alice)
	saved := g.State()

	g.Pause(owner)
	g.Freeze(owner, bob)
	g.Unfreeze(owner, alice)
	g.TransferOwnership(owner, bob)

	g.Restore(saved)
	if g.Owner() != owner || g.Paused() {
		t.Errorf("owner/paused not restored: %s %v", g.Owner().Short(), g.Paused())
	}
	if !g.IsFrozen(alice) || g.IsFrozen(bob) {
		t.Errorf("freeze set not restored: alice=%v bob=%v", g.IsFrozen(alice), g.IsFrozen(bob))
	}
}
