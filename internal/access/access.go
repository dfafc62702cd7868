// Package access implements the administrative guards of a token:
// a single owner, a global pause flag and a per-holder freeze set.
package access

import (
	"errors"
	"fmt"

	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Access errors.
var (
	ErrUnauthorized   = errors.New("caller is not the owner")
	ErrPaused         = errors.New("token is paused")
	ErrNotPaused      = errors.New("token is not paused")
	ErrFrozen         = errors.New("account is frozen")
	ErrNotFrozen      = errors.New("account is not frozen")
	ErrInvalidAddress = errors.New("invalid address")
)

// Gate holds owner, pause and freeze state. It is not safe for
// concurrent use; the token serializes access.
type Gate struct {
	owner  types.Address
	paused bool
	frozen map[types.Address]struct{}
}

// State is a copy of a gate's state, used to restore it after a failed call.
type State struct {
	Owner  types.Address
	Paused bool
	Frozen []types.Address
}

// NewGate creates a gate owned by owner. A zero owner yields a gate on
// which every owner-only operation fails.
func NewGate(owner types.Address) *Gate {
	return &Gate{
		owner:  owner,
		frozen: make(map[types.Address]struct{}),
	}
}

// Owner returns the current owner (zero once renounced).
func (g *Gate) Owner() types.Address { return g.owner }

// Paused reports whether the token is paused.
func (g *Gate) Paused() bool { return g.paused }

// IsFrozen reports whether holder is frozen.
func (g *Gate) IsFrozen(holder types.Address) bool {
	_, ok := g.frozen[holder]
	return ok
}

// RequireOwner fails unless caller is the owner.
func (g *Gate) RequireOwner(caller types.Address) error {
	if g.owner.IsZero() || caller != g.owner {
		return fmt.Errorf("%w: %s", ErrUnauthorized, caller.Short())
	}
	return nil
}

// RequireNotPaused fails while the token is paused.
func (g *Gate) RequireNotPaused() error {
	if g.paused {
		return ErrPaused
	}
	return nil
}

// RequireNotFrozen fails when holder is frozen.
func (g *Gate) RequireNotFrozen(holder types.Address) error {
	if g.IsFrozen(holder) {
		return fmt.Errorf("%w: %s", ErrFrozen, holder.Short())
	}
	return nil
}

// TransferOwnership hands the token to next and returns the previous owner.
func (g *Gate) TransferOwnership(caller, next types.Address) (types.Address, error) {
	if err := g.RequireOwner(caller); err != nil {
		return types.Address{}, err
	}
	if next.IsZero() {
		return types.Address{}, fmt.Errorf("%w: new owner is the zero address", ErrInvalidAddress)
	}
	prev := g.owner
	g.owner = next
	klog.Access.Info().Str("from", prev.Short()).Str("to", next.Short()).Msg("Ownership transferred")
	return prev, nil
}

// RenounceOwnership leaves the token without an owner.
func (g *Gate) RenounceOwnership(caller types.Address) (types.Address, error) {
	if err := g.RequireOwner(caller); err != nil {
		return types.Address{}, err
	}
	prev := g.owner
	g.owner = types.Address{}
	klog.Access.Warn().Str("owner", prev.Short()).Msg("Ownership renounced")
	return prev, nil
}

// Pause stops transfers, locks, minting and burning.
func (g *Gate) Pause(caller types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if g.paused {
		return ErrPaused
	}
	g.paused = true
	return nil
}

// Unpause resumes normal operation.
func (g *Gate) Unpause(caller types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if !g.paused {
		return ErrNotPaused
	}
	g.paused = false
	return nil
}

// Freeze prevents target from sending tokens.
func (g *Gate) Freeze(caller, target types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if target.IsZero() {
		return fmt.Errorf("%w: freeze zero address", ErrInvalidAddress)
	}
	if g.IsFrozen(target) {
		return fmt.Errorf("%w: %s", ErrFrozen, target.Short())
	}
	g.frozen[target] = struct{}{}
	return nil
}

// Unfreeze lifts a freeze on target.
func (g *Gate) Unfreeze(caller, target types.Address) error {
	if err := g.RequireOwner(caller); err != nil {
		return err
	}
	if !g.IsFrozen(target) {
		return fmt.Errorf("%w: %s", ErrNotFrozen, target.Short())
	}
	delete(g.frozen, target)
	return nil
}

// State returns a copy of the gate's state.
func (g *Gate) State() State {
	s := State{Owner: g.owner, Paused: g.paused}
	for a := range g.frozen {
		s.Frozen = append(s.Frozen, a)
	}
	return s
}

// Restore replaces the gate's state with s.
func (g *Gate) Restore(s State) {
	g.owner = s.Owner
	g.paused = s.Paused
	g.frozen = make(map[types.Address]struct{}, len(s.Frozen))
	for _, a := range s.Frozen {
		g.frozen[a] = struct{}{}
	}
}
