// Package event defines the events a token call emits and the receipt
// that groups them.
package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Kind names an event.
type Kind string

// Event kinds.
const (
	KindTransfer             Kind = "Transfer"
	KindApproval             Kind = "Approval"
	KindLock                 Kind = "Lock"
	KindUnlock               Kind = "Unlock"
	KindMint                 Kind = "Mint"
	KindMintFinished         Kind = "MintFinished"
	KindBurn                 Kind = "Burn"
	KindPaused               Kind = "Paused"
	KindUnpaused             Kind = "Unpaused"
	KindFreeze               Kind = "Freeze"
	KindUnfreeze             Kind = "Unfreeze"
	KindOwnershipTransferred Kind = "OwnershipTransferred"
)

// Event is a single state change notification. Only the fields relevant
// to Kind are set.
type Event struct {
	Kind    Kind          `json:"kind"`
	From    types.Address `json:"from,omitzero"`
	To      types.Address `json:"to,omitzero"`
	Holder  types.Address `json:"holder,omitzero"`
	Owner   types.Address `json:"owner,omitzero"`
	Spender types.Address `json:"spender,omitzero"`
	Amount  uint64        `json:"amount,omitempty"`
	Due     time.Time     `json:"due,omitzero"`
}

// Transfer records amount moving from one address to another. A zero
// from is a mint, a zero to is a burn.
func Transfer(from, to types.Address, amount uint64) Event {
	return Event{Kind: KindTransfer, From: from, To: to, Amount: amount}
}

// Approval records the allowance of spender over owner.
func Approval(owner, spender types.Address, amount uint64) Event {
	return Event{Kind: KindApproval, Owner: owner, Spender: spender, Amount: amount}
}

// Lock records amount locked for holder until due.
func Lock(holder types.Address, amount uint64, due time.Time) Event {
	return Event{Kind: KindLock, Holder: holder, Amount: amount, Due: due}
}

// Unlock records amount released from holder's locks.
func Unlock(holder types.Address, amount uint64) Event {
	return Event{Kind: KindUnlock, Holder: holder, Amount: amount}
}

// Mint records newly created tokens.
func Mint(to types.Address, amount uint64) Event {
	return Event{Kind: KindMint, To: to, Amount: amount}
}

// MintFinished records that minting was permanently disabled.
func MintFinished() Event {
	return Event{Kind: KindMintFinished}
}

// Burn records destroyed tokens.
func Burn(from types.Address, amount uint64) Event {
	return Event{Kind: KindBurn, From: from, Amount: amount}
}

// Paused records that the token was paused by owner.
func Paused(owner types.Address) Event {
	return Event{Kind: KindPaused, Owner: owner}
}

// Unpaused records that the token was unpaused by owner.
func Unpaused(owner types.Address) Event {
	return Event{Kind: KindUnpaused, Owner: owner}
}

// Freeze records that holder was frozen.
func Freeze(holder types.Address) Event {
	return Event{Kind: KindFreeze, Holder: holder}
}

// Unfreeze records that holder was unfrozen.
func Unfreeze(holder types.Address) Event {
	return Event{Kind: KindUnfreeze, Holder: holder}
}

// OwnershipTransferred records an ownership change. A zero to means the
// ownership was renounced.
func OwnershipTransferred(from, to types.Address) Event {
	return Event{Kind: KindOwnershipTransferred, From: from, To: to}
}

// Receipt is the outcome of one successful mutating call.
type Receipt struct {
	ID     uuid.UUID     `json:"id"`
	Op     string        `json:"op"`
	Caller types.Address `json:"caller"`
	Time   time.Time     `json:"time"`
	Events []Event       `json:"events"`
}

// NewReceipt creates an empty receipt for op.
func NewReceipt(op string, caller types.Address, now time.Time) *Receipt {
	return &Receipt{
		ID:     uuid.New(),
		Op:     op,
		Caller: caller,
		Time:   now,
	}
}

// Emit appends events to the receipt.
func (r *Receipt) Emit(evs ...Event) {
	r.Events = append(r.Events, evs...)
}

// Filter returns the events of the given kind, in emission order.
func (r *Receipt) Filter(kind Kind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Sink receives receipts of committed calls. A sink error aborts the call.
type Sink interface {
	Record(r *Receipt) error
}

// Recorder is an in-memory Sink.
type Recorder struct {
	Receipts []*Receipt
}

// Record implements Sink.
func (r *Recorder) Record(rc *Receipt) error {
	r.Receipts = append(r.Receipts, rc)
	return nil
}

// Events returns every recorded event in order.
func (r *Recorder) Events() []Event {
	var out []Event
	for _, rc := range r.Receipts {
		out = append(out, rc.Events...)
	}
	return out
}
