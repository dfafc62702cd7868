// Package ledger implements plain fungible-token bookkeeping: balances,
// allowances and total supply. It enforces arithmetic and address rules
// only; access control and lock awareness live in the token package.
package ledger

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Ledger errors.
var (
	ErrInvalidAddress        = errors.New("invalid address")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrOverflow              = errors.New("amount overflows")
	ErrZeroAmount            = errors.New("amount is zero")
)

type allowanceKey struct {
	owner   types.Address
	spender types.Address
}

// Ledger holds balances, allowances and supply. It is not safe for
// concurrent use; the token serializes every call.
type Ledger struct {
	balances   map[types.Address]uint64
	allowances map[allowanceKey]uint64
	supply     uint64

	journal []entry
}

// New creates an empty ledger.
func New() *Ledger {
	return &Ledger{
		balances:   make(map[types.Address]uint64),
		allowances: make(map[allowanceKey]uint64),
	}
}

// BalanceOf returns the balance of holder.
func (l *Ledger) BalanceOf(holder types.Address) uint64 {
	return l.balances[holder]
}

// TotalSupply returns the amount of tokens in existence.
func (l *Ledger) TotalSupply() uint64 {
	return l.supply
}

// Allowance returns how much spender may still move on behalf of owner.
func (l *Ledger) Allowance(owner, spender types.Address) uint64 {
	return l.allowances[allowanceKey{owner, spender}]
}

// Holders returns the number of addresses with a non-zero balance.
func (l *Ledger) Holders() int {
	return len(l.balances)
}

// Transfer moves amount from one holder to another.
func (l *Ledger) Transfer(from, to types.Address, amount uint64) error {
	if from.IsZero() {
		return fmt.Errorf("%w: transfer from zero address", ErrInvalidAddress)
	}
	if to.IsZero() {
		return fmt.Errorf("%w: transfer to zero address", ErrInvalidAddress)
	}
	bal := l.balances[from]
	if bal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, bal, amount)
	}
	if from == to {
		return nil
	}
	if l.balances[to]+amount < l.balances[to] {
		return fmt.Errorf("%w: recipient balance", ErrOverflow)
	}
	l.setBalance(from, bal-amount)
	l.setBalance(to, l.balances[to]+amount)
	return nil
}

// Approve sets the allowance of spender over owner's tokens.
func (l *Ledger) Approve(owner, spender types.Address, amount uint64) error {
	if owner.IsZero() {
		return fmt.Errorf("%w: approve from zero address", ErrInvalidAddress)
	}
	if spender.IsZero() {
		return fmt.Errorf("%w: approve to zero address", ErrInvalidAddress)
	}
	l.setAllowance(allowanceKey{owner, spender}, amount)
	return nil
}

// SpendAllowance deducts amount from spender's allowance over owner and
// returns what remains.
func (l *Ledger) SpendAllowance(owner, spender types.Address, amount uint64) (uint64, error) {
	key := allowanceKey{owner, spender}
	cur := l.allowances[key]
	if cur < amount {
		return cur, fmt.Errorf("%w: allowed %d, need %d", ErrInsufficientAllowance, cur, amount)
	}
	l.setAllowance(key, cur-amount)
	return cur - amount, nil
}

// Mint creates amount tokens for to.
func (l *Ledger) Mint(to types.Address, amount uint64) error {
	if to.IsZero() {
		return fmt.Errorf("%w: mint to zero address", ErrInvalidAddress)
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if l.supply+amount < l.supply {
		return fmt.Errorf("%w: total supply", ErrOverflow)
	}
	// Every balance is bounded by supply, so the balance cannot overflow.
	l.setSupply(l.supply + amount)
	l.setBalance(to, l.balances[to]+amount)
	return nil
}

// Burn destroys amount tokens held by from.
func (l *Ledger) Burn(from types.Address, amount uint64) error {
	if from.IsZero() {
		return fmt.Errorf("%w: burn from zero address", ErrInvalidAddress)
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	bal := l.balances[from]
	if bal < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, bal, amount)
	}
	l.setBalance(from, bal-amount)
	l.setSupply(l.supply - amount)
	return nil
}

func (l *Ledger) setBalance(a types.Address, v uint64) {
	l.journal = append(l.journal, entry{kind: entryBalance, addr: a, prev: l.balances[a]})
	if v == 0 {
		delete(l.balances, a)
		return
	}
	l.balances[a] = v
}

func (l *Ledger) setAllowance(k allowanceKey, v uint64) {
	l.journal = append(l.journal, entry{kind: entryAllowance, key: k, prev: l.allowances[k]})
	if v == 0 {
		delete(l.allowances, k)
		return
	}
	l.allowances[k] = v
}

func (l *Ledger) setSupply(v uint64) {
	l.journal = append(l.journal, entry{kind: entrySupply, prev: l.supply})
	l.supply = v
}
