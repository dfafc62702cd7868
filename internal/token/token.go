// Package token implements a fungible token whose holders can receive
// time-locked funds.
//
// Locked funds are credited to the recipient's balance immediately but
// cannot be spent, transferred or burned until the lock is released.
// A holder may carry any number of independent locks, each with its own
// amount and due time. Locks are released one at a time once due
// (Unlock), all at once once due (UnlockAll) or unconditionally by the
// owner (ReleaseLock).
//
// Every mutating call is all-or-nothing and returns a receipt listing
// the events it emitted.
package token

import (
	"errors"
	"sync"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/internal/access"
	"github.com/Klingon-tech/klingnet-lockup/internal/clock"
	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/ledger"
	"github.com/Klingon-tech/klingnet-lockup/internal/lockup"
	"github.com/Klingon-tech/klingnet-lockup/internal/metrics"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Token errors.
var (
	ErrInsufficientUnlockedBalance = errors.New("cannot send more than unlocked amount")
	ErrLockNotDue                  = errors.New("cannot unlock before due")
	ErrMintingFinished             = errors.New("minting is finished")
	ErrCapExceeded                 = errors.New("cannot mint more than cap")
	ErrDueNotInFuture              = lockup.ErrDueNotInFuture
)

// Config holds the immutable token parameters.
type Config struct {
	Name     string
	Symbol   string
	Decimals uint8
	Cap      uint64 // 0 means uncapped.
	Owner    types.Address
}

// Guard is the set of checks the token runs before mutating state.
type Guard interface {
	RequireOwner(caller types.Address) error
	RequireNotPaused() error
	RequireNotFrozen(holder types.Address) error
}

// Option configures a Token.
type Option func(*Token)

// WithClock sets the time source. Defaults to the system clock.
func WithClock(c clock.Clock) Option {
	return func(t *Token) { t.clock = c }
}

// WithGuard replaces the checks run before each call. Administrative
// operations (pause, freeze, ownership) still act on the built-in gate.
func WithGuard(g Guard) Option {
	return func(t *Token) { t.guard = g }
}

// WithSink publishes every committed receipt to s. A sink error reverts
// the call.
func WithSink(s event.Sink) Option {
	return func(t *Token) { t.sink = s }
}

// WithMetrics records call and lock metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Token) { t.metrics = m }
}

// Token is a lockable fungible token. All methods are safe for
// concurrent use; mutations are serialized.
type Token struct {
	mu sync.RWMutex

	cfg     Config
	ledger  *ledger.Ledger
	locks   *lockup.Registry
	gate    *access.Gate
	guard   Guard
	clock   clock.Clock
	sink    event.Sink
	metrics *metrics.Metrics

	mintingFinished bool
}

// New creates a token with zero supply owned by cfg.Owner.
func New(cfg Config, opts ...Option) *Token {
	t := &Token{
		cfg:    cfg,
		ledger: ledger.New(),
		locks:  lockup.NewRegistry(),
		gate:   access.NewGate(cfg.Owner),
		clock:  clock.System{},
	}
	t.guard = t.gate
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the token name.
func (t *Token) Name() string { return t.cfg.Name }

// Symbol returns the token symbol.
func (t *Token) Symbol() string { return t.cfg.Symbol }

// Decimals returns the number of decimal places of the display unit.
func (t *Token) Decimals() uint8 { return t.cfg.Decimals }

// Cap returns the maximum total supply, 0 if uncapped.
func (t *Token) Cap() uint64 { return t.cfg.Cap }

// BalanceOf returns the full balance of holder, locked funds included.
func (t *Token) BalanceOf(holder types.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.BalanceOf(holder)
}

// TotalSupply returns the amount of tokens in existence.
func (t *Token) TotalSupply() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.TotalSupply()
}

// Allowance returns how much spender may move on behalf of owner.
func (t *Token) Allowance(owner, spender types.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.ledger.Allowance(owner, spender)
}

// Spendable returns the part of holder's balance not held by locks.
// Matured locks still count until they are released.
func (t *Token) Spendable(holder types.Address) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.spendable(holder)
}

// Owner returns the current owner.
func (t *Token) Owner() types.Address {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gate.Owner()
}

// Paused reports whether the token is paused.
func (t *Token) Paused() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gate.Paused()
}

// IsFrozen reports whether holder is frozen.
func (t *Token) IsFrozen(holder types.Address) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.gate.IsFrozen(holder)
}

// MintingFinished reports whether minting was permanently disabled.
func (t *Token) MintingFinished() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.mintingFinished
}

// Now returns the token's current time.
func (t *Token) Now() time.Time {
	return t.clock.Now()
}

func (t *Token) spendable(holder types.Address) uint64 {
	return t.ledger.BalanceOf(holder) - t.locks.TotalLocked(holder).Amount
}
