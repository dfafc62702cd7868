package scenario

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/internal/clock"
	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/internal/metrics"
	"github.com/Klingon-tech/klingnet-lockup/internal/token"
	"github.com/Klingon-tech/klingnet-lockup/internal/wallet"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Step kinds reported in StepResult.
const (
	KindOp      = "op"
	KindAdvance = "advance"
	KindCheck   = "check"
)

// StepResult records the outcome of one step.
type StepResult struct {
	Index   int            `json:"index"`
	Kind    string         `json:"kind"`
	Op      string         `json:"op,omitempty"`
	Time    time.Time      `json:"time"`
	Receipt *event.Receipt `json:"receipt,omitempty"`
	Err     string         `json:"error,omitempty"`
	Failure string         `json:"failure,omitempty"`
}

// Report is the outcome of a scenario run. A run stops at the first
// failing step.
type Report struct {
	Name     string                   `json:"name"`
	Accounts map[string]types.Address `json:"accounts"`
	Steps    []StepResult             `json:"steps"`
	Failure  string                   `json:"failure,omitempty"`
	End      time.Time                `json:"end"`
}

// Passed reports whether every step met its expectations.
func (r *Report) Passed() bool { return r.Failure == "" }

// Receipts returns the receipts of committed calls in step order.
func (r *Report) Receipts() []*event.Receipt {
	var out []*event.Receipt
	for _, st := range r.Steps {
		if st.Receipt != nil {
			out = append(out, st.Receipt)
		}
	}
	return out
}

// Option configures a run.
type Option func(*runner)

// WithSink forwards committed receipts to s.
func WithSink(s event.Sink) Option {
	return func(r *runner) { r.sink = s }
}

// WithMetrics records token metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *runner) { r.metrics = m }
}

// WithTokenDefaults supplies token parameters the scenario leaves unset.
func WithTokenDefaults(cfg token.Config) Option {
	return func(r *runner) { r.defaults = cfg }
}

type runner struct {
	s        *Scenario
	tok      *token.Token
	clk      *clock.Manual
	accounts map[string]types.Address
	owner    types.Address

	sink     event.Sink
	metrics  *metrics.Metrics
	defaults token.Config
}

// Run executes s against a fresh token. The returned error covers setup
// problems only; step failures are reported in the Report.
func Run(s *Scenario, opts ...Option) (*Report, error) {
	r := &runner{
		s: s,
		defaults: token.Config{
			Name:     "Lockup Token",
			Symbol:   "LCK",
			Decimals: 8,
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.resolveAccounts(); err != nil {
		return nil, err
	}
	r.setupToken()

	rep := &Report{Name: s.Name, Accounts: r.accounts}
	for i, st := range s.Steps {
		res := r.step(i, st)
		rep.Steps = append(rep.Steps, res)
		if res.Failure != "" {
			rep.Failure = fmt.Sprintf("step %d: %s", i, res.Failure)
			klog.Scenario.Warn().Str("scenario", s.Name).Int("step", i).Str("failure", res.Failure).Msg("Scenario failed")
			break
		}
	}
	rep.End = r.clk.Now()
	if rep.Passed() {
		klog.Scenario.Info().Str("scenario", s.Name).Int("steps", len(rep.Steps)).Msg("Scenario passed")
	}
	return rep, nil
}

func (r *runner) resolveAccounts() error {
	r.accounts = make(map[string]types.Address, len(r.s.Accounts))

	derived := 0
	for _, a := range r.s.Accounts {
		if a.Address == "" {
			derived++
		}
	}
	var holders []*wallet.Holder
	if derived > 0 {
		var err error
		holders, err = wallet.DeriveHolders(r.s.Mnemonic, "", 0, derived)
		if err != nil {
			return fmt.Errorf("derive accounts: %w", err)
		}
	}

	next := 0
	for _, a := range r.s.Accounts {
		if a.Address == "" {
			r.accounts[a.Name] = holders[next].Address
			next++
			continue
		}
		addr, err := types.ParseAddress(a.Address)
		if err != nil {
			return fmt.Errorf("account %q: %w", a.Name, err)
		}
		r.accounts[a.Name] = addr
	}

	ownerName := r.s.Token.Owner
	if ownerName == "" {
		ownerName = r.s.Accounts[0].Name
	}
	r.owner = r.accounts[ownerName]
	return nil
}

func (r *runner) setupToken() {
	cfg := r.defaults
	cfg.Owner = r.owner
	if r.s.Token.Name != "" {
		cfg.Name = r.s.Token.Name
	}
	if r.s.Token.Symbol != "" {
		cfg.Symbol = r.s.Token.Symbol
	}
	if r.s.Token.Decimals != nil {
		cfg.Decimals = *r.s.Token.Decimals
	}
	if r.s.Token.Cap != nil {
		cfg.Cap = *r.s.Token.Cap
	}

	r.clk = clock.NewManual(r.s.Start)
	opts := []token.Option{token.WithClock(r.clk)}
	if r.sink != nil {
		opts = append(opts, token.WithSink(r.sink))
	}
	if r.metrics != nil {
		opts = append(opts, token.WithMetrics(r.metrics))
	}
	r.tok = token.New(cfg, opts...)
}

func (r *runner) step(i int, st Step) StepResult {
	res := StepResult{Index: i, Time: r.clk.Now()}
	switch {
	case st.Advance != "":
		res.Kind = KindAdvance
		d, err := ParseDuration(st.Advance)
		if err != nil {
			res.Failure = err.Error()
			return res
		}
		res.Time = r.clk.Advance(d)

	case st.Check != nil:
		res.Kind = KindCheck
		res.Failure = r.check(st.Check)

	default:
		res.Kind = KindOp
		res.Op = st.Op
		rc, err := r.call(st)
		res.Receipt = rc
		if err != nil {
			res.Err = err.Error()
		}
		res.Failure = expect(st.ExpectError, err)
	}
	return res
}

func expect(want string, err error) string {
	switch {
	case want == "" && err != nil:
		return fmt.Sprintf("unexpected error: %v", err)
	case want != "" && err == nil:
		return fmt.Sprintf("expected error containing %q, got success", want)
	case want != "" && !strings.Contains(err.Error(), want):
		return fmt.Sprintf("expected error containing %q, got %q", want, err.Error())
	}
	return ""
}

// addr resolves an account name. The empty name is rejected so that a
// missing argument never silently means the zero address.
func (r *runner) addr(field, name string) (types.Address, error) {
	if name == ZeroAccount {
		return types.Address{}, nil
	}
	if name == "" {
		return types.Address{}, fmt.Errorf("%s is required", field)
	}
	a, ok := r.accounts[name]
	if !ok {
		return types.Address{}, fmt.Errorf("%s: unknown account %q", field, name)
	}
	return a, nil
}

func (r *runner) caller(st Step) (types.Address, error) {
	if st.Caller == "" {
		return r.owner, nil
	}
	return r.addr("caller", st.Caller)
}

func (r *runner) check(c *Check) string {
	var bad []string
	fail := func(format string, args ...any) {
		bad = append(bad, fmt.Sprintf(format, args...))
	}

	if c.TotalSupply != nil {
		if got := r.tok.TotalSupply(); got != *c.TotalSupply {
			fail("total_supply = %d, want %d", got, *c.TotalSupply)
		}
	}
	if c.Paused != nil {
		if got := r.tok.Paused(); got != *c.Paused {
			fail("paused = %t, want %t", got, *c.Paused)
		}
	}

	if c.Holder == "" {
		if c.Balance != nil || c.Spendable != nil || c.TotalLocked != nil ||
			c.LockCount != nil || c.Locks != nil || c.Frozen != nil {
			fail("holder is required for holder checks")
		}
		return strings.Join(bad, "; ")
	}
	h, err := r.addr("holder", c.Holder)
	if err != nil {
		return err.Error()
	}

	if c.Balance != nil {
		if got := r.tok.BalanceOf(h); got != *c.Balance {
			fail("balance = %d, want %d", got, *c.Balance)
		}
	}
	if c.Spendable != nil {
		if got := r.tok.Spendable(h); got != *c.Spendable {
			fail("spendable = %d, want %d", got, *c.Spendable)
		}
	}
	amt, n := r.tok.TotalLocked(h)
	if c.TotalLocked != nil && amt != *c.TotalLocked {
		fail("total_locked = %d, want %d", amt, *c.TotalLocked)
	}
	if c.LockCount != nil && n != *c.LockCount {
		fail("lock_count = %d, want %d", n, *c.LockCount)
	}
	if c.Locks != nil {
		var got []uint64
		for _, l := range r.tok.Locks(h) {
			got = append(got, l.Amount)
		}
		if !slices.Equal(got, c.Locks) {
			fail("locks = %v, want %v", got, c.Locks)
		}
	}
	if c.Frozen != nil {
		if got := r.tok.IsFrozen(h); got != *c.Frozen {
			fail("frozen = %t, want %t", got, *c.Frozen)
		}
	}
	return strings.Join(bad, "; ")
}
