package token

import (
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Klingon-tech/klingnet-lockup/internal/access"
	"github.com/Klingon-tech/klingnet-lockup/internal/clock"
	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/metrics"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

var errSinkDown = errors.New("sink down")

// failingSink rejects receipts while fail is set.
type failingSink struct {
	fail bool
	got  []*event.Receipt
}

func (s *failingSink) Record(r *event.Receipt) error {
	if s.fail {
		return errSinkDown
	}
	s.got = append(s.got, r)
	return nil
}

func TestSinkFailureRevertsCall(t *testing.T) {
	sink := &failingSink{}
	clk := clock.NewManual(t0)
	tok := New(Config{Owner: owner}, WithClock(clk), WithSink(sink))
	if _, err := tok.Mint(owner, owner, 10_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}
	if _, err := tok.TransferWithLockUp(owner, recipient, 300, t0.Add(week)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := tok.TransferWithLockUp(owner, recipient, 600, t0.Add(2*week)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	locks := tok.Locks(recipient)
	clk.Set(t0.Add(3 * week))

	sink.fail = true
	calls := []struct {
		name string
		run  func() (*event.Receipt, error)
	}{
		{"Transfer", func() (*event.Receipt, error) { return tok.Transfer(owner, sender, 1) }},
		{"TransferWithLockUp", func() (*event.Receipt, error) {
			return tok.TransferWithLockUp(owner, recipient, 5, t0.Add(4*week))
		}},
		{"Unlock", func() (*event.Receipt, error) { return tok.Unlock(recipient, recipient, 0) }},
		{"UnlockAll", func() (*event.Receipt, error) { return tok.UnlockAll(recipient, recipient) }},
		{"ReleaseLock", func() (*event.Receipt, error) { return tok.ReleaseLock(owner, recipient) }},
		{"Mint", func() (*event.Receipt, error) { return tok.Mint(owner, sender, 1) }},
		{"FinishMint", func() (*event.Receipt, error) { return tok.FinishMint(owner) }},
		{"Burn", func() (*event.Receipt, error) { return tok.Burn(owner, 1) }},
		{"Pause", func() (*event.Receipt, error) { return tok.Pause(owner) }},
		{"Freeze", func() (*event.Receipt, error) { return tok.Freeze(owner, sender) }},
		{"TransferOwnership", func() (*event.Receipt, error) { return tok.TransferOwnership(owner, sender) }},
		{"RenounceOwnership", func() (*event.Receipt, error) { return tok.RenounceOwnership(owner) }},
	}
	for _, c := range calls {
		rc, err := c.run()
		if !errors.Is(err, errSinkDown) {
			t.Errorf("%s: error = %v, want sink error", c.name, err)
		}
		if rc != nil {
			t.Errorf("%s: returned a receipt on failure", c.name)
		}
	}

	if tok.BalanceOf(owner) != 10_000-900 || tok.BalanceOf(sender) != 0 || tok.TotalSupply() != 10_000 {
		t.Errorf("balances changed: owner=%d sender=%d supply=%d", tok.BalanceOf(owner), tok.BalanceOf(sender), tok.TotalSupply())
	}
	if !slices.Equal(tok.Locks(recipient), locks) {
		t.Errorf("locks changed: %+v", tok.Locks(recipient))
	}
	if tok.Paused() || tok.IsFrozen(sender) || tok.MintingFinished() || tok.Owner() != owner {
		t.Error("gate state changed")
	}
	if len(sink.got) != 3 {
		t.Errorf("sink recorded %d receipts, want 3", len(sink.got))
	}
}

func TestFailedCallLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	lockWeeks(t, f, recipient, []int{1, 2, 3})
	f.clk.Set(t0.Add(2*week + day))
	before := f.tok.Locks(recipient)
	events := len(f.sink.Events())

	if _, err := f.tok.Unlock(recipient, recipient, 2); !errors.Is(err, ErrLockNotDue) {
		t.Fatalf("Unlock = %v, want ErrLockNotDue", err)
	}
	if _, err := f.tok.ReleaseLock(stranger, recipient); !errors.Is(err, access.ErrUnauthorized) {
		t.Fatalf("ReleaseLock = %v, want ErrUnauthorized", err)
	}
	if !slices.Equal(f.tok.Locks(recipient), before) {
		t.Error("locks changed")
	}
	if len(f.sink.Events()) != events {
		t.Error("failed calls published events")
	}
}

// denyAll rejects every guarded operation.
type denyAll struct{}

func (denyAll) RequireOwner(types.Address) error     { return access.ErrUnauthorized }
func (denyAll) RequireNotPaused() error              { return access.ErrPaused }
func (denyAll) RequireNotFrozen(types.Address) error { return access.ErrFrozen }

func TestWithGuard(t *testing.T) {
	tok := New(Config{Owner: owner}, WithClock(clock.NewManual(t0)), WithGuard(denyAll{}))
	if _, err := tok.Mint(owner, owner, 1); !errors.Is(err, access.ErrUnauthorized) {
		t.Errorf("Mint = %v, want ErrUnauthorized", err)
	}
	if _, err := tok.Transfer(owner, recipient, 0); !errors.Is(err, access.ErrPaused) {
		t.Errorf("Transfer = %v, want ErrPaused", err)
	}
	if _, err := tok.UnlockAll(owner, recipient); err != nil {
		t.Errorf("UnlockAll is unguarded: %v", err)
	}
}

func TestMetrics(t *testing.T) {
	m := metrics.New()
	clk := clock.NewManual(t0)
	tok := New(Config{Owner: owner}, WithClock(clk), WithMetrics(m))
	tok.Mint(owner, owner, 10_000)
	for _, p := range []int{1, 2, 3, 9} {
		if _, err := tok.TransferWithLockUp(owner, recipient, 100, t0.Add(time.Duration(p)*week)); err != nil {
			t.Fatalf("lock: %v", err)
		}
	}
	clk.Set(t0.Add(2*week + day))
	tok.Unlock(recipient, recipient, 0)
	tok.UnlockAll(recipient, recipient)
	tok.Unlock(recipient, recipient, 5)

	if c := testutil.ToFloat64(m.LocksCreated); c != 4 {
		t.Errorf("locks created = %v, want 4", c)
	}
	if c := testutil.ToFloat64(m.LocksReleased.WithLabelValues(metrics.PathUnlock)); c != 1 {
		t.Errorf("released by unlock = %v, want 1", c)
	}
	if c := testutil.ToFloat64(m.LocksReleased.WithLabelValues(metrics.PathUnlockAll)); c != 1 {
		t.Errorf("released by unlock all = %v, want 1", c)
	}
	if g := testutil.ToFloat64(m.ActiveLocks); g != 2 {
		t.Errorf("active locks = %v, want 2", g)
	}
	if g := testutil.ToFloat64(m.LockedAmount); g != 200 {
		t.Errorf("locked amount = %v, want 200", g)
	}
	if c := testutil.ToFloat64(m.Calls.WithLabelValues("Unlock", "error")); c != 1 {
		t.Errorf("failed unlocks = %v, want 1", c)
	}
}

func TestConcurrentCalls(t *testing.T) {
	tok := New(Config{Owner: owner}, WithClock(clock.NewManual(t0)))
	if _, err := tok.Mint(owner, owner, 1_000_000); err != nil {
		t.Fatalf("Mint: %v", err)
	}

	holders := []types.Address{{0x10}, {0x11}, {0x12}, {0x13}}
	var wg sync.WaitGroup
	for _, h := range holders {
		wg.Add(1)
		go func(h types.Address) {
			defer wg.Done()
			for i := 1; i <= 50; i++ {
				if _, err := tok.TransferWithLockUp(owner, h, 10, t0.Add(time.Duration(i)*day)); err != nil {
					t.Errorf("lock: %v", err)
					return
				}
				_ = tok.Spendable(h)
			}
		}(h)
	}
	wg.Wait()

	for _, h := range holders {
		checkHolder(t, tok, h)
		if amt, n := tok.TotalLocked(h); amt != 500 || n != 50 {
			t.Errorf("TotalLocked = (%d, %d), want (500, 50)", amt, n)
		}
	}
	if got := tok.BalanceOf(owner); got != 1_000_000-4*500 {
		t.Errorf("owner balance = %d", got)
	}
}
