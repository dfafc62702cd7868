package ledger

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

var (
	alice   = types.Address{0xa1}
	bob     = types.Address{0xb0}
	spender = types.Address{0x5e}
	zero    types.Address
)

func funded(t *testing.T, amounts map[types.Address]uint64) *Ledger {
	t.Helper()
	l := New()
	for a, v := range amounts {
		if err := l.Mint(a, v); err != nil {
			t.Fatalf("Mint: %v", err)
		}
	}
	l.Commit()
	return l
}

func TestTransfer(t *testing.T) {
	l := funded(t, map[types.Address]uint64{alice: 100})

	if err := l.Transfer(alice, bob, 40); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if got := l.BalanceOf(alice); got != 60 {
		t.Errorf("alice = %d, want 60", got)
	}
	if got := l.BalanceOf(bob); got != 40 {
		t.Errorf("bob = %d, want 40", got)
	}
	if got := l.TotalSupply(); got != 100 {
		t.Errorf("supply = %d, want 100", got)
	}
}

func TestTransfer_Errors(t *testing.T) {
	tests := []struct {
		name     string
		from, to types.Address
		amount   uint64
		wantErr  error
	}{
		{"from zero", zero, bob, 1, ErrInvalidAddress},
		{"to zero", alice, zero, 1, ErrInvalidAddress},
		{"over balance", alice, bob, 101, ErrInsufficientBalance},
		{"empty sender", bob, alice, 1, ErrInsufficientBalance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := funded(t, map[types.Address]uint64{alice: 100})
			if err := l.Transfer(tt.from, tt.to, tt.amount); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transfer error = %v, want %v", err, tt.wantErr)
			}
			if l.BalanceOf(alice) != 100 || l.BalanceOf(bob) != 0 {
				t.Error("failed transfer changed balances")
			}
		})
	}
}

func TestTransfer_ToSelf(t *testing.T) {
	l := funded(t, map[types.Address]uint64{alice: 100})
	if err := l.Transfer(alice, alice, 100); err != nil {
		t.Fatalf("Transfer to self: %v", err)
	}
	if got := l.BalanceOf(alice); got != 100 {
		t.Errorf("alice = %d, want 100", got)
	}
}

func TestAllowance(t *testing.T) {
	l := funded(t, map[types.Address]uint64{alice: 100})

	if err := l.Approve(alice, zero, 1); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Approve zero spender = %v, want ErrInvalidAddress", err)
	}
	if err := l.Approve(alice, spender, 50); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if got := l.Allowance(alice, spender); got != 50 {
		t.Errorf("Allowance = %d, want 50", got)
	}

	left, err := l.SpendAllowance(alice, spender, 30)
	if err != nil {
		t.Fatalf("SpendAllowance: %v", err)
	}
	if left != 20 || l.Allowance(alice, spender) != 20 {
		t.Errorf("remaining = %d / %d, want 20", left, l.Allowance(alice, spender))
	}
	if _, err := l.SpendAllowance(alice, spender, 21); !errors.Is(err, ErrInsufficientAllowance) {
		t.Errorf("overspend = %v, want ErrInsufficientAllowance", err)
	}
	if _, err := l.SpendAllowance(bob, spender, 1); !errors.Is(err, ErrInsufficientAllowance) {
		t.Errorf("spend without approval = %v, want ErrInsufficientAllowance", err)
	}
}

func TestMintBurn(t *testing.T) {
	l := New()
	if err := l.Mint(zero, 1); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("Mint to zero = %v, want ErrInvalidAddress", err)
	}
	if err := l.Mint(alice, 0); !errors.Is(err, ErrZeroAmount) {
		t.Errorf("Mint zero = %v, want ErrZeroAmount", err)
	}
	if err := l.Mint(alice, ^uint64(0)); err != nil {
		t.Fatalf("Mint max: %v", err)
	}
	if err := l.Mint(bob, 1); !errors.Is(err, ErrOverflow) {
		t.Errorf("Mint past max supply = %v, want ErrOverflow", err)
	}
	if err := l.Burn(alice, ^uint64(0)-10); err != nil {
		t.Fatalf("Burn: %v", err)
	}
	if l.TotalSupply() != 10 || l.BalanceOf(alice) != 10 {
		t.Errorf("after burn supply=%d alice=%d, want 10/10", l.TotalSupply(), l.BalanceOf(alice))
	}
	if err := l.Burn(alice, 11); !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Burn over balance = %v, want ErrInsufficientBalance", err)
	}
}

func TestRevertToSnapshot(t *testing.T) {
	l := funded(t, map[types.Address]uint64{alice: 100})
	l.Approve(alice, spender, 10)
	l.Commit()

	snap := l.Snapshot()
	l.Transfer(alice, bob, 60)
	l.SpendAllowance(alice, spender, 10)
	l.Mint(bob, 5)
	l.Burn(alice, 40)
	l.RevertToSnapshot(snap)

	if l.BalanceOf(alice) != 100 || l.BalanceOf(bob) != 0 {
		t.Errorf("balances not restored: alice=%d bob=%d", l.BalanceOf(alice), l.BalanceOf(bob))
	}
	if l.Allowance(alice, spender) != 10 {
		t.Errorf("allowance not restored: %d", l.Allowance(alice, spender))
	}
	if l.TotalSupply() != 100 {
		t.Errorf("supply not restored: %d", l.TotalSupply())
	}
	if l.Holders() != 1 {
		t.Errorf("Holders = %d, want 1 (zero balances are dropped)", l.Holders())
	}
}
