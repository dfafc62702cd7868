package scenario

import (
	"slices"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

type opFunc func(r *runner, caller types.Address, st Step) (*event.Receipt, error)

// operations maps step op names to token calls.
var operations = map[string]opFunc{
	"transfer_with_lockup": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		to, err := r.addr("to", st.To)
		if err != nil {
			return nil, err
		}
		due, err := parseDue(st.Due, r.clk.Now())
		if err != nil {
			return nil, err
		}
		return r.tok.TransferWithLockUp(caller, to, st.Amount, due)
	},
	"unlock": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		h, err := r.addr("holder", st.Holder)
		if err != nil {
			return nil, err
		}
		return r.tok.Unlock(caller, h, st.Index)
	},
	"unlock_all": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		h, err := r.addr("holder", st.Holder)
		if err != nil {
			return nil, err
		}
		return r.tok.UnlockAll(caller, h)
	},
	"release_lock": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		h, err := r.addr("holder", st.Holder)
		if err != nil {
			return nil, err
		}
		return r.tok.ReleaseLock(caller, h)
	},

	"transfer": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		to, err := r.addr("to", st.To)
		if err != nil {
			return nil, err
		}
		return r.tok.Transfer(caller, to, st.Amount)
	},
	"transfer_from": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		from, err := r.addr("from", st.From)
		if err != nil {
			return nil, err
		}
		to, err := r.addr("to", st.To)
		if err != nil {
			return nil, err
		}
		return r.tok.TransferFrom(caller, from, to, st.Amount)
	},
	"approve": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		sp, err := r.addr("spender", st.Spender)
		if err != nil {
			return nil, err
		}
		return r.tok.Approve(caller, sp, st.Amount)
	},

	"mint": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		to, err := r.addr("to", st.To)
		if err != nil {
			return nil, err
		}
		return r.tok.Mint(caller, to, st.Amount)
	},
	"finish_mint": func(r *runner, caller types.Address, _ Step) (*event.Receipt, error) {
		return r.tok.FinishMint(caller)
	},
	"burn": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		return r.tok.Burn(caller, st.Amount)
	},
	"burn_from": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		acct, err := r.addr("account", st.Account)
		if err != nil {
			return nil, err
		}
		return r.tok.BurnFrom(caller, acct, st.Amount)
	},

	"pause": func(r *runner, caller types.Address, _ Step) (*event.Receipt, error) {
		return r.tok.Pause(caller)
	},
	"unpause": func(r *runner, caller types.Address, _ Step) (*event.Receipt, error) {
		return r.tok.Unpause(caller)
	},
	"freeze": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		acct, err := r.addr("account", st.Account)
		if err != nil {
			return nil, err
		}
		return r.tok.Freeze(caller, acct)
	},
	"unfreeze": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		acct, err := r.addr("account", st.Account)
		if err != nil {
			return nil, err
		}
		return r.tok.Unfreeze(caller, acct)
	},
	"transfer_ownership": func(r *runner, caller types.Address, st Step) (*event.Receipt, error) {
		to, err := r.addr("to", st.To)
		if err != nil {
			return nil, err
		}
		return r.tok.TransferOwnership(caller, to)
	},
	"renounce_ownership": func(r *runner, caller types.Address, _ Step) (*event.Receipt, error) {
		return r.tok.RenounceOwnership(caller)
	},
}

// Ops returns the supported op names, sorted.
func Ops() []string {
	out := make([]string, 0, len(operations))
	for name := range operations {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

func (r *runner) call(st Step) (*event.Receipt, error) {
	caller, err := r.caller(st)
	if err != nil {
		return nil, err
	}
	return operations[st.Op](r, caller, st)
}
