package journal

import (
	"encoding/hex"
	"fmt"

	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Report summarizes a journal verification.
type Report struct {
	Entries int
	Signed  int
	Head    types.Hash
}

// Verify walks the journal from the first entry, recomputing every hash
// and checking every signature. If pubKey is non-nil, every entry must be
// signed by that key.
func (j *Journal) Verify(pubKey []byte) (Report, error) {
	var (
		rep  Report
		prev types.Hash
		want uint64 = 1
	)
	err := j.ForEach(func(e *Entry) error {
		if e.Seq != want {
			return fmt.Errorf("%w: expected seq %d, found %d", ErrBrokenChain, want, e.Seq)
		}
		if e.PrevHash != prev {
			return fmt.Errorf("%w: entry %d prev hash %s, want %s", ErrBrokenChain, e.Seq, e.PrevHash, prev)
		}
		if got := crypto.HashChain(prev, e.Receipt); got != e.Hash {
			return fmt.Errorf("%w: entry %d hash %s, computed %s", ErrBrokenChain, e.Seq, e.Hash, got)
		}
		if !e.Signed() && pubKey != nil {
			return fmt.Errorf("%w: entry %d is unsigned", ErrBadSignature, e.Seq)
		}
		if e.Signed() {
			if err := verifyEntrySig(e, pubKey); err != nil {
				return err
			}
			rep.Signed++
		}
		prev = e.Hash
		want++
		rep.Entries++
		return nil
	})
	if err != nil {
		return rep, err
	}

	seq, head := j.Head()
	if seq != uint64(rep.Entries) || head != prev {
		return rep, fmt.Errorf("%w: head at %d (%s), walked %d (%s)", ErrBrokenChain, seq, head, rep.Entries, prev)
	}
	rep.Head = head
	return rep, nil
}

func verifyEntrySig(e *Entry, pubKey []byte) error {
	pub, err := hex.DecodeString(e.PubKey)
	if err != nil {
		return fmt.Errorf("%w: entry %d pubkey: %v", ErrBadSignature, e.Seq, err)
	}
	sig, err := hex.DecodeString(e.Sig)
	if err != nil {
		return fmt.Errorf("%w: entry %d sig: %v", ErrBadSignature, e.Seq, err)
	}
	if pubKey != nil && hex.EncodeToString(pubKey) != e.PubKey {
		return fmt.Errorf("%w: entry %d signed by unexpected key", ErrBadSignature, e.Seq)
	}
	if !crypto.VerifySignature(e.Hash[:], sig, pub) {
		return fmt.Errorf("%w: entry %d", ErrBadSignature, e.Seq)
	}
	return nil
}
