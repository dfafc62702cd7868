package journal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	"github.com/Klingon-tech/klingnet-lockup/internal/storage"
	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

var (
	t0     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	holder = types.Address{0x0a}
)

func receipt(op string, amount uint64) *event.Receipt {
	r := event.NewReceipt(op, holder, t0)
	r.Emit(event.Unlock(holder, amount))
	return r
}

func appendN(t *testing.T, j *Journal, n int) []*Entry {
	t.Helper()
	var out []*Entry
	for i := 0; i < n; i++ {
		e, err := j.Append(receipt("Unlock", uint64(i+1)))
		if err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
		out = append(out, e)
	}
	return out
}

func TestAppend_Chain(t *testing.T) {
	j, err := Open(storage.NewMemory())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if seq, head := j.Head(); seq != 0 || !head.IsZero() {
		t.Fatalf("fresh Head = (%d, %s)", seq, head)
	}

	entries := appendN(t, j, 3)
	var prev types.Hash
	for i, e := range entries {
		if e.Seq != uint64(i+1) {
			t.Errorf("entry %d Seq = %d", i, e.Seq)
		}
		if e.PrevHash != prev {
			t.Errorf("entry %d PrevHash = %s, want %s", i, e.PrevHash, prev)
		}
		if e.Hash != crypto.HashChain(prev, e.Receipt) {
			t.Errorf("entry %d hash mismatch", i)
		}
		prev = e.Hash
	}
	if seq, head := j.Head(); seq != 3 || head != prev {
		t.Errorf("Head = (%d, %s), want (3, %s)", seq, head, prev)
	}
}

func TestGetListForEach(t *testing.T) {
	j, _ := Open(storage.NewMemory())
	appendN(t, j, 5)

	e, err := j.Get(2)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	r, err := e.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if r.Op != "Unlock" || len(r.Events) != 1 || r.Events[0].Amount != 2 {
		t.Errorf("decoded receipt = %+v", r)
	}
	if _, err := j.Get(6); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(6) = %v, want ErrNotFound", err)
	}

	list, err := j.List(2, 2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Seq != 2 || list[1].Seq != 3 {
		t.Errorf("List(2, 2) = %d entries", len(list))
	}
	all, _ := j.List(1, 0)
	if len(all) != 5 {
		t.Errorf("List(1, 0) = %d entries, want 5", len(all))
	}

	var seqs []uint64
	j.ForEach(func(e *Entry) error {
		seqs = append(seqs, e.Seq)
		return nil
	})
	for i, s := range seqs {
		if s != uint64(i+1) {
			t.Fatalf("ForEach order = %v", seqs)
		}
	}
}

func TestReopen(t *testing.T) {
	db, err := storage.NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger: %v", err)
	}
	defer db.Close()

	j1, _ := Open(db)
	appendN(t, j1, 2)
	seq, head := j1.Head()

	j2, err := Open(db)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s, h := j2.Head(); s != seq || h != head {
		t.Fatalf("reopened Head = (%d, %s), want (%d, %s)", s, h, seq, head)
	}
	e, err := j2.Append(receipt("UnlockAll", 9))
	if err != nil {
		t.Fatalf("Append after reopen: %v", err)
	}
	if e.Seq != 3 || e.PrevHash != head {
		t.Errorf("entry after reopen = seq %d prev %s", e.Seq, e.PrevHash)
	}
	if _, err := j2.Verify(nil); err != nil {
		t.Errorf("Verify: %v", err)
	}
}

func TestVerify_Signed(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	j, _ := Open(storage.NewMemory(), WithSigner(key))
	appendN(t, j, 3)

	rep, err := j.Verify(key.PublicKey())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if rep.Entries != 3 || rep.Signed != 3 {
		t.Errorf("report = %+v", rep)
	}

	other, _ := crypto.GenerateKey()
	if _, err := j.Verify(other.PublicKey()); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify with other key = %v, want ErrBadSignature", err)
	}
}

func TestVerify_UnsignedWithKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	j, _ := Open(storage.NewMemory())
	appendN(t, j, 3)

	if _, err := j.Verify(nil); err != nil {
		t.Fatalf("Verify(nil): %v", err)
	}
	rep, err := j.Verify(key.PublicKey())
	if !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Verify with key = %v, want ErrBadSignature", err)
	}
	if rep.Entries != 0 {
		t.Errorf("entries before failure = %d, want 0", rep.Entries)
	}
}

func TestVerify_Tampered(t *testing.T) {
	db := storage.NewMemory()
	j, _ := Open(db)
	appendN(t, j, 3)

	e, _ := j.Get(2)
	var r event.Receipt
	json.Unmarshal(e.Receipt, &r)
	r.Events[0].Amount = 1_000_000
	e.Receipt, _ = json.Marshal(&r)
	data, _ := json.Marshal(e)
	db.Put(entryKey(2), data)

	if _, err := j.Verify(nil); !errors.Is(err, ErrBrokenChain) {
		t.Fatalf("Verify tampered = %v, want ErrBrokenChain", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	key, _ := crypto.GenerateKey()
	db := storage.NewMemory()
	j, _ := Open(db, WithSigner(key))
	appendN(t, j, 2)

	e, _ := j.Get(1)
	sig := []byte(e.Sig)
	if sig[0] == '0' {
		sig[0] = '1'
	} else {
		sig[0] = '0'
	}
	e.Sig = string(sig)
	data, _ := json.Marshal(e)
	db.Put(entryKey(1), data)

	if _, err := j.Verify(nil); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("Verify = %v, want ErrBadSignature", err)
	}
}

func TestRecordAsSink(t *testing.T) {
	j, _ := Open(storage.NewPrefixDB(storage.NewMemory(), []byte("journal/")))
	var sink event.Sink = j
	if err := sink.Record(receipt("ReleaseLock", 5)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if seq, _ := j.Head(); seq != 1 {
		t.Errorf("Head seq = %d, want 1", seq)
	}
}
