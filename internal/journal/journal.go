// Package journal keeps an append-only, hash-chained record of the
// receipts of committed token calls.
//
// Each entry commits to its predecessor:
//
//	Hash = BLAKE3(PrevHash || receipt JSON)
//
// and can optionally be signed with a Schnorr key, so a journal copied
// off the machine can be checked for tampering with Verify. The journal
// records what happened; it is not a snapshot of token state.
package journal

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Klingon-tech/klingnet-lockup/internal/event"
	klog "github.com/Klingon-tech/klingnet-lockup/internal/log"
	"github.com/Klingon-tech/klingnet-lockup/internal/storage"
	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Journal errors.
var (
	ErrNotFound     = errors.New("journal entry not found")
	ErrBrokenChain  = errors.New("journal hash chain broken")
	ErrBadSignature = errors.New("journal entry signature invalid")
)

var (
	prefixEntry = []byte("e/")     // e/<seq(8)> -> entry JSON
	keyHead     = []byte("s/head") // seq(8) + hash(32)
)

// Entry is one journal record.
type Entry struct {
	Seq      uint64          `json:"seq"`
	PrevHash types.Hash      `json:"prev_hash"`
	Hash     types.Hash      `json:"hash"`
	Receipt  json.RawMessage `json:"receipt"`
	PubKey   string          `json:"pubkey,omitempty"`
	Sig      string          `json:"sig,omitempty"`
}

// Decode returns the receipt stored in the entry.
func (e *Entry) Decode() (*event.Receipt, error) {
	var r event.Receipt
	if err := json.Unmarshal(e.Receipt, &r); err != nil {
		return nil, fmt.Errorf("decode receipt %d: %w", e.Seq, err)
	}
	return &r, nil
}

// Signed reports whether the entry carries a signature.
func (e *Entry) Signed() bool {
	return e.Sig != ""
}

// Option configures a Journal.
type Option func(*Journal)

// WithSigner signs every appended entry with s.
func WithSigner(s crypto.Signer) Option {
	return func(j *Journal) { j.signer = s }
}

// Journal is an append-only receipt log over a storage.DB. Safe for
// concurrent use.
type Journal struct {
	mu     sync.Mutex
	db     storage.DB
	signer crypto.Signer

	seq  uint64
	head types.Hash
}

// Open loads the journal head from db.
func Open(db storage.DB, opts ...Option) (*Journal, error) {
	j := &Journal{db: db}
	for _, opt := range opts {
		opt(j)
	}

	data, err := db.Get(keyHead)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Fresh journal.
	case err != nil:
		return nil, fmt.Errorf("journal head: %w", err)
	case len(data) != 8+types.HashSize:
		return nil, fmt.Errorf("corrupt journal head: got %d bytes", len(data))
	default:
		j.seq = binary.BigEndian.Uint64(data[:8])
		copy(j.head[:], data[8:])
	}

	klog.Journal.Debug().Uint64("seq", j.seq).Str("head", j.head.String()).Msg("Journal opened")
	return j, nil
}

// Head returns the sequence number and hash of the last entry. A fresh
// journal returns 0 and the zero hash.
func (j *Journal) Head() (uint64, types.Hash) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.seq, j.head
}

// Record implements event.Sink.
func (j *Journal) Record(r *event.Receipt) error {
	_, err := j.Append(r)
	return err
}

// Append adds r to the journal. The entry and the new head are written
// in one batch.
func (j *Journal) Append(r *event.Receipt) (*Entry, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("receipt marshal: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	e := &Entry{
		Seq:      j.seq + 1,
		PrevHash: j.head,
		Hash:     crypto.HashChain(j.head, body),
		Receipt:  body,
	}
	if j.signer != nil {
		sig, err := j.signer.Sign(e.Hash[:])
		if err != nil {
			return nil, fmt.Errorf("sign entry %d: %w", e.Seq, err)
		}
		e.PubKey = hex.EncodeToString(j.signer.PublicKey())
		e.Sig = hex.EncodeToString(sig)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("entry marshal: %w", err)
	}
	headVal := make([]byte, 8+types.HashSize)
	binary.BigEndian.PutUint64(headVal[:8], e.Seq)
	copy(headVal[8:], e.Hash[:])

	if err := j.write(entryKey(e.Seq), data, headVal); err != nil {
		return nil, err
	}
	j.seq = e.Seq
	j.head = e.Hash

	klog.Journal.Debug().
		Uint64("seq", e.Seq).
		Str("op", r.Op).
		Str("hash", e.Hash.String()).
		Msg("Receipt journaled")
	return e, nil
}

func (j *Journal) write(key, entry, head []byte) error {
	if batcher, ok := j.db.(storage.Batcher); ok {
		b := batcher.NewBatch()
		if err := b.Put(key, entry); err != nil {
			return fmt.Errorf("journal batch put: %w", err)
		}
		if err := b.Put(keyHead, head); err != nil {
			return fmt.Errorf("journal batch head: %w", err)
		}
		if err := b.Commit(); err != nil {
			return fmt.Errorf("journal commit: %w", err)
		}
		return nil
	}
	if err := j.db.Put(key, entry); err != nil {
		return fmt.Errorf("journal put: %w", err)
	}
	if err := j.db.Put(keyHead, head); err != nil {
		return fmt.Errorf("journal head put: %w", err)
	}
	return nil
}

// Get returns the entry with the given sequence number.
func (j *Journal) Get(seq uint64) (*Entry, error) {
	data, err := j.db.Get(entryKey(seq))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, seq)
	}
	if err != nil {
		return nil, fmt.Errorf("journal get %d: %w", seq, err)
	}
	return decodeEntry(data)
}

// ForEach visits every entry in sequence order.
func (j *Journal) ForEach(fn func(e *Entry) error) error {
	return j.db.ForEach(prefixEntry, func(_, value []byte) error {
		e, err := decodeEntry(value)
		if err != nil {
			return err
		}
		return fn(e)
	})
}

// List returns up to limit entries starting at sequence number from.
// A limit of 0 returns everything from from onwards.
func (j *Journal) List(from uint64, limit int) ([]*Entry, error) {
	var out []*Entry
	stop := errors.New("stop")
	err := j.ForEach(func(e *Entry) error {
		if e.Seq < from {
			return nil
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			return stop
		}
		return nil
	})
	if err != nil && !errors.Is(err, stop) {
		return nil, err
	}
	return out, nil
}

func decodeEntry(data []byte) (*Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("entry unmarshal: %w", err)
	}
	return &e, nil
}

func entryKey(seq uint64) []byte {
	key := make([]byte, len(prefixEntry)+8)
	copy(key, prefixEntry)
	binary.BigEndian.PutUint64(key[len(prefixEntry):], seq)
	return key
}
