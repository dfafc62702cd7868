package storage

// PrefixDB wraps a DB and prepends a fixed prefix to all keys, giving
// each journal its own namespace within one underlying database.
type PrefixDB struct {
	inner  DB
	prefix []byte
}

// NewPrefixDB creates a new PrefixDB wrapping inner with the given prefix.
func NewPrefixDB(inner DB, prefix []byte) *PrefixDB {
	return &PrefixDB{inner: inner, prefix: cloneBytes(prefix)}
}

func (p *PrefixDB) prefixed(key []byte) []byte {
	out := make([]byte, len(p.prefix)+len(key))
	copy(out, p.prefix)
	copy(out[len(p.prefix):], key)
	return out
}

// Get retrieves a value by key.
func (p *PrefixDB) Get(key []byte) ([]byte, error) {
	return p.inner.Get(p.prefixed(key))
}

// Put stores a key-value pair.
func (p *PrefixDB) Put(key, value []byte) error {
	return p.inner.Put(p.prefixed(key), value)
}

// Delete removes a key.
func (p *PrefixDB) Delete(key []byte) error {
	return p.inner.Delete(p.prefixed(key))
}

// Has checks if a key exists.
func (p *PrefixDB) Has(key []byte) (bool, error) {
	return p.inner.Has(p.prefixed(key))
}

// ForEach iterates over keys with the given prefix inside the namespace.
// Keys passed to fn have the namespace stripped.
func (p *PrefixDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return p.inner.ForEach(p.prefixed(prefix), func(key, value []byte) error {
		return fn(key[len(p.prefix):], value)
	})
}

// DeleteAll removes every key in the namespace.
func (p *PrefixDB) DeleteAll() error {
	var keys [][]byte
	err := p.inner.ForEach(p.prefix, func(key, _ []byte) error {
		keys = append(keys, key)
		return nil
	})
	if err != nil {
		return err
	}
	b := p.NewBatch()
	for _, key := range keys {
		if err := b.Delete(key[len(p.prefix):]); err != nil {
			return err
		}
	}
	return b.Commit()
}

// Close is a no-op; the inner DB manages its own lifecycle.
func (p *PrefixDB) Close() error {
	return nil
}

// NewBatch returns a batch that writes into the namespace. It is atomic
// when the inner DB is a Batcher.
func (p *PrefixDB) NewBatch() Batch {
	if batcher, ok := p.inner.(Batcher); ok {
		return &prefixBatch{inner: batcher.NewBatch(), p: p}
	}
	return &sequentialBatch{db: p}
}

type prefixBatch struct {
	inner Batch
	p     *PrefixDB
}

func (pb *prefixBatch) Put(key, value []byte) error {
	return pb.inner.Put(pb.p.prefixed(key), value)
}

func (pb *prefixBatch) Delete(key []byte) error {
	return pb.inner.Delete(pb.p.prefixed(key))
}

func (pb *prefixBatch) Commit() error {
	return pb.inner.Commit()
}

// sequentialBatch applies buffered writes one at a time.
type sequentialBatch struct {
	db  DB
	ops []batchOp
}

func (sb *sequentialBatch) Put(key, value []byte) error {
	sb.ops = append(sb.ops, batchOp{key: cloneBytes(key), value: cloneBytes(value)})
	return nil
}

func (sb *sequentialBatch) Delete(key []byte) error {
	sb.ops = append(sb.ops, batchOp{key: cloneBytes(key)})
	return nil
}

func (sb *sequentialBatch) Commit() error {
	for _, op := range sb.ops {
		var err error
		if op.value == nil {
			err = sb.db.Delete(op.key)
		} else {
			err = sb.db.Put(op.key, op.value)
		}
		if err != nil {
			return err
		}
	}
	sb.ops = nil
	return nil
}
