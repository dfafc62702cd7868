package wallet

import (
	"fmt"

	"github.com/tyler-smith/go-bip32"

	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

// Holder keys live at m/44'/8888'/account'/0/index.
const (
	PurposeBIP44  = bip32.FirstHardenedChild + 44
	CoinTypeToken = bip32.FirstHardenedChild + 8888
	chainExternal = 0
)

// HDKey is a BIP-32 extended private key.
type HDKey struct {
	key *bip32.Key
}

// NewMasterKey creates a master HD key from a 64-byte seed.
func NewMasterKey(seed []byte) (*HDKey, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("seed must be %d bytes, got %d", SeedSize, len(seed))
	}
	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	return &HDKey{key: master}, nil
}

// DerivePath derives a key along a sequence of child indices. Add
// bip32.FirstHardenedChild to an index for hardened derivation.
func (k *HDKey) DerivePath(indices ...uint32) (*HDKey, error) {
	cur := k.key
	for _, idx := range indices {
		child, err := cur.NewChildKey(idx)
		if err != nil {
			return nil, fmt.Errorf("derive child %d: %w", idx, err)
		}
		cur = child
	}
	return &HDKey{key: cur}, nil
}

// PrivateKey returns the signing key held by k.
func (k *HDKey) PrivateKey() (*crypto.PrivateKey, error) {
	raw := k.key.Key
	// bip32 stores private keys as 33 bytes with a leading zero.
	if len(raw) == 33 && raw[0] == 0 {
		raw = raw[1:]
	}
	return crypto.PrivateKeyFromBytes(raw)
}

// PublicKey returns the compressed 33-byte public key.
func (k *HDKey) PublicKey() []byte {
	return k.key.PublicKey().Key
}

// Address returns the holder address of k's public key.
func (k *HDKey) Address() types.Address {
	return crypto.AddressFromPubKey(k.PublicKey())
}

// Holder is a derived token holder identity.
type Holder struct {
	Path    string
	Address types.Address
	Key     *crypto.PrivateKey
}

// HolderPath returns the derivation path of a holder key.
func HolderPath(account, index uint32) string {
	return fmt.Sprintf("m/44'/8888'/%d'/0/%d", account, index)
}

// DeriveHolder derives the holder at m/44'/8888'/account'/0/index.
func (k *HDKey) DeriveHolder(account, index uint32) (*Holder, error) {
	child, err := k.DerivePath(
		PurposeBIP44,
		CoinTypeToken,
		bip32.FirstHardenedChild+account,
		chainExternal,
		index,
	)
	if err != nil {
		return nil, err
	}
	priv, err := child.PrivateKey()
	if err != nil {
		return nil, fmt.Errorf("holder key %s: %w", HolderPath(account, index), err)
	}
	return &Holder{
		Path:    HolderPath(account, index),
		Address: child.Address(),
		Key:     priv,
	}, nil
}

// DeriveHolders derives count consecutive holders of account from a
// mnemonic, starting at index 0.
func DeriveHolders(mnemonic, passphrase string, account uint32, count int) ([]*Holder, error) {
	seed, err := SeedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	master, err := NewMasterKey(seed)
	if err != nil {
		return nil, err
	}
	out := make([]*Holder, 0, count)
	for i := 0; i < count; i++ {
		h, err := master.DeriveHolder(account, uint32(i))
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}
