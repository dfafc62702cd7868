// Package crypto provides hashing and signing primitives for holder
// identities and the receipt journal.
package crypto

import (
	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 digest of data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// HashChain hashes prev || data. Used to link journal entries.
func HashChain(prev types.Hash, data []byte) types.Hash {
	h := blake3.New()
	h.Write(prev[:])
	h.Write(data)
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// AddressFromPubKey derives a holder address from a compressed public key.
// Address = BLAKE3(compressed_pubkey)[:20].
func AddressFromPubKey(pubKey []byte) types.Address {
	h := Hash(pubKey)
	var addr types.Address
	copy(addr[:], h[:types.AddressSize])
	return addr
}
