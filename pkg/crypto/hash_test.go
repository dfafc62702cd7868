package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/Klingon-tech/klingnet-lockup/pkg/types"
)

func hexToHash(t *testing.T, s string) types.Hash {
	t.Helper()
	h, err := types.HexToHash(s)
	if err != nil {
		t.Fatalf("bad hex: %v", err)
	}
	return h
}

func TestHash(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty input", []byte{}, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
		{"hello", []byte("hello"), "ea8f163db38682925e4491c5e58d4bb3506ef8c14eb78a86e908c5624a67200f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hash(tt.input)
			if want := hexToHash(t, tt.want); got != want {
				t.Errorf("Hash(%q) = %x, want %x", tt.input, got, want)
			}
		})
	}
}

func TestHashChain_MatchesConcatenation(t *testing.T) {
	prev := Hash([]byte("previous entry"))
	data := []byte(`{"op":"unlock"}`)

	buf := append(prev[:], data...)
	if got, want := HashChain(prev, data), Hash(buf); got != want {
		t.Errorf("HashChain = %x, want %x", got, want)
	}
	if HashChain(types.Hash{}, data) == HashChain(prev, data) {
		t.Error("different prev hashes must give different links")
	}
}

func TestAddressFromPubKey(t *testing.T) {
	pub, _ := hex.DecodeString("0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	addr := AddressFromPubKey(pub)

	h := Hash(pub)
	for i := 0; i < types.AddressSize; i++ {
		if addr[i] != h[i] {
			t.Fatalf("address byte %d = %x, want %x", i, addr[i], h[i])
		}
	}
	if addr.IsZero() {
		t.Error("derived address should not be zero")
	}
}
