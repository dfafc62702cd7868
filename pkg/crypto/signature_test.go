package crypto

import (
	"bytes"
	"testing"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	if len(key.PublicKey()) != 33 {
		t.Errorf("PublicKey() length = %d, want 33", len(key.PublicKey()))
	}
	if len(key.Serialize()) != 32 {
		t.Errorf("Serialize() length = %d, want 32", len(key.Serialize()))
	}
	if key.Address() != AddressFromPubKey(key.PublicKey()) {
		t.Error("Address() should derive from the public key")
	}
}

func TestPrivateKeyFromBytes_Roundtrip(t *testing.T) {
	original, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	restored, err := PrivateKeyFromBytes(original.Serialize())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() error: %v", err)
	}
	if !bytes.Equal(original.PublicKey(), restored.PublicKey()) {
		t.Error("restored key should have same public key")
	}
}

func TestPrivateKeyFromBytes_InvalidLength(t *testing.T) {
	for _, n := range []int{0, 16, 64} {
		if _, err := PrivateKeyFromBytes(make([]byte, n)); err == nil {
			t.Errorf("expected error for %d-byte key", n)
		}
	}
}

func TestSign_Verify(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}

	hash := Hash([]byte("receipt"))
	sig, err := key.Sign(hash[:])
	if err != nil {
		t.Fatalf("Sign() error: %v", err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}
	if !VerifySignature(hash[:], sig, key.PublicKey()) {
		t.Error("signature should verify against the correct key and hash")
	}

	other := Hash([]byte("different receipt"))
	if VerifySignature(other[:], sig, key.PublicKey()) {
		t.Error("signature should not verify with wrong hash")
	}

	corrupted := append([]byte(nil), sig...)
	corrupted[0] ^= 0x01
	if VerifySignature(hash[:], corrupted, key.PublicKey()) {
		t.Error("corrupted signature should not verify")
	}
}

func TestSign_InvalidHashLength(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() error: %v", err)
	}
	if _, err := key.Sign([]byte("too short")); err == nil {
		t.Error("Sign() should reject non-32-byte hash")
	}
}

func TestVerify_InvalidInputs(t *testing.T) {
	tests := []struct {
		name      string
		hash      []byte
		signature []byte
		publicKey []byte
	}{
		{"nil hash", nil, make([]byte, 64), make([]byte, 33)},
		{"empty signature", make([]byte, 32), nil, make([]byte, 33)},
		{"empty public key", make([]byte, 32), make([]byte, 64), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.hash, tt.signature, tt.publicKey) {
				t.Error("expected verification failure")
			}
		})
	}
}
