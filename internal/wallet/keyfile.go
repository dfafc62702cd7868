package wallet

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Klingon-tech/klingnet-lockup/pkg/crypto"
)

// ErrWrongPassword is returned when a key file cannot be decrypted.
var ErrWrongPassword = errors.New("wrong password or corrupt key file")

const (
	saltSize = 32
	// sealed layout: salt(32) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext
	sealHeader = saltSize + 4 + 4 + 1
)

// KDFParams are the Argon2id cost parameters.
type KDFParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultKDFParams returns the parameters used for new key files.
func DefaultKDFParams() KDFParams {
	return KDFParams{Memory: 64 * 1024, Iterations: 3, Parallelism: 4}
}

func deriveKey(password, salt []byte, p KDFParams) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.Memory, p.Parallelism, chacha20poly1305.KeySize)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// seal encrypts data with Argon2id + XChaCha20-Poly1305.
func seal(data, password []byte, p KDFParams) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	key := deriveKey(password, salt, p)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, sealHeader+len(nonce)+len(data)+aead.Overhead())
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, p.Memory)
	out = binary.LittleEndian.AppendUint32(out, p.Iterations)
	out = append(out, p.Parallelism)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, nil), nil
}

// open reverses seal.
func open(sealed, password []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	if len(sealed) < sealHeader+nonceSize+chacha20poly1305.Overhead {
		return nil, fmt.Errorf("sealed key too short: %d bytes", len(sealed))
	}
	p := KDFParams{
		Memory:      binary.LittleEndian.Uint32(sealed[saltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[saltSize+4:]),
		Parallelism: sealed[saltSize+8],
	}
	key := deriveKey(password, sealed[:saltSize], p)
	defer wipe(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	nonce := sealed[sealHeader : sealHeader+nonceSize]
	plain, err := aead.Open(nil, nonce, sealed[sealHeader+nonceSize:], nil)
	if err != nil {
		return nil, ErrWrongPassword
	}
	return plain, nil
}

// keyFile is the on-disk JSON format of an encrypted signing key.
type keyFile struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	Address   string    `json:"address"`
	PubKey    string    `json:"pubkey"`
	Sealed    string    `json:"sealed"`
}

// SaveKey encrypts key with password and writes it to path. An existing
// file is never overwritten.
func SaveKey(path string, key *crypto.PrivateKey, password []byte, p KDFParams) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("key file %s already exists", path)
	}
	secret := key.Serialize()
	defer wipe(secret)

	sealed, err := seal(secret, password, p)
	if err != nil {
		return fmt.Errorf("seal key: %w", err)
	}
	kf := keyFile{
		Version:   1,
		CreatedAt: time.Now().UTC(),
		Address:   key.Address().String(),
		PubKey:    hex.EncodeToString(key.PublicKey()),
		Sealed:    hex.EncodeToString(sealed),
	}
	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal key file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create key dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	return nil
}

// LoadKey reads and decrypts the key file at path.
func LoadKey(path string, password []byte) (*crypto.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	if kf.Version != 1 {
		return nil, fmt.Errorf("unsupported key file version %d", kf.Version)
	}
	sealed, err := hex.DecodeString(kf.Sealed)
	if err != nil {
		return nil, fmt.Errorf("decode sealed key: %w", err)
	}
	secret, err := open(sealed, password)
	if err != nil {
		return nil, err
	}
	defer wipe(secret)

	key, err := crypto.PrivateKeyFromBytes(secret)
	if err != nil {
		return nil, err
	}
	if hex.EncodeToString(key.PublicKey()) != kf.PubKey {
		return nil, fmt.Errorf("key file %s: public key mismatch", path)
	}
	return key, nil
}

// PublicKeyFromFile returns the public key recorded in a key file without
// decrypting it.
func PublicKeyFromFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}
	var kf keyFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parse key file: %w", err)
	}
	pub, err := hex.DecodeString(kf.PubKey)
	if err != nil {
		return nil, fmt.Errorf("decode pubkey: %w", err)
	}
	return pub, nil
}
