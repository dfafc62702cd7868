package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// AddressSize is the length of a holder address in bytes.
const AddressSize = 20

// Human-readable parts for bech32 holder addresses.
const (
	MainnetHRP = "klk"
	TestnetHRP = "tklk"
)

// activeHRP is used by String and MarshalJSON. Set once at startup.
var activeHRP = MainnetHRP

// SetAddressHRP sets the HRP used when rendering addresses.
func SetAddressHRP(hrp string) {
	activeHRP = hrp
}

// AddressHRP returns the HRP used when rendering addresses.
func AddressHRP() string {
	return activeHRP
}

// Address identifies a token holder (first 20 bytes of BLAKE3(pubkey)).
// The zero address is never a valid holder.
type Address [AddressSize]byte

// IsZero returns true if the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String returns the bech32 form, e.g. "klk1...".
func (a Address) String() string {
	s, err := Bech32Encode(activeHRP, a[:])
	if err != nil {
		return "0x" + a.Hex()
	}
	return s
}

// Short returns an abbreviated form for log lines.
func (a Address) Short() string {
	s := a.String()
	if len(s) <= 14 {
		return s
	}
	return s[:10] + ".." + s[len(s)-4:]
}

// Hex returns the raw hex encoding without prefix.
func (a Address) Hex() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, AddressSize)
	copy(b, a[:])
	return b
}

// MarshalText encodes the address in bech32 form. It also makes Address
// usable as a JSON map key.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText accepts any form understood by ParseAddress.
// An empty string decodes to the zero address.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// MarshalJSON encodes the address as a bech32 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a bech32 or hex string.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}

// ParseAddress parses a bech32 address ("klk1...", "tklk1..."), a
// 0x-prefixed hex address, or 40 raw hex characters.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Address{}, fmt.Errorf("empty address")
	}

	hexStr := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(hexStr) == 2*AddressSize && isHex(hexStr) {
		return HexToAddress(hexStr)
	}

	hrp, data, err := Bech32Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if hrp != MainnetHRP && hrp != TestnetHRP {
		return Address{}, fmt.Errorf("invalid address %q: unknown prefix %q", s, hrp)
	}
	if len(data) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(data))
	}
	var a Address
	copy(a[:], data)
	return a, nil
}

// HexToAddress converts exactly 40 hex characters to an Address.
func HexToAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != AddressSize {
		return Address{}, fmt.Errorf("address must be %d bytes, got %d", AddressSize, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
