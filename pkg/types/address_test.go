package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestAddress_IsZero(t *testing.T) {
	var zero Address
	if !zero.IsZero() {
		t.Error("zero-value Address should be zero")
	}
	if (Address{0x01}).IsZero() {
		t.Error("non-zero Address should not be zero")
	}
}

func TestAddress_String(t *testing.T) {
	oldHRP := activeHRP
	defer func() { activeHRP = oldHRP }()

	SetAddressHRP(MainnetHRP)
	a := Address{0xab, 19: 0xcd}
	if s := a.String(); !strings.HasPrefix(s, "klk1") {
		t.Errorf("String() should start with 'klk1', got %s", s)
	}

	SetAddressHRP(TestnetHRP)
	if s := a.String(); !strings.HasPrefix(s, "tklk1") {
		t.Errorf("String() should start with 'tklk1', got %s", s)
	}
}

func TestParseAddress_Forms(t *testing.T) {
	oldHRP := activeHRP
	defer func() { activeHRP = oldHRP }()
	SetAddressHRP(MainnetHRP)

	want := Address{0x8f, 0x3a, 0x44, 0xb8, 0x05, 0x6c, 0xaf, 0xec, 0x36, 0x8d,
		0xea, 0x0c, 0xbe, 0x0a, 0xd1, 0xd9, 0xbc, 0x3f, 0x43, 0x05}

	tests := []struct {
		name  string
		input string
	}{
		{"bech32", want.String()},
		{"raw hex", want.Hex()},
		{"0x hex", "0x" + want.Hex()},
		{"upper hex", strings.ToUpper(want.Hex())},
		{"padded", "  " + want.String() + "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			if err != nil {
				t.Fatalf("ParseAddress(%q): %v", tt.input, err)
			}
			if got != want {
				t.Errorf("got %x, want %x", got, want)
			}
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	wrongHRP, err := Bech32Encode("kgx", make([]byte, AddressSize))
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}
	shortPayload, err := Bech32Encode(MainnetHRP, make([]byte, 10))
	if err != nil {
		t.Fatalf("Bech32Encode: %v", err)
	}

	for _, s := range []string{"", "   ", "0x1234", "klk1notvalid", wrongHRP, shortPayload} {
		if _, err := ParseAddress(s); err == nil {
			t.Errorf("ParseAddress(%q) should fail", s)
		}
	}
}

func TestAddress_JSON(t *testing.T) {
	a := Address{0x11, 0x22, 0x33}
	data, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Address
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != a {
		t.Errorf("got %x, want %x", got, a)
	}

	// Address works as a map key through MarshalText.
	m := map[Address]uint64{a: 7}
	data, err = json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal map: %v", err)
	}
	var back map[Address]uint64
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal map: %v", err)
	}
	if back[a] != 7 {
		t.Errorf("map value = %d, want 7", back[a])
	}
}

func TestAddress_Short(t *testing.T) {
	a := Address{0x01}
	s := a.Short()
	if !strings.Contains(s, "..") {
		t.Errorf("Short() = %q, want abbreviated form", s)
	}
	if !strings.HasPrefix(a.String(), s[:10]) {
		t.Errorf("Short() = %q does not share prefix with %q", s, a.String())
	}
}
