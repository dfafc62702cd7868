package types

import (
	"errors"
	"fmt"
	"strings"
)

// BIP-173 alphabet.
const bech32Alphabet = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

var (
	errBech32Checksum = errors.New("bech32: invalid checksum")
	errBech32Padding  = errors.New("bech32: non-zero padding")
)

// Bech32Encode encodes data under the given human-readable part.
func Bech32Encode(hrp string, data []byte) (string, error) {
	if hrp == "" {
		return "", fmt.Errorf("bech32: empty HRP")
	}
	for _, c := range hrp {
		if c < 33 || c > 126 {
			return "", fmt.Errorf("bech32: invalid HRP character %q", c)
		}
	}
	hrp = strings.ToLower(hrp)

	words, err := regroup(data, 8, 5, true)
	if err != nil {
		return "", err
	}

	mod := polymod(append(expandHRP(hrp), append(words, 0, 0, 0, 0, 0, 0)...)) ^ 1

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(words) + 6)
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, w := range words {
		sb.WriteByte(bech32Alphabet[w])
	}
	for i := 0; i < 6; i++ {
		sb.WriteByte(bech32Alphabet[(mod>>uint(5*(5-i)))&31])
	}
	return sb.String(), nil
}

// Bech32Decode splits a bech32 string into its HRP and payload bytes.
func Bech32Decode(s string) (string, []byte, error) {
	if strings.ToLower(s) != s && strings.ToUpper(s) != s {
		return "", nil, fmt.Errorf("bech32: mixed case")
	}
	s = strings.ToLower(s)

	sep := strings.LastIndexByte(s, '1')
	if sep < 1 {
		return "", nil, fmt.Errorf("bech32: missing separator")
	}
	if sep+7 > len(s) {
		return "", nil, fmt.Errorf("bech32: too short")
	}
	hrp, payload := s[:sep], s[sep+1:]

	words := make([]byte, len(payload))
	for i := 0; i < len(payload); i++ {
		idx := strings.IndexByte(bech32Alphabet, payload[i])
		if idx < 0 {
			return "", nil, fmt.Errorf("bech32: invalid character %q", payload[i])
		}
		words[i] = byte(idx)
	}
	if polymod(append(expandHRP(hrp), words...)) != 1 {
		return "", nil, errBech32Checksum
	}

	data, err := regroup(words[:len(words)-6], 5, 8, false)
	if err != nil {
		return "", nil, err
	}
	return hrp, data, nil
}

func polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i, g := range bech32Generator {
			if (top>>uint(i))&1 == 1 {
				chk ^= g
			}
		}
	}
	return chk
}

func expandHRP(hrp string) []byte {
	out := make([]byte, 2*len(hrp)+1)
	for i := 0; i < len(hrp); i++ {
		out[i] = hrp[i] >> 5
		out[len(hrp)+1+i] = hrp[i] & 31
	}
	return out
}

// regroup converts a byte slice between bit-group widths (8<->5).
func regroup(data []byte, from, to uint, pad bool) ([]byte, error) {
	var (
		acc  uint32
		bits uint
		out  = make([]byte, 0, len(data)*int(from)/int(to)+1)
		mask = uint32(1)<<to - 1
	)
	for _, b := range data {
		if uint32(b)>>from != 0 {
			return nil, fmt.Errorf("bech32: value %d exceeds %d bits", b, from)
		}
		acc = acc<<from | uint32(b)
		bits += from
		for bits >= to {
			bits -= to
			out = append(out, byte(acc>>bits&mask))
		}
	}
	switch {
	case pad && bits > 0:
		out = append(out, byte(acc<<(to-bits)&mask))
	case !pad && (bits >= from || acc<<(to-bits)&mask != 0):
		return nil, errBech32Padding
	}
	return out, nil
}
