// Package scenario runs scripted lockup scenarios read from YAML files.
//
// A scenario names its accounts, configures a fresh token, and then walks
// a list of steps. Each step either calls a token operation, advances the
// manual clock, or checks holder state. Scenarios are deterministic: the
// clock starts at Start and only moves on "advance" steps.
package scenario

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ZeroAccount is the reserved account name for the zero address.
const ZeroAccount = "zero"

// Scenario is a scripted run against a single token.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Start is the initial clock time. Defaults to 2024-01-01T00:00:00Z.
	Start time.Time `yaml:"start,omitempty"`

	Token TokenSpec `yaml:"token"`

	// Mnemonic seeds accounts that do not carry an explicit address.
	// Derived accounts take consecutive indexes in declaration order.
	Mnemonic string `yaml:"mnemonic,omitempty"`

	Accounts []Account `yaml:"accounts"`
	Steps    []Step    `yaml:"steps"`
}

// TokenSpec holds the token parameters. Owner names an account and
// defaults to the first one. Unset fields take the runner's defaults.
type TokenSpec struct {
	Name     string  `yaml:"name,omitempty"`
	Symbol   string  `yaml:"symbol,omitempty"`
	Decimals *uint8  `yaml:"decimals,omitempty"`
	Cap      *uint64 `yaml:"cap,omitempty"` // 0 = uncapped
	Owner    string  `yaml:"owner,omitempty"`
}

// Account binds a name to a holder address.
type Account struct {
	Name    string `yaml:"name"`
	Address string `yaml:"address,omitempty"`
}

// Step is one scenario action. Exactly one of Op, Advance, or Check is set.
type Step struct {
	Op     string `yaml:"op,omitempty"`
	Caller string `yaml:"caller,omitempty"`

	To      string `yaml:"to,omitempty"`
	From    string `yaml:"from,omitempty"`
	Holder  string `yaml:"holder,omitempty"`
	Spender string `yaml:"spender,omitempty"`
	Account string `yaml:"account,omitempty"`
	Amount  uint64 `yaml:"amount,omitempty"`
	Index   int    `yaml:"index,omitempty"`

	// Due is a duration relative to the current clock ("3d", "2w", "90m")
	// or an RFC 3339 timestamp.
	Due string `yaml:"due,omitempty"`

	// ExpectError is a substring the operation's error must contain.
	ExpectError string `yaml:"expect_error,omitempty"`

	Advance string `yaml:"advance,omitempty"`

	Check *Check `yaml:"check,omitempty"`
}

// Check asserts holder or token state. Unset fields are not checked.
type Check struct {
	Holder      string   `yaml:"holder,omitempty"`
	Balance     *uint64  `yaml:"balance,omitempty"`
	Spendable   *uint64  `yaml:"spendable,omitempty"`
	TotalLocked *uint64  `yaml:"total_locked,omitempty"`
	LockCount   *int     `yaml:"lock_count,omitempty"`
	Locks       []uint64 `yaml:"locks,omitempty"` // amounts in index order
	TotalSupply *uint64  `yaml:"total_supply,omitempty"`
	Paused      *bool    `yaml:"paused,omitempty"`
	Frozen      *bool    `yaml:"frozen,omitempty"`
}

var defaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Load reads and parses a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a scenario, rejecting unknown fields.
func Parse(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if s.Start.IsZero() {
		s.Start = defaultStart
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Accounts) == 0 {
		return fmt.Errorf("accounts list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	names := make(map[string]bool, len(s.Accounts))
	for i, a := range s.Accounts {
		if a.Name == "" {
			return fmt.Errorf("accounts[%d]: name is required", i)
		}
		if a.Name == ZeroAccount {
			return fmt.Errorf("accounts[%d]: %q is reserved", i, ZeroAccount)
		}
		if names[a.Name] {
			return fmt.Errorf("accounts[%d]: duplicate name %q", i, a.Name)
		}
		names[a.Name] = true
		if a.Address == "" && s.Mnemonic == "" {
			return fmt.Errorf("accounts[%d]: %q has no address and no mnemonic is set", i, a.Name)
		}
	}
	if s.Token.Owner != "" && !names[s.Token.Owner] {
		return fmt.Errorf("token.owner: unknown account %q", s.Token.Owner)
	}

	for i, st := range s.Steps {
		set := 0
		if st.Op != "" {
			set++
			if _, ok := operations[st.Op]; !ok {
				return fmt.Errorf("steps[%d]: unknown op %q", i, st.Op)
			}
		}
		if st.Advance != "" {
			set++
			if _, err := ParseDuration(st.Advance); err != nil {
				return fmt.Errorf("steps[%d]: %w", i, err)
			}
		}
		if st.Check != nil {
			set++
		}
		if set != 1 {
			return fmt.Errorf("steps[%d]: exactly one of op, advance, or check is required", i)
		}
	}
	return nil
}
