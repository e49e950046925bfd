package domain

import "fmt"

// Mode is a run modifier attached to a test unit or a dataset entry.
type Mode string

const (
	// ModeNone runs the unit normally, subject to any gating condition.
	ModeNone Mode = "none"
	// ModeOnly runs the unit exclusively.
	ModeOnly Mode = "only"
	// ModeSkip never runs the unit.
	ModeSkip Mode = "skip"
)

// IsOnly reports whether m requests exclusive execution.
func (m Mode) IsOnly() bool { return m == ModeOnly }

// IsSkip reports whether m requests the unit to be skipped.
func (m Mode) IsSkip() bool { return m == ModeSkip }

// String returns "none" for the zero value.
func (m Mode) String() string {
	if m == "" {
		return string(ModeNone)
	}
	return string(m)
}

// UnmarshalText accepts "", "none", "only" and "skip".
func (m *Mode) UnmarshalText(text []byte) error {
	switch v := Mode(text); v {
	case "", ModeNone:
		*m = ModeNone
	case ModeOnly, ModeSkip:
		*m = v
	default:
		return fmt.Errorf("unknown run modifier %q", string(text))
	}
	return nil
}
