package rules

import (
	"encoding/json"
	"fmt"
)

// ExtInt is a non-negative integer extended with infinity. Effect and
// cooldown durations use it; an infinite duration never ticks down.
type ExtInt struct {
	value    uint32
	infinite bool
}

// Infinity is the infinite ExtInt.
var Infinity = ExtInt{infinite: true}

// Int returns a finite ExtInt.
func Int(v uint32) ExtInt {
	return ExtInt{value: v}
}

// IsInfinite reports whether e is infinite.
func (e ExtInt) IsInfinite() bool {
	return e.infinite
}

// IsZero reports whether e is a finite zero.
func (e ExtInt) IsZero() bool {
	return !e.infinite && e.value == 0
}

// Value returns the finite value. Infinite values return 0 and false.
func (e ExtInt) Value() (uint32, bool) {
	if e.infinite {
		return 0, false
	}
	return e.value, true
}

// Less reports whether e < v. Infinity is never less.
func (e ExtInt) Less(v uint32) bool {
	return !e.infinite && e.value < v
}

// Greater reports whether e > v. Infinity is always greater.
func (e ExtInt) Greater(v uint32) bool {
	return e.infinite || e.value > v
}

// Sub subtracts v, saturating at zero. Infinity is unchanged.
func (e ExtInt) Sub(v uint32) ExtInt {
	if e.infinite {
		return e
	}
	if v >= e.value {
		return ExtInt{}
	}
	return ExtInt{value: e.value - v}
}

// Add adds two ExtInts. Anything plus infinity is infinity.
func (e ExtInt) Add(o ExtInt) ExtInt {
	if e.infinite || o.infinite {
		return Infinity
	}
	return ExtInt{value: e.value + o.value}
}

// Mul multiplies by v. Infinity is unchanged.
func (e ExtInt) Mul(v uint32) ExtInt {
	if e.infinite {
		return e
	}
	return ExtInt{value: e.value * v}
}

// Float returns the value as a float64; infinity maps to +Inf semantics via
// a very large number so callers can compare without special cases.
func (e ExtInt) Float() float64 {
	if e.infinite {
		return 1e300
	}
	return float64(e.value)
}

func (e ExtInt) String() string {
	if e.infinite {
		return "infinity"
	}
	return fmt.Sprintf("%d", e.value)
}

// MarshalJSON encodes infinity as the string "infinity".
func (e ExtInt) MarshalJSON() ([]byte, error) {
	if e.infinite {
		return json.Marshal("infinity")
	}
	return json.Marshal(e.value)
}

// UnmarshalJSON accepts a number or the string "infinity".
func (e *ExtInt) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "infinity" {
			return fmt.Errorf("invalid extended integer %q", s)
		}
		*e = Infinity
		return nil
	}
	var v uint32
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*e = Int(v)
	return nil
}
