package domain

import (
	"encoding/json"
	"math"
)

// Value is an optional metric value. The zero Value is absent.
//
// Tabular sources routinely contain sparse columns, so absence is modelled
// explicitly instead of with a sentinel number such as NaN or zero.
type Value struct {
	v       float64
	present bool
}

// Present returns a present Value holding v. NaN and infinite inputs are
// not valid metric values and yield an absent Value.
func Present(v float64) Value {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Value{}
	}
	return Value{v: v, present: true}
}

// Absent returns a Value with no number attached.
func Absent() Value {
	return Value{}
}

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.v, v.present
}

// IsPresent reports whether the value holds a number.
func (v Value) IsPresent() bool {
	return v.present
}

// Float returns the number, or 0 when absent.
func (v Value) Float() float64 {
	return v.v
}

// MarshalJSON renders present values as numbers and absent ones as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.v)
}

// UnmarshalJSON accepts a number or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Absent()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Present(f)
	return nil
}
