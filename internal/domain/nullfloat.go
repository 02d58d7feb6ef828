package domain

import (
	"math"
	"strconv"
)

// NullFloat is a float64 whose NaN value marshals as JSON null. Aggregate
// tables use it so an undefined statistic reaches API consumers as explicit
// null instead of a fabricated number.
type NullFloat float64

// Null returns the undefined NullFloat.
func Null() NullFloat {
	return NullFloat(math.NaN())
}

// Defined reports whether the value is an actual number.
func (f NullFloat) Defined() bool {
	return !math.IsNaN(float64(f))
}

// MarshalJSON renders NaN as null and everything else as a plain number.
func (f NullFloat) MarshalJSON() ([]byte, error) {
	if !f.Defined() {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, float64(f), 'g', -1, 64), nil
}

// UnmarshalJSON accepts null as NaN.
func (f *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Null()
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = NullFloat(v)
	return nil
}
