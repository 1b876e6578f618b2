// Package safe provides helpers for safe numeric conversions with overflow checks.
package safe

import (
	"fmt"
	"math"
)

// Integer is the set of integer kinds accepted by the conversion helpers.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Uint8 converts v to uint8 with range validation.
func Uint8[T Integer](v T) (uint8, error) {
	if !inUnsignedRange(v, math.MaxUint8) {
		return 0, fmt.Errorf("value %d out of uint8 range", v)
	}
	return uint8(v), nil
}

// Uint16 converts v to uint16 with range validation.
func Uint16[T Integer](v T) (uint16, error) {
	if !inUnsignedRange(v, math.MaxUint16) {
		return 0, fmt.Errorf("value %d out of uint16 range", v)
	}
	return uint16(v), nil
}

// Uint64 converts v to uint64 while guarding against negatives.
func Uint64[T Integer](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Int64 converts v to int64, rejecting unsigned values above math.MaxInt64.
func Int64[T Integer](v T) (int64, error) {
	if v > 0 && uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range", v)
	}
	return int64(v), nil
}

func inUnsignedRange[T Integer](v T, upper uint64) bool {
	return v >= 0 && uint64(v) <= upper
}
