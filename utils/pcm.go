// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 scales a [-1, 1] sample to int16, clamping out-of-range input.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * math.MaxInt16)
}

// Int16ToFloat32 maps an int16 sample to [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768
}

// Uint8ToInt16 converts an unsigned 8-bit sample (silence at 128) to int16.
func Uint8ToInt16(v uint8) int16 {
	return int16(int(v)-128) << 8
}

// Int16ToUint8 is the inverse of Uint8ToInt16, dropping the low byte.
func Int16ToUint8(v int16) uint8 {
	return uint8((int(v) >> 8) + 128)
}

// ClampInt16 saturates a widened sample to the int16 range.
func ClampInt16(v int32) int16 {
	switch {
	case v > math.MaxInt16:
		return math.MaxInt16
	case v < math.MinInt16:
		return math.MinInt16
	default:
		return int16(v)
	}
}

// ToInt16 rescales a signed integer sample of the given bit depth to 16 bits.
func ToInt16(v, bits int) int16 {
	switch {
	case bits > 16:
		return int16(v >> (bits - 16))
	case bits < 16:
		return int16(v << (16 - bits))
	default:
		return int16(v)
	}
}
