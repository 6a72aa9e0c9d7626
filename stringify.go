package parquet

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StringifyDate formats an INT32 DATE value (days since the Unix epoch)
// as YYYY-MM-DD in the UTC proleptic Gregorian calendar, matching
// EXTERNAL INTERFACES §6.
func StringifyDate(days int32) string {
	t := time.Unix(0, 0).UTC().AddDate(0, 0, int(days))
	return t.Format("2006-01-02")
}

// StringifyTime formats a TIME_MILLIS/MICROS/NANOS value as
// [-]HH:MM:SS.ffff... with fractional width determined by unit. The
// integer hour part may exceed 23 and a leading '-' applies to the whole
// value when negative, since TIME values here represent clock-of-day
// durations, not wall-clock instants.
func StringifyTime(value int64, unit TimeUnit) string {
	neg := value < 0
	if neg {
		value = -value
	}
	var perSec, fracDigits int64
	switch unit {
	case Millis:
		perSec, fracDigits = 1000, 3
	case Micros:
		perSec, fracDigits = 1_000_000, 6
	default:
		perSec, fracDigits = 1_000_000_000, 9
	}
	totalSec := value / perSec
	frac := value % perSec
	hh := totalSec / 3600
	mm := (totalSec / 60) % 60
	ss := totalSec % 60
	s := fmt.Sprintf("%02d:%02d:%02d.%0*d", hh, mm, ss, fracDigits, frac)
	if neg {
		s = "-" + s
	}
	return s
}

// StringifyTimestamp formats a TIMESTAMP_MILLIS/MICROS/NANOS value
// (since the Unix epoch, UTC) as YYYY-MM-DDThh:mm:ss.ffff....
func StringifyTimestamp(value int64, unit TimeUnit) string {
	var perSec, fracDigits int64
	switch unit {
	case Millis:
		perSec, fracDigits = 1000, 3
	case Micros:
		perSec, fracDigits = 1_000_000, 6
	default:
		perSec, fracDigits = 1_000_000_000, 9
	}
	sec := value / perSec
	frac := value % perSec
	if frac < 0 {
		frac += perSec
		sec--
	}
	t := time.Unix(sec, 0).UTC()
	return fmt.Sprintf("%sT%s.%0*d", t.Format("2006-01-02"), t.Format("15:04:05"), fracDigits, frac)
}

// StringifyInterval formats a 12-byte INTERVAL value as
// "interval(<months> months, <days> days, <millis> millis)", parsing
// three little-endian uint32s. Any length other than 12 stringifies as
// "<INVALID>", matching S4.
func StringifyInterval(value []byte) string {
	if len(value) != 12 {
		return "<INVALID>"
	}
	months := binary.LittleEndian.Uint32(value[0:4])
	days := binary.LittleEndian.Uint32(value[4:8])
	millis := binary.LittleEndian.Uint32(value[8:12])
	return fmt.Sprintf("interval(%d months, %d days, %d millis)", months, days, millis)
}

// StringifyDecimal formats a signed two's-complement big-endian integer
// (from an INT32/INT64/BYTE_ARRAY/FIXED_LEN_BYTE_ARRAY decimal column) as
// base-10 with exactly `scale` fractional digits and no trailing-zero
// trimming beyond scale.
func StringifyDecimal(unscaled []byte, scale int32) string {
	neg := len(unscaled) > 0 && unscaled[0]&0x80 != 0
	digits := bytesToDecimalDigits(unscaled, neg)
	for len(digits) <= int(scale) {
		digits = "0" + digits
	}
	intPart := digits[:len(digits)-int(scale)]
	fracPart := digits[len(digits)-int(scale):]
	sign := ""
	if neg {
		sign = "-"
	}
	if scale == 0 {
		return sign + intPart
	}
	return sign + intPart + "." + fracPart
}

// bytesToDecimalDigits converts a two's-complement big-endian integer to
// its unsigned base-10 digit string.
func bytesToDecimalDigits(b []byte, neg bool) string {
	mag := make([]byte, len(b))
	copy(mag, b)
	if neg {
		// two's complement: invert and add one
		carry := 1
		for i := len(mag) - 1; i >= 0; i-- {
			v := int(^mag[i]) + carry
			mag[i] = byte(v)
			carry = v >> 8
		}
	}
	// Convert big-endian magnitude to decimal by multiplying a
	// little-endian base-10 digit array by 256 and adding each byte,
	// matching the precision needs of decimal columns without pulling in
	// math/big as a dependency for such a small job.
	if len(mag) == 0 {
		return "0"
	}
	digits := []byte{0}
	for _, byt := range mag {
		carry := int(byt)
		for i := range digits {
			v := int(digits[i])*256 + carry
			digits[i] = byte(v % 10)
			carry = v / 10
		}
		for carry > 0 {
			digits = append(digits, byte(carry%10))
			carry /= 10
		}
	}
	var sb strings.Builder
	for i := len(digits) - 1; i >= 0; i-- {
		sb.WriteByte('0' + digits[i])
	}
	return sb.String()
}

// StringifyUnsigned formats an unsigned integer value as plain decimal.
func StringifyUnsigned(value uint64) string {
	return fmt.Sprintf("%d", value)
}

// StringifyUUID formats a 16-byte FIXED_LEN_BYTE_ARRAY UUID value in its
// canonical 8-4-4-4-12 hyphenated form, matching EXTERNAL INTERFACES §6.
func StringifyUUID(value []byte) (string, error) {
	id, err := uuid.FromBytes(value)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
