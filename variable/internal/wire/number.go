package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberSize is the size of a packed number slot: one length byte, one
// exponent byte and up to 20 mantissa bytes.
const NumberSize = 22

const maxMantissa = 20

// A packed number is laid out as:
//
//	buf[0]        length of the packed payload (exponent + mantissa bytes)
//	buf[1]        exponent byte: 193+e for positive values, 62-e for negative
//	buf[2...]     mantissa digits base 100, stored as d+1 (positive) or
//	              101-d (negative); negative values with fewer than 20
//	              mantissa bytes carry a trailing 102 terminator
//
// Zero is the single exponent byte 128. The exponent e is the power of 100
// of the leading mantissa digit.

// PackText encodes a decimal text value (optionally with a fractional part
// or scientific notation) into buf.
func PackText(s string, buf []byte) error {
	if len(buf) < NumberSize {
		return fmt.Errorf("number buffer too short: %d", len(buf))
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("empty number text")
	}

	negative := false
	switch s[0] {
	case '-':
		negative = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	// split off a scientific exponent, if present
	exp10 := 0
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		e, err := strconv.Atoi(s[i+1:])
		if err != nil {
			return fmt.Errorf("invalid exponent in %q", s)
		}
		exp10 = e
		s = s[:i]
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	digits := intPart + fracPart
	for _, c := range digits {
		if c < '0' || c > '9' {
			return fmt.Errorf("invalid digit %q in number text", c)
		}
	}
	if digits == "" {
		return fmt.Errorf("no digits in number text")
	}

	// pointDigits is the count of decimal digits left of the point after
	// applying the scientific exponent
	pointDigits := len(intPart) + exp10

	// strip leading zeros, tracking the shift of the point
	lead := 0
	for lead < len(digits) && digits[lead] == '0' {
		lead++
	}
	digits = digits[lead:]
	pointDigits -= lead
	// strip trailing zeros; they only affect the exponent
	for len(digits) > 0 && digits[len(digits)-1] == '0' {
		digits = digits[:len(digits)-1]
	}

	if len(digits) == 0 {
		buf[0] = 1
		buf[1] = 128
		return nil
	}

	// align so the leading base-100 digit sits on an even decimal boundary
	if (pointDigits & 1) != 0 {
		digits = "0" + digits
		pointDigits++
	}
	e := pointDigits/2 - 1

	var mantissa [maxMantissa]byte
	n := 0
	for i := 0; i < len(digits) && n < maxMantissa; i += 2 {
		d := (digits[i] - '0') * 10
		if i+1 < len(digits) {
			d += digits[i+1] - '0'
		}
		mantissa[n] = d
		n++
	}
	// trailing zero base-100 digits carry no information
	for n > 0 && mantissa[n-1] == 0 {
		n--
	}

	if e > 62 || e < -65 {
		return fmt.Errorf("number exponent %d out of range", e)
	}

	if negative {
		buf[1] = byte(62 - e)
		for i := 0; i < n; i++ {
			buf[2+i] = 101 - mantissa[i]
		}
		if n < maxMantissa {
			buf[2+n] = 102
			buf[0] = byte(n + 2)
		} else {
			buf[0] = byte(n + 1)
		}
	} else {
		buf[1] = byte(193 + e)
		for i := 0; i < n; i++ {
			buf[2+i] = mantissa[i] + 1
		}
		buf[0] = byte(n + 1)
	}
	return nil
}

// PackInt64 encodes an integer into buf
func PackInt64(v int64, buf []byte) error {
	return PackText(strconv.FormatInt(v, 10), buf)
}

// PackUint64 encodes an unsigned integer into buf
func PackUint64(v uint64, buf []byte) error {
	return PackText(strconv.FormatUint(v, 10), buf)
}

// PackFloat64 encodes a double into buf
func PackFloat64(v float64, buf []byte) error {
	return PackText(strconv.FormatFloat(v, 'e', -1, 64), buf)
}

type unpacked struct {
	negative bool
	exponent int    // power of 100 of the leading mantissa digit
	digits   []byte // base-100 digits
}

func unpack(buf []byte) (unpacked, error) {
	if len(buf) < 2 {
		return unpacked{}, fmt.Errorf("packed number too short: %d", len(buf))
	}
	length := int(buf[0])
	if length == 0 || length+1 > len(buf) {
		return unpacked{}, fmt.Errorf("invalid packed number length %d", length)
	}
	exponentByte := buf[1]
	payload := buf[2 : 1+length]

	if exponentByte == 128 && len(payload) == 0 {
		return unpacked{digits: nil}, nil
	}

	u := unpacked{}
	if exponentByte&0x80 != 0 {
		u.exponent = int(exponentByte) - 193
		u.digits = make([]byte, len(payload))
		for i, b := range payload {
			if b < 1 || b > 100 {
				return unpacked{}, fmt.Errorf("invalid mantissa byte %d", b)
			}
			u.digits[i] = b - 1
		}
	} else {
		u.negative = true
		u.exponent = 62 - int(exponentByte)
		if n := len(payload); n > 0 && payload[n-1] == 102 {
			payload = payload[:n-1]
		}
		u.digits = make([]byte, len(payload))
		for i, b := range payload {
			if b < 1 || b > 100 {
				return unpacked{}, fmt.Errorf("invalid mantissa byte %d", b)
			}
			u.digits[i] = 101 - b
		}
	}
	return u, nil
}

// UnpackText decodes a packed number into decimal text
func UnpackText(buf []byte) (string, error) {
	u, err := unpack(buf)
	if err != nil {
		return "", err
	}
	if len(u.digits) == 0 {
		return "0", nil
	}

	var b strings.Builder
	if u.negative {
		b.WriteByte('-')
	}

	if u.exponent < 0 {
		// pure fraction: 0.00...digits
		b.WriteString("0.")
		for i := 1; i < -u.exponent; i++ {
			b.WriteString("00")
		}
		writeDigits(&b, u.digits, true)
	} else {
		intDigits := u.exponent + 1
		if intDigits >= len(u.digits) {
			// integer, possibly with trailing zero digits
			writeDigits(&b, u.digits, false)
			for i := len(u.digits); i < intDigits; i++ {
				b.WriteString("00")
			}
		} else {
			writeDigits(&b, u.digits[:intDigits], false)
			b.WriteByte('.')
			writeDigits(&b, u.digits[intDigits:], true)
		}
	}

	out := b.String()
	if strings.Contains(out, ".") {
		out = strings.TrimRight(out, "0")
		out = strings.TrimSuffix(out, ".")
	}
	return out, nil
}

// writeDigits renders base-100 digits as decimal pairs. The leading digit of
// an integer part drops its zero padding; fractional digits keep it.
func writeDigits(b *strings.Builder, digits []byte, padFirst bool) {
	for i, d := range digits {
		if i == 0 && !padFirst {
			b.WriteString(strconv.Itoa(int(d)))
		} else {
			b.WriteByte('0' + d/10)
			b.WriteByte('0' + d%10)
		}
	}
}

// UnpackInt64 decodes a packed number as an integer, rounding any
// fractional part half away from zero
func UnpackInt64(buf []byte) (int64, error) {
	u, err := unpack(buf)
	if err != nil {
		return 0, err
	}
	if len(u.digits) == 0 {
		return 0, nil
	}
	if u.exponent < 0 {
		if u.digits[0] >= 50 {
			if u.negative && u.exponent == -1 {
				return -1, nil
			}
			if !u.negative && u.exponent == -1 {
				return 1, nil
			}
		}
		return 0, nil
	}

	var v int64
	intDigits := u.exponent + 1
	for i := 0; i < intDigits; i++ {
		var d int64
		if i < len(u.digits) {
			d = int64(u.digits[i])
		}
		if v > (1<<63-1-d)/100 {
			return 0, fmt.Errorf("packed number overflows int64")
		}
		v = v*100 + d
	}
	if intDigits < len(u.digits) && u.digits[intDigits] >= 50 {
		v++
	}
	if u.negative {
		v = -v
	}
	return v, nil
}

// UnpackUint64 decodes a packed number as an unsigned integer
func UnpackUint64(buf []byte) (uint64, error) {
	u, err := unpack(buf)
	if err != nil {
		return 0, err
	}
	if u.negative {
		return 0, fmt.Errorf("negative packed number for uint64")
	}
	if len(u.digits) == 0 || u.exponent < 0 {
		v, err := UnpackInt64(buf)
		return uint64(v), err
	}

	var v uint64
	intDigits := u.exponent + 1
	for i := 0; i < intDigits; i++ {
		var d uint64
		if i < len(u.digits) {
			d = uint64(u.digits[i])
		}
		if v > (1<<64-1-d)/100 {
			return 0, fmt.Errorf("packed number overflows uint64")
		}
		v = v*100 + d
	}
	if intDigits < len(u.digits) && u.digits[intDigits] >= 50 {
		v++
	}
	return v, nil
}

// UnpackFloat64 decodes a packed number as a double
func UnpackFloat64(buf []byte) (float64, error) {
	s, err := UnpackText(buf)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
