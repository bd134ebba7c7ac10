package wire

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Sizes of the date/time wire structures.
const (
	DateSize        = 7
	TimestampSize   = 11
	TimestampTZSize = 13
	IntervalDSSize  = 11
	IntervalYMSize  = 5
)

// A date is 7 bytes: century+100, year-of-century+100, month, day, hour+1,
// minute+1, second+1. Timestamps append a big-endian nanosecond count and,
// for the timezone-bearing form, offset hours+20 and offset minutes+60.

// EncodeDate writes the date portion of t into buf
func EncodeDate(t time.Time, buf []byte) error {
	if len(buf) < DateSize {
		return fmt.Errorf("date buffer too short: %d", len(buf))
	}
	year := t.Year()
	if year < -4712 || year > 9999 {
		return fmt.Errorf("year %d outside the representable range", year)
	}
	buf[0] = byte(year/100 + 100)
	buf[1] = byte(year%100 + 100)
	buf[2] = byte(t.Month())
	buf[3] = byte(t.Day())
	buf[4] = byte(t.Hour() + 1)
	buf[5] = byte(t.Minute() + 1)
	buf[6] = byte(t.Second() + 1)
	return nil
}

// DecodeDate reads a 7-byte date from buf
func DecodeDate(buf []byte) (time.Time, error) {
	if len(buf) < DateSize {
		return time.Time{}, fmt.Errorf("date buffer too short: %d", len(buf))
	}
	year := (int(buf[0])-100)*100 + int(buf[1]) - 100
	month := time.Month(buf[2])
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month %d in date", buf[2])
	}
	return time.Date(year, month, int(buf[3]),
		int(buf[4])-1, int(buf[5])-1, int(buf[6])-1, 0, time.UTC), nil
}

// EncodeTimestamp writes t into buf; withTZ selects the 13-byte
// timezone-bearing form
func EncodeTimestamp(t time.Time, buf []byte, withTZ bool) error {
	size := TimestampSize
	if withTZ {
		size = TimestampTZSize
	}
	if len(buf) < size {
		return fmt.Errorf("timestamp buffer too short: %d", len(buf))
	}
	if err := EncodeDate(t, buf); err != nil {
		return err
	}
	binary.BigEndian.PutUint32(buf[7:], uint32(t.Nanosecond()))
	if withTZ {
		_, offset := t.Zone()
		offsetMinutes := offset / 60
		buf[11] = byte(offsetMinutes/60 + 20)
		buf[12] = byte(offsetMinutes%60 + 60)
	}
	return nil
}

// DecodeTimestamp reads a timestamp from buf; withTZ selects the 13-byte
// timezone-bearing form
func DecodeTimestamp(buf []byte, withTZ bool) (time.Time, error) {
	size := TimestampSize
	if withTZ {
		size = TimestampTZSize
	}
	if len(buf) < size {
		return time.Time{}, fmt.Errorf("timestamp buffer too short: %d", len(buf))
	}
	t, err := DecodeDate(buf)
	if err != nil {
		return time.Time{}, err
	}
	nanos := binary.BigEndian.Uint32(buf[7:])
	t = t.Add(time.Duration(nanos))
	if withTZ {
		offsetMinutes := (int(buf[11])-20)*60 + int(buf[12]) - 60
		loc := time.FixedZone("", offsetMinutes*60)
		t = time.Date(t.Year(), t.Month(), t.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	}
	return t, nil
}

// An interval day-to-second is 11 bytes: big-endian days biased by 2^31,
// then hours+60, minutes+60, seconds+60, and big-endian nanoseconds biased
// by 2^31. All components share the sign of the interval.

const intervalBias = 1 << 31

// EncodeIntervalDS writes a duration into buf
func EncodeIntervalDS(d time.Duration, buf []byte) error {
	if len(buf) < IntervalDSSize {
		return fmt.Errorf("interval buffer too short: %d", len(buf))
	}
	nanos := d.Nanoseconds()
	days := nanos / int64(24*time.Hour)
	nanos -= days * int64(24*time.Hour)
	hours := nanos / int64(time.Hour)
	nanos -= hours * int64(time.Hour)
	minutes := nanos / int64(time.Minute)
	nanos -= minutes * int64(time.Minute)
	seconds := nanos / int64(time.Second)
	nanos -= seconds * int64(time.Second)

	binary.BigEndian.PutUint32(buf, uint32(days+intervalBias))
	buf[4] = byte(hours + 60)
	buf[5] = byte(minutes + 60)
	buf[6] = byte(seconds + 60)
	binary.BigEndian.PutUint32(buf[7:], uint32(nanos+intervalBias))
	return nil
}

// DecodeIntervalDS reads a duration from buf
func DecodeIntervalDS(buf []byte) (time.Duration, error) {
	if len(buf) < IntervalDSSize {
		return 0, fmt.Errorf("interval buffer too short: %d", len(buf))
	}
	days := int64(binary.BigEndian.Uint32(buf)) - intervalBias
	hours := int64(buf[4]) - 60
	minutes := int64(buf[5]) - 60
	seconds := int64(buf[6]) - 60
	nanos := int64(binary.BigEndian.Uint32(buf[7:])) - intervalBias

	return time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(nanos), nil
}

// An interval year-to-month is 5 bytes: big-endian years biased by 2^31 and
// months+60.

// EncodeIntervalYM writes a year/month pair into buf
func EncodeIntervalYM(years, months int32, buf []byte) error {
	if len(buf) < IntervalYMSize {
		return fmt.Errorf("interval buffer too short: %d", len(buf))
	}
	binary.BigEndian.PutUint32(buf, uint32(int64(years)+intervalBias))
	buf[4] = byte(months + 60)
	return nil
}

// DecodeIntervalYM reads a year/month pair from buf
func DecodeIntervalYM(buf []byte) (years, months int32, err error) {
	if len(buf) < IntervalYMSize {
		return 0, 0, fmt.Errorf("interval buffer too short: %d", len(buf))
	}
	years = int32(int64(binary.BigEndian.Uint32(buf)) - intervalBias)
	months = int32(buf[4]) - 60
	return years, months, nil
}
