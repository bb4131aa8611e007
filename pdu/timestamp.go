package pdu

import (
	"fmt"
	"time"
)

// DecodeTimestamp parses a 7-octet TP-Service-Centre-Time-Stamp
// (year, month, day, hour, minute, second, timezone), each field
// stored as a nibble-swapped semi-octet pair per 3GPP 23.040 §9.2.3.11.
// The timezone octet's sign is carried in the high bit of its tens
// nibble, quarter-hour steps from UTC.
func DecodeTimestamp(scts []byte) (time.Time, error) {
	if len(scts) != 7 {
		return time.Time{}, fmt.Errorf("pdu: SCTS must be 7 octets, got %d", len(scts))
	}
	digit := func(b byte) (int, int) {
		return int(b & 0x0F), int((b >> 4) & 0x0F)
	}

	year, month, day, hour, minute, second := 0, 0, 0, 0, 0, 0
	fields := []*int{&year, &month, &day, &hour, &minute, &second}
	for i, f := range fields {
		lo, hi := digit(scts[i])
		*f = lo*10 + hi
	}

	tzByte := scts[6]
	sign := 1
	tzTens := tzByte & 0x0F
	if tzTens&0x08 != 0 {
		sign = -1
		tzTens &^= 0x08
	}
	tzOnes := int((tzByte >> 4) & 0x0F)
	quarterHours := int(tzTens)*10 + tzOnes
	offset := sign * quarterHours * 15 * 60

	loc := time.FixedZone(fmt.Sprintf("UTC%+03d:%02d", offset/3600, (offset%3600)/60), offset)
	return time.Date(2000+year, time.Month(month), day, hour, minute, second, 0, loc), nil
}

// EncodeTimestamp is the inverse of DecodeTimestamp, used when this
// gateway itself needs to stamp a locally-originated status report
// probe or test fixture; live SMS-DELIVER/STATUS-REPORT timestamps
// always come from the network.
func EncodeTimestamp(t time.Time) []byte {
	swap := func(v int) byte {
		tens := v / 10
		ones := v % 10
		return byte(tens) | byte(ones)<<4
	}

	_, offset := t.Zone()
	sign := byte(0)
	if offset < 0 {
		sign = 0x08
		offset = -offset
	}
	quarterHours := offset / (15 * 60)
	tzOnes := quarterHours % 10
	tzTens := (quarterHours / 10) | int(sign)

	return []byte{
		swap(t.Year() % 100),
		swap(int(t.Month())),
		swap(t.Day()),
		swap(t.Hour()),
		swap(t.Minute()),
		swap(t.Second()),
		byte(tzTens) | byte(tzOnes)<<4,
	}
}
