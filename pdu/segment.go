package pdu

import "fmt"

// Capacities in character units, with and without the 6-byte
// concatenation UDH eating into the available user-data length.
const (
	maxGSM7Septets       = 160
	maxGSM7SeptetsConcat = 153
	maxUCS2Units         = 70
	maxUCS2UnitsConcat   = 67
)

// SegmentMessage splits text into one SubmitPDU per 3GPP TPDU,
// choosing GSM-7 or UCS-2 based on content and adding a concatenation
// UDH to every segment once more than one is required. ref is the
// 8-bit concatenation reference and is reused unchanged across every
// segment of the same message; callers own its allocation (typically
// a counter on the modem driver) so that two concurrently-segmented
// messages never collide.
func SegmentMessage(destination, text string, flash bool, ref byte) ([]SubmitPDU, error) {
	if text == "" {
		return nil, fmt.Errorf("pdu: empty message body")
	}

	if IsGSM7(text) {
		return segmentGSM7(destination, text, flash, ref)
	}
	return segmentUCS2(destination, text, flash, ref)
}

func segmentGSM7(destination, text string, flash bool, ref byte) ([]SubmitPDU, error) {
	septets := gsm7Septets(text)

	if len(septets) <= maxGSM7Septets {
		return []SubmitPDU{{
			Destination:    destination,
			Encoding:       EncodingGSM7,
			Flash:          flash,
			StatusReport:   true,
			ValidityPeriod: ValidityPeriod24Hours,
			Septets:        septets,
		}}, nil
	}

	chunks := chunkBytes(septets, maxGSM7SeptetsConcat)
	total := byte(len(chunks))
	pdus := make([]SubmitPDU, len(chunks))
	for i, chunk := range chunks {
		pdus[i] = SubmitPDU{
			Destination:    destination,
			Encoding:       EncodingGSM7,
			Flash:          flash,
			StatusReport:   true,
			ValidityPeriod: ValidityPeriod24Hours,
			UDH:            &ConcatHeader{Reference: ref, Total: total, Index: byte(i + 1)},
			Septets:        chunk,
		}
	}
	return pdus, nil
}

func segmentUCS2(destination, text string, flash bool, ref byte) ([]SubmitPDU, error) {
	units := []rune(text)

	if len(units) <= maxUCS2Units {
		encoded, err := EncodeUCS2(text)
		if err != nil {
			return nil, fmt.Errorf("pdu: encoding UCS-2: %w", err)
		}
		return []SubmitPDU{{
			Destination:    destination,
			Encoding:       EncodingUCS2,
			Flash:          flash,
			StatusReport:   true,
			ValidityPeriod: ValidityPeriod24Hours,
			UCS2Bytes:      encoded,
		}}, nil
	}

	runeChunks := chunkRunes(units, maxUCS2UnitsConcat)
	total := byte(len(runeChunks))
	pdus := make([]SubmitPDU, len(runeChunks))
	for i, chunk := range runeChunks {
		encoded, err := EncodeUCS2(string(chunk))
		if err != nil {
			return nil, fmt.Errorf("pdu: encoding UCS-2 segment %d: %w", i+1, err)
		}
		pdus[i] = SubmitPDU{
			Destination:    destination,
			Encoding:       EncodingUCS2,
			Flash:          flash,
			StatusReport:   true,
			ValidityPeriod: ValidityPeriod24Hours,
			UDH:            &ConcatHeader{Reference: ref, Total: total, Index: byte(i + 1)},
			UCS2Bytes:      encoded,
		}
	}
	return pdus, nil
}

func chunkBytes(b []byte, size int) [][]byte {
	var out [][]byte
	for len(b) > 0 {
		n := size
		if n > len(b) {
			n = len(b)
		}
		out = append(out, b[:n])
		b = b[n:]
	}
	return out
}

func chunkRunes(r []rune, size int) [][]rune {
	var out [][]rune
	for len(r) > 0 {
		n := size
		if n > len(r) {
			n = len(r)
		}
		out = append(out, r[:n])
		r = r[n:]
	}
	return out
}

// packGSM7WithHeader packs a raw UDH followed by septets into a single
// octet stream, inserting the fill bits between them needed to bring
// the septets onto a septet boundary rather than the header's octet
// boundary; the two are not the same because 48 header bits is not a
// multiple of 7.
func packGSM7WithHeader(header []byte, septets []byte) []byte {
	bits := make([]byte, 0, len(header)*8+1+len(septets)*7)
	for _, b := range header {
		for j := 0; j < 8; j++ {
			bits = append(bits, (b>>uint(j))&1)
		}
	}
	for len(bits)%7 != 0 {
		bits = append(bits, 0)
	}
	for _, s := range septets {
		s &= 0x7F
		for j := 0; j < 7; j++ {
			bits = append(bits, (s>>uint(j))&1)
		}
	}

	packed := make([]byte, 0, (len(bits)+7)/8)
	for i := 0; i < len(bits); i += 8 {
		end := i + 8
		if end > len(bits) {
			end = len(bits)
		}
		var b byte
		for j := i; j < end; j++ {
			b |= bits[j] << uint(j-i)
		}
		packed = append(packed, b)
	}
	return packed
}

// unpackGSM7WithHeader is the inverse of packGSM7WithHeader, given the
// raw header's byte length and the expected septet count.
func unpackGSM7WithHeader(packed []byte, headerLen int, septetCount int) (header []byte, septets []byte) {
	bits := make([]byte, 0, len(packed)*8)
	for _, b := range packed {
		for i := 0; i < 8; i++ {
			bits = append(bits, (b>>uint(i))&1)
		}
	}

	header = make([]byte, headerLen)
	for i := 0; i < headerLen && (i*8+8) <= len(bits); i++ {
		var b byte
		for j := 0; j < 8; j++ {
			b |= bits[i*8+j] << uint(j)
		}
		header[i] = b
	}

	pos := headerLen * 8
	for pos%7 != 0 {
		pos++
	}

	septets = make([]byte, 0, septetCount)
	for len(septets) < septetCount && pos+7 <= len(bits) {
		var v byte
		for j := 0; j < 7; j++ {
			v |= bits[pos+j] << uint(j)
		}
		septets = append(septets, v)
		pos += 7
	}
	return header, septets
}
