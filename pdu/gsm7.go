package pdu

// gsm7DefaultAlphabet and gsm7ExtensionAlphabet implement the GSM 03.38
// 7-bit default alphabet and its escape-prefixed extension table, the
// character sets a text SMS may use before UCS-2 becomes necessary.
var gsm7DefaultAlphabet = []rune(
	"@£$¥èéùìòÇ\nØø\rÅå" +
		"Δ_ΦΓΛΩΠΨΣΘΞ\x1bÆæßÉ" +
		" !\"#¤%&'()*+,-./" +
		"0123456789:;<=>?" +
		"¡ABCDEFGHIJKLMNO" +
		"PQRSTUVWXYZÄÖÑÜ§" +
		"¿abcdefghijklmno" +
		"pqrstuvwxyzäöñüà",
)

// gsm7Extension maps extension-table runes to their single-byte code
// (transmitted as ESC (0x1B) followed by this byte).
var gsm7Extension = map[rune]byte{
	'\f': 0x0A,
	'^':  0x14,
	'{':  0x28,
	'}':  0x29,
	'\\': 0x2F,
	'[':  0x3C,
	'~':  0x3D,
	']':  0x3E,
	'|':  0x40,
	'€':  0x65,
}

var gsm7ExtensionReverse = reverseExtension(gsm7Extension)

func reverseExtension(m map[rune]byte) map[byte]rune {
	out := make(map[byte]rune, len(m))
	for r, b := range m {
		out[b] = r
	}
	return out
}

var gsm7DefaultReverse = func() map[rune]byte {
	m := make(map[rune]byte, len(gsm7DefaultAlphabet))
	for i, r := range gsm7DefaultAlphabet {
		m[r] = byte(i)
	}
	return m
}()

// IsGSM7 reports whether every rune in s can be represented in the
// GSM-7 default alphabet plus its extension table.
func IsGSM7(s string) bool {
	for _, r := range s {
		if _, ok := gsm7DefaultReverse[r]; ok {
			continue
		}
		if _, ok := gsm7Extension[r]; ok {
			continue
		}
		return false
	}
	return true
}

// gsm7Septets converts text into the sequence of 7-bit codes that will
// be packed into octets, expanding extension-table characters into an
// ESC + code pair.
func gsm7Septets(s string) []byte {
	septets := make([]byte, 0, len(s))
	for _, r := range s {
		if code, ok := gsm7DefaultReverse[r]; ok {
			septets = append(septets, code)
			continue
		}
		if code, ok := gsm7Extension[r]; ok {
			septets = append(septets, 0x1B, code)
			continue
		}
	}
	return septets
}

// PackGSM7 packs septets into octets per 3GPP 23.038, honoring a
// leading fill of fillBits septets worth of padding used to align text
// after a UDH of non-septet-aligned length. It operates over an
// explicit bit stream rather than incremental carry tracking, which is
// easy to get subtly wrong for this format.
func PackGSM7(septets []byte, fillBits int) []byte {
	if fillBits > 0 {
		padded := make([]byte, fillBits, fillBits+len(septets))
		septets = append(padded, septets...)
	}

	bits := make([]byte, 0, len(septets)*7)
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

// UnpackGSM7 unpacks count septets from packed octets, skipping
// fillBits leading padding septets (used to skip the UDH alignment
// fill in concatenated messages).
func UnpackGSM7(packed []byte, count int, fillBits int) []byte {
	total := count + fillBits

	bits := make([]byte, 0, len(packed)*8)
	for _, b := range packed {
		for i := 0; i < 8; i++ {
			bits = append(bits, (b>>uint(i))&1)
		}
	}

	septets := make([]byte, 0, total)
	for i := 0; i+7 <= len(bits) && len(septets) < total; i += 7 {
		var v byte
		for j := 0; j < 7; j++ {
			v |= bits[i+j] << uint(j)
		}
		septets = append(septets, v)
	}

	if fillBits > 0 && len(septets) >= fillBits {
		septets = septets[fillBits:]
	} else if fillBits > 0 {
		septets = nil
	}
	if len(septets) > count {
		septets = septets[:count]
	}
	return septets
}

// DecodeGSM7Septets converts unpacked septets back into text,
// interpreting ESC-prefixed extension codes.
func DecodeGSM7Septets(septets []byte) string {
	runes := make([]rune, 0, len(septets))
	for i := 0; i < len(septets); i++ {
		if septets[i] == 0x1B && i+1 < len(septets) {
			i++
			if r, ok := gsm7ExtensionReverse[septets[i]]; ok {
				runes = append(runes, r)
				continue
			}
			continue
		}
		if int(septets[i]) < len(gsm7DefaultAlphabet) {
			runes = append(runes, gsm7DefaultAlphabet[septets[i]])
		}
	}
	return string(runes)
}

// EncodeGSM7 encodes s as packed GSM-7 septets and returns the septet
// count (needed for the TPDU's user-data-length field) alongside the
// packed bytes.
func EncodeGSM7(s string) (packed []byte, septetCount int) {
	septets := gsm7Septets(s)
	return PackGSM7(septets, 0), len(septets)
}
