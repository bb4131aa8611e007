package pdu

import "fmt"

// ConcatHeader is the 6-byte User-Data-Header carrying an 8-bit
// concatenation reference, per 3GPP 23.040 §9.2.3.24.1 (information
// element 0x00).
type ConcatHeader struct {
	Reference byte
	Total     byte
	Index     byte
}

// Encode renders the header as it appears at the start of TP-UD,
// including the leading UDHL (total header length) byte.
func (h ConcatHeader) Encode() []byte {
	return []byte{0x05, 0x00, 0x03, h.Reference, h.Total, h.Index}
}

// LenBytes is the encoded header's length including the UDHL byte
// itself, used when computing where the text payload begins.
func (h ConcatHeader) LenBytes() int {
	return len(h.Encode())
}

// DecodeConcatHeader parses a UDH at the start of ud, returning the
// concatenation header (if present) and the remaining bytes after it.
// Non-concatenation information elements are skipped rather than
// rejected, since a modem-originated message may carry headers this
// codec does not otherwise care about.
func DecodeConcatHeader(ud []byte) (header *ConcatHeader, rest []byte, err error) {
	if len(ud) == 0 {
		return nil, ud, fmt.Errorf("pdu: empty user data")
	}
	udhl := int(ud[0])
	if 1+udhl > len(ud) {
		return nil, ud, fmt.Errorf("pdu: UDH length %d exceeds user data", udhl)
	}
	body := ud[1 : 1+udhl]
	rest = ud[1+udhl:]

	for i := 0; i+1 < len(body); {
		iei := body[i]
		iedl := int(body[i+1])
		if i+2+iedl > len(body) {
			break
		}
		ied := body[i+2 : i+2+iedl]
		if iei == 0x00 && iedl == 3 {
			header = &ConcatHeader{Reference: ied[0], Total: ied[1], Index: ied[2]}
		}
		i += 2 + iedl
	}

	return header, rest, nil
}
