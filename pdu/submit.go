package pdu

import (
	"encoding/hex"
	"fmt"
)

// Relative validity period values from 3GPP 23.040 §9.2.3.12.1. 167
// resolves to 24 hours and matches this gateway's AT+CSMP validity
// setting, used as the default for outgoing messages.
const ValidityPeriod24Hours byte = 167

// SubmitPDU is one TPDU-level SMS-SUBMIT, corresponding to a single
// outgoing message or a single segment of a concatenated one. The
// message text has already been reduced to its wire encoding by the
// caller (normally via SegmentMessage) so Encode has nothing left to
// decide beyond framing.
type SubmitPDU struct {
	Reference      byte
	Destination    string
	Encoding       Encoding
	Flash          bool
	StatusReport   bool
	ValidityPeriod byte
	UDH            *ConcatHeader
	Septets        []byte // set when Encoding == EncodingGSM7
	UCS2Bytes      []byte // set when Encoding == EncodingUCS2
}

// Encode renders the full PDU (including a leading SMSC-length octet
// of 0x00, meaning "use the SIM-stored service centre") as an
// uppercase hex string, alongside the TPDU length AT+CMGS expects as
// its argument.
func (s SubmitPDU) Encode() (pduHex string, tpduLength int, err error) {
	digitCount, toa, addr, err := EncodeAddress(s.Destination)
	if err != nil {
		return "", 0, err
	}

	var firstOctet byte = 0x01 // MTI = SMS-SUBMIT
	firstOctet |= 0x10         // VPF = relative
	if s.StatusReport {
		firstOctet |= 0x20 // SRR
	}
	if s.UDH != nil {
		firstOctet |= 0x40 // UDHI
	}

	dcs := BuildDCS(s.Encoding, s.Flash)

	udBytes, udl, err := s.encodeUserData()
	if err != nil {
		return "", 0, err
	}

	tpdu := []byte{firstOctet, s.Reference, byte(digitCount), toa}
	tpdu = append(tpdu, addr...)
	tpdu = append(tpdu, 0x00) // TP-PID
	tpdu = append(tpdu, dcs)
	tpdu = append(tpdu, s.ValidityPeriod)
	tpdu = append(tpdu, byte(udl))
	tpdu = append(tpdu, udBytes...)

	full := append([]byte{0x00}, tpdu...)
	return hexEncodeUpper(full), len(tpdu), nil
}

func (s SubmitPDU) encodeUserData() (ud []byte, udl int, err error) {
	switch s.Encoding {
	case EncodingGSM7:
		if s.UDH != nil {
			header := s.UDH.Encode()
			ud = packGSM7WithHeader(header, s.Septets)
			udl = headerSeptetLen(header) + len(s.Septets)
			return ud, udl, nil
		}
		return PackGSM7(s.Septets, 0), len(s.Septets), nil
	case EncodingUCS2:
		if s.UDH != nil {
			header := s.UDH.Encode()
			ud = append(append([]byte{}, header...), s.UCS2Bytes...)
			return ud, len(ud), nil
		}
		return s.UCS2Bytes, len(s.UCS2Bytes), nil
	default:
		return nil, 0, fmt.Errorf("pdu: unknown encoding %v", s.Encoding)
	}
}

// DecodeSubmit parses a full PDU (SMSC octet plus TPDU) produced by a
// modem echoing back a submitted message, e.g. when reading it out of
// the ME's own message storage for diagnostics.
func DecodeSubmit(pduHex string) (SubmitPDU, error) {
	raw, err := hex.DecodeString(pduHex)
	if err != nil {
		return SubmitPDU{}, fmt.Errorf("pdu: invalid hex: %w", err)
	}
	if len(raw) < 1 {
		return SubmitPDU{}, fmt.Errorf("pdu: empty PDU")
	}

	smscLen := int(raw[0])
	if 1+smscLen > len(raw) {
		return SubmitPDU{}, fmt.Errorf("pdu: SMSC length exceeds PDU")
	}
	tpdu := raw[1+smscLen:]
	if len(tpdu) < 4 {
		return SubmitPDU{}, fmt.Errorf("pdu: TPDU too short")
	}

	firstOctet := tpdu[0]
	if firstOctet&0x03 != 0x01 {
		return SubmitPDU{}, fmt.Errorf("pdu: not an SMS-SUBMIT TPDU (MTI=%d)", firstOctet&0x03)
	}
	udhi := firstOctet&0x40 != 0
	srr := firstOctet&0x20 != 0

	reference := tpdu[1]
	digitCount := int(tpdu[2])
	toa := tpdu[3]
	addrOctets := (digitCount + 1) / 2
	pos := 4
	if pos+addrOctets > len(tpdu) {
		return SubmitPDU{}, fmt.Errorf("pdu: destination address exceeds TPDU")
	}
	destination, err := DecodeAddress(digitCount, toa, tpdu[pos:pos+addrOctets])
	if err != nil {
		return SubmitPDU{}, err
	}
	pos += addrOctets

	if pos+3 > len(tpdu) {
		return SubmitPDU{}, fmt.Errorf("pdu: truncated TPDU header")
	}
	pos++ // TP-PID
	dcsByte := tpdu[pos]
	pos++
	vp := tpdu[pos]
	pos++
	if pos >= len(tpdu) {
		return SubmitPDU{}, fmt.Errorf("pdu: missing user data length")
	}
	udl := int(tpdu[pos])
	pos++
	ud := tpdu[pos:]

	enc, flash := ParseDCS(dcsByte)

	result := SubmitPDU{
		Reference:      reference,
		Destination:    destination,
		Encoding:       enc,
		Flash:          flash,
		StatusReport:   srr,
		ValidityPeriod: vp,
	}

	if udhi {
		if len(ud) == 0 {
			return SubmitPDU{}, fmt.Errorf("pdu: UDHI set but user data empty")
		}
		udhLen := int(ud[0]) + 1

		header, rest, err := DecodeConcatHeader(ud)
		if err != nil {
			return SubmitPDU{}, err
		}
		result.UDH = header

		if enc == EncodingGSM7 {
			headerSeptets := headerSeptetLen(make([]byte, udhLen))
			_, septets := unpackGSM7WithHeader(ud, udhLen, udl-headerSeptets)
			result.Septets = septets
		} else {
			result.UCS2Bytes = rest
		}
		return result, nil
	}

	if enc == EncodingGSM7 {
		result.Septets = UnpackGSM7(ud, udl, 0)
	} else {
		result.UCS2Bytes = ud
	}
	return result, nil
}

func headerSeptetLen(header []byte) int {
	return (len(header)*8 + 6) / 7
}
