package pdu

import (
	"encoding/hex"
	"fmt"
	"time"
)

// DeliverPDU is a decoded SMS-DELIVER TPDU, the form an incoming
// message from the network takes, whether read from CMGR/CMGL storage
// or pushed inline behind a +CMT URC.
type DeliverPDU struct {
	Originator   string
	Encoding     Encoding
	Flash        bool
	Timestamp    time.Time
	UDH          *ConcatHeader
	Text         string
	MoreMessages bool
}

// DecodeDeliver parses a full PDU (SMSC octet plus TPDU) into a
// DeliverPDU. UDH-bearing segments are returned individually, with
// concatenation reassembly left to the caller (the modem driver holds
// the cross-segment reassembly buffer, since it also owns URC timing).
func DecodeDeliver(pduHex string) (DeliverPDU, error) {
	raw, err := hex.DecodeString(pduHex)
	if err != nil {
		return DeliverPDU{}, fmt.Errorf("pdu: invalid hex: %w", err)
	}
	if len(raw) < 1 {
		return DeliverPDU{}, fmt.Errorf("pdu: empty PDU")
	}

	smscLen := int(raw[0])
	if 1+smscLen > len(raw) {
		return DeliverPDU{}, fmt.Errorf("pdu: SMSC length exceeds PDU")
	}
	tpdu := raw[1+smscLen:]
	if len(tpdu) < 2 {
		return DeliverPDU{}, fmt.Errorf("pdu: TPDU too short")
	}

	firstOctet := tpdu[0]
	if firstOctet&0x03 != 0x00 {
		return DeliverPDU{}, fmt.Errorf("pdu: not an SMS-DELIVER TPDU (MTI=%d)", firstOctet&0x03)
	}
	udhi := firstOctet&0x40 != 0
	mms := firstOctet&0x04 == 0 // MMS bit is inverted: 0 means more messages follow

	digitCount := int(tpdu[1])
	if len(tpdu) < 2 {
		return DeliverPDU{}, fmt.Errorf("pdu: missing originator address")
	}
	pos := 2
	if pos >= len(tpdu) {
		return DeliverPDU{}, fmt.Errorf("pdu: missing type-of-address")
	}
	toa := tpdu[pos]
	pos++
	addrOctets := (digitCount + 1) / 2
	if pos+addrOctets > len(tpdu) {
		return DeliverPDU{}, fmt.Errorf("pdu: originator address exceeds TPDU")
	}
	originator, err := DecodeAddress(digitCount, toa, tpdu[pos:pos+addrOctets])
	if err != nil {
		return DeliverPDU{}, err
	}
	pos += addrOctets

	if pos+9 > len(tpdu) {
		return DeliverPDU{}, fmt.Errorf("pdu: truncated TPDU header")
	}
	pos++ // TP-PID
	dcsByte := tpdu[pos]
	pos++
	scts := tpdu[pos : pos+7]
	pos += 7
	timestamp, err := DecodeTimestamp(scts)
	if err != nil {
		return DeliverPDU{}, err
	}
	udl := int(tpdu[pos])
	pos++
	ud := tpdu[pos:]

	enc, flash := ParseDCS(dcsByte)

	result := DeliverPDU{
		Originator:   originator,
		Encoding:     enc,
		Flash:        flash,
		Timestamp:    timestamp,
		MoreMessages: mms,
	}

	if udhi {
		if len(ud) == 0 {
			return DeliverPDU{}, fmt.Errorf("pdu: UDHI set but user data empty")
		}
		udhLen := int(ud[0]) + 1
		header, rest, err := DecodeConcatHeader(ud)
		if err != nil {
			return DeliverPDU{}, err
		}
		result.UDH = header

		if enc == EncodingGSM7 {
			headerSeptets := headerSeptetLen(make([]byte, udhLen))
			_, septets := unpackGSM7WithHeader(ud, udhLen, udl-headerSeptets)
			result.Text = DecodeGSM7Septets(septets)
		} else {
			text, err := DecodeUCS2(rest)
			if err != nil {
				return DeliverPDU{}, err
			}
			result.Text = text
		}
		return result, nil
	}

	if enc == EncodingGSM7 {
		result.Text = DecodeGSM7Septets(UnpackGSM7(ud, udl, 0))
	} else {
		text, err := DecodeUCS2(ud)
		if err != nil {
			return DeliverPDU{}, err
		}
		result.Text = text
	}
	return result, nil
}
