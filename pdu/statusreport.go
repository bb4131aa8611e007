package pdu

import (
	"encoding/hex"
	"fmt"
	"time"
)

// DeliveryStatus mirrors the TP-Status byte's top-level outcome per
// 3GPP 23.040 §9.2.3.15, collapsed to the three states a caller
// actually needs to act on. Only the temporary-error range (0x20-0x3F,
// "SC still trying") is surfaced as StatusPending; every other code,
// success or permanent failure, is final.
type DeliveryStatus int

const (
	StatusPending DeliveryStatus = iota
	StatusDelivered
	StatusFailed
)

// StatusReportPDU is a decoded SMS-STATUS-REPORT TPDU, delivered
// inline behind a +CDS URC when AT+CNMI has status reporting enabled.
type StatusReportPDU struct {
	Reference   byte
	Recipient   string
	Timestamp   time.Time
	DischargeAt time.Time
	RawStatus   byte
	Status      DeliveryStatus
}

// DecodeStatusReport parses a full PDU (SMSC octet plus TPDU) into a
// StatusReportPDU. The Reference field is what the message store
// correlates back against the TP-MR captured at submission time to
// resolve which outgoing message this report belongs to.
func DecodeStatusReport(pduHex string) (StatusReportPDU, error) {
	raw, err := hex.DecodeString(pduHex)
	if err != nil {
		return StatusReportPDU{}, fmt.Errorf("pdu: invalid hex: %w", err)
	}
	if len(raw) < 1 {
		return StatusReportPDU{}, fmt.Errorf("pdu: empty PDU")
	}

	smscLen := int(raw[0])
	if 1+smscLen > len(raw) {
		return StatusReportPDU{}, fmt.Errorf("pdu: SMSC length exceeds PDU")
	}
	tpdu := raw[1+smscLen:]
	if len(tpdu) < 2 {
		return StatusReportPDU{}, fmt.Errorf("pdu: TPDU too short")
	}

	firstOctet := tpdu[0]
	if firstOctet&0x03 != 0x02 {
		return StatusReportPDU{}, fmt.Errorf("pdu: not an SMS-STATUS-REPORT TPDU (MTI=%d)", firstOctet&0x03)
	}

	reference := tpdu[1]
	if len(tpdu) < 3 {
		return StatusReportPDU{}, fmt.Errorf("pdu: missing recipient address")
	}
	digitCount := int(tpdu[2])
	pos := 3
	if pos >= len(tpdu) {
		return StatusReportPDU{}, fmt.Errorf("pdu: missing type-of-address")
	}
	toa := tpdu[pos]
	pos++
	addrOctets := (digitCount + 1) / 2
	if pos+addrOctets > len(tpdu) {
		return StatusReportPDU{}, fmt.Errorf("pdu: recipient address exceeds TPDU")
	}
	recipient, err := DecodeAddress(digitCount, toa, tpdu[pos:pos+addrOctets])
	if err != nil {
		return StatusReportPDU{}, err
	}
	pos += addrOctets

	if pos+15 > len(tpdu) {
		return StatusReportPDU{}, fmt.Errorf("pdu: truncated status report")
	}
	scts := tpdu[pos : pos+7]
	pos += 7
	dischargeTime := tpdu[pos : pos+7]
	pos += 7
	status := tpdu[pos]

	timestamp, err := DecodeTimestamp(scts)
	if err != nil {
		return StatusReportPDU{}, err
	}
	discharge, err := DecodeTimestamp(dischargeTime)
	if err != nil {
		return StatusReportPDU{}, err
	}

	return StatusReportPDU{
		Reference:   reference,
		Recipient:   recipient,
		Timestamp:   timestamp,
		DischargeAt: discharge,
		RawStatus:   status,
		Status:      classifyStatus(status),
	}, nil
}

func classifyStatus(status byte) DeliveryStatus {
	switch {
	case status == 0x00:
		return StatusDelivered
	case status < 0x20:
		// 0x01-0x1F: transaction completed (forwarded, replaced, ...).
		return StatusDelivered
	case status < 0x40:
		// 0x20-0x3F: temporary error, SC still trying — the only
		// transient range; everything else is final one way or the
		// other.
		return StatusPending
	default:
		return StatusFailed
	}
}
