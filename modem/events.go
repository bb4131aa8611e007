package modem

import (
	"time"

	"i4.energy/sms-gateway/pdu"
)

// IncomingMessage is the eventbus.KindIncomingSms payload, published
// once per fully reassembled message (concatenated segments are
// merged before publication).
type IncomingMessage struct {
	MessageID   int64
	Originator  string
	Text        string
	ReceivedAt  time.Time
	Flash       bool
}

// OutgoingCompleted is the eventbus.KindOutgoingSmsCompleted payload.
type OutgoingCompleted struct {
	MessageID  int64
	Reference  byte
	Recipient  string
	SegmentIdx int
	Segments   int
}

// OutgoingFailed is the eventbus.KindOutgoingSmsFailed payload.
type OutgoingFailed struct {
	Recipient string
	Err       string
}

// DeliveryReportEvent is the eventbus.KindDeliveryReport payload.
type DeliveryReportEvent struct {
	MessageID int64
	Reference byte
	Recipient string
	Status    pdu.DeliveryStatus
	IsFinal   bool
	At        time.Time
}

// SignalStrength is the eventbus.KindSignalStrength payload, parsed
// from an unsolicited +CSQ: line.
type SignalStrength struct {
	RSSI int // 0-31, 99 = unknown
	BER  int // 0-7, 99 = unknown
}

// NetworkRegistration is the eventbus.KindNetworkRegistration
// payload, carrying the raw +CREG:/+CGREG: line since its stat field
// meaning varies by modem firmware and callers mostly want to log it.
type NetworkRegistration struct {
	Raw string
}

// GNSSFix is the eventbus.KindGnssFix payload, parsed from a
// +CGNSINF:/+UGNSINF: line.
type GNSSFix struct {
	Fixed          bool
	Timestamp      time.Time
	Latitude       float64
	Longitude      float64
	AltitudeMeters float64
	SpeedKmh       float64
	CourseDegrees  float64
	Satellites     int
}

// LinkState is the eventbus.KindModemLinkState payload.
type LinkState struct {
	Online bool
	Reason string
}
