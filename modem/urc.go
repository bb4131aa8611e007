package modem

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"i4.energy/sms-gateway/at"
	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/pdu"
)

// dispatchURC routes a URC line to the appropriate handler. Two URC
// kinds — +CMT: and +CDS: — are headers whose payload arrives as the
// following raw line rather than being self-contained; for those,
// dispatchURC returns a continuation the Loop must feed that next
// line into instead of classifying it.
func (m *Modem) dispatchURC(line string) (continuation func(dataLine string)) {
	switch {
	case strings.HasPrefix(line, at.UrcIncomingSMS):
		return m.handleIncomingSMS

	case strings.HasPrefix(line, at.UrcDeliveryRpt):
		return m.handleDeliveryReport

	case strings.HasPrefix(line, at.UrcNetworkReg), strings.HasPrefix(line, at.UrcGPRSNetwork):
		m.events.Publish(eventbus.KindNetworkRegistration, NetworkRegistration{Raw: line})

	case strings.HasPrefix(line, "+CSQ:"):
		if sig, ok := parseSignalStrength(line); ok {
			m.events.Publish(eventbus.KindSignalStrength, sig)
		}

	case strings.HasPrefix(line, at.UrcGNSSInfoSim), strings.HasPrefix(line, at.UrcGNSSInfoAlt):
		if fix, ok := parseGNSSInfo(line); ok {
			m.gnss.store(fix)
			m.events.Publish(eventbus.KindGnssFix, fix)
		}

	case line == at.UrcCall, strings.HasPrefix(line, at.UrcMessageIndex):
		// Voice call ring and stored-message-index notifications carry
		// no event kind in the bus catalogue; AT+CNMI is configured to
		// push SMS directly rather than via index, so +CMTI is not
		// expected in normal operation.
	}
	return nil
}

func (m *Modem) handleIncomingSMS(pduHex string) {
	d, err := pdu.DecodeDeliver(pduHex)
	if err != nil {
		return
	}

	text, complete := m.reassembly.add(d.UDH, d.Originator, d.Text)
	if !complete {
		return
	}

	var messageID int64
	if m.store != nil {
		if id, err := m.store.InsertIncoming(d.Originator, text); err == nil {
			messageID = id
		}
	}

	m.events.Publish(eventbus.KindIncomingSms, IncomingMessage{
		MessageID:  messageID,
		Originator: d.Originator,
		Text:       text,
		ReceivedAt: d.Timestamp,
		Flash:      d.Flash,
	})
}

func (m *Modem) handleDeliveryReport(pduHex string) {
	r, err := pdu.DecodeStatusReport(pduHex)
	if err != nil {
		return
	}

	var messageID int64
	var isFinal bool
	if m.store != nil {
		if id, final, err := m.store.RecordDeliveryReport(r.Reference, r.Status, r.DischargeAt); err == nil {
			messageID, isFinal = id, final
		}
	} else if entry, ok := m.pending.resolve(r.Reference); ok {
		messageID = entry.messageID
		isFinal = r.Status != pdu.StatusPending
	}

	m.events.Publish(eventbus.KindDeliveryReport, DeliveryReportEvent{
		MessageID: messageID,
		Reference: r.Reference,
		Recipient: r.Recipient,
		Status:    r.Status,
		IsFinal:   isFinal,
		At:        r.DischargeAt,
	})
}

// parseSignalStrength reads "+CSQ: <rssi>,<ber>".
func parseSignalStrength(line string) (SignalStrength, bool) {
	body := strings.TrimSpace(strings.TrimPrefix(line, "+CSQ:"))
	fields := strings.Split(body, ",")
	if len(fields) < 2 {
		return SignalStrength{}, false
	}
	rssi, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
	ber, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err1 != nil || err2 != nil {
		return SignalStrength{}, false
	}
	return SignalStrength{RSSI: rssi, BER: ber}, true
}

// parseGNSSInfo reads a +CGNSINF:/+UGNSINF: line. The field layout
// (run status, fix status, UTC timestamp, lat, lon, altitude, speed,
// course, fix mode, HDOP/PDOP/VDOP, ..., satellites in view) matches
// SIMCom's GNSS command set, the family original_source targets.
func parseGNSSInfo(line string) (GNSSFix, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return GNSSFix{}, false
	}
	fields := strings.Split(line[idx+1:], ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 8 {
		return GNSSFix{}, false
	}

	fix := GNSSFix{Fixed: fields[1] == "1"}
	if ts, err := time.Parse("20060102150405.000", fields[2]); err == nil {
		fix.Timestamp = ts
	}
	fix.Latitude, _ = strconv.ParseFloat(fields[3], 64)
	fix.Longitude, _ = strconv.ParseFloat(fields[4], 64)
	fix.AltitudeMeters, _ = strconv.ParseFloat(fields[5], 64)
	fix.SpeedKmh, _ = strconv.ParseFloat(fields[6], 64)
	fix.CourseDegrees, _ = strconv.ParseFloat(fields[7], 64)
	if len(fields) > 14 {
		fix.Satellites, _ = strconv.Atoi(fields[14])
	}
	return fix, true
}

// gnssCache holds the most recently observed fix for synchronous
// GET /gnss/{status,location} handlers, since a fix only arrives
// asynchronously via URC.
type gnssCache struct {
	mu   sync.Mutex
	last GNSSFix
	set  bool
}

func newGNSSCache() *gnssCache {
	return &gnssCache{}
}

func (c *gnssCache) store(fix GNSSFix) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = fix
	c.set = true
}

func (c *gnssCache) Load() (GNSSFix, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, c.set
}
