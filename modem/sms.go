package modem

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"i4.energy/sms-gateway/at"
	"i4.energy/sms-gateway/eventbus"
	"i4.energy/sms-gateway/pdu"
)

// SendResult reports the outcome of one segment of a SendMessage call.
type SendResult struct {
	MessageID    int64
	Reference    int // TP-MR echoed back by the modem in "+CMGS: <mr>"
	SegmentIndex int
	Segments     int
}

// SendMessage encodes text as one or more SMS-SUBMIT PDUs (splitting
// and adding a concatenation UDH when it doesn't fit in a single
// segment), submits each with AT+CMGS in order, and records an
// outgoing row per segment once each is acknowledged. Each row is
// keyed by that segment's own TP-MR (the modem-assigned reference
// echoed back in "+CMGS: <mr>"), which is the namespace delivery
// reports resolve against — distinct from the UDH concatenation
// reference used to group segments in the PDU itself. Only the final
// segment's TP-MR is registered in the pending table, since a
// delivery report for a concatenated message is only guaranteed for
// the last submitted part. A storage failure aborts the remaining
// segments with a *StorageError rather than continuing to publish
// OutgoingSmsCompleted for sends whose row was never written.
func (m *Modem) SendMessage(ctx context.Context, destination, text string, flash bool) ([]SendResult, error) {
	ref := byte(m.refCounter.Add(1))
	segments, err := pdu.SegmentMessage(destination, text, flash, ref)
	if err != nil {
		return nil, &PduEncodeError{Reason: err.Error()}
	}

	results := make([]SendResult, 0, len(segments))
	for i, seg := range segments {
		m.throttleSend(ctx)

		pduHex, tpduLen, err := seg.Encode()
		if err != nil {
			return results, &PduEncodeError{Reason: err.Error()}
		}

		cmd := fmt.Sprintf(at.CmdSendPrefixFmt, tpduLen)
		res, err := m.submit(ctx, cmd, []byte(pduHex), []string{"+CMGS:"}, m.config.SendTimeout)
		if err != nil {
			m.events.Publish(eventbus.KindOutgoingSmsFailed, OutgoingFailed{
				Recipient: destination,
				Err:       err.Error(),
			})
			return results, err
		}

		mr := parseCMGSReference(res.lines)
		mrByte := byte(mr)

		var messageID int64
		if m.store != nil {
			id, err := m.store.InsertOutgoing(destination, segmentText(seg), mrByte, i+1)
			if err != nil {
				m.events.Publish(eventbus.KindOutgoingSmsFailed, OutgoingFailed{
					Recipient: destination,
					Err:       err.Error(),
				})
				return results, &StorageError{Reason: err.Error()}
			}
			messageID = id
		}
		if i == len(segments)-1 {
			m.pending.register(mrByte, messageID, destination)
		}

		results = append(results, SendResult{
			MessageID:    messageID,
			Reference:    mr,
			SegmentIndex: i + 1,
			Segments:     len(segments),
		})

		m.events.Publish(eventbus.KindOutgoingSmsCompleted, OutgoingCompleted{
			MessageID:  messageID,
			Reference:  ref,
			Recipient:  destination,
			SegmentIdx: i + 1,
			Segments:   len(segments),
		})
	}

	return results, nil
}

// throttleSend enforces Config.MinSendInterval between consecutive
// AT+CMGS submissions across all callers.
func (m *Modem) throttleSend(ctx context.Context) {
	m.sendMu.Lock()
	defer m.sendMu.Unlock()

	if wait := m.config.MinSendInterval - time.Since(m.lastSendAt); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
		}
	}
	m.lastSendAt = time.Now()
}

// segmentText recovers the plain-text content of one already-encoded
// segment, for the row SendMessage writes to the message store.
func segmentText(seg pdu.SubmitPDU) string {
	switch seg.Encoding {
	case pdu.EncodingUCS2:
		text, err := pdu.DecodeUCS2(seg.UCS2Bytes)
		if err != nil {
			return ""
		}
		return text
	default:
		return pdu.DecodeGSM7Septets(seg.Septets)
	}
}

// parseCMGSReference reads the TP-MR out of "+CMGS: <mr>".
func parseCMGSReference(lines []string) int {
	for _, line := range lines {
		if !strings.HasPrefix(line, "+CMGS:") {
			continue
		}
		mr, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "+CMGS:")))
		if err != nil {
			return 0
		}
		return mr
	}
	return 0
}
