package modem

import (
	"time"

	"i4.energy/sms-gateway/pdu"
)

// MessageSink is the narrow slice of the message store the modem
// driver itself calls, per the concurrency model's rule that MD may
// call MS directly for the outgoing insert on ack and delivery report
// recording on URC. The store package implements this; tests may
// supply a fake or leave it nil, in which case those two calls are
// skipped and only the eventbus and pending table observe the
// activity.
type MessageSink interface {
	InsertOutgoing(phoneNumber, content string, reference byte, segmentIndex int) (messageID int64, err error)
	InsertIncoming(phoneNumber, content string) (messageID int64, err error)
	RecordDeliveryReport(reference byte, status pdu.DeliveryStatus, at time.Time) (messageID int64, isFinal bool, err error)
}
