package modem

import (
	"strings"
	"sync"
	"time"

	"i4.energy/sms-gateway/pdu"
)

// reassemblyTTL bounds how long a partially-received concatenated
// message waits for its remaining segments before being discarded.
const reassemblyTTL = 30 * time.Minute

type reassemblyKey struct {
	reference  byte
	originator string
	total      byte
}

type partialMessage struct {
	parts     map[byte]string
	firstSeen time.Time
}

// reassembler merges concatenated SMS-DELIVER segments (identified by
// a shared UDH reference/total/originator) into a single message
// before the modem driver publishes an IncomingSms event, matching
// the base spec's testable property of exactly one event per received
// message.
type reassembler struct {
	mu      sync.Mutex
	partial map[reassemblyKey]*partialMessage
}

func newReassembler() *reassembler {
	return &reassembler{partial: make(map[reassemblyKey]*partialMessage)}
}

// add records one segment and returns the joined text once every
// segment has arrived. ok is false while segments are still missing.
func (r *reassembler) add(udh *pdu.ConcatHeader, originator, text string) (joined string, ok bool) {
	if udh == nil || udh.Total <= 1 {
		return text, true
	}

	key := reassemblyKey{reference: udh.Reference, originator: originator, total: udh.Total}

	r.mu.Lock()
	defer r.mu.Unlock()

	pm, exists := r.partial[key]
	if !exists {
		pm = &partialMessage{parts: make(map[byte]string), firstSeen: time.Now()}
		r.partial[key] = pm
	}
	pm.parts[udh.Index] = text

	if len(pm.parts) < int(udh.Total) {
		return "", false
	}

	var b strings.Builder
	for i := byte(1); i <= udh.Total; i++ {
		b.WriteString(pm.parts[i])
	}
	delete(r.partial, key)
	return b.String(), true
}

// evictExpired drops partial messages that never completed within
// reassemblyTTL, e.g. because one segment never arrived.
func (r *reassembler) evictExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, pm := range r.partial {
		if now.Sub(pm.firstSeen) > reassemblyTTL {
			delete(r.partial, key)
		}
	}
}
