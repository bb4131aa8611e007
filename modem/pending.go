package modem

import (
	"sync"
	"time"
)

// pendingTTL bounds how long a reference is kept waiting for a
// delivery report before it is considered abandoned.
const pendingTTL = 72 * time.Hour

// pendingEntry is one row of the in-memory reference table. When a
// message store is configured, a delivery report is resolved by the
// store's own (message_reference, completed_at IS NULL) lookup and
// this table is not consulted; it resolves reports only when the
// Modem runs without a store.
type pendingEntry struct {
	messageID   int64
	phoneNumber string
	sentAt      time.Time
}

// pendingTable is the MD-owned, single-writer map from an outgoing
// message's TP-MR reference byte to the message it belongs to.
type pendingTable struct {
	mu      sync.Mutex
	entries map[byte]pendingEntry
}

func newPendingTable() *pendingTable {
	return &pendingTable{entries: make(map[byte]pendingEntry)}
}

// register records that reference belongs to messageID, to be
// consulted when a delivery report referencing it arrives.
func (t *pendingTable) register(reference byte, messageID int64, phoneNumber string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[reference] = pendingEntry{
		messageID:   messageID,
		phoneNumber: phoneNumber,
		sentAt:      time.Now(),
	}
}

// resolve looks up the message a delivery report reference belongs
// to. The second return value is false when the reference is not in
// the table.
func (t *pendingTable) resolve(reference byte) (pendingEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[reference]
	return e, ok
}

// evictExpired drops entries older than pendingTTL, called
// periodically so a modem that runs for weeks doesn't accumulate an
// unbounded map of references that will never see a report.
func (t *pendingTable) evictExpired(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ref, e := range t.entries {
		if now.Sub(e.sentAt) > pendingTTL {
			delete(t.entries, ref)
		}
	}
}
