package store

import (
	"testing"
)

func TestPaginateByNumberFlagsCorruptedRowInstead(t *testing.T) {
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Connect(Config{DSN: dsn, EncryptionKey: testKeyForMocks()})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	goodID, err := s.InsertIncoming("+15551234567", "hello there")
	if err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}
	badID, err := s.InsertIncoming("+15551234567", "this one gets corrupted")
	if err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}

	if err := s.db.Model(&Message{}).Where("message_id = ?", badID).
		Update("message_content", "not-valid-base64-ciphertext!!").Error; err != nil {
		t.Fatalf("corrupt row: %v", err)
	}

	rows, err := s.PaginateByNumber("+15551234567", Pagination{})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows despite one corrupted, got %d", len(rows))
	}

	var good, bad *DecodedMessage
	for i := range rows {
		switch rows[i].MessageID {
		case goodID:
			good = &rows[i]
		case badID:
			bad = &rows[i]
		}
	}
	if good == nil || bad == nil {
		t.Fatalf("expected both rows present, got %+v", rows)
	}
	if good.DecryptFailed {
		t.Error("uncorrupted row should not be flagged")
	}
	if good.Content != "hello there" {
		t.Errorf("uncorrupted row Content = %q", good.Content)
	}
	if !bad.DecryptFailed {
		t.Error("corrupted row should be flagged DecryptFailed")
	}
	if bad.Content != cryptoErrorPlaceholder {
		t.Errorf("corrupted row Content = %q, want placeholder", bad.Content)
	}
}
