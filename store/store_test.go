package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"i4.energy/sms-gateway/pdu"
	"i4.energy/sms-gateway/store"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")[:32]
}

// newTestStore gives each test its own named in-memory database. A bare
// ":memory:" DSN hands each pooled connection a distinct anonymous
// database, so a migration on one connection is invisible to a query
// on another; naming it and sharing the cache keeps every connection
// within one test pointed at the same database without leaking rows
// into other tests the way a single shared "file::memory:" DSN would.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	s, err := store.Connect(store.Config{
		DSN:           dsn,
		EncryptionKey: testKey(),
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertIncomingRoundTripsPlaintext(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertIncoming("+15551234567", "hello there")
	if err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero message id")
	}

	rows, err := s.PaginateByNumber("+15551234567", store.Pagination{})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 message, got %d", len(rows))
	}
	if rows[0].Content != "hello there" {
		t.Errorf("Content = %q, want %q", rows[0].Content, "hello there")
	}
	if rows[0].IsOutgoing {
		t.Error("expected IsOutgoing = false")
	}
}

func TestInsertOutgoingThenRecordDeliveryReportMarksFinal(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertOutgoing("+15559876543", "on my way", 7, 1)
	if err != nil {
		t.Fatalf("InsertOutgoing: %v", err)
	}

	resolvedID, isFinal, err := s.RecordDeliveryReport(7, pdu.StatusDelivered, time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("RecordDeliveryReport: %v", err)
	}
	if resolvedID != id {
		t.Errorf("resolvedID = %d, want %d", resolvedID, id)
	}
	if !isFinal {
		t.Error("expected StatusDelivered to be final")
	}

	reports, err := s.ReportsFor(id, store.Pagination{})
	if err != nil {
		t.Fatalf("ReportsFor: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	if !reports[0].IsFinal {
		t.Error("expected report IsFinal = true")
	}
}

func TestRecordDeliveryReportPendingStatusDoesNotComplete(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertOutgoing("+15559876543", "on my way", 9, 1)
	if err != nil {
		t.Fatalf("InsertOutgoing: %v", err)
	}

	_, isFinal, err := s.RecordDeliveryReport(9, pdu.StatusPending, time.Unix(1000, 0))
	if err != nil {
		t.Fatalf("RecordDeliveryReport: %v", err)
	}
	if isFinal {
		t.Error("expected StatusPending to not be final")
	}

	rows, err := s.PaginateByNumber("+15559876543", store.Pagination{})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	for _, r := range rows {
		if r.MessageID == id && r.CompletedAt != nil {
			t.Error("expected message to remain incomplete after a pending report")
		}
	}
}

func TestRecordDeliveryReportUnknownReferenceReturnsErrNotFound(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.RecordDeliveryReport(200, pdu.StatusDelivered, time.Now())
	if err != store.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRecordFailureCompletesMessage(t *testing.T) {
	s := newTestStore(t)

	id, err := s.InsertOutgoing("+15551112222", "will fail", 3, 1)
	if err != nil {
		t.Fatalf("InsertOutgoing: %v", err)
	}
	if err := s.RecordFailure(id, "network reject"); err != nil {
		t.Fatalf("RecordFailure: %v", err)
	}

	rows, err := s.PaginateByNumber("+15551112222", store.Pagination{})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	if rows[0].CompletedAt == nil {
		t.Error("expected CompletedAt to be set after failure")
	}
}

func TestPaginationLimitAndReverse(t *testing.T) {
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		if _, err := s.InsertIncoming("+15550001111", "msg"); err != nil {
			t.Fatalf("InsertIncoming: %v", err)
		}
	}

	limit := uint64(2)
	rows, err := s.PaginateByNumber("+15550001111", store.Pagination{Limit: &limit})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	all, err := s.PaginateByNumber("+15550001111", store.Pagination{})
	if err != nil {
		t.Fatalf("PaginateByNumber: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 rows with no limit, got %d", len(all))
	}
}

func TestLatestNumbersReturnsDistinctNumbers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.InsertIncoming("+15551234567", "a"); err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}
	if _, err := s.InsertIncoming("+15551234567", "b"); err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}
	if _, err := s.InsertIncoming("+15559998888", "c"); err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}

	numbers, err := s.LatestNumbers(ctx, store.Pagination{})
	if err != nil {
		t.Fatalf("LatestNumbers: %v", err)
	}
	if len(numbers) != 2 {
		t.Fatalf("expected 2 distinct numbers, got %d", len(numbers))
	}
}

func TestFriendlyNameSetGetAndClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetFriendlyName(ctx, "+15551234567"); err != store.ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound before any name is set", err)
	}

	name := "Alice"
	if err := s.SetFriendlyName(ctx, "+15551234567", &name); err != nil {
		t.Fatalf("SetFriendlyName: %v", err)
	}
	got, err := s.GetFriendlyName(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("GetFriendlyName: %v", err)
	}
	if got != "Alice" {
		t.Errorf("GetFriendlyName = %q, want Alice", got)
	}

	if err := s.SetFriendlyName(ctx, "+15551234567", nil); err != nil {
		t.Fatalf("SetFriendlyName(nil): %v", err)
	}
	if _, err := s.GetFriendlyName(ctx, "+15551234567"); err != store.ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound after clearing", err)
	}
}

func TestFriendlyNameUpsertReplacesValue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, second := "Alice", "Alicia"
	if err := s.SetFriendlyName(ctx, "+15551234567", &first); err != nil {
		t.Fatalf("SetFriendlyName: %v", err)
	}
	if err := s.SetFriendlyName(ctx, "+15551234567", &second); err != nil {
		t.Fatalf("SetFriendlyName: %v", err)
	}
	got, err := s.GetFriendlyName(ctx, "+15551234567")
	if err != nil {
		t.Fatalf("GetFriendlyName: %v", err)
	}
	if got != "Alicia" {
		t.Errorf("GetFriendlyName = %q, want Alicia", got)
	}
}

func TestConnectRejectsWrongKeySize(t *testing.T) {
	_, err := store.Connect(store.Config{
		DSN:           "file::memory:?cache=shared",
		EncryptionKey: []byte("too short"),
	})
	if err == nil {
		t.Fatal("expected error for undersized encryption key")
	}
}
