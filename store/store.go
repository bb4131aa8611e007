// Package store persists messages, delivery reports, send failures,
// and friendly names to SQLite via GORM, encrypting message content at
// the repository boundary and optionally caching read-heavy queries in
// Redis. It implements modem.MessageSink so the modem driver can
// record outgoing sends and delivery reports directly.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"i4.energy/sms-gateway/pdu"
)

// Config configures Connect. DSN is a SQLite connection string
// (typically a file path; ":memory:" for tests). EncryptionKey must be
// exactly chacha20poly1305.KeySize (32) bytes.
type Config struct {
	DSN           string
	EncryptionKey []byte
	Cache         Cache
	CacheTTL      time.Duration
}

// Store is the message store. The zero value is not usable; construct
// with Connect.
type Store struct {
	db       *gorm.DB
	cache    Cache
	cipher   *messageCipher
	cacheTTL time.Duration
}

// Connect opens the database, retrying up to 5 times 2 seconds apart
// (the connection may race a not-yet-mounted data volume at boot),
// applies the same optimizing pragmas as the original SQLite setup,
// and auto-migrates the schema.
func Connect(cfg Config) (*Store, error) {
	cipher, err := newMessageCipher(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for range 5 {
		db, err = gorm.Open(sqlite.Open(cfg.DSN), &gorm.Config{})
		if err == nil {
			break
		}
		<-ticker.C
	}
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	} {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("store: apply pragma %q: %w", pragma, err)
		}
	}

	if err := db.AutoMigrate(&Message{}, &DeliveryReport{}, &SendFailure{}, &FriendlyName{}); err != nil {
		return nil, fmt.Errorf("store: migrate schema: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Store{db: db, cache: cfg.Cache, cipher: cipher, cacheTTL: ttl}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Pagination mirrors the HTTP adapter's {limit?, offset?, reverse?}
// request body. A nil Limit returns the entire result set; a nil
// Offset behaves as zero; Reverse orders ascending by the row's
// natural time column (oldest first) instead of the default
// newest-first.
type Pagination struct {
	Limit   *uint64
	Offset  *uint64
	Reverse bool
}

func (p Pagination) apply(db *gorm.DB, orderColumn string) *gorm.DB {
	direction := "DESC"
	if p.Reverse {
		direction = "ASC"
	}
	db = db.Order(fmt.Sprintf("%s %s", orderColumn, direction))
	if p.Limit != nil {
		db = db.Limit(int(*p.Limit))
	}
	if p.Offset != nil {
		db = db.Offset(int(*p.Offset))
	}
	return db
}

// InsertOutgoing implements modem.MessageSink. segmentIndex is
// 1-based, matching the modem driver's per-segment submission loop;
// every segment of a multipart send gets its own row, per the stated
// limitation that only the final segment is tracked for delivery
// reports.
func (s *Store) InsertOutgoing(phoneNumber, content string, reference byte, segmentIndex int) (int64, error) {
	ciphertext, err := s.cipher.encrypt(content)
	if err != nil {
		return 0, fmt.Errorf("store: encrypt outgoing message: %w", err)
	}
	ref := int(reference)
	msg := Message{
		PhoneNumber:      phoneNumber,
		MessageContent:   ciphertext,
		MessageReference: &ref,
		SegmentIndex:     segmentIndex,
		IsOutgoing:       true,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return 0, fmt.Errorf("store: insert outgoing message: %w", err)
	}
	return msg.ID, nil
}

// InsertIncoming implements modem.MessageSink.
func (s *Store) InsertIncoming(phoneNumber, content string) (int64, error) {
	ciphertext, err := s.cipher.encrypt(content)
	if err != nil {
		return 0, fmt.Errorf("store: encrypt incoming message: %w", err)
	}
	msg := Message{
		PhoneNumber:    phoneNumber,
		MessageContent: ciphertext,
		IsOutgoing:     false,
	}
	if err := s.db.Create(&msg).Error; err != nil {
		return 0, fmt.Errorf("store: insert incoming message: %w", err)
	}
	return msg.ID, nil
}

// RecordDeliveryReport implements modem.MessageSink. It resolves the
// target message the same way the original implementation does —
// the most recent unfinished outgoing message carrying this
// reference — rather than maintaining a second reference table that
// could drift after a crash mid-send.
//
// Unlike the original query, this does not also filter by phone
// number: modem.MessageSink's RecordDeliveryReport receives only the
// TP-MR byte, not the recipient, so two concurrent sends to different
// numbers that happen to share a reference byte could resolve to the
// wrong row. This is an accepted narrowing of the original's
// disambiguation, consistent with the one-byte reference namespace
// already being a known collision risk across a busy modem.
func (s *Store) RecordDeliveryReport(reference byte, status pdu.DeliveryStatus, at time.Time) (int64, bool, error) {
	var messageID int64
	isFinal := status != pdu.StatusPending

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var msg Message
		err := tx.Where("completed_at IS NULL AND is_outgoing = ? AND message_reference = ?", true, int(reference)).
			Order("message_id DESC").
			First(&msg).Error
		if err != nil {
			return err
		}
		messageID = msg.ID

		report := DeliveryReport{
			MessageID: messageID,
			Status:    int(status),
			IsFinal:   isFinal,
		}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		updates := map[string]any{"status": int(status)}
		if isFinal {
			updates["completed_at"] = at.Unix()
		}
		return tx.Model(&Message{}).Where("message_id = ?", messageID).Updates(updates).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, ErrNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: record delivery report: %w", err)
	}

	return messageID, isFinal, nil
}

// RecordFailure marks a send as failed, completing the message row.
func (s *Store) RecordFailure(messageID int64, errorMessage string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		failure := SendFailure{MessageID: messageID, ErrorMessage: errorMessage}
		if err := tx.Create(&failure).Error; err != nil {
			return fmt.Errorf("store: insert send failure: %w", err)
		}
		now := time.Now().Unix()
		if err := tx.Model(&Message{}).Where("message_id = ?", messageID).Update("completed_at", now).Error; err != nil {
			return fmt.Errorf("store: complete failed message: %w", err)
		}
		return nil
	})
}

// cryptoErrorPlaceholder is substituted for Content when a row's
// ciphertext fails to decrypt, per ErrCryptoError: the row is still
// returned, flagged, rather than failing the whole page.
const cryptoErrorPlaceholder = "<decryption failed>"

// DecodedMessage is a Message with MessageContent decrypted for the
// caller. DecryptFailed is set, and Content holds a sentinel
// placeholder instead of plaintext, when this row's ciphertext could
// not be decrypted (see ErrCryptoError).
type DecodedMessage struct {
	MessageID        int64
	PhoneNumber      string
	Content          string
	MessageReference *int
	IsOutgoing       bool
	Status           *int
	CreatedAt        int64
	CompletedAt      *int64
	DecryptFailed    bool
}

func (s *Store) decodeMessages(rows []Message) []DecodedMessage {
	out := make([]DecodedMessage, 0, len(rows))
	for _, row := range rows {
		content, err := s.cipher.decrypt(row.MessageContent)
		decryptFailed := err != nil
		if decryptFailed {
			content = cryptoErrorPlaceholder
		}
		out = append(out, DecodedMessage{
			MessageID:        row.ID,
			PhoneNumber:      row.PhoneNumber,
			Content:          content,
			MessageReference: row.MessageReference,
			IsOutgoing:       row.IsOutgoing,
			Status:           row.Status,
			CreatedAt:        row.CreatedAt,
			CompletedAt:      row.CompletedAt,
			DecryptFailed:    decryptFailed,
		})
	}
	return out
}

// PaginateByNumber returns messages exchanged with phoneNumber, newest
// first unless page.Reverse.
func (s *Store) PaginateByNumber(phoneNumber string, page Pagination) ([]DecodedMessage, error) {
	var rows []Message
	q := page.apply(s.db.Where("phone_number = ?", phoneNumber), "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: paginate messages: %w", err)
	}
	return s.decodeMessages(rows), nil
}

// NumberSummary is one row of a LatestNumbers result: a phone number
// this gateway has exchanged messages with, plus its friendly name if
// one is set.
type NumberSummary struct {
	PhoneNumber  string
	FriendlyName *string
}

// LatestNumbers returns distinct phone numbers ordered by the most
// recent message exchanged with each, cached under a TTL keyed by the
// exact pagination request since a new message doesn't invalidate
// every possible page.
func (s *Store) LatestNumbers(ctx context.Context, page Pagination) ([]NumberSummary, error) {
	cacheKey := latestNumbersCacheKey(page)
	if out, ok := s.readNumberSummaryCache(ctx, cacheKey); ok {
		return out, nil
	}

	type row struct {
		PhoneNumber  string
		FriendlyName *string
	}
	var rows []row
	q := s.db.Table("messages AS m").
		Select("m.phone_number AS phone_number, f.friendly_name AS friendly_name").
		Joins("LEFT JOIN friendly_names f ON f.phone_number = m.phone_number").
		Group("m.phone_number")
	q = page.apply(q, "MAX(m.created_at)")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: latest numbers: %w", err)
	}

	out := make([]NumberSummary, len(rows))
	for i, r := range rows {
		out[i] = NumberSummary{PhoneNumber: r.PhoneNumber, FriendlyName: r.FriendlyName}
	}

	s.writeNumberSummaryCache(ctx, cacheKey, out)
	return out, nil
}

// DecodedDeliveryReport is a DeliveryReport row as returned to
// callers; no decryption is needed since delivery reports carry no
// message content.
type DecodedDeliveryReport struct {
	ReportID  int64
	MessageID int64
	Status    int
	IsFinal   bool
	CreatedAt int64
}

// ReportsFor returns the delivery reports recorded against messageID.
func (s *Store) ReportsFor(messageID int64, page Pagination) ([]DecodedDeliveryReport, error) {
	var rows []DeliveryReport
	q := page.apply(s.db.Where("message_id = ?", messageID), "created_at")
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("store: reports for message: %w", err)
	}
	out := make([]DecodedDeliveryReport, len(rows))
	for i, r := range rows {
		out[i] = DecodedDeliveryReport{ReportID: r.ID, MessageID: r.MessageID, Status: r.Status, IsFinal: r.IsFinal, CreatedAt: r.CreatedAt}
	}
	return out, nil
}

// SetFriendlyName upserts phoneNumber's label when name is non-nil,
// or deletes the row when name is nil — matching the original
// database's INSERT ... ON CONFLICT DO UPDATE / DELETE branch.
func (s *Store) SetFriendlyName(ctx context.Context, phoneNumber string, name *string) error {
	var err error
	if name != nil {
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone_number"}},
			DoUpdates: clause.AssignmentColumns([]string{"friendly_name"}),
		}).Create(&FriendlyName{PhoneNumber: phoneNumber, FriendlyName: *name}).Error
	} else {
		err = s.db.Where("phone_number = ?", phoneNumber).Delete(&FriendlyName{}).Error
	}
	if err != nil {
		return fmt.Errorf("store: set friendly name: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, friendlyNameCacheKey(phoneNumber))
	}
	return nil
}

// GetFriendlyName returns ErrNotFound if phoneNumber has no label.
func (s *Store) GetFriendlyName(ctx context.Context, phoneNumber string) (string, error) {
	key := friendlyNameCacheKey(phoneNumber)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, key); err == nil {
			return cached, nil
		}
	}

	var row FriendlyName
	err := s.db.Where("phone_number = ?", phoneNumber).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: get friendly name: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, key, row.FriendlyName, s.cacheTTL)
	}
	return row.FriendlyName, nil
}

func (s *Store) readNumberSummaryCache(ctx context.Context, key string) ([]NumberSummary, bool) {
	if s.cache == nil {
		return nil, false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var out []NumberSummary
	if err := json.Unmarshal([]byte(cached), &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *Store) writeNumberSummaryCache(ctx context.Context, key string, out []NumberSummary) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(out)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, string(encoded), s.cacheTTL)
}

func friendlyNameCacheKey(phoneNumber string) string {
	return "friendly_name:" + phoneNumber
}

func latestNumbersCacheKey(page Pagination) string {
	limit, offset := "nil", "0"
	if page.Limit != nil {
		limit = strconv.FormatUint(*page.Limit, 10)
	}
	if page.Offset != nil {
		offset = strconv.FormatUint(*page.Offset, 10)
	}
	return fmt.Sprintf("latest_numbers:%s:%s:%t", limit, offset, page.Reverse)
}
