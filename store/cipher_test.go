package store

import (
	"fmt"
	"strings"
	"testing"
)

func TestMessageContentIsEncryptedAtRest(t *testing.T) {
	s, err := Connect(Config{
		DSN:           fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		EncryptionKey: []byte("0123456789abcdef0123456789abcdef")[:32],
	})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer s.Close()

	if _, err := s.InsertIncoming("+15551234567", "super secret"); err != nil {
		t.Fatalf("InsertIncoming: %v", err)
	}

	var raw Message
	if err := s.db.Where("phone_number = ?", "+15551234567").First(&raw).Error; err != nil {
		t.Fatalf("querying raw row: %v", err)
	}
	if strings.Contains(raw.MessageContent, "super secret") {
		t.Fatal("plaintext found in stored message_content column")
	}
}

func TestCipherRoundTrip(t *testing.T) {
	c, err := newMessageCipher([]byte("0123456789abcdef0123456789abcdef")[:32])
	if err != nil {
		t.Fatalf("newMessageCipher: %v", err)
	}
	sealed, err := c.encrypt("hello world")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if strings.Contains(sealed, "hello world") {
		t.Fatal("ciphertext contains plaintext")
	}
	plain, err := c.decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if plain != "hello world" {
		t.Errorf("decrypt = %q, want %q", plain, "hello world")
	}
}

func TestCipherRejectsWrongKeySize(t *testing.T) {
	if _, err := newMessageCipher([]byte("too short")); err == nil {
		t.Fatal("expected error for undersized key")
	}
}
