package store

import (
	"context"
	"testing"

	"go.uber.org/mock/gomock"
)

func TestGetFriendlyNameServesFromCacheOnHit(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := NewMockCache(ctrl)
	cache.EXPECT().Get(gomock.Any(), friendlyNameCacheKey("+15551234567")).Return("Alice", nil)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Connect(Config{DSN: dsn, EncryptionKey: testKeyForMocks(), Cache: cache})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	name, err := s.GetFriendlyName(context.Background(), "+15551234567")
	if err != nil {
		t.Fatalf("GetFriendlyName: %v", err)
	}
	if name != "Alice" {
		t.Errorf("expected Alice from cache, got %q", name)
	}
}

func TestGetFriendlyNamePopulatesCacheOnMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := NewMockCache(ctrl)
	key := friendlyNameCacheKey("+15559876543")
	cache.EXPECT().Delete(gomock.Any(), key).Return(nil)
	cache.EXPECT().Get(gomock.Any(), key).Return("", ErrNotFound)
	cache.EXPECT().Set(gomock.Any(), key, "Bob", gomock.Any()).Return(nil)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Connect(Config{DSN: dsn, EncryptionKey: testKeyForMocks(), Cache: cache})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	name := "Bob"
	if err := s.SetFriendlyName(context.Background(), "+15559876543", &name); err != nil {
		t.Fatalf("SetFriendlyName: %v", err)
	}

	got, err := s.GetFriendlyName(context.Background(), "+15559876543")
	if err != nil {
		t.Fatalf("GetFriendlyName: %v", err)
	}
	if got != "Bob" {
		t.Errorf("expected Bob, got %q", got)
	}
}

func testKeyForMocks() []byte {
	return []byte("0123456789abcdef0123456789abcdef")[:32]
}

func TestDeletePropagatesFromSetFriendlyNameClear(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := NewMockCache(ctrl)
	key := friendlyNameCacheKey("+15550001111")
	cache.EXPECT().Delete(gomock.Any(), key).Return(nil)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	s, err := Connect(Config{DSN: dsn, EncryptionKey: testKeyForMocks(), Cache: cache})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.SetFriendlyName(context.Background(), "+15550001111", nil); err != nil {
		t.Fatalf("SetFriendlyName: %v", err)
	}
}
