package sigv4

import (
	"encoding/hex"
	"testing"
	"time"
)

func TestDeriveKey(t *testing.T) {
	deriver := NewSigningKeyDeriver(NewSigningKeyCache())

	accessKeyID := "AKID"
	secretAccessKey := "SECRET"
	service := "s3"
	region := "us-east-1"
	signingTime := NewSigningTime(time.Unix(0, 0))

	key1 := deriver.DeriveKey(
		accessKeyID,
		secretAccessKey,
		service,
		region,
		signingTime,
	)

	if len(key1) != 32 {
		t.Errorf("expected key length 32, got %d", len(key1))
	}

	// Test caching - same inputs should return same key
	key2 := deriver.DeriveKey(
		accessKeyID,
		secretAccessKey,
		service,
		region,
		signingTime,
	)

	if hex.EncodeToString(key1) != hex.EncodeToString(key2) {
		t.Error("cached key should match original key")
	}

	// Test different region produces different key
	key3 := deriver.DeriveKey(
		accessKeyID,
		secretAccessKey,
		service,
		"us-west-2",
		signingTime,
	)

	if hex.EncodeToString(key1) == hex.EncodeToString(key3) {
		t.Error("different region should produce different key")
	}

	// Test different service produces different key
	key4 := deriver.DeriveKey(
		accessKeyID,
		secretAccessKey,
		"dynamodb",
		region,
		signingTime,
	)

	if hex.EncodeToString(key1) == hex.EncodeToString(key4) {
		t.Error("different service should produce different key")
	}

	// Test different date produces different key
	key5 := deriver.DeriveKey(
		accessKeyID,
		secretAccessKey,
		service,
		region,
		NewSigningTime(time.Unix(86400, 0)), // Next day
	)

	if hex.EncodeToString(key1) == hex.EncodeToString(key5) {
		t.Error("different date should produce different key")
	}

	// Test different access key ID uses same derived key
	// (key derivation doesn't depend on access key ID, only secret)
	key6 := deriver.DeriveKey(
		"OTHER_KEY",
		secretAccessKey,
		service,
		region,
		signingTime,
	)

	if hex.EncodeToString(key1) != hex.EncodeToString(key6) {
		t.Error("same secret should produce same key regardless of access key ID")
	}
}

func TestDeriveKeyKnownValue(t *testing.T) {
	deriver := NewSigningKeyDeriver(NewSigningKeyCache())

	secret := "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"
	service := "iam"
	region := "us-east-1"
	date := "20150830"

	signingTime := NewSigningTime(
		time.Date(2015, 8, 30, 0, 0, 0, 0, time.UTC),
	)

	key := deriver.DeriveKey(
		"AKID",
		secret,
		service,
		region,
		signingTime,
	)

	if len(key) == 0 {
		t.Error("derived key should not be empty")
	}
	if len(key) != 32 {
		t.Errorf("expected key length 32, got %d", len(key))
	}
	if signingTime.ShortTimeFormat() != date {
		t.Errorf("expected date %s, got %s", date, signingTime.ShortTimeFormat())
	}

	// Signing key AWS documents for this secret/date/region/service.
	const wantKey = "c4afb1cc5771d871763a393e44b703571b55cc28424d1a5e86da6ed3c154a4b9"
	if got := hex.EncodeToString(key); got != wantKey {
		t.Errorf("expected key %s, got %s", wantKey, got)
	}
}

func TestKeyDerivatorCache(t *testing.T) {
	deriver := NewSigningKeyDeriver(NewSigningKeyCache())

	accessKeyID := "AKID"
	secretAccessKey := "SECRET"
	service := "s3"
	region := "us-east-1"
	t1 := time.Date(2023, 1, 1, 12, 0, 0, 0, time.UTC)
	t2 := time.Date(2023, 1, 1, 18, 0, 0, 0, time.UTC) // Same day
	t3 := time.Date(2023, 1, 2, 12, 0, 0, 0, time.UTC) // Next day

	st1 := NewSigningTime(t1)
	st2 := NewSigningTime(t2)
	st3 := NewSigningTime(t3)

	key1 := deriver.DeriveKey(accessKeyID, secretAccessKey, service, region, st1)
	key2 := deriver.DeriveKey(accessKeyID, secretAccessKey, service, region, st2)
	key3 := deriver.DeriveKey(accessKeyID, secretAccessKey, service, region, st3)

	if hex.EncodeToString(key1) != hex.EncodeToString(key2) {
		t.Error("same day should use cached key")
	}
	if hex.EncodeToString(key1) == hex.EncodeToString(key3) {
		t.Error("different day should produce different key")
	}
}

func TestSigningKeyCacheEvictsLeastRecentlyUsed(t *testing.T) {
	cache := NewSigningKeyCache()
	now := time.Unix(0, 0)

	// Fill the cache to capacity with distinct regions.
	for i := 0; i < signingKeyCacheCap; i++ {
		region := "region-" + string(rune('a'+i))
		cache.set("secret", "s3", region, now, DeriveKey("secret", "s3", region, NewSigningTime(now)))
	}

	// One more insert should evict "region-a", the least recently used.
	cache.set("secret", "s3", "region-z", now, []byte("zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"))

	if _, ok := cache.get("secret", "s3", "region-a", now); ok {
		t.Error("least recently used entry should have been evicted")
	}
	if _, ok := cache.get("secret", "s3", "region-z", now); !ok {
		t.Error("most recently inserted entry should still be present")
	}
}

func TestSigningKeyCacheZeroesEvictedKey(t *testing.T) {
	cache := NewSigningKeyCache()
	now := time.Unix(0, 0)

	evicted := make([]byte, 32)
	for i := range evicted {
		evicted[i] = 0xAB
	}
	cache.set("secret", "s3", "region-evict", now, evicted)

	for i := 0; i < signingKeyCacheCap; i++ {
		region := "region-filler-" + string(rune('a'+i))
		cache.set("secret", "s3", region, now, make([]byte, 32))
	}

	for _, b := range evicted {
		if b != 0 {
			t.Fatal("evicted key bytes should have been zeroed")
		}
	}
}

func TestSigningKeyCacheRetainsOldDateAlongsideNew(t *testing.T) {
	cache := NewSigningKeyCache()
	yesterday := time.Date(2023, 1, 1, 23, 0, 0, 0, time.UTC)
	today := time.Date(2023, 1, 2, 1, 0, 0, 0, time.UTC)

	oldKey := DeriveKey("secret", "s3", "us-east-1", NewSigningTime(yesterday))
	newKey := DeriveKey("secret", "s3", "us-east-1", NewSigningTime(today))

	cache.set("secret", "s3", "us-east-1", yesterday, oldKey)
	cache.set("secret", "s3", "us-east-1", today, newKey)

	got, ok := cache.get("secret", "s3", "us-east-1", yesterday)
	if !ok {
		t.Fatal("yesterday's entry should still be cached alongside today's, to handle clock-straddle requests")
	}
	if hex.EncodeToString(got) != hex.EncodeToString(oldKey) {
		t.Error("yesterday's cached key should be unchanged by caching today's key")
	}

	if _, ok := cache.get("secret", "s3", "us-east-1", today); !ok {
		t.Fatal("today's entry should be cached")
	}
}

func TestSigningKeyCacheBoundedSize(t *testing.T) {
	cache := NewSigningKeyCache()
	now := time.Unix(0, 0)

	for i := 0; i < signingKeyCacheCap*2; i++ {
		region := "region-" + string(rune('a'+i))
		cache.set("secret", "s3", region, now, make([]byte, 32))
	}

	if cache.ll.Len() > signingKeyCacheCap {
		t.Errorf("cache should never exceed %d entries, has %d", signingKeyCacheCap, cache.ll.Len())
	}
}
