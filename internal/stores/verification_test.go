package stores

import (
	"context"
	"crypto/sha256"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCodeStore(t *testing.T) (*CodeStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewCodeStore(client, ""), mr
}

func hashOf(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}

func TestSaveAndConsume(t *testing.T) {
	store, _ := newTestCodeStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "subj-1", "t", hashOf("123456"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Consume(ctx, "subj-1", "t", hashOf("123456")); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}

	// Consumed means gone.
	if err := store.Consume(ctx, "subj-1", "t", hashOf("123456")); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after consume, got %v", err)
	}
}

func TestConsumeMismatchKeepsCode(t *testing.T) {
	store, _ := newTestCodeStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "subj-1", "t", hashOf("123456"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Consume(ctx, "subj-1", "t", hashOf("000000")); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	// A wrong guess does not burn the pending code.
	if err := store.Consume(ctx, "subj-1", "t", hashOf("123456")); err != nil {
		t.Fatalf("correct code must still consume: %v", err)
	}
}

func TestConsumeMissing(t *testing.T) {
	store, _ := newTestCodeStore(t)

	err := store.Consume(context.Background(), "subj-1", "t", hashOf("123456"))
	if !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound, got %v", err)
	}
}

func TestCodeExpires(t *testing.T) {
	store, mr := newTestCodeStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "subj-1", "t", hashOf("123456"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	mr.FastForward(time.Minute)

	if err := store.Consume(ctx, "subj-1", "t", hashOf("123456")); !errors.Is(err, ErrCodeNotFound) {
		t.Fatalf("expected ErrCodeNotFound after TTL, got %v", err)
	}
}

func TestSaveOverwritesPendingCode(t *testing.T) {
	store, _ := newTestCodeStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "subj-1", "t", hashOf("111111"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "subj-1", "t", hashOf("222222"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Consume(ctx, "subj-1", "t", hashOf("111111")); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected stale code to mismatch, got %v", err)
	}
	if err := store.Consume(ctx, "subj-1", "t", hashOf("222222")); err != nil {
		t.Fatalf("newest code must consume: %v", err)
	}
}

func TestPairsAreIsolated(t *testing.T) {
	store, _ := newTestCodeStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "subj-1", "a", hashOf("111111"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "subj-1", "b", hashOf("222222"), time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := store.Consume(ctx, "subj-1", "a", hashOf("111111")); err != nil {
		t.Fatalf("Consume failed: %v", err)
	}
	if err := store.Consume(ctx, "subj-1", "b", hashOf("222222")); err != nil {
		t.Fatalf("other pair must be untouched: %v", err)
	}
}
