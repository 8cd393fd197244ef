package tokenstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})

	return NewStore(client, "rt", time.Hour, time.Hour), mr
}

func TestCreateAndGet(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	created, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", now)
	require.NoError(t, err)
	require.Equal(t, "subj-1", created.SubjectID)
	require.Equal(t, "fam-1", created.FamilyID)
	require.False(t, created.Revoked)

	loaded, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, created.Digest, loaded.Digest)
	require.Equal(t, "client", loaded.Role)
	require.Equal(t, now.Unix(), loaded.IssuedAt)
	require.Equal(t, now.Add(time.Hour).Unix(), loaded.ExpiresAt)
	require.Empty(t, loaded.ReplacedBy)
}

func TestGetUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRotateMintsSuccessor(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", now)
	require.NoError(t, err)

	rotation, err := store.Rotate(ctx, "tok-1", "tok-2", now)
	require.NoError(t, err)
	require.Equal(t, "subj-1", rotation.SubjectID)
	require.Equal(t, "client", rotation.Role)
	require.Equal(t, "fam-1", rotation.FamilyID)

	// The presented record is revoked and points at its successor.
	old, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, old.Revoked)
	require.NotEmpty(t, old.ReplacedBy)

	// The successor is live in the same family.
	successor, err := store.Get(ctx, "tok-2")
	require.NoError(t, err)
	require.False(t, successor.Revoked)
	require.Equal(t, "fam-1", successor.FamilyID)
	require.Equal(t, old.ReplacedBy, successor.Digest)
}

func TestRotateUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Rotate(context.Background(), "missing", "tok-2", time.Now())
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRotateExpiredToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	issued := time.Now().Add(-2 * time.Hour)
	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", issued)
	require.NoError(t, err)

	_, err = store.Rotate(ctx, "tok-1", "tok-2", time.Now())
	require.ErrorIs(t, err, ErrTokenExpired)

	// Expiry does not revoke; the record just can never rotate.
	record, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.False(t, record.Revoked)
}

func TestRotateReplayRevokesFamily(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", now)
	require.NoError(t, err)

	_, err = store.Rotate(ctx, "tok-1", "tok-2", now)
	require.NoError(t, err)
	_, err = store.Rotate(ctx, "tok-2", "tok-3", now)
	require.NoError(t, err)

	// tok-1 is already rotated; presenting it again revokes everything.
	_, err = store.Rotate(ctx, "tok-1", "tok-4", now)
	require.ErrorIs(t, err, ErrTokenRevoked)

	head, err := store.Get(ctx, "tok-3")
	require.NoError(t, err)
	require.True(t, head.Revoked, "live head must fall with the family")

	mid, err := store.Get(ctx, "tok-2")
	require.NoError(t, err)
	require.True(t, mid.Revoked)
}

func TestRevokeByToken(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", now)
	require.NoError(t, err)
	_, err = store.Rotate(ctx, "tok-1", "tok-2", now)
	require.NoError(t, err)

	family, n, err := store.RevokeByToken(ctx, "tok-2")
	require.NoError(t, err)
	require.Equal(t, "fam-1", family)
	require.Equal(t, 1, n, "only the live head flips")

	head, err := store.Get(ctx, "tok-2")
	require.NoError(t, err)
	require.True(t, head.Revoked)
}

func TestRevokeByUnknownToken(t *testing.T) {
	store, _ := newTestStore(t)

	_, _, err := store.RevokeByToken(context.Background(), "missing")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRevokeFamily(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", now)
	require.NoError(t, err)
	_, err = store.Rotate(ctx, "tok-1", "tok-2", now)
	require.NoError(t, err)

	n, err := store.RevokeFamily(ctx, "fam-1")
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// Idempotent: a second sweep finds nothing live.
	n, err = store.RevokeFamily(ctx, "fam-1")
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestFamiliesAreIsolated(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	_, err := store.Create(ctx, "tok-a", "subj-1", "client", "fam-a", now)
	require.NoError(t, err)
	_, err = store.Create(ctx, "tok-b", "subj-1", "client", "fam-b", now)
	require.NoError(t, err)

	_, err = store.RevokeFamily(ctx, "fam-a")
	require.NoError(t, err)

	other, err := store.Get(ctx, "tok-b")
	require.NoError(t, err)
	require.False(t, other.Revoked)
}

func TestRecordsExpireAfterRetention(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "tok-1", "subj-1", "client", "fam-1", time.Now())
	require.NoError(t, err)

	// refreshTTL + retentionGrace purges the record entirely.
	mr.FastForward(2*time.Hour + time.Minute)

	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, ErrTokenNotFound)
}

func TestRawTokenNeverStored(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	const raw = "super-secret-refresh-token"
	_, err := store.Create(ctx, raw, "subj-1", "client", "fam-1", time.Now())
	require.NoError(t, err)

	for _, key := range mr.Keys() {
		require.NotContains(t, key, raw)
	}
}
