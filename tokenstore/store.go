package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cafeplatform/authcore/internal"
)

var (
	// ErrTokenNotFound is returned when no record exists for the digest.
	ErrTokenNotFound = errors.New("refresh token not found")
	// ErrTokenRevoked is returned when an already-rotated or revoked token is
	// presented. By the time Rotate returns it, the whole family has been
	// revoked inside the same script execution.
	ErrTokenRevoked = errors.New("refresh token revoked")
	// ErrTokenExpired is returned when the record exists, is not revoked,
	// and is past its logical expiry.
	ErrTokenExpired = errors.New("refresh token expired")
	// ErrRedisUnavailable wraps Redis transport failures. Rotation callers
	// must surface it as retriable, never as a grant.
	ErrRedisUnavailable = errors.New("token store unavailable")
)

const (
	rotateStatusUnknown = "unknown"
	rotateStatusRevoked = "revoked"
	rotateStatusExpired = "expired"
	rotateStatusRotated = "rotated"
)

// createLua inserts a record and its family-set membership in one step so a
// family is never observable without its root.
// KEYS[1] = record key, KEYS[2] = family key
// ARGV = subject, role, family, issued_at, expires_at, ttl_ms
var createLua = redis.NewScript(`
redis.call('HSET', KEYS[1],
  'subject_id', ARGV[1],
  'role', ARGV[2],
  'family_id', ARGV[3],
  'issued_at', ARGV[4],
  'expires_at', ARGV[5],
  'revoked', '0',
  'replaced_by', '')
redis.call('PEXPIRE', KEYS[1], tonumber(ARGV[6]))
redis.call('SADD', KEYS[2], ARGV[7])
redis.call('PEXPIRE', KEYS[2], tonumber(ARGV[6]))
return 1
`)

// rotateLua is the single-use compare-and-set at the heart of refresh
// rotation. Exactly one of two concurrent calls for the same token can see
// revoked == '0' and win; the loser observes 'revoked'.
//
// On replay the script also revokes every live member of the family before
// returning, so the theft side effect cannot be skipped by callers and no
// half-revoked family is ever observable.
//
// KEYS[1] = presented record key, KEYS[2] = successor record key
// ARGV = now_unix, successor_digest, issued_at, expires_at, ttl_ms,
//
//	family_prefix, record_prefix
var rotateLua = redis.NewScript(`
local revoked = redis.call('HGET', KEYS[1], 'revoked')
if not revoked then
  return {'unknown'}
end
local family = redis.call('HGET', KEYS[1], 'family_id')
local family_key = ARGV[6] .. family

if revoked == '1' then
  local members = redis.call('SMEMBERS', family_key)
  for _, d in ipairs(members) do
    local k = ARGV[7] .. d
    if redis.call('EXISTS', k) == 1 then
      redis.call('HSET', k, 'revoked', '1')
    end
  end
  return {'revoked', family}
end

local expires = tonumber(redis.call('HGET', KEYS[1], 'expires_at'))
if expires <= tonumber(ARGV[1]) then
  return {'expired', family}
end

local subject = redis.call('HGET', KEYS[1], 'subject_id')
local role = redis.call('HGET', KEYS[1], 'role')

redis.call('HSET', KEYS[1], 'revoked', '1', 'replaced_by', ARGV[2])
redis.call('HSET', KEYS[2],
  'subject_id', subject,
  'role', role,
  'family_id', family,
  'issued_at', ARGV[3],
  'expires_at', ARGV[4],
  'revoked', '0',
  'replaced_by', '')
redis.call('PEXPIRE', KEYS[2], tonumber(ARGV[5]))
redis.call('SADD', family_key, ARGV[2])
redis.call('PEXPIRE', family_key, tonumber(ARGV[5]))

return {'rotated', family, subject, role}
`)

// revokeByTokenLua revokes the presented record's entire family in one
// script execution. Used by Logout.
// KEYS[1] = presented record key
// ARGV = family_prefix, record_prefix
var revokeByTokenLua = redis.NewScript(`
local family = redis.call('HGET', KEYS[1], 'family_id')
if not family then
  return {'unknown'}
end
local members = redis.call('SMEMBERS', ARGV[1] .. family)
local n = 0
for _, d in ipairs(members) do
  local k = ARGV[2] .. d
  if redis.call('EXISTS', k) == 1 and redis.call('HGET', k, 'revoked') ~= '1' then
    redis.call('HSET', k, 'revoked', '1')
    n = n + 1
  end
end
return {'ok', family, n}
`)

// revokeFamilyLua revokes every live member of a family by id.
// KEYS[1] = family key, ARGV[1] = record_prefix
var revokeFamilyLua = redis.NewScript(`
local members = redis.call('SMEMBERS', KEYS[1])
local n = 0
for _, d in ipairs(members) do
  local k = ARGV[1] .. d
  if redis.call('EXISTS', k) == 1 and redis.call('HGET', k, 'revoked') ~= '1' then
    redis.call('HSET', k, 'revoked', '1')
    n = n + 1
  end
end
return n
`)

// Store is the Redis-backed refresh-token record store. All mutations run
// as Lua scripts, which makes rotation linearizable per record: the
// check-then-mark-then-insert sequence cannot interleave.
type Store struct {
	redis          redis.UniversalClient
	prefix         string
	refreshTTL     time.Duration
	retentionGrace time.Duration
}

// NewStore creates a token [Store]. prefix namespaces all keys ("rt" by
// default); retentionGrace extends record TTLs past logical expiry so
// revoked records remain visible for replay detection and audit.
func NewStore(redisClient redis.UniversalClient, prefix string, refreshTTL, retentionGrace time.Duration) *Store {
	if prefix == "" {
		prefix = "rt"
	}
	return &Store{
		redis:          redisClient,
		prefix:         prefix,
		refreshTTL:     refreshTTL,
		retentionGrace: retentionGrace,
	}
}

func (s *Store) recordPrefix() string { return s.prefix + ":t:" }
func (s *Store) familyPrefix() string { return s.prefix + ":f:" }

func (s *Store) recordKey(digest string) string { return s.recordPrefix() + digest }
func (s *Store) familyKey(familyID string) string { return s.familyPrefix() + familyID }

func (s *Store) retentionMillis() int64 {
	return (s.refreshTTL + s.retentionGrace).Milliseconds()
}

// Create roots a new family (or, during tests, an arbitrary record) for the
// given token string.
func (s *Store) Create(ctx context.Context, token, subjectID, role, familyID string, now time.Time) (*Record, error) {
	digest := internal.DigestString(internal.TokenDigest(token))
	issuedAt := now.Unix()
	expiresAt := now.Add(s.refreshTTL).Unix()

	err := createLua.Run(ctx, s.redis,
		[]string{s.recordKey(digest), s.familyKey(familyID)},
		subjectID,
		role,
		familyID,
		issuedAt,
		expiresAt,
		s.retentionMillis(),
		digest,
	).Err()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return &Record{
		Digest:    digest,
		SubjectID: subjectID,
		Role:      role,
		FamilyID:  familyID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Rotate marks the presented token revoked and inserts its successor in one
// atomic script. Outcomes:
//
//   - nil error: exactly this caller won the rotation.
//   - ErrTokenRevoked: replay; the whole family is already revoked.
//   - ErrTokenExpired: record intact, no successor minted.
//   - ErrTokenNotFound: no record for the digest.
func (s *Store) Rotate(ctx context.Context, presentedToken, successorToken string, now time.Time) (*Rotation, error) {
	presented := internal.DigestString(internal.TokenDigest(presentedToken))
	successor := internal.DigestString(internal.TokenDigest(successorToken))

	res, err := rotateLua.Run(ctx, s.redis,
		[]string{s.recordKey(presented), s.recordKey(successor)},
		now.Unix(),
		successor,
		now.Unix(),
		now.Add(s.refreshTTL).Unix(),
		s.retentionMillis(),
		s.familyPrefix(),
		s.recordPrefix(),
	).Slice()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(res) == 0 {
		return nil, fmt.Errorf("%w: empty rotate result", ErrRedisUnavailable)
	}

	status, _ := res[0].(string)
	switch status {
	case rotateStatusUnknown:
		return nil, ErrTokenNotFound
	case rotateStatusRevoked:
		return nil, ErrTokenRevoked
	case rotateStatusExpired:
		return nil, ErrTokenExpired
	case rotateStatusRotated:
		if len(res) != 4 {
			return nil, fmt.Errorf("%w: malformed rotate result", ErrRedisUnavailable)
		}
		family, _ := res[1].(string)
		subject, _ := res[2].(string)
		role, _ := res[3].(string)
		return &Rotation{SubjectID: subject, Role: role, FamilyID: family}, nil
	default:
		return nil, fmt.Errorf("%w: unexpected rotate status %q", ErrRedisUnavailable, status)
	}
}

// RevokeByToken revokes the presented token's entire family. Returns the
// family id and how many records flipped from live to revoked.
func (s *Store) RevokeByToken(ctx context.Context, token string) (string, int, error) {
	digest := internal.DigestString(internal.TokenDigest(token))

	res, err := revokeByTokenLua.Run(ctx, s.redis,
		[]string{s.recordKey(digest)},
		s.familyPrefix(),
		s.recordPrefix(),
	).Slice()
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(res) == 0 {
		return "", 0, fmt.Errorf("%w: empty revoke result", ErrRedisUnavailable)
	}

	status, _ := res[0].(string)
	if status == rotateStatusUnknown {
		return "", 0, ErrTokenNotFound
	}
	if len(res) != 3 {
		return "", 0, fmt.Errorf("%w: malformed revoke result", ErrRedisUnavailable)
	}
	family, _ := res[1].(string)
	n, _ := res[2].(int64)
	return family, int(n), nil
}

// RevokeFamily revokes every live record sharing the family id.
func (s *Store) RevokeFamily(ctx context.Context, familyID string) (int, error) {
	n, err := revokeFamilyLua.Run(ctx, s.redis,
		[]string{s.familyKey(familyID)},
		s.recordPrefix(),
	).Int()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n, nil
}

// Get loads a record by token string, for introspection and tests.
func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	digest := internal.DigestString(internal.TokenDigest(token))

	fields, err := s.redis.HGetAll(ctx, s.recordKey(digest)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if len(fields) == 0 {
		return nil, ErrTokenNotFound
	}

	issuedAt, _ := strconv.ParseInt(fields["issued_at"], 10, 64)
	expiresAt, _ := strconv.ParseInt(fields["expires_at"], 10, 64)

	return &Record{
		Digest:     digest,
		SubjectID:  fields["subject_id"],
		Role:       fields["role"],
		FamilyID:   fields["family_id"],
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
		Revoked:    fields["revoked"] == "1",
		ReplacedBy: fields["replaced_by"],
	}, nil
}
