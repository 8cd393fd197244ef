package authcore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEngine(t, testConfig())
	ctx := context.Background()

	pair, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	next, err := env.engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh must mint a new refresh token")
	}
	if next.AccessToken == "" {
		t.Fatal("refresh must mint a new access token")
	}

	claims, err := env.engine.ValidateAccess(next.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if claims.Subject != "subj-1" || claims.Role != "client" {
		t.Fatalf("identity not carried over: subject=%q role=%q", claims.Subject, claims.Role)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	env := newTestEngine(t, testConfig())

	_, err := env.engine.Refresh(context.Background(), "no-such-token")
	if !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestRefreshReplayRevokesFamily(t *testing.T) {
	env := newTestEngine(t, testConfig())
	ctx := context.Background()

	pair, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	second, err := env.engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("first Refresh failed: %v", err)
	}
	third, err := env.engine.Refresh(ctx, second.RefreshToken)
	if err != nil {
		t.Fatalf("second Refresh failed: %v", err)
	}

	// Presenting the first token again is theft.
	if _, err := env.engine.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrReplayDetected) {
		t.Fatalf("expected ErrReplayDetected, got %v", err)
	}

	// The cascade took the live head down with it.
	if _, err := env.engine.Refresh(ctx, third.RefreshToken); !errors.Is(err, ErrReplayDetected) {
		t.Fatalf("expected live head to be revoked, got %v", err)
	}

	snap := env.engine.MetricsSnapshot()
	if snap.Counters[MetricReplayDetected] == 0 {
		t.Fatal("expected replay detection to be counted")
	}
	if snap.Counters[MetricFamilyRevoked] == 0 {
		t.Fatal("expected family revocation to be counted")
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	cfg := testConfig()
	env := newTestEngine(t, cfg)
	ctx := context.Background()

	// Root a record whose logical expiry is already behind us. The Redis
	// TTL still holds it, matching a token inside the retention grace.
	issuedAt := time.Now().Add(-2 * cfg.Token.RefreshTTL)
	if _, err := env.engine.tokens.Create(ctx, "stale-token", "subj-1", "client", "fam-stale", issuedAt); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := env.engine.Refresh(ctx, "stale-token"); !errors.Is(err, ErrRefreshExpired) {
		t.Fatalf("expected ErrRefreshExpired, got %v", err)
	}

	// An expired token is not a replay: the record stays intact.
	record, err := env.engine.tokens.Get(ctx, "stale-token")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if record.Revoked {
		t.Fatal("expired record must not be marked revoked")
	}
}

func TestRefreshConcurrencySingleWinner(t *testing.T) {
	env := newTestEngine(t, testConfig())
	ctx := context.Background()

	pair, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const n = 16
	var wg sync.WaitGroup
	wg.Add(n)

	results := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := env.engine.Refresh(ctx, pair.RefreshToken)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	success := 0
	replays := 0
	for err := range results {
		switch {
		case err == nil:
			success++
		case errors.Is(err, ErrReplayDetected):
			replays++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one refresh winner, got %d", success)
	}
	if replays != n-1 {
		t.Fatalf("expected %d replay losers, got %d", n-1, replays)
	}
}

func TestLogoutRevokesWholeFamily(t *testing.T) {
	env := newTestEngine(t, testConfig())
	ctx := context.Background()

	pair, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	next, err := env.engine.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if err := env.engine.Logout(ctx, next.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// Neither the head nor its revoked ancestor is usable after logout.
	if _, err := env.engine.Refresh(ctx, next.RefreshToken); !errors.Is(err, ErrReplayDetected) {
		t.Fatalf("expected revoked head after logout, got %v", err)
	}
}

func TestLogoutUnknownToken(t *testing.T) {
	env := newTestEngine(t, testConfig())

	if err := env.engine.Logout(context.Background(), "no-such-token"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestSeparateLoginsAreSeparateFamilies(t *testing.T) {
	env := newTestEngine(t, testConfig())
	ctx := context.Background()

	first, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("first Login failed: %v", err)
	}
	second, err := env.engine.Login(ctx, "alice@example.com", testPassword)
	if err != nil {
		t.Fatalf("second Login failed: %v", err)
	}

	if err := env.engine.Logout(ctx, first.RefreshToken); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	// The second session's family is untouched.
	if _, err := env.engine.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("expected second family to survive, got %v", err)
	}
}
