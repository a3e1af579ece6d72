// AngelaMos | 2026
// ledger_test.go

package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

func testLedger(store Store) *Ledger {
	return NewLedger(store, config.AuthConfig{
		RefreshTokenTTL: 14 * 24 * time.Hour,
		RefreshPepper:   "test-pepper",
	})
}

func wantCode(t *testing.T, err error, code string) {
	t.Helper()

	appErr, ok := core.AsAppError(err)
	if !ok {
		t.Fatalf("err = %v, want AppError with code %q", err, code)
	}
	if appErr.Code != code {
		t.Fatalf("code = %q, want %q", appErr.Code, code)
	}
}

func TestLedgerOpenAndRotate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)
	principalID := uuid.New()

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: principalID,
		Audience:    AudienceMobile,
		Metadata:    SessionMetadata{DeviceLabel: "iphone-15"},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Secret == "" {
		t.Fatal("Open returned empty secret")
	}
	if store.activeTokenCount(opened.Session.ID) != 1 {
		t.Fatal("expected exactly one active token after open")
	}

	rotated, err := ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
	)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if rotated.Secret == opened.Secret {
		t.Fatal("rotation must mint a fresh secret")
	}
	if rotated.Session.ID != opened.Session.ID {
		t.Fatal("rotation must stay on the same session")
	}
	if store.activeTokenCount(opened.Session.ID) != 1 {
		t.Fatal("expected exactly one active token after rotation")
	}
	if store.tokenCount(opened.Session.ID) != 2 {
		t.Fatal("rotation should keep the superseded token in history")
	}
}

// The storage layer rejects a second active token per session (the fake
// enforces the same partial unique index as the schema), so each rotation
// must retire the old token before inserting its replacement.
func TestLedgerRotateChainUnderSingleActiveConstraint(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	secret := opened.Secret
	for i := range 5 {
		rotated, err := ledger.Rotate(
			ctx, opened.Session.ID, secret, KindUser, AudienceMobile,
		)
		if err != nil {
			t.Fatalf("rotate %d: %v", i, err)
		}
		if store.activeTokenCount(opened.Session.ID) != 1 {
			t.Fatalf("rotate %d: want exactly one active token", i)
		}
		secret = rotated.Secret
	}

	if store.tokenCount(opened.Session.ID) != 6 {
		t.Fatalf(
			"token history = %d, want 6",
			store.tokenCount(opened.Session.ID),
		)
	}
}

func TestLedgerRotateDoesNotExtendExpiry(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	fixed := time.Now().Add(time.Hour).Truncate(time.Second)
	store.backdateSession(opened.Session.ID, fixed)

	if _, err := ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
	); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	if !store.session(opened.Session.ID).ExpiresAt.Equal(fixed) {
		t.Fatal("rotation must not move the session expiry")
	}
}

func TestLedgerRotateOldSecretRevokesSession(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	rotated, err := ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
	)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	// Replaying the superseded secret is the compromise signal.
	_, err = ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
	)
	wantCode(t, err, core.CodeRefreshReuse)

	if !store.session(opened.Session.ID).IsRevoked() {
		t.Fatal("reuse must revoke the whole session")
	}
	if store.activeTokenCount(opened.Session.ID) != 0 {
		t.Fatal("reuse must revoke every token in the chain")
	}

	// The legitimate holder of the newest secret is locked out too.
	_, err = ledger.Rotate(
		ctx, opened.Session.ID, rotated.Secret, KindUser, AudienceMobile,
	)
	wantCode(t, err, core.CodeInvalidRefresh)
}

// The full lifecycle: login, two refreshes, theft of an old secret, reuse,
// lockout of everyone on the chain.
func TestLedgerReuseScenario(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindStore,
		PrincipalID: uuid.New(),
		Audience:    AudienceWeb,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stolen := opened.Secret

	first, err := ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindStore, AudienceWeb,
	)
	if err != nil {
		t.Fatalf("first rotate: %v", err)
	}

	second, err := ledger.Rotate(
		ctx, opened.Session.ID, first.Secret, KindStore, AudienceWeb,
	)
	if err != nil {
		t.Fatalf("second rotate: %v", err)
	}

	_, err = ledger.Rotate(
		ctx, opened.Session.ID, stolen, KindStore, AudienceWeb,
	)
	wantCode(t, err, core.CodeRefreshReuse)

	_, err = ledger.Rotate(
		ctx, opened.Session.ID, second.Secret, KindStore, AudienceWeb,
	)
	wantCode(t, err, core.CodeInvalidRefresh)
}

func TestLedgerRotateUnknownSession(t *testing.T) {
	ctx := context.Background()
	ledger := testLedger(newMemStore())

	_, err := ledger.Rotate(
		ctx, uuid.New().String(), "whatever", KindUser, AudienceMobile,
	)
	wantCode(t, err, core.CodeInvalidRefresh)
}

func TestLedgerRotateGarbageSecret(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = ledger.Rotate(
		ctx, opened.Session.ID, "never-a-valid-secret", KindUser, AudienceMobile,
	)
	wantCode(t, err, core.CodeInvalidRefresh)

	// A secret that was never on the chain is not a reuse signal.
	if store.session(opened.Session.ID).IsRevoked() {
		t.Fatal("garbage secret must not revoke the session")
	}
}

func TestLedgerRotatePortalMismatch(t *testing.T) {
	ctx := context.Background()
	ledger := testLedger(newMemStore())

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// A user session presented on the store portal reads as nonexistent.
	_, err = ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindStore, AudienceWeb,
	)
	wantCode(t, err, core.CodeInvalidRefresh)
}

func TestLedgerRotateExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	store.expireSession(opened.Session.ID)

	_, err = ledger.Rotate(
		ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
	)
	wantCode(t, err, core.CodeRefreshExpired)
}

func TestLedgerConcurrentRotateSingleWinner(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	const racers = 8
	results := make([]error, racers)

	var wg sync.WaitGroup
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = ledger.Rotate(
				ctx, opened.Session.ID, opened.Secret, KindUser, AudienceMobile,
			)
		}()
	}
	wg.Wait()

	wins := 0
	for _, res := range results {
		if res == nil {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}

	// The losers arrived after the winner superseded the secret, which is
	// indistinguishable from replay: the session is gone.
	if !store.session(opened.Session.ID).IsRevoked() {
		t.Fatal("losing racers should have triggered reuse revocation")
	}
}

func TestLedgerRevokeSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)
	principalID := uuid.New()

	opened, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: principalID,
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	for range 2 {
		if err := ledger.RevokeSession(
			ctx, opened.Session.ID, KindUser, principalID,
		); err != nil {
			t.Fatalf("RevokeSession: %v", err)
		}
	}

	if !store.session(opened.Session.ID).IsRevoked() {
		t.Fatal("session should be revoked")
	}

	// Unknown and foreign sessions are quiet no-ops as well.
	if err := ledger.RevokeSession(
		ctx, uuid.New().String(), KindUser, principalID,
	); err != nil {
		t.Fatalf("RevokeSession unknown: %v", err)
	}

	other, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := ledger.RevokeSession(
		ctx, other.Session.ID, KindUser, principalID,
	); err != nil {
		t.Fatalf("RevokeSession foreign: %v", err)
	}
	if store.session(other.Session.ID).IsRevoked() {
		t.Fatal("foreign session must not be revoked")
	}
}

func TestLedgerRevokeAllForPrincipal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)
	principalID := uuid.New()

	for range 3 {
		if _, err := ledger.Open(ctx, OpenParams{
			Kind:        KindUser,
			PrincipalID: principalID,
			Audience:    AudienceMobile,
		}); err != nil {
			t.Fatalf("Open: %v", err)
		}
	}

	other, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	revoked, err := ledger.RevokeAllForPrincipal(ctx, KindUser, principalID, nil)
	if err != nil {
		t.Fatalf("RevokeAllForPrincipal: %v", err)
	}
	if revoked != 3 {
		t.Fatalf("revoked = %d, want 3", revoked)
	}
	if store.session(other.Session.ID).IsRevoked() {
		t.Fatal("other principal's session must survive")
	}
}

func TestLedgerRevokeAllAudienceFilter(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)
	principalID := uuid.New()

	mobile, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: principalID,
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	web, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: principalID,
		Audience:    AudienceWeb,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	audience := AudienceMobile
	revoked, err := ledger.RevokeAllForPrincipal(
		ctx, KindUser, principalID, &audience,
	)
	if err != nil {
		t.Fatalf("RevokeAllForPrincipal: %v", err)
	}
	if revoked != 1 {
		t.Fatalf("revoked = %d, want 1", revoked)
	}
	if !store.session(mobile.Session.ID).IsRevoked() {
		t.Fatal("mobile session should be revoked")
	}
	if store.session(web.Session.ID).IsRevoked() {
		t.Fatal("web session should survive the audience filter")
	}
}

func TestLedgerOpenRevokePrior(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)
	principalID := uuid.New()

	first, err := ledger.Open(ctx, OpenParams{
		Kind:        KindStore,
		PrincipalID: principalID,
		Audience:    AudienceWeb,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	second, err := ledger.Open(ctx, OpenParams{
		Kind:        KindStore,
		PrincipalID: principalID,
		Audience:    AudienceWeb,
		RevokePrior: true,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if !store.session(first.Session.ID).IsRevoked() {
		t.Fatal("prior session must be revoked on single-session open")
	}
	if store.session(second.Session.ID).IsRevoked() {
		t.Fatal("new session must be live")
	}

	// The first session's secret is now dead.
	_, err = ledger.Rotate(
		ctx, first.Session.ID, first.Secret, KindStore, AudienceWeb,
	)
	wantCode(t, err, core.CodeInvalidRefresh)
}

func TestLedgerDeleteExpired(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := testLedger(store)

	old, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	live, err := ledger.Open(ctx, OpenParams{
		Kind:        KindUser,
		PrincipalID: uuid.New(),
		Audience:    AudienceMobile,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Past expiry and past the retention window.
	store.backdateSession(old.Session.ID, time.Now().Add(-48*time.Hour))

	deleted, err := ledger.DeleteExpired(ctx)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	if store.session(old.Session.ID) != nil {
		t.Fatal("expired session should be gone")
	}
	if store.session(live.Session.ID) == nil {
		t.Fatal("live session must survive cleanup")
	}
	if store.tokenCount(old.Session.ID) != 0 {
		t.Fatal("tokens must go with their session")
	}
}
