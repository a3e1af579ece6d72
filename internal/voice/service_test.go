// AngelaMos | 2026
// service_test.go

package voice

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type fakeRepo struct {
	sessions map[string]*Session
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{sessions: make(map[string]*Session)}
}

func (r *fakeRepo) Create(_ context.Context, session *Session) error {
	session.StartedAt = time.Now()
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Session, error) {
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get voice session: %w", core.ErrNotFound)
	}
	copied := *session
	return &copied, nil
}

func (r *fakeRepo) End(
	_ context.Context,
	id string,
	endedAt time.Time,
) error {
	session, ok := r.sessions[id]
	if !ok || session.Status != StatusActive {
		return fmt.Errorf("end voice session: %w", core.ErrNotFound)
	}
	session.Status = StatusEnded
	session.EndedAt = &endedAt
	return nil
}

func TestServiceStartAndEnd(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	userID := uuid.New()

	session, err := svc.Start(ctx, userID, uuid.New(), "app")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if session.Status != StatusActive {
		t.Fatalf("status = %q, want active", session.Status)
	}

	ended, err := svc.End(ctx, userID, session.ID)
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if ended.Status != StatusEnded || ended.EndedAt == nil {
		t.Fatalf("session not ended: %+v", ended)
	}

	// Ending twice is fine; the record is already terminal.
	if _, err := svc.End(ctx, userID, session.ID); err != nil {
		t.Fatalf("repeat End: %v", err)
	}
}

func TestServiceEndForeignSession(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	session, err := svc.Start(ctx, uuid.New(), uuid.New(), "app")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	_, err = svc.End(ctx, uuid.New(), session.ID)
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestServiceActiveOwned(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	userID := uuid.New()

	session, err := svc.Start(ctx, userID, uuid.New(), "app")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	if _, err := svc.ActiveOwned(ctx, userID, session.ID); err != nil {
		t.Fatalf("ActiveOwned: %v", err)
	}

	// Malformed ids read as absent, not as input errors.
	_, err = svc.ActiveOwned(ctx, userID, "not-a-uuid")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}

	if _, err := svc.End(ctx, userID, session.ID); err != nil {
		t.Fatalf("End: %v", err)
	}

	_, err = svc.ActiveOwned(ctx, userID, session.ID)
	appErr, ok := core.AsAppError(err)
	if !ok || appErr.Code != core.CodeConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}
