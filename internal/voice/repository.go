// AngelaMos | 2026
// repository.go

package voice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type Repository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	End(ctx context.Context, id string, endedAt time.Time) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	query := `
		INSERT INTO voice_sessions (id, store_id, user_id, channel, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING started_at`

	err := r.db.GetContext(ctx, session, query,
		session.ID,
		session.StoreID,
		session.UserID,
		session.Channel,
		session.Status,
	)
	if err != nil {
		return fmt.Errorf("create voice session: %w", err)
	}

	return nil
}

func (r *repository) GetByID(
	ctx context.Context,
	id string,
) (*Session, error) {
	query := `
		SELECT id, store_id, user_id, channel, status, started_at, ended_at
		FROM voice_sessions
		WHERE id = $1`

	var session Session
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get voice session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get voice session: %w", err)
	}

	return &session, nil
}

func (r *repository) End(
	ctx context.Context,
	id string,
	endedAt time.Time,
) error {
	query := `
		UPDATE voice_sessions
		SET status = $2, ended_at = $3
		WHERE id = $1 AND status = $4`

	result, err := r.db.ExecContext(
		ctx, query, id, StatusEnded, endedAt, StatusActive,
	)
	if err != nil {
		return fmt.Errorf("end voice session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("end voice session: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("end voice session: %w", core.ErrNotFound)
	}

	return nil
}
