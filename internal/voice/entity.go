// AngelaMos | 2026
// entity.go

package voice

import "time"

const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// Session is one voice ordering conversation between a diner and a store.
type Session struct {
	ID        string     `db:"id"`
	StoreID   string     `db:"store_id"`
	UserID    string     `db:"user_id"`
	Channel   string     `db:"channel"`
	Status    string     `db:"status"`
	StartedAt time.Time  `db:"started_at"`
	EndedAt   *time.Time `db:"ended_at"`
}

func (s *Session) IsActive() bool {
	return s.Status == StatusActive
}
