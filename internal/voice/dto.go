// AngelaMos | 2026
// dto.go

package voice

import "time"

type StartSessionRequest struct {
	StoreID string `json:"store_id" validate:"required,uuid"`
	Channel string `json:"channel"  validate:"omitempty,oneof=app phone"`
}

type SessionResponse struct {
	ID        string     `json:"id"`
	StoreID   string     `json:"store_id"`
	UserID    string     `json:"user_id"`
	Channel   string     `json:"channel"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// OrderIntent is one inbound utterance on the socket, already transcribed
// by the client.
type OrderIntent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type IntentAck struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	Received  string    `json:"received"`
	At        time.Time `json:"at"`
}

func toSessionResponse(session *Session) SessionResponse {
	return SessionResponse{
		ID:        session.ID,
		StoreID:   session.StoreID,
		UserID:    session.UserID,
		Channel:   session.Channel,
		Status:    session.Status,
		StartedAt: session.StartedAt,
		EndedAt:   session.EndedAt,
	}
}
