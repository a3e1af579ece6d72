// AngelaMos | 2026
// dto.go

package store

import "time"

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name  string  `json:"name"  validate:"required,min=1,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=32"`
}
