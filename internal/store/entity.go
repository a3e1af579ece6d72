// AngelaMos | 2026
// entity.go

package store

import "time"

// Store is a restaurant account on the web portal.
type Store struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Name         string    `db:"name"`
	Phone        *string   `db:"phone"`
	IsActive     bool      `db:"is_active"`
	CreatedAt    time.Time `db:"created_at"`
}
