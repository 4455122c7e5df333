package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is the account view of a users row: credentials plus display name.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
