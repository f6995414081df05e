package store

import (
	"time"

	"github.com/vietride/server/internal/catalog"
)

// User is a registered account. Never deleted.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// PublicUser is the client-visible projection of a User.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthData is returned by registration and login. The token is the user id:
// this is a closed, single-trust-domain mock, not a real credential.
type AuthData struct {
	User  PublicUser `json:"user"`
	Token string     `json:"token"`
}

// SessionInfo describes one conversation for listing purposes. Timestamps are
// Unix milliseconds.
type SessionInfo struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
	LastActive int64  `json:"lastActive"`
}

// Booking snapshots a trip at booking time; later catalog changes never
// retroactively alter it.
type Booking struct {
	ID          string       `json:"id"`
	UserID      string       `json:"userId"`
	Trip        catalog.Trip `json:"trip"`
	BookingDate time.Time    `json:"bookingDate"`
}
