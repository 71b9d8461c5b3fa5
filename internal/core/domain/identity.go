package domain

import "time"

// User mirrors the persisted representation in the users table. The service
// never verifies credentials; it receives an already authenticated identity
// and only decides what that identity may do in which tenant.
type User struct {
	ID           string
	Email        string
	DisplayName  *string
	IsActive     bool
	RegisteredAt time.Time
	LastLogin    *time.Time
}
