package model

import "github.com/google/uuid"

// User represents a dashboard login as stored in the `users` table. Users
// are only ever created by the seeder.
//
// Fields:
//
//	ID       – primary key (uuid).
//	Name     – display name.
//	Email    – unique login email.
//	Password – bcrypt hash; never serialized.
type User struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
}
