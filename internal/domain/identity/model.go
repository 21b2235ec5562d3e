package identity

import "time"

// User is a forum participant identified by nickname. Never renamed.
type User struct {
	ID        int64
	Nickname  string
	CreatedAt time.Time
}

// Board is a forum section identified by slug.
type Board struct {
	ID        int64
	Slug      string
	Name      string
	CreatedAt time.Time
}
