package repository

import "time"

// Client represents a clients row.
type Client struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	CreatedBy string
	CreatedAt time.Time
}
