package models

import "time"

// Note is a free-form note attached to an application.
type Note struct {
	ID            string
	ApplicationID string
	UserID        string
	Content       string
	CreatedAt     time.Time
}
