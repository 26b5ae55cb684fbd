package domain

import "time"

// Note is a user-authored text entry together with the names of its tags.
type Note struct {
	ID        uint      `json:"id"`
	Text      string    `json:"text"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tag is a named label. NoteCount is only filled by tag listings.
type Tag struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	NoteCount int64  `json:"noteCount"`
}
