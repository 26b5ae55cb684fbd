package domain

import "time"

type NoteEventType string

const (
	NoteCreated NoteEventType = "created"
	NoteUpdated NoteEventType = "updated"
	NoteDeleted NoteEventType = "deleted"
)

// NoteEvent tells subscribers that the note list changed and should be re-queried.
type NoteEvent struct {
	Type   NoteEventType `json:"type"`
	NoteID uint          `json:"noteID"`
	Time   time.Time     `json:"time"`
}
