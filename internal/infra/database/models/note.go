package models

import (
	"time"
)

type Note struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"not null"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"not null"`
}

type Tag struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name string `json:"name" gorm:"type:varchar(50);not null;uniqueIndex:uniq_tag_name"`
}

// NoteTag rows are removed by the repository before their note is deleted,
// so the foreign keys do not cascade.
type NoteTag struct {
	ID     uint `json:"id" gorm:"primaryKey;autoIncrement"`
	NoteID uint `json:"noteID" gorm:"not null;index;uniqueIndex:uniq_note_tag"`
	Note   Note `json:"-" gorm:"foreignKey:NoteID;references:ID"`
	TagID  uint `json:"tagID" gorm:"not null;index;uniqueIndex:uniq_note_tag"`
	Tag    Tag  `json:"-" gorm:"foreignKey:TagID;references:ID"`
}
