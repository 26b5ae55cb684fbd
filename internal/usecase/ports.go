package usecase

import (
	"context"

	"github.com/totegamma/tagnote/internal/domain"
)

// NoteRepository defines storage operations for notes and their tag links.
// Update and Delete report false without error when the note does not exist.
type NoteRepository interface {
	Create(ctx context.Context, text string, tags []string) (domain.Note, error)
	Get(ctx context.Context, id uint) (domain.Note, error)
	Update(ctx context.Context, id uint, text string) (bool, error)
	Delete(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context) ([]domain.Note, error)
	SearchByTag(ctx context.Context, name string) ([]domain.Note, error)
}

// TagRepository defines lookups over tags.
type TagRepository interface {
	List(ctx context.Context) ([]domain.Tag, error)
}

// EventPublisher broadcasts note changes so that listeners can refresh.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.NoteEvent) error
}
