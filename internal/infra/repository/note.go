package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/infra/database/models"
)

type NoteRepository struct {
	db   *gorm.DB
	tags *TagRepository
}

func NewNoteRepository(db *gorm.DB, tags *TagRepository) *NoteRepository {
	return &NoteRepository{db: db, tags: tags}
}

// Create stores the note, any tag names not seen before and the links between
// them in a single transaction.
func (r *NoteRepository) Create(ctx context.Context, text string, tagNames []string) (domain.Note, error) {
	names := uniqueNames(tagNames)

	note := models.Note{Text: text}
	var tags []models.Tag

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&note).Error; err != nil {
			return errors.Wrap(err, "insert note")
		}

		var err error
		tags, err = r.tags.Upsert(tx, names)
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}

		links := make([]models.NoteTag, 0, len(tags))
		for _, tag := range tags {
			links = append(links, models.NoteTag{
				NoteID: note.ID,
				TagID:  tag.ID,
			})
		}

		if err := tx.Omit(clause.Associations).Create(&links).Error; err != nil {
			return errors.Wrap(err, "insert note tags")
		}
		return nil
	})
	if err != nil {
		return domain.Note{}, err
	}

	r.tags.remember(tags...)

	result := toDomainNote(note)
	for _, tag := range tags {
		result.Tags = append(result.Tags, tag.Name)
	}
	sortNames(result.Tags)
	return result, nil
}

func (r *NoteRepository) Get(ctx context.Context, id uint) (domain.Note, error) {
	var note models.Note
	err := r.db.WithContext(ctx).Take(&note, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Note{}, domain.NotFoundError{Resource: "note"}
	}
	if err != nil {
		return domain.Note{}, errors.Wrap(err, "get note")
	}

	notes, err := r.withTags(ctx, []models.Note{note})
	if err != nil {
		return domain.Note{}, err
	}
	return notes[0], nil
}

func (r *NoteRepository) Update(ctx context.Context, id uint, text string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Note{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"text":       text,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "update note")
	}
	return result.RowsAffected > 0, nil
}

// Delete removes the note's links first; the foreign keys do not cascade.
func (r *NoteRepository) Delete(ctx context.Context, id uint) (bool, error) {
	found := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("note_id = ?", id).Delete(&models.NoteTag{}).Error; err != nil {
			return errors.Wrap(err, "delete note tags")
		}

		result := tx.Delete(&models.Note{}, id)
		if result.Error != nil {
			return errors.Wrap(result.Error, "delete note")
		}
		found = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return found, nil
}

func (r *NoteRepository) List(ctx context.Context) ([]domain.Note, error) {
	var notes []models.Note
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, errors.Wrap(err, "list notes")
	}
	return r.withTags(ctx, notes)
}

// SearchByTag returns an empty result when no tag has exactly this name.
func (r *NoteRepository) SearchByTag(ctx context.Context, name string) ([]domain.Note, error) {
	tag, err := r.tags.FindByName(ctx, name)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.Note{}, nil
	}
	if err != nil {
		return nil, err
	}

	var notes []models.Note
	err = r.db.WithContext(ctx).
		Joins("JOIN note_tags nt ON nt.note_id = notes.id").
		Where("nt.tag_id = ?", tag.ID).
		Order("notes.id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, errors.Wrap(err, "search notes by tag")
	}
	return r.withTags(ctx, notes)
}

func (r *NoteRepository) withTags(ctx context.Context, notes []models.Note) ([]domain.Note, error) {
	result := make([]domain.Note, 0, len(notes))
	if len(notes) == 0 {
		return result, nil
	}

	ids := make([]uint, 0, len(notes))
	for _, note := range notes {
		ids = append(ids, note.ID)
	}

	type noteTagRow struct {
		NoteID uint
		Name   string
	}

	var rows []noteTagRow
	err := r.db.WithContext(ctx).
		Model(&models.NoteTag{}).
		Select("note_tags.note_id AS note_id, tags.name AS name").
		Joins("JOIN tags ON tags.id = note_tags.tag_id").
		Where("note_tags.note_id IN ?", ids).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "load note tags")
	}

	byNote := make(map[uint][]string, len(notes))
	for _, row := range rows {
		byNote[row.NoteID] = append(byNote[row.NoteID], row.Name)
	}

	for _, note := range notes {
		n := toDomainNote(note)
		if names, ok := byNote[note.ID]; ok {
			n.Tags = names
		}
		result = append(result, n)
	}
	return result, nil
}
