package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/infra/database/models"
)

type TagRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewTagRepository keeps positive name lookups in memory.
// Tags are never renamed or deleted, so a cached id does not go stale.
func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{
		db:    db,
		cache: cache.New(30*time.Minute, 60*time.Minute),
	}
}

// Upsert inserts the missing names and returns a row for every name.
// It runs on the caller's transaction; concurrent writers converge on one row
// per name through the unique index.
func (r *TagRepository) Upsert(tx *gorm.DB, names []string) ([]models.Tag, error) {
	if len(names) == 0 {
		return []models.Tag{}, nil
	}

	// a fixed insert order keeps concurrent transactions from locking
	// the unique index entries in opposite orders
	names = append([]string(nil), names...)
	sortNames(names)

	rows := make([]models.Tag, 0, len(names))
	for _, name := range names {
		rows = append(rows, models.Tag{Name: name})
	}

	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "insert tags")
	}

	// ids returned by a batch insert that skipped conflicts are not reliable
	var tags []models.Tag
	err = tx.Where("name IN ?", names).Find(&tags).Error
	if err != nil {
		return nil, errors.Wrap(err, "select tags")
	}
	if len(tags) != len(names) {
		return nil, errors.Errorf("expected %d tags, found %d", len(names), len(tags))
	}

	return tags, nil
}

func (r *TagRepository) FindByName(ctx context.Context, name string) (models.Tag, error) {
	if cached, found := r.cache.Get(name); found {
		return cached.(models.Tag), nil
	}

	var tag models.Tag
	err := r.db.WithContext(ctx).
		Where("name = ?", name).
		Take(&tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Tag{}, domain.NotFoundError{Resource: "tag"}
	}
	if err != nil {
		return models.Tag{}, errors.Wrap(err, "find tag")
	}

	r.remember(tag)
	return tag, nil
}

// List returns every tag with the number of notes using it, orphans included.
func (r *TagRepository) List(ctx context.Context) ([]domain.Tag, error) {
	tags := []domain.Tag{}
	err := r.db.WithContext(ctx).
		Model(&models.Tag{}).
		Select("tags.id AS id, tags.name AS name, COUNT(note_tags.id) AS note_count").
		Joins("LEFT JOIN note_tags ON note_tags.tag_id = tags.id").
		Group("tags.id, tags.name").
		Order("tags.name ASC").
		Scan(&tags).Error
	if err != nil {
		return nil, errors.Wrap(err, "list tags")
	}
	return tags, nil
}

// remember must only be called with committed rows.
func (r *TagRepository) remember(tags ...models.Tag) {
	for _, tag := range tags {
		r.cache.Set(tag.Name, tag, cache.DefaultExpiration)
	}
}
