package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/infra/database/models"
)

func TestTagListCountsNotes(t *testing.T) {
	ctx := context.Background()
	_, notes, tags := newTestRepos(t)

	first, err := notes.Create(ctx, "one", []string{"b", "a"})
	require.NoError(t, err)
	_, err = notes.Create(ctx, "two", []string{"a"})
	require.NoError(t, err)
	_, err = notes.Delete(ctx, first.ID)
	require.NoError(t, err)

	list, err := tags.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.EqualValues(t, 1, list[0].NoteCount)
	assert.Equal(t, "b", list[1].Name)
	assert.EqualValues(t, 0, list[1].NoteCount)
}

func TestTagFindByName(t *testing.T) {
	ctx := context.Background()
	db, notes, tags := newTestRepos(t)

	_, err := tags.FindByName(ctx, "none")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = notes.Create(ctx, "one", []string{"a"})
	require.NoError(t, err)

	tag, err := tags.FindByName(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", tag.Name)
	assert.NotZero(t, tag.ID)

	// served from the cache once known
	require.NoError(t, db.Session(&gorm.Session{AllowGlobalUpdate: true}).Model(&models.Tag{}).Update("name", "renamed").Error)
	cached, err := tags.FindByName(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, cached.ID)
}

func TestTagUpsertKeepsExistingRows(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepository(db)

	first, err := tags.Upsert(db, []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := tags.Upsert(db, []string{"b", "c"})
	require.NoError(t, err)
	require.Len(t, second, 2)

	ids := map[string]uint{}
	for _, tag := range first {
		ids[tag.Name] = tag.ID
	}
	for _, tag := range second {
		if tag.Name == "b" {
			assert.Equal(t, ids["b"], tag.ID)
		}
	}
	assert.EqualValues(t, 3, countRows(t, db, &models.Tag{}))

	empty, err := tags.Upsert(db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// Tags are inserted in name order whatever order the caller passes. On postgres
// two transactions inserting [x, y] and [y, x] would otherwise deadlock on the
// unique index; sqlite serializes writers and cannot show it, so the order is
// checked through the assigned ids instead.
func TestTagUpsertInsertsInNameOrder(t *testing.T) {
	db := newTestDB(t)
	tags := NewTagRepository(db)

	input := []string{"y", "x", "z"}
	rows, err := tags.Upsert(db, input)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"y", "x", "z"}, input)

	ids := map[string]uint{}
	for _, tag := range rows {
		ids[tag.Name] = tag.ID
	}
	assert.Less(t, ids["x"], ids["y"])
	assert.Less(t, ids["y"], ids["z"])
}
