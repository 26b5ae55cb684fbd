package repository

import (
	"sort"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/infra/database/models"
)

func toDomainNote(note models.Note) domain.Note {
	return domain.Note{
		ID:        note.ID,
		Text:      note.Text,
		Tags:      []string{},
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

// uniqueNames drops repeated names. Names are compared exactly.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

func sortNames(names []string) {
	sort.Strings(names)
}
