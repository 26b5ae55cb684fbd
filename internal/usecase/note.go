package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/totegamma/tagnote/internal/domain"
)

var tracer = otel.Tracer("note")

// MaxTagLength matches the width of the tags.name column.
const MaxTagLength = 50

// AddNoteInput is the input for adding a note. Tags may contain blanks and duplicates.
type AddNoteInput struct {
	Text string
	Tags []string
}

type NoteUsecase struct {
	repo      NoteRepository
	tags      TagRepository
	publisher EventPublisher
}

// NewNoteUsecase wires the usecase. publisher may be nil, in which case no events are sent.
func NewNoteUsecase(repo NoteRepository, tags TagRepository, publisher EventPublisher) *NoteUsecase {
	return &NoteUsecase{
		repo:      repo,
		tags:      tags,
		publisher: publisher,
	}
}

func (uc *NoteUsecase) Add(ctx context.Context, input AddNoteInput) (domain.Note, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.Add")
	defer span.End()

	text := strings.TrimSpace(input.Text)
	if text == "" {
		err := errors.Wrap(domain.ErrInvalidInput, "note text is empty")
		span.RecordError(err)
		return domain.Note{}, err
	}

	tags := NormalizeTags(input.Tags)
	span.SetAttributes(attribute.StringSlice("tags", tags))
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > MaxTagLength {
			err := errors.Wrapf(domain.ErrInvalidInput, "tag %q is longer than %d characters", tag, MaxTagLength)
			span.RecordError(err)
			return domain.Note{}, err
		}
	}

	note, err := uc.repo.Create(ctx, text, tags)
	if err != nil {
		span.RecordError(err)
		return domain.Note{}, err
	}

	uc.publish(ctx, domain.NoteCreated, note.ID)
	return note, nil
}

func (uc *NoteUsecase) Get(ctx context.Context, id uint) (domain.Note, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.Get")
	defer span.End()

	return uc.repo.Get(ctx, id)
}

// Edit replaces the text of a note. A missing note is a no-op and reports false.
func (uc *NoteUsecase) Edit(ctx context.Context, id uint, text string) (bool, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.Edit")
	defer span.End()
	span.SetAttributes(attribute.Int64("noteID", int64(id)))

	// the text is stored as given; only blank text is refused
	if strings.TrimSpace(text) == "" {
		err := errors.Wrap(domain.ErrInvalidInput, "note text is empty")
		span.RecordError(err)
		return false, err
	}

	found, err := uc.repo.Update(ctx, id, text)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if found {
		uc.publish(ctx, domain.NoteUpdated, id)
	}
	return found, nil
}

// Delete removes a note and its tag links. A missing note is a no-op and reports false.
func (uc *NoteUsecase) Delete(ctx context.Context, id uint) (bool, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int64("noteID", int64(id)))

	found, err := uc.repo.Delete(ctx, id)
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	if found {
		uc.publish(ctx, domain.NoteDeleted, id)
	}
	return found, nil
}

func (uc *NoteUsecase) List(ctx context.Context) ([]domain.Note, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.List")
	defer span.End()

	return uc.repo.List(ctx)
}

func (uc *NoteUsecase) SearchByTag(ctx context.Context, name string) ([]domain.Note, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.SearchByTag")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return []domain.Note{}, nil
	}
	span.SetAttributes(attribute.String("tag", name))

	return uc.repo.SearchByTag(ctx, name)
}

func (uc *NoteUsecase) ListTags(ctx context.Context) ([]domain.Tag, error) {
	ctx, span := tracer.Start(ctx, "Note.Usecase.ListTags")
	defer span.End()

	return uc.tags.List(ctx)
}

// publish logs delivery errors instead of returning them.
func (uc *NoteUsecase) publish(ctx context.Context, typ domain.NoteEventType, id uint) {
	if uc.publisher == nil {
		return
	}

	event := domain.NoteEvent{
		Type:   typ,
		NoteID: id,
		Time:   time.Now().UTC(),
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(
			ctx, "failed to publish note event",
			slog.String("error", err.Error()),
			slog.String("type", string(typ)),
			slog.String("module", "note"),
		)
	}
}
