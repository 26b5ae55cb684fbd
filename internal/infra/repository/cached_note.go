package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"github.com/zeebo/xxh3"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/usecase"
)

const (
	generationKey = "tagnote:gen"
	cacheTTL      = 5 * 60 // seconds
)

// MemcacheClient is the subset of *memcache.Client used for caching.
type MemcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Increment(key string, delta uint64) (uint64, error)
}

// CachedNoteRepository caches list and tag search results in memcached.
// Keys embed a generation number; every mutation bumps it, dropping all cached reads at once.
type CachedNoteRepository struct {
	inner usecase.NoteRepository
	mc    MemcacheClient
}

func NewCachedNoteRepository(inner usecase.NoteRepository, mc MemcacheClient) *CachedNoteRepository {
	return &CachedNoteRepository{inner: inner, mc: mc}
}

type cachedNotes struct {
	Tag   string        `json:"tag,omitempty"`
	Notes []domain.Note `json:"notes"`
}

func (r *CachedNoteRepository) Create(ctx context.Context, text string, tags []string) (domain.Note, error) {
	note, err := r.inner.Create(ctx, text, tags)
	if err != nil {
		return note, err
	}
	r.bump(ctx)
	return note, nil
}

func (r *CachedNoteRepository) Get(ctx context.Context, id uint) (domain.Note, error) {
	return r.inner.Get(ctx, id)
}

func (r *CachedNoteRepository) Update(ctx context.Context, id uint, text string) (bool, error) {
	found, err := r.inner.Update(ctx, id, text)
	if err == nil && found {
		r.bump(ctx)
	}
	return found, err
}

func (r *CachedNoteRepository) Delete(ctx context.Context, id uint) (bool, error) {
	found, err := r.inner.Delete(ctx, id)
	if err == nil && found {
		r.bump(ctx)
	}
	return found, err
}

func (r *CachedNoteRepository) List(ctx context.Context) ([]domain.Note, error) {
	gen, err := r.generation()
	if err != nil {
		r.warn(ctx, "read generation", err)
		return r.inner.List(ctx)
	}

	key := fmt.Sprintf("tagnote:%s:list", gen)
	if cached, ok := r.load(ctx, key); ok {
		return cached.Notes, nil
	}

	notes, err := r.inner.List(ctx)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, cachedNotes{Notes: notes})
	return notes, nil
}

func (r *CachedNoteRepository) SearchByTag(ctx context.Context, name string) ([]domain.Note, error) {
	gen, err := r.generation()
	if err != nil {
		r.warn(ctx, "read generation", err)
		return r.inner.SearchByTag(ctx, name)
	}

	key := tagKey(gen, name)
	// the name is kept in the payload to rule out hash collisions
	if cached, ok := r.load(ctx, key); ok && cached.Tag == name {
		return cached.Notes, nil
	}

	notes, err := r.inner.SearchByTag(ctx, name)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, cachedNotes{Tag: name, Notes: notes})
	return notes, nil
}

// tagKey hashes the tag name: memcached keys may not contain spaces or control characters.
func tagKey(gen, name string) string {
	return fmt.Sprintf("tagnote:%s:tag:%016x", gen, xxh3.HashString(name))
}

// generation seeds a missing counter with the current time so that an evicted
// counter never reuses an old number.
func (r *CachedNoteRepository) generation() (string, error) {
	item, err := r.mc.Get(generationKey)
	if err == nil {
		return string(item.Value), nil
	}
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return "", err
	}

	seed := strconv.FormatInt(time.Now().UnixNano(), 10)
	err = r.mc.Add(&memcache.Item{Key: generationKey, Value: []byte(seed)})
	if err == nil {
		return seed, nil
	}
	if !errors.Is(err, memcache.ErrNotStored) {
		return "", err
	}

	// another writer seeded it first
	item, err = r.mc.Get(generationKey)
	if err != nil {
		return "", err
	}
	return string(item.Value), nil
}

func (r *CachedNoteRepository) bump(ctx context.Context) {
	_, err := r.mc.Increment(generationKey, 1)
	if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		r.warn(ctx, "bump generation", err)
	}
}

func (r *CachedNoteRepository) load(ctx context.Context, key string) (cachedNotes, bool) {
	item, err := r.mc.Get(key)
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			r.warn(ctx, "get", err)
		}
		return cachedNotes{}, false
	}

	var cached cachedNotes
	if err := json.Unmarshal(item.Value, &cached); err != nil {
		r.warn(ctx, "decode", err)
		return cachedNotes{}, false
	}
	return cached, true
}

func (r *CachedNoteRepository) store(ctx context.Context, key string, value cachedNotes) {
	payload, err := json.Marshal(value)
	if err != nil {
		r.warn(ctx, "encode", err)
		return
	}
	err = r.mc.Set(&memcache.Item{Key: key, Value: payload, Expiration: cacheTTL})
	if err != nil {
		r.warn(ctx, "set", err)
	}
}

func (r *CachedNoteRepository) warn(ctx context.Context, op string, err error) {
	slog.WarnContext(
		ctx, "memcached "+op+" failed",
		slog.String("error", err.Error()),
		slog.String("module", "cache"),
	)
}

var _ usecase.NoteRepository = (*CachedNoteRepository)(nil)
var _ usecase.NoteRepository = (*NoteRepository)(nil)
var _ usecase.TagRepository = (*TagRepository)(nil)
