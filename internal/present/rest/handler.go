package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/totegamma/tagnote/internal/domain"
	"github.com/totegamma/tagnote/internal/present/rest/presenter"
	"github.com/totegamma/tagnote/internal/usecase"
)

// EventSource streams note events until ctx is done.
type EventSource interface {
	Realtime(ctx context.Context, output chan<- domain.NoteEvent) error
}

type Handler struct {
	note   *usecase.NoteUsecase
	events EventSource
}

// NewHandler builds the handler. events may be nil, in which case /realtime answers 503.
func NewHandler(
	note *usecase.NoteUsecase,
	events EventSource,
) *Handler {
	return &Handler{
		note:   note,
		events: events,
	}
}

// RegisterRoutes mounts the API on e. write is applied to the routes that mutate notes.
func (h *Handler) RegisterRoutes(e *echo.Echo, write ...echo.MiddlewareFunc) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health", h.handleHealth)
	e.GET("/notes", h.handleListNotes)
	e.POST("/notes", h.handleAddNote, write...)
	e.GET("/notes/:id", h.handleGetNote)
	e.PUT("/notes/:id", h.handleEditNote, write...)
	e.DELETE("/notes/:id", h.handleDeleteNote, write...)
	e.GET("/tags", h.handleListTags)
	e.GET("/tags/:name/notes", h.handleTagNotes)
	e.GET("/realtime", h.handleRealtime)
}

type addNoteRequest struct {
	Text     string   `json:"text" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,dive,max=50"`
	TagInput string   `json:"tagInput"`
}

type editNoteRequest struct {
	Text string `json:"text" validate:"required"`
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleListNotes(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		notes []domain.Note
		err   error
	)
	if tag := c.QueryParam("tag"); tag != "" {
		notes, err = h.note.SearchByTag(ctx, tag)
	} else {
		notes, err = h.note.List(ctx)
	}
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, notes)
}

func (h *Handler) handleAddNote(c echo.Context) error {
	ctx := c.Request().Context()

	var req addNoteRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	tags := req.Tags
	if req.TagInput != "" {
		tags = append(tags, usecase.ParseTags(req.TagInput)...)
	}

	note, err := h.note.Add(ctx, usecase.AddNoteInput{Text: req.Text, Tags: tags})
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.Created(c, note)
}

func (h *Handler) handleGetNote(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid note id")
	}

	note, err := h.note.Get(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	return presenter.OK(c, note)
}

func (h *Handler) handleEditNote(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid note id")
	}

	var req editNoteRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	found, err := h.note.Edit(ctx, id, req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	if !found {
		return presenter.NotFound(c, "note not found")
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleDeleteNote(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := parseID(c)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid note id")
	}

	found, err := h.note.Delete(ctx, id)
	if err != nil {
		return h.fail(c, err)
	}
	if !found {
		return presenter.NotFound(c, "note not found")
	}
	return presenter.NoContent(c)
}

func (h *Handler) handleListTags(c echo.Context) error {
	tags, err := h.note.ListTags(c.Request().Context())
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, tags)
}

func (h *Handler) handleTagNotes(c echo.Context) error {
	name, err := pathParam(c, "name")
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid tag name")
	}

	notes, err := h.note.SearchByTag(c.Request().Context(), name)
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, notes)
}

func (h *Handler) fail(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return presenter.BadRequest(c, err)
	case errors.Is(err, domain.ErrNotFound):
		return presenter.NotFound(c, err.Error())
	default:
		return presenter.InternalError(c, err)
	}
}

// pathParam decodes a path parameter. echo matches on the raw path when the
// request carries escapes such as %2F, and then hands the parameter back undecoded.
func pathParam(c echo.Context, name string) (string, error) {
	value := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return value, nil
	}
	return url.PathUnescape(value)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleRealtime pushes a NoteEvent to the client after every change so it can re-query.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.events == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not configured"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan domain.NoteEvent, 16)
	go func() {
		if err := h.events.Realtime(ctx, output); err != nil {
			slog.ErrorContext(
				ctx, "Realtime subscription failed",
				slog.String("error", err.Error()),
				slog.String("module", "socket"),
			)
			cancel()
		}
	}()

	// clients only send close frames; reading detects them
	go func() {
		defer cancel()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				var closeErr *websocket.CloseError
				if !errors.As(err, &closeErr) {
					slog.DebugContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event := <-output:
			if err := ws.WriteJSON(event); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
