package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/manga-engine/internal/metrics"
	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/game"
	"github.com/jwebster45206/manga-engine/pkg/state"
	"github.com/jwebster45206/manga-engine/pkg/storage"
)

const sessionsPath = "/v1/sessions"

// CreateSessionRequest defines the request body for starting a new game.
type CreateSessionRequest struct {
	PlayerName string `json:"player_name,omitempty"`
}

// SessionResponse carries the state after an action along with what the action produced.
type SessionResponse struct {
	State   *state.GameState `json:"state"`
	Outcome *game.Outcome    `json:"outcome,omitempty"`
}

// Publisher announces session changes to stream subscribers.
type Publisher interface {
	PublishCreated(ctx context.Context, gs *state.GameState) error
	PublishOutcome(ctx context.Context, id uuid.UUID, action, prevEventID string, gs *state.GameState, out *game.Outcome) error
	PublishDeleted(ctx context.Context, id uuid.UUID) error
}

// SessionHandler serves game sessions backed by storage.
type SessionHandler struct {
	storage     storage.Storage
	journal     game.Journal
	tables      *content.Tables
	opts        game.Options
	defaultName string
	publisher   Publisher
	logger      *slog.Logger

	// Load-act-save for one session must not interleave.
	locks sync.Map
}

// NewSessionHandler creates the handler. opts.Journal is replaced by journal.
func NewSessionHandler(storage storage.Storage, journal game.Journal, tables *content.Tables, opts game.Options, defaultName string, logger *slog.Logger) *SessionHandler {
	opts.Journal = journal
	opts.Logger = logger
	return &SessionHandler{
		storage:     storage,
		journal:     journal,
		tables:      tables,
		opts:        opts,
		defaultName: defaultName,
		logger:      logger,
	}
}

// WithPublisher sets where session changes are announced.
func (h *SessionHandler) WithPublisher(p Publisher) *SessionHandler {
	h.publisher = p
	return h
}

// publish runs fn when a publisher is set. Failures only cost the stream.
func (h *SessionHandler) publish(id uuid.UUID, fn func(Publisher) error) {
	if h.publisher == nil {
		return
	}
	if err := fn(h.publisher); err != nil {
		h.logger.Warn("Failed to publish session event", "error", err, "id", id.String())
	}
}

// ServeHTTP handles HTTP requests for game sessions
// Routes:
// POST   /v1/sessions              - Start a new game
// GET    /v1/sessions/{id}         - Read game state
// DELETE /v1/sessions/{id}         - Delete game and journal
// POST   /v1/sessions/{id}/actions - Perform a player action
// GET    /v1/sessions/{id}/journal - Read the journal
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, sessionsPath), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, id)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, id)
	case len(parts) == 2 && parts[1] == "actions" && r.Method == http.MethodPost:
		h.handleAction(w, r, id)
	case len(parts) == 2 && parts[1] == "journal" && r.Method == http.MethodGet:
		h.handleJournal(w, r, id)
	case len(parts) <= 2:
		h.logger.Warn("Method not allowed for session endpoint", "method", r.Method, "path", r.URL.Path)
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *SessionHandler) lock(id uuid.UUID) func() {
	v, _ := h.locks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid JSON in create request body", "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}
	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		name = h.defaultName
	}

	s := game.NewSession(r.Context(), name, h.tables, h.opts)
	gs := s.State()
	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save new session", "error", err, "id", gs.ID.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create session")
		return
	}
	metrics.SessionsActive.Inc()
	h.publish(gs.ID, func(p Publisher) error { return p.PublishCreated(r.Context(), gs) })

	h.logger.Info("Session created", "id", gs.ID.String(), "player", gs.Player.Name)
	writeJSON(w, h.logger, http.StatusCreated, SessionResponse{State: gs})
}

// load returns the stored state, writing the error response itself when it cannot.
func (h *SessionHandler) load(ctx context.Context, w http.ResponseWriter, id uuid.UUID) *state.GameState {
	gs, err := h.storage.LoadGameState(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load session")
		return nil
	}
	if gs == nil {
		h.logger.Warn("Session not found", "id", id.String())
		writeError(w, h.logger, http.StatusNotFound, "Session not found")
		return nil
	}
	return gs
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs := h.load(r.Context(), w, id)
	if gs == nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{State: gs})
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	unlock := h.lock(id)
	defer unlock()

	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		if errors.Is(err, state.ErrNotFound) {
			h.logger.Warn("Session not found", "id", id.String())
			writeError(w, h.logger, http.StatusNotFound, "Session not found")
			return
		}
		h.logger.Error("Failed to delete session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	if err := h.journal.Clear(r.Context(), id); err != nil {
		h.logger.Warn("Failed to clear journal", "error", err, "id", id.String())
	}
	h.locks.Delete(id)
	metrics.SessionsActive.Dec()
	h.publish(id, func(p Publisher) error { return p.PublishDeleted(r.Context(), id) })

	h.logger.Debug("Session deleted", "id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleJournal(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if gs := h.load(r.Context(), w, id); gs == nil {
		return
	}
	entries, err := h.journal.List(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to read journal", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read journal")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, entries)
}

func (h *SessionHandler) handleAction(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid JSON in action request body", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	unlock := h.lock(id)
	defer unlock()

	gs := h.load(r.Context(), w, id)
	if gs == nil {
		return
	}
	wasOver := gs.IsOver()
	var prevEventID string
	if gs.ActiveEvent != nil {
		prevEventID = gs.ActiveEvent.Def.ID
	}
	s := game.Resume(gs, h.tables, h.opts)

	out, err := Dispatch(r.Context(), s, req)
	if err != nil {
		status := statusFor(err)
		if errors.Is(err, errUnknownAction) {
			status = http.StatusBadRequest
		}
		result := metrics.ResultRejected
		if status == http.StatusInternalServerError {
			result = metrics.ResultError
			h.logger.Error("Action failed", "error", err, "id", id.String(), "action", req.Action)
		} else {
			h.logger.Debug("Action rejected", "error", err, "id", id.String(), "action", req.Action)
		}
		metrics.RecordAction(actionLabel(req.Action), result)
		writeError(w, h.logger, status, err.Error())
		return
	}
	metrics.RecordAction(actionLabel(req.Action), metrics.ResultOK)
	if out.Chapter != nil {
		metrics.ChapterScore.Observe(out.Chapter.Score)
	}
	if out.Ending != nil && !wasOver {
		metrics.EndingsTotal.WithLabelValues(out.Ending.ID).Inc()
	}

	if err := h.storage.SaveGameState(r.Context(), id, s.State()); err != nil {
		h.logger.Error("Failed to save session", "error", err, "id", id.String())
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save session")
		return
	}
	h.publish(id, func(p Publisher) error { return p.PublishOutcome(r.Context(), id, actionLabel(req.Action), prevEventID, s.State(), out) })
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{State: s.State(), Outcome: out})
}
