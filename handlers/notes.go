package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"notes-api/db"
	"notes-api/errs"
	"notes-api/logging"
	"notes-api/models"
)

// Client-facing error messages. Storage causes are only logged.
const (
	msgCreateFailed = "Failed to create note"
	msgListFailed   = "Failed to retrieve notes"
	msgGetFailed    = "Failed to retrieve note"
	msgUpdateFailed = "Failed to update note"
	msgDeleteFailed = "Failed to delete note"
	msgInvalidJSON  = "Invalid JSON body"
	msgNotFound     = "Note not found"
	msgInvalidID    = "Invalid note id"
	msgStorageDown  = "Storage unavailable"
)

const maxRequestBodyLen = 1 << 20

type ErrorResponse struct {
	Error string `json:"error"`
}

type NoteHandler struct {
	store  db.NoteStore
	logger *slog.Logger
}

func NewNoteHandler(store db.NoteStore, logger *slog.Logger) *NoteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteHandler{store: store, logger: logger}
}

// Routes registers the note endpoints on r.
func (h *NoteHandler) Routes(r chi.Router) {
	r.Post("/notes", h.CreateNote)
	r.Get("/notes", h.GetNotes)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeNoteInput(w, r)
	if !ok {
		return
	}
	note, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, "create", msgCreateFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.store.List(r.Context())
	if err != nil {
		h.fail(w, r, "list", msgListFailed, err)
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "get", msgGetFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// UpdateNote replaces title and content. A field missing from the body is
// cleared, the same way a PUT replaces the whole representation.
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeNoteInput(w, r)
	if !ok {
		return
	}
	note, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.fail(w, r, "update", msgUpdateFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.store.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "delete", msgDeleteFailed, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// Health reports whether the store answers a ping.
func (h *NoteHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logging.From(r.Context(), h.logger).Error("storage ping failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, msgStorageDown)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// fail maps a store error onto a response. Internal errors get the generic
// message for the operation and their cause is logged.
func (h *NoteHandler) fail(w http.ResponseWriter, r *http.Request, op, failedMsg string, err error) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)

	switch code {
	case errs.NotFound:
		writeError(w, status, msgNotFound)
	case errs.InvalidArgument:
		writeError(w, status, msgInvalidID)
	default:
		logging.From(r.Context(), h.logger).Error("note operation failed",
			"op", op,
			"note_id", chi.URLParam(r, "id"),
			"error", err,
		)
		writeError(w, status, failedMsg)
	}
}

// decodeNoteInput reads the JSON body. An empty body is the same as {}.
func decodeNoteInput(w http.ResponseWriter, r *http.Request) (models.NoteInput, bool) {
	var in models.NoteInput
	if r.Body == nil {
		return in, true
	}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyLen)).Decode(&in)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, msgInvalidJSON)
		return models.NoteInput{}, false
	}
	return in, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
