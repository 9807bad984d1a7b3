// Package db holds the note store and its backends. The backend is picked
// from the scheme of the connection string.
package db

import (
	"context"
	"fmt"
	"strings"

	"notes-api/errs"
	"notes-api/models"
)

const (
	BackendMongo  = "mongodb"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

var (
	errNotFound  = errs.New(errs.NotFound, "Note not found")
	errInvalidID = errs.New(errs.InvalidArgument, "Invalid note id")
)

// NoteStore is the note access layer. Every method maps onto a single
// storage operation. Returned errors carry an errs.Code: NotFound when no
// record has the id, InvalidArgument when the id cannot be a valid key for
// the backend, Internal for anything else.
type NoteStore interface {
	Create(ctx context.Context, in models.NoteInput) (models.Note, error)
	List(ctx context.Context) ([]models.Note, error)
	Get(ctx context.Context, id string) (models.Note, error)
	Update(ctx context.Context, id string, in models.NoteInput) (models.Note, error)
	Delete(ctx context.Context, id string) (models.Note, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Backend returns the backend name for a connection string, or "" if the
// scheme is not supported.
func Backend(uri string) string {
	switch {
	case strings.HasPrefix(uri, "mongodb://"), strings.HasPrefix(uri, "mongodb+srv://"):
		return BackendMongo
	case strings.HasPrefix(uri, "mysql://"):
		return BackendMySQL
	case strings.HasPrefix(uri, "memory://"):
		return BackendMemory
	}
	return ""
}

// Connect opens the store described by uri and verifies it is reachable.
func Connect(ctx context.Context, uri string) (NoteStore, error) {
	switch Backend(uri) {
	case BackendMongo:
		return ConnectMongo(ctx, uri)
	case BackendMySQL:
		return ConnectMySQL(ctx, strings.TrimPrefix(uri, "mysql://"))
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unsupported storage uri scheme: %q", redactURI(uri))
}

// redactURI drops everything after the scheme so credentials never reach logs.
func redactURI(uri string) string {
	if i := strings.Index(uri, "://"); i >= 0 {
		return uri[:i+3] + "..."
	}
	return "..."
}

func clone(n models.Note) models.Note {
	out := models.Note{ID: n.ID}
	if n.Title != nil {
		out.Title = models.StringPtr(*n.Title)
	}
	if n.Content != nil {
		out.Content = models.StringPtr(*n.Content)
	}
	return out
}
