package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"notes-api/errs"
	"notes-api/models"
)

const notesTable = `
	CREATE TABLE IF NOT EXISTS notes (
		id CHAR(36) PRIMARY KEY,
		title TEXT NULL,
		content TEXT NULL,
		created_at TIMESTAMP(6) DEFAULT CURRENT_TIMESTAMP(6)
	);`

// MySQLStore stores notes in a MySQL table. Ids are UUID strings.
type MySQLStore struct {
	db *sql.DB
}

// ConnectMySQL opens dsn (go-sql-driver format, without the mysql:// prefix),
// pings the server and creates the notes table if needed.
func ConnectMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	conn, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("mysql ping: %w", err)
	}
	if _, err := conn.ExecContext(ctx, notesTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create notes table: %w", err)
	}
	return &MySQLStore{db: conn}, nil
}

func (s *MySQLStore) Create(ctx context.Context, in models.NoteInput) (models.Note, error) {
	note := clone(models.Note{ID: uuid.NewString(), Title: in.Title, Content: in.Content})
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO notes (id, title, content) VALUES (?, ?, ?)",
		note.ID, note.Title, note.Content)
	if err != nil {
		return models.Note{}, errs.Wrap(errs.Internal, "insert note", err)
	}
	return note, nil
}

func (s *MySQLStore) List(ctx context.Context) ([]models.Note, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, content FROM notes ORDER BY created_at ASC, id ASC")
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "select notes", err)
	}
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		var note models.Note
		if err := rows.Scan(&note.ID, &note.Title, &note.Content); err != nil {
			return nil, errs.Wrap(errs.Internal, "scan note", err)
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.Internal, "iterate notes", err)
	}
	return notes, nil
}

func (s *MySQLStore) Get(ctx context.Context, id string) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, errInvalidID
	}
	return selectNote(ctx, s.db, "SELECT id, title, content FROM notes WHERE id = ?", id)
}

func (s *MySQLStore) Update(ctx context.Context, id string, in models.NoteInput) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, errInvalidID
	}
	var out models.Note
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := selectNote(ctx, tx, "SELECT id, title, content FROM notes WHERE id = ? FOR UPDATE", id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE notes SET title = ?, content = ? WHERE id = ?", in.Title, in.Content, id); err != nil {
			return errs.Wrap(errs.Internal, "update note", err)
		}
		out = clone(models.Note{ID: id, Title: in.Title, Content: in.Content})
		return nil
	})
	return out, err
}

func (s *MySQLStore) Delete(ctx context.Context, id string) (models.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.Note{}, errInvalidID
	}
	var out models.Note
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		note, err := selectNote(ctx, tx, "SELECT id, title, content FROM notes WHERE id = ? FOR UPDATE", id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
			return errs.Wrap(errs.Internal, "delete note", err)
		}
		out = note
		return nil
	})
	return out, err
}

func (s *MySQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errs.Wrap(errs.Unavailable, "mysql ping", err)
	}
	return nil
}

func (s *MySQLStore) Close(context.Context) error {
	return s.db.Close()
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func selectNote(ctx context.Context, q queryRower, query, id string) (models.Note, error) {
	var note models.Note
	err := q.QueryRowContext(ctx, query, id).Scan(&note.ID, &note.Title, &note.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Note{}, errNotFound
	}
	if err != nil {
		return models.Note{}, errs.Wrap(errs.Internal, "select note", err)
	}
	return note, nil
}

func (s *MySQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.Internal, "begin tx", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errs.Wrap(errs.Internal, "commit tx", err)
	}
	return nil
}
