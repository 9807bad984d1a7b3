package db

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"notes-api/models"
)

// MemoryStore keeps notes in process memory. Ids are ObjectID hex strings
// so id validation behaves like the MongoDB backend. List returns notes in
// insertion order.
type MemoryStore struct {
	mu    sync.RWMutex
	notes map[string]models.Note
	order []string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{notes: make(map[string]models.Note)}
}

func (s *MemoryStore) Create(_ context.Context, in models.NoteInput) (models.Note, error) {
	note := clone(models.Note{
		ID:      primitive.NewObjectID().Hex(),
		Title:   in.Title,
		Content: in.Content,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes[note.ID] = note
	s.order = append(s.order, note.ID)
	return clone(note), nil
}

func (s *MemoryStore) List(_ context.Context) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Note, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.notes[id]))
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (models.Note, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Note{}, errInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	note, ok := s.notes[id]
	if !ok {
		return models.Note{}, errNotFound
	}
	return clone(note), nil
}

func (s *MemoryStore) Update(_ context.Context, id string, in models.NoteInput) (models.Note, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Note{}, errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notes[id]; !ok {
		return models.Note{}, errNotFound
	}
	note := clone(models.Note{ID: id, Title: in.Title, Content: in.Content})
	s.notes[id] = note
	return clone(note), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (models.Note, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return models.Note{}, errInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	note, ok := s.notes[id]
	if !ok {
		return models.Note{}, errNotFound
	}
	delete(s.notes, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return note, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close(context.Context) error { return nil }
