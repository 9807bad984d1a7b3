package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"notes-api/errs"
	"notes-api/models"
)

const (
	// Same default database and collection names Mongoose uses for a Note model.
	defaultMongoDatabase = "test"
	notesCollection      = "notes"
)

type noteDocument struct {
	ID      primitive.ObjectID `bson:"_id"`
	Title   *string            `bson:"title,omitempty"`
	Content *string            `bson:"content,omitempty"`
}

func (d noteDocument) toNote() models.Note {
	return models.Note{ID: d.ID.Hex(), Title: d.Title, Content: d.Content}
}

type MongoStore struct {
	client *mongo.Client
	notes  *mongo.Collection
}

// ConnectMongo connects to uri and pings the primary. The database is taken
// from the uri path.
func ConnectMongo(ctx context.Context, uri string) (*MongoStore, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("parse mongodb uri: %w", err)
	}
	database := cs.Database
	if database == "" {
		database = defaultMongoDatabase
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoStore{
		client: client,
		notes:  client.Database(database).Collection(notesCollection),
	}, nil
}

func (s *MongoStore) Create(ctx context.Context, in models.NoteInput) (models.Note, error) {
	doc := noteDocument{ID: primitive.NewObjectID(), Title: in.Title, Content: in.Content}
	if _, err := s.notes.InsertOne(ctx, doc); err != nil {
		return models.Note{}, errs.Wrap(errs.Internal, "insert note", err)
	}
	return clone(doc.toNote()), nil
}

func (s *MongoStore) List(ctx context.Context) ([]models.Note, error) {
	cursor, err := s.notes.Find(ctx, bson.D{})
	if err != nil {
		return nil, errs.Wrap(errs.Internal, "find notes", err)
	}
	var docs []noteDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(errs.Internal, "read notes cursor", err)
	}

	out := make([]models.Note, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toNote())
	}
	return out, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Note{}, errInvalidID
	}
	var doc noteDocument
	err = s.notes.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return models.Note{}, mongoResultErr("find note", err)
	}
	return doc.toNote(), nil
}

// Update replaces both fields. A nil field is removed from the document.
func (s *MongoStore) Update(ctx context.Context, id string, in models.NoteInput) (models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Note{}, errInvalidID
	}

	set, unset := bson.M{}, bson.M{}
	for field, value := range map[string]*string{"title": in.Title, "content": in.Content} {
		if value != nil {
			set[field] = *value
		} else {
			unset[field] = ""
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc noteDocument
	err = s.notes.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if err != nil {
		return models.Note{}, mongoResultErr("update note", err)
	}
	return doc.toNote(), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) (models.Note, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return models.Note{}, errInvalidID
	}
	var doc noteDocument
	err = s.notes.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		return models.Note{}, mongoResultErr("delete note", err)
	}
	return doc.toNote(), nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return errs.Wrap(errs.Unavailable, "mongodb ping", err)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func mongoResultErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return errNotFound
	}
	return errs.Wrap(errs.Internal, op, err)
}
