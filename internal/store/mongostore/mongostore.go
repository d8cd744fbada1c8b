// Package mongostore implements lesson.Store on a MongoDB collection.
package mongostore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/1babii1/lessonsBot/core/logger"
	"github.com/1babii1/lessonsBot/internal/lesson"
)

const (
	component = "store.mongo"
	// Collection is the collection lessons are kept in.
	Collection = "lessons"
)

type document struct {
	ID      string `bson:"_id"`
	Title   string `bson:"title"`
	Counter int    `bson:"counter"`
}

func (d document) lesson() lesson.Lesson {
	return lesson.Lesson{ID: d.ID, Title: d.Title, Counter: d.Counter}
}

// Store keeps lessons as documents keyed by a generated UUID. There is no
// unique index on title; upserts filter by title instead.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ lesson.Store = (*Store)(nil)

// New binds the store to the lessons collection of database.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, coll: client.Database(database).Collection(Collection)}
}

// ListActive returns lessons with a positive counter.
func (s *Store) ListActive(ctx context.Context) ([]lesson.Lesson, error) {
	cur, err := s.coll.Find(ctx, bson.M{"counter": bson.M{"$gt": 0}})
	if err != nil {
		return nil, s.fail(ctx, lesson.OpList, err)
	}
	var docs []document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, s.fail(ctx, lesson.OpList, err)
	}
	out := make([]lesson.Lesson, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.lesson())
	}
	return out, nil
}

// Upsert sets the counter of the document with title, creating it when absent.
func (s *Store) Upsert(ctx context.Context, title string, counter int) (lesson.Lesson, error) {
	update := bson.M{
		"$set":         bson.M{"counter": counter},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var d document
	if err := s.coll.FindOneAndUpdate(ctx, bson.M{"title": title}, update, opts).Decode(&d); err != nil {
		return lesson.Lesson{}, s.fail(ctx, lesson.OpUpsert, err)
	}
	return d.lesson(), nil
}

// FindByTitle returns a document with the exact title.
func (s *Store) FindByTitle(ctx context.Context, title string) (lesson.Lesson, error) {
	var d document
	err := s.coll.FindOne(ctx, bson.M{"title": title}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return lesson.Lesson{}, lesson.ErrNotFound
	}
	if err != nil {
		return lesson.Lesson{}, s.fail(ctx, lesson.OpFind, err)
	}
	return d.lesson(), nil
}

// SetCounter overwrites the counter of the document with id.
func (s *Store) SetCounter(ctx context.Context, id string, counter int) error {
	if _, err := s.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{"counter": counter}}); err != nil {
		return s.fail(ctx, lesson.OpSetCounter, err)
	}
	return nil
}

// Delete removes the document with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return s.fail(ctx, lesson.OpDelete, err)
	}
	return nil
}

// DecrementOrDelete implements lesson.Store. Like the SQL backend it reads,
// then writes, so concurrent calls for one title may lose a decrement.
func (s *Store) DecrementOrDelete(ctx context.Context, title string) (lesson.Outcome, error) {
	return lesson.Decrement(ctx, s, title)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

func (s *Store) fail(ctx context.Context, op string, err error) error {
	logger.Error(ctx, component, "lesson."+op,
		slog.String("status", "fail"),
		slog.String("driver", "mongodb"),
		slog.String("err", err.Error()),
		slog.String("err_code", "STORE_ERROR"),
	)
	return lesson.WrapStore(op, err)
}
