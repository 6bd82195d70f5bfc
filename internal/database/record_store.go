package database

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoDocument is returned by FindOne and FindOneAndUpdate when no record
// matches the filter.
var ErrNoDocument = errors.New("no matching document")

// RecordStore is the capability the repository layer depends on: a single
// flat document collection supporting lookup, insert, and find-and-replace
// by filter. A Mongo collection backs it in production; tests use an
// in-memory fake.
type RecordStore interface {
	FindOne(ctx context.Context, filter bson.M, out any) error
	InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error)
	FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M, out any) error
}

// CollectionStore implements RecordStore over a *mongo.Collection.
type CollectionStore struct {
	coll *mongo.Collection
}

// NewCollectionStore wraps a Mongo collection as a RecordStore.
func NewCollectionStore(coll *mongo.Collection) *CollectionStore {
	return &CollectionStore{coll: coll}
}

// FindOne decodes the first document matching filter into out.
func (s *CollectionStore) FindOne(ctx context.Context, filter bson.M, out any) error {
	err := s.coll.FindOne(ctx, filter).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

// InsertOne inserts doc and returns the storage-assigned ObjectID.
func (s *CollectionStore) InsertOne(ctx context.Context, doc any) (primitive.ObjectID, error) {
	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("inserted id is not an ObjectID")
	}
	return id, nil
}

// FindOneAndUpdate applies update to the first document matching filter and
// decodes the post-update document into out.
func (s *CollectionStore) FindOneAndUpdate(ctx context.Context, filter bson.M, update bson.M, out any) error {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNoDocument
	}
	return err
}

// IsUnavailable reports whether err indicates the store could not be reached
// (connection refused, server selection timeout, disconnected client) as
// opposed to an ordinary operation failure.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	// Server selection failures do not always satisfy the checks above.
	return strings.Contains(err.Error(), "server selection")
}
