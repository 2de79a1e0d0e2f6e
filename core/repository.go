package core

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNoDocuments  = errors.New("no documents in result")
	ErrDuplicateKey = errors.New("duplicate key")
)

// Repository persists documents of type T in a single collection.
// Lookups by id return ErrNoDocuments when nothing matches.
// Store failures are returned as *PersistenceError.
type Repository[T any] interface {
	Create(ctx context.Context, doc T) (primitive.ObjectID, error)
	QueryAll(ctx context.Context, orderings ...DBOrdering) ([]T, error)
	Filter(ctx context.Context, filter Filter, orderings ...DBOrdering) ([]T, error)
	FindOne(ctx context.Context, filter Filter) (T, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (T, error)
	// Update sets the given fields and returns the updated document.
	Update(ctx context.Context, id primitive.ObjectID, fields Fields) (T, error)
	// Push appends value to the array field and returns the updated document.
	Push(ctx context.Context, id primitive.ObjectID, field string, value interface{}) (T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
