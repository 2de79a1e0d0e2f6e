package school

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/cpel/core"
)

// Collection provides the CRUD operations of one entity type.
type Collection[T any] struct {
	resource string
	repo     core.Repository[T]
	validate *validator.Validate
}

func NewCollection[T any](resource string, repo core.Repository[T], validate *validator.Validate) *Collection[T] {
	return &Collection[T]{
		resource: resource,
		repo:     repo,
		validate: validate,
	}
}

func (c *Collection[T]) Resource() string { return c.resource }

func (c *Collection[T]) Create(ctx context.Context, p Payload[T]) (primitive.ObjectID, error) {
	if err := p.Validate(c.validate); err != nil {
		return primitive.NilObjectID, err
	}
	id, err := c.repo.Create(ctx, p.Document(time.Now().UTC()))
	if err != nil {
		return primitive.NilObjectID, errors.Wrapf(err, "creating %s", c.resource)
	}
	return id, nil
}

func (c *Collection[T]) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]T, error) {
	docs, err := c.repo.QueryAll(ctx, orderings...)
	return docs, errors.Wrapf(err, "querying %ss", c.resource)
}

func (c *Collection[T]) Filter(ctx context.Context, filter core.Filter, orderings ...core.DBOrdering) ([]T, error) {
	docs, err := c.repo.Filter(ctx, filter, orderings...)
	return docs, errors.Wrapf(err, "filtering %ss", c.resource)
}

func (c *Collection[T]) GetByID(ctx context.Context, id string) (T, error) {
	oid, err := core.ParseID(c.resource, id)
	if err != nil {
		var zero T
		return zero, err
	}
	doc, err := c.repo.GetByID(ctx, oid)
	return doc, c.notFound(err, id)
}

// Exists reports whether a document matches filter.
func (c *Collection[T]) Exists(ctx context.Context, filter core.Filter) (bool, error) {
	if _, err := c.repo.FindOne(ctx, filter); err != nil {
		if errors.Cause(err) == core.ErrNoDocuments {
			return false, nil
		}
		return false, errors.Wrapf(err, "finding %s", c.resource)
	}
	return true, nil
}

// Update merges the patch fields into the document. Last writer wins.
func (c *Collection[T]) Update(ctx context.Context, id string, p Patch) (T, error) {
	var zero T
	if err := p.Validate(c.validate); err != nil {
		return zero, err
	}
	oid, err := core.ParseID(c.resource, id)
	if err != nil {
		return zero, err
	}

	flds := p.Fields()
	flds["updatedAt"] = time.Now().UTC()
	doc, err := c.repo.Update(ctx, oid, flds)
	return doc, c.notFound(err, id)
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	oid, err := core.ParseID(c.resource, id)
	if err != nil {
		return err
	}
	return c.notFound(c.repo.Delete(ctx, oid), id)
}

// push appends a copy of value to the array field of the document.
func (c *Collection[T]) push(ctx context.Context, id, field string, value interface{}) (T, error) {
	oid, err := core.ParseID(c.resource, id)
	if err != nil {
		var zero T
		return zero, err
	}
	doc, err := c.repo.Push(ctx, oid, field, value)
	return doc, c.notFound(err, id)
}

func (c *Collection[T]) notFound(err error, id string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == core.ErrNoDocuments {
		return core.NewNotFoundError(c.resource, id)
	}
	return errors.Wrapf(err, "%s %s", c.resource, id)
}
