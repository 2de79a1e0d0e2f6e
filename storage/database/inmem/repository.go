package inmemdb

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/school"
	"github.com/trezcool/cpel/core/user"
)

// Documents are kept as bson.M, encoded and decoded with the mongo driver codecs,
// so that the stored shape matches what MongoDB would hold.
type repository[T any] struct {
	name string
	db   *table
}

var _ core.Repository[user.User] = (*repository[user.User])(nil) // interface compliance check

// NewRepository returns a repository over the named table; unique lists fields whose values must be unique.
func NewRepository[T any](db *DB, name string, unique ...string) core.Repository[T] {
	return &repository[T]{name: name, db: db.table(name, unique...)}
}

func NewUserRepository(db *DB) core.Repository[user.User] {
	return NewRepository[user.User](db, "users", "username")
}

func NewRepositories(db *DB) school.Repositories {
	return school.Repositories{
		Professors:        NewRepository[school.Professor](db, "professors"),
		Students:          NewRepository[school.Student](db, "students"),
		Groups:            NewRepository[school.Group](db, "groups"),
		Modules:           NewRepository[school.Module](db, "modules"),
		TDs:               NewRepository[school.TD](db, "tds"),
		Exercises:         NewRepository[school.Exercise](db, "exercises"),
		Corrections:       NewRepository[school.Correction](db, "corrections"),
		StudentRenderings: NewRepository[school.StudentRendering](db, "studentRenderings"),
	}
}

func (repo *repository[T]) Create(ctx context.Context, doc T) (primitive.ObjectID, error) {
	m, err := toDoc(doc)
	if err != nil {
		return primitive.NilObjectID, core.NewPersistenceError("encoding "+repo.name, err)
	}

	repo.db.Lock()
	defer repo.db.Unlock()

	for _, fld := range repo.db.unique {
		if m[fld] == nil {
			continue
		}
		for _, other := range repo.db.docs {
			if reflect.DeepEqual(other[fld], m[fld]) {
				return primitive.NilObjectID, errors.Wrapf(core.ErrDuplicateKey, "%s.%s", repo.name, fld)
			}
		}
	}

	id, ok := m["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		m["_id"] = id
	}
	if _, exists := repo.db.docs[id]; exists {
		return primitive.NilObjectID, errors.Wrapf(core.ErrDuplicateKey, "%s._id", repo.name)
	}
	repo.db.docs[id] = m
	repo.db.order = append(repo.db.order, id)
	return id, nil
}

func (repo *repository[T]) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]T, error) {
	return repo.Filter(ctx, nil, orderings...)
}

func (repo *repository[T]) Filter(_ context.Context, filter core.Filter, orderings ...core.DBOrdering) ([]T, error) {
	var f bson.M
	if len(filter) > 0 {
		var err error
		if f, err = toDoc(bson.M(filter)); err != nil {
			return nil, core.NewPersistenceError("encoding filter", err)
		}
	}

	repo.db.RLock()
	matches := make([]bson.M, 0, len(repo.db.order))
	for _, id := range repo.db.order {
		if m, ok := repo.db.docs[id]; ok && match(m, f) {
			matches = append(matches, m)
		}
	}
	repo.db.RUnlock()

	if len(orderings) > 0 {
		sort.SliceStable(matches, func(i, j int) bool {
			for _, ord := range orderings {
				c := compare(matches[i][ord.Field], matches[j][ord.Field])
				if c == 0 {
					continue
				}
				if ord.Ascending {
					return c < 0
				}
				return c > 0
			}
			return false
		})
	}

	docs := make([]T, 0, len(matches))
	for _, m := range matches {
		doc, err := fromDoc[T](m)
		if err != nil {
			return nil, core.NewPersistenceError("decoding "+repo.name, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (repo *repository[T]) FindOne(ctx context.Context, filter core.Filter) (T, error) {
	docs, err := repo.Filter(ctx, filter)
	if err != nil {
		var zero T
		return zero, err
	}
	if len(docs) == 0 {
		var zero T
		return zero, core.ErrNoDocuments
	}
	return docs[0], nil
}

func (repo *repository[T]) GetByID(_ context.Context, id primitive.ObjectID) (T, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var zero T
	m, ok := repo.db.docs[id]
	if !ok {
		return zero, core.ErrNoDocuments
	}
	doc, err := fromDoc[T](m)
	if err != nil {
		return zero, core.NewPersistenceError("decoding "+repo.name, err)
	}
	return doc, nil
}

func (repo *repository[T]) Update(_ context.Context, id primitive.ObjectID, fields core.Fields) (T, error) {
	return repo.modify(id, func(m bson.M) error {
		for k, v := range fields {
			m[k] = v
		}
		return nil
	})
}

func (repo *repository[T]) Push(_ context.Context, id primitive.ObjectID, field string, value interface{}) (T, error) {
	return repo.modify(id, func(m bson.M) error {
		val, err := toDoc(value)
		if err != nil {
			return err
		}
		var arr primitive.A
		if cur, exists := m[field]; exists {
			// a null or scalar field cannot be pushed to, as with $push
			a, ok := cur.(primitive.A)
			if !ok {
				return errors.Errorf("field %q must be an array but is of type %T", field, cur)
			}
			arr = a
		}
		m[field] = append(arr, val)
		return nil
	})
}

func (repo *repository[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.docs[id]; !ok {
		return core.ErrNoDocuments
	}
	delete(repo.db.docs, id)
	for i, oid := range repo.db.order {
		if oid == id {
			repo.db.order = append(repo.db.order[:i], repo.db.order[i+1:]...)
			break
		}
	}
	return nil
}

// modify applies fn to a copy of the document and stores the re-encoded result.
func (repo *repository[T]) modify(id primitive.ObjectID, fn func(m bson.M) error) (T, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var zero T
	orig, ok := repo.db.docs[id]
	if !ok {
		return zero, core.ErrNoDocuments
	}
	m, err := toDoc(orig)
	if err != nil {
		return zero, core.NewPersistenceError("encoding "+repo.name, err)
	}
	if err = fn(m); err != nil {
		return zero, core.NewPersistenceError("updating "+repo.name, err)
	}
	if m, err = toDoc(m); err != nil {
		return zero, core.NewPersistenceError("encoding "+repo.name, err)
	}
	repo.db.docs[id] = m

	doc, err := fromDoc[T](m)
	if err != nil {
		return zero, core.NewPersistenceError("decoding "+repo.name, err)
	}
	return doc, nil
}

func toDoc(v interface{}) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err = bson.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromDoc[T any](m bson.M) (T, error) {
	var doc T
	data, err := bson.Marshal(m)
	if err != nil {
		return doc, err
	}
	err = bson.Unmarshal(data, &doc)
	return doc, err
}

func match(m, filter bson.M) bool {
	for k, v := range filter {
		if !reflect.DeepEqual(m[k], v) {
			return false
		}
	}
	return true
}

// compare orders BSON values of the same type; nil sorts first and mixed types compare by their text.
func compare(a, b interface{}) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case int32:
		if y, ok := b.(int32); ok {
			return cmpInt(int64(x), int64(y))
		}
	case int64:
		if y, ok := b.(int64); ok {
			return cmpInt(x, y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			}
			return 1
		}
	case primitive.DateTime:
		if y, ok := b.(primitive.DateTime); ok {
			return cmpInt(int64(x), int64(y))
		}
	case primitive.ObjectID:
		if y, ok := b.(primitive.ObjectID); ok {
			return strings.Compare(x.Hex(), y.Hex())
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cmpInt(x, y int64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}
