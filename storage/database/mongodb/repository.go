package mongodb

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/school"
	"github.com/trezcool/cpel/core/user"
)

type repository[T any] struct {
	coll *mongo.Collection
}

var _ core.Repository[school.Module] = (*repository[school.Module])(nil) // interface compliance check

func NewRepository[T any](db *mongo.Database, collection string) core.Repository[T] {
	return &repository[T]{coll: db.Collection(collection)}
}

func NewUserRepository(db *mongo.Database) core.Repository[user.User] {
	return NewRepository[user.User](db, UsersCollection)
}

func NewRepositories(db *mongo.Database) school.Repositories {
	return school.Repositories{
		Professors:        NewRepository[school.Professor](db, ProfessorsCollection),
		Students:          NewRepository[school.Student](db, StudentsCollection),
		Groups:            NewRepository[school.Group](db, GroupsCollection),
		Modules:           NewRepository[school.Module](db, ModulesCollection),
		TDs:               NewRepository[school.TD](db, TDsCollection),
		Exercises:         NewRepository[school.Exercise](db, ExercisesCollection),
		Corrections:       NewRepository[school.Correction](db, CorrectionsCollection),
		StudentRenderings: NewRepository[school.StudentRendering](db, StudentRenderingsCollection),
	}
}

func (repo *repository[T]) Create(ctx context.Context, doc T) (primitive.ObjectID, error) {
	res, err := repo.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.Wrap(core.ErrDuplicateKey, err.Error())
		}
		return primitive.NilObjectID, repo.fail("inserting", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, repo.fail("inserting", errors.Errorf("unexpected id type %T", res.InsertedID))
	}
	return id, nil
}

func (repo *repository[T]) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]T, error) {
	return repo.Filter(ctx, core.Filter{}, orderings...)
}

func (repo *repository[T]) Filter(ctx context.Context, filter core.Filter, orderings ...core.DBOrdering) ([]T, error) {
	opts := options.Find()
	if len(orderings) > 0 {
		opts.SetSort(sortDoc(orderings))
	}
	if filter == nil {
		filter = core.Filter{}
	}

	cur, err := repo.coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return nil, repo.fail("finding", err)
	}
	docs := make([]T, 0)
	if err = cur.All(ctx, &docs); err != nil {
		return nil, repo.fail("decoding", err)
	}
	return docs, nil
}

func (repo *repository[T]) FindOne(ctx context.Context, filter core.Filter) (T, error) {
	return repo.decode(repo.coll.FindOne(ctx, bson.M(filter)))
}

func (repo *repository[T]) GetByID(ctx context.Context, id primitive.ObjectID) (T, error) {
	return repo.decode(repo.coll.FindOne(ctx, bson.M{"_id": id}))
}

func (repo *repository[T]) Update(ctx context.Context, id primitive.ObjectID, fields core.Fields) (T, error) {
	if len(fields) == 0 {
		return repo.GetByID(ctx, id)
	}
	return repo.findOneAndUpdate(ctx, id, bson.M{"$set": bson.M(fields)})
}

func (repo *repository[T]) Push(ctx context.Context, id primitive.ObjectID, field string, value interface{}) (T, error) {
	return repo.findOneAndUpdate(ctx, id, bson.M{"$push": bson.M{field: value}})
}

func (repo *repository[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := repo.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return repo.fail("deleting", err)
	}
	if res.DeletedCount == 0 {
		return core.ErrNoDocuments
	}
	return nil
}

func (repo *repository[T]) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M) (T, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return repo.decode(repo.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts))
}

func (repo *repository[T]) decode(res *mongo.SingleResult) (T, error) {
	var doc T
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return doc, core.ErrNoDocuments
		}
		return doc, repo.fail("decoding", err)
	}
	return doc, nil
}

func (repo *repository[T]) fail(op string, err error) error {
	return core.NewPersistenceError(op+" "+repo.coll.Name(), err)
}

func sortDoc(orderings []core.DBOrdering) bson.D {
	sort := make(bson.D, 0, len(orderings))
	for _, ord := range orderings {
		direction := -1
		if ord.Ascending {
			direction = 1
		}
		sort = append(sort, bson.E{Key: ord.Field, Value: direction})
	}
	return sort
}
