package mongodb

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/trezcool/cpel/core"
)

// Collections
const (
	UsersCollection             = "users"
	ProfessorsCollection        = "professors"
	StudentsCollection          = "students"
	GroupsCollection            = "groups"
	ModulesCollection           = "modules"
	TDsCollection               = "tds"
	ExercisesCollection         = "exercises"
	CorrectionsCollection       = "corrections"
	StudentRenderingsCollection = "studentRenderings"
)

// Open connects to the MongoDB deployment at conf.Database.URI and waits until it answers.
// The returned client must be disconnected by the caller.
func Open(ctx context.Context, conf *core.Config) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(conf.Database.URI).
		SetAppName(conf.AppName).
		SetConnectTimeout(conf.Database.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to database")
	}
	if err = ping(ctx, client); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "pinging database")
	}
	return client, nil
}

func Database(client *mongo.Client, conf *core.Config) *mongo.Database {
	return client.Database(conf.Database.Name)
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(ctx context.Context, client *mongo.Client) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = client.Ping(ctx, readpref.Primary())
		if err == nil {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempts) * 100 * time.Millisecond):
		}
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// EnsureIndexes creates the unique username index and the owner lookups indexes.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ProfessorsCollection: {{Keys: bson.D{{Key: "professorNumber", Value: 1}}}},
		StudentsCollection:   {{Keys: bson.D{{Key: "studentNumber", Value: 1}}}},
		ModulesCollection:    {{Keys: bson.D{{Key: "idProfessor", Value: 1}}}},
		ExercisesCollection:  {{Keys: bson.D{{Key: "idTD", Value: 1}}}},
		CorrectionsCollection: {{Keys: bson.D{{Key: "idExercise", Value: 1}}}},
		StudentRenderingsCollection: {
			{Keys: bson.D{{Key: "idStudent", Value: 1}, {Key: "idExercise", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}
