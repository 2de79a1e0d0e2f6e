package core

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// Filter matches documents whose fields (by bson name) equal every given value.
	Filter map[string]interface{}

	// Fields holds the document fields (by bson name) to be set by an update.
	Fields map[string]interface{}
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// ParseID parses a hex document identifier. A malformed id resolves to nothing, hence a NotFoundError.
func ParseID(resource, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(CleanString(id))
	if err != nil {
		return primitive.NilObjectID, NewNotFoundError(resource, id)
	}
	return oid, nil
}
