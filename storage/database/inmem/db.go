package inmemdb

import (
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type (
	// DB is an in-memory document store, used in tests and local runs without MongoDB.
	DB struct {
		mutex  sync.Mutex
		tables map[string]*table
	}

	table struct {
		sync.RWMutex
		docs   map[primitive.ObjectID]bson.M
		order  []primitive.ObjectID // insertion order
		unique []string
	}
)

func Open() (*DB, error) {
	return &DB{tables: make(map[string]*table)}, nil
}

// table returns the named table, creating it on first use.
func (db *DB) table(name string, unique ...string) *table {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, ok := db.tables[name]
	if !ok {
		t = &table{docs: make(map[primitive.ObjectID]bson.M)}
		db.tables[name] = t
	}
	t.unique = append(t.unique, unique...)
	return t
}

// Reset drops every document of every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	for _, t := range db.tables {
		t.Lock()
		t.docs = make(map[primitive.ObjectID]bson.M)
		t.order = nil
		t.Unlock()
	}
}
