package main

import (
	"context"

	"github.com/trezcool/cpel/storage/database/mongodb"
)

var ensureIndexesFunc = mongodb.EnsureIndexes // mockable

func (cli *commandLine) migrate() error {
	return ensureIndexesFunc(context.Background(), cli.db)
}
