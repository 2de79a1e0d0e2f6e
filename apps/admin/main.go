package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/school"
	"github.com/trezcool/cpel/core/user"
	"github.com/trezcool/cpel/storage/database/mongodb"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	defer cancel()

	// set up DB
	client, err := mongodb.Open(ctx, conf)
	errAndDie(err)
	db := mongodb.Database(client, conf)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	schoolSvc := school.NewService(mongodb.NewRepositories(db), validate)

	// start CLI
	cli := commandLine{
		db:     db,
		usrSvc: user.NewService(mongodb.NewUserRepository(db), schoolSvc, validate),
	}
	err = cli.run(os.Args)
	if dErr := client.Disconnect(context.Background()); dErr != nil {
		logger.Printf("disconnecting: %s\n", dErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
