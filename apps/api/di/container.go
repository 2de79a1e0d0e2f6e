package di

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/cpel/apps/api/echo"
	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/school"
	"github.com/trezcool/cpel/core/user"
	logsvc "github.com/trezcool/cpel/services/logger"
	inmemdb "github.com/trezcool/cpel/storage/database/inmem"
	"github.com/trezcool/cpel/storage/database/mongodb"
)

// Database engines
const (
	EngineMongoDB = "mongodb"
	EngineMemory  = "memory"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Store holds the repositories of the configured database engine.
// Close releases the underlying connection.
type Store struct {
	Users  core.Repository[user.User]
	School school.Repositories
	Close  func(ctx context.Context) error
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

// NewStore opens the database selected by conf.Database.Engine.
func NewStore(conf *core.Config) (*Store, error) {
	switch conf.Database.Engine {
	case EngineMemory:
		db, err := inmemdb.Open()
		if err != nil {
			return nil, err
		}
		return &Store{
			Users:  inmemdb.NewUserRepository(db),
			School: inmemdb.NewRepositories(db),
			Close:  func(context.Context) error { return nil },
		}, nil
	case EngineMongoDB, "":
		ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
		defer cancel()

		client, err := mongodb.Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		db := mongodb.Database(client, conf)
		if err = mongodb.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, err
		}
		return &Store{
			Users:  mongodb.NewUserRepository(db),
			School: mongodb.NewRepositories(db),
			Close:  client.Disconnect,
		}, nil
	default:
		return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
	}
}

func newStore(conf *core.Config, loggerParam DBLoggerParam) *Store {
	store, err := NewStore(conf)
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return store
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	return validate
}

func newSchoolService(store *Store, validate *validator.Validate) *school.Service {
	return school.NewService(store.School, validate)
}

func newUserService(store *Store, schoolSvc *school.Service, validate *validator.Validate) user.Service {
	return user.NewService(store.Users, schoolSvc, validate)
}

func newServer(
	conf *core.Config,
	logger core.Logger,
	translator ut.Translator,
	usrSvc user.Service,
	schoolSvc *school.Service,
) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Translator: translator,
		UserSvc:    usrSvc,
		SchoolSvc:  schoolSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newStore))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(newSchoolService))
	must(c.Provide(newUserService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
