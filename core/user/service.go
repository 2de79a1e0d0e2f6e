package user

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/cpel/core"
)

const resource = "user"

// AuthError reasons
const (
	ReasonCannotSignUp   = "can't sign up"
	ReasonUsernameExists = "username exists"
	ReasonUnknownUser    = "unknown user"
	ReasonBadCredentials = "bad credentials"
)

type (
	// Registry tells whether a professor or student identifying number is known.
	Registry interface {
		ProfessorNumberExists(ctx context.Context, number string) (bool, error)
		StudentNumberExists(ctx context.Context, number string) (bool, error)
	}

	Service interface {
		SignUp(ctx context.Context, nu NewUser) (User, error)
		Login(ctx context.Context, creds Credentials) (User, error)
		QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByUsername(ctx context.Context, uname string) (User, error)
		UpdatePassword(ctx context.Context, id string, up UpdatePassword) (User, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo     core.Repository[User]
		registry Registry
		validate *validator.Validate
	}
)

var _ Service = (*service)(nil)

func NewService(repo core.Repository[User], registry Registry, validate *validator.Validate) Service {
	return &service{
		repo:     repo,
		registry: registry,
		validate: validate,
	}
}

func (svc *service) SignUp(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(svc.validate); err != nil {
		return User{}, err
	}

	var known bool
	var err error
	switch nu.Type {
	case TypeProfessor:
		known, err = svc.registry.ProfessorNumberExists(ctx, nu.Username)
	case TypeStudent:
		known, err = svc.registry.StudentNumberExists(ctx, nu.Username)
	}
	if err != nil {
		return User{}, errors.Wrap(err, "checking identifying number")
	}
	if !known {
		return User{}, core.NewAuthError(ReasonCannotSignUp)
	}

	if _, err = svc.repo.FindOne(ctx, core.Filter{"username": nu.Username}); err == nil {
		return User{}, core.NewAuthError(ReasonUsernameExists)
	} else if errors.Cause(err) != core.ErrNoDocuments {
		return User{}, errors.Wrap(err, "finding user by username")
	}

	now := time.Now().UTC()
	usr := User{
		Username:  nu.Username,
		Type:      nu.Type,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err = usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}

	// the unique index still wins a concurrent signup race
	usr.ID, err = svc.repo.Create(ctx, usr)
	if err != nil {
		if errors.Cause(err) == core.ErrDuplicateKey {
			return User{}, core.NewAuthError(ReasonUsernameExists)
		}
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *service) Login(ctx context.Context, creds Credentials) (User, error) {
	if err := creds.Validate(svc.validate); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.FindOne(ctx, core.Filter{"username": creds.Username})
	if err != nil {
		if errors.Cause(err) == core.ErrNoDocuments {
			return User{}, core.NewAuthError(ReasonUnknownUser)
		}
		return User{}, errors.Wrap(err, "finding user by username")
	}
	if err = usr.CheckPassword(creds.Password); err != nil {
		return User{}, core.NewAuthError(ReasonBadCredentials)
	}
	return usr, nil
}

func (svc *service) QueryAll(ctx context.Context, orderings ...core.DBOrdering) ([]User, error) {
	return svc.repo.QueryAll(ctx, orderings...)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	oid, err := core.ParseID(resource, id)
	if err != nil {
		return User{}, err
	}
	usr, err := svc.repo.GetByID(ctx, oid)
	return usr, notFound(err, id)
}

func (svc *service) GetByUsername(ctx context.Context, uname string) (User, error) {
	uname = core.CleanString(uname)
	usr, err := svc.repo.FindOne(ctx, core.Filter{"username": uname})
	return usr, notFound(err, uname)
}

// UpdatePassword stores the hash of the new password; the plaintext is never persisted.
func (svc *service) UpdatePassword(ctx context.Context, id string, up UpdatePassword) (User, error) {
	if err := up.Validate(svc.validate); err != nil {
		return User{}, err
	}
	oid, err := core.ParseID(resource, id)
	if err != nil {
		return User{}, err
	}

	var usr User
	if err = usr.SetPassword(up.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err = svc.repo.Update(ctx, oid, core.Fields{
		"password":  usr.PasswordHash,
		"updatedAt": time.Now().UTC(),
	})
	return usr, notFound(err, id)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	oid, err := core.ParseID(resource, id)
	if err != nil {
		return err
	}
	return notFound(svc.repo.Delete(ctx, oid), id)
}

func notFound(err error, id string) error {
	if err == nil {
		return nil
	}
	if errors.Cause(err) == core.ErrNoDocuments {
		return core.NewNotFoundError(resource, id)
	}
	return err
}
