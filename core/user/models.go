package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/cpel/core"
)

// Types
const (
	TypeProfessor = "professor"
	TypeStudent   = "student"
)

var Types = []string{TypeProfessor, TypeStudent}

type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Username     string             `json:"username" bson:"username"`
	PasswordHash string             `json:"-" bson:"password"`
	Type         string             `json:"type" bson:"type"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

func (u *User) IsProfessor() bool {
	return u.Type == TypeProfessor
}

func (u *User) IsStudent() bool {
	return u.Type == TypeStudent
}

// NewUser contains information needed to sign up a new User.
// Username must be the professorNumber or studentNumber matching Type.
type NewUser struct {
	Username string `json:"username" validate:"required,notblank"`
	Password string `json:"password" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=professor student"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username)
	nu.Type = core.CleanString(nu.Type, true /* lower */)
	return validate.Struct(nu)
}

// UpdatePassword defines the information needed to replace a User's password.
type UpdatePassword struct {
	Password string `json:"password" validate:"required"`
}

func (up UpdatePassword) Validate(validate *validator.Validate) error { return validate.Struct(up) }

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate(validate *validator.Validate) error {
	c.Username = core.CleanString(c.Username)
	return validate.Struct(c)
}
