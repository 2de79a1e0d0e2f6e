package school

import (
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/cpel/core"
)

// Related documents are embedded as copies taken at link time:
// later changes to a child are not reflected in its parents.

type Professor struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Lastname        string             `json:"lastname" bson:"lastname"`
	Firstname       string             `json:"firstname" bson:"firstname"`
	ProfessorNumber string             `json:"professorNumber" bson:"professorNumber"`
	Email           string             `json:"email" bson:"email"`
	IDModule        string             `json:"idModule" bson:"idModule"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"` // UTC
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"` // UTC
}

type Student struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Lastname      string             `json:"lastname" bson:"lastname"`
	Firstname     string             `json:"firstname" bson:"firstname"`
	StudentNumber string             `json:"studentNumber" bson:"studentNumber"`
	Email         string             `json:"email" bson:"email"`
	IDGroup       string             `json:"idGroup" bson:"idGroup"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Group struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Modules   []Module           `json:"modules" bson:"modules"`
	Students  []Student          `json:"students" bson:"students"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Module struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Content     string             `json:"content" bson:"content"`
	Groups      []Group            `json:"groups" bson:"groups"`
	IDProfessor string             `json:"idProfessor" bson:"idProfessor"`
	TDs         []TD               `json:"tds" bson:"tds"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TD is a set of exercises of a Module, due by DateLimit.
type TD struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	IDModule  string             `json:"idModule" bson:"idModule"`
	Exercises []Exercise         `json:"exercises" bson:"exercises"`
	DateLimit time.Time          `json:"dateLimit" bson:"dateLimit"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Exercise struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	IDTD      string             `json:"idTD" bson:"idTD"`
	Wording   string             `json:"wording" bson:"wording"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`
}

type Correction struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	IDExercise     string             `json:"idExercise" bson:"idExercise"`
	CorrectionCode string             `json:"correctionCode" bson:"correctionCode"`
	Content        string             `json:"content" bson:"content"`
	SendCorrection bool               `json:"sendCorrection" bson:"sendCorrection"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// StudentRendering is the work submitted by a Student for an Exercise.
type StudentRendering struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	IDStudent  string             `json:"idStudent" bson:"idStudent"`
	IDExercise string             `json:"idExercise" bson:"idExercise"`
	Content    string             `json:"content" bson:"content"`
	CreatedAt  time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// Payload is the information needed to create a new document of type T.
type Payload[T any] interface {
	Validate(validate *validator.Validate) error
	Document(now time.Time) T
}

// Patch is the information that may be provided to modify an existing document.
// Only non-nil fields are set.
type Patch interface {
	Validate(validate *validator.Validate) error
	Fields() core.Fields
}

// Professor

type NewProfessor struct {
	Lastname        string `json:"lastname" validate:"required,notblank"`
	Firstname       string `json:"firstname" validate:"required,notblank"`
	ProfessorNumber string `json:"professorNumber" validate:"required,notblank"`
	Email           string `json:"email" validate:"omitempty,email"`
	IDModule        string `json:"idModule" validate:"omitempty,objectid"`
}

func (np *NewProfessor) Validate(validate *validator.Validate) error {
	np.Lastname = core.CleanString(np.Lastname)
	np.Firstname = core.CleanString(np.Firstname)
	np.ProfessorNumber = core.CleanString(np.ProfessorNumber)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.IDModule = core.CleanString(np.IDModule, true /* lower */)
	return validate.Struct(np)
}

func (np NewProfessor) Document(now time.Time) Professor {
	return Professor{
		Lastname:        np.Lastname,
		Firstname:       np.Firstname,
		ProfessorNumber: np.ProfessorNumber,
		Email:           np.Email,
		IDModule:        np.IDModule,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

type UpdateProfessor struct {
	Lastname        *string `json:"lastname" validate:"omitempty,notblank"`
	Firstname       *string `json:"firstname" validate:"omitempty,notblank"`
	ProfessorNumber *string `json:"professorNumber" validate:"omitempty,notblank"`
	Email           *string `json:"email" validate:"omitempty,email"`
	IDModule        *string `json:"idModule" validate:"omitempty,objectid"`
}

func (up *UpdateProfessor) Validate(validate *validator.Validate) error {
	cleanPtr(up.Lastname)
	cleanPtr(up.Firstname)
	cleanPtr(up.ProfessorNumber)
	cleanPtr(up.Email, true /* lower */)
	cleanPtr(up.IDModule, true /* lower */)
	return validate.Struct(up)
}

func (up UpdateProfessor) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "lastname", up.Lastname)
	setIfPresent(flds, "firstname", up.Firstname)
	setIfPresent(flds, "professorNumber", up.ProfessorNumber)
	setIfPresent(flds, "email", up.Email)
	setIfPresent(flds, "idModule", up.IDModule)
	return flds
}

// Student

type NewStudent struct {
	Lastname      string `json:"lastname" validate:"required,notblank"`
	Firstname     string `json:"firstname" validate:"required,notblank"`
	StudentNumber string `json:"studentNumber" validate:"required,notblank"`
	Email         string `json:"email" validate:"omitempty,email"`
	IDGroup       string `json:"idGroup" validate:"omitempty,objectid"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Lastname = core.CleanString(ns.Lastname)
	ns.Firstname = core.CleanString(ns.Firstname)
	ns.StudentNumber = core.CleanString(ns.StudentNumber)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.IDGroup = core.CleanString(ns.IDGroup, true /* lower */)
	return validate.Struct(ns)
}

func (ns NewStudent) Document(now time.Time) Student {
	return Student{
		Lastname:      ns.Lastname,
		Firstname:     ns.Firstname,
		StudentNumber: ns.StudentNumber,
		Email:         ns.Email,
		IDGroup:       ns.IDGroup,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

type UpdateStudent struct {
	Lastname      *string `json:"lastname" validate:"omitempty,notblank"`
	Firstname     *string `json:"firstname" validate:"omitempty,notblank"`
	StudentNumber *string `json:"studentNumber" validate:"omitempty,notblank"`
	Email         *string `json:"email" validate:"omitempty,email"`
	IDGroup       *string `json:"idGroup" validate:"omitempty,objectid"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	cleanPtr(us.Lastname)
	cleanPtr(us.Firstname)
	cleanPtr(us.StudentNumber)
	cleanPtr(us.Email, true /* lower */)
	cleanPtr(us.IDGroup, true /* lower */)
	return validate.Struct(us)
}

func (us UpdateStudent) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "lastname", us.Lastname)
	setIfPresent(flds, "firstname", us.Firstname)
	setIfPresent(flds, "studentNumber", us.StudentNumber)
	setIfPresent(flds, "email", us.Email)
	setIfPresent(flds, "idGroup", us.IDGroup)
	return flds
}

// Group

type NewGroup struct {
	Name string `json:"name" validate:"required,notblank"`
}

func (ng *NewGroup) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}

func (ng NewGroup) Document(now time.Time) Group {
	return Group{
		Name:      ng.Name,
		Modules:   []Module{},
		Students:  []Student{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UpdateGroup struct {
	Name *string `json:"name" validate:"omitempty,notblank"`
}

func (ug *UpdateGroup) Validate(validate *validator.Validate) error {
	cleanPtr(ug.Name)
	return validate.Struct(ug)
}

func (ug UpdateGroup) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "name", ug.Name)
	return flds
}

// Module

type NewModule struct {
	Name        string `json:"name" validate:"required,notblank"`
	Content     string `json:"content"`
	IDProfessor string `json:"idProfessor" validate:"omitempty,objectid"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.IDProfessor = core.CleanString(nm.IDProfessor, true /* lower */)
	return validate.Struct(nm)
}

func (nm NewModule) Document(now time.Time) Module {
	return Module{
		Name:        nm.Name,
		Content:     nm.Content,
		Groups:      []Group{},
		IDProfessor: nm.IDProfessor,
		TDs:         []TD{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

type UpdateModule struct {
	Name        *string `json:"name" validate:"omitempty,notblank"`
	Content     *string `json:"content"`
	IDProfessor *string `json:"idProfessor" validate:"omitempty,objectid"`
}

func (um *UpdateModule) Validate(validate *validator.Validate) error {
	cleanPtr(um.Name)
	cleanPtr(um.IDProfessor, true /* lower */)
	return validate.Struct(um)
}

func (um UpdateModule) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "name", um.Name)
	setIfPresent(flds, "content", um.Content)
	setIfPresent(flds, "idProfessor", um.IDProfessor)
	return flds
}

// TD

type NewTD struct {
	Name      string    `json:"name" validate:"required,notblank"`
	IDModule  string    `json:"idModule" validate:"omitempty,objectid"`
	DateLimit time.Time `json:"dateLimit"`
}

func (nt *NewTD) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.IDModule = core.CleanString(nt.IDModule, true /* lower */)
	return validate.Struct(nt)
}

func (nt NewTD) Document(now time.Time) TD {
	return TD{
		Name:      nt.Name,
		IDModule:  nt.IDModule,
		Exercises: []Exercise{},
		DateLimit: nt.DateLimit.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UpdateTD struct {
	Name      *string    `json:"name" validate:"omitempty,notblank"`
	IDModule  *string    `json:"idModule" validate:"omitempty,objectid"`
	DateLimit *time.Time `json:"dateLimit"`
}

func (ut *UpdateTD) Validate(validate *validator.Validate) error {
	cleanPtr(ut.Name)
	cleanPtr(ut.IDModule, true /* lower */)
	return validate.Struct(ut)
}

func (ut UpdateTD) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "name", ut.Name)
	setIfPresent(flds, "idModule", ut.IDModule)
	if ut.DateLimit != nil {
		flds["dateLimit"] = ut.DateLimit.UTC()
	}
	return flds
}

// Exercise

type NewExercise struct {
	Name    string `json:"name" validate:"required,notblank"`
	IDTD    string `json:"idTD" validate:"omitempty,objectid"`
	Wording string `json:"wording"`
}

func (ne *NewExercise) Validate(validate *validator.Validate) error {
	ne.Name = core.CleanString(ne.Name)
	ne.IDTD = core.CleanString(ne.IDTD, true /* lower */)
	return validate.Struct(ne)
}

func (ne NewExercise) Document(now time.Time) Exercise {
	return Exercise{
		Name:      ne.Name,
		IDTD:      ne.IDTD,
		Wording:   ne.Wording,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type UpdateExercise struct {
	Name    *string `json:"name" validate:"omitempty,notblank"`
	IDTD    *string `json:"idTD" validate:"omitempty,objectid"`
	Wording *string `json:"wording"`
}

func (ue *UpdateExercise) Validate(validate *validator.Validate) error {
	cleanPtr(ue.Name)
	cleanPtr(ue.IDTD, true /* lower */)
	return validate.Struct(ue)
}

func (ue UpdateExercise) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "name", ue.Name)
	setIfPresent(flds, "idTD", ue.IDTD)
	setIfPresent(flds, "wording", ue.Wording)
	return flds
}

// Correction

type NewCorrection struct {
	IDExercise     string `json:"idExercise" validate:"required,objectid"`
	CorrectionCode string `json:"correctionCode"`
	Content        string `json:"content"`
	SendCorrection bool   `json:"sendCorrection"`
}

func (nc *NewCorrection) Validate(validate *validator.Validate) error {
	nc.IDExercise = core.CleanString(nc.IDExercise, true /* lower */)
	return validate.Struct(nc)
}

func (nc NewCorrection) Document(now time.Time) Correction {
	return Correction{
		IDExercise:     nc.IDExercise,
		CorrectionCode: nc.CorrectionCode,
		Content:        nc.Content,
		SendCorrection: nc.SendCorrection,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

type UpdateCorrection struct {
	IDExercise     *string `json:"idExercise" validate:"omitempty,objectid"`
	CorrectionCode *string `json:"correctionCode"`
	Content        *string `json:"content"`
	SendCorrection *bool   `json:"sendCorrection"`
}

func (uc *UpdateCorrection) Validate(validate *validator.Validate) error {
	cleanPtr(uc.IDExercise, true /* lower */)
	return validate.Struct(uc)
}

func (uc UpdateCorrection) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "idExercise", uc.IDExercise)
	setIfPresent(flds, "correctionCode", uc.CorrectionCode)
	setIfPresent(flds, "content", uc.Content)
	if uc.SendCorrection != nil {
		flds["sendCorrection"] = *uc.SendCorrection
	}
	return flds
}

// StudentRendering

type NewStudentRendering struct {
	IDStudent  string `json:"idStudent" validate:"required,objectid"`
	IDExercise string `json:"idExercise" validate:"required,objectid"`
	Content    string `json:"content"`
}

func (nr *NewStudentRendering) Validate(validate *validator.Validate) error {
	nr.IDStudent = core.CleanString(nr.IDStudent, true /* lower */)
	nr.IDExercise = core.CleanString(nr.IDExercise, true /* lower */)
	return validate.Struct(nr)
}

func (nr NewStudentRendering) Document(now time.Time) StudentRendering {
	return StudentRendering{
		IDStudent:  nr.IDStudent,
		IDExercise: nr.IDExercise,
		Content:    nr.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type UpdateStudentRendering struct {
	IDStudent  *string `json:"idStudent" validate:"omitempty,objectid"`
	IDExercise *string `json:"idExercise" validate:"omitempty,objectid"`
	Content    *string `json:"content"`
}

func (ur *UpdateStudentRendering) Validate(validate *validator.Validate) error {
	cleanPtr(ur.IDStudent, true /* lower */)
	cleanPtr(ur.IDExercise, true /* lower */)
	return validate.Struct(ur)
}

func (ur UpdateStudentRendering) Fields() core.Fields {
	flds := make(core.Fields)
	setIfPresent(flds, "idStudent", ur.IDStudent)
	setIfPresent(flds, "idExercise", ur.IDExercise)
	setIfPresent(flds, "content", ur.Content)
	return flds
}

func cleanPtr(s *string, lower ...bool) {
	if s != nil {
		*s = core.CleanString(*s, lower...)
	}
}

func setIfPresent(flds core.Fields, name string, val *string) {
	if val != nil {
		flds[name] = *val
	}
}
