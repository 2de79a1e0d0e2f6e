package school

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/user"
)

// Resource names, also used in error messages and API paths.
const (
	ResourceProfessor        = "professor"
	ResourceStudent          = "student"
	ResourceGroup            = "group"
	ResourceModule           = "module"
	ResourceTD               = "td"
	ResourceExercise         = "exercise"
	ResourceCorrection       = "correction"
	ResourceStudentRendering = "studentRendering"
)

type Repositories struct {
	Professors        core.Repository[Professor]
	Students          core.Repository[Student]
	Groups            core.Repository[Group]
	Modules           core.Repository[Module]
	TDs               core.Repository[TD]
	Exercises         core.Repository[Exercise]
	Corrections       core.Repository[Correction]
	StudentRenderings core.Repository[StudentRendering]
}

type Service struct {
	Professors        *Collection[Professor]
	Students          *Collection[Student]
	Groups            *Collection[Group]
	Modules           *Collection[Module]
	TDs               *Collection[TD]
	Exercises         *Collection[Exercise]
	Corrections       *Collection[Correction]
	StudentRenderings *Collection[StudentRendering]
}

var _ user.Registry = (*Service)(nil)

func NewService(repos Repositories, validate *validator.Validate) *Service {
	return &Service{
		Professors:        NewCollection(ResourceProfessor, repos.Professors, validate),
		Students:          NewCollection(ResourceStudent, repos.Students, validate),
		Groups:            NewCollection(ResourceGroup, repos.Groups, validate),
		Modules:           NewCollection(ResourceModule, repos.Modules, validate),
		TDs:               NewCollection(ResourceTD, repos.TDs, validate),
		Exercises:         NewCollection(ResourceExercise, repos.Exercises, validate),
		Corrections:       NewCollection(ResourceCorrection, repos.Corrections, validate),
		StudentRenderings: NewCollection(ResourceStudentRendering, repos.StudentRenderings, validate),
	}
}

func (svc *Service) ProfessorNumberExists(ctx context.Context, number string) (bool, error) {
	return svc.Professors.Exists(ctx, core.Filter{"professorNumber": number})
}

func (svc *Service) StudentNumberExists(ctx context.Context, number string) (bool, error) {
	return svc.Students.Exists(ctx, core.Filter{"studentNumber": number})
}

func (svc *Service) ModulesOfProfessor(ctx context.Context, professorID string) ([]Module, error) {
	return svc.Modules.Filter(ctx, core.Filter{"idProfessor": core.CleanString(professorID, true /* lower */)})
}

func (svc *Service) ExercisesOfTD(ctx context.Context, tdID string) ([]Exercise, error) {
	return svc.Exercises.Filter(ctx, core.Filter{"idTD": core.CleanString(tdID, true /* lower */)})
}

func (svc *Service) CorrectionsOfExercise(ctx context.Context, exerciseID string) ([]Correction, error) {
	return svc.Corrections.Filter(ctx, core.Filter{"idExercise": core.CleanString(exerciseID, true /* lower */)})
}

func (svc *Service) RenderingsOfStudent(ctx context.Context, studentID string) ([]StudentRendering, error) {
	return svc.StudentRenderings.Filter(ctx, core.Filter{"idStudent": core.CleanString(studentID, true /* lower */)})
}

func (svc *Service) RenderingsOfStudentExercise(ctx context.Context, studentID, exerciseID string) ([]StudentRendering, error) {
	return svc.StudentRenderings.Filter(ctx, core.Filter{
		"idStudent":  core.CleanString(studentID, true /* lower */),
		"idExercise": core.CleanString(exerciseID, true /* lower */),
	})
}
