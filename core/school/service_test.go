package school_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/school"
	inmemdb "github.com/trezcool/cpel/storage/database/inmem"
)

func newService(t *testing.T) *school.Service {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)

	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	return school.NewService(inmemdb.NewRepositories(db), validate)
}

func strPtr(s string) *string { return &s }

func TestCollection_CRUD(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	id, err := svc.Professors.Create(ctx, &school.NewProfessor{
		Lastname:        " Liskov ",
		Firstname:       "Barbara",
		ProfessorNumber: "P001",
		Email:           "Barbara@MIT.edu",
	})
	require.NoError(t, err)

	prof, err := svc.Professors.GetByID(ctx, id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, prof.ID)
	assert.Equal(t, "Liskov", prof.Lastname)
	assert.Equal(t, "Barbara", prof.Firstname)
	assert.Equal(t, "P001", prof.ProfessorNumber)
	assert.Equal(t, "barbara@mit.edu", prof.Email)
	assert.False(t, prof.CreatedAt.IsZero())

	updated, err := svc.Professors.Update(ctx, id.Hex(), &school.UpdateProfessor{Firstname: strPtr("Barb")})
	require.NoError(t, err)
	assert.Equal(t, "Barb", updated.Firstname)
	assert.Equal(t, "Liskov", updated.Lastname) // untouched
	assert.False(t, updated.UpdatedAt.Before(prof.UpdatedAt))

	all, err := svc.Professors.QueryAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Professors.Delete(ctx, id.Hex()))
	_, err = svc.Professors.GetByID(ctx, id.Hex())
	assert.True(t, core.IsNotFound(err))
	assert.True(t, core.IsNotFound(svc.Professors.Delete(ctx, id.Hex())))
}

func TestCollection_NotFoundAndValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)
	missing := primitive.NewObjectID().Hex()

	for _, id := range []string{missing, "malformed", ""} {
		_, err := svc.Students.GetByID(ctx, id)
		assert.True(t, core.IsNotFound(err), id)
		_, err = svc.Students.Update(ctx, id, &school.UpdateStudent{Lastname: strPtr("x")})
		assert.True(t, core.IsNotFound(err), id)
		assert.True(t, core.IsNotFound(svc.Students.Delete(ctx, id)), id)
	}

	_, err := svc.Students.Create(ctx, &school.NewStudent{Lastname: "Only"})
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	require.True(t, ok, "unexpected error: %v", err)
	var flds []string
	for _, fErr := range vErrs {
		flds = append(flds, fErr.Field())
	}
	assert.ElementsMatch(t, []string{"firstname", "studentNumber"}, flds)

	_, err = svc.Modules.Create(ctx, &school.NewModule{Name: "M", IDProfessor: "not-an-id"})
	assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))

	_, err = svc.Groups.Create(ctx, &school.NewGroup{Name: "   "})
	assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))

	_, err = svc.Corrections.Create(ctx, &school.NewCorrection{})
	assert.IsType(t, validator.ValidationErrors{}, errors.Cause(err))
}

func TestService_DerivedQueries(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	profID, err := svc.Professors.Create(ctx, &school.NewProfessor{Lastname: "Ritchie", Firstname: "Dennis", ProfessorNumber: "P002"})
	require.NoError(t, err)
	modID, err := svc.Modules.Create(ctx, &school.NewModule{Name: "C", Content: "pointers", IDProfessor: profID.Hex()})
	require.NoError(t, err)
	_, err = svc.Modules.Create(ctx, &school.NewModule{Name: "Other"})
	require.NoError(t, err)

	mods, err := svc.ModulesOfProfessor(ctx, profID.Hex())
	require.NoError(t, err)
	require.Len(t, mods, 1)
	assert.Equal(t, modID, mods[0].ID)

	tdID, err := svc.TDs.Create(ctx, &school.NewTD{Name: "TD1", IDModule: modID.Hex(), DateLimit: time.Now().Add(24 * time.Hour)})
	require.NoError(t, err)
	exID, err := svc.Exercises.Create(ctx, &school.NewExercise{Name: "Ex1", IDTD: tdID.Hex(), Wording: "malloc"})
	require.NoError(t, err)

	exs, err := svc.ExercisesOfTD(ctx, tdID.Hex())
	require.NoError(t, err)
	require.Len(t, exs, 1)
	assert.Equal(t, exID, exs[0].ID)

	corrID, err := svc.Corrections.Create(ctx, &school.NewCorrection{IDExercise: exID.Hex(), CorrectionCode: "free(p)", SendCorrection: true})
	require.NoError(t, err)
	corrs, err := svc.CorrectionsOfExercise(ctx, exID.Hex())
	require.NoError(t, err)
	require.Len(t, corrs, 1)
	assert.Equal(t, corrID, corrs[0].ID)
	assert.True(t, corrs[0].SendCorrection)

	studID, err := svc.Students.Create(ctx, &school.NewStudent{Lastname: "Thompson", Firstname: "Ken", StudentNumber: "S002"})
	require.NoError(t, err)
	otherExID, err := svc.Exercises.Create(ctx, &school.NewExercise{Name: "Ex2"})
	require.NoError(t, err)
	for _, ex := range []primitive.ObjectID{exID, otherExID, exID} {
		_, err = svc.StudentRenderings.Create(ctx, &school.NewStudentRendering{IDStudent: studID.Hex(), IDExercise: ex.Hex(), Content: "code"})
		require.NoError(t, err)
	}

	rends, err := svc.RenderingsOfStudent(ctx, studID.Hex())
	require.NoError(t, err)
	assert.Len(t, rends, 3)

	rends, err = svc.RenderingsOfStudentExercise(ctx, studID.Hex(), exID.Hex())
	require.NoError(t, err)
	assert.Len(t, rends, 2)

	rends, err = svc.RenderingsOfStudent(ctx, primitive.NewObjectID().Hex())
	require.NoError(t, err)
	assert.Empty(t, rends)
}

func TestService_Linking(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	grpID, err := svc.Groups.Create(ctx, &school.NewGroup{Name: "G1"})
	require.NoError(t, err)
	studID, err := svc.Students.Create(ctx, &school.NewStudent{Lastname: "Pike", Firstname: "Rob", StudentNumber: "S003"})
	require.NoError(t, err)
	modID, err := svc.Modules.Create(ctx, &school.NewModule{Name: "Go"})
	require.NoError(t, err)
	tdID, err := svc.TDs.Create(ctx, &school.NewTD{Name: "TD1"})
	require.NoError(t, err)
	exID, err := svc.Exercises.Create(ctx, &school.NewExercise{Name: "Ex1"})
	require.NoError(t, err)

	// attaching twice embeds two copies
	var grp school.Group
	for i := 0; i < 2; i++ {
		grp, err = svc.AttachStudentToGroup(ctx, grpID.Hex(), studID.Hex())
		require.NoError(t, err)
	}
	require.Len(t, grp.Students, 2)
	assert.Equal(t, studID, grp.Students[0].ID)
	assert.Equal(t, "Pike", grp.Students[1].Lastname)

	grp, err = svc.AttachModuleToGroup(ctx, grpID.Hex(), modID.Hex())
	require.NoError(t, err)
	require.Len(t, grp.Modules, 1)
	assert.Equal(t, "Go", grp.Modules[0].Name)

	mod, err := svc.AttachGroupToModule(ctx, modID.Hex(), grpID.Hex())
	require.NoError(t, err)
	require.Len(t, mod.Groups, 1)
	assert.Equal(t, grpID, mod.Groups[0].ID)

	mod, err = svc.AttachTDToModule(ctx, modID.Hex(), tdID.Hex())
	require.NoError(t, err)
	require.Len(t, mod.TDs, 1)
	assert.Equal(t, tdID, mod.TDs[0].ID)

	td, err := svc.AttachExerciseToTD(ctx, tdID.Hex(), exID.Hex())
	require.NoError(t, err)
	require.Len(t, td.Exercises, 1)
	assert.Equal(t, exID, td.Exercises[0].ID)

	// copies are taken at link time
	_, err = svc.Students.Update(ctx, studID.Hex(), &school.UpdateStudent{Lastname: strPtr("Changed")})
	require.NoError(t, err)
	grp, err = svc.Groups.GetByID(ctx, grpID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Pike", grp.Students[0].Lastname)

	// unknown child or parent
	missing := primitive.NewObjectID().Hex()
	_, err = svc.AttachStudentToGroup(ctx, grpID.Hex(), missing)
	assert.True(t, core.IsNotFound(err))
	_, err = svc.AttachStudentToGroup(ctx, missing, studID.Hex())
	assert.True(t, core.IsNotFound(err))
	_, err = svc.AttachExerciseToTD(ctx, "bad", exID.Hex())
	assert.True(t, core.IsNotFound(err))
}

func TestService_AttachResolvesChild(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	modID, err := svc.Modules.Create(ctx, &school.NewModule{Name: "Go"})
	require.NoError(t, err)
	grpID, err := svc.Groups.Create(ctx, &school.NewGroup{Name: "G1"})
	require.NoError(t, err)
	tdID, err := svc.TDs.Create(ctx, &school.NewTD{Name: "TD1"})
	require.NoError(t, err)
	studID, err := svc.Students.Create(ctx, &school.NewStudent{Lastname: "Cox", Firstname: "Russ", StudentNumber: "S004"})
	require.NoError(t, err)

	mod, err := svc.AttachToModule(ctx, modID.Hex(), grpID.Hex())
	require.NoError(t, err)
	assert.Len(t, mod.Groups, 1)
	assert.Empty(t, mod.TDs)

	mod, err = svc.AttachToModule(ctx, modID.Hex(), tdID.Hex())
	require.NoError(t, err)
	assert.Len(t, mod.Groups, 1)
	assert.Len(t, mod.TDs, 1)

	grp, err := svc.AttachToGroup(ctx, grpID.Hex(), modID.Hex())
	require.NoError(t, err)
	assert.Len(t, grp.Modules, 1)

	grp, err = svc.AttachToGroup(ctx, grpID.Hex(), studID.Hex())
	require.NoError(t, err)
	assert.Len(t, grp.Students, 1)

	_, err = svc.AttachToModule(ctx, modID.Hex(), studID.Hex())
	assert.True(t, core.IsNotFound(err))
	_, err = svc.AttachToGroup(ctx, grpID.Hex(), tdID.Hex())
	assert.True(t, core.IsNotFound(err))

	// a missing parent is reported as such
	_, err = svc.AttachToModule(ctx, primitive.NewObjectID().Hex(), grpID.Hex())
	nfErr, ok := errors.Cause(err).(*core.NotFoundError)
	require.True(t, ok, "unexpected error: %v", err)
	assert.Equal(t, school.ResourceModule, nfErr.Resource)
}

func TestService_OwnerIDsAreCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	profID, err := svc.Professors.Create(ctx, &school.NewProfessor{Lastname: "Backus", Firstname: "John", ProfessorNumber: "P005"})
	require.NoError(t, err)
	upper := strings.ToUpper(profID.Hex())

	modID, err := svc.Modules.Create(ctx, &school.NewModule{Name: "Fortran", IDProfessor: upper})
	require.NoError(t, err)

	mod, err := svc.Modules.GetByID(ctx, modID.Hex())
	require.NoError(t, err)
	assert.Equal(t, profID.Hex(), mod.IDProfessor)

	for _, id := range []string{profID.Hex(), upper} {
		mods, err := svc.ModulesOfProfessor(ctx, id)
		require.NoError(t, err)
		require.Len(t, mods, 1, id)
		assert.Equal(t, modID, mods[0].ID)
	}

	otherID, err := svc.Modules.Create(ctx, &school.NewModule{Name: "Algol"})
	require.NoError(t, err)
	_, err = svc.Modules.Update(ctx, otherID.Hex(), &school.UpdateModule{IDProfessor: strPtr(" " + upper + " ")})
	require.NoError(t, err)

	mods, err := svc.ModulesOfProfessor(ctx, upper)
	require.NoError(t, err)
	assert.Len(t, mods, 2)
}
