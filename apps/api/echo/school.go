package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/cpel/core/school"
)

// crudAPI serves the CRUD endpoints of one collection:
//
//	POST   /<resource>
//	GET    /<resource>s
//	GET    /<resource>s/:id
//	PUT    /<resource>/:id
//	DELETE /<resource>/:id
type crudAPI[T any] struct {
	coll       *school.Collection[T]
	newPayload func() school.Payload[T]
	newPatch   func() school.Patch
	sortable   map[string]string
}

func registerCRUD[T any](
	g *echo.Group,
	coll *school.Collection[T],
	newPayload func() school.Payload[T],
	newPatch func() school.Patch,
) {
	api := crudAPI[T]{
		coll:       coll,
		newPayload: newPayload,
		newPatch:   newPatch,
		sortable:   sortableFields[T](),
	}
	res := coll.Resource()

	g.POST("/"+res, api.create)
	g.GET("/"+res+"s", api.query)
	g.GET("/"+res+"s/:id", api.retrieve)
	g.PUT("/"+res+"/:id", api.update)
	g.DELETE("/"+res+"/:id", api.destroy)
}

func (api *crudAPI[T]) create(ctx echo.Context) error {
	data := api.newPayload()
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding to new %s", api.coll.Resource())
	}

	id, err := api.coll.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return created(ctx, "/"+api.coll.Resource()+"s/"+id.Hex(), id.Hex())
}

func (api *crudAPI[T]) query(ctx echo.Context) error {
	var ord Ordering
	if err := ord.Bind(ctx, api.sortable); err != nil {
		return err
	}

	docs, err := api.coll.QueryAll(ctx.Request().Context(), ord.Orderings...)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, docs)
}

func (api *crudAPI[T]) retrieve(ctx echo.Context) error {
	doc, err := api.coll.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *crudAPI[T]) update(ctx echo.Context) error {
	data := api.newPatch()
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding to %s update", api.coll.Resource())
	}

	doc, err := api.coll.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *crudAPI[T]) destroy(ctx echo.Context) error {
	if err := api.coll.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type schoolApi struct {
	svc *school.Service
}

func registerSchoolAPI(g *echo.Group, svc *school.Service) {
	registerCRUD(g, svc.Professors,
		func() school.Payload[school.Professor] { return new(school.NewProfessor) },
		func() school.Patch { return new(school.UpdateProfessor) })
	registerCRUD(g, svc.Students,
		func() school.Payload[school.Student] { return new(school.NewStudent) },
		func() school.Patch { return new(school.UpdateStudent) })
	registerCRUD(g, svc.Groups,
		func() school.Payload[school.Group] { return new(school.NewGroup) },
		func() school.Patch { return new(school.UpdateGroup) })
	registerCRUD(g, svc.Modules,
		func() school.Payload[school.Module] { return new(school.NewModule) },
		func() school.Patch { return new(school.UpdateModule) })
	registerCRUD(g, svc.TDs,
		func() school.Payload[school.TD] { return new(school.NewTD) },
		func() school.Patch { return new(school.UpdateTD) })
	registerCRUD(g, svc.Exercises,
		func() school.Payload[school.Exercise] { return new(school.NewExercise) },
		func() school.Patch { return new(school.UpdateExercise) })
	registerCRUD(g, svc.Corrections,
		func() school.Payload[school.Correction] { return new(school.NewCorrection) },
		func() school.Patch { return new(school.UpdateCorrection) })
	registerCRUD(g, svc.StudentRenderings,
		func() school.Payload[school.StudentRendering] { return new(school.NewStudentRendering) },
		func() school.Patch { return new(school.UpdateStudentRendering) })

	api := schoolApi{svc: svc}

	// derived queries
	g.GET("/professors/:id/modules", api.professorModules)
	g.GET("/tds/:id/exercises", api.tdExercises)
	g.GET("/exercises/:id/corrections", api.exerciseCorrections)
	g.GET("/students/:id/studentRenderings", api.studentRenderings)
	g.GET("/students/:id/:exerciseId/studentRenderings", api.studentExerciseRenderings)

	// linking: the untyped forms resolve the child id against each collection in turn
	g.PUT("/module/:id/:childId", api.attachToModule)
	g.PUT("/module/:id/group/:childId", api.attachGroupToModule)
	g.PUT("/module/:id/td/:childId", api.attachTDToModule)
	g.PUT("/group/:id/:childId", api.attachToGroup)
	g.PUT("/group/:id/module/:childId", api.attachModuleToGroup)
	g.PUT("/group/:id/student/:childId", api.attachStudentToGroup)
	g.PUT("/td/:id/:childId", api.attachExerciseToTD)
}

// Derived queries

func (api *schoolApi) professorModules(ctx echo.Context) error {
	mods, err := api.svc.ModulesOfProfessor(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mods)
}

func (api *schoolApi) tdExercises(ctx echo.Context) error {
	exs, err := api.svc.ExercisesOfTD(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, exs)
}

func (api *schoolApi) exerciseCorrections(ctx echo.Context) error {
	corrs, err := api.svc.CorrectionsOfExercise(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, corrs)
}

func (api *schoolApi) studentRenderings(ctx echo.Context) error {
	rends, err := api.svc.RenderingsOfStudent(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rends)
}

func (api *schoolApi) studentExerciseRenderings(ctx echo.Context) error {
	rends, err := api.svc.RenderingsOfStudentExercise(ctx.Request().Context(), ctx.Param("id"), ctx.Param("exerciseId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rends)
}

// Linking

func (api *schoolApi) attachToModule(ctx echo.Context) error {
	mod, err := api.svc.AttachToModule(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *schoolApi) attachGroupToModule(ctx echo.Context) error {
	mod, err := api.svc.AttachGroupToModule(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *schoolApi) attachTDToModule(ctx echo.Context) error {
	mod, err := api.svc.AttachTDToModule(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, mod)
}

func (api *schoolApi) attachToGroup(ctx echo.Context) error {
	grp, err := api.svc.AttachToGroup(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *schoolApi) attachModuleToGroup(ctx echo.Context) error {
	grp, err := api.svc.AttachModuleToGroup(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *schoolApi) attachStudentToGroup(ctx echo.Context) error {
	grp, err := api.svc.AttachStudentToGroup(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *schoolApi) attachExerciseToTD(ctx echo.Context) error {
	td, err := api.svc.AttachExerciseToTD(ctx.Request().Context(), ctx.Param("id"), ctx.Param("childId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, td)
}

// created responds with 201, the new document's id and its location.
func created(ctx echo.Context, location, id string) error {
	ctx.Response().Header().Set(echo.HeaderLocation, location)
	return ctx.JSON(http.StatusCreated, echo.Map{"id": id, "location": location})
}
