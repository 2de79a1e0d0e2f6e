package echoapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/trezcool/cpel/core/school"
)

func Test_crudAPI_professor(t *testing.T) {
	db.Reset()

	id := createdID(t, do(http.MethodPost, "/professor", []byte(`{
		"lastname": "Hamilton",
		"firstname": "Margaret",
		"professorNumber": "P100",
		"email": "margaret@nasa.gov"
	}`)))
	missing := primitive.NewObjectID().Hex()
	notFound := func(id string) []byte {
		return marchallObj(t, httpErr{Error: `professor "` + id + `" not found`})
	}

	tests := []httpTest{
		{
			name:     "create: missing fields",
			method:   http.MethodPost,
			path:     "/professor",
			body:     []byte(`{"lastname": "Only"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"firstname": "this field is required", "professorNumber": "this field is required"}`),
		},
		{
			name:     "create: malformed body",
			method:   http.MethodPost,
			path:     "/professor",
			body:     []byte(`{"lastname": 42}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "retrieve: missing", method: http.MethodGet, path: "/professors/" + missing, wantCode: http.StatusNotFound, wantData: notFound(missing)},
		{name: "retrieve: malformed id", method: http.MethodGet, path: "/professors/lol", wantCode: http.StatusNotFound, wantData: notFound("lol")},
		{
			name:     "update: invalid",
			method:   http.MethodPut,
			path:     "/professor/" + id,
			body:     []byte(`{"email": "not-an-email"}`),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "update: missing",
			method:   http.MethodPut,
			path:     "/professor/" + missing,
			body:     []byte(`{"firstname": "M"}`),
			wantCode: http.StatusNotFound,
			wantData: notFound(missing),
		},
		{name: "delete: missing", method: http.MethodDelete, path: "/professor/" + missing, wantCode: http.StatusNotFound, wantData: notFound(missing)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, do(tt.method, tt.path, tt.body))
		})
	}

	t.Run("retrieve", func(t *testing.T) {
		rec := do(http.MethodGet, "/professors/"+id)
		require.Equal(t, http.StatusOK, rec.Code)
		var prof school.Professor
		decode(t, rec, &prof)
		assert.Equal(t, id, prof.ID.Hex())
		assert.Equal(t, "Hamilton", prof.Lastname)
		assert.Equal(t, "P100", prof.ProfessorNumber)
	})

	t.Run("update", func(t *testing.T) {
		rec := do(http.MethodPut, "/professor/"+id, []byte(`{"firstname": "Maggie"}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var prof school.Professor
		decode(t, rec, &prof)
		assert.Equal(t, "Maggie", prof.Firstname)
		assert.Equal(t, "Hamilton", prof.Lastname)
	})

	t.Run("query", func(t *testing.T) {
		createdID(t, do(http.MethodPost, "/professor", []byte(`{"lastname": "Allen", "firstname": "Frances", "professorNumber": "P101"}`)))

		rec := do(http.MethodGet, "/professors?ordering=lastname")
		require.Equal(t, http.StatusOK, rec.Code)
		var profs []school.Professor
		decode(t, rec, &profs)
		require.Len(t, profs, 2)
		assert.Equal(t, "Allen", profs[0].Lastname)
		assert.Equal(t, "Hamilton", profs[1].Lastname)
	})

	t.Run("delete", func(t *testing.T) {
		rec := do(http.MethodDelete, "/professor/"+id)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/professors/"+id).Code)
	})
}

func Test_crudAPI_emptyCollections(t *testing.T) {
	db.Reset()

	for _, path := range []string{
		"/professors", "/students", "/groups", "/modules", "/tds", "/exercises", "/corrections", "/studentRenderings", "/users",
	} {
		t.Run(path, func(t *testing.T) {
			checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: []byte(`[]`)}, do(http.MethodGet, path))
		})
	}
}

// professor -> module -> TD -> exercise -> correction/rendering, through the HTTP surface only.
func Test_schoolApi_scenario(t *testing.T) {
	db.Reset()

	profID := createdID(t, do(http.MethodPost, "/professor", []byte(`{"lastname": "Wirth", "firstname": "Niklaus", "professorNumber": "P200"}`)))
	modID := createdID(t, do(http.MethodPost, "/module", marchallObj(t, school.NewModule{Name: "Pascal", Content: "begin end", IDProfessor: profID})))
	_ = createdID(t, do(http.MethodPost, "/module", []byte(`{"name": "Unowned"}`)))

	t.Run("modules of professor", func(t *testing.T) {
		rec := do(http.MethodGet, "/professors/"+profID+"/modules")
		require.Equal(t, http.StatusOK, rec.Code)
		var mods []school.Module
		decode(t, rec, &mods)
		require.Len(t, mods, 1)
		assert.Equal(t, modID, mods[0].ID.Hex())
		assert.Equal(t, "Pascal", mods[0].Name)
	})

	tdID := createdID(t, do(http.MethodPost, "/td", []byte(`{"name": "TD1", "idModule": "`+modID+`", "dateLimit": "2030-01-02T15:04:05Z"}`)))
	exID := createdID(t, do(http.MethodPost, "/exercise", []byte(`{"name": "Ex1", "idTD": "`+tdID+`", "wording": "sort it"}`)))

	t.Run("exercises of TD", func(t *testing.T) {
		rec := do(http.MethodGet, "/tds/"+tdID+"/exercises")
		require.Equal(t, http.StatusOK, rec.Code)
		var exs []school.Exercise
		decode(t, rec, &exs)
		require.Len(t, exs, 1)
		assert.Equal(t, exID, exs[0].ID.Hex())
	})

	t.Run("corrections of exercise", func(t *testing.T) {
		corrID := createdID(t, do(http.MethodPost, "/correction", []byte(`{"idExercise": "`+exID+`", "correctionCode": "qsort", "sendCorrection": true}`)))
		rec := do(http.MethodGet, "/exercises/"+exID+"/corrections")
		require.Equal(t, http.StatusOK, rec.Code)
		var corrs []school.Correction
		decode(t, rec, &corrs)
		require.Len(t, corrs, 1)
		assert.Equal(t, corrID, corrs[0].ID.Hex())
	})

	studID := createdID(t, do(http.MethodPost, "/student", []byte(`{"lastname": "Dijkstra", "firstname": "Edsger", "studentNumber": "S200"}`)))

	t.Run("renderings of student", func(t *testing.T) {
		otherExID := createdID(t, do(http.MethodPost, "/exercise", []byte(`{"name": "Ex2"}`)))
		for _, ex := range []string{exID, otherExID} {
			createdID(t, do(http.MethodPost, "/studentRendering", []byte(`{"idStudent": "`+studID+`", "idExercise": "`+ex+`", "content": "..."}`)))
		}

		rec := do(http.MethodGet, "/students/"+studID+"/studentRenderings")
		require.Equal(t, http.StatusOK, rec.Code)
		var rends []school.StudentRendering
		decode(t, rec, &rends)
		assert.Len(t, rends, 2)

		rec = do(http.MethodGet, "/students/"+studID+"/"+exID+"/studentRenderings")
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &rends)
		require.Len(t, rends, 1)
		assert.Equal(t, exID, rends[0].IDExercise)
	})

	t.Run("td date limit", func(t *testing.T) {
		rec := do(http.MethodGet, "/tds/"+tdID)
		require.Equal(t, http.StatusOK, rec.Code)
		var td school.TD
		decode(t, rec, &td)
		assert.Equal(t, "2030-01-02T15:04:05Z", td.DateLimit.UTC().Format("2006-01-02T15:04:05Z07:00"))
	})
}

func Test_schoolApi_linking(t *testing.T) {
	db.Reset()

	grpID := createdID(t, do(http.MethodPost, "/group", []byte(`{"name": "G1"}`)))
	modID := createdID(t, do(http.MethodPost, "/module", []byte(`{"name": "Go"}`)))
	tdID := createdID(t, do(http.MethodPost, "/td", []byte(`{"name": "TD1"}`)))
	exID := createdID(t, do(http.MethodPost, "/exercise", []byte(`{"name": "Ex1"}`)))
	studID := createdID(t, do(http.MethodPost, "/student", []byte(`{"lastname": "Hoare", "firstname": "Tony", "studentNumber": "S300"}`)))
	missing := primitive.NewObjectID().Hex()

	t.Run("student to group twice", func(t *testing.T) {
		var grp school.Group
		for i := 0; i < 2; i++ {
			rec := do(http.MethodPut, "/group/"+grpID+"/"+studID)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			decode(t, rec, &grp)
		}
		require.Len(t, grp.Students, 2)
		assert.Equal(t, studID, grp.Students[0].ID.Hex())
		assert.Equal(t, studID, grp.Students[1].ID.Hex())
	})

	t.Run("module to group", func(t *testing.T) {
		rec := do(http.MethodPut, "/group/"+grpID+"/module/"+modID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var grp school.Group
		decode(t, rec, &grp)
		require.Len(t, grp.Modules, 1)
		assert.Equal(t, "Go", grp.Modules[0].Name)
	})

	t.Run("group and td to module", func(t *testing.T) {
		rec := do(http.MethodPut, "/module/"+modID+"/"+grpID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = do(http.MethodPut, "/module/"+modID+"/"+tdID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var mod school.Module
		decode(t, rec, &mod)
		require.Len(t, mod.Groups, 1)
		require.Len(t, mod.TDs, 1)
		assert.Equal(t, grpID, mod.Groups[0].ID.Hex())
		assert.Equal(t, tdID, mod.TDs[0].ID.Hex())
	})

	t.Run("explicit routes", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(http.MethodPut, "/module/"+modID+"/td/"+tdID).Code)
		assert.Equal(t, http.StatusOK, do(http.MethodPut, "/module/"+modID+"/group/"+grpID).Code)
		assert.Equal(t, http.StatusOK, do(http.MethodPut, "/group/"+grpID+"/student/"+studID).Code)
		// the child must be of the named type
		assert.Equal(t, http.StatusNotFound, do(http.MethodPut, "/module/"+modID+"/td/"+grpID).Code)
	})

	t.Run("exercise to td", func(t *testing.T) {
		rec := do(http.MethodPut, "/td/"+tdID+"/"+exID)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var td school.TD
		decode(t, rec, &td)
		require.Len(t, td.Exercises, 1)
		assert.Equal(t, exID, td.Exercises[0].ID.Hex())
	})

	tests := []httpTest{
		{name: "unknown child of module", method: http.MethodPut, path: "/module/" + modID + "/" + studID, wantCode: http.StatusNotFound},
		{name: "unknown child of group", method: http.MethodPut, path: "/group/" + grpID + "/" + missing, wantCode: http.StatusNotFound},
		{name: "unknown module", method: http.MethodPut, path: "/module/" + missing + "/" + grpID, wantCode: http.StatusNotFound},
		{
			name:     "unknown td",
			method:   http.MethodPut,
			path:     "/td/" + missing + "/" + exID,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: `td "` + missing + `" not found`}),
		},
		{name: "unknown exercise", method: http.MethodPut, path: "/td/" + tdID + "/" + missing, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, do(tt.method, tt.path, tt.body))
		})
	}
}

func Test_schoolApi_uppercaseOwnerID(t *testing.T) {
	db.Reset()

	profID := createdID(t, do(http.MethodPost, "/professor", []byte(`{"lastname": "McCarthy", "firstname": "John", "professorNumber": "P500"}`)))
	upper := strings.ToUpper(profID)
	modID := createdID(t, do(http.MethodPost, "/module", []byte(`{"name": "Lisp", "idProfessor": "`+upper+`"}`)))

	for _, id := range []string{profID, upper} {
		t.Run(id, func(t *testing.T) {
			rec := do(http.MethodGet, "/professors/"+id+"/modules")
			require.Equal(t, http.StatusOK, rec.Code)
			var mods []school.Module
			decode(t, rec, &mods)
			require.Len(t, mods, 1)
			assert.Equal(t, modID, mods[0].ID.Hex())
			assert.Equal(t, profID, mods[0].IDProfessor)
		})
	}
}
