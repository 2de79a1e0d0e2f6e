package echoapi

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/cpel/core"
)

const orderingParam = "ordering"

// Ordering binds `?ordering=lastname,-createdAt`: a leading "-" sorts descending.
type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind accepts only the keys of fields (JSON names) and orders by their stored names.
func (ord *Ordering) Bind(ctx echo.Context, fields map[string]string) error {
	val := core.CleanString(ctx.QueryParam(orderingParam))
	if val == "" {
		return nil
	}

	for _, field := range strings.Split(val, ",") {
		field = core.CleanString(field)
		descending := strings.HasPrefix(field, "-")
		field = strings.TrimPrefix(field, "-")
		if field == "" {
			continue
		}
		stored, ok := fields[field]
		if !ok {
			return core.NewValidationError(errors.Errorf("invalid ordering field %q", field), core.FieldError{
				Field: orderingParam,
				Error: fmt.Sprintf("cannot order by %q", field),
			})
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: stored, Ascending: !descending})
	}
	return nil
}

// sortableFields maps the exported JSON names of T to their BSON names.
// Fields hidden from JSON (`json:"-"`) cannot be ordered by.
func sortableFields[T any]() map[string]string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	fields := make(map[string]string, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		fld := typ.Field(i)
		if !fld.IsExported() {
			continue
		}
		name := tagName(fld.Tag.Get("json"), fld.Name)
		stored := tagName(fld.Tag.Get("bson"), strings.ToLower(fld.Name))
		if name == "-" || stored == "-" {
			continue
		}
		fields[name] = stored
	}
	return fields
}

func tagName(tag, def string) string {
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return def
}
