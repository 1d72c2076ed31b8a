package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// payload is a request body that validates and cleans itself.
type payload interface {
	Validate(v *core.Validator) error
}

// resource serves the REST collection of T: list, retrieve, create, update and delete.
type resource[T store.Entity] struct {
	many, one     string // envelope keys
	table         *table[T]
	filterable    []string
	searchable    []string
	newPayload    func() payload
	updatePayload func() payload
	beforeSave    func(rec *T)
	check         func(rec T) error // e.g. uniqueness
	afterCreate   func(rec T)
	afterChange   func()
	validator     *core.Validator
}

func (r *resource[T]) register(g *echo.Group, m ...echo.MiddlewareFunc) {
	g.GET("", r.query, m...)
	g.POST("", r.create, m...)
	g.GET("/:id", r.retrieve, m...)
	g.PUT("/:id", r.update, m...)
	g.DELETE("/:id", r.destroy, m...)
}

func (r *resource[T]) query(ctx echo.Context) error {
	var filter Filter
	filter.Bind(ctx, r.filterable...)
	var page Page
	page.Bind(ctx)

	rows := r.table.filter(func(rec T) bool { return filter.Match(rec, r.searchable...) })
	rows, pg := paginate(rows, page)
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: echo.Map{r.many: rows, "pagination": pg}})
}

func (r *resource[T]) retrieve(ctx echo.Context) error {
	rec, ok := r.table.get(ctx.Param("id"))
	if !ok {
		return notFound(r.one)
	}
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: echo.Map{r.one: rec}})
}

func (r *resource[T]) create(ctx echo.Context) error {
	data := r.newPayload()
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding new %s", r.one)
	}
	if err := data.Validate(r.validator); err != nil {
		return err
	}

	var zero T
	rec, err := assign(zero, data, echo.Map{"id": newID()})
	if err != nil {
		return errors.Wrapf(err, "building %s", r.one)
	}
	if rec, err = r.save(rec); err != nil {
		return err
	}
	if r.afterCreate != nil {
		r.afterCreate(rec)
	}
	return ctx.JSON(http.StatusCreated, envelope{Success: true, Data: echo.Map{r.one: rec}})
}

func (r *resource[T]) update(ctx echo.Context) error {
	data := r.updatePayload()
	if err := ctx.Bind(data); err != nil {
		return errors.Wrapf(err, "binding %s update", r.one)
	}
	if err := data.Validate(r.validator); err != nil {
		return err
	}

	cur, ok := r.table.get(ctx.Param("id"))
	if !ok {
		return notFound(r.one)
	}
	rec, err := assign(cur, data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", r.one)
	}
	if rec, err = r.save(rec); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, envelope{Success: true, Data: echo.Map{r.one: rec}})
}

func (r *resource[T]) destroy(ctx echo.Context) error {
	if !r.table.delete(ctx.Param("id")) {
		return notFound(r.one)
	}
	if r.afterChange != nil {
		r.afterChange()
	}
	return ctx.JSON(http.StatusOK, envelope{Success: true, Message: r.one + " deleted"})
}

func (r *resource[T]) save(rec T) (T, error) {
	if r.beforeSave != nil {
		r.beforeSave(&rec)
	}
	rec = normalize(rec)
	if r.check != nil {
		if err := r.check(rec); err != nil {
			return rec, err
		}
	}
	r.table.insert(rec.EntityID(), rec)
	if r.afterChange != nil {
		r.afterChange()
	}
	return rec, nil
}

// unique rejects records sharing the value of field with another record of t.
func unique[T store.Entity](t *table[T], field string, value func(T) string) func(T) error {
	return func(rec T) error {
		v := value(rec)
		if v == "" {
			return nil
		}
		_, dup := t.find(func(other T) bool {
			return other.EntityID() != rec.EntityID() && strings.EqualFold(value(other), v)
		})
		if dup {
			return core.NewValidationError(nil, core.FieldError{Field: field, Error: field + " already exists"})
		}
		return nil
	}
}

// assign copies rec, then overlays the JSON fields of each patch.
// The copy shares no slice or map with rec.
func assign[T any](rec T, patches ...interface{}) (T, error) {
	var out T
	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	if err = json.Unmarshal(raw, &out); err != nil {
		return out, err
	}
	for _, patch := range patches {
		if raw, err = json.Marshal(patch); err != nil {
			return out, err
		}
		if err = json.Unmarshal(raw, &out); err != nil {
			return out, err
		}
	}
	return out, nil
}

func normalize[T any](rec T) T {
	if n, ok := any(rec).(interface{ Normalize() T }); ok {
		return n.Normalize()
	}
	return rec
}
