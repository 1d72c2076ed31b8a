// Package student manages the students of a school, their performance and bulk imports.
package student

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/rest"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// Operations
const (
	OpList        = "list"
	OpGet         = "get"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpImport      = "import"
	OpPerformance = "performance"
)

var ErrNotCSV = core.NewValidationError(nil, core.FieldError{Field: "file", Error: "only .csv files can be imported"})

type (
	Slice   = store.Slice[Student, Extras]
	State   = store.State[Student, Extras]
	reducer = store.Reducer[Student, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Student]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Student]("students", store.Config[Extras]{
			Keys: []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete, OpImport, OpPerformance},
			Filters: map[string]string{
				"search":  "",
				"classId": "",
				"grade":   "",
				"status":  "",
				"page":    "1",
				"limit":   "20",
			},
			Extra:  Extras{Performance: map[string]Performance{}},
			Logger: logger,
		}),
		res:       rest.Resource[Student]{API: api, Path: "/students", Many: "students", One: "student"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchStudents(ctx context.Context) *store.Op {
	q := svc.slice.Query()
	return svc.slice.Dispatch(ctx, OpList, func(ctx context.Context) (reducer, error) {
		items, page, err := svc.res.List(ctx, q)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.ReplaceItems(items)
			st.SetPagination(page)
		}, nil
	})
}

func (svc *Service) FetchStudent(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpGet, func(ctx context.Context) (reducer, error) {
		s, err := svc.res.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.SetCurrent(s)
			st.ReplaceItem(s)
		}, nil
	})
}

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) *store.Op {
	return svc.slice.Dispatch(ctx, OpCreate, func(ctx context.Context) (reducer, error) {
		if err := ns.Validate(svc.validator); err != nil {
			return nil, err
		}
		s, ok, err := svc.res.Create(ctx, ns)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.UpsertItem(s) }, nil
	})
}

func (svc *Service) UpdateStudent(ctx context.Context, id string, us UpdateStudent) *store.Op {
	return svc.slice.Dispatch(ctx, OpUpdate, func(ctx context.Context) (reducer, error) {
		if err := us.Validate(svc.validator); err != nil {
			return nil, err
		}
		s, ok, err := svc.res.Update(ctx, id, us)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.ReplaceItem(s) }, nil
	})
}

func (svc *Service) DeleteStudent(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) {
			st.RemoveItem(id)
			st.Extra.Performance = withoutPerformance(st.Extra.Performance, id)
		}, nil
	})
}

// ImportStudents uploads a CSV of students, optionally enrolling them all in classID,
// then refreshes the list with the current filters.
// The refresh is its own list operation: its failure lands on OpList and never hides the import result.
func (svc *Service) ImportStudents(ctx context.Context, filename string, csv io.Reader, classID string) *store.Op {
	return svc.slice.Dispatch(ctx, OpImport, func(ctx context.Context) (reducer, error) {
		if !strings.EqualFold(filepath.Ext(filename), ".csv") {
			return nil, ErrNotCSV
		}
		form := &core.FormData{
			Fields: map[string]string{},
			Files:  []core.FormFile{{Field: "file", Filename: filepath.Base(filename), Content: csv}},
		}
		if classID != "" {
			form.Fields["classId"] = classID
		}

		res, err := rest.Call[ImportResult](ctx, svc.api, core.APIRequest{
			Method: http.MethodPost,
			Path:   "/students/import",
			Form:   form,
		}, "result")
		if err != nil {
			return nil, errors.Wrap(err, "importing students")
		}

		_ = svc.FetchStudents(ctx).Wait()
		return func(st *State) {
			st.Extra.ImportResult = &res
		}, nil
	})
}

func (svc *Service) FetchPerformance(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpPerformance, func(ctx context.Context) (reducer, error) {
		perf, err := rest.Call[Performance](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   svc.res.ItemPath(id) + "/performance",
		}, "performance")
		if err != nil {
			return nil, errors.Wrapf(err, "fetching performance of %s", id)
		}
		if perf.StudentID == "" {
			perf.StudentID = id
		}
		return func(st *State) {
			perfs := withoutPerformance(st.Extra.Performance, id)
			perfs[id] = perf
			st.Extra.Performance = perfs
		}, nil
	})
}

// Performance returns the last fetched performance of the student id.
func (svc *Service) Performance(id string) (Performance, bool) {
	perf, ok := svc.slice.Extra().Performance[id]
	return perf, ok
}

// withoutPerformance copies perfs minus id; extras are shared with snapshots and never mutated in place.
func withoutPerformance(perfs map[string]Performance, id string) map[string]Performance {
	cp := make(map[string]Performance, len(perfs)+1)
	for k, v := range perfs {
		if k != id {
			cp[k] = v
		}
	}
	return cp
}
