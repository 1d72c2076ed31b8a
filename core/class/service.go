// Package class manages the classes of a school and their rosters.
package class

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/rest"
	"github.com/trezcool/gyaanbuddy/core/store"
	"github.com/trezcool/gyaanbuddy/core/student"
)

// Operations
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpRoster = "roster"
	OpAssign = "assign"
)

// Extras is the class-specific state: the roster of the class being viewed.
type Extras struct {
	RosterClassID string
	Roster        []student.Student
}

type (
	Slice   = store.Slice[Class, Extras]
	State   = store.State[Class, Extras]
	reducer = store.Reducer[Class, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Class]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Class]("classes", store.Config[Extras]{
			Keys:    []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete, OpRoster, OpAssign},
			Filters: map[string]string{"search": "", "grade": "", "teacherId": ""},
			Extra:   Extras{Roster: []student.Student{}},
			Logger:  logger,
		}),
		res:       rest.Resource[Class]{API: api, Path: "/classes", Many: "classes", One: "class"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchClasses(ctx context.Context) *store.Op {
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

func (svc *Service) FetchClass(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpGet, func(ctx context.Context) (reducer, error) {
		c, err := svc.res.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.SetCurrent(c)
			st.ReplaceItem(c)
		}, nil
	})
}

func (svc *Service) CreateClass(ctx context.Context, nc NewClass) *store.Op {
	return svc.slice.Dispatch(ctx, OpCreate, func(ctx context.Context) (reducer, error) {
		if err := nc.Validate(svc.validator); err != nil {
			return nil, err
		}
		c, ok, err := svc.res.Create(ctx, nc)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.UpsertItem(c) }, nil
	})
}

func (svc *Service) UpdateClass(ctx context.Context, id string, uc UpdateClass) *store.Op {
	return svc.slice.Dispatch(ctx, OpUpdate, func(ctx context.Context) (reducer, error) {
		if err := uc.Validate(svc.validator); err != nil {
			return nil, err
		}
		c, ok, err := svc.res.Update(ctx, id, uc)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.ReplaceItem(c) }, nil
	})
}

func (svc *Service) DeleteClass(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) {
			st.RemoveItem(id)
			if st.Extra.RosterClassID == id {
				st.Extra = Extras{Roster: []student.Student{}}
			}
		}, nil
	})
}

// FetchRoster loads the students of the class id.
func (svc *Service) FetchRoster(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpRoster, func(ctx context.Context) (reducer, error) {
		roster, err := svc.roster(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.Extra = Extras{RosterClassID: id, Roster: roster}
		}, nil
	})
}

func (svc *Service) roster(ctx context.Context, id string) ([]student.Student, error) {
	roster, err := rest.CallList[student.Student](ctx, svc.api, core.APIRequest{
		Method: http.MethodGet,
		Path:   svc.res.ItemPath(id) + "/students",
	}, "students")
	return roster, errors.Wrapf(err, "fetching roster of %s", id)
}

// AssignStudents enrols studentIDs in the class id and reloads its roster.
func (svc *Service) AssignStudents(ctx context.Context, id string, studentIDs []string) *store.Op {
	return svc.slice.Dispatch(ctx, OpAssign, func(ctx context.Context) (reducer, error) {
		a := Assignment{StudentIDs: studentIDs}
		if err := svc.validator.Struct(a); err != nil {
			return nil, err
		}
		raw, err := svc.api.Do(ctx, core.APIRequest{
			Method: http.MethodPost,
			Path:   svc.res.ItemPath(id) + "/students",
			Body:   a,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "assigning students to %s", id)
		}
		updated, hasClass, err := store.UnwrapEntity[Class](raw, "class")
		if err != nil {
			return nil, errors.Wrap(err, "reading class")
		}
		roster, err := svc.roster(ctx, id)
		if err != nil {
			return nil, err
		}

		return func(st *State) {
			if hasClass {
				st.ReplaceItem(updated)
			} else {
				for _, c := range st.Items {
					if c.ID == id {
						c.StudentCount = len(roster)
						st.ReplaceItem(c)
						break
					}
				}
			}
			st.Extra = Extras{RosterClassID: id, Roster: roster}
		}, nil
	})
}
