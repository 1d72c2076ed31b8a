// Package subject manages the subjects taught at a school.
package subject

import (
	"context"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/rest"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// Operations
const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

type Extras struct{}

type (
	Slice   = store.Slice[Subject, Extras]
	State   = store.State[Subject, Extras]
	reducer = store.Reducer[Subject, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Subject]
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Subject]("subjects", store.Config[Extras]{
			Keys:    []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete},
			Filters: map[string]string{"search": "", "grade": ""},
			Logger:  logger,
		}),
		res:       rest.Resource[Subject]{API: api, Path: "/subjects", Many: "subjects", One: "subject"},
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchSubjects(ctx context.Context) *store.Op {
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

func (svc *Service) FetchSubject(ctx context.Context, id string) *store.Op {
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

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) *store.Op {
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

func (svc *Service) UpdateSubject(ctx context.Context, id string, us UpdateSubject) *store.Op {
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

func (svc *Service) DeleteSubject(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) { st.RemoveItem(id) }, nil
	})
}

// Lookup returns the loaded subject id.
func (svc *Service) Lookup(id string) (Subject, bool) {
	for _, s := range svc.slice.Items() {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}
