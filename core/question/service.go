// Package question manages the question bank missions are built from.
package question

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
	Slice   = store.Slice[Question, Extras]
	State   = store.State[Question, Extras]
	reducer = store.Reducer[Question, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Question]
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Question]("questions", store.Config[Extras]{
			Keys: []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete},
			Filters: map[string]string{
				"search":     "",
				"subjectId":  "",
				"type":       "",
				"difficulty": "",
			},
			Logger: logger,
		}),
		res:       rest.Resource[Question]{API: api, Path: "/missions/questions", Many: "questions", One: "question"},
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchQuestions(ctx context.Context) *store.Op {
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

func (svc *Service) FetchQuestion(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpGet, func(ctx context.Context) (reducer, error) {
		q, err := svc.res.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.SetCurrent(q)
			st.ReplaceItem(q)
		}, nil
	})
}

func (svc *Service) CreateQuestion(ctx context.Context, d Draft) *store.Op {
	return svc.slice.Dispatch(ctx, OpCreate, func(ctx context.Context) (reducer, error) {
		if err := d.Validate(svc.validator); err != nil {
			return nil, err
		}
		q, ok, err := svc.res.Create(ctx, d)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.UpsertItem(q) }, nil
	})
}

func (svc *Service) UpdateQuestion(ctx context.Context, id string, d Draft) *store.Op {
	return svc.slice.Dispatch(ctx, OpUpdate, func(ctx context.Context) (reducer, error) {
		if err := d.Validate(svc.validator); err != nil {
			return nil, err
		}
		q, ok, err := svc.res.Update(ctx, id, d)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.ReplaceItem(q) }, nil
	})
}

func (svc *Service) DeleteQuestion(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) { st.RemoveItem(id) }, nil
	})
}
