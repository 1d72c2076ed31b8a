// Package teacher manages the teachers of a school and their engagement.
package teacher

import (
	"context"
	"net/http"
	"net/url"

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
	OpStats       = "stats"
	OpLeaderboard = "leaderboard"
)

type (
	Slice   = store.Slice[Teacher, Extras]
	State   = store.State[Teacher, Extras]
	reducer = store.Reducer[Teacher, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Teacher]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Teacher]("teachers", store.Config[Extras]{
			Keys:    []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete, OpStats, OpLeaderboard},
			Filters: map[string]string{"search": "", "status": "", "subject": ""},
			Extra:   Extras{Leaderboard: []LeaderboardEntry{}},
			Logger:  logger,
		}),
		res:       rest.Resource[Teacher]{API: api, Path: "/users/teachers", Many: "teachers", One: "teacher"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

// FetchTeachers replaces the teachers with the ones matching the current filters.
func (svc *Service) FetchTeachers(ctx context.Context) *store.Op {
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

func (svc *Service) FetchTeacher(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpGet, func(ctx context.Context) (reducer, error) {
		t, err := svc.res.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.SetCurrent(t)
			st.ReplaceItem(t)
		}, nil
	})
}

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) *store.Op {
	return svc.slice.Dispatch(ctx, OpCreate, func(ctx context.Context) (reducer, error) {
		if err := nt.Validate(svc.validator); err != nil {
			return nil, err
		}
		t, ok, err := svc.res.Create(ctx, nt)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.UpsertItem(t) }, nil
	})
}

func (svc *Service) UpdateTeacher(ctx context.Context, id string, ut UpdateTeacher) *store.Op {
	return svc.slice.Dispatch(ctx, OpUpdate, func(ctx context.Context) (reducer, error) {
		if err := ut.Validate(svc.validator); err != nil {
			return nil, err
		}
		t, ok, err := svc.res.Update(ctx, id, ut)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.ReplaceItem(t) }, nil
	})
}

func (svc *Service) DeleteTeacher(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) { st.RemoveItem(id) }, nil
	})
}

func (svc *Service) FetchStats(ctx context.Context) *store.Op {
	return svc.slice.Dispatch(ctx, OpStats, func(ctx context.Context) (reducer, error) {
		stats, err := rest.Call[Stats](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   "/users/teachers/stats",
		}, "stats")
		if err != nil {
			return nil, errors.Wrap(err, "fetching teacher stats")
		}
		return func(st *State) { st.Extra.Stats = stats }, nil
	})
}

// FetchLeaderboard ranks the teachers over period ("week", "month", "year"; empty for all time).
func (svc *Service) FetchLeaderboard(ctx context.Context, period string) *store.Op {
	q := make(url.Values)
	if period != "" {
		q.Set("period", period)
	}
	return svc.slice.Dispatch(ctx, OpLeaderboard, func(ctx context.Context) (reducer, error) {
		entries, err := rest.CallList[LeaderboardEntry](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   "/users/leaderboard",
			Query:  q,
		}, "leaderboard", "teachers")
		if err != nil {
			return nil, errors.Wrap(err, "fetching leaderboard")
		}
		for i := range entries {
			if entries[i].Rank == 0 {
				entries[i].Rank = i + 1
			}
		}
		return func(st *State) { st.Extra.Leaderboard = entries }, nil
	})
}
