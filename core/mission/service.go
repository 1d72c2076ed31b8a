// Package mission manages missions: question sets assigned to classes for XP.
package mission

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/rest"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// Operations
const (
	OpList    = "list"
	OpGet     = "get"
	OpCreate  = "create"
	OpUpdate  = "update"
	OpDelete  = "delete"
	OpPublish = "publish"
	OpResults = "results"
)

// ErrNotDraft is returned when publishing a mission that already left the draft status.
var ErrNotDraft = core.NewValidationError(errors.New("only draft missions can be published"))

// Extras holds the results fetched per mission id.
type Extras struct {
	Results map[string]Results
}

type (
	Slice   = store.Slice[Mission, Extras]
	State   = store.State[Mission, Extras]
	reducer = store.Reducer[Mission, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Mission]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Mission]("missions", store.Config[Extras]{
			Keys: []string{OpList, OpGet, OpCreate, OpUpdate, OpDelete, OpPublish, OpResults},
			Filters: map[string]string{
				"search":    "",
				"subjectId": "",
				"classId":   "",
				"status":    "",
			},
			Extra:  Extras{Results: map[string]Results{}},
			Logger: logger,
		}),
		res:       rest.Resource[Mission]{API: api, Path: "/missions", Many: "missions", One: "mission"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchMissions(ctx context.Context) *store.Op {
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

func (svc *Service) FetchMission(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpGet, func(ctx context.Context) (reducer, error) {
		m, err := svc.res.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return func(st *State) {
			st.SetCurrent(m)
			st.ReplaceItem(m)
		}, nil
	})
}

func (svc *Service) CreateMission(ctx context.Context, nm NewMission) *store.Op {
	return svc.slice.Dispatch(ctx, OpCreate, func(ctx context.Context) (reducer, error) {
		if err := nm.Validate(svc.validator); err != nil {
			return nil, err
		}
		m, ok, err := svc.res.Create(ctx, nm)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.UpsertItem(m) }, nil
	})
}

func (svc *Service) UpdateMission(ctx context.Context, id string, um UpdateMission) *store.Op {
	return svc.slice.Dispatch(ctx, OpUpdate, func(ctx context.Context) (reducer, error) {
		if err := um.Validate(svc.validator); err != nil {
			return nil, err
		}
		m, ok, err := svc.res.Update(ctx, id, um)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) { st.ReplaceItem(m) }, nil
	})
}

func (svc *Service) DeleteMission(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDelete, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) {
			st.RemoveItem(id)
			if _, ok := st.Extra.Results[id]; ok {
				st.Extra.Results = withoutResults(st.Extra.Results, id)
			}
		}, nil
	})
}

// PublishMission makes the draft mission id visible to its classes.
func (svc *Service) PublishMission(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpPublish, func(ctx context.Context) (reducer, error) {
		for _, m := range svc.slice.Items() {
			if m.ID == id && m.Status != StatusDraft {
				return nil, ErrNotDraft
			}
		}
		raw, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: svc.res.ItemPath(id) + "/publish"})
		if err != nil {
			return nil, errors.Wrapf(err, "publishing mission %s", id)
		}
		m, ok, err := store.UnwrapEntity[Mission](raw, "mission")
		if err != nil {
			return nil, errors.Wrap(err, "reading published mission")
		}

		return func(st *State) {
			if ok {
				st.ReplaceItem(m)
				return
			}
			for _, item := range st.Items {
				if item.ID == id {
					item.Status = StatusPublished
					st.ReplaceItem(item)
					return
				}
			}
		}, nil
	})
}

// FetchResults loads the attempts of mission id.
func (svc *Service) FetchResults(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpResults, func(ctx context.Context) (reducer, error) {
		res, err := rest.Call[Results](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   svc.res.ItemPath(id) + "/results",
		}, "results")
		if err != nil {
			return nil, err
		}
		res.MissionID = id
		if res.Attempts == nil {
			res.Attempts = []Attempt{}
		}

		return func(st *State) {
			results := make(map[string]Results, len(st.Extra.Results)+1)
			for k, v := range st.Extra.Results {
				results[k] = v
			}
			results[id] = res
			st.Extra.Results = results
		}, nil
	})
}

// Results returns the loaded results of mission id.
func (svc *Service) Results(id string) (Results, bool) {
	res, ok := svc.slice.Extra().Results[id]
	return res, ok
}

func withoutResults(m map[string]Results, id string) map[string]Results {
	out := make(map[string]Results, len(m))
	for k, v := range m {
		if k != id {
			out[k] = v
		}
	}
	return out
}
