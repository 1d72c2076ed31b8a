// Package suggestion drives the AI assistant that drafts questions and lesson content.
package suggestion

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
	OpRequest = "request"
	OpAccept  = "accept"
	OpDismiss = "dismiss"
)

type Extras struct{}

type (
	Slice   = store.Slice[Suggestion, Extras]
	State   = store.State[Suggestion, Extras]
	reducer = store.Reducer[Suggestion, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Suggestion]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Suggestion]("suggestions", store.Config[Extras]{
			Keys:    []string{OpList, OpRequest, OpAccept, OpDismiss},
			Filters: map[string]string{"status": "", "type": "", "subjectId": ""},
			Logger:  logger,
		}),
		res:       rest.Resource[Suggestion]{API: api, Path: "/ai/suggestions", Many: "suggestions", One: "suggestion"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

// FetchSuggestions loads the suggestion history.
func (svc *Service) FetchSuggestions(ctx context.Context) *store.Op {
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

// RequestSuggestion asks the assistant for content; the answer becomes the current suggestion.
func (svc *Service) RequestSuggestion(ctx context.Context, req Request) *store.Op {
	return svc.slice.Dispatch(ctx, OpRequest, func(ctx context.Context) (reducer, error) {
		if err := req.Validate(svc.validator); err != nil {
			return nil, err
		}
		s, ok, err := svc.res.Create(ctx, req)
		if err != nil || !ok {
			return nil, err
		}
		return func(st *State) {
			st.UpsertItem(s)
			st.SetCurrent(s)
		}, nil
	})
}

// AcceptSuggestion keeps suggestion id; accepted questions are added to the question bank by the backend.
func (svc *Service) AcceptSuggestion(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpAccept, func(ctx context.Context) (reducer, error) {
		raw, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: svc.res.ItemPath(id) + "/accept"})
		if err != nil {
			return nil, errors.Wrapf(err, "accepting suggestion %s", id)
		}
		s, ok, err := store.UnwrapEntity[Suggestion](raw, "suggestion")
		if err != nil {
			return nil, errors.Wrap(err, "reading accepted suggestion")
		}
		return func(st *State) {
			if ok {
				st.ReplaceItem(s)
				return
			}
			setStatus(st, id, StatusAccepted)
		}, nil
	})
}

// DismissSuggestion discards suggestion id.
func (svc *Service) DismissSuggestion(ctx context.Context, id string) *store.Op {
	return svc.slice.Dispatch(ctx, OpDismiss, func(ctx context.Context) (reducer, error) {
		if err := svc.res.Delete(ctx, id); err != nil {
			return nil, err
		}
		return func(st *State) { st.RemoveItem(id) }, nil
	})
}

func setStatus(st *State, id, status string) {
	for _, s := range st.Items {
		if s.ID == id {
			s.Status = status
			st.ReplaceItem(s)
			return
		}
	}
}

// Pending returns the suggestions awaiting review.
func (svc *Service) Pending() []Suggestion {
	var pending []Suggestion
	for _, s := range svc.slice.Items() {
		if s.Status == StatusPending {
			pending = append(pending, s)
		}
	}
	return pending
}
