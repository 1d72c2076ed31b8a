// Package report reads school analytics and generates downloadable reports.
package report

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
	OpList     = "list"
	OpGenerate = "generate"
	OpOverview = "overview"
	OpClass    = "class"
	OpStudent  = "student"
)

type Extras struct {
	Overview      Overview
	ClassReport   *ClassReport
	StudentReport *StudentReport
}

type (
	Slice   = store.Slice[Report, Extras]
	State   = store.State[Report, Extras]
	reducer = store.Reducer[Report, Extras]
)

type Service struct {
	slice     *Slice
	res       rest.Resource[Report]
	api       core.APIClient
	validator *core.Validator
}

func NewService(api core.APIClient, validator *core.Validator, logger core.Logger) *Service {
	return &Service{
		slice: store.NewSlice[Report]("reports", store.Config[Extras]{
			Keys:    []string{OpList, OpGenerate, OpOverview, OpClass, OpStudent},
			Filters: map[string]string{"period": "month", "type": ""},
			Logger:  logger,
		}),
		res:       rest.Resource[Report]{API: api, Path: "/reports", Many: "reports", One: "report"},
		api:       api,
		validator: validator,
	}
}

func (svc *Service) Slice() *Slice { return svc.slice }

func (svc *Service) FetchReports(ctx context.Context) *store.Op {
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

// GenerateReport requests a new report; it is added to the list once the backend echoes it.
func (svc *Service) GenerateReport(ctx context.Context, req Request) *store.Op {
	return svc.slice.Dispatch(ctx, OpGenerate, func(ctx context.Context) (reducer, error) {
		if err := req.Validate(svc.validator); err != nil {
			return nil, err
		}
		raw, err := svc.api.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: "/reports/generate", Body: req})
		if err != nil {
			return nil, errors.Wrap(err, "generating report")
		}
		r, ok, err := store.UnwrapEntity[Report](raw, "report")
		if err != nil || !ok {
			return nil, errors.Wrap(err, "reading generated report")
		}
		return func(st *State) { st.UpsertItem(r) }, nil
	})
}

// FetchOverview loads the school-wide statistics of the period filter.
func (svc *Service) FetchOverview(ctx context.Context) *store.Op {
	q := svc.periodQuery()
	return svc.slice.Dispatch(ctx, OpOverview, func(ctx context.Context) (reducer, error) {
		ov, err := rest.Call[Overview](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   "/reports/overview",
			Query:  q,
		}, "overview", "stats")
		if err != nil {
			return nil, err
		}
		return func(st *State) { st.Extra.Overview = ov }, nil
	})
}

func (svc *Service) FetchClassReport(ctx context.Context, classID string) *store.Op {
	q := svc.periodQuery()
	return svc.slice.Dispatch(ctx, OpClass, func(ctx context.Context) (reducer, error) {
		cr, err := rest.Call[ClassReport](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   "/reports/classes/" + url.PathEscape(classID),
			Query:  q,
		}, "report")
		if err != nil {
			return nil, err
		}
		if cr.ClassID == "" {
			cr.ClassID = classID
		}
		return func(st *State) { st.Extra.ClassReport = &cr }, nil
	})
}

func (svc *Service) FetchStudentReport(ctx context.Context, studentID string) *store.Op {
	q := svc.periodQuery()
	return svc.slice.Dispatch(ctx, OpStudent, func(ctx context.Context) (reducer, error) {
		sr, err := rest.Call[StudentReport](ctx, svc.api, core.APIRequest{
			Method: http.MethodGet,
			Path:   "/reports/students/" + url.PathEscape(studentID),
			Query:  q,
		}, "report")
		if err != nil {
			return nil, err
		}
		if sr.StudentID == "" {
			sr.StudentID = studentID
		}
		return func(st *State) { st.Extra.StudentReport = &sr }, nil
	})
}

func (svc *Service) periodQuery() url.Values {
	q := url.Values{}
	if period := svc.slice.Filters()["period"]; period != "" {
		q.Set("period", period)
	}
	return q
}
