// Package rest maps REST collections of the Gyaan Buddy API onto domain records.
package rest

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/store"
)

// Resource is a REST collection of T, e.g. /users/teachers.
type Resource[T store.Entity] struct {
	API  core.APIClient
	Path string // collection path
	Many string // envelope key of the collection, e.g. "teachers"
	One  string // envelope key of a record, e.g. "teacher"
}

func (r Resource[T]) ItemPath(id string) string {
	return r.Path + "/" + url.PathEscape(id)
}

// List fetches the collection. The pagination is nil when the backend sent none.
func (r Resource[T]) List(ctx context.Context, q url.Values) ([]T, *store.Pagination, error) {
	raw, err := r.API.Do(ctx, core.APIRequest{Method: http.MethodGet, Path: r.Path, Query: q})
	if err != nil {
		return nil, nil, errors.Wrapf(err, "fetching %s", r.Many)
	}
	items, err := store.UnwrapList[T](raw, r.Many)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", r.Many)
	}
	return items, store.UnwrapPagination(raw), nil
}

// Get fetches one record. A response without a record is reported as a 404.
func (r Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	raw, err := r.API.Do(ctx, core.APIRequest{Method: http.MethodGet, Path: r.ItemPath(id)})
	if err != nil {
		return zero, errors.Wrapf(err, "fetching %s %s", r.One, id)
	}
	item, ok, err := store.UnwrapEntity[T](raw, r.One)
	if err != nil {
		return zero, errors.Wrapf(err, "reading %s %s", r.One, id)
	}
	if !ok {
		return zero, &core.APIError{Status: http.StatusNotFound, Message: r.One + " not found"}
	}
	return item, nil
}

// Create posts payload. ok is false when the backend did not echo the created record.
func (r Resource[T]) Create(ctx context.Context, payload interface{}) (item T, ok bool, err error) {
	raw, err := r.API.Do(ctx, core.APIRequest{Method: http.MethodPost, Path: r.Path, Body: payload})
	if err != nil {
		return item, false, errors.Wrapf(err, "creating %s", r.One)
	}
	item, ok, err = store.UnwrapEntity[T](raw, r.One)
	return item, ok, errors.Wrapf(err, "reading created %s", r.One)
}

// Update puts payload. ok is false when the backend did not echo the updated record.
func (r Resource[T]) Update(ctx context.Context, id string, payload interface{}) (item T, ok bool, err error) {
	raw, err := r.API.Do(ctx, core.APIRequest{Method: http.MethodPut, Path: r.ItemPath(id), Body: payload})
	if err != nil {
		return item, false, errors.Wrapf(err, "updating %s %s", r.One, id)
	}
	item, ok, err = store.UnwrapEntity[T](raw, r.One)
	return item, ok, errors.Wrapf(err, "reading updated %s", r.One)
}

func (r Resource[T]) Delete(ctx context.Context, id string) error {
	_, err := r.API.Do(ctx, core.APIRequest{Method: http.MethodDelete, Path: r.ItemPath(id)})
	return errors.Wrapf(err, "deleting %s %s", r.One, id)
}

// Call sends req and decodes the object found under keys.
func Call[T any](ctx context.Context, api core.APIClient, req core.APIRequest, keys ...string) (T, error) {
	var zero T
	raw, err := api.Do(ctx, req)
	if err != nil {
		return zero, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	obj, _, err := store.UnwrapObject[T](raw, keys...)
	if err != nil {
		return zero, errors.Wrapf(err, "reading %s", req.Path)
	}
	return obj, nil
}

// CallList sends req and decodes the collection found under domains.
func CallList[T any](ctx context.Context, api core.APIClient, req core.APIRequest, domains ...string) ([]T, error) {
	raw, err := api.Do(ctx, req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	items, err := store.UnwrapList[T](raw, domains...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", req.Path)
	}
	return items, nil
}
