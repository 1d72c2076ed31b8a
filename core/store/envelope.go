package store

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// The backend does not wrap its responses consistently. A list may come back as a bare array,
// {data: [...]}, {<domain>: [...]} or {data: {<domain>: [...]}}; unwrapping tries the richest
// shape first and falls back to an empty collection.

// Normalizer fills the default values of a record decoded from the backend.
type Normalizer[T any] interface {
	Normalize() T
}

// UnwrapList extracts the collection named after one of domains from raw.
// A payload matching no known shape gives an empty collection; an error is only returned when
// the collection was found but its records could not be decoded.
func UnwrapList[T any](raw []byte, domains ...string) ([]T, error) {
	res := findArray(raw, domains)
	if !res.Exists() {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal([]byte(res.Raw), &items); err != nil {
		return []T{}, errors.Wrap(err, "decoding collection")
	}
	if items == nil {
		items = []T{}
	}
	for i := range items {
		items[i] = normalize(items[i])
	}
	return items, nil
}

func findArray(raw []byte, domains []string) gjson.Result {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}
	}
	root := gjson.ParseBytes(raw)
	data := root.Get("data")

	candidates := make([]gjson.Result, 0, 2*len(domains)+2)
	for _, d := range domains {
		candidates = append(candidates, data.Get(gjson.Escape(d)))
	}
	candidates = append(candidates, data)
	for _, d := range domains {
		candidates = append(candidates, root.Get(gjson.Escape(d)))
	}
	candidates = append(candidates, root)

	for _, c := range candidates {
		if c.IsArray() {
			return c
		}
	}
	return gjson.Result{}
}

// UnwrapObject extracts an object from raw, looking at data.<key>, <key>, data and the payload
// itself, in that order.
func UnwrapObject[T any](raw []byte, keys ...string) (T, bool, error) {
	var obj T
	res := findObject(raw, keys)
	if !res.Exists() {
		return obj, false, nil
	}
	if err := json.Unmarshal([]byte(res.Raw), &obj); err != nil {
		return obj, false, errors.Wrap(err, "decoding object")
	}
	return normalize(obj), true, nil
}

// UnwrapEntity is UnwrapObject for records: an object without an id is not a record.
func UnwrapEntity[T Entity](raw []byte, keys ...string) (T, bool, error) {
	obj, ok, err := UnwrapObject[T](raw, keys...)
	if err != nil || !ok {
		return obj, false, err
	}
	if obj.EntityID() == "" {
		var zero T
		return zero, false, nil
	}
	return obj, true, nil
}

func findObject(raw []byte, keys []string) gjson.Result {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}
	}
	root := gjson.ParseBytes(raw)
	data := root.Get("data")

	candidates := make([]gjson.Result, 0, 2*len(keys)+2)
	for _, k := range keys {
		candidates = append(candidates, data.Get(gjson.Escape(k)))
	}
	for _, k := range keys {
		candidates = append(candidates, root.Get(gjson.Escape(k)))
	}
	candidates = append(candidates, data, root)

	for _, c := range candidates {
		if c.IsObject() {
			return c
		}
	}
	return gjson.Result{}
}

var (
	paginationPaths = []string{"pagination", "data.pagination", "meta", "data.meta"}
	pagePaths       = []string{"page", "currentPage", "current_page"}
	totalPagesPaths = []string{"totalPages", "total_pages", "pages"}
	totalItemsPaths = []string{"totalItems", "total_items", "total", "count"}
	perPagePaths    = []string{"perPage", "per_page", "limit", "pageSize"}
)

// UnwrapPagination reads the pagination block of a list response, if any.
func UnwrapPagination(raw []byte) *Pagination {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	root := gjson.ParseBytes(raw)
	for _, path := range paginationPaths {
		block := root.Get(path)
		if !block.IsObject() {
			continue
		}
		return &Pagination{
			Page:       firstInt(block, pagePaths),
			TotalPages: firstInt(block, totalPagesPaths),
			TotalItems: firstInt(block, totalItemsPaths),
			PerPage:    firstInt(block, perPagePaths),
		}
	}
	return nil
}

func firstInt(block gjson.Result, paths []string) int {
	for _, p := range paths {
		if v := block.Get(p); v.Exists() {
			return int(v.Int())
		}
	}
	return 0
}

func normalize[T any](item T) T {
	if n, ok := any(item).(Normalizer[T]); ok {
		return n.Normalize()
	}
	return item
}
