package echoapi

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
)

const (
	pageParam   = "page"
	limitParam  = "limit"
	searchParam = "search"
	anyValue    = "all"
)

// Page is the requested slice of a collection; a zero Limit means everything.
type Page struct {
	Page  int
	Limit int
}

func (p *Page) Bind(ctx echo.Context) {
	p.Page, p.Limit = 1, 0
	if n, err := strconv.Atoi(ctx.QueryParam(pageParam)); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(ctx.QueryParam(limitParam)); err == nil && n > 0 {
		p.Limit = n
	}
}

type pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	PerPage    int `json:"perPage"`
}

func paginate[T any](rows []T, p Page) ([]T, pagination) {
	total := len(rows)
	if p.Limit == 0 {
		return rows, pagination{Page: 1, TotalPages: 1, TotalItems: total, PerPage: total}
	}
	pages := (total + p.Limit - 1) / p.Limit
	if pages == 0 {
		pages = 1
	}
	start := (p.Page - 1) * p.Limit
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return rows[start:end], pagination{Page: p.Page, TotalPages: pages, TotalItems: total, PerPage: p.Limit}
}

// Filter keeps the records matching the query string of a list request.
// Each filterable parameter must equal the record field of the same JSON name (or one of its
// elements); "param:field" filters on a field of another name. Search looks for a substring in
// the searchable fields.
type Filter struct {
	Search string
	Fields url.Values
}

func (f *Filter) Bind(ctx echo.Context, filterable ...string) {
	f.Search = strings.ToLower(strings.TrimSpace(ctx.QueryParam(searchParam)))
	f.Fields = url.Values{}
	for _, key := range filterable {
		param, field, found := strings.Cut(key, ":")
		if !found {
			field = param
		}
		if val := strings.TrimSpace(ctx.QueryParam(param)); val != "" && val != anyValue {
			f.Fields.Set(field, val)
		}
	}
}

func (f Filter) Match(rec interface{}, searchable ...string) bool {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false
	}
	for key := range f.Fields {
		if !fieldHas(gjson.GetBytes(raw, gjson.Escape(key)), f.Fields.Get(key)) {
			return false
		}
	}
	if f.Search == "" {
		return true
	}
	for _, fld := range searchable {
		if strings.Contains(strings.ToLower(gjson.GetBytes(raw, fld).String()), f.Search) {
			return true
		}
	}
	return false
}

func fieldHas(res gjson.Result, want string) bool {
	if res.IsArray() {
		for _, el := range res.Array() {
			if strings.EqualFold(el.String(), want) {
				return true
			}
		}
		return false
	}
	return strings.EqualFold(res.String(), want)
}
