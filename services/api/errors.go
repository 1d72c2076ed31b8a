package apisvc

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/trezcool/gyaanbuddy/core"
)

var messagePaths = []string{"message", "detail", "error", "error.message", "data.message"}

// parseAPIError builds the error of a non-2xx response from its body, which may not be JSON.
func parseAPIError(status int, body []byte) *core.APIError {
	apiErr := &core.APIError{Status: status}
	if !gjson.ValidBytes(body) {
		return apiErr
	}

	res := gjson.ParseBytes(body)
	for _, path := range messagePaths {
		if v := res.Get(path); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			apiErr.Message = v.String()
			break
		}
	}

	fields := make(map[string]string)
	res.Get("errors").ForEach(func(key, val gjson.Result) bool {
		switch {
		case key.Exists() && val.IsArray():
			if first := val.Get("0"); first.Exists() {
				fields[key.String()] = first.String()
			}
		case key.Exists():
			fields[key.String()] = val.String()
		case val.IsObject(): // [{field, message}]
			if fld := val.Get("field"); fld.Exists() {
				fields[fld.String()] = val.Get("message").String()
			}
		}
		return true
	})
	apiErr.Fields = core.NewFieldErrors(fields)

	if apiErr.Message == "" && len(apiErr.Fields) > 0 && status == http.StatusUnprocessableEntity {
		apiErr.Message = core.ValidationError{Fields: apiErr.Fields}.Error()
	}
	return apiErr
}
