package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/gyaanbuddy/core"
	"github.com/trezcool/gyaanbuddy/core/auth"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	errHTTPForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHTTPNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

func notFound(what string) error {
	return echo.NewHTTPError(http.StatusNotFound, what+" not found")
}

// envelope is the body of every response.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// newAppHTTPErrorHandler returns an echo.HTTPErrorHandler answering errors in the envelope format.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := envelope{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				body.Message = "missing or malformed token"
				break
			}
			if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
				origErr = herr
			}
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				body.Message = msg
			} else {
				body.Message = http.StatusText(code)
			}
		case *core.ValidationError:
			code = http.StatusUnprocessableEntity
			body.Message = origErr.Error()
			if len(origErr.Fields) > 0 {
				body.Errors = make(map[string]string, len(origErr.Fields))
				for _, fld := range origErr.Fields {
					body.Errors[fld.Field] = fld.Error
				}
				if origErr.Err == nil {
					body.Message = "validation failed"
				}
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			body.Message = http.StatusText(code)

			args := []interface{}{errors.Wrap(err, body.Message)}
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				args = append(args, auth.User{ID: claims.Subject, Email: claims.Email})
			}
			logger.Error(body.Message, args...)
		}

		if ctx.Echo().Debug && code == http.StatusInternalServerError {
			body.Message = err.Error()
		}

		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead {
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				logger.Error("sending error response", err)
			}
		}
	}
}
