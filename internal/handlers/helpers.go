package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/anonto42/groupnet/backend/internal/middleware"
	"github.com/anonto42/groupnet/backend/pkg/apperr"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// bindAndValidate binds the request into req and runs its validate tags.
// normalizer is implemented by requests that clean up their fields before validation.
type normalizer interface {
	Normalize()
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.InvalidArg("Invalid request payload")
	}
	if n, ok := req.(normalizer); ok {
		n.Normalize()
	}
	if err := validate.Struct(req); err != nil {
		return apperr.InvalidArg(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "eqfield":
			msgs = append(msgs, fe.Field()+" must match "+fe.Param())
		case "email":
			msgs = append(msgs, fe.Field()+" must be a valid email address")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func getUserIDFromContext(c echo.Context) (uint, error) {
	return middleware.UserIDFromContext(c)
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.InvalidArg("invalid " + name)
	}
	return uint(id), nil
}

// HTTPErrorHandler renders every error as {"code", "message"} with the status its
// code maps to. Internal causes are logged, never returned.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := apperr.HTTPStatus(err)
	code := apperr.CodeOf(err)
	message := apperr.PublicMessage(err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		code = apperr.CodeUnknown
		message = http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok {
			message = m
		}
	}

	if status >= http.StatusInternalServerError {
		slog.Error("http: request failed",
			"method", c.Request().Method, "path", c.Path(), "error", err)
		code = apperr.CodeInternal
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, echo.Map{"code": code, "message": message})
	}
	if err != nil {
		slog.Error("http: failed to write error response", "error", err)
	}
}
