package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"smart-grocery/internal/logging"
	"smart-grocery/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error   string            `json:"error"`
	Field   string            `json:"field,omitempty"`
	Message string            `json:"message,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// respondError maps core errors to status codes. Unknown errors are logged
// and reported as 500 without leaking their text.
func respondError(c *gin.Context, logger *logrus.Logger, funcName string, err error) {
	var (
		vErr *shared.ValidationError
		nErr *shared.NotFoundError
		cErr *shared.ConflictError
	)
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Field: vErr.Field, Message: vErr.Error()})
	case errors.As(err, &nErr):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: nErr.Error()})
	case errors.As(err, &cErr):
		c.JSON(http.StatusConflict, errorResponse{Error: "conflict", Message: cErr.Error()})
	default:
		logging.LogError(logger, "httpapi", funcName, c.GetString(correlationKey), nil, err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error"})
	}
}

// respondBindError reports a request body that failed to decode or
// validate.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	first := verrs[0]
	c.JSON(http.StatusBadRequest, errorResponse{
		Error:   "validation_error",
		Field:   first.Field(),
		Message: fmt.Sprintf("validation failed: %s %s", first.Field(), describeTag(first)),
		Fields:  fields,
	})
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "isodate":
		return "must be a YYYY-MM-DD date"
	default:
		return "failed " + fe.Tag()
	}
}
