package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/university-api/internal/repository"
	"github.com/stemsi/university-api/internal/response"
	"github.com/stemsi/university-api/internal/validator"
)

// pathID parses the :id path parameter. A non-integer id gets a 400; an
// integer outside the INTEGER column range cannot name a row and gets a 404.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		} else {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		}
		return 0, false
	}
	return int(id), true
}

// bind fills req from the query string and body. It writes a 400 response
// and returns false when the body cannot be decoded.
func bind(c *gin.Context, req interface{}) bool {
	if err := validator.Bind(c, req); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return false
	}
	return true
}

// fail maps a service error onto the response envelope. Storage errors are
// logged and hidden behind a generic 500.
func fail(c *gin.Context, log zerolog.Logger, err error) {
	var fields validator.Errors
	switch {
	case errors.As(err, &fields):
		response.FailWithFields(c, http.StatusUnprocessableEntity, response.ErrValidation, fields)
	case errors.Is(err, repository.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	default:
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Str("request_id", response.RequestID(c)).
			Msg("request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// refID checks a reference parameter with Required and Numeric and converts
// it. A numeric value that is not an integer id is reported as invalid.
func refID(errs validator.Errors, field, value string) int {
	before := len(errs[field])
	errs.Check(field, value, validator.Required(), validator.Numeric())
	if len(errs[field]) > before {
		return 0
	}
	id, ok := validator.Int(value)
	if !ok {
		errs.Add(field, validator.Message("exists", field))
	}
	return id
}
