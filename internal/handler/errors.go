package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"sort"

	"github.com/holuwadafe/maglo-finance/internal/middleware"
	"github.com/holuwadafe/maglo-finance/internal/model"
	"github.com/holuwadafe/maglo-finance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondError maps a service error onto the response envelope.
// Unknown errors are logged by the request logger and reported without detail.
func respondError(c *gin.Context, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, verr.Errors))
	case errors.Is(err, model.ErrValidation):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Resource not found"))
	case errors.Is(err, model.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
	case errors.Is(err, model.ErrConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Resource already exists"))
	case errors.Is(err, model.ErrBackendUnavailable):
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, response.Error(http.StatusServiceUnavailable, "Service temporarily unavailable"))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Internal server error"))
	}
}

// bindJSON decodes the body, answering 400 itself on malformed input. Values of the wrong
// type or format are reported per JSON field.
func bindJSON(c *gin.Context, dst interface{}) bool {
	err := c.ShouldBindBodyWithJSON(dst)
	if err == nil {
		return true
	}
	var body []byte
	if raw, ok := c.Get(gin.BodyBytesKey); ok {
		body, _ = raw.([]byte)
	}
	if fields := payloadFieldErrors(body, dst); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, response.Invalid(http.StatusBadRequest, fields))
		return false
	}
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
	return false
}

// payloadFieldErrors decodes every top-level key of body on its own into a fresh value of
// dst's type and names the keys that fail. Bodies that are not a JSON object yield nothing.
func payloadFieldErrors(body []byte, dst interface{}) []model.FieldError {
	var members map[string]json.RawMessage
	if len(body) == 0 || json.Unmarshal(body, &members) != nil {
		return nil
	}
	target := reflect.TypeOf(dst)
	if target.Kind() != reflect.Ptr {
		return nil
	}

	keys := make([]string, 0, len(members))
	for k := range members {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fields []model.FieldError
	for _, key := range keys {
		single, err := json.Marshal(map[string]json.RawMessage{key: members[key]})
		if err != nil {
			continue
		}
		if json.Unmarshal(single, reflect.New(target.Elem()).Interface()) != nil {
			fields = append(fields, model.FieldError{Field: key, Message: "has an invalid type or format"})
		}
	}
	return fields
}

// pathID parses the :id route parameter. A malformed id cannot name an existing invoice.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Resource not found"))
		return uuid.Nil, false
	}
	return id, true
}

// currentUser reads the caller set by middleware.RequireAuth
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
		return uuid.Nil, false
	}
	return userID, true
}
