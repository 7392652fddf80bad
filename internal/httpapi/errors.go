package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aihavenlabs/pathwei-admin/pkg/types"
)

// toAPIError maps store errors to a status code and error body. Unexpected
// errors get a generic message; the detail goes to the request log only.
func toAPIError(err error) *types.APIError {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return &types.APIError{Status: http.StatusNotFound, Code: types.CodeNotFound, Message: "resource not found"}
	case errors.Is(err, types.ErrInvalidData):
		return &types.APIError{Status: http.StatusUnprocessableEntity, Code: types.CodeValidation, Message: err.Error()}
	case errors.Is(err, types.ErrInvalidID), errors.Is(err, types.ErrInvalidFilter):
		return &types.APIError{Status: http.StatusBadRequest, Code: types.CodeBadRequest, Message: err.Error()}
	case errors.Is(err, types.ErrDuplicate):
		return &types.APIError{Status: http.StatusConflict, Code: types.CodeConflict, Message: "resource already exists"}
	case errors.Is(err, types.ErrBackendDetached):
		return &types.APIError{Status: http.StatusServiceUnavailable, Code: types.CodeUnavailable, Message: "store unavailable"}
	default:
		return &types.APIError{Status: http.StatusInternalServerError, Code: types.CodeInternal, Message: "internal server error"}
	}
}

// respondError records err on the context for the request log and writes the
// error body.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)
	apiErr := toAPIError(err)
	c.AbortWithStatusJSON(apiErr.Status, types.ErrorResponse{Error: *apiErr})
}

func badRequest(c *gin.Context, message string, err error) {
	if err != nil {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, types.ErrorResponse{Error: types.APIError{
		Status:  http.StatusBadRequest,
		Code:    types.CodeBadRequest,
		Message: message,
	}})
}
