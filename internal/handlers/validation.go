package handlers

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/vwmedia/siteutil/pkg/errors"
	"github.com/vwmedia/siteutil/pkg/response"
	"github.com/vwmedia/siteutil/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation
// rules. On failure it writes a 400 envelope and returns false.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := validator.ValidateStruct(dest); err != nil {
		response.Error(c, apperrors.NewBadRequest(err.Error()))
		return false
	}

	return true
}
