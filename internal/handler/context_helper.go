package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/youth-camp-api/internal/middleware"
	"github.com/noah-isme/youth-camp-api/internal/models"
	"github.com/noah-isme/youth-camp-api/internal/service"
	appErrors "github.com/noah-isme/youth-camp-api/pkg/errors"
	"github.com/noah-isme/youth-camp-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

// respondError writes err, expanding per-field validation messages when present.
func respondError(c *gin.Context, err error) {
	var fieldErr *service.FieldError
	if errors.As(err, &fieldErr) {
		response.ValidationError(c, fieldErr.Err, fieldErr.Fields)
		return
	}
	response.Error(c, err)
}

func bindError(c *gin.Context, err error, msg string) {
	response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, msg))
}

func criteriaFromQuery(c *gin.Context) models.RegistrationCriteria {
	var criteria models.RegistrationCriteria
	_ = c.ShouldBindQuery(&criteria)
	return criteria
}

func pageFromQuery(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	size, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		size = 20
	}
	return page, size
}

func editionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "edition id must be a positive integer"))
		return 0, false
	}
	return id, true
}
