package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"paucara/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		violations := make([]string, 0)
		for _, fe := range err.(validator.ValidationErrors) {
			violations = append(violations, fe.Field()+": "+fe.Tag())
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.New(apierror.NewValidation(violations...).Error()))
		return false
	}
	return true
}

// respondError maps the service error taxonomy to HTTP status codes:
// validation → 422, stock / estado conflicts → 409, missing records → 404,
// anything unrecognized → 500 with a generic message so internals never leak.
func respondError(c *gin.Context, err error) {
	var ve *apierror.ValidationError
	var se *apierror.InsufficientStockError
	var te *apierror.InvalidStateTransitionError
	var ne *apierror.NotFoundError

	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(ve.Error()))
	case errors.As(err, &se):
		c.JSON(http.StatusConflict, &apierror.Envelope{
			Success: false,
			Message: se.Error(),
			Data:    gin.H{"faltantes": se.Faltantes},
		})
	case errors.As(err, &te):
		c.JSON(http.StatusConflict, apierror.New(te.Error()))
	case errors.As(err, &ne):
		c.JSON(http.StatusNotFound, apierror.New(ne.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno"))
	}
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
