package handler

import (
	"errors"
	"net/http"
	"reflect"

	"caixapos/internal/apierror"
	"caixapos/internal/service"

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
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps core sentinel errors onto HTTP statuses:
// validation → 400, state conflict → 409, reconciliation → 422, missing → 404.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValorInvalido),
		errors.Is(err, service.ErrSaldoNegativo),
		errors.Is(err, service.ErrDescontoInvalido):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSessaoNaoExiste),
		errors.Is(err, service.ErrPedidoNaoExiste):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrSessaoJaAberta),
		errors.Is(err, service.ErrSessaoNaoAberta),
		errors.Is(err, service.ErrPedidoFechado),
		errors.Is(err, service.ErrPedidoJaCancel),
		errors.Is(err, service.ErrPagamentoInvalid):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrPagamentoDivergente),
		errors.Is(err, service.ErrPagamentoExcedente):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
