package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	customError "github.com/segyhp/xp-lending/pkg/errors"
	"github.com/segyhp/xp-lending/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// NewValidator returns a validator that understands decimal amounts, e.g. `validate:"decimal_gt=0"`.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("decimal_gt", decimalGreaterThan)
	return v
}

func decimalGreaterThan(fl validator.FieldLevel) bool {
	value, err := utils.DecimalFromString(fl.Field().String())
	if err != nil {
		return false
	}
	bound, err := utils.DecimalFromString(fl.Param())
	if err != nil {
		return false
	}
	return value.GreaterThan(bound)
}

// decode reads a JSON body into dst and validates it. An empty body leaves dst zero-valued.
func decode(r *http.Request, v *validator.Validate, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return customError.WrapValidation("Invalid request body")
	}
	if err := v.Struct(dst); err != nil {
		return customError.NewBusinessError(customError.ErrCodeValidation, validationMessage(err), customError.ErrValidation)
	}
	return nil
}

func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Invalid request"
	}
	first := errs[0]
	return "Field " + first.Field() + " failed on " + first.Tag()
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, customError.WrapValidation("Invalid " + name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return n
}

func page(r *http.Request) (int, int) {
	return utils.Pagination(queryInt(r, "limit"), queryInt(r, "offset"), defaultPageSize, maxPageSize)
}
