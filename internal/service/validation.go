package service

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/hongminglow/elearn-be/internal/apperr"
)

// invalid turns a request validation failure into a validation error carrying
// the first field message, ordered by field name.
func invalid(err error) error {
	var fields validation.Errors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return apperr.Validation(err.Error())
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return apperr.Wrap(apperr.ErrValidation, fields[keys[0]].Error(), err)
}
