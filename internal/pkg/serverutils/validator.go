package serverutils

import (
	"fmt"
	"strings"

	"portfolio-assistant-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a dto against its `validate` tags and folds any
// failures into one invalid-input error the error middleware maps to 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperror.Wrap(apperror.KindInvalidInput, "validate", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperror.New(apperror.KindInvalidInput, "validate", "%s", strings.Join(fields, "; "))
}
