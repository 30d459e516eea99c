package stix

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/muchdogesec/location2stix/pkg/errors"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
	if err := validate.RegisterValidation("stixid", validateStixID); err != nil {
		panic(err)
	}
}

// validateStixID checks a "<type>--<uuid>" identifier whose type is the tag
// parameter.
func validateStixID(fl validator.FieldLevel) bool {
	return IsValidID(fl.Field().String(), fl.Param())
}

// Validate checks a constructed object against its struct constraints.
// Raw objects only need a well-formed identifier.
func Validate(obj Object) error {
	if obj == nil {
		return errors.New(errors.ErrCodeInvalidObject, "object cannot be nil")
	}
	if raw, ok := obj.(*RawObject); ok {
		if !IsValidID(raw.ID, raw.Type) {
			return errors.New(errors.ErrCodeInvalidObject, "invalid id %q for type %q", raw.ID, raw.Type)
		}
		return nil
	}
	if err := validate.Struct(obj); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidObject, formatValidationError(err), "%s %s", obj.ObjectType(), obj.ObjectID())
	}
	return nil
}

// formatValidationError flattens validator field errors into one message.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s (got %v)", fe.Namespace(), fe.Tag(), fe.Value()))
		}
	}
	return stderrors.New(strings.Join(msgs, "; "))
}
