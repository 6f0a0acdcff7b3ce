package api

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validIDRE matches the allowed character set for resource identifiers:
// alphanumeric plus dot, underscore, and hyphen (covers UUIDs).
var validIDRE = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,64}$`)

// ValidateID checks that id is a well-formed resource identifier. Returns a
// non-nil error with a user-readable message if validation fails.
func ValidateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id must not be empty", ErrValidation)
	}
	if strings.ContainsAny(id, "/\\\x00\n\r") {
		return fmt.Errorf("%w: id %q contains invalid characters", ErrValidation, id)
	}
	if !validIDRE.MatchString(id) {
		return fmt.Errorf("%w: id %q is invalid (allowed: a-z A-Z 0-9 . _ - up to 64 chars)", ErrValidation, id)
	}
	return nil
}

// ValidateIDs checks every id in a bulk payload and enforces the server's
// batch cap locally, so an oversized or empty batch never reaches the wire.
func ValidateIDs(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no ids provided", ErrValidation)
	}
	if len(ids) > 100 {
		return fmt.Errorf("%w: cannot operate on more than 100 ids at once", ErrValidation)
	}
	for _, id := range ids {
		if err := ValidateID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRequest runs struct-tag validation on a request payload.
func ValidateRequest(payload any) error {
	if err := structValidator.Struct(payload); err != nil {
		var errs validator.ValidationErrors
		if errors.As(err, &errs) && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("%w: field %q failed rule %q", ErrValidation, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
