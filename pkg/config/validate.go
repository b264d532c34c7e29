package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate rejects structurally impossible configurations such as negative
// node counts or empty grids. Out-of-range probabilities and oversized seed
// counts are accepted; see Normalize.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, formatValidationError(err))
	}
	return nil
}

// formatValidationError converts validator errors to a single readable line
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		switch e.Tag() {
		case "gte":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", e.Namespace(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s failed %s validation", e.Namespace(), e.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}
