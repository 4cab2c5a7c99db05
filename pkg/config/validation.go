package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks the configuration for errors. Struct tags cover the
// simple constraints; store validation runs separately because its
// rules depend on the selected backend.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		var errs validator.ValidationErrors
		if ok := asValidationErrors(err, &errs); ok {
			return fmt.Errorf("%s", formatValidationErrors(errs))
		}
		return err
	}

	if err := cfg.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}

// formatValidationErrors renders validator errors with config-file
// field paths instead of Go struct paths.
func formatValidationErrors(errs validator.ValidationErrors) string {
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("; ")
		}
		field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
		fmt.Fprintf(&sb, "%s: failed %q validation (value %v)", field, e.Tag(), e.Value())
	}
	return sb.String()
}
