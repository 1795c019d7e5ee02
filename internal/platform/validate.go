package platform

import (
	"fmt"
	"unicode/utf8"
)

// Validation is the outcome of a content check. Errors holds one
// human-readable message per violated limit.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateContent checks text and image counts against the platform's
// limits. All violations are accumulated; the input is never mutated.
func ValidateContent(p Platform, text string, images []string) (Validation, error) {
	cfg, err := GetConfig(p)
	if err != nil {
		return Validation{}, err
	}

	var errs []string

	if n := utf8.RuneCountInString(text); n > cfg.Limits.MaxTextLength {
		errs = append(errs, fmt.Sprintf(
			"text length %d exceeds %s limit of %d characters",
			n, cfg.DisplayName, cfg.Limits.MaxTextLength,
		))
	}

	if len(images) > cfg.Limits.MaxImages {
		errs = append(errs, fmt.Sprintf(
			"image count %d exceeds %s limit of %d images",
			len(images), cfg.DisplayName, cfg.Limits.MaxImages,
		))
	}

	return Validation{
		Valid:  len(errs) == 0,
		Errors: errs,
	}, nil
}
