package usecase

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
)

// NormalizeNumber returns the key used for duplicate detection: the digits of
// number, without a leading US country code. Input without any digits is
// compared case-insensitively as typed.
func NormalizeNumber(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if digits == "" {
		return strings.ToLower(strings.TrimSpace(number))
	}
	return digits
}

// SameNumber reports whether a and b address the same phone number.
func SameNumber(a, b string) bool {
	return NormalizeNumber(a) == NormalizeNumber(b)
}

func newValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// validateDraft trims the draft and checks its struct constraints.
func validateDraft(v *validator.Validate, draft model.Draft) (model.Draft, error) {
	draft.Number = strings.TrimSpace(draft.Number)
	if draft.Name != nil {
		name := strings.TrimSpace(*draft.Name)
		if name == "" {
			draft.Name = nil
		} else {
			draft.Name = &name
		}
	}
	if err := v.Struct(draft); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return draft, fmt.Errorf("%w: %s failed %q", domainErrors.ErrInvalidDraft, strings.ToLower(fe.Field()), fe.Tag())
		}
		return draft, fmt.Errorf("%w: %v", domainErrors.ErrInvalidDraft, err)
	}
	return draft, nil
}
