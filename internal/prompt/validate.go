package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validator rejects an answer with an operator-facing message.
type Validator func(answer string) error

// ValidationError carries the message shown before re-asking.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string { return e.Message }

// Invalid returns a ValidationError with msg.
func Invalid(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// MatchRegexp accepts answers matching re.
func MatchRegexp(re *regexp.Regexp, msg string) Validator {
	return func(answer string) error {
		if !re.MatchString(answer) {
			return Invalid("%s", msg)
		}
		return nil
	}
}

var digits = regexp.MustCompile(`^[0-9]+$`)

// IntInRange accepts a decimal integer in [min, max]. msg may contain
// two %d verbs for the bounds.
func IntInRange(min, max int, msg string) Validator {
	return func(answer string) error {
		if !digits.MatchString(answer) {
			return Invalid(msg, min, max)
		}
		n, err := strconv.Atoi(answer)
		if err != nil || n < min || n > max {
			return Invalid(msg, min, max)
		}
		return nil
	}
}

// Choice accepts a menu selection 1..n.
func Choice(n int) Validator {
	if n == 2 {
		return IntInRange(1, 2, "Please enter %d or %d")
	}
	return IntInRange(1, n, "Please enter a number between %d and %d")
}

// YesNo accepts Y or N in any case.
func YesNo() Validator {
	return func(answer string) error {
		switch strings.ToUpper(answer) {
		case "Y", "N":
			return nil
		}
		return Invalid("Please enter Y or n")
	}
}

// IsYes reports whether answer is an affirmative Y/n answer.
func IsYes(answer string) bool {
	return strings.EqualFold(answer, "Y")
}
