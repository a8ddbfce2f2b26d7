package ticktick

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// inputValidator returns the shared validator with the TickTick rules registered.
func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(snakeJSONName)
		_ = v.RegisterValidation("priority", isPriority)
		_ = v.RegisterValidation("isodate", isISODate)
		validate = v
	})
	return validate
}

// isPriority accepts the four TickTick priorities.
func isPriority(fl validator.FieldLevel) bool {
	return Priority(fl.Field().Int()).Valid()
}

// isoDatePrefix is the YYYY-MM-DD date, alone or followed by a time.
var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[T ]|$)`)

// isISODate accepts ISO 8601 dates and timestamps, such as 2025-11-07 or
// 2025-11-07T09:00:00+0000.
func isISODate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if !isoDatePrefix.MatchString(value) {
		return false
	}
	_, err := dateparse.ParseStrict(value)
	return err == nil
}

// snakeJSONName reports fields by their snake_case JSON name, so messages
// read "start_date" rather than "StartDate".
func snakeJSONName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		name = f.Name
	}
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// validateInput validates s, skipping the named struct fields, and turns the
// first violation into a readable error.
func validateInput(s interface{}, except ...string) error {
	v := inputValidator()

	var err error
	if len(except) > 0 {
		err = v.StructExcept(s, except...)
	} else {
		err = v.Struct(s)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return errors.New(describeFieldError(verrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' is required and cannot be empty", fe.Field())
	case "priority":
		return fmt.Sprintf("Invalid priority %d. Must be 0 (None), 1 (Low), 3 (Medium), or 5 (High)", fe.Value())
	case "isodate":
		return fmt.Sprintf("Invalid %s format '%v'. Use ISO format: YYYY-MM-DDThh:mm:ss+0000", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("Invalid %s '%v'. Must be one of: %s", fe.Field(), fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid %s: failed %q validation", fe.Field(), fe.Tag())
	}
}
