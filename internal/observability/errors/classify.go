package errors

import (
	"errors"
	"reflect"
	"strings"
)

var classReplacer = strings.NewReplacer("*", "", ".", "_")

// Classify reduces an error to a stable snake_case class for metric tags:
// the innermost error's concrete type name, lowercased, package qualifier
// joined by an underscore ("net_operror", "errors_errorstring").
func Classify(err error) string {
	if err == nil {
		return ""
	}

	for inner := errors.Unwrap(err); inner != nil; inner = errors.Unwrap(err) {
		err = inner
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(classReplacer.Replace(t.String()))
	if name == "" {
		return "unknown"
	}
	return name
}
