package structs

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/deppfellow/v8n/internal/validation"
)

// tagViolations converts validator errors into violations with readable
// messages. The order is the order the validator walked the struct.
func tagViolations(fieldErrs validator.ValidationErrors, region validation.Region) []validation.Violation {
	out := make([]validation.Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		path := namespacePath(fe.Namespace())
		label := strings.Join(path, ".")

		ctx := map[string]any{
			"key":    fe.Field(),
			"label":  label,
			"region": string(region),
		}
		if fe.Param() != "" {
			ctx["param"] = fe.Param()
		}

		out = append(out, validation.Violation{
			Message: fmt.Sprintf("%q %s", label, tagMessage(fe)),
			Path:    path,
			Type:    fe.Tag(),
			Context: ctx,
		})
	}
	return out
}

// namespacePath drops the struct type name from a validator namespace
// ("CreateUser.address.city") and splits the rest.
func namespacePath(ns string) []string {
	parts := strings.Split(ns, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return parts
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"

	case "min":
		// Strings, slices and maps count elements, numbers compare values.
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must be at least %s %s", fe.Param(), unit(fe.Kind()))
		}
		return fmt.Sprintf("must be at least %s", fe.Param())

	case "max":
		if isLengthKind(fe.Kind()) {
			return fmt.Sprintf("must not exceed %s %s", fe.Param(), unit(fe.Kind()))
		}
		return fmt.Sprintf("must not exceed %s", fe.Param())

	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())

	case "email":
		return "must be a valid email address"

	case "e164":
		return "must be a valid phone number with country code"

	case "uuid", "uuid4":
		return "must be a valid UUID"

	case "uuidList":
		return "must be a comma-separated list of valid UUIDs"

	case "dive":
		return "some items are invalid"
	}

	if fe.Param() != "" {
		return fmt.Sprintf("failed on %s:%s", fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("failed on %s", fe.Tag())
}

func isLengthKind(k reflect.Kind) bool {
	switch k {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func unit(k reflect.Kind) string {
	if k == reflect.String {
		return "characters"
	}
	return "items"
}

var (
	decodeMessage = regexp.MustCompile(`^'([^']*)' (.*)$`)
	invalidKeys   = regexp.MustCompile(`has invalid keys: (.*)$`)
)

// decodeViolations converts mapstructure error strings. Unknown keys become
// one "unknown" violation each, anything else a "decode" violation.
func decodeViolations(messages []string, region validation.Region) []validation.Violation {
	var out []validation.Violation
	for _, msg := range messages {
		name, detail := "", msg
		if m := decodeMessage.FindStringSubmatch(msg); m != nil {
			name, detail = m[1], m[2]
		}
		parent := splitName(name)

		if m := invalidKeys.FindStringSubmatch(detail); m != nil {
			for _, key := range strings.Split(m[1], ", ") {
				path := append(append([]string{}, parent...), key)
				out = append(out, decodeViolation(path, "unknown", fmt.Sprintf("%q is not allowed", strings.Join(path, ".")), region))
			}
			continue
		}
		out = append(out, decodeViolation(parent, "decode", msg, region))
	}
	return out
}

func decodeViolation(path []string, typ, msg string, region validation.Region) validation.Violation {
	key := ""
	if len(path) > 0 {
		key = path[len(path)-1]
	}
	return validation.Violation{
		Message: msg,
		Path:    path,
		Type:    typ,
		Context: map[string]any{
			"key":    key,
			"label":  strings.Join(path, "."),
			"region": string(region),
		},
	}
}

// splitName splits a mapstructure field name ("items[0].name") into path
// segments.
func splitName(name string) []string {
	if name == "" {
		return []string{}
	}
	name = strings.ReplaceAll(name, "[", ".")
	name = strings.ReplaceAll(name, "]", "")
	return strings.Split(name, ".")
}

// IsValidUUID accepts the canonical 8-4-4-4-12 form only. uuid.Parse alone
// also takes the urn, braced and undashed forms.
func IsValidUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// IsValidUUIDList reports whether s is a non-empty comma-separated list of
// UUIDs.
func IsValidUUIDList(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, ",") {
		if !IsValidUUID(strings.TrimSpace(part)) {
			return false
		}
	}
	return true
}
