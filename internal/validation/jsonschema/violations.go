package jsonschema

import (
	"regexp"
	"sort"
	"strings"

	jsv "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/deppfellow/v8n/internal/validation"
)

var quotedName = regexp.MustCompile(`'([^']*)'`)

// toViolations flattens the validation error tree into its leaves, sorted
// by instance location then keyword location. Missing required properties
// and rejected additional properties yield one violation per property.
func toViolations(root *jsv.ValidationError, region validation.Region) []validation.Violation {
	var leaves []*jsv.ValidationError
	collectLeaves(root, &leaves)

	sort.SliceStable(leaves, func(i, j int) bool {
		if leaves[i].InstanceLocation != leaves[j].InstanceLocation {
			return leaves[i].InstanceLocation < leaves[j].InstanceLocation
		}
		return leaves[i].KeywordLocation < leaves[j].KeywordLocation
	})

	var out []validation.Violation
	for _, leaf := range leaves {
		out = append(out, leafViolations(leaf, region)...)
	}
	return out
}

func collectLeaves(err *jsv.ValidationError, leaves *[]*jsv.ValidationError) {
	if len(err.Causes) == 0 {
		*leaves = append(*leaves, err)
		return
	}
	for _, cause := range err.Causes {
		collectLeaves(cause, leaves)
	}
}

func leafViolations(leaf *jsv.ValidationError, region validation.Region) []validation.Violation {
	path := splitPointer(leaf.InstanceLocation)
	keyword := lastSegment(leaf.KeywordLocation)

	if keyword == "required" || keyword == "additionalProperties" {
		names := quotedName.FindAllStringSubmatch(leaf.Message, -1)
		if len(names) > 0 {
			out := make([]validation.Violation, 0, len(names))
			for _, m := range names {
				fieldPath := append(append([]string{}, path...), m[1])
				out = append(out, violation(fieldPath, keyword, fieldMessage(keyword, m[1]), region))
			}
			return out
		}
	}

	return []validation.Violation{violation(path, keyword, leaf.Message, region)}
}

func violation(path []string, keyword, message string, region validation.Region) validation.Violation {
	label := strings.Join(path, ".")
	key := ""
	if len(path) > 0 {
		key = path[len(path)-1]
	}
	return validation.Violation{
		Message: message,
		Path:    path,
		Type:    keyword,
		Context: map[string]any{
			"key":    key,
			"label":  label,
			"region": string(region),
		},
	}
}

func fieldMessage(keyword, name string) string {
	if keyword == "required" {
		return `"` + name + `" is required`
	}
	return `"` + name + `" is not allowed`
}

// splitPointer splits a JSON pointer into its unescaped reference tokens.
func splitPointer(ptr string) []string {
	ptr = strings.TrimPrefix(ptr, "/")
	if ptr == "" {
		return []string{}
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		p = strings.ReplaceAll(p, "~1", "/")
		parts[i] = strings.ReplaceAll(p, "~0", "~")
	}
	return parts
}

func lastSegment(ptr string) string {
	if i := strings.LastIndex(ptr, "/"); i >= 0 {
		return ptr[i+1:]
	}
	return ptr
}
