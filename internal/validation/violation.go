package validation

// Violation is a single constraint failure reported by an Engine.
//
// The validator never rewrites, merges or drops violations: what the engine
// reports is what ends up in Error.Errors.
type Violation struct {
	// Message is the human readable description of the failure.
	Message string `json:"message"`

	// Path locates the offending value inside the region data.
	// An empty path points at the region data itself.
	Path []string `json:"path"`

	// Type is the machine readable rule that failed (e.g. "required",
	// "type", "additionalProperties").
	Type string `json:"type"`

	// Context carries engine specific details such as the field label,
	// the rule parameter or the region.
	Context map[string]any `json:"context,omitempty"`
}
