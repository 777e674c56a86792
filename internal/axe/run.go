package axe

import "encoding/json"

// runOptions is the axe.run options object for conformance filtering.
type runOptions struct {
	RunOnly *runOnly `json:"runOnly,omitempty"` //nolint:tagliatelle // axe-core field name
}

// runOnly restricts the engine to rules carrying the given tags.
type runOnly struct {
	Type   string   `json:"type"`
	Values []string `json:"values"`
}

// RunExpression builds the JavaScript expression that invokes the rule
// engine against the full document.
//
// With a non-empty tag set the engine runs only the rules carrying any
// of the tags ({runOnly: {type: "tag", values: [...]}}). With an empty
// set it runs its full default rule set. The expression evaluates to a
// promise resolving to the results object; callers must await it.
//
// The options object is JSON-encoded rather than concatenated so that
// caller-supplied tags cannot break out of the expression.
func RunExpression(tags []string) string {
	if len(tags) == 0 {
		return "axe.run(document)"
	}

	opts := runOptions{
		RunOnly: &runOnly{
			Type:   "tag",
			Values: tags,
		},
	}

	// Marshal cannot fail for this shape.
	encoded, _ := json.Marshal(opts) //nolint:errcheck // static struct, no unmarshalable fields

	return "axe.run(document, " + string(encoded) + ")"
}
