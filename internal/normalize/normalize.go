// Package normalize parses caller-supplied CV data and fills in the default
// schema the templating engine expects.
package normalize

import (
	"encoding/json"
)

// Context represents the CV data mapping passed to the templating engine.
type Context map[string]any

// Parse decodes a raw JSON string into a Context.
// The payload must decode to a JSON object; arrays, scalars and null are
// rejected with an InvalidInputError.
func Parse(raw string) (Context, error) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, &InvalidInputError{
			Message: "cv_data is not valid JSON",
			Cause:   err,
		}
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, &InvalidInputError{
			Message: "cv_data must be a JSON object",
		}
	}

	return Context(obj), nil
}

// Defaults returns the default schema for a render context.
// A fresh value is built on every call so that mutable containers are never
// shared between concurrent requests.
func Defaults() Context {
	return Context{
		"candidate":          defaultCandidate(),
		"target_title":       "",
		"headline_keywords":  "",
		"top_summary":        "",
		"summary":            "",
		"topkeywords":        []any{},
		"tools":              defaultTools(),
		"functional_domains": []any{},
		"experience":         []any{},
		"education":          []any{},
		"certifications":     []any{},
		"languages":          []any{},
	}
}

func defaultCandidate() map[string]any {
	return map[string]any{
		"first_name": "",
		"last_name":  "",
		"location":   "",
		"phone":      "",
		"email":      "",
	}
}

func defaultTools() map[string]any {
	return map[string]any{
		"office_automation": []any{},
		"genai":             []any{},
	}
}

// Normalize fills absent or null schema keys with their defaults and repairs
// the shape of the candidate and tools objects. Caller-supplied non-null
// values are never overwritten, and unknown keys pass through untouched.
// The input mapping is mutated in place and returned.
func Normalize(ctx Context) Context {
	for key, value := range Defaults() {
		if existing, ok := ctx[key]; !ok || existing == nil {
			ctx[key] = value
		}
	}

	// The generic fill only catches absent/null values; a candidate or tools
	// entry of the wrong shape is replaced wholesale.
	if _, ok := ctx["candidate"].(map[string]any); !ok {
		ctx["candidate"] = defaultCandidate()
	}
	if _, ok := ctx["tools"].(map[string]any); !ok {
		ctx["tools"] = defaultTools()
	}

	return ctx
}
