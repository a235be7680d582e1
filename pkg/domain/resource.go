// Package domain holds the small value types shared by the server and the client guard.
package domain

import (
	"encoding/json"
)

// Resource is an opaque authorized-resource descriptor as returned by the portal.
// The raw JSON is preserved so it survives the session token round-trip unchanged.
type Resource json.RawMessage

// StringResource builds a descriptor from a bare project name.
func StringResource(name string) Resource {
	b, _ := json.Marshal(name) //nolint:errcheck // strings always marshal
	return Resource(b)
}

// MarshalJSON emits the raw descriptor.
func (r Resource) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON keeps a copy of the raw descriptor.
func (r *Resource) UnmarshalJSON(data []byte) error {
	*r = append((*r)[0:0], data...)
	return nil
}

// nameKeys are tried in order when a descriptor is an object.
var nameKeys = []string{"name", "projectName", "Name"}

// Name resolves the descriptor to a display name: a JSON string is its own name,
// an object contributes its first non-empty name field, anything else is "".
func (r Resource) Name() string {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return s
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(r, &obj); err != nil {
		return ""
	}
	for _, key := range nameKeys {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
	}
	return ""
}

// ResourceNames resolves every descriptor and drops the ones without a name.
func ResourceNames(resources []Resource) []string {
	names := make([]string, 0, len(resources))
	for _, r := range resources {
		if n := r.Name(); n != "" {
			names = append(names, n)
		}
	}
	return names
}
