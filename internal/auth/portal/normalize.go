package portal

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"jamsession/pkg/domain"
)

// NormalizeResources turns the project-listing body into a flat resource list.
//
// The portal contract is undocumented. A bare array is the list. For an object,
// the first array-valued member in document order is taken as the list; this
// is a heuristic and should be replaced by a named field once the portal
// publishes one. Anything else yields an empty, non-nil slice.
func NormalizeResources(body []byte) []domain.Resource {
	resources, err := normalize(body)
	if err != nil || resources == nil {
		return []domain.Resource{}
	}
	return resources
}

func normalize(body []byte) ([]domain.Resource, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch tok {
	case json.Delim('['):
		return decodeArray(dec)
	case json.Delim('{'):
		for dec.More() {
			if _, err := dec.Token(); err != nil { // member name
				return nil, err
			}
			var value json.RawMessage
			if err := dec.Decode(&value); err != nil {
				return nil, err
			}
			if len(value) > 0 && value[0] == '[' {
				var resources []domain.Resource
				if err := json.Unmarshal(value, &resources); err != nil {
					return nil, err
				}
				return resources, nil
			}
		}
	}
	return nil, nil
}

func decodeArray(dec *json.Decoder) ([]domain.Resource, error) {
	resources := []domain.Resource{}
	for dec.More() {
		var item domain.Resource
		if err := dec.Decode(&item); err != nil {
			return nil, err
		}
		resources = append(resources, item)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return resources, nil
}
