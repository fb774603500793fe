package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"slices"

	"gorm.io/datatypes"
)

// Free-form documents are stored verbatim so unknown keys survive a round trip.
// Reads tolerate a missing document by treating it as empty.

var (
	emptyObject = datatypes.JSON(`{}`)
	emptyList   = datatypes.JSON(`[]`)
)

var (
	errNotObject = errors.New("must be a JSON object")
	errNotList   = errors.New("must be a JSON array")
)

func isBlank(doc []byte) bool {
	t := bytes.TrimSpace(doc)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// Object returns doc, or an empty object when doc is absent.
func Object(doc datatypes.JSON) datatypes.JSON {
	if isBlank(doc) {
		return slices.Clone(emptyObject)
	}
	return doc
}

// List returns doc, or an empty array when doc is absent.
func List(doc datatypes.JSON) datatypes.JSON {
	if isBlank(doc) {
		return slices.Clone(emptyList)
	}
	return doc
}

// ObjectDoc validates raw as a JSON object and converts it for storage.
func ObjectDoc(raw json.RawMessage) (datatypes.JSON, error) {
	if isBlank(raw) {
		return slices.Clone(emptyObject), nil
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errNotObject
	}
	return datatypes.JSON(slices.Clone(raw)), nil
}

// ListDoc validates raw as a JSON array and converts it for storage.
func ListDoc(raw json.RawMessage) (datatypes.JSON, error) {
	if isBlank(raw) {
		return slices.Clone(emptyList), nil
	}
	var probe []json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errNotList
	}
	return datatypes.JSON(slices.Clone(raw)), nil
}

// StringsDoc encodes a string list, storing nil as an empty array.
func StringsDoc(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	out, _ := json.Marshal(values)
	return datatypes.JSON(out)
}

// Strings decodes a stored string list. Absent or malformed documents yield nil.
func Strings(doc datatypes.JSON) []string {
	if isBlank(doc) {
		return nil
	}
	var out []string
	if err := json.Unmarshal(doc, &out); err != nil {
		return nil
	}
	return out
}

// CloneDoc copies a document so two rows never share a backing array.
func CloneDoc(doc datatypes.JSON) datatypes.JSON {
	if doc == nil {
		return nil
	}
	return slices.Clone(doc)
}
