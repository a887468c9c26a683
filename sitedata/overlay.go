package sitedata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"

	"securecam-site/models"
)

// Normalize parses raw as a site document and returns it in the current
// schema shape. Only legacy field names are rewritten; keys the models do not
// declare are kept as they are.
func Normalize(raw []byte) ([]byte, error) {
	var head struct {
		SchemaVersion int `json:"schemaVersion"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("invalid site data JSON: %w", err)
	}
	if head.SchemaVersion < models.CurrentSchemaVersion {
		migrated, err := migrateLegacy(raw)
		if err != nil {
			return nil, err
		}
		log.Printf("🔄 Normalize: migrated site data from schema v%d to v%d", head.SchemaVersion, models.CurrentSchemaVersion)
		return migrated, nil
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, fmt.Errorf("invalid site data JSON: document must be an object")
	}
	return raw, nil
}

// Overlay encodes doc on top of base, a previously stored or posted document.
// Values from doc win; object keys that only base has survive, and array
// elements carrying an "id" are matched by id so per-item extras survive too.
// With an empty base this is Encode.
func Overlay(base []byte, doc models.SiteData) ([]byte, error) {
	if len(bytes.TrimSpace(base)) == 0 {
		return Encode(doc)
	}
	baseValue, err := decodeGeneric(base)
	if err != nil {
		return nil, err
	}
	typed, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode site data: %w", err)
	}
	docValue, err := decodeGeneric(typed)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(mergeValue(baseValue, docValue), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode site data: %w", err)
	}
	return append(data, '\n'), nil
}

// Canonical is the committed form of a posted document: normalized, checked
// against the models, stripped of the GitHub token and pretty-printed, with
// unknown keys carried through
func Canonical(raw []byte) ([]byte, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(normalized)
	if err != nil {
		return nil, err
	}
	if err := doc.Catalog.Validate(); err != nil {
		return nil, err
	}
	return Overlay(normalized, doc.Redacted())
}

func decodeGeneric(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("invalid site data JSON: %w", err)
	}
	return v, nil
}

func mergeValue(base, over any) any {
	switch o := over.(type) {
	case jsonObject:
		b, ok := base.(jsonObject)
		if !ok {
			return o
		}
		out := make(jsonObject, len(b)+len(o))
		for k, v := range b {
			out[k] = v
		}
		for k, v := range o {
			out[k] = mergeValue(b[k], v)
		}
		return out
	case []any:
		b, ok := base.([]any)
		if !ok {
			return o
		}
		byID := make(map[string]any, len(b))
		for _, el := range b {
			if id, ok := elementID(el); ok {
				byID[id] = el
			}
		}
		out := make([]any, len(o))
		for i, el := range o {
			if id, ok := elementID(el); ok {
				out[i] = mergeValue(byID[id], el)
				continue
			}
			out[i] = el
		}
		return out
	default:
		return over
	}
}

func elementID(v any) (string, bool) {
	obj, ok := v.(jsonObject)
	if !ok {
		return "", false
	}
	id, ok := obj["id"].(string)
	return id, ok && id != ""
}
