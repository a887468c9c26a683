package sitedata

import (
	"bytes"
	"encoding/json"
	"fmt"

	"securecam-site/models"
)

// Encode serializes doc the way it is stored and committed:
// two-space indent with a trailing newline
func Encode(doc models.SiteData) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode site data: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a stored document. Documents older than the current schema
// version have their legacy field names migrated before decoding.
func Decode(raw []byte) (models.SiteData, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return models.SiteData{}, err
	}
	var doc models.SiteData
	if err := json.Unmarshal(normalized, &doc); err != nil {
		return models.SiteData{}, fmt.Errorf("invalid site data JSON: %w", err)
	}
	return doc, nil
}

// LooksValid reports whether raw is a JSON object with a branding object,
// the minimum a remote document needs to replace local state
func LooksValid(raw []byte) bool {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return false
	}
	branding, ok := top["branding"]
	if !ok {
		return false
	}
	var obj map[string]json.RawMessage
	return json.Unmarshal(branding, &obj) == nil && obj != nil
}

type jsonObject = map[string]any

// migrateLegacy rewrites the v1 field names into the v2 shape:
// home.title/subtitle/heroImage -> home.hero, projects.gallery/list -> projects.items,
// project image/desc -> imageUrl/description
func migrateLegacy(raw []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc jsonObject
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid site data JSON: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("invalid site data JSON: document must be an object")
	}

	if home, ok := doc["home"].(jsonObject); ok {
		hero, _ := home["hero"].(jsonObject)
		if hero == nil {
			hero = jsonObject{}
		}
		moveKey(home, "title", hero, "title")
		moveKey(home, "subtitle", hero, "subtitle")
		moveKey(home, "heroImage", hero, "imageUrl")
		if len(hero) > 0 {
			home["hero"] = hero
		}
	}

	if projects, ok := doc["projects"].(jsonObject); ok {
		if _, has := projects["items"]; !has {
			for _, legacy := range []string{"gallery", "list"} {
				if items, ok := projects[legacy]; ok {
					projects["items"] = items
					break
				}
			}
		}
		delete(projects, "gallery")
		delete(projects, "list")

		if items, ok := projects["items"].([]any); ok {
			for _, it := range items {
				item, ok := it.(jsonObject)
				if !ok {
					continue
				}
				moveKey(item, "image", item, "imageUrl")
				moveKey(item, "desc", item, "description")
			}
		}
	}

	doc["schemaVersion"] = models.CurrentSchemaVersion

	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode migrated site data: %w", err)
	}
	return out, nil
}

// moveKey moves src[from] to dst[to] unless dst already has a value there
func moveKey(src jsonObject, from string, dst jsonObject, to string) {
	v, ok := src[from]
	if !ok {
		return
	}
	delete(src, from)
	if _, exists := dst[to]; !exists {
		dst[to] = v
	}
}
