package sitedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"securecam-site/models"
	"securecam-site/repository"
)

// Change sources
const (
	SourceLocal    = "local"
	SourceExternal = "external"
	SourceRemote   = "remote"
)

// Sections that MergeSection accepts
var Sections = []string{
	"branding", "home", "about", "contact", "equipment", "projects",
	"catalog", "githubSettings", "whatsappConfig", "aiSettings",
}

// Event announces that a new document value was applied
type Event struct {
	Revision string    `json:"revision"`
	Section  string    `json:"section"`
	Source   string    `json:"source"`
	At       time.Time `json:"at"`
}

// Store owns the single live site document. Every edit builds a new value from
// a copy of the current one, persists it to the repository and only then swaps
// it in; readers always get deep copies. base is the last stored JSON, which
// keeps the keys the models do not declare.
type Store struct {
	repo repository.SiteDataRepositoryInterface

	mu       sync.RWMutex
	doc      models.SiteData
	base     []byte
	revision string

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// NewStore creates a store holding initial
func NewStore(repo repository.SiteDataRepositoryInterface, initial models.SiteData) *Store {
	return &Store{
		repo:     repo,
		doc:      initial.Clone(),
		revision: uuid.NewString(),
		subs:     make(map[int]chan Event),
	}
}

// Open builds a store from the repository, falling back to the compiled-in
// defaults when nothing is stored or the stored document cannot be read
func Open(ctx context.Context, repo repository.SiteDataRepositoryInterface) *Store {
	raw, found, err := repo.Load(ctx)
	switch {
	case err != nil:
		log.Printf("⚠️  Open: could not read local site data, using defaults: %v", err)
	case !found:
		log.Printf("📄 Open: no local site data, using defaults")
	default:
		normalized, doc, err := decodeNormalized(raw)
		if err == nil {
			log.Printf("✅ Open: loaded local site data (%d products)", len(doc.Catalog.Products))
			store := NewStore(repo, doc)
			store.base = normalized
			return store
		}
		log.Printf("⚠️  Open: stored site data is invalid, using defaults: %v", err)
	}
	return NewStore(repo, Defaults())
}

// Snapshot returns a deep copy of the current document and its revision
func (s *Store) Snapshot() (models.SiteData, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone(), s.revision
}

// SnapshotJSON returns the current document as served: token removed, keys
// the models do not declare included
func (s *Store) SnapshotJSON() ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, err := Overlay(s.base, s.doc.Redacted())
	if err != nil {
		return nil, "", err
	}
	return raw, s.revision, nil
}

// Revision returns the id of the current document value
func (s *Store) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// update applies edit to a copy of the document, persists it and swaps it in.
// When edit or persistence fails the live document is left untouched.
func (s *Store) update(ctx context.Context, section, source string, edit func(doc *models.SiteData) error) (string, error) {
	return s.updateBase(ctx, section, source, func(doc *models.SiteData, base []byte) ([]byte, error) {
		return base, edit(doc)
	})
}

// updateBase is update for edits that also replace the stored JSON the
// document is written over
func (s *Store) updateBase(ctx context.Context, section, source string, edit func(doc *models.SiteData, base []byte) ([]byte, error)) (string, error) {
	s.mu.Lock()
	next := s.doc.Clone()
	base, err := edit(&next, s.base)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if err := next.Catalog.Validate(); err != nil {
		s.mu.Unlock()
		return "", err
	}
	raw, err := Overlay(base, next)
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	if err := s.repo.Save(ctx, raw); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("failed to persist site data: %w", err)
	}
	s.doc = next
	s.base = raw
	s.revision = uuid.NewString()
	ev := Event{Revision: s.revision, Section: section, Source: source, At: time.Now().UTC()}
	s.mu.Unlock()

	s.publish(ev)
	return ev.Revision, nil
}

// Replace swaps in a whole new document. An empty GitHub token keeps the
// stored one, since served documents never carry it.
func (s *Store) Replace(ctx context.Context, doc models.SiteData) (string, error) {
	return s.update(ctx, "*", SourceLocal, func(cur *models.SiteData) error {
		replaceKeepingToken(cur, doc)
		return nil
	})
}

// ReplaceJSON swaps in a whole new document given as JSON. Keys the models
// do not declare are kept, and an empty GitHub token keeps the stored one.
func (s *Store) ReplaceJSON(ctx context.Context, raw []byte) (string, error) {
	normalized, doc, err := decodeNormalized(raw)
	if err != nil {
		return "", models.NewValidationError("Invalid site data: %v", err)
	}
	return s.updateBase(ctx, "*", SourceLocal, func(cur *models.SiteData, _ []byte) ([]byte, error) {
		replaceKeepingToken(cur, doc)
		return normalized, nil
	})
}

func replaceKeepingToken(cur *models.SiteData, doc models.SiteData) {
	token := cur.GitHubSettings.Token
	*cur = doc.Clone()
	if cur.GitHubSettings.Token == "" {
		cur.GitHubSettings.Token = token
	}
	cur.SchemaVersion = models.CurrentSchemaVersion
}

// ApplyExternal applies a document written elsewhere verbatim (last writer wins)
func (s *Store) ApplyExternal(ctx context.Context, doc models.SiteData) (string, error) {
	return s.update(ctx, "*", SourceExternal, func(cur *models.SiteData) error {
		*cur = doc.Clone()
		return nil
	})
}

// applyJSON applies a normalized document verbatim along with its JSON
func (s *Store) applyJSON(ctx context.Context, normalized []byte, doc models.SiteData, source string) (string, error) {
	return s.updateBase(ctx, "*", source, func(cur *models.SiteData, _ []byte) ([]byte, error) {
		*cur = doc.Clone()
		return normalized, nil
	})
}

// decodeNormalized migrates raw to the current shape and decodes it
func decodeNormalized(raw []byte) ([]byte, models.SiteData, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return nil, models.SiteData{}, err
	}
	doc, err := Decode(normalized)
	if err != nil {
		return nil, models.SiteData{}, err
	}
	return normalized, doc, nil
}

// MergeSection merges patch, a JSON object, into one top-level section.
// Keys of the patch replace the section's keys; other sections are untouched.
func (s *Store) MergeSection(ctx context.Context, section string, patch json.RawMessage) (string, error) {
	if !knownSection(section) {
		return "", models.NewValidationError("unknown section %q", section)
	}
	var patchFields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &patchFields); err != nil || patchFields == nil {
		return "", models.NewValidationError("section patch must be a JSON object")
	}

	return s.updateBase(ctx, section, SourceLocal, func(cur *models.SiteData, base []byte) ([]byte, error) {
		var top map[string]json.RawMessage
		if err := remarshal(cur, &top); err != nil {
			return nil, err
		}
		merged, err := mergeFields(top[section], patchFields)
		if err != nil {
			return nil, fmt.Errorf("failed to merge section %s: %w", section, err)
		}
		top[section] = merged

		var next models.SiteData
		if err := remarshal(top, &next); err != nil {
			return nil, models.NewValidationError("invalid %s patch: %v", section, err)
		}
		if next.GitHubSettings.Token == "" {
			next.GitHubSettings.Token = cur.GitHubSettings.Token
		}
		*cur = next

		if len(base) == 0 {
			return json.Marshal(top)
		}
		return mergeBaseSection(base, section, patchFields)
	})
}

// mergeFields sets the patch keys on the JSON object section
func mergeFields(section json.RawMessage, patch map[string]json.RawMessage) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(section, &fields); err != nil || fields == nil {
		fields = map[string]json.RawMessage{}
	}
	for k, v := range patch {
		fields[k] = v
	}
	return json.Marshal(fields)
}

// mergeBaseSection applies the patch to the stored JSON too, so patch keys
// the models do not declare are kept
func mergeBaseSection(base []byte, section string, patch map[string]json.RawMessage) ([]byte, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(base, &top); err != nil || top == nil {
		return nil, nil
	}
	merged, err := mergeFields(top[section], patch)
	if err != nil {
		return nil, fmt.Errorf("failed to merge section %s: %w", section, err)
	}
	top[section] = merged
	return json.Marshal(top)
}

// UpsertProduct replaces the product with the same id or appends it
func (s *Store) UpsertProduct(ctx context.Context, p models.Product) (string, error) {
	if p.ID == "" {
		return "", models.NewValidationError("product id is required")
	}
	if p.PriceNet < 0 {
		return "", models.NewValidationError("priceNet must not be negative")
	}
	return s.update(ctx, "catalog", SourceLocal, func(cur *models.SiteData) error {
		for i := range cur.Catalog.Products {
			if cur.Catalog.Products[i].ID == p.ID {
				cur.Catalog.Products[i] = p
				return nil
			}
		}
		cur.Catalog.Products = append(cur.Catalog.Products, p)
		return nil
	})
}

// DeleteProduct removes a product; found is false when the id is unknown
func (s *Store) DeleteProduct(ctx context.Context, id string) (found bool, err error) {
	_, err = s.update(ctx, "catalog", SourceLocal, func(cur *models.SiteData) error {
		kept := make([]models.Product, 0, len(cur.Catalog.Products))
		for _, p := range cur.Catalog.Products {
			if p.ID == id {
				found = true
				continue
			}
			kept = append(kept, p)
		}
		if !found {
			return errNotFound
		}
		cur.Catalog.Products = kept
		return nil
	})
	if err == errNotFound {
		return false, nil
	}
	return found, err
}

// UpsertCategory replaces the category with the same id or appends it
func (s *Store) UpsertCategory(ctx context.Context, c models.Category) (string, error) {
	if c.ID == "" {
		return "", models.NewValidationError("category id is required")
	}
	return s.update(ctx, "catalog", SourceLocal, func(cur *models.SiteData) error {
		for i := range cur.Catalog.Categories {
			if cur.Catalog.Categories[i].ID == c.ID {
				cur.Catalog.Categories[i] = c
				return nil
			}
		}
		cur.Catalog.Categories = append(cur.Catalog.Categories, c)
		return nil
	})
}

// DeleteCategory removes a category. Products pointing at it keep the dangling id.
func (s *Store) DeleteCategory(ctx context.Context, id string) (found bool, err error) {
	_, err = s.update(ctx, "catalog", SourceLocal, func(cur *models.SiteData) error {
		kept := make([]models.Category, 0, len(cur.Catalog.Categories))
		for _, c := range cur.Catalog.Categories {
			if c.ID == id {
				found = true
				continue
			}
			kept = append(kept, c)
		}
		if !found {
			return errNotFound
		}
		cur.Catalog.Categories = kept
		return nil
	})
	if err == errNotFound {
		return false, nil
	}
	return found, err
}

// UpdateBranding replaces the branding block
func (s *Store) UpdateBranding(ctx context.Context, b models.Branding) (string, error) {
	return s.update(ctx, "branding", SourceLocal, func(cur *models.SiteData) error {
		cur.Branding = b
		return nil
	})
}

// UpdateGitHubSettings replaces the repository settings; an empty token keeps the stored one
func (s *Store) UpdateGitHubSettings(ctx context.Context, g models.GitHubSettings) (string, error) {
	return s.update(ctx, "githubSettings", SourceLocal, func(cur *models.SiteData) error {
		if g.Token == "" {
			g.Token = cur.GitHubSettings.Token
		}
		cur.GitHubSettings = g
		return nil
	})
}

// Subscribe registers for change events. The returned cancel func must be
// called to release the subscription. Slow subscribers miss events rather
// than block writers.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("⚠️  Store: subscriber %d is behind, dropped event %s", id, ev.Revision)
		}
	}
}

var errNotFound = fmt.Errorf("not found")

func knownSection(name string) bool {
	for _, s := range Sections {
		if s == name {
			return true
		}
	}
	return false
}

// remarshal converts between JSON-compatible shapes
func remarshal(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
