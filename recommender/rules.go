package recommender

import (
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"securecam-site/models"
)

//go:embed rules.toml
var defaultRulesTOML string

// Rules is the recommender configuration: the ordered system decision table
// plus the catalog vocabulary (tags, keywords, size tiers, reason templates)
// used by each item rule.
type Rules struct {
	DefaultSystem models.SystemType `toml:"default_system"`
	CameraTags    []string          `toml:"camera_tags"`
	SystemRules   []SystemRule      `toml:"system_rules"`
	Recorder      SizedLookup       `toml:"recorder"`
	Switch        SwitchLookup      `toml:"switch"`
	PowerSupply   PowerSupplyLookup `toml:"power_supply"`
	Wireless      WirelessLookup    `toml:"wireless"`
	UPS           Lookup            `toml:"ups"`
}

// SystemRule is one row of the system decision table.
// Every non-empty field must match; empty fields are wildcards.
type SystemRule struct {
	ID              string            `toml:"id"`
	System          models.SystemType `toml:"system"`
	SmartAlerts     *bool             `toml:"smart_alerts"`
	Priority        []string          `toml:"priority"`
	InternetType    []string          `toml:"internet_type"`
	AvgDistance     []string          `toml:"avg_distance"`
	CableDifficulty []string          `toml:"cable_difficulty"`
}

// Tier maps a camera count to a device size (channels or ports).
// MaxCameras == 0 marks the catch-all tier.
type Tier struct {
	MaxCameras int `toml:"max_cameras"`
	Size       int `toml:"size"`
}

// Lookup describes how to find one kind of product
type Lookup struct {
	Tags     []string `toml:"tags"`
	Keywords []string `toml:"keywords"`
	Reason   string   `toml:"reason"`
}

// SizedLookup describes the recorder search: a family tag per system plus a size tag
type SizedLookup struct {
	IPTag          string   `toml:"ip_tag"`
	AnalogTag      string   `toml:"analog_tag"`
	SizeTagPrefix  string   `toml:"size_tag_prefix"`
	IPKeywords     []string `toml:"ip_keywords"`
	AnalogKeywords []string `toml:"analog_keywords"`
	Reason         string   `toml:"reason"`
	Tiers          []Tier   `toml:"tiers"`
}

// SwitchLookup describes the network switch search for IP systems
type SwitchLookup struct {
	PoETag        string   `toml:"poe_tag"`
	PlainTag      string   `toml:"plain_tag"`
	SizeTagPrefix string   `toml:"size_tag_prefix"`
	PoEKeywords   []string `toml:"poe_keywords"`
	PlainKeywords []string `toml:"plain_keywords"`
	ReasonPoE     string   `toml:"reason_poe"`
	ReasonPlain   string   `toml:"reason_plain"`
	Tiers         []Tier   `toml:"tiers"`
}

// PowerSupplyLookup describes the power supply search for analog systems
type PowerSupplyLookup struct {
	Lookup
	CamerasPerUnit int `toml:"cameras_per_unit"`
}

// WirelessLookup describes the wireless link search: a paired kit first, single units otherwise
type WirelessLookup struct {
	KitTags        []string `toml:"kit_tags"`
	KitKeywords    []string `toml:"kit_keywords"`
	LinkTags       []string `toml:"link_tags"`
	LinkKeywords   []string `toml:"link_keywords"`
	ReasonRequired string   `toml:"reason_required"`
	ReasonOptional string   `toml:"reason_optional"`
}

// DefaultRules returns the rules compiled into the binary
func DefaultRules() (*Rules, error) {
	return ReadRules(strings.NewReader(defaultRulesTOML))
}

// ReadRules decodes and validates rules from r
func ReadRules(r io.Reader) (*Rules, error) {
	var rules Rules
	if _, err := toml.NewDecoder(r).Decode(&rules); err != nil {
		return nil, fmt.Errorf("failed to decode recommender rules: %w", err)
	}
	if err := rules.validate(); err != nil {
		return nil, fmt.Errorf("invalid recommender rules: %w", err)
	}
	return &rules, nil
}

// LoadRules reads rules from path, or the compiled-in defaults when path is empty
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open recommender rules: %w", err)
	}
	defer f.Close()

	rules, err := ReadRules(f)
	if err != nil {
		return nil, fmt.Errorf("reading rules from %s: %w", path, err)
	}
	log.Printf("✅ Recommender: loaded %d system rules from %s", len(rules.SystemRules), path)
	return rules, nil
}

func (r *Rules) validate() error {
	if !validSystem(r.DefaultSystem) {
		return fmt.Errorf("default_system must be ip or analog, got %q", r.DefaultSystem)
	}
	for i, rule := range r.SystemRules {
		if rule.ID == "" {
			return fmt.Errorf("system rule %d has no id", i)
		}
		if !validSystem(rule.System) {
			return fmt.Errorf("system rule %s: system must be ip or analog, got %q", rule.ID, rule.System)
		}
	}
	if len(r.Recorder.Tiers) == 0 {
		return fmt.Errorf("recorder tiers are required")
	}
	if len(r.Switch.Tiers) == 0 {
		return fmt.Errorf("switch tiers are required")
	}
	if r.PowerSupply.CamerasPerUnit <= 0 {
		return fmt.Errorf("power_supply.cameras_per_unit must be positive")
	}
	return nil
}

func validSystem(s models.SystemType) bool {
	return s == models.SystemIP || s == models.SystemAnalog
}

// Matches reports whether every populated field of the rule matches answers
func (r SystemRule) Matches(answers models.QuestionnaireAnswers) bool {
	if r.SmartAlerts != nil && *r.SmartAlerts != answers.SmartAlerts {
		return false
	}
	return oneOf(r.Priority, answers.Priority) &&
		oneOf(r.InternetType, answers.InternetType) &&
		oneOf(r.AvgDistance, answers.AvgDistance) &&
		oneOf(r.CableDifficulty, answers.CableDifficulty)
}

// oneOf treats an empty allowed list as a wildcard
func oneOf(allowed []string, value string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return true
		}
	}
	return false
}

// sizeFor returns the size of the first tier that fits cameras, or the last tier's size
func sizeFor(tiers []Tier, cameras int) int {
	for _, t := range tiers {
		if t.MaxCameras == 0 || cameras <= t.MaxCameras {
			return t.Size
		}
	}
	return tiers[len(tiers)-1].Size
}
