package recommender

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"securecam-site/models"
)

// Result is the recommender output for one questionnaire
type Result struct {
	System      models.SystemType   `json:"system"`
	Suggestions []models.Suggestion `json:"suggestions"`
}

// Engine turns questionnaire answers into product suggestions
type Engine struct {
	rules *Rules
}

// NewEngine creates an engine over rules
func NewEngine(rules *Rules) *Engine {
	return &Engine{rules: rules}
}

// NewDefaultEngine creates an engine over the compiled-in rules
func NewDefaultEngine() (*Engine, error) {
	rules, err := DefaultRules()
	if err != nil {
		return nil, err
	}
	return NewEngine(rules), nil
}

// InferSystem walks the system decision table and returns the system of the
// first matching rule, or the default system when none match
func (e *Engine) InferSystem(answers models.QuestionnaireAnswers) models.SystemType {
	system, _ := e.inferSystem(answers)
	return system
}

func (e *Engine) inferSystem(answers models.QuestionnaireAnswers) (models.SystemType, string) {
	for _, rule := range e.rules.SystemRules {
		if rule.Matches(answers) {
			return rule.System, rule.ID
		}
	}
	return e.rules.DefaultSystem, "default"
}

// CamerasCount counts the camera products in cart
func (e *Engine) CamerasCount(cart models.Cart, products []models.Product) int {
	return cart.CamerasCount(products, e.rules.CameraTags)
}

// Recommend builds the suggestion list for products (already filtered to the
// active ones), answers and the number of cameras already chosen. Lookups that
// find nothing are left out; with no cameras nothing is suggested.
func (e *Engine) Recommend(products []models.Product, answers models.QuestionnaireAnswers, camerasCount int) Result {
	system, ruleID := e.inferSystem(answers)
	result := Result{System: system, Suggestions: []models.Suggestion{}}
	if camerasCount <= 0 {
		return result
	}

	c := &evalContext{
		rules:    e.rules,
		products: withoutCameras(products, e.rules.CameraTags),
		answers:  answers,
		cameras:  camerasCount,
		system:   system,
	}
	for _, rule := range itemRules {
		if !rule.when(c) {
			continue
		}
		suggestions := rule.build(c)
		if len(suggestions) == 0 {
			log.Printf("⚠️  Recommend: rule %s matched but no catalog product was found", rule.id)
			continue
		}
		result.Suggestions = append(result.Suggestions, suggestions...)
	}

	log.Printf("💡 Recommend: system=%s (rule %s), cameras=%d, suggestions=%d", system, ruleID, camerasCount, len(result.Suggestions))
	return result
}

// Plan runs a project builder request: it counts the cameras already in the
// cart, recommends the rest of the system and merges the suggestions into a
// copy of the cart
func (e *Engine) Plan(products []models.Product, req models.RecommendRequest) models.RecommendResponse {
	cameras := e.CamerasCount(req.Cart, products)
	result := e.Recommend(products, req.Answers, cameras)

	cart := req.Cart.Clone()
	cart.ApplySuggestions(result.Suggestions, req.IncludeOptional)

	return models.RecommendResponse{
		OK:           true,
		System:       result.System,
		CamerasCount: cameras,
		Suggestions:  result.Suggestions,
		Cart:         cart,
	}
}

// evalContext carries the inputs of one Recommend call through the item rules
type evalContext struct {
	rules    *Rules
	products []models.Product
	answers  models.QuestionnaireAnswers
	cameras  int
	system   models.SystemType
}

// itemRule is one row of the item decision table: when it applies, build
// produces its suggestions. Rows run in order and all matching rows apply.
type itemRule struct {
	id    string
	when  func(c *evalContext) bool
	build func(c *evalContext) []models.Suggestion
}

var itemRules = []itemRule{
	{id: "recorder", when: always, build: buildRecorder},
	{id: "ip-switch", when: systemIs(models.SystemIP), build: buildSwitch},
	{id: "analog-power-supply", when: systemIs(models.SystemAnalog), build: buildPowerSupply},
	{id: "wireless-required", when: recorderAwayFromRouter, build: buildWireless(models.BucketRequired)},
	{id: "wireless-optional", when: longOrHardRun, build: buildWireless(models.BucketOptional)},
	{id: "ups", when: func(c *evalContext) bool { return c.answers.WantUps }, build: buildUPS},
}

func always(*evalContext) bool { return true }

func systemIs(system models.SystemType) func(c *evalContext) bool {
	return func(c *evalContext) bool { return c.system == system }
}

func recorderAwayFromRouter(c *evalContext) bool {
	return c.answers.RecorderSameAsInternet == "no"
}

func longOrHardRun(c *evalContext) bool {
	return !recorderAwayFromRouter(c) && (c.answers.AvgDistance == "100+" || c.answers.CableDifficulty == "hard")
}

func buildRecorder(c *evalContext) []models.Suggestion {
	rec := c.rules.Recorder
	size := sizeFor(rec.Tiers, c.cameras)

	familyTag, keywords, kind := rec.IPTag, rec.IPKeywords, "NVR"
	if c.system == models.SystemAnalog {
		familyTag, keywords, kind = rec.AnalogTag, rec.AnalogKeywords, "DVR"
	}

	sizeTag := rec.SizeTagPrefix + strconv.Itoa(size)
	p, level := findProductIn(c.products, []string{familyTag, sizeTag}, []string{familyTag}, keywords)
	if level == noMatch {
		return nil
	}
	return []models.Suggestion{{
		ProductID:  p.ID,
		Quantity:   1,
		ReasonText: formatReason(rec.Reason, c.cameras, size, 1, kind),
		Bucket:     models.BucketRequired,
	}}
}

// preferPoE reports whether the installation favours a PoE switch
func preferPoE(a models.QuestionnaireAnswers) bool {
	return a.CableDifficulty != "easy" || a.AvgDistance != "0-30" || a.Priority == "scalable"
}

func buildSwitch(c *evalContext) []models.Suggestion {
	sw := c.rules.Switch
	size := sizeFor(sw.Tiers, c.cameras)
	sizeTag := sw.SizeTagPrefix + strconv.Itoa(size)

	type family struct {
		tag      string
		keywords []string
		reason   string
	}
	poe := family{sw.PoETag, sw.PoEKeywords, sw.ReasonPoE}
	plain := family{sw.PlainTag, sw.PlainKeywords, sw.ReasonPlain}
	order := []family{plain, poe}
	if preferPoE(c.answers) {
		order = []family{poe, plain}
	}

	for _, f := range order {
		p, level := findProductIn(c.products, []string{f.tag, sizeTag}, []string{f.tag}, f.keywords)
		if level == noMatch {
			continue
		}
		return []models.Suggestion{{
			ProductID:  p.ID,
			Quantity:   1,
			ReasonText: formatReason(f.reason, c.cameras, size, 1, ""),
			Bucket:     models.BucketRequired,
		}}
	}
	return nil
}

// PowerSuppliesFor returns how many supplies cameras need: ceil(cameras/perUnit), at least 1
func PowerSuppliesFor(cameras, perUnit int) int {
	if perUnit <= 0 {
		perUnit = 1
	}
	units := (cameras + perUnit - 1) / perUnit
	if units < 1 {
		units = 1
	}
	return units
}

func buildPowerSupply(c *evalContext) []models.Suggestion {
	ps := c.rules.PowerSupply
	p, level := findProduct(c.products, ps.Tags, ps.Keywords)
	if level == noMatch {
		return nil
	}
	units := PowerSuppliesFor(c.cameras, ps.CamerasPerUnit)
	return []models.Suggestion{{
		ProductID:  p.ID,
		Quantity:   units,
		ReasonText: formatReason(ps.Reason, c.cameras, 0, units, ""),
		Bucket:     models.BucketRequired,
	}}
}

func buildWireless(bucket models.Bucket) func(c *evalContext) []models.Suggestion {
	return func(c *evalContext) []models.Suggestion {
		w := c.rules.Wireless
		reason := w.ReasonRequired
		if bucket == models.BucketOptional {
			reason = w.ReasonOptional
		}

		if kit, level := findProduct(c.products, w.KitTags, w.KitKeywords); level != noMatch {
			return []models.Suggestion{{
				ProductID:  kit.ID,
				Quantity:   1,
				ReasonText: formatReason(reason, c.cameras, 0, 1, ""),
				Bucket:     bucket,
			}}
		}
		if link, level := findProduct(c.products, w.LinkTags, w.LinkKeywords); level != noMatch {
			return []models.Suggestion{{
				ProductID:  link.ID,
				Quantity:   2,
				ReasonText: formatReason(reason, c.cameras, 0, 2, ""),
				Bucket:     bucket,
			}}
		}
		return nil
	}
}

func buildUPS(c *evalContext) []models.Suggestion {
	u := c.rules.UPS
	p, level := findProduct(c.products, u.Tags, u.Keywords)
	if level == noMatch {
		return nil
	}
	return []models.Suggestion{{
		ProductID:  p.ID,
		Quantity:   1,
		ReasonText: formatReason(u.Reason, c.cameras, 0, 1, ""),
		Bucket:     models.BucketRecommended,
	}}
}

// formatReason fills the {cameras}, {size}, {units} and {kind} placeholders of a reason template
func formatReason(template string, cameras, size, units int, kind string) string {
	return strings.NewReplacer(
		"{cameras}", strconv.Itoa(cameras),
		"{size}", strconv.Itoa(size),
		"{units}", strconv.Itoa(units),
		"{kind}", kind,
	).Replace(template)
}

// String renders a result for CLI output
func (r Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "system: %s\n", r.System)
	for _, s := range r.Suggestions {
		fmt.Fprintf(&b, "  [%s] %s x%d: %s\n", s.Bucket, s.ProductID, s.Quantity, s.ReasonText)
	}
	return b.String()
}
