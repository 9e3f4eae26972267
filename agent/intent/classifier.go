// Package intent implements deterministic pattern-group intent
// classification. No model, no inference: an ordered list of regex groups is
// scored by match ratio and the strictly best group wins.
package intent

import (
	"regexp"
	"strings"

	"github.com/planwise/planwise/agent/extract"
)

// Category is the coarse intent family.
type Category string

const (
	CategoryPlanning     Category = "PLANNING"
	CategoryBudget       Category = "BUDGET"
	CategoryPlacement    Category = "PLACEMENT"
	CategoryOptimization Category = "OPTIMIZATION"
	CategoryForecast     Category = "FORECAST"
	CategoryAnalysis     Category = "ANALYSIS"
	CategoryInventory    Category = "INVENTORY"
	CategoryExport       Category = "EXPORT"
	CategoryNavigation   Category = "NAVIGATION"
	CategoryConfirmation Category = "CONFIRMATION"
	CategoryHelp         Category = "HELP"
	CategoryUnknown      Category = "UNKNOWN"
)

// DetectedIntent is a pure function of the input text.
type DetectedIntent struct {
	Category              Category         `json:"category"`
	SubIntent             string           `json:"subIntent"`
	Confidence            float64          `json:"confidence"`
	Entities              extract.Entities `json:"entities"`
	RequiresClarification bool             `json:"requiresClarification"`
	Patterns              []string         `json:"patterns,omitempty"`
}

// patternGroup couples a category/sub-intent pair with its trigger regexes.
type patternGroup struct {
	category  Category
	subIntent string
	patterns  []*regexp.Regexp
}

func group(category Category, subIntent string, exprs ...string) patternGroup {
	g := patternGroup{category: category, subIntent: subIntent}
	for _, e := range exprs {
		g.patterns = append(g.patterns, regexp.MustCompile(e))
	}
	return g
}

// patternGroups is ordered: earlier groups win confidence ties because later
// groups only replace the leader on a strict improvement.
var patternGroups = []patternGroup{
	group(CategoryConfirmation, "yes",
		`^(yes|yeah|yep|yup|sure|ok|okay|confirm|do it|go ahead|sounds good)[.!]?$`),
	group(CategoryConfirmation, "no",
		`^(no|nope|nah|cancel|never ?mind|don't)[.!]?$`),
	group(CategoryPlanning, "create",
		`\b(create|new|start|build|make)\b.*\b(plan|campaign)\b`,
		`\bplan for\b`),
	group(CategoryPlanning, "reset",
		`\b(start over|reset|from scratch|scrap (it|this))\b`),
	group(CategoryBudget, "set",
		`\b(set|change|update|increase|decrease|adjust)\b.*\bbudget\b`,
		`\bbudget (of|to|is)\b`),
	group(CategoryBudget, "allocate",
		`\b(allocat\w+|split|distribute)\b.*\b(budget|spend|money)\b`,
		`\bhow (should|do) i (spend|allocate)\b`),
	group(CategoryPlacement, "add",
		`\badd\b.*\bplacements?\b`,
		`\b(more|another)\b.*\bplacements?\b`),
	group(CategoryPlacement, "edit",
		`\b(pause|resume|remove|delete)\b.*\bplacements?\b`,
		`\bplacements?\b.*\b(dates?|budget)\b`),
	group(CategoryOptimization, "report",
		`\b(optimi[sz]\w+|improve|recommend\w*)\b`,
		`\bquick wins?\b`),
	group(CategoryForecast, "run",
		`\b(forecast\w*|project\w*|predict\w*)\b`,
		`\bexpected (performance|delivery|results)\b`),
	group(CategoryAnalysis, "review",
		`\b(analy[sz]\w+|review|score|health)\b`,
		`\bhow('s| is) (my|the) plan\b`),
	group(CategoryInventory, "lookup",
		`\b(inventory|avails?|what('s| is) available)\b`,
		`\b(dma|market|markets)\b`),
	group(CategoryExport, "download",
		`\b(export|download)\b`,
		`\b(pdf|ppt|powerpoint|deck)\b`),
	group(CategoryNavigation, "layout",
		`\b(layout|arrange|tile|windows?)\b`,
		`\bgroup by (channel|flight)\b`),
	group(CategoryHelp, "general",
		`\b(help|what can you do)\b`,
		`\bhow do i\b`),
}

// requiredEntities maps "category.subIntent" to the entity fields a handler
// cannot proceed without.
var requiredEntities = map[string][]string{
	"PLANNING.create": {"budget"},
	"BUDGET.set":      {"budget"},
	"PLACEMENT.add":   {"channel"},
}

// Classify scores the normalized input against every pattern group and
// returns the best. Identical input always yields an identical result.
func Classify(text string) DetectedIntent {
	normalized := strings.ToLower(strings.TrimSpace(text))
	entities := extract.All(text)

	best := DetectedIntent{
		Category:              CategoryUnknown,
		Confidence:            0,
		Entities:              entities,
		RequiresClarification: true,
	}

	for _, g := range patternGroups {
		var matched []string
		for _, p := range g.patterns {
			if p.MatchString(normalized) {
				matched = append(matched, p.String())
			}
		}
		confidence := float64(len(matched)) / float64(len(g.patterns))
		if confidence > best.Confidence {
			best = DetectedIntent{
				Category:   g.category,
				SubIntent:  g.subIntent,
				Confidence: confidence,
				Entities:   entities,
				Patterns:   matched,
			}
		}
	}

	if best.Category == CategoryUnknown {
		best.RequiresClarification = true
	}
	return best
}

// RequiresClarification reports whether the intent needs a follow-up
// question before a handler can act: unknown category, weak confidence, or a
// required entity present neither on the intent nor in the ambient
// accumulated entities.
func RequiresClarification(detected DetectedIntent, ambient extract.Entities) bool {
	if detected.Category == CategoryUnknown {
		return true
	}
	if detected.Confidence < 0.5 {
		return true
	}
	key := string(detected.Category) + "." + detected.SubIntent
	for _, field := range requiredEntities[key] {
		if !hasEntity(detected.Entities, field) && !hasEntity(ambient, field) {
			return true
		}
	}
	return false
}

func hasEntity(e extract.Entities, field string) bool {
	switch field {
	case "budget":
		return e.Budget != nil
	case "channel":
		return len(e.Channels) > 0 || (e.PlacementSpec != nil && e.PlacementSpec.Channel != "")
	case "dates":
		return e.StartDate != nil
	case "name":
		return e.CampaignName != ""
	}
	return false
}
