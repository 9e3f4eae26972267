package brain

import (
	"sort"
	"strings"

	"github.com/planwise/planwise/plan"
)

// Template is a named starting shape for a plan: a strategy plus a default
// goal, applied over whatever budget the plan already carries.
type Template struct {
	Name        string
	Strategy    plan.Strategy
	Goal        string
	Description string
}

var templates = map[string]Template{
	"retail": {
		Name:        "Retail",
		Strategy:    plan.StrategyBalanced,
		Goal:        "Drive store and site traffic through the purchase window",
		Description: "a balanced mix weighted toward search and social with offline support",
	},
	"b2b": {
		Name:        "B2B",
		Strategy:    plan.StrategyDigital,
		Goal:        "Generate qualified leads from decision makers",
		Description: "a digital-only mix centered on search, LinkedIn-style social and display retargeting",
	},
	"launch": {
		Name:        "Product Launch",
		Strategy:    plan.StrategyAwareness,
		Goal:        "Build awareness fast for a new product",
		Description: "a reach-first mix led by TV, CTV and out-of-home with digital frequency support",
	},
	"always-on": {
		Name:        "Always-On",
		Strategy:    plan.StrategyBalanced,
		Goal:        "Maintain steady presence at efficient cost",
		Description: "an evergreen balanced mix sized for continuous delivery",
	},
}

// templateAliases map common phrasings onto canonical template keys.
var templateAliases = map[string]string{
	"ecommerce":      "retail",
	"e-commerce":     "retail",
	"shopping":       "retail",
	"lead gen":       "b2b",
	"leadgen":        "b2b",
	"business":       "b2b",
	"product launch": "launch",
	"new product":    "launch",
	"evergreen":      "always-on",
	"always on":      "always-on",
}

func lookupTemplate(name string) (Template, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := templateAliases[key]; ok {
		key = canonical
	}
	tpl, ok := templates[key]
	return tpl, ok
}

// templateNameFrom pulls the template name out of a matched apply-template
// utterance by scanning for any known key or alias.
func templateNameFrom(text string) string {
	lower := strings.ToLower(text)
	for alias := range templateAliases {
		if strings.Contains(lower, alias) {
			return alias
		}
	}
	for key := range templates {
		if strings.Contains(lower, key) {
			return key
		}
	}
	return strings.TrimSpace(lower)
}

func templateNames() []string {
	names := make([]string, 0, len(templates))
	for key := range templates {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}

// creativeSpecs are per-channel production requirements, keyed by canonical
// channel name.
var creativeSpecs = map[string]string{
	"Search":       "headlines ≤30 chars ×15, descriptions ≤90 chars ×4, no imagery required",
	"Social":       "1:1 and 9:16 video ≤15s, captions burned in, thumbnail 1080×1080",
	"Display":      "300×250, 728×90, 160×600 and 320×50 banners, ≤150KB each, HTML5 or static",
	"Connected TV": ":15 and :30 video, 1920×1080 @ 23.98/29.97fps, ≥15 Mbps bitrate, stereo audio",
	"Online Video": ":06 bumper and :15 skippable, 16:9, end card with logo in final 2s",
	"Audio":        ":15 or :30 audio, 44.1kHz WAV or 320kbps MP3, optional 640×640 companion",
	"TV":           ":30 spot, broadcast-safe levels, closed captions, HD ProRes delivery",
	"Radio":        ":30 or :60 script or produced spot, station traffic 5 business days ahead",
	"OOH":          "static artwork at panel-specific dimensions, ≥300dpi, 10% safety margin",
	"Print":        "full-page CMYK PDF/X-1a, 300dpi, bleed 0.125in",
}

func creativeSpecFor(channel string) string {
	if spec, ok := creativeSpecs[channel]; ok {
		return spec
	}
	return "no standard spec on file; check with the publisher"
}
