// Package extract provides pure entity-extraction functions over raw user
// text: budgets, channels, dates, metrics, audiences, placement specs and
// campaign names. Every function is stateless and independently testable;
// fields that do not positively match stay unset, never defaulted.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Entities is the structured result of scanning one input.
type Entities struct {
	Budget        *float64       `json:"budget,omitempty"`
	Channels      []string       `json:"channels,omitempty"`
	StartDate     *time.Time     `json:"startDate,omitempty"`
	EndDate       *time.Time     `json:"endDate,omitempty"`
	Metrics       []string       `json:"metrics,omitempty"`
	Audience      string         `json:"audience,omitempty"`
	PlacementSpec *PlacementSpec `json:"placementSpec,omitempty"`
	CampaignName  string         `json:"campaignName,omitempty"`
}

// PlacementSpec captures an in-text request for specific placements.
type PlacementSpec struct {
	Channel string   `json:"channel,omitempty"`
	Count   int      `json:"count,omitempty"`
	Budget  *float64 `json:"budget,omitempty"`
}

// IsEmpty reports whether nothing was extracted.
func (e Entities) IsEmpty() bool {
	return e.Budget == nil && len(e.Channels) == 0 && e.StartDate == nil &&
		e.EndDate == nil && len(e.Metrics) == 0 && e.Audience == "" &&
		e.PlacementSpec == nil && e.CampaignName == ""
}

// Budget parsing tries the most specific suffix first: millions, then
// thousands, then a bare number.
var (
	millionRegex  = regexp.MustCompile(`(?i)\$?\s*([\d,]+(?:\.\d+)?)\s*(?:mm?\b|million)`)
	thousandRegex = regexp.MustCompile(`(?i)\$?\s*([\d,]+(?:\.\d+)?)\s*k\b`)
	bareNumRegex  = regexp.MustCompile(`\$?\s*([\d,]+(?:\.\d+)?)`)
)

// Budget extracts a dollar amount. "$2.5M" → 2500000, "100k" → 100000,
// "50,000" → 50000. Returns false when no numeric token matches.
func Budget(text string) (float64, bool) {
	type attempt struct {
		re         *regexp.Regexp
		multiplier float64
	}
	for _, a := range []attempt{
		{millionRegex, 1e6},
		{thousandRegex, 1e3},
		{bareNumRegex, 1},
	} {
		m := a.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		return val * a.multiplier, true
	}
	return 0, false
}

// channelKeywords maps trigger keywords to canonical channel names. Matching
// is case-insensitive on word boundaries so "ctv" does not also light up
// "tv".
var channelKeywords = []struct {
	pattern   *regexp.Regexp
	canonical string
}{
	{regexp.MustCompile(`(?i)\b(ctv|connected tv|streaming|hulu|roku)\b`), "Connected TV"},
	{regexp.MustCompile(`(?i)\b(search|sem|ppc|google|bing)\b`), "Search"},
	{regexp.MustCompile(`(?i)\b(social|facebook|instagram|meta|tiktok|linkedin|snapchat)\b`), "Social"},
	{regexp.MustCompile(`(?i)\b(display|banner|banners|programmatic)\b`), "Display"},
	{regexp.MustCompile(`(?i)\b(online video|olv|youtube|pre-roll)\b`), "Online Video"},
	{regexp.MustCompile(`(?i)\b(audio|spotify|podcast|podcasts)\b`), "Audio"},
	{regexp.MustCompile(`(?i)\b(tv|television|linear|broadcast)\b`), "TV"},
	{regexp.MustCompile(`(?i)\b(radio|am/fm)\b`), "Radio"},
	{regexp.MustCompile(`(?i)\b(ooh|billboard|billboards|out of home|out-of-home)\b`), "OOH"},
	{regexp.MustCompile(`(?i)\b(print|newspaper|magazine|magazines)\b`), "Print"},
}

// Channels returns the de-duplicated set of canonical channel names
// mentioned in the text. Order is not significant.
func Channels(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, kw := range channelKeywords {
		if kw.pattern.MatchString(text) && !seen[kw.canonical] {
			seen[kw.canonical] = true
			out = append(out, kw.canonical)
		}
	}
	return out
}

var (
	monthRegex   = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\b`)
	quarterRegex = regexp.MustCompile(`(?i)\bq([1-4])\b`)
	isoDateRegex = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

// Dates extracts a start/end pair from ISO dates, month names or quarter
// shorthand. Month and quarter references resolve to the next occurrence
// relative to now.
func Dates(text string, now time.Time) (start, end *time.Time) {
	if isoMatches := isoDateRegex.FindAllStringSubmatch(text, 2); len(isoMatches) > 0 {
		parse := func(m []string) time.Time {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			return time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
		}
		s := parse(isoMatches[0])
		start = &s
		if len(isoMatches) > 1 {
			e := parse(isoMatches[1])
			end = &e
		}
		return start, end
	}

	if m := quarterRegex.FindStringSubmatch(strings.ToLower(text)); m != nil {
		q, _ := strconv.Atoi(m[1])
		year := now.Year()
		s := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		if s.Before(now.AddDate(0, -3, 0)) {
			s = s.AddDate(1, 0, 0)
		}
		e := s.AddDate(0, 3, -1)
		return &s, &e
	}

	if m := monthRegex.FindStringSubmatch(strings.ToLower(text)); m != nil {
		month := monthsByName[m[1]]
		year := now.Year()
		if month < now.Month() {
			year++
		}
		s := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		e := s.AddDate(0, 1, -1)
		return &s, &e
	}

	return nil, nil
}

// knownMetrics is the fixed vocabulary of measurement terms.
var knownMetrics = []string{
	"impressions", "clicks", "conversions", "reach", "frequency",
	"ctr", "cpa", "cpm", "roas", "views", "incrementality", "attribution",
}

// Metrics returns the known metric terms present in the text.
func Metrics(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, m := range knownMetrics {
		if matched, _ := regexp.MatchString(`\b`+m+`\b`, lower); matched {
			out = append(out, m)
		}
	}
	return out
}

var audiencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:targeting|target|audience of|audience:|reach)\s+([a-z]+(?:\s+\d{2}[-+]\d{0,2})?)`),
	regexp.MustCompile(`(?i)\b((?:adults|women|men|moms|dads|parents)\s+\d{2}-\d{2})\b`),
	regexp.MustCompile(`(?i)\b(millennials|gen z|gen x|boomers|sports fans|pet owners|new parents)\b`),
	regexp.MustCompile(`(?i)\b([amwp]\d{2}-\d{2})\b`), // A18-34 shorthand
}

// Audience extracts a demographic or audience descriptor, if any,
// lower-cased so the accumulated-entity merge sees one canonical form.
func Audience(text string) string {
	for _, p := range audiencePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.ToLower(strings.TrimSpace(m[1]))
		}
	}
	return ""
}

var placementCountRegex = regexp.MustCompile(`(?i)\b(?:add\s+)?(\d+|a|an|another)\s+(?:more\s+)?([a-z ]+?)\s+placements?\b`)

// PlacementSpecFrom extracts a requested placement's channel, count and
// optional budget. Budget here is the amount inside the same sentence, so
// "add a CTV placement with $20k" carries 20000.
func PlacementSpecFrom(text string) *PlacementSpec {
	m := placementCountRegex.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	spec := &PlacementSpec{Count: 1}
	if n, err := strconv.Atoi(m[1]); err == nil {
		spec.Count = n
	}
	if chs := Channels(m[2]); len(chs) > 0 {
		spec.Channel = chs[0]
	}
	// Only an explicit money token counts here; a bare number is the
	// placement count, not a budget.
	if budget, ok := explicitBudget(text); ok {
		spec.Budget = &budget
	}
	return spec
}

var dollarAmountRegex = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)`)

func explicitBudget(text string) (float64, bool) {
	for _, re := range []*regexp.Regexp{millionRegex, thousandRegex, dollarAmountRegex} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		raw := strings.ReplaceAll(m[1], ",", "")
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		switch re {
		case millionRegex:
			return val * 1e6, true
		case thousandRegex:
			return val * 1e3, true
		default:
			return val, true
		}
	}
	return 0, false
}

var campaignNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:for|called|named)\s+"([^"]+)"`),
	regexp.MustCompile(`(?:for|called|named)\s+([A-Z][\w&'-]*(?:\s+[A-Z][\w&'-]*)*)`),
}

// CampaignName extracts a plan/campaign name, preferring quoted names, then
// capitalized runs after "for"/"called"/"named".
func CampaignName(text string) string {
	for _, p := range campaignNamePatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// All composes every extractor into one result. No cross-field validation
// happens here; disagreement between fields is the caller's problem.
func All(text string) Entities {
	e := Entities{
		Channels:      Channels(text),
		Metrics:       Metrics(text),
		Audience:      Audience(text),
		PlacementSpec: PlacementSpecFrom(text),
		CampaignName:  CampaignName(text),
	}
	if budget, ok := Budget(text); ok {
		e.Budget = &budget
	}
	e.StartDate, e.EndDate = Dates(text, time.Now())
	return e
}
