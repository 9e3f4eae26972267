// Package command defines the declarative command table: priority-ordered,
// pattern-guarded command definitions plus the contextual eligibility gate.
// Relevance is a property of a command's pattern set; availability is a
// property of the session's window/plan context. The two are matched in
// separate phases and never conflated into a single regex.
package command

import (
	"regexp"
	"sort"
)

// Category groups commands sharing one eligibility requirement record.
type Category string

const (
	CategoryNavigation   Category = "NAVIGATION"
	CategoryWindow       Category = "WINDOW"
	CategoryHistory      Category = "HISTORY"
	CategoryGoal         Category = "GOAL"
	CategoryTemplate     Category = "TEMPLATE"
	CategoryCreative     Category = "CREATIVE"
	CategoryOptimization Category = "OPTIMIZATION"
	CategoryForecast     Category = "FORECAST"
	CategoryInventory    Category = "INVENTORY"
	CategoryAllocation   Category = "ALLOCATION"
	CategoryCampaign     Category = "CAMPAIGN"
	CategoryFlight       Category = "FLIGHT"
	CategoryPlacement    Category = "PLACEMENT"
	CategoryBudget       Category = "BUDGET"
	CategorySchedule     Category = "SCHEDULE"
	CategoryStatus       Category = "STATUS"
	CategorySegment      Category = "SEGMENT"
	CategoryView         Category = "VIEW"
	CategoryExport       Category = "EXPORT"
)

// Definition is one immutable command. Patterns are checked in declaration
// order; the first that matches wins for this command.
type Definition struct {
	ID          string
	Name        string
	Category    Category
	Patterns    []*regexp.Regexp
	Priority    int
	Description string
	Examples    []string
}

// Match pairs a matched command with the submatches of the winning pattern.
type Match struct {
	Command    *Definition
	Pattern    string
	Submatches []string
	// Input is the full utterance, for handlers that pull entities from
	// text outside the matched span.
	Input string
}

func def(id, name string, category Category, priority int, description string, patterns ...string) *Definition {
	d := &Definition{
		ID:          id,
		Name:        name,
		Category:    category,
		Priority:    priority,
		Description: description,
	}
	for _, p := range patterns {
		d.Patterns = append(d.Patterns, regexp.MustCompile(`(?i)`+p))
	}
	return d
}

// registry is the full command table, sorted once at load time, descending
// by priority with declaration order preserved on ties. The ordering is part
// of the dispatch contract.
var registry = buildRegistry()

func buildRegistry() []*Definition {
	defs := []*Definition{
		def("undo", "Undo", CategoryHistory, 90,
			"Revert the last plan mutation.",
			`^undo$`, `\bundo (that|the last)\b`),
		def("redo", "Redo", CategoryHistory, 90,
			"Re-apply the last undone mutation.",
			`^redo$`, `\bredo (that|it)\b`),
		def("layout.arrange", "Arrange Layout", CategoryWindow, 80,
			"Tile or arrange the open windows.",
			`\b(arrange|tile|organi[sz]e)\b.*\bwindows?\b`, `\bclean up (the )?layout\b`),
		def("goal.set", "Set Goal", CategoryGoal, 75,
			"Set the plan goal.",
			`\b(set|change|update)\b.*\bgoal\b`, `\bgoal is\b`),
		def("goal.get", "Show Goal", CategoryGoal, 74,
			"Show the current plan goal.",
			`\bwhat('s| is)\b.*\bgoal\b`, `\bshow\b.*\bgoal\b`),
		def("template.apply", "Apply Template", CategoryTemplate, 72,
			"Apply a named plan template.",
			`\b(apply|use|load)\b.*\btemplate\b`, `\btemplate (called|named)\s+(\w+)`),
		def("creative.specs", "Creative Specs", CategoryCreative, 70,
			"Show creative specs for a channel.",
			`\bcreative (specs?|requirements?|sizes?)\b`, `\bwhat (sizes|assets)\b`),
		def("placement.batch", "Add Placements", CategoryPlacement, 68,
			"Insert several placements at once.",
			`\badd\s+(\d+)\s+.*placements?\b`, `\b(\d+)\s+more placements?\b`),
		def("placement.add", "Add Placement", CategoryPlacement, 66,
			"Insert a single placement.",
			`\badd\s+(?:a|an|another)?\s*[\w ]*placements?\b`),
		def("placement.pause", "Pause Placements", CategoryStatus, 64,
			"Pause matching placements.",
			`\bpause\b.*\bplacements?\b`, `\bpause\b.*\b(channel|everything)\b`),
		def("placement.resume", "Resume Placements", CategoryStatus, 64,
			"Resume paused placements.",
			`\bresume\b.*\bplacements?\b`, `\bunpause\b`),
		def("placement.segment", "Edit Segments", CategorySegment, 62,
			"Change audience segments on placements.",
			`\b(segment|audience)\b.*\b(change|set|update|swap)\b`,
			`\b(change|set|update|swap)\b.*\b(segment|audience)\b`),
		def("budget.edit", "Edit Budget", CategoryBudget, 60,
			"Change the plan or flight budget.",
			`\b(set|change|update|increase|decrease|raise|lower)\b.*\bbudget\b`,
			`\bbudget (of|to)\b`),
		def("dates.edit", "Edit Dates", CategorySchedule, 58,
			"Change flight dates.",
			`\b(move|shift|change|update)\b.*\b(dates?|start|end)\b`,
			`\b(extend|shorten)\b.*\bflight\b`),
		def("campaign.create", "Create Campaign", CategoryCampaign, 56,
			"Add a campaign to the plan.",
			`\b(create|add|new)\b.*\bcampaign\b`),
		def("flight.create", "Create Flight", CategoryFlight, 54,
			"Add a flight to the campaign.",
			`\b(create|add|new)\b.*\bflight\b`, `\bsplit\b.*\bflights?\b`),
		def("optimization.report", "Optimization Report", CategoryOptimization, 50,
			"Run the optimization report.",
			`\boptimi[sz]\w+\b`, `\b(improve|recommendations?|quick wins?)\b`),
		def("forecast.run", "Forecast", CategoryForecast, 48,
			"Forecast campaign delivery.",
			`\bforecast\w*\b`, `\b(project\w*|predict\w*)\b.*\b(delivery|performance|results)\b`),
		def("analysis.run", "Plan Analysis", CategoryOptimization, 46,
			"Score the plan and list issues.",
			`\banaly[sz]\w+\b`, `\bhow('s| is) (my|the) plan\b`, `\bplan (health|score)\b`),
		def("allocation.advise", "Budget Allocation Advice", CategoryAllocation, 44,
			"Recommend a budget split.",
			`\b(how should i|recommended?)\b.*\b(allocate|split|spend)\b`,
			`\ballocation advice\b`),
		def("inventory.lookup", "Inventory Lookup", CategoryInventory, 42,
			"Look up available inventory.",
			`\b(inventory|avails?)\b`, `\bwhat('s| is) available\b`),
		def("dma.lookup", "DMA Lookup", CategoryInventory, 42,
			"Look up a media market.",
			`\bdma\b`, `\b(top|largest) markets?\b`, `\bmarket (data|info)\b`),
		def("view.group", "Group View", CategoryView, 40,
			"Toggle placement grouping in the plan view.",
			`\bgroup by (channel|flight)\b`, `\b(regroup|ungroup)\b`),
		def("export.plan", "Export Plan", CategoryExport, 38,
			"Export the plan to a document.",
			`\bexport\b`, `\bdownload\b.*\b(pdf|ppt|powerpoint|deck|plan)\b`),
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return defs[i].Priority > defs[j].Priority
	})
	return defs
}

// All returns the priority-sorted command table. The slice is shared;
// callers must not mutate it.
func All() []*Definition {
	return registry
}

// FindMatching scans the sorted table and returns the first command whose
// first matching pattern (declaration order) hits. No confidence
// comparison: the first hit in priority order always wins.
func FindMatching(text string) (Match, bool) {
	for _, d := range registry {
		for _, p := range d.Patterns {
			if sub := p.FindStringSubmatch(text); sub != nil {
				return Match{Command: d, Pattern: p.String(), Submatches: sub, Input: text}, true
			}
		}
	}
	return Match{}, false
}

// FindAllMatching collects one match per command (its first matching
// pattern) across the whole table, preserving priority order.
func FindAllMatching(text string) []Match {
	var out []Match
	for _, d := range registry {
		for _, p := range d.Patterns {
			if sub := p.FindStringSubmatch(text); sub != nil {
				out = append(out, Match{Command: d, Pattern: p.String(), Submatches: sub, Input: text})
				break
			}
		}
	}
	return out
}
