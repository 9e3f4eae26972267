package insights

import "strings"

// ChannelAllocation is one row of a budget-allocation recommendation.
type ChannelAllocation struct {
	Channel string  `json:"channel"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

// AllocationAdvice is the output of RecommendBudgetAllocation.
type AllocationAdvice struct {
	Objective   string              `json:"objective"`
	Allocations []ChannelAllocation `json:"allocations"`
	Rationale   string              `json:"rationale"`
}

// objective splits are static reference shapes, not learned weights.
var objectiveSplits = map[string][]ChannelAllocation{
	"awareness": {
		{Channel: "TV", Percent: 30}, {Channel: "Connected TV", Percent: 20},
		{Channel: "OOH", Percent: 15}, {Channel: "Online Video", Percent: 15},
		{Channel: "Social", Percent: 12}, {Channel: "Audio", Percent: 8},
	},
	"performance": {
		{Channel: "Search", Percent: 40}, {Channel: "Social", Percent: 30},
		{Channel: "Display", Percent: 20}, {Channel: "Online Video", Percent: 10},
	},
	"balanced": {
		{Channel: "Search", Percent: 25}, {Channel: "Social", Percent: 25},
		{Channel: "Display", Percent: 15}, {Channel: "Connected TV", Percent: 15},
		{Channel: "Online Video", Percent: 10}, {Channel: "Audio", Percent: 10},
	},
}

var objectiveRationale = map[string]string{
	"awareness":   "Awareness goals favor broad-reach video and out-of-home; digital fills frequency gaps.",
	"performance": "Performance goals weight intent-driven channels where response is directly measurable.",
	"balanced":    "A balanced split hedges reach against response so neither dominates the mix.",
}

// RecommendBudgetAllocation maps a budget and objective onto a per-channel
// split. When channels are supplied, the split is filtered to them and the
// remaining percentages are renormalized.
func RecommendBudgetAllocation(budget float64, objective string, channels []string) AllocationAdvice {
	key := strings.ToLower(strings.TrimSpace(objective))
	split, ok := objectiveSplits[key]
	if !ok {
		key = "balanced"
		split = objectiveSplits[key]
	}

	if len(channels) > 0 {
		wanted := make(map[string]bool, len(channels))
		for _, ch := range channels {
			wanted[strings.ToLower(ch)] = true
		}
		var filtered []ChannelAllocation
		total := 0.0
		for _, a := range split {
			if wanted[strings.ToLower(a.Channel)] {
				filtered = append(filtered, a)
				total += a.Percent
			}
		}
		if len(filtered) > 0 && total > 0 {
			for i := range filtered {
				filtered[i].Percent = filtered[i].Percent / total * 100
			}
			split = filtered
		}
	}

	advice := AllocationAdvice{Objective: key, Rationale: objectiveRationale[key]}
	for _, a := range split {
		a.Amount = budget * a.Percent / 100
		advice.Allocations = append(advice.Allocations, a)
	}
	return advice
}
