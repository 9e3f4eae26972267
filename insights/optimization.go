// Package insights implements the numeric collaborators the conversational
// core consumes as black boxes: optimization reports, plan analysis, campaign
// forecasting and budget-allocation advice. The math is deliberately simple
// formula evaluation; the contracts are the signatures.
package insights

import (
	"fmt"
	"math"

	"github.com/planwise/planwise/plan"
)

// Recommendation is one suggested plan change with its estimated effect.
type Recommendation struct {
	PlacementID   string  `json:"placementId,omitempty"`
	Title         string  `json:"title"`
	Detail        string  `json:"detail"`
	EstimatedGain float64 `json:"estimatedGain"`
}

// OptimizationReport is the output of GenerateOptimizationReport.
type OptimizationReport struct {
	Recommendations []Recommendation `json:"recommendations"`
	QuickWins       []Recommendation `json:"quickWins"`
	TotalGains      float64          `json:"totalGains"`
}

// GenerateOptimizationReport inspects placements against the flight budget
// and produces rebalancing recommendations. Quick wins are the subset
// achievable without moving money between channels.
func GenerateOptimizationReport(placements []*plan.Placement, flightBudget float64) OptimizationReport {
	report := OptimizationReport{}
	if len(placements) == 0 || flightBudget <= 0 {
		return report
	}

	spend := 0.0
	byChannel := make(map[string]float64)
	for _, p := range placements {
		spend += p.Cost
		byChannel[p.Channel] += p.Cost
	}

	// Under-utilized budget is the cheapest gain available.
	if headroom := flightBudget - spend; headroom > flightBudget*0.05 {
		rec := Recommendation{
			Title:         "Deploy unspent budget",
			Detail:        fmt.Sprintf("$%.0f of the flight budget is unallocated; spreading it across existing high-performing placements raises delivery without new buys.", headroom),
			EstimatedGain: headroom * 0.8,
		}
		report.QuickWins = append(report.QuickWins, rec)
		report.Recommendations = append(report.Recommendations, rec)
	}

	// Channel concentration above 50% is a diversification flag.
	for ch, chSpend := range byChannel {
		if share := chSpend / math.Max(spend, 1); share > 0.5 {
			report.Recommendations = append(report.Recommendations, Recommendation{
				Title:         fmt.Sprintf("Reduce %s concentration", ch),
				Detail:        fmt.Sprintf("%s carries %.0f%% of spend; shifting 10%% to under-weighted channels typically improves blended efficiency.", ch, share*100),
				EstimatedGain: chSpend * 0.04,
			})
		}
	}

	// Paused placements holding budget are a quick win.
	for _, p := range placements {
		if p.Status == plan.PlacementPaused && p.Cost > 0 {
			rec := Recommendation{
				PlacementID:   p.ID,
				Title:         fmt.Sprintf("Reallocate paused placement %q", p.Name),
				Detail:        "Paused placements still reserve budget; release or resume them.",
				EstimatedGain: p.Cost * 0.9,
			}
			report.QuickWins = append(report.QuickWins, rec)
			report.Recommendations = append(report.Recommendations, rec)
		}
	}

	for _, r := range report.Recommendations {
		report.TotalGains += r.EstimatedGain
	}
	return report
}
