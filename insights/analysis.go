package insights

import (
	"fmt"
	"math"

	"github.com/planwise/planwise/plan"
)

// IssueSeverity grades a plan issue.
type IssueSeverity string

const (
	SeverityCritical IssueSeverity = "critical"
	SeverityWarning  IssueSeverity = "warning"
	SeverityInfo     IssueSeverity = "info"
)

// PlanIssue is one finding from AnalyzePlan.
type PlanIssue struct {
	Severity IssueSeverity `json:"severity"`
	Message  string        `json:"message"`
}

// PlanAnalysis is the output of AnalyzePlan.
type PlanAnalysis struct {
	OverallScore  int         `json:"overallScore"` // 0-100
	Issues        []PlanIssue `json:"issues"`
	CriticalCount int         `json:"criticalCount"`
	Utilization   float64     `json:"utilization"` // spend / budget
	ChannelCount  int         `json:"channelCount"`
}

// AnalyzePlan scores placements against the flight budget. The score starts
// at 100 and each finding subtracts a fixed penalty.
func AnalyzePlan(placements []*plan.Placement, flightBudget float64) PlanAnalysis {
	analysis := PlanAnalysis{OverallScore: 100}

	spend := 0.0
	channels := make(map[string]bool)
	for _, p := range placements {
		spend += p.Cost
		channels[p.Channel] = true
	}
	analysis.ChannelCount = len(channels)
	if flightBudget > 0 {
		analysis.Utilization = spend / flightBudget
	}

	addIssue := func(sev IssueSeverity, penalty int, msg string) {
		analysis.Issues = append(analysis.Issues, PlanIssue{Severity: sev, Message: msg})
		analysis.OverallScore -= penalty
		if sev == SeverityCritical {
			analysis.CriticalCount++
		}
	}

	if len(placements) == 0 {
		addIssue(SeverityCritical, 50, "Plan has no placements.")
	}
	if spend > flightBudget {
		addIssue(SeverityCritical, 30, fmt.Sprintf("Spend ($%.0f) exceeds the flight budget ($%.0f).", spend, flightBudget))
	} else if flightBudget > 0 && analysis.Utilization < 0.6 {
		addIssue(SeverityWarning, 15, fmt.Sprintf("Only %.0f%% of budget is allocated.", analysis.Utilization*100))
	}
	if len(channels) == 1 && len(placements) > 0 {
		addIssue(SeverityWarning, 10, "All spend is in a single channel.")
	}
	for _, p := range placements {
		if p.Cost > 0 && flightBudget > 0 && p.Cost/flightBudget > 0.6 {
			addIssue(SeverityWarning, 10, fmt.Sprintf("Placement %q alone is %.0f%% of budget.", p.Name, p.Cost/flightBudget*100))
		}
	}

	analysis.OverallScore = int(math.Max(0, float64(analysis.OverallScore)))
	return analysis
}
