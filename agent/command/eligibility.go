package command

import (
	"github.com/planwise/planwise/plan"
)

// Requirements is the fixed eligibility record for one command category.
type Requirements struct {
	RequiresMediaPlan   bool
	RequiresCampaign    bool
	RequiresFlight      bool
	RequiredWindowTypes []plan.WindowType
	// RequiresWindows applies to window-management commands only: at least
	// one window must be open for "arrange windows" to mean anything.
	RequiresWindows bool
}

// categoryRequirements maps each category to its requirement record.
// Missing categories have no requirements.
var categoryRequirements = map[Category]Requirements{
	CategoryWindow:       {RequiresWindows: true},
	CategoryHistory:      {RequiresMediaPlan: true},
	CategoryGoal:         {RequiresMediaPlan: true},
	CategoryCreative:     {RequiresMediaPlan: true},
	CategoryOptimization: {RequiresMediaPlan: true, RequiresFlight: true},
	CategoryForecast:     {RequiresMediaPlan: true, RequiresFlight: true},
	CategoryCampaign:     {RequiresMediaPlan: true},
	CategoryFlight:       {RequiresMediaPlan: true, RequiresCampaign: true},
	CategoryPlacement:    {RequiresMediaPlan: true, RequiresCampaign: true, RequiresFlight: true},
	CategoryBudget:       {RequiresMediaPlan: true},
	CategorySchedule:     {RequiresMediaPlan: true, RequiresFlight: true},
	CategoryStatus:       {RequiresMediaPlan: true, RequiresFlight: true},
	CategorySegment:      {RequiresMediaPlan: true, RequiresFlight: true},
	CategoryView:         {RequiresMediaPlan: true, RequiredWindowTypes: []plan.WindowType{plan.WindowPlan}},
	CategoryExport:       {RequiresMediaPlan: true},
}

// Eligibility is the verdict of the gate, with the first failing
// requirement as the reason.
type Eligibility struct {
	Eligible bool
	Reason   string
}

// IsEligible checks a command's category requirements against the ambient
// window context, in a fixed order: media plan, campaign, flight, required
// window types, open windows. The first failure wins.
func IsEligible(cmd *Definition, windowCtx plan.WindowContext) Eligibility {
	req, ok := categoryRequirements[cmd.Category]
	if !ok {
		return Eligibility{Eligible: true}
	}
	if req.RequiresMediaPlan && !windowCtx.HasMediaPlan {
		return Eligibility{Reason: "You need an active media plan first. Say \"create a plan\" to get started."}
	}
	if req.RequiresCampaign && !windowCtx.HasCampaign {
		return Eligibility{Reason: "There's no campaign yet. Create a campaign before running this."}
	}
	if req.RequiresFlight && !windowCtx.HasFlight {
		return Eligibility{Reason: "You need an open flight for that. Add a flight to the campaign first."}
	}
	for _, wt := range req.RequiredWindowTypes {
		if !windowCtx.HasWindow(wt) {
			return Eligibility{Reason: "That needs the " + string(wt) + " view open."}
		}
	}
	if req.RequiresWindows && len(windowCtx.OpenWindows) == 0 {
		return Eligibility{Reason: "There are no open windows to arrange."}
	}
	return Eligibility{Eligible: true}
}

// FindEligible walks the pattern matches in priority order and returns the
// first eligible one. When every match is gated off, it returns the first
// match overall together with its ineligibility reason so the caller can
// explain why the best textual match was refused instead of silently
// falling through.
func FindEligible(text string, windowCtx plan.WindowContext) (Match, Eligibility, bool) {
	matches := FindAllMatching(text)
	if len(matches) == 0 {
		return Match{}, Eligibility{}, false
	}
	for _, m := range matches {
		if e := IsEligible(m.Command, windowCtx); e.Eligible {
			return m, e, true
		}
	}
	first := matches[0]
	return first, IsEligible(first.Command, windowCtx), true
}
