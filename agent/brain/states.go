package brain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/agent/intent"
	"github.com/planwise/planwise/plan"
)

// strategySuggestions are the quick replies offered right after plan
// creation.
var strategySuggestions = []string{
	"Apply 70/20/10 Rule",
	"Focus on Digital Only",
	"Focus on Brand Awareness (TV/OOH)",
}

var (
	digitRegex    = regexp.MustCompile(`\d`)
	generateRegex = regexp.MustCompile(`(?i)\b(generate|show|build)\b`)
	finishRegex   = regexp.MustCompile(`(?i)\b(finish(ed)?|done|complete|wrap (it )?up)\b`)
)

// handleState is the fallthrough after the command table: behavior keyed by
// the conversation phase.
func (b *Brain) handleState(text string, detected intent.DetectedIntent) *AgentMessage {
	if finishRegex.MatchString(text) && b.plan != nil {
		return b.finishPlan()
	}

	switch b.state {
	case StateInit:
		return b.handleInit(text, detected)
	case StateBudgeting:
		return b.handleBudgeting(text, detected)
	case StateChannelSelection:
		return b.handleChannelSelection(text, detected)
	case StateRefinement, StateOptimization:
		return b.handleRefinement(text, detected)
	default:
		b.state = StateInit
		return b.handleInit(text, detected)
	}
}

// handleInit owns plan creation. Guard rule: an existing plan is never
// silently replaced — anything short of an explicit new/reset phrase gets a
// disambiguation question instead of a second plan.
func (b *Brain) handleInit(text string, detected intent.DetectedIntent) *AgentMessage {
	if b.plan != nil && keepRegex.MatchString(text) {
		b.sessions.ClearFollowUp(b.sessionID)
		return reply(
			fmt.Sprintf("Okay — sticking with the plan for %s. What next?", b.plan.Advertiser),
			b.defaultSuggestions()...)
	}

	if b.plan != nil && !resetRegex.MatchString(text) {
		// A "yes" to the disambiguation question discards and starts over;
		// anything else keeps the plan.
		b.sessions.SetFollowUp(b.sessionID,
			"Start a new plan and discard the current one?", "start_new_plan", "")
		if digitRegex.MatchString(text) {
			// Numbers in the input usually mean a budget edit that missed
			// its command pattern, not a request for a fresh plan.
			return reply(
				fmt.Sprintf("You already have a plan for %s. Did you want to change its budget, or start a brand-new plan?", b.plan.Advertiser),
				"Change the budget", "Start a new plan", "Keep the current plan")
		}
		return reply(
			fmt.Sprintf("You already have a plan for %s. Start a new one and discard it, or keep working on the current plan?", b.plan.Advertiser),
			"Start a new plan", "Keep the current plan")
	}

	if detected.Category == intent.CategoryPlanning || resetRegex.MatchString(text) {
		return b.createPlan(detected.Entities)
	}

	if detected.Category == intent.CategoryUnknown {
		return reply(
			"I can help you build a media plan. Tell me the advertiser and budget — for example \"Create plan for Nike ($500k)\".",
			"Create a plan", "Show inventory", "Help")
	}

	return reply(
		"Let's start with a plan first. Who's the advertiser and what's the budget?",
		"Create a plan", "Help")
}

// createPlan builds the plan from extracted entities, falling back to the
// documented defaults when parsing came up empty.
func (b *Brain) createPlan(entities extract.Entities) *AgentMessage {
	advertiser := entities.CampaignName
	if advertiser == "" {
		advertiser = b.accumulated().CampaignName
	}
	if advertiser == "" {
		advertiser = "Untitled"
	}

	budget := float64(DefaultBudget)
	budgetDefaulted := true
	if entities.Budget != nil {
		budget = *entities.Budget
		budgetDefaulted = false
	} else if acc := b.accumulated(); acc.Budget != nil {
		budget = *acc.Budget
		budgetDefaulted = false
	}

	b.plan = plan.NewMediaPlan(advertiser, budget)
	b.state = StateBudgeting
	b.openWindows = []plan.WindowType{plan.WindowPlan}
	b.undoStack = nil
	b.redoStack = nil
	// The guard's discard question is moot once a plan exists.
	b.sessions.ClearFollowUp(b.sessionID)
	if b.metrics != nil {
		b.metrics.RecordPlanCreated(string(b.plan.Strategy))
	}

	content := fmt.Sprintf("Created a media plan for **%s** with a budget of $%s. How should we shape the mix?",
		advertiser, formatAmount(budget))
	if budgetDefaulted {
		content = fmt.Sprintf("Created a media plan for **%s**. I didn't catch a budget, so I started with the default $%s — you can change it any time. How should we shape the mix?",
			advertiser, formatAmount(budget))
	}

	return reply(content, strategySuggestions...).
		withPlan(b.plan).
		withAction(ActionOpenPlan)
}

// strategyFromText maps the quick-reply phrasings (and close variants) to a
// generation strategy.
func strategyFromText(text string) (plan.Strategy, bool) {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "70/20/10") || strings.Contains(lower, "balanced"):
		return plan.StrategyBalanced, true
	case strings.Contains(lower, "digital"):
		return plan.StrategyDigital, true
	case strings.Contains(lower, "awareness") || strings.Contains(lower, "tv/ooh") || strings.Contains(lower, "brand"):
		return plan.StrategyAwareness, true
	}
	return "", false
}

// handleBudgeting waits for a strategy choice or an explicit generate.
func (b *Brain) handleBudgeting(text string, detected intent.DetectedIntent) *AgentMessage {
	if strategy, ok := strategyFromText(text); ok {
		b.plan.Strategy = strategy
		return b.generateAndEnterRefinement(strategy)
	}

	// Naming channels moves the conversation into manual channel picking.
	if len(detected.Entities.Channels) > 0 {
		b.state = StateChannelSelection
		return reply(
			fmt.Sprintf("Noted: %s. Add more channels, or say \"generate\" and I'll build placements around those.",
				strings.Join(detected.Entities.Channels, ", ")),
			"Generate placements", "Add more channels")
	}

	if generateRegex.MatchString(text) || yesRegex.MatchString(text) {
		strategy := b.plan.Strategy
		if strategy == "" {
			strategy = plan.StrategyBalanced
			b.plan.Strategy = strategy
		}
		return b.generateAndEnterRefinement(strategy)
	}

	return reply(
		"Pick a direction for the mix and I'll generate placements.",
		strategySuggestions...)
}

// handleChannelSelection keeps collecting channels until the user says go.
func (b *Brain) handleChannelSelection(text string, detected intent.DetectedIntent) *AgentMessage {
	if generateRegex.MatchString(text) || yesRegex.MatchString(text) || strings.EqualFold(strings.TrimSpace(text), "done") {
		if b.plan.Strategy == "" {
			b.plan.Strategy = plan.StrategyBalanced
		}
		return b.generateAndEnterRefinement(b.plan.Strategy)
	}

	if len(detected.Entities.Channels) > 0 {
		return reply(
			fmt.Sprintf("Added %s to the shortlist. Anything else, or should I generate?",
				strings.Join(detected.Entities.Channels, ", ")),
			"Generate placements")
	}

	return reply("Name the channels you want, or say \"generate\" to build the plan.",
		"Generate placements")
}

// handleRefinement is the free-form phase; almost everything real is caught
// by the command table before we get here.
func (b *Brain) handleRefinement(text string, detected intent.DetectedIntent) *AgentMessage {
	if resetRegex.MatchString(text) {
		b.state = StateInit
		return b.handleInit(text, detected)
	}

	if intent.RequiresClarification(detected, b.accumulated()) {
		return reply(
			"I'm not sure what you'd like to do with the plan. Here are a few things I can help with:",
			"Analyze my plan", "Optimize my plan", "Add a placement", "Export to PDF")
	}

	// A recognized intent with no matching command usually means a
	// supported topic phrased in a way the table misses.
	return reply(
		fmt.Sprintf("I understood that as a %s request but couldn't map it to an action. Could you rephrase?",
			strings.ToLower(string(detected.Category))),
		b.defaultSuggestions()...)
}

// finishPlan closes out the conversation and immediately loops back to
// INIT, keeping the plan available for export.
func (b *Brain) finishPlan() *AgentMessage {
	b.state = StateFinished
	spend := b.plan.TotalSpend()
	msg := reply(
		fmt.Sprintf("Great — the plan for **%s** is wrapped up: $%s of $%s allocated across %d placements. Say \"export\" any time for a document, or start a new plan.",
			b.plan.Advertiser, formatAmount(spend), formatAmount(b.plan.Budget), len(b.plan.AllPlacements())),
		"Export to PDF", "Start a new plan")
	b.state = StateInit
	return msg
}

// formatAmount renders a dollar amount with thousands separators.
func formatAmount(v float64) string {
	n := int64(v + 0.5)
	if n < 0 {
		return "-" + formatAmount(-v)
	}
	s := strconv.FormatInt(n, 10)
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	return strings.Join(parts, ",")
}
