package brain

import (
	"fmt"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/planwise/planwise/agent/command"
	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/agent/session"
	"github.com/planwise/planwise/plan"
)

// handlerFunc executes one matched command. Errors are converted to
// apologetic messages by safeExecute; they never escape the turn.
type handlerFunc func(b *Brain, m command.Match) (*AgentMessage, error)

// handlers is the command-id → handler table. Every registry entry has a
// row here; the two tables are kept in sync by TestAllCommandsHaveHandlers.
var handlers = map[string]handlerFunc{
	"undo":                (*Brain).handleUndo,
	"redo":                (*Brain).handleRedo,
	"layout.arrange":      (*Brain).handleArrangeLayout,
	"goal.set":            (*Brain).handleGoalSet,
	"goal.get":            (*Brain).handleGoalGet,
	"template.apply":      (*Brain).handleTemplateApply,
	"creative.specs":      (*Brain).handleCreativeSpecs,
	"placement.batch":     (*Brain).handlePlacementBatch,
	"placement.add":       (*Brain).handlePlacementAdd,
	"placement.pause":     (*Brain).handlePlacementPause,
	"placement.resume":    (*Brain).handlePlacementResume,
	"placement.segment":   (*Brain).handleSegmentEdit,
	"budget.edit":         (*Brain).handleBudgetEdit,
	"dates.edit":          (*Brain).handleDatesEdit,
	"campaign.create":     (*Brain).handleCampaignCreate,
	"flight.create":       (*Brain).handleFlightCreate,
	"optimization.report": (*Brain).handleOptimizationReport,
	"forecast.run":        (*Brain).handleForecast,
	"analysis.run":        (*Brain).handleAnalysis,
	"allocation.advise":   (*Brain).handleAllocationAdvice,
	"inventory.lookup":    (*Brain).handleInventoryLookup,
	"dma.lookup":          (*Brain).handleDMALookup,
	"view.group":          (*Brain).handleViewGroup,
	"export.plan":         (*Brain).handleExport,
}

func (b *Brain) handleUndo(command.Match) (*AgentMessage, error) {
	if len(b.undoStack) == 0 {
		return reply("Nothing to undo yet.", b.defaultSuggestions()...), nil
	}
	b.redoStack = append(b.redoStack, b.plan)
	b.plan = b.undoStack[len(b.undoStack)-1]
	b.undoStack = b.undoStack[:len(b.undoStack)-1]
	return reply("Rolled back the last change.", "Redo", "Show my plan").withPlan(b.plan), nil
}

func (b *Brain) handleRedo(command.Match) (*AgentMessage, error) {
	if len(b.redoStack) == 0 {
		return reply("Nothing to redo.", b.defaultSuggestions()...), nil
	}
	b.undoStack = append(b.undoStack, b.plan)
	b.plan = b.redoStack[len(b.redoStack)-1]
	b.redoStack = b.redoStack[:len(b.redoStack)-1]
	return reply("Re-applied the change.", "Undo", "Show my plan").withPlan(b.plan), nil
}

func (b *Brain) handleArrangeLayout(command.Match) (*AgentMessage, error) {
	return reply(fmt.Sprintf("Arranged your %d open windows.", len(b.openWindows))).
		withAction(ActionArrangeLayout), nil
}

func (b *Brain) handleGoalSet(m command.Match) (*AgentMessage, error) {
	goal := strings.TrimSpace(goalFromText(m.Input))
	if goal == "" {
		return nil, errors.New("no goal text found after the verb")
	}
	b.plan.Goal = goal
	return reply(fmt.Sprintf("Goal set: %q.", goal), "Analyze my plan").withPlan(b.plan), nil
}

// goalFromText strips the command verbs off the matched text so "set the
// goal to drive awareness" yields "drive awareness".
func goalFromText(matched string) string {
	lower := strings.ToLower(matched)
	for _, marker := range []string{"goal is", "goal to", "goal:"} {
		if idx := strings.Index(lower, marker); idx >= 0 {
			return matched[idx+len(marker):]
		}
	}
	if idx := strings.Index(lower, "goal"); idx >= 0 {
		return matched[idx+len("goal"):]
	}
	return ""
}

func (b *Brain) handleGoalGet(command.Match) (*AgentMessage, error) {
	if b.plan.Goal == "" {
		return reply("No goal set yet. Tell me something like \"set the goal to drive Q4 sales\".",
			"Set a goal"), nil
	}
	return reply(fmt.Sprintf("The current goal is: %q.", b.plan.Goal), "Change the goal"), nil
}

func (b *Brain) handleTemplateApply(m command.Match) (*AgentMessage, error) {
	name := templateNameFrom(m.Input)
	tpl, ok := lookupTemplate(name)
	if !ok {
		return nil, errors.Errorf("unknown template %q (available: %s)", name, strings.Join(templateNames(), ", "))
	}
	if b.plan == nil {
		b.plan = plan.NewMediaPlan("Untitled", DefaultBudget)
		b.openWindows = []plan.WindowType{plan.WindowPlan}
		if b.metrics != nil {
			b.metrics.RecordPlanCreated(string(tpl.Strategy))
		}
	}
	b.snapshot()
	b.plan.Strategy = tpl.Strategy
	b.plan.Goal = tpl.Goal
	b.state = StateBudgeting
	return reply(
		fmt.Sprintf("Applied the **%s** template: %s. Say \"generate\" to build placements around it.", tpl.Name, tpl.Description),
		"Generate placements").withPlan(b.plan), nil
}

func (b *Brain) handleCreativeSpecs(m command.Match) (*AgentMessage, error) {
	channels := extract.Channels(m.Input)
	if len(channels) == 0 && b.plan != nil {
		for _, p := range b.plan.AllPlacements() {
			channels = append(channels, p.Channel)
		}
	}
	if len(channels) == 0 {
		return reply("Which channel's creative specs do you need?", "Social specs", "CTV specs"), nil
	}
	var lines []string
	seen := map[string]bool{}
	for _, ch := range channels {
		if seen[ch] {
			continue
		}
		seen[ch] = true
		lines = append(lines, fmt.Sprintf("- **%s**: %s", ch, creativeSpecFor(ch)))
	}
	return reply("Creative requirements:\n"+strings.Join(lines, "\n")), nil
}

func (b *Brain) handlePlacementBatch(m command.Match) (*AgentMessage, error) {
	spec := extract.PlacementSpecFrom(m.Input)
	if spec == nil || spec.Count == 0 {
		return nil, errors.New("could not read how many placements to add")
	}
	return b.addPlacements(spec)
}

func (b *Brain) handlePlacementAdd(m command.Match) (*AgentMessage, error) {
	spec := extract.PlacementSpecFrom(m.Input)
	if spec == nil {
		spec = &extract.PlacementSpec{Count: 1}
	}
	if spec.Channel == "" {
		// Fall back to the running entity merge before asking.
		if acc := b.accumulated(); len(acc.Channels) > 0 {
			spec.Channel = acc.Channels[len(acc.Channels)-1]
		}
	}
	if spec.Channel == "" {
		return reply("Which channel should the placement run on?", "Social", "Display", "Connected TV"), nil
	}
	return b.addPlacements(spec)
}

func (b *Brain) addPlacements(spec *extract.PlacementSpec) (*AgentMessage, error) {
	flight := b.plan.FirstFlight()
	channel := spec.Channel
	if channel == "" {
		channel = "Display"
	}

	alloc := flight.Budget * 0.05
	if spec.Budget != nil {
		alloc = *spec.Budget / float64(spec.Count)
	}

	b.snapshot()
	for i := 0; i < spec.Count; i++ {
		flight.AddPlacement(b.placementName(channel), channel, alloc)
	}
	b.enterRefinement()

	return reply(
		fmt.Sprintf("Added %d %s placement(s) at $%s each. Flight spend is now $%s of $%s.",
			spec.Count, channel, formatAmount(alloc),
			formatAmount(flight.Spend()), formatAmount(flight.Budget)),
		"Analyze my plan", "Undo").
		withPlan(b.plan), nil
}

// handlePlacementPause proposes the pause as a pending action instead of
// applying it: pausing is reversible but broad, so it waits for a "yes".
func (b *Brain) handlePlacementPause(m command.Match) (*AgentMessage, error) {
	targets := b.matchPlacements(m.Input, plan.PlacementActive)
	if len(targets) == 0 {
		return reply("I couldn't find any active placements matching that.", "Show my plan"), nil
	}

	ids := make([]string, 0, len(targets))
	details := make([]string, 0, len(targets))
	var total float64
	for _, p := range targets {
		ids = append(ids, p.ID)
		details = append(details, p.Name)
		total += p.Cost
	}
	action := session.PendingAction{
		Type:            "pause_placements",
		Description:     fmt.Sprintf("Pause %d placement(s)", len(targets)),
		Details:         details,
		EstimatedImpact: fmt.Sprintf("$%s of spend goes on hold", formatAmount(total)),
		Data:            ids,
	}
	b.sessions.PushPendingAction(b.sessionID, action)

	msg := reply(
		fmt.Sprintf("That would pause %d placement(s) (%s), putting $%s on hold. Go ahead?",
			len(targets), strings.Join(details, ", "), formatAmount(total)),
		"Yes", "No")
	msg.PendingAction = &action
	return msg, nil
}

func (b *Brain) handlePlacementResume(m command.Match) (*AgentMessage, error) {
	targets := b.matchPlacements(m.Input, plan.PlacementPaused)
	if len(targets) == 0 {
		return reply("There are no paused placements matching that.", "Show my plan"), nil
	}
	b.snapshot()
	for _, p := range targets {
		p.Status = plan.PlacementActive
	}
	b.enterRefinement()
	return reply(fmt.Sprintf("Resumed %d placement(s).", len(targets)), "Analyze my plan").
		withPlan(b.plan), nil
}

// matchPlacements selects the plan's placements in the given status,
// narrowed by any channel mentioned in the text.
func (b *Brain) matchPlacements(text string, status plan.PlacementStatus) []*plan.Placement {
	channels := extract.Channels(text)
	wanted := make(map[string]bool, len(channels))
	for _, ch := range channels {
		wanted[ch] = true
	}
	var out []*plan.Placement
	for _, p := range b.plan.AllPlacements() {
		if p.Status != status {
			continue
		}
		if len(wanted) > 0 && !wanted[p.Channel] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (b *Brain) handleSegmentEdit(m command.Match) (*AgentMessage, error) {
	audience := extract.Audience(m.Input)
	if audience == "" {
		if acc := b.accumulated(); acc.Audience != "" {
			audience = acc.Audience
		}
	}
	if audience == "" {
		return reply("Which audience should I target? e.g. \"adults 18-34\" or \"new parents\".",
			"Adults 18-34", "Millennials"), nil
	}
	b.snapshot()
	count := 0
	for _, p := range b.plan.AllPlacements() {
		p.Audience = audience
		count++
	}
	b.enterRefinement()
	return reply(fmt.Sprintf("Updated the audience on %d placement(s) to %q.", count, audience),
		"Analyze my plan").withPlan(b.plan), nil
}

func (b *Brain) handleBudgetEdit(m command.Match) (*AgentMessage, error) {
	amount, ok := extract.Budget(m.Input)
	if !ok {
		// Documented fallback rather than rejecting the turn.
		amount = DefaultBudget
	}
	b.snapshot()
	old := b.plan.Budget
	b.plan.Budget = amount
	if f := b.plan.FirstFlight(); f != nil {
		f.Budget = amount
	}
	b.enterRefinement()
	content := fmt.Sprintf("Budget changed from $%s to $%s.", formatAmount(old), formatAmount(amount))
	if !ok {
		content = fmt.Sprintf("I couldn't read an amount, so I set the budget to the default $%s. Tell me the exact number to fix it.", formatAmount(amount))
	}
	return reply(content, "Analyze my plan", "Undo").withPlan(b.plan), nil
}

func (b *Brain) handleDatesEdit(m command.Match) (*AgentMessage, error) {
	start, end := extract.Dates(m.Input, time.Now())
	if start == nil {
		return reply("When should the flight run? Give me a month, quarter, or exact dates.",
			"Start in Q4", "Start next month"), nil
	}
	b.snapshot()
	flight := b.plan.FirstFlight()
	if end == nil {
		e := start.AddDate(0, 3, 0)
		end = &e
	}
	flight.SetFlightDates(*start, *end)
	b.enterRefinement()
	return reply(
		fmt.Sprintf("Flight dates updated: %s through %s.",
			start.Format("Jan 2, 2006"), end.Format("Jan 2, 2006")),
		"Forecast the campaign").withPlan(b.plan), nil
}

func (b *Brain) handleCampaignCreate(m command.Match) (*AgentMessage, error) {
	name := extract.CampaignName(m.Input)
	if name == "" {
		name = fmt.Sprintf("Campaign %d", len(b.plan.Campaigns)+1)
	}
	b.snapshot()
	b.plan.Campaigns = append(b.plan.Campaigns, &plan.Campaign{
		ID:   shortuuid.New(),
		Name: name,
	})
	return reply(fmt.Sprintf("Added campaign **%s** to the plan. Add a flight to it to start placing media.", name),
		"Add a flight").withPlan(b.plan), nil
}

func (b *Brain) handleFlightCreate(m command.Match) (*AgentMessage, error) {
	campaign := b.plan.FirstCampaign()
	b.snapshot()
	budget, ok := extract.Budget(m.Input)
	if !ok {
		budget = b.plan.Budget * 0.25
	}
	now := time.Now()
	flight := &plan.Flight{
		ID:        shortuuid.New(),
		Name:      fmt.Sprintf("Flight %d", len(campaign.Flights)+1),
		Budget:    budget,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
	}
	campaign.Flights = append(campaign.Flights, flight)
	return reply(fmt.Sprintf("Added **%s** with a $%s budget.", flight.Name, formatAmount(budget)),
		"Add placements").withPlan(b.plan), nil
}

func (b *Brain) handleViewGroup(m command.Match) (*AgentMessage, error) {
	grouping := "channel"
	if strings.Contains(strings.ToLower(m.Input), "flight") {
		grouping = "flight"
	}
	b.plan.ViewGrouping = grouping
	return reply(fmt.Sprintf("Plan view grouped by %s.", grouping)).withPlan(b.plan), nil
}

func (b *Brain) handleExport(command.Match) (*AgentMessage, error) {
	return reply(
		fmt.Sprintf("Exporting the **%s** plan — %d placements, $%s committed. Your download will start shortly.",
			b.plan.Advertiser, len(b.plan.AllPlacements()), formatAmount(b.plan.TotalSpend()))).
		withAction(ActionExport), nil
}

// runFollowUpAction maps a stored follow-up action tag to its effect. Tags
// are internal; they never reach the UI.
func (b *Brain) runFollowUpAction(action string) *AgentMessage {
	switch action {
	case "generate_placements":
		strategy := b.plan.Strategy
		if strategy == "" {
			strategy = plan.StrategyBalanced
			b.plan.Strategy = strategy
		}
		return b.generateAndEnterRefinement(strategy)
	case "start_new_plan":
		b.plan = nil
		b.state = StateInit
		b.openWindows = nil
		b.undoStack = nil
		b.redoStack = nil
		return reply("Fresh start. Who's the advertiser and what's the budget?",
			"Create a plan").withAction(ActionResetView)
	case "apply_quick_wins":
		return b.applyQuickWins()
	default:
		return reply("Okay. What would you like to do next?", b.defaultSuggestions()...)
	}
}

// applyPendingAction executes a previously proposed mutation after the
// user's explicit "yes".
func (b *Brain) applyPendingAction(action session.PendingAction) *AgentMessage {
	switch action.Type {
	case "pause_placements":
		ids := stringsFromActionData(action.Data)
		b.snapshot()
		count := 0
		for _, p := range b.plan.AllPlacements() {
			for _, id := range ids {
				if p.ID == id {
					p.Status = plan.PlacementPaused
					count++
				}
			}
		}
		b.enterRefinement()
		return reply(fmt.Sprintf("Done — paused %d placement(s).", count), "Resume placements", "Undo").
			withPlan(b.plan)
	default:
		return reply(fmt.Sprintf("Confirmed: %s.", action.Description), b.defaultSuggestions()...)
	}
}

// stringsFromActionData reads a pending action's id list. Data is []string
// in memory but comes back as []any after a JSON round-trip, so both are
// accepted.
func stringsFromActionData(data any) []string {
	switch v := data.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

