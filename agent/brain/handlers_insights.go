package brain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/planwise/planwise/agent/command"
	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/insights"
	"github.com/planwise/planwise/inventory"
	"github.com/planwise/planwise/plan"
)

func (b *Brain) handleOptimizationReport(command.Match) (*AgentMessage, error) {
	flight := b.plan.FirstFlight()
	report := insights.GenerateOptimizationReport(b.plan.AllPlacements(), flight.Budget)

	if len(report.Recommendations) == 0 {
		b.state = StateOptimization
		return reply("The plan already looks tight — no rebalancing recommendations right now.",
			"Forecast the campaign", "Export the plan").withAgents("optimization"), nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("I found %d optimization opportunit%s worth about $%s:\n",
		len(report.Recommendations), pluralY(len(report.Recommendations)), formatAmount(report.TotalGains)))
	for _, rec := range report.Recommendations {
		sb.WriteString(fmt.Sprintf("- **%s** — %s\n", rec.Title, rec.Detail))
	}

	msg := reply(sb.String(), "Forecast the campaign", "Analyze my plan").withAgents("optimization")
	b.state = StateOptimization

	if len(report.QuickWins) > 0 {
		sb.WriteString("\nShall I apply the quick wins now?")
		msg.Content = sb.String()
		msg.SuggestedActions = []string{"Yes", "No"}
		b.sessions.SetFollowUp(b.sessionID, "Apply quick-win optimizations?", "apply_quick_wins", "dismiss")
		msg.FollowUp = b.sessions.GetFollowUp(b.sessionID)
	}
	return msg, nil
}

// applyQuickWins redeploys unspent budget across active placements, the
// mutation the optimization report's quick-win follow-up promises.
func (b *Brain) applyQuickWins() *AgentMessage {
	flight := b.plan.FirstFlight()
	active := make([]*plan.Placement, 0)
	for _, p := range flight.Placements {
		if p.Status == plan.PlacementActive {
			active = append(active, p)
		}
	}
	headroom := flight.Budget - flight.Spend()
	if len(active) == 0 || headroom <= 0 {
		return reply("There's no unspent budget to redeploy.", b.defaultSuggestions()...)
	}

	b.snapshot()
	extra := headroom / float64(len(active))
	for _, p := range active {
		qty, cost := plan.PriceAllocation(p.Channel, p.Cost+extra)
		p.Quantity = qty
		p.Cost = cost
	}
	b.enterRefinement()
	return reply(
		fmt.Sprintf("Redeployed $%s of unspent budget across %d placements. Spend is now $%s of $%s.",
			formatAmount(headroom), len(active),
			formatAmount(flight.Spend()), formatAmount(flight.Budget)),
		"Analyze my plan", "Undo").
		withPlan(b.plan).withAgents("optimization")
}

func (b *Brain) handleForecast(command.Match) (*AgentMessage, error) {
	flight := b.plan.FirstFlight()
	fc := insights.ForecastCampaign(b.plan.AllPlacements(), flight.StartDate, flight.EndDate)

	payload, err := json.Marshal(fc)
	if err != nil {
		return nil, errors.Wrap(err, "marshal forecast payload")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Here's the delivery forecast for %s through %s.\n",
		fc.Start.Format("Jan 2"), fc.End.Format("Jan 2, 2006")))
	if fc.SeasonalNote != "" {
		sb.WriteString(fc.SeasonalNote + "\n")
	}
	if fc.OverlapWarning != "" {
		sb.WriteString("⚠️ " + fc.OverlapWarning + "\n")
	}
	sb.WriteString(fmt.Sprintf("[FORECAST_CARDS]%s[/FORECAST_CARDS]", payload))

	b.openWindow(plan.WindowForecast)
	return reply(sb.String(), "Run an optimization report", "Export the plan").
		withAction(ActionOpenForecast).withAgents("forecast"), nil
}

func (b *Brain) handleAnalysis(command.Match) (*AgentMessage, error) {
	flight := b.plan.FirstFlight()
	analysis := insights.AnalyzePlan(b.plan.AllPlacements(), flight.Budget)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Plan health: **%d/100** (%.0f%% of budget allocated across %d channel%s).\n",
		analysis.OverallScore, analysis.Utilization*100, analysis.ChannelCount, plural(analysis.ChannelCount)))
	for _, issue := range analysis.Issues {
		marker := "•"
		if issue.Severity == insights.SeverityCritical {
			marker = "🔴"
		} else if issue.Severity == insights.SeverityWarning {
			marker = "🟡"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, issue.Message))
	}
	if len(analysis.Issues) == 0 {
		sb.WriteString("No issues found.\n")
	}

	suggestions := []string{"Run an optimization report", "Forecast the campaign"}
	if analysis.CriticalCount > 0 {
		suggestions = []string{"Run an optimization report", "Change the budget"}
	}
	return reply(sb.String(), suggestions...).withAgents("analysis"), nil
}

func (b *Brain) handleAllocationAdvice(m command.Match) (*AgentMessage, error) {
	text := m.Input
	budget := float64(DefaultBudget)
	if b.plan != nil {
		budget = b.plan.Budget
	}
	if amount, ok := extract.Budget(text); ok {
		budget = amount
	}
	objective := objectiveFromText(text)
	channels := extract.Channels(text)

	advice := insights.RecommendBudgetAllocation(budget, objective, channels)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Recommended split for a $%s %s budget:\n", formatAmount(budget), advice.Objective))
	for _, a := range advice.Allocations {
		sb.WriteString(fmt.Sprintf("- %s: %.0f%% ($%s)\n", a.Channel, a.Percent, formatAmount(a.Amount)))
	}
	sb.WriteString("\n" + advice.Rationale)

	return reply(sb.String(), "Apply this split", "Generate placements").withAgents("allocation"), nil
}

func objectiveFromText(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "awareness") || strings.Contains(lower, "brand"):
		return "awareness"
	case strings.Contains(lower, "performance") || strings.Contains(lower, "conversion") ||
		strings.Contains(lower, "sales"):
		return "performance"
	default:
		return "balanced"
	}
}

func (b *Brain) handleInventoryLookup(m command.Match) (*AgentMessage, error) {
	channels := extract.Channels(m.Input)

	items := inventory.All()
	heading := "Available inventory across all channels:"
	if len(channels) > 0 {
		items = nil
		for _, ch := range channels {
			items = append(items, inventory.ByChannel(ch)...)
		}
		heading = fmt.Sprintf("Available %s inventory:", strings.Join(channels, " and "))
	}
	if len(items) == 0 {
		return reply("No inventory matched. Channels I track: " + strings.Join(inventory.Channels(), ", ") + "."), nil
	}

	var sb strings.Builder
	sb.WriteString(heading + "\n")
	for _, item := range items {
		price := fmt.Sprintf("$%.2f CPM", item.CPM)
		if item.CPM == 0 {
			price = "auction priced"
		}
		sb.WriteString(fmt.Sprintf("- **%s** (%s, %s) — %s, $%s minimum\n",
			item.Publisher, item.Channel, item.Format, price, formatAmount(item.MinSpend)))
	}

	b.openWindow(plan.WindowInventory)
	return reply(sb.String(), "Add placements", "Show DMA data").
		withAction(ActionOpenInventory).withAgents("inventory"), nil
}

func (b *Brain) handleDMALookup(m command.Match) (*AgentMessage, error) {
	text := m.Input
	if dma, ok := inventory.DMAInText(text); ok {
		return reply(fmt.Sprintf("**%s** (DMA %d) is the #%d market with %s TV homes (%.1f%% of US).",
			dma.Name, dma.Code, dma.Rank, formatAmount(float64(dma.TVHomes)), dma.PctUS),
			"Show top markets", "Add placements").withAgents("inventory"), nil
	}

	var sb strings.Builder
	sb.WriteString("Top markets by TV homes:\n")
	for _, dma := range inventory.TopDMAs(5) {
		sb.WriteString(fmt.Sprintf("%d. %s (DMA %d) — %s TV homes\n",
			dma.Rank, dma.Name, dma.Code, formatAmount(float64(dma.TVHomes))))
	}
	return reply(sb.String(), "Add placements").withAgents("inventory"), nil
}

// openWindow records a window as open, once.
func (b *Brain) openWindow(t plan.WindowType) {
	for _, w := range b.openWindows {
		if w == t {
			return
		}
	}
	b.openWindows = append(b.openWindows, t)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
