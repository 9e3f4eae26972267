package brain

import (
	"fmt"
	"strings"

	"github.com/planwise/planwise/plan"
)

// digitalCorePct returns the allocation percentage of the total budget for
// one digital core channel under the given strategy. A zero return means the
// channel is skipped entirely.
func digitalCorePct(strategy plan.Strategy, channel string) float64 {
	switch strategy {
	case plan.StrategyDigital:
		return 25
	case plan.StrategyAwareness:
		switch channel {
		case "Search":
			return 2
		case "Social":
			return 5
		case "Display":
			return 0 // awareness plans skip Display
		}
	}
	return 10
}

var offlineChannels = []string{"TV", "Radio", "OOH", "Print"}

// generatePlacements runs the deterministic greedy allocation over the
// flight budget: a digital core layer, an offline layer for awareness or
// larger budgets, then a fill pass toward 95% utilization. Placement
// identities are randomized; only budget bounds and channel mix shape are
// contractual.
func (b *Brain) generatePlacements(strategy plan.Strategy) int {
	flight := b.plan.FirstFlight()
	budget := flight.Budget
	added := 0

	// Layer 1: digital core, per-channel percentage plus up to +2% jitter.
	for _, channel := range []string{"Search", "Social", "Display"} {
		pct := digitalCorePct(strategy, channel)
		if pct == 0 {
			continue
		}
		pct += b.rng.Float64() * 2
		alloc := budget * pct / 100
		flight.AddPlacement(b.placementName(channel), channel, alloc)
		added++
	}

	// Layer 2: offline, for awareness strategies or budgets past $50k.
	if strategy == plan.StrategyAwareness || budget > 50000 {
		count := 2
		pct := 15.0
		if strategy == plan.StrategyAwareness {
			count = 4
			pct = 25.0
		}
		picks := b.pickOffline(count)
		for i, channel := range picks {
			alloc := budget * pct / 100
			_, cost := plan.PriceAllocation(channel, alloc)
			forced := strategy == plan.StrategyAwareness && i == 0
			if !forced && flight.Spend()+cost > budget {
				continue
			}
			flight.AddPlacement(b.placementName(channel), channel, alloc)
			added++
		}
	}

	// Layer 3: fill with small Social/Display placements until 95% of the
	// budget is committed, capped at 20 iterations. Sub-$10 scraps are
	// discarded.
	fillChannels := []string{"Social", "Display"}
	for i := 0; i < 20; i++ {
		spend := flight.Spend()
		if spend >= budget*0.95 {
			break
		}
		remaining := budget*0.95 - spend
		alloc := budget * 0.05
		if alloc > remaining {
			alloc = remaining
		}
		channel := fillChannels[i%len(fillChannels)]
		pl := flight.AddPlacement(b.placementName(channel), channel, alloc)
		if pl.Cost <= 10 {
			flight.RemovePlacement(pl.ID)
			break
		}
		added++
	}

	return added
}

// placementName builds a randomized human-readable placement identity.
var placementFlavors = map[string][]string{
	"Search":       {"Brand Terms", "Category Terms", "Competitor Conquest"},
	"Social":       {"Feed Video", "Stories", "Interest Targeting", "Lookalikes"},
	"Display":      {"Retargeting", "Prospecting", "Contextual"},
	"TV":           {"Primetime :30", "Daytime Rotation", "Sports Adjacency"},
	"Radio":        {"Drive Time", "Weekend Rotation"},
	"OOH":          {"Highway Boards", "Transit", "Urban Panels"},
	"Print":        {"Full Page", "Half Page"},
	"Connected TV": {"Streaming :30", "Streaming :15"},
}

func (b *Brain) placementName(channel string) string {
	flavors := placementFlavors[channel]
	if len(flavors) == 0 {
		return channel
	}
	return channel + " - " + flavors[b.rng.Intn(len(flavors))]
}

// pickOffline chooses n distinct offline channels in randomized order.
func (b *Brain) pickOffline(n int) []string {
	picks := make([]string, len(offlineChannels))
	copy(picks, offlineChannels)
	b.rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	if n > len(picks) {
		n = len(picks)
	}
	return picks[:n]
}

// generateAndEnterRefinement runs generation and transitions the state
// machine into REFINEMENT with a mix summary.
func (b *Brain) generateAndEnterRefinement(strategy plan.Strategy) *AgentMessage {
	b.snapshot()
	added := b.generatePlacements(strategy)
	b.state = StateRefinement

	flight := b.plan.FirstFlight()
	spend := flight.Spend()
	mix := channelMix(flight.Placements)

	content := fmt.Sprintf(
		"Generated %d placements under the %s strategy: %s. That commits $%s of the $%s budget (%.0f%%). Want me to analyze it, or start refining?",
		added, titleCase(string(strategy)), mix,
		formatAmount(spend), formatAmount(flight.Budget), spend/flight.Budget*100)

	return reply(content, "Analyze my plan", "Optimize my plan", "Add a placement").
		withPlan(b.plan).
		withAction(ActionOpenPlan).
		withAgents("placement-generator")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

func channelMix(placements []*plan.Placement) string {
	counts := make(map[string]int)
	var order []string
	for _, p := range placements {
		if counts[p.Channel] == 0 {
			order = append(order, p.Channel)
		}
		counts[p.Channel]++
	}
	var parts []string
	for _, ch := range order {
		parts = append(parts, fmt.Sprintf("%s ×%d", ch, counts[ch]))
	}
	return strings.Join(parts, ", ")
}
