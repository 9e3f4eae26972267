package brain

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/planwise/agent/command"
	"github.com/planwise/planwise/agent/session"
	"github.com/planwise/planwise/plan"
)

func newTestBrain(t *testing.T) *Brain {
	t.Helper()
	sessions := session.NewManager(session.NewMemoryStore(), session.Config{})
	b := New("test-session", sessions)
	b.rng = rand.New(rand.NewSource(42))
	return b
}

func TestProcessInputAlwaysReturnsMessage(t *testing.T) {
	b := newTestBrain(t)
	for _, input := range []string{"", "   ", "asdf qwerty", "???", "yes"} {
		msg := b.ProcessInput(input)
		require.NotNil(t, msg, "input %q", input)
		assert.NotEmpty(t, msg.Content, "input %q", input)
		assert.Equal(t, "assistant", msg.Role)
	}
}

func TestCreatePlanFromUtterance(t *testing.T) {
	b := newTestBrain(t)

	msg := b.ProcessInput("Create a plan for Nike with a $500k budget")

	require.NotNil(t, b.Plan())
	assert.Equal(t, "Nike", b.Plan().Advertiser)
	assert.Equal(t, 500000.0, b.Plan().Budget)
	assert.Equal(t, StateBudgeting, b.State())
	assert.Equal(t, ActionOpenPlan, msg.Action)
	require.NotNil(t, msg.UpdatedMediaPlan)
	assert.Equal(t, strategySuggestions, msg.SuggestedActions)

	// The new plan arrives pre-seeded with one campaign and one flight.
	require.NotNil(t, b.Plan().FirstCampaign())
	require.NotNil(t, b.Plan().FirstFlight())
	assert.Equal(t, 500000.0, b.Plan().FirstFlight().Budget)
}

func TestCreatePlanDefaultBudget(t *testing.T) {
	b := newTestBrain(t)

	msg := b.ProcessInput("create a new plan for Acme")

	require.NotNil(t, b.Plan())
	assert.Equal(t, float64(DefaultBudget), b.Plan().Budget)
	assert.Contains(t, msg.Content, "default")
}

func TestStrategyChoiceGeneratesPlacements(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $500k budget")

	msg := b.ProcessInput("Focus on Digital Only")

	assert.Equal(t, StateRefinement, b.State())
	assert.Equal(t, plan.StrategyDigital, b.Plan().Strategy)
	require.NotNil(t, msg.UpdatedMediaPlan)

	placements := b.Plan().AllPlacements()
	require.NotEmpty(t, placements)
	spend := b.Plan().TotalSpend()
	assert.LessOrEqual(t, spend, 500000.0)
	assert.GreaterOrEqual(t, spend, 450000.0)
}

func TestChannelSelectionCollectsThenGenerates(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	b.ProcessInput("I want search and social")
	assert.Equal(t, StateChannelSelection, b.State())

	b.ProcessInput("generate")
	assert.Equal(t, StateRefinement, b.State())
	assert.NotEmpty(t, b.Plan().AllPlacements())
}

func TestFinishReturnsToInit(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")

	msg := b.ProcessInput("we're done")

	assert.Equal(t, StateInit, b.State())
	assert.Contains(t, msg.Content, "Nike")
	// The plan survives FINISHED for later export.
	assert.NotNil(t, b.Plan())
}

func TestInitGuardProtectsExistingPlan(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")
	b.ProcessInput("done")
	require.Equal(t, StateInit, b.State())

	// Ambiguous input with numbers must not replace the plan.
	msg := b.ProcessInput("I want a plan for Adidas with $200k")
	assert.Equal(t, "Nike", b.Plan().Advertiser)
	assert.Contains(t, msg.Content, "already have a plan")

	// An explicit new-plan phrase does replace it, reusing the entities
	// accumulated from the ambiguous turn.
	b.ProcessInput("Start a new plan")
	assert.Equal(t, "Adidas", b.Plan().Advertiser)
	assert.Equal(t, 200000.0, b.Plan().Budget)
}

func TestInitGuardYesDiscardsPlan(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("done")
	require.Equal(t, StateInit, b.State())

	// The guard's question arms a follow-up; a bare "yes" resolves it.
	b.ProcessInput("I want a plan for Adidas")
	msg := b.ProcessInput("yes")
	assert.Nil(t, b.Plan())
	assert.Equal(t, ActionResetView, msg.Action)
}

func TestInitGuardKeepCurrentPlan(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("done")

	b.ProcessInput("I want a plan for Adidas")
	msg := b.ProcessInput("Keep the current plan")
	assert.Contains(t, msg.Content, "Nike")
	require.NotNil(t, b.Plan())
	assert.Equal(t, "Nike", b.Plan().Advertiser)

	// The discard question is dead; a later bare "yes" must not wipe the plan.
	b.ProcessInput("yes")
	assert.NotNil(t, b.Plan())
}

func TestBudgetEditAndUndoRedo(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	b.ProcessInput("Set the budget to $250k")
	assert.Equal(t, 250000.0, b.Plan().Budget)

	b.ProcessInput("undo")
	assert.Equal(t, 100000.0, b.Plan().Budget)

	b.ProcessInput("redo")
	assert.Equal(t, 250000.0, b.Plan().Budget)
}

func TestBudgetEditKeepsGenerationReachable(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	require.Equal(t, StateBudgeting, b.State())

	b.ProcessInput("Set the budget to $250k")
	assert.Equal(t, StateBudgeting, b.State(), "a budget edit must not skip the strategy step")
	assert.Equal(t, 250000.0, b.Plan().Budget)

	msg := b.ProcessInput("Apply 70/20/10 Rule")
	assert.Equal(t, StateRefinement, b.State())
	require.NotNil(t, msg.UpdatedMediaPlan)
	assert.NotEmpty(t, b.Plan().AllPlacements())
}

func TestEditsAfterGenerationStayInRefinement(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")
	require.Equal(t, StateRefinement, b.State())

	b.ProcessInput("Set the budget to $250k")
	assert.Equal(t, StateRefinement, b.State())
}

func TestUndoWithEmptyStack(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	msg := b.ProcessInput("undo")
	assert.Contains(t, msg.Content, "Nothing to undo")
}

func TestPausePlacementsNeedsConfirmation(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")

	msg := b.ProcessInput("pause the social placements")
	require.NotNil(t, msg.PendingAction)
	assert.Equal(t, "pause_placements", msg.PendingAction.Type)
	for _, p := range b.Plan().AllPlacements() {
		assert.Equal(t, plan.PlacementActive, p.Status, "nothing pauses before the confirmation")
	}

	b.ProcessInput("yes")
	paused := 0
	for _, p := range b.Plan().AllPlacements() {
		if p.Status == plan.PlacementPaused {
			assert.Equal(t, "Social", p.Channel)
			paused++
		}
	}
	assert.Greater(t, paused, 0)
}

func TestPausePlacementsDeclined(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")
	b.ProcessInput("pause the social placements")

	msg := b.ProcessInput("no")
	assert.Contains(t, msg.Content, "Cancelled")
	for _, p := range b.Plan().AllPlacements() {
		assert.Equal(t, plan.PlacementActive, p.Status)
	}
}

func TestPausePlacementsAfterJSONRoundTrip(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")
	b.ProcessInput("pause the social placements")

	// A snapshot restore hands the id list back as []any, not []string.
	action, ok := b.sessions.PopPendingAction(b.sessionID)
	require.True(t, ok)
	raw, err := json.Marshal(action.Data)
	require.NoError(t, err)
	var restored any
	require.NoError(t, json.Unmarshal(raw, &restored))
	action.Data = restored
	b.sessions.PushPendingAction(b.sessionID, action)

	b.ProcessInput("yes")
	paused := 0
	for _, p := range b.Plan().AllPlacements() {
		if p.Status == plan.PlacementPaused {
			paused++
		}
	}
	assert.Greater(t, paused, 0)
}

func TestFollowUpYesRunsStoredAction(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	require.Empty(t, b.Plan().AllPlacements())

	b.sessions.SetFollowUp(b.sessionID, "Generate placements now?", "generate_placements", "")

	b.ProcessInput("yes")
	assert.Equal(t, StateRefinement, b.State())
	assert.NotEmpty(t, b.Plan().AllPlacements())
	assert.Nil(t, b.sessions.GetFollowUp(b.sessionID), "follow-up is consumed")
}

func TestBareYesWithNothingPendingFallsThrough(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	// In BUDGETING a bare yes means "go ahead and generate".
	b.ProcessInput("yes")
	assert.Equal(t, StateRefinement, b.State())
}

func TestIneligibleCommandExplainsWhy(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.openWindows = nil

	msg := b.ProcessInput("arrange the windows")
	assert.Contains(t, msg.Content, "no open windows")
	assert.Equal(t, ActionNone, msg.Action)
}

func TestExportSetsNavigationAction(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")

	msg := b.ProcessInput("export the plan")
	assert.Equal(t, ActionExport, msg.Action)
	assert.Contains(t, msg.Content, "Nike")
}

func TestInventoryLookupWithoutPlan(t *testing.T) {
	b := newTestBrain(t)

	msg := b.ProcessInput("show me ctv inventory")
	assert.Equal(t, ActionOpenInventory, msg.Action)
	assert.Contains(t, msg.Content, "Hulu")
	assert.NotContains(t, msg.Content, "Meta")
}

func TestDMALookup(t *testing.T) {
	b := newTestBrain(t)

	msg := b.ProcessInput("what are the top markets")
	assert.Contains(t, msg.Content, "New York")
}

func TestForecastEmbedsCards(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")

	msg := b.ProcessInput("forecast the campaign delivery")
	assert.Equal(t, ActionOpenForecast, msg.Action)
	assert.Contains(t, msg.Content, "[FORECAST_CARDS]")
	assert.Contains(t, msg.Content, "[/FORECAST_CARDS]")
	assert.Contains(t, msg.AgentsInvoked, "forecast")
}

func TestAnalysisReportsScore(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")
	b.ProcessInput("Apply 70/20/10 Rule")

	msg := b.ProcessInput("analyze my plan")
	assert.Contains(t, msg.Content, "/100")
	assert.Contains(t, msg.AgentsInvoked, "analysis")
}

func TestEscalationOfferedOnceAfterRepeatedCorrections(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	first := b.ProcessInput("that's wrong")
	assert.NotContains(t, first.Content, "human planner")

	second := b.ProcessInput("no, still wrong")
	assert.Contains(t, second.Content, "human planner")
	assert.Contains(t, second.SuggestedActions, "Talk to a human")

	third := b.ProcessInput("wrong again")
	assert.NotContains(t, third.Content, "human planner", "escalation is one-shot")
}

func TestHandlerPanicBecomesApology(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	original := handlers["undo"]
	handlers["undo"] = func(*Brain, command.Match) (*AgentMessage, error) {
		panic("boom")
	}
	defer func() { handlers["undo"] = original }()

	msg := b.ProcessInput("undo")
	require.NotNil(t, msg)
	assert.Contains(t, msg.Content, "Sorry")
	assert.Equal(t, StateBudgeting, b.State(), "state is untouched by the failure")
}

func TestGoalSetAndGet(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	b.ProcessInput("set the goal to drive Q4 sales")
	assert.Equal(t, "drive Q4 sales", b.Plan().Goal)

	msg := b.ProcessInput("what is the goal")
	assert.Contains(t, msg.Content, "drive Q4 sales")
}

func TestTemplateApply(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	msg := b.ProcessInput("use the b2b template")
	assert.Equal(t, plan.StrategyDigital, b.Plan().Strategy)
	assert.Contains(t, msg.Content, "B2B")
	assert.Equal(t, StateBudgeting, b.State())
}

func TestAddPlacementCommand(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	msg := b.ProcessInput("add a social placement")
	require.NotNil(t, msg.UpdatedMediaPlan)
	placements := b.Plan().AllPlacements()
	require.Len(t, placements, 1)
	assert.Equal(t, "Social", placements[0].Channel)
	assert.Equal(t, StateBudgeting, b.State(), "manual adds leave the strategy step available")
}

func TestAddPlacementBatch(t *testing.T) {
	b := newTestBrain(t)
	b.ProcessInput("Create a plan for Nike with a $100k budget")

	b.ProcessInput("add 3 display placements")
	assert.Len(t, b.Plan().AllPlacements(), 3)
}

func TestAllCommandsHaveHandlers(t *testing.T) {
	for _, def := range command.All() {
		_, ok := handlers[def.ID]
		assert.True(t, ok, "command %s has no handler", def.ID)
	}
	for id := range handlers {
		found := false
		for _, def := range command.All() {
			if def.ID == id {
				found = true
				break
			}
		}
		assert.True(t, found, "handler %s has no command", id)
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[float64]string{
		0:       "0",
		999:     "999",
		1000:    "1,000",
		100000:  "100,000",
		2500000: "2,500,000",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatAmount(in), "formatAmount(%v)", in)
	}
}
