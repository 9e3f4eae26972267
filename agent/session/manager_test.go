package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwise/planwise/agent/extract"
)

// newTestManager returns a manager whose clock the test controls.
func newTestManager() (*Manager, *time.Time) {
	now := time.Date(2026, time.August, 30, 12, 0, 0, 0, time.UTC)
	m := NewManager(NewMemoryStore(), Config{})
	m.now = func() time.Time { return now }
	return m, &now
}

func TestGetContextLazyCreate(t *testing.T) {
	m, _ := newTestManager()

	first := m.GetContext("s1")
	require.NotNil(t, first)
	assert.Equal(t, "s1", first.SessionID)
	assert.Equal(t, ExpertiseBeginner, first.UserProfile.ExpertiseLevel)

	// Same instance on repeat access.
	assert.Same(t, first, m.GetContext("s1"))
}

func TestHistoryBound(t *testing.T) {
	m, _ := newTestManager()

	for i := 0; i < 55; i++ {
		m.AddMessage("s1", RoleUser, fmt.Sprintf("message %d", i), nil, nil)
	}
	sctx := m.GetContext("s1")
	assert.Len(t, sctx.History, 20)
	// Oldest evicted first: the newest message survives.
	assert.Equal(t, "message 54", sctx.History[19].Content)
	assert.Equal(t, "message 35", sctx.History[0].Content)
	// Interaction count keeps the full tally.
	assert.Equal(t, 55, sctx.UserProfile.InteractionCount)
}

func TestAssistantTurnsDoNotCountInteractions(t *testing.T) {
	m, _ := newTestManager()
	m.AddMessage("s1", RoleAssistant, "hello!", nil, nil)
	assert.Zero(t, m.GetContext("s1").UserProfile.InteractionCount)
}

func TestExpertiseInference(t *testing.T) {
	m, _ := newTestManager()

	m.AddMessage("s1", RoleUser, "what is a flight? how do i start", nil, nil)
	assert.Equal(t, ExpertiseBeginner, m.GetContext("s1").UserProfile.ExpertiseLevel)

	// Jargon alone is not enough before the interaction gate.
	m2, _ := newTestManager()
	m2.AddMessage("s2", RoleUser, "incrementality and attribution by dma please", nil, nil)
	assert.NotEqual(t, ExpertiseExpert, m2.GetContext("s2").UserProfile.ExpertiseLevel)

	m2.AddMessage("s2", RoleUser, "check viewability too", nil, nil)
	m2.AddMessage("s2", RoleUser, "and programmatic reach", nil, nil)
	assert.Equal(t, ExpertiseExpert, m2.GetContext("s2").UserProfile.ExpertiseLevel)
}

func TestEntityAccumulation(t *testing.T) {
	m, _ := newTestManager()
	budget1 := 100000.0
	budget2 := 250000.0

	m.AddMessage("s1", RoleUser, "a", nil, &extract.Entities{
		Budget:   &budget1,
		Channels: []string{"Search", "Social"},
	})
	m.AddMessage("s1", RoleUser, "b", nil, &extract.Entities{
		Budget:   &budget2,
		Channels: []string{"Social", "Display"},
		Audience: "millennials",
	})

	acc := m.GetContext("s1").AccumulatedEntities
	// Scalars overwrite.
	require.NotNil(t, acc.Budget)
	assert.InDelta(t, 250000, *acc.Budget, 0.01)
	// Slices set-union.
	assert.ElementsMatch(t, []string{"Search", "Social", "Display"}, acc.Channels)
	assert.Equal(t, "millennials", acc.Audience)
}

func TestMergeEntitiesNestedSpec(t *testing.T) {
	budget := 5000.0
	dst := extract.Entities{PlacementSpec: &extract.PlacementSpec{Channel: "Social", Count: 2}}
	MergeEntities(&dst, extract.Entities{PlacementSpec: &extract.PlacementSpec{Budget: &budget}})

	// Sub-fields merge; unset fields in src leave dst alone.
	assert.Equal(t, "Social", dst.PlacementSpec.Channel)
	assert.Equal(t, 2, dst.PlacementSpec.Count)
	require.NotNil(t, dst.PlacementSpec.Budget)
}

func TestFollowUpTTL(t *testing.T) {
	m, now := newTestManager()

	m.SetFollowUp("s1", "Generate placements now?", "generate_placements", "")
	fu := m.GetFollowUp("s1")
	require.NotNil(t, fu)
	assert.Equal(t, "generate_placements", fu.YesAction)

	// 2 minutes later the slot lazily expires on read.
	*now = now.Add(2*time.Minute + time.Second)
	assert.Nil(t, m.GetFollowUp("s1"))
	// And it stays gone.
	assert.Nil(t, m.GetContext("s1").LastFollowUp)
}

func TestFollowUpSingleSlot(t *testing.T) {
	m, _ := newTestManager()
	m.SetFollowUp("s1", "first?", "a", "")
	m.SetFollowUp("s1", "second?", "b", "")

	fu := m.GetFollowUp("s1")
	require.NotNil(t, fu)
	assert.Equal(t, "second?", fu.Question)
}

func TestPendingActionQueue(t *testing.T) {
	m, _ := newTestManager()
	m.PushPendingAction("s1", PendingAction{Type: "pause", Description: "Pause 3 placements"})

	action, ok := m.PopPendingAction("s1")
	require.True(t, ok)
	assert.Equal(t, "pause", action.Type)

	_, ok = m.PopPendingAction("s1")
	assert.False(t, ok)
}

func TestFrustrationEscalatesOnce(t *testing.T) {
	m, now := newTestManager()

	m.TrackFrustration("s1", "no, that's wrong")
	assert.False(t, m.ShouldOfferHumanEscalation("s1"))

	*now = now.Add(time.Minute)
	m.TrackFrustration("s1", "you misunderstood me")
	assert.True(t, m.ShouldOfferHumanEscalation("s1"))

	// The latch is one-shot for the session.
	*now = now.Add(time.Minute)
	m.TrackFrustration("s1", "no, I meant the other flight")
	assert.False(t, m.ShouldOfferHumanEscalation("s1"))
}

func TestFrustrationWindowReset(t *testing.T) {
	m, now := newTestManager()

	m.TrackFrustration("s1", "no, wrong")
	*now = now.Add(6 * time.Minute)
	// Outside the window a new correction restarts at 1, not 2.
	m.TrackFrustration("s1", "that's not it")
	assert.Equal(t, 1, m.GetContext("s1").Frustration.ConsecutiveCorrections)
	assert.False(t, m.ShouldOfferHumanEscalation("s1"))
}

func TestFrustrationNonCorrectionReset(t *testing.T) {
	m, now := newTestManager()

	m.TrackFrustration("s1", "no, wrong")
	assert.Equal(t, 1, m.GetContext("s1").Frustration.ConsecutiveCorrections)

	// Inside the window a normal message leaves the counter alone.
	m.TrackFrustration("s1", "show me the plan")
	assert.Equal(t, 1, m.GetContext("s1").Frustration.ConsecutiveCorrections)

	// After the window has elapsed a normal message resets it to zero.
	*now = now.Add(6 * time.Minute)
	m.TrackFrustration("s1", "show me the plan")
	assert.Zero(t, m.GetContext("s1").Frustration.ConsecutiveCorrections)
}

func TestReset(t *testing.T) {
	m, _ := newTestManager()
	m.AddMessage("s1", RoleUser, "hello", nil, nil)
	m.Reset("s1")
	assert.Empty(t, m.GetContext("s1").History)
}
