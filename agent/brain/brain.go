// Package brain is the orchestrator: it owns the conversation state machine
// and the active media plan, and drives each turn through classify →
// extract → context merge → command match+gate → handler → one message out.
package brain

import (
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"

	"github.com/planwise/planwise/agent/command"
	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/agent/intent"
	"github.com/planwise/planwise/agent/session"
	"github.com/planwise/planwise/plan"
)

// State is the conversation's coarse-grained phase.
type State string

const (
	StateInit             State = "INIT"
	StateBudgeting        State = "BUDGETING"
	StateChannelSelection State = "CHANNEL_SELECTION"
	StateRefinement       State = "REFINEMENT"
	StateOptimization     State = "OPTIMIZATION"
	StateFinished         State = "FINISHED"
)

// DefaultBudget is the documented fallback when no usable amount is parsed.
const DefaultBudget = 100000

// MetricsRecorder receives dispatch events for export. A nil recorder
// disables reporting.
type MetricsRecorder interface {
	RecordCommand(command, status string)
	RecordIntent(category string)
	RecordEscalation()
	RecordPlanCreated(strategy string)
}

// Brain drives one session's conversation. Not safe for concurrent use; a
// hosted server must serialize calls per session.
type Brain struct {
	sessionID string
	sessions  *session.Manager
	metrics   MetricsRecorder

	state       State
	plan        *plan.MediaPlan
	openWindows []plan.WindowType

	undoStack []*plan.MediaPlan
	redoStack []*plan.MediaPlan

	// rng feeds the placement-generation jitter. Tests may swap it for a
	// seeded source; output assertions should target bounds, not literals.
	rng *rand.Rand
}

// New creates a brain for one session.
func New(sessionID string, sessions *session.Manager) *Brain {
	return &Brain{
		sessionID: sessionID,
		sessions:  sessions,
		state:     StateInit,
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}
}

// SetMetrics attaches a dispatch-event recorder.
func (b *Brain) SetMetrics(m MetricsRecorder) { b.metrics = m }

// State returns the current conversation phase.
func (b *Brain) State() State { return b.state }

// Plan returns the active media plan, or nil.
func (b *Brain) Plan() *plan.MediaPlan { return b.plan }

// windowContext assembles the read-only eligibility view for this turn.
func (b *Brain) windowContext() plan.WindowContext {
	ctx := plan.WindowContext{OpenWindows: b.openWindows}
	if b.plan != nil {
		ctx.HasMediaPlan = true
		ctx.HasCampaign = b.plan.FirstCampaign() != nil
		ctx.HasFlight = b.plan.FirstFlight() != nil
	}
	return ctx
}

var (
	yesRegex   = regexp.MustCompile(`(?i)^(yes|yeah|yep|yup|sure|ok|okay|confirm|do it|go ahead|sounds good)[.!]?$`)
	noRegex    = regexp.MustCompile(`(?i)^(no|nope|nah|cancel|never ?mind|don't)[.!]?$`)
	resetRegex = regexp.MustCompile(`(?i)\b(new plan|create .*plan|start over|reset|from scratch)\b`)
	keepRegex  = regexp.MustCompile(`(?i)\bkeep\b.*\bplan\b`)
)

// ProcessInput runs one full turn and always returns exactly one message.
// No error and no panic crosses this boundary.
func (b *Brain) ProcessInput(text string) (msg *AgentMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("turn handler panicked", "session", b.sessionID, "panic", r)
			msg = reply(fmt.Sprintf("Sorry, something went wrong handling that (%v). Nothing was changed; try rephrasing.", r),
				"Show my plan", "Help")
		}
	}()

	trimmed := strings.TrimSpace(text)
	detected := intent.Classify(trimmed)
	entities := detected.Entities
	if b.metrics != nil {
		b.metrics.RecordIntent(string(detected.Category))
	}

	b.sessions.AddMessage(b.sessionID, session.RoleUser, trimmed, &detected, &entities)
	b.sessions.TrackFrustration(b.sessionID, trimmed)

	msg = b.dispatch(trimmed, detected)

	if b.sessions.ShouldOfferHumanEscalation(b.sessionID) {
		msg.Content += "\n\nIt looks like I keep getting this wrong. Would you like me to connect you with a human planner?"
		msg.SuggestedActions = append(msg.SuggestedActions, "Talk to a human")
		if b.metrics != nil {
			b.metrics.RecordEscalation()
		}
	}

	b.sessions.AddMessage(b.sessionID, session.RoleAssistant, msg.Content, nil, nil)
	return msg
}

// dispatch is the single dispatch path: follow-up and pending-action
// confirmation first, then the declarative command registry, then the
// state-specific fallthrough.
func (b *Brain) dispatch(text string, detected intent.DetectedIntent) *AgentMessage {
	isYes := yesRegex.MatchString(text)
	isNo := noRegex.MatchString(text)

	// A bare yes/no resolves the stored follow-up without re-deriving
	// intent — but only while the slot is alive.
	if isYes || isNo {
		if fu := b.sessions.GetFollowUp(b.sessionID); fu != nil {
			b.sessions.ClearFollowUp(b.sessionID)
			if isYes {
				return b.runFollowUpAction(fu.YesAction)
			}
			if fu.NoAction != "" {
				return b.runFollowUpAction(fu.NoAction)
			}
			return reply("Okay, leaving things as they are. What next?",
				"Analyze my plan", "Show inventory")
		}
		if action, ok := b.sessions.PopPendingAction(b.sessionID); ok {
			if isYes {
				return b.applyPendingAction(action)
			}
			return reply(fmt.Sprintf("Cancelled: %s.", action.Description), "Show my plan")
		}
	}

	// Declarative command table: first eligible match in priority order.
	if m, verdict, found := command.FindEligible(text, b.windowContext()); found {
		if verdict.Eligible {
			return b.safeExecute(m)
		}
		// Without a plan the state machine may still make sense of the
		// input (INIT owns plan creation), so only surface the gate's
		// refusal when a plan exists.
		if b.plan != nil {
			slog.Debug("command gated off",
				"session", b.sessionID, "command", m.Command.ID, "reason", verdict.Reason)
			b.recordCommand(m.Command.ID, "ineligible")
			return reply(verdict.Reason, b.defaultSuggestions()...)
		}
	}

	return b.handleState(text, detected)
}

// safeExecute runs a command handler, converting any failure into an
// apologetic message that includes the underlying error text.
func (b *Brain) safeExecute(m command.Match) (msg *AgentMessage) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("command handler failed", "command", m.Command.ID, "panic", r)
			b.recordCommand(m.Command.ID, "panic")
			msg = reply(fmt.Sprintf("Sorry, I couldn't complete %q: %v.", m.Command.Name, r),
				"Show my plan", "Help")
		}
	}()

	handler, ok := handlers[m.Command.ID]
	if !ok {
		slog.Warn("no handler registered for command", "command", m.Command.ID)
		return reply("That command isn't wired up yet.", "Help")
	}
	msg, err := handler(b, m)
	if err != nil {
		slog.Warn("command handler returned error", "command", m.Command.ID, "error", err)
		b.recordCommand(m.Command.ID, "error")
		return reply(fmt.Sprintf("Sorry, I couldn't complete %q: %s.", m.Command.Name, err.Error()),
			"Show my plan", "Help")
	}
	b.recordCommand(m.Command.ID, "ok")
	return msg
}

func (b *Brain) recordCommand(id, status string) {
	if b.metrics != nil {
		b.metrics.RecordCommand(id, status)
	}
}

// enterRefinement moves the conversation into the placement-editing phase
// after a plan mutation. The pre-generation phases (BUDGETING,
// CHANNEL_SELECTION) are preserved: an edit never skips the strategy choice
// that builds the placements, so REFINEMENT is only ever entered through
// generateAndEnterRefinement.
func (b *Brain) enterRefinement() {
	if b.state == StateBudgeting || b.state == StateChannelSelection {
		return
	}
	b.state = StateRefinement
}

// snapshot pushes the current plan onto the undo stack before a mutation.
func (b *Brain) snapshot() {
	if b.plan == nil {
		return
	}
	b.undoStack = append(b.undoStack, b.plan.Clone())
	b.redoStack = nil
}

func (b *Brain) defaultSuggestions() []string {
	if b.plan == nil {
		return []string{"Create a plan", "Show inventory", "Help"}
	}
	return []string{"Analyze my plan", "Optimize my plan", "Forecast the campaign"}
}

// accumulated returns the session's running entity merge.
func (b *Brain) accumulated() extract.Entities {
	return b.sessions.GetContext(b.sessionID).AccumulatedEntities
}
