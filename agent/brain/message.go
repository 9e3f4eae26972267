package brain

import (
	"time"

	"github.com/google/uuid"

	"github.com/planwise/planwise/agent/session"
	"github.com/planwise/planwise/plan"
)

// NavigationAction is the closed set of UI-navigation tags a message can
// carry. The UI switch-statements over this type; free-form strings are not
// allowed through this boundary.
type NavigationAction string

const (
	ActionNone          NavigationAction = ""
	ActionOpenPlan      NavigationAction = "OPEN_PLAN"
	ActionOpenForecast  NavigationAction = "OPEN_FORECAST"
	ActionOpenInventory NavigationAction = "OPEN_INVENTORY"
	ActionArrangeLayout NavigationAction = "ARRANGE_LAYOUT"
	ActionExport        NavigationAction = "EXPORT"
	ActionResetView     NavigationAction = "RESET_VIEW"
)

// AgentMessage is the sole boundary artifact the UI layer consumes. Content
// is markdown and may embed a [FORECAST_CARDS]{json}[/FORECAST_CARDS]
// payload for rich rendering.
type AgentMessage struct {
	ID               string                 `json:"id"`
	Role             string                 `json:"role"`
	Content          string                 `json:"content"`
	Timestamp        time.Time              `json:"timestamp"`
	SuggestedActions []string               `json:"suggestedActions,omitempty"`
	Action           NavigationAction       `json:"action,omitempty"`
	AgentsInvoked    []string               `json:"agentsInvoked,omitempty"`
	UpdatedMediaPlan *plan.MediaPlan        `json:"updatedMediaPlan,omitempty"`
	PendingAction    *session.PendingAction `json:"pendingAction,omitempty"`
	FollowUp         *session.FollowUp      `json:"followUp,omitempty"`
}

// reply builds an assistant message with the boilerplate filled in.
func reply(content string, suggestions ...string) *AgentMessage {
	return &AgentMessage{
		ID:               uuid.NewString(),
		Role:             "assistant",
		Content:          content,
		Timestamp:        time.Now(),
		SuggestedActions: suggestions,
	}
}

// withPlan attaches the updated plan snapshot to signal a mutation occurred.
func (m *AgentMessage) withPlan(p *plan.MediaPlan) *AgentMessage {
	m.UpdatedMediaPlan = p
	return m
}

func (m *AgentMessage) withAction(a NavigationAction) *AgentMessage {
	m.Action = a
	return m
}

func (m *AgentMessage) withAgents(names ...string) *AgentMessage {
	m.AgentsInvoked = names
	return m
}
