// Package session owns per-session conversation state: bounded history,
// accumulated entities, pending actions, the single-slot follow-up, and
// frustration tracking. ConversationContext is exclusively owned here;
// callers go through Manager and never mutate internals directly.
package session

import (
	"time"

	"github.com/planwise/planwise/agent/extract"
	"github.com/planwise/planwise/agent/intent"
)

// Role is the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one immutable turn record.
type Message struct {
	Role      Role                   `json:"role"`
	Content   string                 `json:"content"`
	Timestamp time.Time              `json:"timestamp"`
	Intent    *intent.DetectedIntent `json:"intent,omitempty"`
	Entities  *extract.Entities      `json:"entities,omitempty"`
}

// ExpertiseLevel is the inferred sophistication of the user.
type ExpertiseLevel string

const (
	ExpertiseBeginner     ExpertiseLevel = "beginner"
	ExpertiseIntermediate ExpertiseLevel = "intermediate"
	ExpertiseExpert       ExpertiseLevel = "expert"
)

// UserProfile accumulates per-session signals about the user.
type UserProfile struct {
	ExpertiseLevel   ExpertiseLevel `json:"expertiseLevel"`
	InteractionCount int            `json:"interactionCount"`
	jargonHits       int
	beginnerHits     int
}

// Focus points at the objects the conversation is currently about.
type Focus struct {
	BrandID     string `json:"brandId,omitempty"`
	CampaignID  string `json:"campaignId,omitempty"`
	FlightID    string `json:"flightId,omitempty"`
	PlacementID string `json:"placementId,omitempty"`
}

// PendingAction is a reversible mutation awaiting an explicit yes/no.
type PendingAction struct {
	Type            string   `json:"type"`
	Description     string   `json:"description"`
	Details         []string `json:"details,omitempty"`
	EstimatedImpact string   `json:"estimatedImpact,omitempty"`
	Data            any      `json:"data,omitempty"`
}

// FollowUp is the single pending yes/no question the very next turn is
// expected to resolve. At most one lives per session; the next one
// overwrites it, and it expires two minutes after creation.
type FollowUp struct {
	Question  string    `json:"question"`
	YesAction string    `json:"yesAction"`
	NoAction  string    `json:"noAction,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Frustration tracks consecutive correction-style messages.
type Frustration struct {
	ConsecutiveCorrections int       `json:"consecutiveCorrections"`
	LastCorrectionTime     time.Time `json:"lastCorrectionTime"`
	EscalatedToHuman       bool      `json:"escalatedToHuman"`
}

// ConversationContext is the whole per-session state. One instance per
// session, created lazily, alive for the process lifetime.
type ConversationContext struct {
	SessionID           string           `json:"sessionId"`
	History             []Message        `json:"history"`
	CurrentFocus        Focus            `json:"currentFocus"`
	UserProfile         UserProfile      `json:"userProfile"`
	PendingActions      []PendingAction  `json:"pendingActions,omitempty"`
	AccumulatedEntities extract.Entities `json:"accumulatedEntities"`
	Frustration         Frustration      `json:"frustration"`
	LastFollowUp        *FollowUp        `json:"lastFollowUp,omitempty"`
}

func newContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID: sessionID,
		UserProfile: UserProfile{
			ExpertiseLevel: ExpertiseBeginner,
		},
	}
}
