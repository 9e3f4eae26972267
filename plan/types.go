// Package plan defines the media-plan domain objects the conversational core
// creates and mutates: plans, campaigns, flights and placements.
package plan

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// Strategy selects the allocation shape used when placements are generated.
type Strategy string

const (
	StrategyBalanced  Strategy = "BALANCED"  // 70/20/10 style spread
	StrategyDigital   Strategy = "DIGITAL"   // digital-only, heavier Search/Social/Display
	StrategyAwareness Strategy = "AWARENESS" // brand awareness, TV/OOH heavy
)

// PricingMethod describes how a placement's cost is computed from its rate.
type PricingMethod string

const (
	PricingCPM  PricingMethod = "CPM" // cost per mille: qty = alloc*1000/rate
	PricingCPC  PricingMethod = "CPC" // cost per click: qty = alloc/rate
	PricingCPV  PricingMethod = "CPV" // cost per view
	PricingFlat PricingMethod = "FLAT"
)

// PlacementStatus is the lifecycle state of a placement.
type PlacementStatus string

const (
	PlacementActive PlacementStatus = "ACTIVE"
	PlacementPaused PlacementStatus = "PAUSED"
)

// Placement is a single buy within a flight.
type Placement struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Channel   string          `json:"channel"`
	Pricing   PricingMethod   `json:"pricing"`
	Rate      float64         `json:"rate"`
	Quantity  float64         `json:"quantity"`
	Cost      float64         `json:"cost"`
	Status    PlacementStatus `json:"status"`
	Audience  string          `json:"audience,omitempty"`
	StartDate time.Time       `json:"startDate,omitempty"`
	EndDate   time.Time       `json:"endDate,omitempty"`
}

// Flight is a dated budget container for placements.
type Flight struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Budget     float64      `json:"budget"`
	StartDate  time.Time    `json:"startDate"`
	EndDate    time.Time    `json:"endDate"`
	Placements []*Placement `json:"placements"`
}

// Campaign groups flights under a shared objective.
type Campaign struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Objective string    `json:"objective,omitempty"`
	Flights   []*Flight `json:"flights"`
}

// MediaPlan is the root planning object for one advertiser engagement.
type MediaPlan struct {
	ID           string      `json:"id"`
	Advertiser   string      `json:"advertiser"`
	Budget       float64     `json:"budget"`
	Goal         string      `json:"goal,omitempty"`
	Strategy     Strategy    `json:"strategy,omitempty"`
	ViewGrouping string      `json:"viewGrouping,omitempty"` // "channel" or "flight"
	Campaigns    []*Campaign `json:"campaigns"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// WindowType identifies a UI window the assistant can open.
type WindowType string

const (
	WindowPlan      WindowType = "plan"
	WindowPlacement WindowType = "placement"
	WindowForecast  WindowType = "forecast"
	WindowInventory WindowType = "inventory"
)

// WindowContext is the ambient UI/plan state a command's eligibility is
// checked against. It is a read-only view assembled per turn.
type WindowContext struct {
	HasMediaPlan bool
	HasCampaign  bool
	HasFlight    bool
	OpenWindows  []WindowType
}

// HasWindow reports whether a window of the given type is open.
func (w WindowContext) HasWindow(t WindowType) bool {
	for _, open := range w.OpenWindows {
		if open == t {
			return true
		}
	}
	return false
}

// NewMediaPlan creates a plan with one default campaign and one open-ended
// flight carrying the full budget, which is how every plan starts life.
func NewMediaPlan(advertiser string, budget float64) *MediaPlan {
	now := time.Now()
	flight := &Flight{
		ID:        shortuuid.New(),
		Name:      "Flight 1",
		Budget:    budget,
		StartDate: now,
		EndDate:   now.AddDate(0, 3, 0),
	}
	campaign := &Campaign{
		ID:      shortuuid.New(),
		Name:    advertiser + " Campaign",
		Flights: []*Flight{flight},
	}
	return &MediaPlan{
		ID:         shortuuid.New(),
		Advertiser: advertiser,
		Budget:     budget,
		Campaigns:  []*Campaign{campaign},
		CreatedAt:  now,
	}
}
