package insights

import (
	"math"
	"time"

	"github.com/planwise/planwise/plan"
)

// ChannelForecast is the per-channel delivery estimate.
type ChannelForecast struct {
	Channel string  `json:"channel"`
	Spend   float64 `json:"spend"`
	P10     float64 `json:"p10"` // conservative delivery
	P50     float64 `json:"p50"` // expected delivery
	P90     float64 `json:"p90"` // optimistic delivery
}

// CampaignForecast is the output of ForecastCampaign.
type CampaignForecast struct {
	Start            time.Time         `json:"start"`
	End              time.Time         `json:"end"`
	Channels         []ChannelForecast `json:"channels"`
	TotalP50         float64           `json:"totalP50"`
	SeasonalNote     string            `json:"seasonalNote,omitempty"`
	OverlapWarning   string            `json:"overlapWarning,omitempty"`
	DurationDays     int               `json:"durationDays"`
}

// seasonalUplift maps calendar months to a delivery multiplier. Q4 inventory
// is more expensive so effective delivery drops; Q1 is the cheapest.
var seasonalUplift = map[time.Month]float64{
	time.January: 1.12, time.February: 1.08, time.March: 1.02,
	time.April: 1.0, time.May: 1.0, time.June: 0.98,
	time.July: 1.02, time.August: 1.0, time.September: 0.96,
	time.October: 0.92, time.November: 0.85, time.December: 0.82,
}

// ForecastCampaign estimates delivered units per channel between start and
// end, adjusting for seasonality at the midpoint month and flagging
// placements whose own dates fall outside the window.
func ForecastCampaign(placements []*plan.Placement, start, end time.Time) CampaignForecast {
	fc := CampaignForecast{Start: start, End: end}
	if end.Before(start) {
		start, end = end, start
		fc.Start, fc.End = start, end
	}
	fc.DurationDays = int(end.Sub(start).Hours() / 24)

	mid := start.Add(end.Sub(start) / 2)
	uplift := seasonalUplift[mid.Month()]
	if uplift == 0 {
		uplift = 1
	}
	switch {
	case uplift < 0.95:
		fc.SeasonalNote = "Window overlaps peak-season inventory pricing; expect reduced effective delivery."
	case uplift > 1.05:
		fc.SeasonalNote = "Off-peak window; inventory is cheap and delivery runs above baseline."
	}

	byChannel := make(map[string]*ChannelForecast)
	order := []string{}
	overlap := 0
	for _, p := range placements {
		cf, ok := byChannel[p.Channel]
		if !ok {
			cf = &ChannelForecast{Channel: p.Channel}
			byChannel[p.Channel] = cf
			order = append(order, p.Channel)
		}
		cf.Spend += p.Cost
		cf.P50 += p.Quantity * uplift
		if !p.StartDate.IsZero() && (p.EndDate.Before(start) || p.StartDate.After(end)) {
			overlap++
		}
	}
	if overlap > 0 {
		fc.OverlapWarning = "Some placements run entirely outside the forecast window and contribute no delivery."
	}

	for _, ch := range order {
		cf := byChannel[ch]
		cf.P10 = math.Floor(cf.P50 * 0.7)
		cf.P90 = math.Ceil(cf.P50 * 1.25)
		cf.P50 = math.Floor(cf.P50)
		fc.Channels = append(fc.Channels, *cf)
		fc.TotalP50 += cf.P50
	}
	return fc
}
