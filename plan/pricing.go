package plan

// ChannelRate is one row of the static rate card.
type ChannelRate struct {
	Channel string
	Pricing PricingMethod
	Rate    float64
	Unit    string
}

// rateCard is the static channel pricing table. Built once, read-only.
var rateCard = map[string]ChannelRate{
	"Search":       {Channel: "Search", Pricing: PricingCPC, Rate: 2.50, Unit: "click"},
	"Social":       {Channel: "Social", Pricing: PricingCPM, Rate: 8.00, Unit: "impression"},
	"Display":      {Channel: "Display", Pricing: PricingCPM, Rate: 4.50, Unit: "impression"},
	"Connected TV": {Channel: "Connected TV", Pricing: PricingCPM, Rate: 35.00, Unit: "impression"},
	"Online Video": {Channel: "Online Video", Pricing: PricingCPV, Rate: 0.12, Unit: "view"},
	"Audio":        {Channel: "Audio", Pricing: PricingCPM, Rate: 15.00, Unit: "impression"},
	"TV":           {Channel: "TV", Pricing: PricingCPM, Rate: 22.00, Unit: "impression"},
	"Radio":        {Channel: "Radio", Pricing: PricingCPM, Rate: 12.00, Unit: "impression"},
	"OOH":          {Channel: "OOH", Pricing: PricingCPM, Rate: 6.00, Unit: "impression"},
	"Print":        {Channel: "Print", Pricing: PricingCPM, Rate: 18.00, Unit: "impression"},
}

// RateFor returns the rate-card row for a canonical channel name.
// Unknown channels fall back to Display economics.
func RateFor(channel string) ChannelRate {
	if r, ok := rateCard[channel]; ok {
		return r
	}
	return rateCard["Display"]
}

// PriceAllocation converts a dollar allocation into quantity and cost for a
// channel. CPM quantity is in impressions; cost is recomputed from the
// rounded quantity so it can drift slightly below the allocation.
func PriceAllocation(channel string, alloc float64) (quantity, cost float64) {
	r := RateFor(channel)
	switch r.Pricing {
	case PricingCPM:
		quantity = alloc * 1000 / r.Rate
		cost = quantity * r.Rate / 1000
	default:
		quantity = alloc / r.Rate
		cost = quantity * r.Rate
	}
	return quantity, cost
}
