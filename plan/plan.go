package plan

import (
	"time"

	"github.com/lithammer/shortuuid/v4"
)

// FirstCampaign returns the plan's first campaign, or nil.
func (p *MediaPlan) FirstCampaign() *Campaign {
	if p == nil || len(p.Campaigns) == 0 {
		return nil
	}
	return p.Campaigns[0]
}

// FirstFlight returns the first flight of the first campaign, or nil.
// New plans always have one; it is the default placement target.
func (p *MediaPlan) FirstFlight() *Flight {
	c := p.FirstCampaign()
	if c == nil || len(c.Flights) == 0 {
		return nil
	}
	return c.Flights[0]
}

// FindFlight looks a flight up by id across all campaigns.
func (p *MediaPlan) FindFlight(id string) *Flight {
	if p == nil {
		return nil
	}
	for _, c := range p.Campaigns {
		for _, f := range c.Flights {
			if f.ID == id {
				return f
			}
		}
	}
	return nil
}

// AllPlacements flattens every placement across the plan, in flight order.
func (p *MediaPlan) AllPlacements() []*Placement {
	if p == nil {
		return nil
	}
	var out []*Placement
	for _, c := range p.Campaigns {
		for _, f := range c.Flights {
			out = append(out, f.Placements...)
		}
	}
	return out
}

// TotalSpend sums the cost of all non-paused placements.
func (p *MediaPlan) TotalSpend() float64 {
	var total float64
	for _, pl := range p.AllPlacements() {
		if pl.Status != PlacementPaused {
			total += pl.Cost
		}
	}
	return total
}

// Spend sums every placement cost in the flight regardless of status.
func (f *Flight) Spend() float64 {
	var total float64
	for _, pl := range f.Placements {
		total += pl.Cost
	}
	return total
}

// AddPlacement prices and appends a placement for the given channel and
// dollar allocation, returning the new placement.
func (f *Flight) AddPlacement(name, channel string, alloc float64) *Placement {
	r := RateFor(channel)
	qty, cost := PriceAllocation(channel, alloc)
	pl := &Placement{
		ID:        shortuuid.New(),
		Name:      name,
		Channel:   channel,
		Pricing:   r.Pricing,
		Rate:      r.Rate,
		Quantity:  qty,
		Cost:      cost,
		Status:    PlacementActive,
		StartDate: f.StartDate,
		EndDate:   f.EndDate,
	}
	f.Placements = append(f.Placements, pl)
	return pl
}

// RemovePlacement deletes a placement by id. Returns false if not found.
func (f *Flight) RemovePlacement(id string) bool {
	for i, pl := range f.Placements {
		if pl.ID == id {
			f.Placements = append(f.Placements[:i], f.Placements[i+1:]...)
			return true
		}
	}
	return false
}

// Clone deep-copies the plan. Snapshots back the undo/redo stacks, so the
// copy must share no pointers with the original.
func (p *MediaPlan) Clone() *MediaPlan {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Campaigns = make([]*Campaign, len(p.Campaigns))
	for i, c := range p.Campaigns {
		cc := *c
		cc.Flights = make([]*Flight, len(c.Flights))
		for j, f := range c.Flights {
			cf := *f
			cf.Placements = make([]*Placement, len(f.Placements))
			for k, pl := range f.Placements {
				cpl := *pl
				cf.Placements[k] = &cpl
			}
			cc.Flights[j] = &cf
		}
		cp.Campaigns[i] = &cc
	}
	return &cp
}

// SetFlightDates moves a flight window, clamping end after start.
func (f *Flight) SetFlightDates(start, end time.Time) {
	if end.Before(start) {
		end = start.AddDate(0, 1, 0)
	}
	f.StartDate = start
	f.EndDate = end
}
