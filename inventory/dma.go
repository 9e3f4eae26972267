package inventory

import (
	"sort"
	"strconv"
	"strings"
)

// DMA is one Nielsen designated market area row.
type DMA struct {
	Code       int
	Name       string
	Rank       int
	TVHomes    int
	PctUS      float64
}

var dmas = []DMA{
	{Code: 501, Name: "New York", Rank: 1, TVHomes: 7100000, PctUS: 6.1},
	{Code: 803, Name: "Los Angeles", Rank: 2, TVHomes: 5300000, PctUS: 4.6},
	{Code: 602, Name: "Chicago", Rank: 3, TVHomes: 3200000, PctUS: 2.8},
	{Code: 504, Name: "Philadelphia", Rank: 4, TVHomes: 2900000, PctUS: 2.5},
	{Code: 623, Name: "Dallas-Ft. Worth", Rank: 5, TVHomes: 2800000, PctUS: 2.4},
	{Code: 807, Name: "San Francisco-Oakland-San Jose", Rank: 6, TVHomes: 2500000, PctUS: 2.2},
	{Code: 511, Name: "Washington DC", Rank: 7, TVHomes: 2400000, PctUS: 2.1},
	{Code: 618, Name: "Houston", Rank: 8, TVHomes: 2300000, PctUS: 2.0},
	{Code: 524, Name: "Atlanta", Rank: 9, TVHomes: 2200000, PctUS: 1.9},
	{Code: 506, Name: "Boston", Rank: 10, TVHomes: 2100000, PctUS: 1.8},
	{Code: 753, Name: "Phoenix", Rank: 11, TVHomes: 1900000, PctUS: 1.7},
	{Code: 819, Name: "Seattle-Tacoma", Rank: 12, TVHomes: 1800000, PctUS: 1.6},
	{Code: 539, Name: "Tampa-St. Petersburg", Rank: 13, TVHomes: 1700000, PctUS: 1.5},
	{Code: 505, Name: "Detroit", Rank: 14, TVHomes: 1600000, PctUS: 1.4},
	{Code: 751, Name: "Denver", Rank: 15, TVHomes: 1500000, PctUS: 1.3},
}

// LookupDMA resolves a market by code or case-insensitive name fragment.
func LookupDMA(query string) (DMA, bool) {
	query = strings.TrimSpace(query)
	if code, err := strconv.Atoi(query); err == nil {
		for _, d := range dmas {
			if d.Code == code {
				return d, true
			}
		}
		return DMA{}, false
	}
	lower := strings.ToLower(query)
	for _, d := range dmas {
		if strings.Contains(strings.ToLower(d.Name), lower) {
			return d, true
		}
	}
	return DMA{}, false
}

// DMAInText scans free text for any known market name. This is the inverse
// of LookupDMA: the name is the fragment, the text is the haystack.
func DMAInText(text string) (DMA, bool) {
	lower := strings.ToLower(text)
	for _, d := range dmas {
		if strings.Contains(lower, strings.ToLower(d.Name)) {
			return d, true
		}
	}
	return DMA{}, false
}

// TopDMAs returns the n highest-ranked markets.
func TopDMAs(n int) []DMA {
	sorted := make([]DMA, len(dmas))
	copy(sorted, dmas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Rank < sorted[j].Rank })
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
