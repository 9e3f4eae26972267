// Package inventory holds the static inventory and DMA reference tables.
// Tables are constructed once at load time and exposed through read-only
// accessor functions; nothing here mutates at runtime.
package inventory

import "strings"

// Item is one sellable inventory unit.
type Item struct {
	Publisher string
	Channel   string
	Format    string
	CPM       float64
	MinSpend  float64
}

var items = []Item{
	{Publisher: "Google Search", Channel: "Search", Format: "Text Ad", CPM: 0, MinSpend: 500},
	{Publisher: "Bing Search", Channel: "Search", Format: "Text Ad", CPM: 0, MinSpend: 250},
	{Publisher: "Meta", Channel: "Social", Format: "Feed Video", CPM: 9.50, MinSpend: 1000},
	{Publisher: "TikTok", Channel: "Social", Format: "In-Feed", CPM: 7.20, MinSpend: 500},
	{Publisher: "LinkedIn", Channel: "Social", Format: "Sponsored Content", CPM: 28.00, MinSpend: 2500},
	{Publisher: "Google Display Network", Channel: "Display", Format: "Banner", CPM: 3.80, MinSpend: 500},
	{Publisher: "The Trade Desk", Channel: "Display", Format: "Programmatic Banner", CPM: 5.10, MinSpend: 5000},
	{Publisher: "Hulu", Channel: "Connected TV", Format: ":30 Video", CPM: 38.00, MinSpend: 10000},
	{Publisher: "Roku", Channel: "Connected TV", Format: ":15 Video", CPM: 32.00, MinSpend: 5000},
	{Publisher: "YouTube", Channel: "Online Video", Format: "Skippable Pre-Roll", CPM: 11.00, MinSpend: 1000},
	{Publisher: "Spotify", Channel: "Audio", Format: ":30 Audio", CPM: 16.00, MinSpend: 2500},
	{Publisher: "iHeart", Channel: "Radio", Format: ":30 Spot", CPM: 12.50, MinSpend: 5000},
	{Publisher: "NBC", Channel: "TV", Format: ":30 Spot", CPM: 24.00, MinSpend: 50000},
	{Publisher: "Clear Channel", Channel: "OOH", Format: "Digital Billboard", CPM: 6.50, MinSpend: 10000},
	{Publisher: "NYT", Channel: "Print", Format: "Full Page", CPM: 19.00, MinSpend: 25000},
}

// ByChannel returns the inventory items for a canonical channel name.
func ByChannel(channel string) []Item {
	var out []Item
	for _, it := range items {
		if strings.EqualFold(it.Channel, channel) {
			out = append(out, it)
		}
	}
	return out
}

// All returns a copy of the full inventory table.
func All() []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}

// Channels returns the distinct channels present in the table, in table order.
func Channels() []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if !seen[it.Channel] {
			seen[it.Channel] = true
			out = append(out, it.Channel)
		}
	}
	return out
}
