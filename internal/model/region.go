package model

import "strings"

// Region enumerates the geographic areas a restaurant can be registered in.
// Restaurants are indexed by (visibility, region) so customers can browse
// public restaurants per area.
type Region string

const (
	RegionManhattan Region = "MANHATTAN"
	RegionBronx     Region = "BRONX"
	RegionFoo       Region = "FOO"
	RegionBar       Region = "BAR"
)

// ParseRegion matches a region token case-insensitively against the known
// enum values, so "Bronx" and "bronx" resolve to the same region. The second
// return value reports whether the token was recognised.
func ParseRegion(raw string) (Region, bool) {
	switch Region(strings.ToUpper(strings.TrimSpace(raw))) {
	case RegionManhattan:
		return RegionManhattan, true
	case RegionBronx:
		return RegionBronx, true
	case RegionFoo:
		return RegionFoo, true
	case RegionBar:
		return RegionBar, true
	}
	return "", false
}
