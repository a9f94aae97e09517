package domain

import (
	"fmt"
	"math"
)

const DynamicRegionIdentifier = "ME"

type Region struct {
	Identifier    string  `json:"identifier"`
	Lat           float64 `json:"latitude"`
	Lon           float64 `json:"longitude"`
	Radius        float64 `json:"radius"`
	NotifyOnEnter bool    `json:"notify_on_enter"`
	NotifyOnExit  bool    `json:"notify_on_exit"`
	Dynamic       bool    `json:"dynamic"`
}

// RegionConfig is one statically configured region. Nil notify flags
// default to true.
type RegionConfig struct {
	Identifier    string  `json:"identifier"`
	Lat           float64 `json:"latitude"`
	Lon           float64 `json:"longitude"`
	Radius        float64 `json:"radius"`
	NotifyOnEnter *bool   `json:"notify_on_enter,omitempty"`
	NotifyOnExit  *bool   `json:"notify_on_exit,omitempty"`
}

func (r Region) Validate() error {
	if r.Identifier == "" {
		return fmt.Errorf("%w: identifier required", ErrInvalidRegion)
	}
	if !finite(r.Lat) || !finite(r.Lon) || !finite(r.Radius) {
		return fmt.Errorf("%w: %s: coordinates and radius must be finite", ErrInvalidRegion, r.Identifier)
	}
	if r.Radius <= 0 {
		return fmt.Errorf("%w: %s: radius must be positive", ErrInvalidRegion, r.Identifier)
	}
	if r.Lat < -90 || r.Lat > 90 {
		return fmt.Errorf("%w: %s: latitude must be between -90 and 90", ErrInvalidRegion, r.Identifier)
	}
	if r.Lon < -180 || r.Lon > 180 {
		return fmt.Errorf("%w: %s: longitude must be between -180 and 180", ErrInvalidRegion, r.Identifier)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ValidateRegions checks every region and that identifiers are unique.
func ValidateRegions(regions []Region) error {
	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return err
		}
		if _, ok := seen[r.Identifier]; ok {
			return fmt.Errorf("%w: duplicate identifier %s", ErrInvalidRegion, r.Identifier)
		}
		seen[r.Identifier] = struct{}{}
	}
	return nil
}
