package service

import "github.com/nandanugg/regionwatch/module/core/domain"

const DefaultDynamicRadius = 500

// BuildRegionSet centers the dynamic "ME" region on pos and appends the
// static regions in configuration order.
func BuildRegionSet(pos domain.Position, static []domain.RegionConfig, dynamicRadius float64) []domain.Region {
	if dynamicRadius <= 0 {
		dynamicRadius = DefaultDynamicRadius
	}

	regions := make([]domain.Region, 0, len(static)+1)
	regions = append(regions, domain.Region{
		Identifier:    domain.DynamicRegionIdentifier,
		Lat:           pos.Lat,
		Lon:           pos.Lon,
		Radius:        dynamicRadius,
		NotifyOnEnter: true,
		NotifyOnExit:  true,
		Dynamic:       true,
	})

	for _, rc := range static {
		regions = append(regions, domain.Region{
			Identifier:    rc.Identifier,
			Lat:           rc.Lat,
			Lon:           rc.Lon,
			Radius:        rc.Radius,
			NotifyOnEnter: flagOrTrue(rc.NotifyOnEnter),
			NotifyOnExit:  flagOrTrue(rc.NotifyOnExit),
		})
	}
	return regions
}

func flagOrTrue(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
