package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nandanugg/regionwatch/module/core/domain"
)

// DefaultRegions is the static set watched when no regions file is given.
var DefaultRegions = []domain.RegionConfig{
	{Identifier: "SMN", Lat: 43.766667, Lon: 11.25, Radius: 300},
	{Identifier: "AUD-B", Lat: 43.8002572, Lon: 11.2453947, Radius: 50},
	{Identifier: "NIC", Lat: 43.770828, Lon: 11.25032, Radius: 100},
	{Identifier: "LEOPOLDO", Lat: 43.78376, Lon: 11.27857, Radius: 100},
}

// LoadRegions reads a JSON array of regions from path. An empty path returns
// a copy of DefaultRegions.
func LoadRegions(path string) ([]domain.RegionConfig, error) {
	if path == "" {
		out := make([]domain.RegionConfig, len(DefaultRegions))
		copy(out, DefaultRegions)
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions file: %w", err)
	}

	var regions []domain.RegionConfig
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("parse regions file %s: %w", path, err)
	}

	seen := make(map[string]struct{}, len(regions))
	for _, r := range regions {
		if r.Identifier == domain.DynamicRegionIdentifier {
			return nil, fmt.Errorf("%w: %s is reserved for the dynamic region", domain.ErrInvalidRegion, r.Identifier)
		}
		check := domain.Region{Identifier: r.Identifier, Lat: r.Lat, Lon: r.Lon, Radius: r.Radius}
		if err := check.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[r.Identifier]; ok {
			return nil, fmt.Errorf("%w: duplicate identifier %s", domain.ErrInvalidRegion, r.Identifier)
		}
		seen[r.Identifier] = struct{}{}
	}
	return regions, nil
}
