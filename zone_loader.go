package main

import (
	"fmt"
	"errors"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrInvalidZone is wrapped when a feature cannot become a zone
var ErrInvalidZone = errors.New("invalid zone")

// LoadZonesFromDir loads all GeoJSON files in dir. Unreadable or malformed
// files are logged and skipped.
func LoadZonesFromDir(dir string) ([]Zone, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.geojson"))
	if err != nil {
		return nil, err
	}

	log.Printf("Loading zones from %d GeoJSON files...\n", len(files))

	var allZones []Zone
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("⚠️  Failed to read %s: %v\n", file, err)
			continue
		}

		zones, err := ParseZones(data)
		if err != nil {
			log.Printf("⚠️  Failed to parse %s: %v\n", file, err)
			continue
		}
		allZones = append(allZones, zones...)

		log.Printf("   ✅ Loaded %d zones from %s\n", len(zones), filepath.Base(file))
	}

	log.Printf("Total zones loaded: %d\n", len(allZones))
	return allZones, nil
}

// ParseZones converts a GeoJSON feature collection into zones.
//
// Features with a positive numeric "penalty" property become penalty zones,
// everything else blocks movement. A penalty above MaxPenalty fails the whole
// collection. Geometries other than Polygon and MultiPolygon are
// ignored.
func ParseZones(data []byte) ([]Zone, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("geojson.UnmarshalFeatureCollection: %w", err)
	}

	var zones []Zone
	for i, feature := range fc.Features {
		name, _ := feature.Properties["name"].(string)
		if name == "" {
			name = fmt.Sprintf("feature-%d", i)
		}
		penalty := 0
		if v, ok := feature.Properties["penalty"].(float64); ok {
			if math.IsNaN(v) || math.IsInf(v, 0) || v > MaxPenalty {
				return nil, fmt.Errorf("%w: feature %s penalty %v exceeds %d", ErrInvalidZone, name, v, MaxPenalty)
			}
			if v > 0 {
				penalty = int(v)
			}
		}

		kind := ZoneBlocked
		if penalty > 0 {
			kind = ZonePenalty
		} else {
			penalty = 0
		}

		for _, polygon := range featurePolygons(feature.Geometry) {
			zones = append(zones, Zone{
				Name:    name,
				Kind:    kind,
				Penalty: penalty,
				Polygon: polygon,
			})
		}
	}
	return zones, nil
}

// featurePolygons flattens a geometry into polygons
func featurePolygons(geometry orb.Geometry) []orb.Polygon {
	switch g := geometry.(type) {
	case orb.Polygon:
		if len(g) > 0 {
			return []orb.Polygon{g}
		}
	case orb.MultiPolygon:
		polygons := make([]orb.Polygon, 0, len(g))
		for _, polygon := range g {
			if len(polygon) > 0 {
				polygons = append(polygons, polygon)
			}
		}
		return polygons
	}
	return nil
}

// PrepareZones runs the load-time clean-up: simplification then containment merging
func PrepareZones(zones []Zone, epsilon float64) []Zone {
	return MergeBlockedZones(SimplifyZones(zones, epsilon))
}
