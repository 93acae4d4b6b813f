package main

import (
	"log"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// MergeBlockedZones removes blocking zones that are fully contained within
// another blocking zone. Penalty zones are kept as-is since overlapping
// penalties still matter.
func MergeBlockedZones(zones []Zone) []Zone {
	if len(zones) <= 1 {
		return zones
	}

	blocked := make([]Zone, 0, len(zones))
	result := make([]Zone, 0, len(zones))
	for _, zone := range zones {
		if zone.Kind == ZoneBlocked {
			blocked = append(blocked, zone)
		} else {
			result = append(result, zone)
		}
	}

	filtered := removeContainedZones(blocked)
	if removed := len(blocked) - len(filtered); removed > 0 {
		log.Printf("   Blocked zones after removing contained: %d (removed %d)\n", len(filtered), removed)
	}

	return append(filtered, result...)
}

// removeContainedZones drops zones contained in another zone of the slice
func removeContainedZones(zones []Zone) []Zone {
	if len(zones) <= 1 {
		return zones
	}

	index := NewZoneIndex(zones)
	owner := make(map[*orb.Point]int, len(zones))
	for i := range zones {
		if key := outerRingKey(zones[i]); key != nil {
			owner[key] = i
		}
	}

	contained := make([]bool, len(zones))
	for i := range zones {
		for _, candidate := range index.QueryRegion(zones[i].Polygon.Bound()) {
			j, ok := owner[outerRingKey(candidate)]
			if !ok || j == i || contained[j] {
				continue
			}
			if isPolygonContainedIn(zones[i].Polygon, candidate.Polygon) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]Zone, 0, len(zones))
	for i, zone := range zones {
		if !contained[i] {
			result = append(result, zone)
		}
	}
	return result
}

// isPolygonContainedIn checks if polygon a is fully contained within polygon b
func isPolygonContainedIn(a, b orb.Polygon) bool {
	if len(a) == 0 || len(b) == 0 || len(a[0]) == 0 {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Bound(), b.Bound()
	if !bb.Contains(ab.Min) || !bb.Contains(ab.Max) {
		return false
	}

	for _, vertex := range a[0] {
		if !planar.PolygonContains(b, vertex) {
			return false
		}
	}
	return true
}

// outerRingKey identifies a zone by the storage of its outer ring, which
// survives the copy into and out of the R-tree
func outerRingKey(z Zone) *orb.Point {
	if len(z.Polygon) == 0 || len(z.Polygon[0]) == 0 {
		return nil
	}
	return &z.Polygon[0][0]
}
