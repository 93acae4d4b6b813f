package main

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// ZoneKind tells the grid builder how a zone affects the cells under it
type ZoneKind string

const (
	ZoneBlocked ZoneKind = "blocked" // Cells inside are not walkable
	ZonePenalty ZoneKind = "penalty" // Cells inside cost extra to enter
)

// Zone is a polygonal region of the world
type Zone struct {
	Name    string
	Kind    ZoneKind
	Penalty int
	Polygon orb.Polygon
}

// zoneEntry wraps a zone for R-tree storage
type zoneEntry struct {
	zone Zone
	bbox rtreego.Rect
}

// Bounds implements rtreego.Spatial interface
func (e *zoneEntry) Bounds() rtreego.Rect {
	return e.bbox
}

// ZoneIndex answers "which zones cover this point" queries
type ZoneIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewZoneIndex creates a new spatial index; degenerate polygons are skipped
func NewZoneIndex(zones []Zone) *ZoneIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node
	count := 0

	for _, zone := range zones {
		bbox, err := boundToRect(zone.Polygon.Bound())
		if err != nil {
			continue
		}
		tree.Insert(&zoneEntry{zone: zone, bbox: bbox})
		count++
	}

	return &ZoneIndex{tree: tree, count: count}
}

// Len returns the number of indexed zones
func (zi *ZoneIndex) Len() int {
	if zi == nil {
		return 0
	}
	return zi.count
}

// ZonesAt returns every zone whose polygon contains p
func (zi *ZoneIndex) ZonesAt(p Point) []Zone {
	if zi == nil || zi.count == 0 {
		return nil
	}

	const tol = 1e-9
	query, err := rtreego.NewRect(rtreego.Point{p.X - tol, p.Y - tol}, []float64{2 * tol, 2 * tol})
	if err != nil {
		return nil
	}

	var zones []Zone
	for _, item := range zi.tree.SearchIntersect(query) {
		entry := item.(*zoneEntry)
		if planar.PolygonContains(entry.zone.Polygon, p.Orb()) {
			zones = append(zones, entry.zone)
		}
	}
	return zones
}

// QueryRegion returns zones whose bounding boxes intersect the given box
func (zi *ZoneIndex) QueryRegion(bound orb.Bound) []Zone {
	if zi == nil || zi.count == 0 {
		return nil
	}
	query, err := boundToRect(bound)
	if err != nil {
		return nil
	}

	results := zi.tree.SearchIntersect(query)
	zones := make([]Zone, 0, len(results))
	for _, item := range results {
		zones = append(zones, item.(*zoneEntry).zone)
	}
	return zones
}

// boundToRect converts an orb bound to an R-tree rectangle
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	return rtreego.NewRect(
		rtreego.Point{b.Min.X(), b.Min.Y()},
		[]float64{b.Max.X() - b.Min.X(), b.Max.Y() - b.Min.Y()},
	)
}
