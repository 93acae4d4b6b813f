package main

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// retracePath walks parent links from target back to start and returns the
// cells in start→target order, start included
func retracePath(start, target *Cell, costs map[*Cell]*nodeCost) []*Cell {
	path := []*Cell{target}
	for current := target; current != start; {
		current = costs[current].parent
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SimplifyPath turns a start→target cell path into waypoints. The start cell
// is never emitted. By default every other cell becomes a waypoint; with
// compress set only cells where the step direction changes are kept, plus the
// target.
func SimplifyPath(path []*Cell, compress bool) []Point {
	waypoints := make([]Point, 0, len(path))
	if len(path) < 2 {
		return waypoints
	}

	if !compress {
		for _, cell := range path[1:] {
			waypoints = append(waypoints, cell.WorldPosition)
		}
		return waypoints
	}

	var directionOld [2]int
	for i := 1; i < len(path); i++ {
		directionNew := [2]int{path[i].GridX - path[i-1].GridX, path[i].GridY - path[i-1].GridY}
		if i > 1 && directionNew != directionOld {
			waypoints = append(waypoints, path[i-1].WorldPosition)
		}
		directionOld = directionNew
	}
	return append(waypoints, path[len(path)-1].WorldPosition)
}

// SimplifyPolygon reduces polygon complexity using Douglas-Peucker.
// Rings that collapse below a triangle keep their original vertices.
func SimplifyPolygon(polygon orb.Polygon, epsilon float64) orb.Polygon {
	if epsilon <= 0 {
		return polygon
	}

	simplifier := simplify.DouglasPeucker(epsilon)
	simplified := make(orb.Polygon, 0, len(polygon))
	for _, ring := range polygon {
		if len(ring) <= 4 {
			simplified = append(simplified, ring)
			continue
		}
		out := simplifier.Ring(ring.Clone())
		if len(out) < 4 {
			out = ring
		}
		simplified = append(simplified, out)
	}
	return simplified
}

// SimplifyZones simplifies the polygons of multiple zones
func SimplifyZones(zones []Zone, epsilon float64) []Zone {
	simplified := make([]Zone, len(zones))
	for i, zone := range zones {
		zone.Polygon = SimplifyPolygon(zone.Polygon, epsilon)
		simplified[i] = zone
	}
	return simplified
}
