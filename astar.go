package main

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// ErrMisconfigured means the grid broke a search precondition (its declared
// cell count is inconsistent with the cells it hands out). It never means
// "no path".
var ErrMisconfigured = errors.New("pathfinder misconfigured")

// Step costs scaled by 10 so diagonals (≈10√2) stay integral
const (
	costStraight = 10
	costDiagonal = 14
)

// PathResult is the outcome of one search. Success=false with a nil error is
// a normal outcome: an unwalkable endpoint or an unreachable target.
type PathResult struct {
	Waypoints []Point
	Success   bool
	Cost      int // gCost of the target cell
	Expanded  int // Cells moved to the closed set
}

// PathOutcome carries an asynchronous search result
type PathOutcome struct {
	Result PathResult
	Err    error
}

// nodeCost is the search-scoped state of one cell
type nodeCost struct {
	g, h   int
	parent *Cell
}

func (n *nodeCost) f() int { return n.g + n.h }

// Pathfinder runs A* searches over a shared, read-only grid. It is safe for
// concurrent use: every search keeps its own open set, closed set and costs.
type Pathfinder struct {
	grid    Grid
	options SearchOptions
}

// NewPathfinder creates a pathfinder for grid
func NewPathfinder(grid Grid, options SearchOptions) *Pathfinder {
	return &Pathfinder{grid: grid, options: options}
}

// FindPathAsync runs FindPath on its own goroutine. The channel receives
// exactly one outcome and is then closed.
func (pf *Pathfinder) FindPathAsync(start, target Point) <-chan PathOutcome {
	out := make(chan PathOutcome, 1)
	go func() {
		defer close(out)
		result, err := pf.FindPath(start, target)
		out <- PathOutcome{Result: result, Err: err}
	}()
	return out
}

// FindPath computes the cheapest path between two world points
func (pf *Pathfinder) FindPath(start, target Point) (PathResult, error) {
	var startedAt time.Time
	if pf.options.Debug {
		startedAt = time.Now()
	}

	startCell := pf.grid.CellAt(start)
	targetCell := pf.grid.CellAt(target)
	if !startCell.Walkable || !targetCell.Walkable {
		pf.debugf("endpoint not walkable (start %v, target %v)", startCell.Walkable, targetCell.Walkable)
		return PathResult{Waypoints: []Point{}}, nil
	}

	costs := make(map[*Cell]*nodeCost)
	openSet := NewHeap(pf.grid.MaxCellCount(), byCost(costs))
	closedSet := make(map[*Cell]struct{})

	costs[startCell] = &nodeCost{g: 0, h: distance(startCell, targetCell)}
	if err := openSet.Add(startCell); err != nil {
		return PathResult{Waypoints: []Point{}}, fmt.Errorf("%w: %w", ErrMisconfigured, err)
	}

	found := false
	for openSet.Count() > 0 {
		current, err := openSet.RemoveFirst()
		if err != nil {
			return PathResult{Waypoints: []Point{}}, fmt.Errorf("%w: %w", ErrMisconfigured, err)
		}
		closedSet[current] = struct{}{}

		if current == targetCell {
			found = true
			break
		}

		currentCost := costs[current]
		for _, neighbor := range pf.grid.NeighborsOf(current) {
			if !neighbor.Walkable {
				continue
			}
			if _, closed := closedSet[neighbor]; closed {
				continue
			}

			tentativeG := currentCost.g + distance(current, neighbor) + neighbor.MovementPenalty
			inOpen := openSet.Contains(neighbor)
			nc, seen := costs[neighbor]
			if inOpen && tentativeG >= nc.g {
				continue
			}
			if !seen {
				nc = &nodeCost{}
				costs[neighbor] = nc
			}
			nc.g = tentativeG
			nc.h = distance(neighbor, targetCell)
			nc.parent = current

			if !inOpen {
				if err := openSet.Add(neighbor); err != nil {
					return PathResult{Waypoints: []Point{}}, fmt.Errorf("%w: %w", ErrMisconfigured, err)
				}
			} else {
				openSet.UpdateItem(neighbor)
			}
		}
	}

	if !found {
		pf.debugf("no path after expanding %d cells (%s)", len(closedSet), time.Since(startedAt))
		return PathResult{Waypoints: []Point{}, Expanded: len(closedSet)}, nil
	}

	cells := retracePath(startCell, targetCell, costs)
	waypoints := SimplifyPath(cells, pf.options.CompressPath)
	pf.debugf("path found: %d waypoints, cost %d, %d expanded (%s)",
		len(waypoints), costs[targetCell].g, len(closedSet), time.Since(startedAt))

	return PathResult{
		Waypoints: waypoints,
		Success:   true,
		Cost:      costs[targetCell].g,
		Expanded:  len(closedSet),
	}, nil
}

// byCost orders open cells by fCost, breaking ties with the smaller hCost
func byCost(costs map[*Cell]*nodeCost) func(a, b *Cell) bool {
	return func(a, b *Cell) bool {
		ca, cb := costs[a], costs[b]
		if ca.f() != cb.f() {
			return ca.f() < cb.f()
		}
		return ca.h < cb.h
	}
}

func (pf *Pathfinder) debugf(format string, args ...any) {
	if pf.options.Debug {
		log.Printf("🔍 "+format+"\n", args...)
	}
}

// distance is the octile distance between two cells: 14 per diagonal step,
// 10 per straight step. It never overestimates the true cost on 4- or
// 8-connected grids with non-negative penalties.
func distance(a, b *Cell) int {
	dx := absInt(a.GridX - b.GridX)
	dy := absInt(a.GridY - b.GridY)
	if dx > dy {
		return costDiagonal*dy + costStraight*(dx-dy)
	}
	return costDiagonal*dx + costStraight*(dy-dx)
}
