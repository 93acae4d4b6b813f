package main

import (
	"errors"
	"math/rand"
	"testing"
)

func testGridConfig(cols, rows int) GridConfig {
	return GridConfig{
		Width:         float64(cols),
		Height:        float64(rows),
		CellSize:      1,
		Connectivity:  8,
		CornerCutting: true,
	}
}

func newTestGrid(t *testing.T, cfg GridConfig) *NavGrid {
	t.Helper()
	grid, err := NewNavGrid(cfg, nil)
	if err != nil {
		t.Fatalf("NewNavGrid: %v", err)
	}
	return grid
}

func cellCenter(col, row int) Point {
	return Point{X: float64(col) + 0.5, Y: float64(row) + 0.5}
}

// pathCost re-costs waypoints the way the search does
func pathCost(t *testing.T, grid *NavGrid, start Point, waypoints []Point) int {
	t.Helper()
	total := 0
	prev := grid.CellAt(start)
	for _, wp := range waypoints {
		cell := grid.CellAt(wp)
		if absInt(cell.GridX-prev.GridX) > 1 || absInt(cell.GridY-prev.GridY) > 1 {
			t.Fatalf("waypoints (%d,%d) -> (%d,%d) are not adjacent", prev.GridX, prev.GridY, cell.GridX, cell.GridY)
		}
		if !cell.Walkable {
			t.Fatalf("path crosses blocked cell (%d,%d)", cell.GridX, cell.GridY)
		}
		total += distance(prev, cell) + cell.MovementPenalty
		prev = cell
	}
	return total
}

// dijkstraCost is a brute-force reference for the optimal cost, -1 if unreachable
func dijkstraCost(grid *NavGrid, start, target *Cell) int {
	const inf = 1 << 30
	dist := map[*Cell]int{start: 0}
	done := map[*Cell]bool{}
	for {
		var best *Cell
		for cell, d := range dist {
			if !done[cell] && (best == nil || d < dist[best]) {
				best = cell
			}
		}
		if best == nil {
			return -1
		}
		if best == target {
			return dist[best]
		}
		done[best] = true
		for _, n := range grid.NeighborsOf(best) {
			if !n.Walkable {
				continue
			}
			d := dist[best] + distance(best, n) + n.MovementPenalty
			if old, ok := dist[n]; !ok || d < old {
				if d < inf {
					dist[n] = d
				}
			}
		}
	}
}

func TestFindPath_Scenarios(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		blocked       [][2]int
		penalties     map[[2]int]int
		cornerCutting bool
		start         [2]int
		target        [2]int
		success       bool
		cost          int
		waypoints     int // -1 to skip
		mustVisit     [][2]int
		mustAvoid     [][2]int
	}{
		"open grid diagonal": {
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{4, 4},
			success:       true,
			cost:          56,
			waypoints:     4,
		},
		"wall with gap at row 0": {
			blocked:       [][2]int{{2, 1}, {2, 2}, {2, 3}, {2, 4}},
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{4, 4},
			success:       true,
			cost:          68,
			waypoints:     -1,
			mustVisit:     [][2]int{{2, 0}},
		},
		"wall with gap, no corner cutting": {
			blocked:   [][2]int{{2, 1}, {2, 2}, {2, 3}, {2, 4}},
			start:     [2]int{0, 0},
			target:    [2]int{4, 4},
			success:   true,
			cost:      74,
			waypoints: -1,
			mustVisit: [][2]int{{2, 0}, {3, 0}},
		},
		"target unwalkable": {
			blocked:       [][2]int{{4, 4}},
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{4, 4},
			success:       false,
			waypoints:     0,
		},
		"start unwalkable": {
			blocked:       [][2]int{{0, 0}},
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{4, 4},
			success:       false,
			waypoints:     0,
		},
		"target enclosed": {
			blocked:       [][2]int{{3, 3}, {3, 4}, {4, 3}},
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{4, 4},
			success:       false,
			waypoints:     0,
		},
		"start equals target": {
			cornerCutting: true,
			start:         [2]int{2, 2},
			target:        [2]int{2, 2},
			success:       true,
			cost:          0,
			waypoints:     0,
		},
		"penalty detour": {
			penalties:     map[[2]int]int{{1, 2}: 100},
			cornerCutting: true,
			start:         [2]int{0, 2},
			target:        [2]int{2, 2},
			success:       true,
			cost:          28,
			waypoints:     2,
			mustAvoid:     [][2]int{{1, 2}},
		},
		"penalty on target is paid": {
			penalties:     map[[2]int]int{{1, 0}: 7},
			cornerCutting: true,
			start:         [2]int{0, 0},
			target:        [2]int{1, 0},
			success:       true,
			cost:          17,
			waypoints:     1,
		},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			cfg := testGridConfig(5, 5)
			cfg.CornerCutting = tc.cornerCutting
			grid := newTestGrid(t, cfg)
			for _, b := range tc.blocked {
				if err := grid.SetWalkable(b[0], b[1], false); err != nil {
					t.Fatal(err)
				}
			}
			for c, p := range tc.penalties {
				if err := grid.SetPenalty(c[0], c[1], p); err != nil {
					t.Fatal(err)
				}
			}

			start := cellCenter(tc.start[0], tc.start[1])
			result, err := NewPathfinder(grid, SearchOptions{}).FindPath(start, cellCenter(tc.target[0], tc.target[1]))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Success != tc.success {
				t.Fatalf("expected success=%v, got %v", tc.success, result.Success)
			}
			if result.Waypoints == nil {
				t.Error("waypoints must never be nil")
			}
			if tc.waypoints >= 0 && len(result.Waypoints) != tc.waypoints {
				t.Errorf("expected %d waypoints, got %d: %v", tc.waypoints, len(result.Waypoints), result.Waypoints)
			}
			if !tc.success {
				return
			}

			if result.Cost != tc.cost {
				t.Errorf("expected cost %d, got %d", tc.cost, result.Cost)
			}
			if got := pathCost(t, grid, start, result.Waypoints); got != result.Cost {
				t.Errorf("waypoints cost %d, search reported %d", got, result.Cost)
			}

			visited := make(map[[2]int]bool)
			for _, wp := range result.Waypoints {
				cell := grid.CellAt(wp)
				visited[[2]int{cell.GridX, cell.GridY}] = true
			}
			for _, c := range tc.mustVisit {
				if !visited[c] {
					t.Errorf("expected path through %v, got %v", c, result.Waypoints)
				}
			}
			for _, c := range tc.mustAvoid {
				if visited[c] {
					t.Errorf("expected path to avoid %v, got %v", c, result.Waypoints)
				}
			}
		})
	}
}

func TestFindPath_UnwalkableTargetExpandsNothing(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(5, 5))
	_ = grid.SetWalkable(4, 4, false)

	result, err := NewPathfinder(grid, SearchOptions{}).FindPath(cellCenter(0, 0), cellCenter(4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if result.Expanded != 0 {
		t.Errorf("expected no expansion, got %d", result.Expanded)
	}
}

func TestFindPath_StartEqualsTargetSkipsRelaxation(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(5, 5))
	result, err := NewPathfinder(grid, SearchOptions{}).FindPath(cellCenter(1, 1), Point{X: 1.9, Y: 1.1})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success || result.Expanded != 1 || len(result.Waypoints) != 0 {
		t.Errorf("expected immediate success with one expansion, got %+v", result)
	}
}

func TestFindPath_OptimalOnRandomGrids(t *testing.T) {
	t.Parallel()

	for seed := int64(1); seed <= 20; seed++ {
		rng := rand.New(rand.NewSource(seed))
		cfg := testGridConfig(12, 9)
		cfg.CornerCutting = seed%2 == 0
		if seed%5 == 0 {
			cfg.Connectivity = 4
		}
		grid := newTestGrid(t, cfg)
		cols, rows := grid.Size()
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				switch r := rng.Float64(); {
				case r < 0.25:
					_ = grid.SetWalkable(col, row, false)
				case r < 0.4:
					_ = grid.SetPenalty(col, row, rng.Intn(30))
				}
			}
		}

		start := cellCenter(rng.Intn(cols), rng.Intn(rows))
		target := cellCenter(rng.Intn(cols), rng.Intn(rows))
		startCell, targetCell := grid.CellAt(start), grid.CellAt(target)

		result, err := NewPathfinder(grid, SearchOptions{}).FindPath(start, target)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		expected := -1
		if startCell.Walkable && targetCell.Walkable {
			expected = dijkstraCost(grid, startCell, targetCell)
		}
		if expected < 0 {
			if result.Success {
				t.Errorf("seed %d: found path where none exists", seed)
			}
			if len(result.Waypoints) != 0 {
				t.Errorf("seed %d: failed search returned waypoints", seed)
			}
			continue
		}
		if !result.Success {
			t.Errorf("seed %d: expected path of cost %d, got failure", seed, expected)
			continue
		}
		if result.Cost != expected {
			t.Errorf("seed %d: expected optimal cost %d, got %d", seed, expected, result.Cost)
		}
		if got := pathCost(t, grid, start, result.Waypoints); got != result.Cost {
			t.Errorf("seed %d: waypoints cost %d, search reported %d", seed, got, result.Cost)
		}
	}
}

func TestFindPath_OpenGridAlwaysSucceeds(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(7, 7))
	pf := NewPathfinder(grid, SearchOptions{})
	for sx := 0; sx < 7; sx += 2 {
		for sy := 0; sy < 7; sy += 3 {
			for tx := 0; tx < 7; tx += 3 {
				for ty := 0; ty < 7; ty += 2 {
					result, err := pf.FindPath(cellCenter(sx, sy), cellCenter(tx, ty))
					if err != nil || !result.Success {
						t.Fatalf("(%d,%d)->(%d,%d): success=%v err=%v", sx, sy, tx, ty, result.Success, err)
					}
					expected := distance(grid.Cell(sx, sy), grid.Cell(tx, ty))
					if result.Cost != expected {
						t.Errorf("(%d,%d)->(%d,%d): expected cost %d, got %d", sx, sy, tx, ty, expected, result.Cost)
					}
				}
			}
		}
	}
}

func TestFindPath_Idempotent(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(10, 10))
	for row := 1; row < 9; row++ {
		_ = grid.SetWalkable(5, row, false)
	}
	pf := NewPathfinder(grid, SearchOptions{})

	first, err := pf.FindPath(cellCenter(0, 5), cellCenter(9, 5))
	if err != nil {
		t.Fatal(err)
	}
	second, err := pf.FindPath(cellCenter(0, 5), cellCenter(9, 5))
	if err != nil {
		t.Fatal(err)
	}
	if !first.Success || !second.Success || first.Cost != second.Cost {
		t.Errorf("expected identical costs, got %+v and %+v", first, second)
	}
}

func TestFindPathAsync_ConcurrentSearchesShareGrid(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(20, 20))
	for row := 0; row < 18; row++ {
		_ = grid.SetWalkable(10, row, false)
	}
	pf := NewPathfinder(grid, SearchOptions{})

	want, err := pf.FindPath(cellCenter(0, 0), cellCenter(19, 0))
	if err != nil || !want.Success {
		t.Fatalf("reference search failed: %+v, %v", want, err)
	}

	outcomes := make([]<-chan PathOutcome, 16)
	for i := range outcomes {
		outcomes[i] = pf.FindPathAsync(cellCenter(0, 0), cellCenter(19, 0))
	}
	for i, ch := range outcomes {
		outcome := <-ch
		if outcome.Err != nil || outcome.Result.Cost != want.Cost {
			t.Errorf("search %d: got cost %d err %v, expected %d", i, outcome.Result.Cost, outcome.Err, want.Cost)
		}
		if _, open := <-ch; open {
			t.Errorf("search %d: channel delivered more than one outcome", i)
		}
	}
}

func TestByCost_TieBreaksOnHCost(t *testing.T) {
	t.Parallel()

	far, near, worse := &Cell{GridX: 1}, &Cell{GridX: 2}, &Cell{GridX: 3}
	costs := map[*Cell]*nodeCost{
		far:   {g: 10, h: 40}, // f 50
		near:  {g: 30, h: 20}, // f 50
		worse: {g: 0, h: 51},  // f 51
	}

	open := NewHeap(3, byCost(costs))
	for _, c := range []*Cell{worse, far, near} {
		if err := open.Add(c); err != nil {
			t.Fatal(err)
		}
	}

	for i, want := range []*Cell{near, far, worse} {
		got, err := open.RemoveFirst()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("pop %d: expected cell %d, got cell %d", i, want.GridX, got.GridX)
		}
	}

	// Improving far's g makes it win on fCost alone
	costs[far].g = 5
	_ = open.Add(near)
	_ = open.Add(far)
	if got, _ := open.RemoveFirst(); got != far {
		t.Errorf("expected far after its g improved, got cell %d", got.GridX)
	}
}

// undersizedGrid under-reports its cell count
type undersizedGrid struct {
	*NavGrid
}

func (undersizedGrid) MaxCellCount() int { return 1 }

func TestFindPath_MisconfiguredGrid(t *testing.T) {
	t.Parallel()

	grid := newTestGrid(t, testGridConfig(5, 5))
	result, err := NewPathfinder(undersizedGrid{grid}, SearchOptions{}).FindPath(cellCenter(0, 0), cellCenter(4, 4))
	if !errors.Is(err, ErrMisconfigured) {
		t.Fatalf("expected ErrMisconfigured, got %v", err)
	}
	if !errors.Is(err, ErrHeapFull) {
		t.Errorf("expected the heap overflow to be wrapped, got %v", err)
	}
	if result.Success || len(result.Waypoints) != 0 {
		t.Errorf("expected empty failed result, got %+v", result)
	}
}

func TestDistance(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		a, b     [2]int
		expected int
	}{
		"same cell":    {a: [2]int{3, 3}, b: [2]int{3, 3}, expected: 0},
		"straight":     {a: [2]int{0, 0}, b: [2]int{3, 0}, expected: 30},
		"diagonal":     {a: [2]int{0, 0}, b: [2]int{4, 4}, expected: 56},
		"mixed x":      {a: [2]int{0, 0}, b: [2]int{5, 2}, expected: 58},
		"mixed y":      {a: [2]int{1, 1}, b: [2]int{3, 6}, expected: 58},
		"is symmetric": {a: [2]int{6, 1}, b: [2]int{1, 3}, expected: 58},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			a := &Cell{GridX: tc.a[0], GridY: tc.a[1]}
			b := &Cell{GridX: tc.b[0], GridY: tc.b[1]}
			if got := distance(a, b); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
			if got := distance(b, a); got != tc.expected {
				t.Errorf("reverse: expected %d, got %d", tc.expected, got)
			}
		})
	}
}
