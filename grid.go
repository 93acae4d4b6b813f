package main

import (
	"fmt"
	"log"
	"math"
)

// Cell is one square of the navigation grid. The search reads it but never
// writes to it; per-search costs live in the search itself.
type Cell struct {
	GridX, GridY    int
	WorldPosition   Point
	Walkable        bool
	MovementPenalty int
}

// Grid is what the search needs from the world representation
type Grid interface {
	// CellAt maps a world point to its cell, clamping points outside the grid
	CellAt(p Point) *Cell
	// NeighborsOf lists adjacent cells in a stable order
	NeighborsOf(c *Cell) []*Cell
	// MaxCellCount bounds the size of the open set
	MaxCellCount() int
}

// MaxPenalty bounds a cell's movement penalty. A path crosses each cell at
// most once, so path costs stay far below the int range for any grid that
// fits in memory.
const MaxPenalty = math.MaxInt32

// Neighbour offsets in N, NE, E, SE, S, SW, W, NW order (Y grows north)
var neighborOffsets = [8][2]int{
	{0, 1}, {1, 1}, {1, 0}, {1, -1},
	{0, -1}, {-1, -1}, {-1, 0}, {-1, 1},
}

// NavGrid is a rectangular grid laid over a world-space region
type NavGrid struct {
	cols, rows    int
	cellSize      float64
	origin        Point
	connectivity  int
	cornerCutting bool
	cells         []Cell
	blocked       int
}

// NewNavGrid creates a grid from cfg and marks cells using the zone index.
// zones may be nil for an open grid.
func NewNavGrid(cfg GridConfig, zones *ZoneIndex) (*NavGrid, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cols := int(math.Ceil(cfg.Width / cfg.CellSize))
	rows := int(math.Ceil(cfg.Height / cfg.CellSize))
	if cols <= 0 {
		cols = 1
	}
	if rows <= 0 {
		rows = 1
	}

	g := &NavGrid{
		cols:          cols,
		rows:          rows,
		cellSize:      cfg.CellSize,
		origin:        cfg.Origin,
		connectivity:  cfg.Connectivity,
		cornerCutting: cfg.CornerCutting,
		cells:         make([]Cell, cols*rows),
	}

	blocked := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			cell := &g.cells[g.index(col, row)]
			cell.GridX = col
			cell.GridY = row
			cell.WorldPosition = g.worldPos(col, row)
			cell.Walkable = true

			for _, zone := range zones.ZonesAt(cell.WorldPosition) {
				switch zone.Kind {
				case ZoneBlocked:
					cell.Walkable = false
				case ZonePenalty:
					cell.MovementPenalty = max(cell.MovementPenalty, min(zone.Penalty, MaxPenalty))
				}
			}
			if !cell.Walkable {
				blocked++
			}
		}
	}

	g.blocked = blocked
	log.Printf("   Grid: %dx%d cells (%.2f units), %d blocked\n", cols, rows, cfg.CellSize, blocked)
	return g, nil
}

// Size returns the grid dimensions in cells
func (g *NavGrid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// CellSize returns the side length of a cell in world units
func (g *NavGrid) CellSize() float64 {
	return g.cellSize
}

// Origin returns the world position of the grid's lower-left corner
func (g *NavGrid) Origin() Point {
	return g.origin
}

// Stats counts walkable and blocked cells. Counts reflect zone marking and
// any later SetWalkable calls.
func (g *NavGrid) Stats() (walkable, blocked int) {
	return len(g.cells) - g.blocked, g.blocked
}

// MaxCellCount implements Grid
func (g *NavGrid) MaxCellCount() int {
	return len(g.cells)
}

// Cell returns the cell at grid coordinates, or nil if out of bounds
func (g *NavGrid) Cell(col, row int) *Cell {
	if !g.inBounds(col, row) {
		return nil
	}
	return &g.cells[g.index(col, row)]
}

// CellAt implements Grid
func (g *NavGrid) CellAt(p Point) *Cell {
	col := int(clamp(math.Floor((p.X-g.origin.X)/g.cellSize), 0, float64(g.cols-1)))
	row := int(clamp(math.Floor((p.Y-g.origin.Y)/g.cellSize), 0, float64(g.rows-1)))
	return &g.cells[g.index(col, row)]
}

// NeighborsOf implements Grid
func (g *NavGrid) NeighborsOf(c *Cell) []*Cell {
	neighbors := make([]*Cell, 0, 8)
	for _, off := range neighborOffsets {
		diagonal := off[0] != 0 && off[1] != 0
		if diagonal && g.connectivity == 4 {
			continue
		}
		col := c.GridX + off[0]
		row := c.GridY + off[1]
		if !g.inBounds(col, row) {
			continue
		}
		if diagonal && !g.cornerCutting && !g.canTraverseDiagonal(c, off) {
			continue
		}
		neighbors = append(neighbors, &g.cells[g.index(col, row)])
	}
	return neighbors
}

// SetWalkable overrides walkability for a cell. Not safe once the grid is shared.
func (g *NavGrid) SetWalkable(col, row int, walkable bool) error {
	if !g.inBounds(col, row) {
		return fmt.Errorf("cell (%d, %d) outside %dx%d grid", col, row, g.cols, g.rows)
	}
	cell := &g.cells[g.index(col, row)]
	if cell.Walkable != walkable {
		if walkable {
			g.blocked--
		} else {
			g.blocked++
		}
	}
	cell.Walkable = walkable
	return nil
}

// SetPenalty overrides the movement penalty for a cell. Not safe once the grid is shared.
func (g *NavGrid) SetPenalty(col, row, penalty int) error {
	if !g.inBounds(col, row) {
		return fmt.Errorf("cell (%d, %d) outside %dx%d grid", col, row, g.cols, g.rows)
	}
	if penalty < 0 || penalty > MaxPenalty {
		return fmt.Errorf("penalty %d outside [0, %d]", penalty, MaxPenalty)
	}
	g.cells[g.index(col, row)].MovementPenalty = penalty
	return nil
}

func (g *NavGrid) inBounds(col, row int) bool {
	return col >= 0 && row >= 0 && col < g.cols && row < g.rows
}

func (g *NavGrid) index(col, row int) int {
	return row*g.cols + col
}

func (g *NavGrid) worldPos(col, row int) Point {
	return Point{
		X: g.origin.X + (float64(col)+0.5)*g.cellSize,
		Y: g.origin.Y + (float64(row)+0.5)*g.cellSize,
	}
}

// canTraverseDiagonal rejects a diagonal step that would clip the corner of a blocked cell
func (g *NavGrid) canTraverseDiagonal(c *Cell, off [2]int) bool {
	horiz := g.Cell(c.GridX+off[0], c.GridY)
	vert := g.Cell(c.GridX, c.GridY+off[1])
	return horiz != nil && vert != nil && horiz.Walkable && vert.Walkable
}
