// Package memory models the storage sectors of a simulated host as a fixed
// two-dimensional grid of cells.
package memory

import (
	"fmt"

	"github.com/dd0wney/virusnet/pkg/randvar"
)

// Cell is the state of a single storage sector
type Cell int8

const (
	// Locked cells belong to an immunized host and are never overwritten.
	Locked Cell = -1
	// Clean cells hold no virus payload.
	Clean Cell = 0
	// Set cells are occupied by the virus.
	Set Cell = 1
)

// Default grid dimensions
const (
	DefaultRows = 512
	DefaultCols = 8
)

// Grid is a rows x cols bitmap of storage sectors. The zero value is not
// usable; create grids with New.
type Grid struct {
	rows  int
	cols  int
	cells []Cell
}

// New creates a clean grid. Non-positive dimensions are raised to 1.
func New(rows, cols int) *Grid {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Grid{
		rows:  rows,
		cols:  cols,
		cells: make([]Cell, rows*cols),
	}
}

// Rows returns the number of rows
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns
func (g *Grid) Cols() int { return g.cols }

// Total returns the number of cells in the grid
func (g *Grid) Total() int { return len(g.cells) }

// At returns the cell at row, col.
func (g *Grid) At(row, col int) (Cell, error) {
	if row < 0 || row >= g.rows || col < 0 || col >= g.cols {
		return Clean, fmt.Errorf("cell (%d, %d) outside %dx%d grid", row, col, g.rows, g.cols)
	}
	return g.cells[row*g.cols+col], nil
}

// CountSet returns the number of cells occupied by the virus.
func (g *Grid) CountSet() int {
	n := 0
	for _, c := range g.cells {
		if c == Set {
			n++
		}
	}
	return n
}

// CountLocked returns the number of immunized cells.
func (g *Grid) CountLocked() int {
	n := 0
	for _, c := range g.cells {
		if c == Locked {
			n++
		}
	}
	return n
}

// Fraction returns CountSet()/Total().
func (g *Grid) Fraction() float64 {
	return float64(g.CountSet()) / float64(len(g.cells))
}

// SetRandomCellsOn draws up to count distinct cells and marks each one as
// Set unless it is Locked. It returns how many cells actually changed, which
// can be fewer than count.
func (g *Grid) SetRandomCellsOn(src randvar.Source, count int) int {
	changed := 0
	for _, idx := range randvar.Sample(src, len(g.cells), count) {
		if g.cells[idx] == Clean {
			g.cells[idx] = Set
			changed++
		}
	}
	return changed
}

// FlipRandomCellsOff draws up to count distinct cells and clears each one
// that is currently Set. Drawn cells in any other state are skipped without
// a redraw, so the result is a partial cure when the grid is sparse.
func (g *Grid) FlipRandomCellsOff(src randvar.Source, count int) int {
	changed := 0
	for _, idx := range randvar.Sample(src, len(g.cells), count) {
		if g.cells[idx] == Set {
			g.cells[idx] = Clean
			changed++
		}
	}
	return changed
}

// Scatter sets floor(Total*density) random cells.
func (g *Grid) Scatter(src randvar.Source, density float64) int {
	return g.SetRandomCellsOn(src, int(float64(len(g.cells))*density))
}

// Lock immunizes every cell.
func (g *Grid) Lock() { g.fill(Locked) }

// Saturate marks every cell as Set.
func (g *Grid) Saturate() { g.fill(Set) }

// Clear resets every cell to Clean.
func (g *Grid) Clear() { g.fill(Clean) }

// IsLocked reports whether every cell is Locked.
func (g *Grid) IsLocked() bool { return g.all(Locked) }

// IsSaturated reports whether every cell is Set.
func (g *Grid) IsSaturated() bool { return g.all(Set) }

func (g *Grid) fill(c Cell) {
	for i := range g.cells {
		g.cells[i] = c
	}
}

func (g *Grid) all(c Cell) bool {
	for _, v := range g.cells {
		if v != c {
			return false
		}
	}
	return true
}

// String renders grid occupancy, e.g. "512x8 set=410 locked=0".
func (g *Grid) String() string {
	return fmt.Sprintf("%dx%d set=%d locked=%d", g.rows, g.cols, g.CountSet(), g.CountLocked())
}
