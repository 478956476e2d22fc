// Package grid provides the occupancy grid consumed by movement and
// projectile collision: a side-effect-free open/wall lookup over continuous
// coordinates.
package grid

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Cell is the occupancy state of one grid cell.
type Cell int

const (
	Open Cell = iota
	Wall
)

// String returns a human-readable cell label.
func (c Cell) String() string {
	switch c {
	case Open:
		return "open"
	case Wall:
		return "wall"
	default:
		return "unknown"
	}
}

// Grid answers whether the cell containing a continuous point is open.
// Implementations must be side-effect-free.
type Grid interface {
	CellAt(x, y float64) Cell
}

// IsOpen reports whether the cell containing (x, y) is open.
func IsOpen(g Grid, x, y float64) bool {
	return g.CellAt(x, y) == Open
}

// ErrInvalidMaze is returned when maze rows cannot form a grid.
var ErrInvalidMaze = errors.New("grid: invalid maze")

// Maze is a rectangular occupancy grid. Points outside the rectangle are walls.
//
// Invariant: len(cells) == Width*Height.
type Maze struct {
	Width  int
	Height int
	cells  []Cell
}

// ParseMaze builds a Maze from text rows where '#' marks a wall and any
// other rune an open cell. Widths are counted in runes, so a multibyte rune
// is one cell. Row 0 is y=0.
//
// Precondition: rows must be non-empty and all of equal rune count.
// Postcondition: Returns a Maze with len(cells) == Width*Height, or an error
// wrapping ErrInvalidMaze.
func ParseMaze(rows []string) (*Maze, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidMaze)
	}
	width := utf8.RuneCountInString(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: empty first row", ErrInvalidMaze)
	}
	m := &Maze{Width: width, Height: len(rows), cells: make([]Cell, 0, width*len(rows))}
	for y, row := range rows {
		if !utf8.ValidString(row) {
			return nil, fmt.Errorf("%w: row %d is not valid UTF-8", ErrInvalidMaze, y)
		}
		if n := utf8.RuneCountInString(row); n != width {
			return nil, fmt.Errorf("%w: row %d has width %d, want %d", ErrInvalidMaze, y, n, width)
		}
		for _, r := range row {
			if r == '#' {
				m.cells = append(m.cells, Wall)
			} else {
				m.cells = append(m.cells, Open)
			}
		}
	}
	return m, nil
}

// MustParseMaze is ParseMaze that panics on error. Intended for tests and fixtures.
func MustParseMaze(rows ...string) *Maze {
	m, err := ParseMaze(rows)
	if err != nil {
		panic(err)
	}
	return m
}

// CellAt returns the cell containing the continuous point (x, y).
//
// Postcondition: Returns Wall for any point outside [0,Width)x[0,Height).
func (m *Maze) CellAt(x, y float64) Cell {
	if math.IsNaN(x) || math.IsNaN(y) {
		return Wall
	}
	cx, cy := int(math.Floor(x)), int(math.Floor(y))
	if cx < 0 || cy < 0 || cx >= m.Width || cy >= m.Height {
		return Wall
	}
	return m.cells[cy*m.Width+cx]
}

// OpenCells returns the number of open cells.
func (m *Maze) OpenCells() int {
	n := 0
	for _, c := range m.cells {
		if c == Open {
			n++
		}
	}
	return n
}

// String renders the maze back into '#' / '.' rows.
func (m *Maze) String() string {
	var b strings.Builder
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.cells[y*m.Width+x] == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		if y < m.Height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
