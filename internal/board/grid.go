package board

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidSnapshot = errors.New("invalid board snapshot")
)

const noMove = -1

// the four line orientations through a cell: horizontal, vertical and both diagonals.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// grid - fixed-size row-major cell storage shared by every board family.
// Values are copied on place, a grid is never mutated once built.
type grid struct {
	rows      int
	cols      int
	winLength int
	cells     []Mark
	filled    int
	last      int
}

func newGrid(rows, cols, winLength int) grid {
	return grid{
		rows:      rows,
		cols:      cols,
		winLength: winLength,
		cells:     make([]Mark, rows*cols),
		last:      noMove,
	}
}

func (that grid) inBounds(row, col int) bool {
	return row >= 0 && row < that.rows && col >= 0 && col < that.cols
}

func (that grid) at(row, col int) Mark {
	if !that.inBounds(row, col) {
		return Empty
	}

	return that.cells[row*that.cols+col]
}

func (that grid) place(row, col int, mark Mark) (grid, error) {
	if mark != Nought && mark != Cross {
		return grid{}, fmt.Errorf("%w: mark %q is not playable", ErrInvalidPosition, mark)
	}

	if !that.inBounds(row, col) {
		return grid{}, fmt.Errorf("%w: row %d col %d is out of bounds", ErrInvalidPosition, row, col)
	}

	index := row*that.cols + col
	if that.cells[index] != Empty {
		return grid{}, fmt.Errorf("%w: row %d col %d is occupied", ErrInvalidPosition, row, col)
	}

	next := that
	next.cells = slices.Clone(that.cells)
	next.cells[index] = mark
	next.filled++
	next.last = index

	return next, nil
}

// lastMoveWon - checks only the lines passing through the most recently placed cell.
func (that grid) lastMoveWon() bool {
	if that.last == noMove {
		return false
	}

	row, col := that.last/that.cols, that.last%that.cols
	mark := that.cells[that.last]

	for _, dir := range directions {
		run := 1 + that.runLength(row, col, dir[0], dir[1], mark) + that.runLength(row, col, -dir[0], -dir[1], mark)
		if run >= that.winLength {
			return true
		}
	}

	return false
}

func (that grid) runLength(row, col, dRow, dCol int, mark Mark) int {
	count := 0
	for r, c := row+dRow, col+dCol; that.inBounds(r, c) && that.at(r, c) == mark; r, c = r+dRow, c+dCol {
		count++
	}

	return count
}

func (that grid) isFull() bool {
	return that.filled == len(that.cells)
}

// MovesPlayed - number of filled cells.
func (that grid) MovesPlayed() int {
	return that.filled
}

func (that grid) String() string {
	var sb strings.Builder
	for row := range that.rows {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := range that.cols {
			sb.WriteString(that.at(row, col).String())
		}
	}

	return sb.String()
}

type gridSnapshot struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	WinLength int    `json:"win_length"`
	Cells     string `json:"cells"`
	Last      int    `json:"last"`
}

func (that grid) snapshot() gridSnapshot {
	var sb strings.Builder
	for _, mark := range that.cells {
		sb.WriteString(mark.String())
	}

	return gridSnapshot{
		Rows:      that.rows,
		Cols:      that.cols,
		WinLength: that.winLength,
		Cells:     sb.String(),
		Last:      that.last,
	}
}

func restoreGrid(snap gridSnapshot) (grid, error) {
	if snap.Rows <= 0 || snap.Cols <= 0 || snap.WinLength <= 0 {
		return grid{}, fmt.Errorf("%w: bad dimensions %dx%d", ErrInvalidSnapshot, snap.Rows, snap.Cols)
	}

	restored := newGrid(snap.Rows, snap.Cols, snap.WinLength)
	if len(snap.Cells) != len(restored.cells) {
		return grid{}, fmt.Errorf("%w: expected %d cells, got %d", ErrInvalidSnapshot, len(restored.cells), len(snap.Cells))
	}

	for i, symbol := range snap.Cells {
		mark, err := parseMark(symbol)
		if err != nil {
			return grid{}, err
		}
		restored.cells[i] = mark
		if mark != Empty {
			restored.filled++
		}
	}

	if snap.Last < noMove || snap.Last >= len(restored.cells) || (snap.Last != noMove && restored.cells[snap.Last] == Empty) {
		return grid{}, fmt.Errorf("%w: bad last move %d", ErrInvalidSnapshot, snap.Last)
	}
	restored.last = snap.Last

	return restored, nil
}
