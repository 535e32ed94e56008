package board

import (
	"encoding/json"
	"fmt"
	"slices"
)

const (
	ConnectFourRows      = 6
	ConnectFourCols      = 7
	ConnectFourWinLength = 4
)

// ConnectFour - gravity board, a disc always lands on the lowest empty row of its column.
type ConnectFour struct {
	grid
	heights []int
}

func NewConnectFour(rows, cols, winLength int) ConnectFour {
	return ConnectFour{
		grid:    newGrid(rows, cols, winLength),
		heights: make([]int, cols),
	}
}

func (that ConnectFour) Rows() int {
	return that.rows
}

func (that ConnectFour) Cols() int {
	return that.cols
}

// Height - number of discs in a zero-indexed column.
func (that ConnectFour) Height(col int) int {
	if col < 0 || col >= that.cols {
		return 0
	}

	return that.heights[col]
}

// Place - drops mark into a zero-indexed column.
func (that ConnectFour) Place(col int, mark Mark) (ConnectFour, error) {
	if col < 0 || col >= that.cols {
		return ConnectFour{}, fmt.Errorf("%w: column %d is out of bounds", ErrInvalidPosition, col)
	}

	if that.heights[col] >= that.rows {
		return ConnectFour{}, fmt.Errorf("%w: column %d is full", ErrInvalidPosition, col)
	}

	next, err := that.place(that.rows-1-that.heights[col], col, mark)
	if err != nil {
		return ConnectFour{}, err
	}

	heights := slices.Clone(that.heights)
	heights[col]++

	return ConnectFour{grid: next, heights: heights}, nil
}

// LegalMoves - columns that are not full, ascending.
func (that ConnectFour) LegalMoves() []int {
	moves := make([]int, 0, that.cols)
	for col, height := range that.heights {
		if height < that.rows {
			moves = append(moves, col)
		}
	}

	return moves
}

func (that ConnectFour) DidLastMoveWin() bool {
	return that.lastMoveWon()
}

func (that ConnectFour) IsFull() bool {
	return that.isFull()
}

// Column - marks of a column from top to bottom.
func (that ConnectFour) Column(col int) []Mark {
	marks := make([]Mark, that.rows)
	for row := range that.rows {
		marks[row] = that.at(row, col)
	}

	return marks
}

func (that ConnectFour) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(that.snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal connect four board: %w", err)
	}

	return data, nil
}

func (that *ConnectFour) UnmarshalJSON(data []byte) error {
	var snap gridSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal connect four board: %w", err)
	}

	restored, err := restoreGrid(snap)
	if err != nil {
		return err
	}

	heights := make([]int, restored.cols)
	for col := range restored.cols {
		for row := restored.rows - 1; row >= 0 && restored.at(row, col) != Empty; row-- {
			heights[col]++
		}
	}

	if total := sumOf(heights); total != restored.filled {
		return fmt.Errorf("%w: floating discs", ErrInvalidSnapshot)
	}

	that.grid = restored
	that.heights = heights

	return nil
}

func sumOf(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}

	return total
}
