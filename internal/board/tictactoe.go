package board

import (
	"encoding/json"
	"fmt"
)

const (
	TicTacToeSize      = 3
	TicTacToeWinLength = 3
)

// Cell - zero-indexed tile coordinate.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// TicTacToe - square board where any empty tile is playable.
type TicTacToe struct {
	grid
}

func NewTicTacToe(size, winLength int) TicTacToe {
	return TicTacToe{grid: newGrid(size, size, winLength)}
}

func (that TicTacToe) Size() int {
	return that.rows
}

func (that TicTacToe) At(cell Cell) Mark {
	return that.at(cell.Row, cell.Col)
}

func (that TicTacToe) InBounds(cell Cell) bool {
	return that.inBounds(cell.Row, cell.Col)
}

// Place - returns a copy of the board with mark written at cell.
func (that TicTacToe) Place(cell Cell, mark Mark) (TicTacToe, error) {
	next, err := that.place(cell.Row, cell.Col, mark)
	if err != nil {
		return TicTacToe{}, err
	}

	return TicTacToe{grid: next}, nil
}

// LegalMoves - empty tiles in row-major order.
func (that TicTacToe) LegalMoves() []Cell {
	moves := make([]Cell, 0, len(that.cells)-that.filled)
	for i, mark := range that.cells {
		if mark == Empty {
			moves = append(moves, Cell{Row: i / that.cols, Col: i % that.cols})
		}
	}

	return moves
}

func (that TicTacToe) DidLastMoveWin() bool {
	return that.lastMoveWon()
}

func (that TicTacToe) IsFull() bool {
	return that.isFull()
}

// LastMove - tile of the most recent move, false on an empty board.
func (that TicTacToe) LastMove() (Cell, bool) {
	if that.last == noMove {
		return Cell{}, false
	}

	return Cell{Row: that.last / that.cols, Col: that.last % that.cols}, true
}

func (that TicTacToe) Center() Cell {
	return Cell{Row: that.rows / 2, Col: that.cols / 2}
}

func (that TicTacToe) Corners() []Cell {
	last := that.rows - 1

	return []Cell{{0, 0}, {0, last}, {last, 0}, {last, last}}
}

// EmptyCorners - corners not yet taken, in Corners order.
func (that TicTacToe) EmptyCorners() []Cell {
	corners := make([]Cell, 0, 4)
	for _, corner := range that.Corners() {
		if that.At(corner) == Empty {
			corners = append(corners, corner)
		}
	}

	return corners
}

func (that TicTacToe) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(that.snapshot())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tictactoe board: %w", err)
	}

	return data, nil
}

func (that *TicTacToe) UnmarshalJSON(data []byte) error {
	var snap gridSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal tictactoe board: %w", err)
	}

	if snap.Rows != snap.Cols {
		return fmt.Errorf("%w: tictactoe board must be square", ErrInvalidSnapshot)
	}

	restored, err := restoreGrid(snap)
	if err != nil {
		return err
	}

	that.grid = restored

	return nil
}
