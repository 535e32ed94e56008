package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/board"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/rocketscienceinc/chatgames-backend/internal/search"
)

// ticTacToeDepth solves a 3x3 board from any reachable position.
const ticTacToeDepth = 8

// opening heuristics, applied before any search
const (
	cornerOpeningChance = 0.3
	cornerReplyChance   = 0.9
)

const (
	msgInvalidTile  = "Not a valid tile position."
	msgOutOfBound   = "Out of bound tile position."
	msgOccupiedTile = "Not an empty tile position."
	msgTilePrompt   = "Enter the tile you decide to move at as row,col (for example 2,3)."
)

type TicTacToe struct {
	rng *rand.Rand

	state State
	human board.Mark
	home  board.Mark
	board board.TicTacToe
}

type ticTacToeSnapshot struct {
	State State           `json:"state"`
	Human board.Mark      `json:"human"`
	Home  board.Mark      `json:"home"`
	Board board.TicTacToe `json:"board"`
}

func NewTicTacToe(rng *rand.Rand) *TicTacToe {
	return &TicTacToe{
		rng:   rng,
		state: StateDormant,
		board: board.NewTicTacToe(board.TicTacToeSize, board.TicTacToeWinLength),
	}
}

func (that *TicTacToe) Kind() string {
	return KindTicTacToe
}

func (that *TicTacToe) State() State {
	return that.state
}

func (that *TicTacToe) Start(_ context.Context) entity.Result {
	that.board = board.NewTicTacToe(board.TicTacToeSize, board.TicTacToeWinLength)
	that.human, that.home = board.Empty, board.Empty
	that.state = StateAwaitingMarker

	return entity.NewResult(
		entity.NewText("A new game of Tic-Tac-Toe has been started!"),
		entity.NewText(msgMarkerPrompt),
	)
}

func (that *TicTacToe) End() entity.Result {
	that.state = StateDormant

	return ended()
}

func (that *TicTacToe) HandleRestartChoice(ctx context.Context, text string) entity.Result {
	return restartChoice(ctx, text, that.Start, that.End)
}

func (that *TicTacToe) ParseAndReply(ctx context.Context, in entity.Input) entity.Result {
	switch that.state {
	case StateAwaitingMarker:
		return that.setMarker(in.Text)
	case StateAwaitingMove:
		return that.userMove(in.Text)
	case StateAwaitingRestart:
		return that.HandleRestartChoice(ctx, in.Text)
	default:
		return entity.Result{}
	}
}

func (that *TicTacToe) setMarker(text string) entity.Result {
	var result entity.Result

	switch strings.TrimSpace(text) {
	case "0":
		that.human, that.home = board.Nought, board.Cross
		that.state = StateAwaitingMove
		result.Text("You choose marker O (nought).")
		result.Flex(altUserBoard, ticTacToeFlex(that.board))
		result.Text(msgTilePrompt)
	case "1":
		that.human, that.home = board.Cross, board.Nought
		that.state = StateAwaitingMove
		result.Text("You choose marker X (cross).")
		result.Merge(that.homeTurn())
	default:
		result.Text(msgMarkerInvalid)
	}

	return result
}

// parseTile - accepts "row,col" or "(row,col)", one-indexed.
func parseTile(text string) (board.Cell, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(strings.TrimPrefix(text, "("), ")")

	parts := strings.Split(text, ",")
	if len(parts) != 2 {
		return board.Cell{}, false
	}

	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return board.Cell{}, false
	}

	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return board.Cell{}, false
	}

	return board.Cell{Row: row - 1, Col: col - 1}, true
}

func (that *TicTacToe) userMove(text string) entity.Result {
	cell, ok := parseTile(text)
	if !ok {
		return entity.NewResult(entity.NewText(msgInvalidTile))
	}

	if !that.board.InBounds(cell) {
		return entity.NewResult(entity.NewText(msgOutOfBound))
	}

	next, err := that.board.Place(cell, that.human)
	if err != nil {
		return entity.NewResult(entity.NewText(msgOccupiedTile))
	}
	that.board = next

	var result entity.Result
	result.Text(fmt.Sprintf("You decide to move at tile (%d,%d).", cell.Row+1, cell.Col+1))

	if that.board.DidLastMoveWin() || that.board.IsFull() {
		result.Flex(altUserBoard, ticTacToeFlex(that.board))
		that.finish(&result, entity.OutcomeWin, "You win!")
		return result
	}

	result.Merge(that.homeTurn())

	return result
}

func (that *TicTacToe) homeTurn() entity.Result {
	var result entity.Result

	started := time.Now()

	cell, err := that.chooseMove()
	if err != nil {
		that.finish(&result, entity.OutcomeLoss, "You lose!")
		return result
	}

	next, err := that.board.Place(cell, that.home)
	if err != nil {
		result.Text(msgOccupiedTile)
		return result
	}
	that.board = next

	result.Flex(altHomeBoard, ticTacToeFlex(that.board))
	result.Text(fmt.Sprintf("Time taken to think: %s. Computer decides to move at tile (%d,%d).",
		time.Since(started).Round(time.Millisecond), cell.Row+1, cell.Col+1))

	if that.board.DidLastMoveWin() || that.board.IsFull() {
		that.finish(&result, entity.OutcomeLoss, "You lose!")
		return result
	}

	result.Text(msgTilePrompt)

	return result
}

func (that *TicTacToe) chooseMove() (board.Cell, error) {
	switch that.board.MovesPlayed() {
	case 0:
		if that.rng.Float64() < cornerOpeningChance {
			corners := that.board.Corners()
			return corners[that.rng.IntN(len(corners))], nil
		}
		return that.board.Center(), nil
	case 1:
		if corners := that.board.EmptyCorners(); len(corners) > 0 && that.rng.Float64() < cornerReplyChance {
			return corners[that.rng.IntN(len(corners))], nil
		}
	}

	cell, err := search.New[board.TicTacToe, board.Cell](that.rng, that.home).BestMove(that.board, ticTacToeDepth)
	if err != nil {
		return board.Cell{}, fmt.Errorf("failed to search tictactoe move: %w", err)
	}

	return cell, nil
}

func (that *TicTacToe) finish(result *entity.Result, outcome, win string) {
	if that.board.DidLastMoveWin() {
		result.Text(win + " " + msgPlayAgain)
		result.Outcome = &entity.Outcome{Result: outcome}
	} else {
		result.Text("It's a tie! " + msgPlayAgain)
		result.Outcome = &entity.Outcome{Result: entity.OutcomeDraw}
	}

	that.state = StateAwaitingRestart
}

func (that *TicTacToe) MarshalJSON() ([]byte, error) {
	return marshalSnapshot(KindTicTacToe, ticTacToeSnapshot{
		State: that.state,
		Human: that.human,
		Home:  that.home,
		Board: that.board,
	})
}

func (that *TicTacToe) UnmarshalJSON(data []byte) error {
	var snapshot ticTacToeSnapshot
	if err := unmarshalSnapshot(KindTicTacToe, data, &snapshot); err != nil {
		return err
	}

	if snapshot.Board.Size() == 0 {
		return fmt.Errorf("%w: tictactoe board is missing", apperror.ErrSessionCorrupted)
	}

	that.state = snapshot.State
	that.human = snapshot.Human
	that.home = snapshot.Home
	that.board = snapshot.Board

	return nil
}
