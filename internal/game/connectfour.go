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

const defaultConnectFourMaxDepth = 8

const (
	msgNotNumeric    = "Not a valid numeric value."
	msgIllegalColumn = "Illegal column chosen."
	msgMarkerPrompt  = "Enter 0 to choose O (nought) / Enter 1 to choose X (cross) / Player with O (nought) goes first."
	msgMarkerInvalid = "Please enter 0 or 1 to choose your marker."
)

type ConnectFour struct {
	rng      *rand.Rand
	maxDepth int

	state State
	depth int
	human board.Mark
	home  board.Mark
	board board.ConnectFour
}

type connectFourSnapshot struct {
	State State             `json:"state"`
	Depth int               `json:"depth"`
	Human board.Mark        `json:"human"`
	Home  board.Mark        `json:"home"`
	Board board.ConnectFour `json:"board"`
}

func NewConnectFour(rng *rand.Rand, maxDepth int) *ConnectFour {
	if maxDepth <= 0 {
		maxDepth = defaultConnectFourMaxDepth
	}

	return &ConnectFour{
		rng:      rng,
		maxDepth: maxDepth,
		state:    StateDormant,
		board:    board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength),
	}
}

func (that *ConnectFour) Kind() string {
	return KindConnectFour
}

func (that *ConnectFour) State() State {
	return that.state
}

func (that *ConnectFour) Start(_ context.Context) entity.Result {
	that.board = board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
	that.depth = 0
	that.human, that.home = board.Empty, board.Empty
	that.state = StateAwaitingDifficulty

	return entity.NewResult(
		entity.NewText("A new game of Connect Four has been started!"),
		entity.NewText(that.difficultyPrompt()),
	)
}

func (that *ConnectFour) End() entity.Result {
	that.state = StateDormant

	return ended()
}

func (that *ConnectFour) HandleRestartChoice(ctx context.Context, text string) entity.Result {
	return restartChoice(ctx, text, that.Start, that.End)
}

func (that *ConnectFour) ParseAndReply(ctx context.Context, in entity.Input) entity.Result {
	switch that.state {
	case StateAwaitingDifficulty:
		return that.setDifficulty(in.Text)
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

func (that *ConnectFour) difficultyPrompt() string {
	return fmt.Sprintf("Please input the difficulty: 2 for easy / 4 for medium / 6 for hard (any number from 1 to %d).", that.maxDepth)
}

func (that *ConnectFour) setDifficulty(text string) entity.Result {
	depth, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return entity.NewResult(entity.NewText(msgNotNumeric))
	}

	if depth < 1 || depth > that.maxDepth {
		return entity.NewResult(entity.NewText(fmt.Sprintf("Difficulty must be a number from 1 to %d.", that.maxDepth)))
	}

	that.depth = depth
	that.state = StateAwaitingMarker

	return entity.NewResult(
		entity.NewText(fmt.Sprintf("Difficulty is set to %d.", depth)),
		entity.NewText(msgMarkerPrompt),
	)
}

func (that *ConnectFour) setMarker(text string) entity.Result {
	var result entity.Result

	switch strings.TrimSpace(text) {
	case "0":
		that.human, that.home = board.Nought, board.Cross
		that.state = StateAwaitingMove
		result.Text("You choose marker O (nought).")
		result.Flex(altUserBoard, connectFourFlex(that.board))
		result.Text(that.movePrompt())
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

func (that *ConnectFour) movePrompt() string {
	return fmt.Sprintf("Enter column you decide to move at! (1-%d)", that.board.Cols())
}

func (that *ConnectFour) userMove(text string) entity.Result {
	column, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return entity.NewResult(entity.NewText(msgNotNumeric))
	}

	next, err := that.board.Place(column-1, that.human)
	if err != nil {
		return entity.NewResult(entity.NewText(msgIllegalColumn))
	}
	that.board = next

	var result entity.Result
	result.Flex(altUserBoard, connectFourFlex(that.board))
	result.Text(fmt.Sprintf("You decide to move at column %d.", column))

	if that.finished(&result, entity.OutcomeWin, "You win!") {
		return result
	}

	result.Merge(that.homeTurn())

	return result
}

func (that *ConnectFour) homeTurn() entity.Result {
	var result entity.Result

	started := time.Now()
	engine := search.New[board.ConnectFour, int](that.rng, that.home)

	column, err := engine.BestMove(that.board, that.depth)
	if err != nil {
		that.finished(&result, entity.OutcomeLoss, "You lose!")
		return result
	}

	next, err := that.board.Place(column, that.home)
	if err != nil {
		result.Text(msgIllegalColumn)
		return result
	}
	that.board = next

	result.Flex(altHomeBoard, connectFourFlex(that.board))
	result.Text(fmt.Sprintf("Time taken to think: %s. Computer decides to move at column %d.",
		time.Since(started).Round(time.Millisecond), column+1))

	if that.finished(&result, entity.OutcomeLoss, "You lose!") {
		return result
	}

	result.Text(that.movePrompt())

	return result
}

// finished - reports the end of a round after a move, win is the text used when the last move won.
func (that *ConnectFour) finished(result *entity.Result, outcome, win string) bool {
	switch {
	case that.board.DidLastMoveWin():
		result.Text(win + " " + msgPlayAgain)
		result.Outcome = &entity.Outcome{Result: outcome}
	case that.board.IsFull():
		result.Text("It's a tie! " + msgPlayAgain)
		result.Outcome = &entity.Outcome{Result: entity.OutcomeDraw}
	default:
		return false
	}

	that.state = StateAwaitingRestart

	return true
}

func (that *ConnectFour) MarshalJSON() ([]byte, error) {
	return marshalSnapshot(KindConnectFour, connectFourSnapshot{
		State: that.state,
		Depth: that.depth,
		Human: that.human,
		Home:  that.home,
		Board: that.board,
	})
}

func (that *ConnectFour) UnmarshalJSON(data []byte) error {
	var snapshot connectFourSnapshot
	if err := unmarshalSnapshot(KindConnectFour, data, &snapshot); err != nil {
		return err
	}

	if snapshot.Board.Cols() == 0 {
		return fmt.Errorf("%w: connect four board is missing", apperror.ErrSessionCorrupted)
	}

	that.state = snapshot.State
	that.depth = snapshot.Depth
	that.human = snapshot.Human
	that.home = snapshot.Home
	that.board = snapshot.Board

	return nil
}
