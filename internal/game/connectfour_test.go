package game

import (
	"context"
	"strings"
	"testing"

	"github.com/rocketscienceinc/chatgames-backend/internal/board"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedConnectFour(t *testing.T, marker string) *ConnectFour {
	t.Helper()

	ctx := context.Background()
	g := NewConnectFour(seeded(7), 6)
	g.Start(ctx)
	require.Equal(t, StateAwaitingDifficulty, g.State())

	g.ParseAndReply(ctx, say("2"))
	require.Equal(t, StateAwaitingMarker, g.State())

	g.ParseAndReply(ctx, say(marker))
	require.Equal(t, StateAwaitingMove, g.State())

	return g
}

func TestConnectFour_Flow(t *testing.T) {
	ctx := context.Background()

	t.Run("start asks for difficulty", func(t *testing.T) {
		g := NewConnectFour(seeded(1), 6)

		result := g.Start(ctx)

		assert.Equal(t, StateAwaitingDifficulty, g.State())
		assert.Equal(t, "A new game of Connect Four has been started!", texts(result)[0])
		assert.Contains(t, texts(result)[1], "2 for easy / 4 for medium / 6 for hard")
	})

	t.Run("difficulty is validated", func(t *testing.T) {
		g := NewConnectFour(seeded(1), 6)
		g.Start(ctx)

		assert.Equal(t, []string{msgNotNumeric}, texts(g.ParseAndReply(ctx, say("hard"))))
		assertRejected(t, g, "0")
		assertRejected(t, g, "7")

		result := g.ParseAndReply(ctx, say(" 3 "))
		assert.Equal(t, StateAwaitingMarker, g.State())
		assert.Equal(t, 3, g.depth)
		assert.Contains(t, texts(result), msgMarkerPrompt)
	})

	t.Run("marker 0 lets the human open", func(t *testing.T) {
		g := NewConnectFour(seeded(1), 6)
		g.Start(ctx)
		g.ParseAndReply(ctx, say("2"))

		result := g.ParseAndReply(ctx, say("0"))

		assert.Equal(t, board.Nought, g.human)
		require.Len(t, flexes(result), 1)
		assert.Equal(t, altUserBoard, flexes(result)[0].AltText)
		assert.Zero(t, g.board.MovesPlayed())
	})

	t.Run("marker 1 lets the computer open", func(t *testing.T) {
		g := NewConnectFour(seeded(1), 6)
		g.Start(ctx)
		g.ParseAndReply(ctx, say("2"))

		result := g.ParseAndReply(ctx, say("1"))

		assert.Equal(t, board.Cross, g.human)
		assert.Equal(t, StateAwaitingMove, g.State())
		require.Len(t, flexes(result), 1)
		assert.Equal(t, altHomeBoard, flexes(result)[0].AltText)
		assert.Equal(t, 1, g.board.MovesPlayed())
		assert.True(t, strings.HasPrefix(texts(result)[len(texts(result))-1], "Enter column"))
	})

	t.Run("a legal move is answered by the computer", func(t *testing.T) {
		g := startedConnectFour(t, "0")

		result := g.ParseAndReply(ctx, say("4"))

		assert.Equal(t, 2, g.board.MovesPlayed())
		assert.Equal(t, board.Nought, g.board.Column(3)[board.ConnectFourRows-1])
		require.Len(t, flexes(result), 2)
		assert.Contains(t, texts(result), "You decide to move at column 4.")
	})
}

func TestConnectFour_FullColumn(t *testing.T) {
	ctx := context.Background()

	// Given: a game at difficulty 2 whose fourth column is full
	g := startedConnectFour(t, "0")

	full := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
	for i := range board.ConnectFourRows {
		var err error
		full, err = full.Place(3, board.Marks[i%2])
		require.NoError(t, err)
	}
	g.board = full

	// When: the human plays column 4 again
	result := g.ParseAndReply(ctx, say("4"))

	// Then: the move is rejected and nothing changes
	assert.Equal(t, []string{msgIllegalColumn}, texts(result))
	assert.Equal(t, StateAwaitingMove, g.State())
	assert.Equal(t, board.ConnectFourRows, g.board.MovesPlayed())
	assertRejected(t, g, "4")
}

func TestConnectFour_Rejections(t *testing.T) {
	g := startedConnectFour(t, "0")

	for _, text := range []string{"abc", "0", "8", "-1", "4,4", ""} {
		assertRejected(t, g, text)
	}
}

func TestConnectFour_Finish(t *testing.T) {
	ctx := context.Background()

	t.Run("human win", func(t *testing.T) {
		// Given: three noughts stacked in the first column and crosses elsewhere
		g := startedConnectFour(t, "0")
		b := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
		for _, move := range []struct {
			col  int
			mark board.Mark
		}{{0, board.Nought}, {6, board.Cross}, {0, board.Nought}, {6, board.Cross}, {0, board.Nought}, {5, board.Cross}} {
			var err error
			b, err = b.Place(move.col, move.mark)
			require.NoError(t, err)
		}
		g.board = b

		// When: the human completes the column
		result := g.ParseAndReply(ctx, say("1"))

		// Then: the round ends with a win
		assert.Equal(t, StateAwaitingRestart, g.State())
		require.NotNil(t, result.Outcome)
		assert.Equal(t, entity.OutcomeWin, result.Outcome.Result)
		assert.Equal(t, "You win! "+msgPlayAgain, texts(result)[len(texts(result))-1])
	})

	t.Run("computer win", func(t *testing.T) {
		// Given: three crosses stacked in the last column, the computer plays crosses
		g := startedConnectFour(t, "0")
		b := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
		for _, move := range []struct {
			col  int
			mark board.Mark
		}{{0, board.Nought}, {6, board.Cross}, {1, board.Nought}, {6, board.Cross}, {3, board.Nought}, {6, board.Cross}} {
			var err error
			b, err = b.Place(move.col, move.mark)
			require.NoError(t, err)
		}
		g.board = b

		// When: the human does not block
		result := g.ParseAndReply(ctx, say("6"))

		// Then: the computer takes the win
		assert.Equal(t, StateAwaitingRestart, g.State())
		require.NotNil(t, result.Outcome)
		assert.Equal(t, entity.OutcomeLoss, result.Outcome.Result)
		assert.Equal(t, board.Cross, g.board.Column(6)[board.ConnectFourRows-4])
	})

	t.Run("restart after the round", func(t *testing.T) {
		g := startedConnectFour(t, "0")
		g.state = StateAwaitingRestart

		assertRejected(t, g, "later")

		result := g.ParseAndReply(ctx, say("Yes"))
		assert.Equal(t, StateAwaitingDifficulty, g.State())
		assert.Zero(t, g.board.MovesPlayed())
		assert.NotEmpty(t, result.Messages)
	})
}

func TestConnectFourFlex(t *testing.T) {
	b, err := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength).Place(2, board.Cross)
	require.NoError(t, err)

	bubble := connectFourFlex(b)

	require.Len(t, bubble.Body.Contents, board.ConnectFourCols)
	assert.Equal(t, ".\n.\n.\n.\n.\nX", bubble.Body.Contents[2].Text)
	assert.Equal(t, ".\n.\n.\n.\n.\n.", bubble.Body.Contents[0].Text)
}
