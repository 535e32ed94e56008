package search

import (
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/chatgames-backend/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDepth = 8

// minimax - unpruned reference search using the same scoring convention as Engine.
func minimax[P Position[P, M], M comparable](node P, depth int, home board.Mark) int {
	homeMoved := depth%2 == 0

	if node.DidLastMoveWin() {
		if homeMoved {
			return depth
		}
		return -depth
	}

	if depth <= 0 || node.IsFull() {
		return 0
	}

	mover := home
	if homeMoved {
		mover = home.Opponent()
	}

	var values []int
	for _, move := range node.LegalMoves() {
		child, err := node.Place(move, mover)
		if err != nil {
			panic(err)
		}
		values = append(values, minimax[P, M](child, depth-1, home))
	}

	if homeMoved {
		return minOf(values)
	}

	return maxOf(values)
}

func tictactoeValue(pos board.TicTacToe, depth int, home board.Mark) int {
	return minimax[board.TicTacToe, board.Cell](pos, depth, home)
}

func connectFourValue(pos board.ConnectFour, depth int, home board.Mark) int {
	return minimax[board.ConnectFour, int](pos, depth, home)
}

type played struct {
	cell board.Cell
	mark board.Mark
}

func tictactoeWith(t *testing.T, moves ...played) board.TicTacToe {
	t.Helper()

	b := board.NewTicTacToe(board.TicTacToeSize, board.TicTacToeWinLength)
	for _, move := range moves {
		var err error
		b, err = b.Place(move.cell, move.mark)
		require.NoError(t, err)
	}

	return b
}

func connectFourWith(t *testing.T, moves map[board.Mark][]int, order []board.Mark) board.ConnectFour {
	t.Helper()

	b := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
	next := map[board.Mark]int{}
	for _, mark := range order {
		var err error
		b, err = b.Place(moves[mark][next[mark]], mark)
		require.NoError(t, err)
		next[mark]++
	}

	return b
}

// randomTicTacToe - plays plies random moves, retrying until the position is not terminal.
func randomTicTacToe(rng *rand.Rand, plies int) board.TicTacToe {
	for {
		b := board.NewTicTacToe(board.TicTacToeSize, board.TicTacToeWinLength)
		terminal := false
		for i := range plies {
			moves := b.LegalMoves()
			b, _ = b.Place(moves[rng.IntN(len(moves))], board.Marks[i%2])
			if b.DidLastMoveWin() || b.IsFull() {
				terminal = true
				break
			}
		}
		if !terminal {
			return b
		}
	}
}

func randomConnectFour(rng *rand.Rand, plies int) board.ConnectFour {
	for {
		b := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)
		terminal := false
		for i := range plies {
			moves := b.LegalMoves()
			b, _ = b.Place(moves[rng.IntN(len(moves))], board.Marks[i%2])
			if b.DidLastMoveWin() {
				terminal = true
				break
			}
		}
		if !terminal {
			return b
		}
	}
}

func TestEngine_PruningEquivalence(t *testing.T) {
	t.Run("tictactoe", func(t *testing.T) {
		for seed := range uint64(30) {
			rng := rand.New(rand.NewPCG(seed, 1))
			plies := 1 + rng.IntN(6)
			pos := randomTicTacToe(rng, plies)
			home := board.Marks[(plies-1)%2]

			engine := New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(seed, 2)), home)

			// Then: pruned and unpruned values agree
			assert.Equal(t, tictactoeValue(pos, fullDepth, home), engine.Score(pos, fullDepth), "seed %d\n%s", seed, pos)
		}
	})

	t.Run("connect four", func(t *testing.T) {
		for seed := range uint64(20) {
			rng := rand.New(rand.NewPCG(seed, 3))
			plies := 1 + rng.IntN(12)
			pos := randomConnectFour(rng, plies)
			home := board.Marks[(plies-1)%2]

			engine := New[board.ConnectFour, int](rand.New(rand.NewPCG(seed, 4)), home)

			for _, depth := range []int{2, 4} {
				assert.Equal(t, connectFourValue(pos, depth, home), engine.Score(pos, depth), "seed %d depth %d\n%s", seed, depth, pos)
			}
		}
	})
}

func TestEngine_BestMove(t *testing.T) {
	t.Run("takes an immediate tictactoe win", func(t *testing.T) {
		// Given: crosses on two tiles of the top row
		pos := tictactoeWith(t,
			played{board.Cell{Row: 0, Col: 0}, board.Cross},
			played{board.Cell{Row: 1, Col: 1}, board.Nought},
			played{board.Cell{Row: 0, Col: 1}, board.Cross},
			played{board.Cell{Row: 2, Col: 2}, board.Nought},
		)
		engine := New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(1, 1)), board.Cross)

		// When: the engine plays crosses
		move, err := engine.BestMove(pos, fullDepth)

		// Then: it completes the row
		require.NoError(t, err)
		assert.Equal(t, board.Cell{Row: 0, Col: 2}, move)
	})

	t.Run("blocks the only losing tile", func(t *testing.T) {
		// Given: crosses threatening the top row
		pos := tictactoeWith(t,
			played{board.Cell{Row: 0, Col: 0}, board.Cross},
			played{board.Cell{Row: 1, Col: 1}, board.Nought},
			played{board.Cell{Row: 0, Col: 1}, board.Cross},
		)

		for seed := range uint64(10) {
			engine := New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(seed, 7)), board.Nought)

			move, err := engine.BestMove(pos, fullDepth)

			require.NoError(t, err)
			assert.Equal(t, board.Cell{Row: 0, Col: 2}, move)
		}
	})

	t.Run("connect four wins and blocks at depth 2", func(t *testing.T) {
		// Given: three noughts stacked in column 4
		winning := connectFourWith(t,
			map[board.Mark][]int{board.Nought: {4, 4, 4}, board.Cross: {0, 1, 6}},
			[]board.Mark{board.Nought, board.Cross, board.Nought, board.Cross, board.Nought, board.Cross},
		)
		// Given: three crosses on the bottom row
		blocking := connectFourWith(t,
			map[board.Mark][]int{board.Cross: {0, 1, 2}, board.Nought: {6, 6}},
			[]board.Mark{board.Cross, board.Nought, board.Cross, board.Nought, board.Cross},
		)

		for seed := range uint64(10) {
			engine := New[board.ConnectFour, int](rand.New(rand.NewPCG(seed, 9)), board.Nought)

			move, err := engine.BestMove(winning, 2)
			require.NoError(t, err)
			assert.Equal(t, 4, move)

			move, err = engine.BestMove(blocking, 2)
			require.NoError(t, err)
			assert.Equal(t, 3, move)
		}
	})

	t.Run("chosen move has the optimal value", func(t *testing.T) {
		for seed := range uint64(25) {
			rng := rand.New(rand.NewPCG(seed, 11))
			plies := 2 + rng.IntN(5)
			pos := randomTicTacToe(rng, plies)
			home := board.Marks[plies%2]

			best := -fullDepth - 1
			for _, move := range pos.LegalMoves() {
				child, err := pos.Place(move, home)
				require.NoError(t, err)
				best = max(best, tictactoeValue(child, fullDepth, home))
			}

			engine := New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(seed, 12)), home)
			move, err := engine.BestMove(pos, fullDepth)
			require.NoError(t, err)

			child, err := pos.Place(move, home)
			require.NoError(t, err)
			assert.Equal(t, best, tictactoeValue(child, fullDepth, home), "seed %d\n%s", seed, pos)
		}
	})

	t.Run("full board has no moves", func(t *testing.T) {
		pos := tictactoeWith(t,
			played{board.Cell{Row: 0, Col: 0}, board.Nought}, played{board.Cell{Row: 0, Col: 1}, board.Cross},
			played{board.Cell{Row: 0, Col: 2}, board.Nought}, played{board.Cell{Row: 1, Col: 1}, board.Cross},
			played{board.Cell{Row: 1, Col: 0}, board.Nought}, played{board.Cell{Row: 1, Col: 2}, board.Cross},
			played{board.Cell{Row: 2, Col: 1}, board.Nought}, played{board.Cell{Row: 2, Col: 0}, board.Cross},
			played{board.Cell{Row: 2, Col: 2}, board.Nought},
		)
		engine := New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(1, 1)), board.Cross)

		_, err := engine.BestMove(pos, fullDepth)
		require.ErrorIs(t, err, ErrNoLegalMoves)
	})

	t.Run("same seed gives the same move", func(t *testing.T) {
		empty := board.NewConnectFour(board.ConnectFourRows, board.ConnectFourCols, board.ConnectFourWinLength)

		first, err := New[board.ConnectFour, int](rand.New(rand.NewPCG(42, 42)), board.Nought).BestMove(empty, 4)
		require.NoError(t, err)

		second, err := New[board.ConnectFour, int](rand.New(rand.NewPCG(42, 42)), board.Nought).BestMove(empty, 4)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})
}

func TestEngine_SelfPlayDraws(t *testing.T) {
	for seed := range uint64(3) {
		// Given: two full-depth engines on an empty board
		engines := map[board.Mark]*Engine[board.TicTacToe, board.Cell]{
			board.Nought: New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(seed, 21)), board.Nought),
			board.Cross:  New[board.TicTacToe, board.Cell](rand.New(rand.NewPCG(seed, 22)), board.Cross),
		}
		pos := board.NewTicTacToe(board.TicTacToeSize, board.TicTacToeWinLength)

		// When: they play each other to the end
		for ply := 0; !pos.IsFull(); ply++ {
			mark := board.Marks[ply%2]

			move, err := engines[mark].BestMove(pos, fullDepth)
			require.NoError(t, err)

			pos, err = pos.Place(move, mark)
			require.NoError(t, err)

			// Then: nobody ever wins
			require.False(t, pos.DidLastMoveWin(), "seed %d\n%s", seed, pos)
		}
	}
}
