// Package search implements minimax with alpha-beta pruning over any two-player board.
//
// Scores are taken from the point of view of the home (computer) side. A node sits at a
// remaining depth d: even d means the home side made the move into it and the user
// replies, odd d means the user moved and home replies. A win found at d is worth +d
// when home made it and -d when the user did, so quicker wins and slower losses are
// preferred. Depth exhaustion and full boards are worth 0.
package search

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rocketscienceinc/chatgames-backend/internal/board"
)

var ErrNoLegalMoves = errors.New("no legal moves")

// Position - a board value that can be searched. Place must not mutate the receiver.
type Position[P any, M comparable] interface {
	LegalMoves() []M
	Place(move M, mark board.Mark) (P, error)
	DidLastMoveWin() bool
	IsFull() bool
}

type Engine[P Position[P, M], M comparable] struct {
	rng  *rand.Rand
	home board.Mark
	user board.Mark
}

// New - creates an engine playing home against user. The rng drives move ordering and tie-breaks.
func New[P Position[P, M], M comparable](rng *rand.Rand, home board.Mark) *Engine[P, M] {
	return &Engine[P, M]{
		rng:  rng,
		home: home,
		user: home.Opponent(),
	}
}

// BestMove - picks uniformly among the home moves of maximal value. Odd depths are rounded up.
func (that *Engine[P, M]) BestMove(pos P, depth int) (M, error) {
	var none M

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return none, ErrNoLegalMoves
	}

	depth = evenDepth(depth)

	var best []M
	bestValue := 0
	for i, move := range moves {
		child, err := pos.Place(move, that.home)
		if err != nil {
			return none, fmt.Errorf("failed to place home move: %w", err)
		}

		value := that.Score(child, depth)
		switch {
		case i == 0 || value > bestValue:
			bestValue = value
			best = append(best[:0], move)
		case value == bestValue:
			best = append(best, move)
		}
	}

	return best[that.rng.IntN(len(best))], nil
}

// Score - value of a node reached by a home move with depth plies left to explore.
func (that *Engine[P, M]) Score(node P, depth int) int {
	return that.score(node, depth, -depth-1, depth+1)
}

func (that *Engine[P, M]) score(node P, depth, alpha, beta int) int {
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

	moves := node.LegalMoves()
	that.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})

	// values seen since the bound last strictly improved
	var peers []int

	if homeMoved {
		for _, move := range moves {
			child, err := node.Place(move, that.user)
			if err != nil {
				continue
			}

			value := that.score(child, depth-1, alpha, beta)
			if value < beta {
				beta = value
				peers = peers[:0]
			}
			peers = append(peers, value)

			if beta < alpha {
				break
			}
		}

		return minOf(peers)
	}

	for _, move := range moves {
		child, err := node.Place(move, that.home)
		if err != nil {
			continue
		}

		value := that.score(child, depth-1, alpha, beta)
		if value > alpha {
			alpha = value
			peers = peers[:0]
		}
		peers = append(peers, value)

		if alpha > beta {
			break
		}
	}

	return maxOf(peers)
}

func evenDepth(depth int) int {
	if depth%2 != 0 {
		return depth + 1
	}

	return depth
}

func minOf(values []int) int {
	if len(values) == 0 {
		return 0
	}

	result := values[0]
	for _, v := range values[1:] {
		result = min(result, v)
	}

	return result
}

func maxOf(values []int) int {
	if len(values) == 0 {
		return 0
	}

	result := values[0]
	for _, v := range values[1:] {
		result = max(result, v)
	}

	return result
}
