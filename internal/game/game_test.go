package game

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

func say(text string) entity.Input {
	return entity.Input{Text: text, UserID: "u1", GroupID: "g1", DisplayName: "Alice"}
}

func texts(result entity.Result) []string {
	var out []string
	for _, msg := range result.Messages {
		if msg.IsText() {
			out = append(out, msg.Text)
		}
	}

	return out
}

func flexes(result entity.Result) []entity.Message {
	var out []entity.Message
	for _, msg := range result.Messages {
		if msg.IsFlex() {
			out = append(out, msg)
		}
	}

	return out
}

// assertRejected - one corrective text and an untouched snapshot.
func assertRejected(t *testing.T, g Game, text string) {
	t.Helper()

	ctx := context.Background()

	before, err := json.Marshal(g)
	require.NoError(t, err)
	state := g.State()

	result := g.ParseAndReply(ctx, say(text))

	require.Len(t, result.Messages, 1, "input %q", text)
	assert.True(t, result.Messages[0].IsText())
	assert.False(t, result.EndGame)
	assert.Equal(t, state, g.State())

	after, err := json.Marshal(g)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(Options{Source: func() *rand.Rand { return seeded(1) }})

	t.Run("creates dormant games by kind", func(t *testing.T) {
		for _, kind := range []string{KindConnectFour, KindTicTacToe, KindHangman, KindHangmanMultiplayer} {
			g, err := registry.New(kind)

			require.NoError(t, err)
			assert.Equal(t, kind, g.Kind())
			assert.Equal(t, StateDormant, g.State())
		}
	})

	t.Run("drive browser needs a drive", func(t *testing.T) {
		assert.False(t, registry.Has(KindDrive))

		withDrive := NewRegistry(Options{Drive: &mockDrive{}})
		assert.True(t, withDrive.Has(KindDrive))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := registry.New("chess")

		require.ErrorIs(t, err, apperror.ErrUnknownGame)
		assert.Contains(t, registry.Usage(), "cf for Connect Four")
		assert.Contains(t, registry.List(), "tt - Tictactoe")
	})

	t.Run("restores a started game", func(t *testing.T) {
		// Given: a connect four game waiting for its marker
		g, err := registry.New(KindConnectFour)
		require.NoError(t, err)
		g.Start(context.Background())
		g.ParseAndReply(context.Background(), say("4"))

		state, err := json.Marshal(g)
		require.NoError(t, err)

		// When: it is restored from the snapshot
		restored, err := registry.Restore(KindConnectFour, state)

		// Then: it continues where it stopped
		require.NoError(t, err)
		assert.Equal(t, StateAwaitingMarker, restored.State())
		assert.Equal(t, 4, restored.(*ConnectFour).depth)
	})

	t.Run("corrupted snapshot", func(t *testing.T) {
		_, err := registry.Restore(KindTicTacToe, json.RawMessage(`{"state":"awaiting_move"}`))
		require.ErrorIs(t, err, apperror.ErrSessionCorrupted)

		_, err = registry.Restore(KindHangman, json.RawMessage(`not json`))
		require.Error(t, err)
	})
}

func TestRestartChoice(t *testing.T) {
	ctx := context.Background()

	for _, g := range []Game{NewConnectFour(seeded(2), 0), NewTicTacToe(seeded(2)), NewHangman(seeded(2), 0)} {
		t.Run(g.Kind(), func(t *testing.T) {
			g.Start(ctx)

			// When: the player asks for a restart
			result := g.HandleRestartChoice(ctx, " YES ")

			// Then: a new round starts
			assert.NotEqual(t, StateDormant, g.State())
			assert.NotEmpty(t, result.Messages)

			// When: an unknown answer is given
			result = g.HandleRestartChoice(ctx, "perhaps")
			assert.Equal(t, []string{msgRestartPrompt}, texts(result))

			// When: the player declines
			result = g.HandleRestartChoice(ctx, "no")

			// Then: the game ends
			assert.True(t, result.EndGame)
			assert.Equal(t, []string{msgGameEnded}, texts(result))
			assert.Equal(t, StateDormant, g.State())

			// Then: a dormant game no longer listens
			assert.True(t, g.ParseAndReply(ctx, say("hello")).IsEmpty())
		})
	}
}
