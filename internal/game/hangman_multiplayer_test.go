package game

import (
	"context"
	"testing"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inGroup(userID, name, text string) entity.Input {
	return entity.Input{Text: text, UserID: userID, GroupID: "g1", DisplayName: name}
}

func inPersonal(userID, name, text string) entity.Input {
	return entity.Input{Text: text, UserID: userID, GroupID: userID, DisplayName: name}
}

func TestHangmanMultiplayer_Round(t *testing.T) {
	ctx := context.Background()

	// Given: a started game
	g := NewHangmanMultiplayer()
	g.Start(ctx)
	require.Equal(t, StateAwaitingSubmission, g.State())

	// When: alice joins twice
	result := g.ParseAndReply(ctx, inGroup("alice", "Alice", "/join"))
	assert.True(t, result.JoinGame)
	assert.Equal(t, []string{"Alice has joined the game!"}, texts(result))

	result = g.ParseAndReply(ctx, inGroup("alice", "Alice", "/JOIN"))
	assert.False(t, result.JoinGame)

	// When: continuing without words
	result = g.ParseAndReply(ctx, inGroup("alice", "Alice", "/continue"))
	assert.Equal(t, StateAwaitingSubmission, g.State())
	assert.Len(t, result.Messages, 1)

	// When: alice submits words in a personal chat
	assert.Contains(t, texts(g.ParseAndReply(ctx, inPersonal("alice", "Alice", "cat")))[0], "at least 4 letters")
	assert.Contains(t, texts(g.ParseAndReply(ctx, inPersonal("alice", "Alice", "join")))[0], "reserved")
	assert.Contains(t, texts(g.ParseAndReply(ctx, inPersonal("alice", "Alice", "ice cream")))[0], "at least 4 letters")
	assert.Contains(t, texts(g.ParseAndReply(ctx, inPersonal("alice", "Alice", "Apple")))[0], "APPLE has been submitted")
	require.Len(t, g.queue, 1)

	// When: the group continues
	result = g.ParseAndReply(ctx, inGroup("alice", "Alice", "/continue"))
	require.Equal(t, StateAwaitingGuess, g.State())
	assert.Equal(t, "_ _ _ _ _", texts(result)[1])

	// Then: the proposer cannot guess
	assert.True(t, g.ParseAndReply(ctx, inGroup("alice", "Alice", "a")).IsEmpty())

	// Then: a new guesser is joined implicitly and scores per revealed letter
	result = g.ParseAndReply(ctx, inGroup("bob", "Bob", "p"))
	assert.True(t, result.JoinGame)
	assert.Equal(t, []string{"_ P P _ _"}, texts(result))

	// Then: chatter and wrong words do not break the round
	assert.Empty(t, g.ParseAndReply(ctx, inGroup("bob", "Bob", "nice one")).Messages)
	assert.Equal(t, []string{"APPLY is not the word!\n_ P P _ _"}, texts(g.ParseAndReply(ctx, inGroup("bob", "Bob", "/apply"))))

	// When: bob guesses the whole word
	result = g.ParseAndReply(ctx, inGroup("bob", "Bob", "/apple"))

	// Then: the round ends with a scoreboard
	assert.Equal(t, StateAwaitingSubmission, g.State())
	assert.Contains(t, texts(result)[0], "The word was APPLE, proposed by Alice.")
	assert.Contains(t, texts(result), "Scoreboard:\n1. Bob - 5\n2. Alice - 0")
}

func TestHangmanMultiplayer_QueueAndLeave(t *testing.T) {
	ctx := context.Background()

	g := NewHangmanMultiplayer()
	g.Start(ctx)
	g.ParseAndReply(ctx, inPersonal("alice", "Alice", "moon"))
	g.ParseAndReply(ctx, inPersonal("bob", "Bob", "star"))
	g.ParseAndReply(ctx, inGroup("alice", "Alice", "/continue"))

	// When: bob solves alice's word letter by letter
	var result entity.Result
	for _, letter := range []string{"m", "o", "n"} {
		result = g.ParseAndReply(ctx, inGroup("bob", "Bob", letter))
	}

	// Then: the next word in the queue follows
	assert.Equal(t, StateAwaitingGuess, g.State())
	require.NotNil(t, g.current)
	assert.Equal(t, "STAR", g.current.Word)
	assert.Contains(t, texts(result), "_ _ _ _")

	// When: alice leaves
	result = g.ParseAndReply(ctx, inGroup("alice", "Alice", "/leave"))
	assert.True(t, result.LeaveGame)
	assert.Equal(t, -1, g.find("alice"))

	// Then: ending shows the scoreboard
	result = g.End()
	assert.True(t, result.EndGame)
	assert.Contains(t, texts(result), "Scoreboard:\n1. Bob - 4")
}

func TestHangmanMultiplayer_Seat(t *testing.T) {
	ctx := context.Background()

	// Given: a started game with a seated starter
	g := NewHangmanMultiplayer()
	g.Start(ctx)
	g.Seat("alice", "Alice")
	g.Seat("alice", "Alice")
	require.Len(t, g.participants, 1)

	// When: the starter joins
	result := g.ParseAndReply(ctx, inGroup("alice", "Alice", "/join"))

	// Then: they are already in
	assert.False(t, result.JoinGame)
	assert.Equal(t, []string{"Alice has already joined the game."}, texts(result))

	// When: the starter leaves
	result = g.ParseAndReply(ctx, inGroup("alice", "Alice", "/leave"))

	// Then: the router is told to drop the membership
	assert.True(t, result.LeaveGame)
	assert.Equal(t, []string{"Alice has left the game."}, texts(result))
	assert.Empty(t, g.participants)
}
