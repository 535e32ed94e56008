package game

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

type State string

const (
	StateDormant            State = "dormant"
	StateAwaitingDifficulty State = "awaiting_difficulty"
	StateAwaitingMarker     State = "awaiting_marker"
	StateAwaitingMove       State = "awaiting_move"
	StateAwaitingGuess      State = "awaiting_guess"
	StateAwaitingSubmission State = "awaiting_submission"
	StateBrowsing           State = "browsing"
	StateAwaitingRestart    State = "awaiting_restart"
)

const (
	KindConnectFour        = "cf"
	KindTicTacToe          = "tt"
	KindHangman            = "hm"
	KindHangmanMultiplayer = "hmp"
	KindDrive              = "dr"
)

const (
	msgGameEnded     = "Game is ended. Will be dormant and not listening."
	msgRestartPrompt = "Not known. Enter yes or no. Do you want to restart the game?"
	msgPlayAgain     = "Do you want to play again? Yes/No"
)

// Game - one running game bound to a chat group. Implementations are not safe for concurrent use,
// the caller serializes interactions per group.
type Game interface {
	Kind() string
	State() State

	Start(ctx context.Context) entity.Result
	End() entity.Result
	HandleRestartChoice(ctx context.Context, text string) entity.Result
	ParseAndReply(ctx context.Context, in entity.Input) entity.Result

	json.Marshaler
	json.Unmarshaler
}

// Seater - games that track their players seat the user who started them.
type Seater interface {
	Seat(userID, name string)
}

type Options struct {
	ConnectFourMaxDepth  int
	HangmanAllowedWrongs int
	// Drive enables the drive browser when set.
	Drive Drive
	// Source returns the random source of a new game, seeded from entropy when nil.
	Source func() *rand.Rand
}

type factory func() Game

type kindInfo struct {
	kind string
	name string
	new  factory
}

// Registry - fixed set of game constructors addressed by short tokens.
type Registry struct {
	kinds []kindInfo
}

func NewRegistry(opts Options) *Registry {
	if opts.Source == nil {
		opts.Source = entropySource
	}

	registry := &Registry{}
	registry.add(KindConnectFour, "Connect Four", func() Game {
		return NewConnectFour(opts.Source(), opts.ConnectFourMaxDepth)
	})
	registry.add(KindHangman, "Hangman", func() Game {
		return NewHangman(opts.Source(), opts.HangmanAllowedWrongs)
	})
	registry.add(KindHangmanMultiplayer, "Multiplayer Hangman", func() Game {
		return NewHangmanMultiplayer()
	})
	registry.add(KindTicTacToe, "Tictactoe", func() Game {
		return NewTicTacToe(opts.Source())
	})

	if opts.Drive != nil {
		registry.add(KindDrive, "Drive Browser", func() Game {
			return NewDriveBrowser(opts.Drive)
		})
	}

	return registry
}

func (that *Registry) add(kind, name string, newGame factory) {
	that.kinds = append(that.kinds, kindInfo{kind: kind, name: name, new: newGame})
}

func (that *Registry) lookup(kind string) (kindInfo, bool) {
	for _, info := range that.kinds {
		if info.kind == kind {
			return info, true
		}
	}

	return kindInfo{}, false
}

func (that *Registry) Has(kind string) bool {
	_, ok := that.lookup(kind)
	return ok
}

// New - creates a dormant game of the given kind.
func (that *Registry) New(kind string) (Game, error) {
	info, ok := that.lookup(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrUnknownGame, kind)
	}

	return info.new(), nil
}

// Restore - rebuilds a game from a snapshot produced by its MarshalJSON.
func (that *Registry) Restore(kind string, state json.RawMessage) (Game, error) {
	restored, err := that.New(kind)
	if err != nil {
		return nil, err
	}

	if err = restored.UnmarshalJSON(state); err != nil {
		return nil, fmt.Errorf("failed to restore %s game: %w", kind, err)
	}

	return restored, nil
}

// Usage - help line naming every registered game.
func (that *Registry) Usage() string {
	parts := make([]string, 0, len(that.kinds))
	for _, info := range that.kinds {
		parts = append(parts, info.kind+" for "+info.name)
	}

	return "Please specify a valid game specifier: " + strings.Join(parts, ", ")
}

// List - one line per registered game.
func (that *Registry) List() string {
	var sb strings.Builder
	sb.WriteString("Available games:")
	for _, info := range that.kinds {
		fmt.Fprintf(&sb, "\n%s - %s", info.kind, info.name)
	}

	return sb.String()
}

func entropySource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint: gosec // it's ok
}

// restartChoice - yes starts over, no ends the game, anything else asks again.
func restartChoice(ctx context.Context, text string, start func(context.Context) entity.Result, end func() entity.Result) entity.Result {
	switch normalize(text) {
	case "yes":
		return start(ctx)
	case "no":
		return end()
	default:
		return entity.NewResult(entity.NewText(msgRestartPrompt))
	}
}

func ended() entity.Result {
	result := entity.NewResult(entity.NewText(msgGameEnded))
	result.EndGame = true

	return result
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func marshalSnapshot(kind string, snapshot any) ([]byte, error) {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s game: %w", kind, err)
	}

	return data, nil
}

func unmarshalSnapshot(kind string, data []byte, snapshot any) error {
	if err := json.Unmarshal(data, snapshot); err != nil {
		return fmt.Errorf("failed to unmarshal %s game: %w", kind, err)
	}

	return nil
}
