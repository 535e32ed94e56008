package game

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const minSubmittedLetters = 4

// points for guessing
const (
	letterPoints = 1
	wordPoints   = 3
)

const (
	cmdJoin     = "/join"
	cmdContinue = "/continue"
	cmdLeave    = "/leave"
)

// reservedWords - command names that cannot be submitted as words.
var reservedWords = map[string]bool{
	"JOIN": true, "CONTINUE": true, "LEAVE": true, "GAMEON": true,
	"GAMEOFF": true, "LIST": true, "GOAWAY": true, "STATS": true,
}

type submission struct {
	Word         string `json:"word"`
	ProposerID   string `json:"proposer_id"`
	ProposerName string `json:"proposer_name"`
}

type participant struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// HangmanMultiplayer - players submit words in a personal chat, the group guesses them in turn.
type HangmanMultiplayer struct {
	state        State
	participants []participant
	queue        []submission
	current      *submission
	word         hiddenWord
}

type hangmanMultiplayerSnapshot struct {
	State        State         `json:"state"`
	Participants []participant `json:"participants"`
	Queue        []submission  `json:"queue"`
	Current      *submission   `json:"current,omitempty"`
	Word         hiddenWord    `json:"word"`
}

func NewHangmanMultiplayer() *HangmanMultiplayer {
	return &HangmanMultiplayer{state: StateDormant}
}

func (that *HangmanMultiplayer) Kind() string {
	return KindHangmanMultiplayer
}

func (that *HangmanMultiplayer) State() State {
	return that.state
}

func (that *HangmanMultiplayer) Start(_ context.Context) entity.Result {
	that.participants = nil
	that.queue = nil
	that.current = nil
	that.word = hiddenWord{}
	that.state = StateAwaitingSubmission

	return entity.NewResult(
		entity.NewText("A new game of Multiplayer Hangman has been started!"),
		entity.NewText("Say /join here to play, then send me your words in a personal chat. Say /continue when everyone is ready."),
	)
}

func (that *HangmanMultiplayer) End() entity.Result {
	that.state = StateDormant

	result := ended()
	if len(that.participants) > 0 {
		result.Text(that.scoreboard())
	}

	return result
}

func (that *HangmanMultiplayer) HandleRestartChoice(ctx context.Context, text string) entity.Result {
	return restartChoice(ctx, text, that.Start, that.End)
}

func (that *HangmanMultiplayer) ParseAndReply(ctx context.Context, in entity.Input) entity.Result {
	if that.state == StateDormant {
		return entity.Result{}
	}

	if that.state == StateAwaitingRestart {
		return that.HandleRestartChoice(ctx, in.Text)
	}

	if in.IsPersonal() {
		return that.submit(in)
	}

	text := strings.TrimSpace(in.Text)

	switch strings.ToLower(text) {
	case cmdJoin:
		return that.join(in)
	case cmdLeave:
		return that.leave(in)
	case cmdContinue:
		if that.state == StateAwaitingSubmission {
			return that.nextWord()
		}
		return entity.Result{}
	}

	if that.state == StateAwaitingGuess {
		return that.guess(in, text)
	}

	return entity.Result{}
}

// Seat - registers a participant without a reply, joining twice is a no-op.
func (that *HangmanMultiplayer) Seat(userID, name string) {
	if that.find(userID) < 0 {
		that.participants = append(that.participants, participant{ID: userID, Name: name})
	}
}

func (that *HangmanMultiplayer) find(userID string) int {
	for i, p := range that.participants {
		if p.ID == userID {
			return i
		}
	}

	return -1
}

func (that *HangmanMultiplayer) join(in entity.Input) entity.Result {
	if that.find(in.UserID) >= 0 {
		return entity.NewResult(entity.NewText(fmt.Sprintf("%s has already joined the game.", in.DisplayName)))
	}

	that.participants = append(that.participants, participant{ID: in.UserID, Name: in.DisplayName})

	result := entity.NewResult(entity.NewText(fmt.Sprintf("%s has joined the game!", in.DisplayName)))
	result.JoinGame = true

	return result
}

func (that *HangmanMultiplayer) leave(in entity.Input) entity.Result {
	index := that.find(in.UserID)
	if index < 0 {
		return entity.Result{}
	}

	that.participants = append(that.participants[:index], that.participants[index+1:]...)

	result := entity.NewResult(entity.NewText(fmt.Sprintf("%s has left the game.", in.DisplayName)))
	result.LeaveGame = true

	return result
}

func (that *HangmanMultiplayer) submit(in entity.Input) entity.Result {
	word := strings.ToUpper(strings.TrimSpace(in.Text))

	if utf8.RuneCountInString(word) < minSubmittedLetters || strings.IndexFunc(word, func(r rune) bool { return !unicode.IsLetter(r) }) >= 0 {
		return entity.NewResult(entity.NewText(fmt.Sprintf("Please submit a single word of at least %d letters.", minSubmittedLetters)))
	}

	if reservedWords[word] {
		return entity.NewResult(entity.NewText("That word is reserved, please pick another one."))
	}

	if that.find(in.UserID) < 0 {
		that.participants = append(that.participants, participant{ID: in.UserID, Name: in.DisplayName})
	}

	that.queue = append(that.queue, submission{Word: word, ProposerID: in.UserID, ProposerName: in.DisplayName})

	return entity.NewResult(entity.NewText(fmt.Sprintf("Your word %s has been submitted! %d word(s) are waiting.", word, len(that.queue))))
}

func (that *HangmanMultiplayer) nextWord() entity.Result {
	if len(that.queue) == 0 {
		that.current = nil
		that.state = StateAwaitingSubmission
		return entity.NewResult(entity.NewText("No words have been submitted yet. Send me words in a personal chat first."))
	}

	next := that.queue[0]
	that.queue = that.queue[1:]
	that.current = &next
	that.word = hiddenWord{Word: next.Word}
	that.state = StateAwaitingGuess

	return entity.NewResult(
		entity.NewText(fmt.Sprintf("Here is a word from %s! Guess one letter at a time, or the whole word prefixed by /.", next.ProposerName)),
		entity.NewText(that.word.String()),
	)
}

func (that *HangmanMultiplayer) guess(in entity.Input, text string) entity.Result {
	if that.current == nil || in.UserID == that.current.ProposerID {
		return entity.Result{}
	}

	var result entity.Result

	index := that.find(in.UserID)
	if index < 0 {
		that.participants = append(that.participants, participant{ID: in.UserID, Name: in.DisplayName})
		index = len(that.participants) - 1
		result.JoinGame = true
	}

	if guessed, ok := strings.CutPrefix(text, "/"); ok {
		guessed = strings.ToUpper(strings.TrimSpace(guessed))
		if guessed == "" {
			return entity.Result{}
		}

		if guessed != that.word.Word {
			result.Text(fmt.Sprintf("%s is not the word!\n%s", guessed, that.word))
			return result
		}

		that.participants[index].Score += wordPoints
		result.Merge(that.finishWord(in.DisplayName))

		return result
	}

	if utf8.RuneCountInString(text) != 1 {
		return result
	}

	letter, problem := parseLetter(text)
	if problem != "" {
		return result
	}

	switch {
	case that.word.tried(letter):
		result.Text(fmt.Sprintf("%c has been guessed before.\n%s", letter, that.word))
	case !that.word.contains(letter):
		that.word.try(letter)
		result.Text(fmt.Sprintf("Wrong guess!\n%s", that.word))
	default:
		that.word.try(letter)
		that.participants[index].Score += letterPoints * that.word.occurrences(letter)
		if that.word.solved() {
			result.Merge(that.finishWord(in.DisplayName))
		} else {
			result.Text(that.word.String())
		}
	}

	return result
}

func (that *HangmanMultiplayer) finishWord(solver string) entity.Result {
	result := entity.NewResult(entity.NewText(fmt.Sprintf("%s solved it! The word was %s, proposed by %s.",
		solver, that.word.Word, that.current.ProposerName)))

	if len(that.queue) > 0 {
		result.Merge(that.nextWord())
		return result
	}

	that.current = nil
	that.word = hiddenWord{}
	that.state = StateAwaitingSubmission
	result.Text(that.scoreboard())
	result.Text("Send me more words in a personal chat and say /continue to play again.")

	return result
}

func (that *HangmanMultiplayer) scoreboard() string {
	ranked := make([]participant, len(that.participants))
	copy(ranked, that.participants)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	var sb strings.Builder
	sb.WriteString("Scoreboard:")
	for i, p := range ranked {
		fmt.Fprintf(&sb, "\n%d. %s - %d", i+1, p.Name, p.Score)
	}

	return sb.String()
}

func (that *HangmanMultiplayer) MarshalJSON() ([]byte, error) {
	return marshalSnapshot(KindHangmanMultiplayer, hangmanMultiplayerSnapshot{
		State:        that.state,
		Participants: that.participants,
		Queue:        that.queue,
		Current:      that.current,
		Word:         that.word,
	})
}

func (that *HangmanMultiplayer) UnmarshalJSON(data []byte) error {
	var snapshot hangmanMultiplayerSnapshot
	if err := unmarshalSnapshot(KindHangmanMultiplayer, data, &snapshot); err != nil {
		return err
	}

	that.state = snapshot.State
	that.participants = snapshot.Participants
	that.queue = snapshot.Queue
	that.current = snapshot.Current
	that.word = snapshot.Word

	return nil
}
