package game

import (
	"bufio"
	"bytes"
	"context"
	"embed"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

const defaultAllowedWrongs = 9

// each solved word grants extra wrong guesses
const bonusWrongs = 2

const (
	msgOneLetter      = "Please guess one letter at a time."
	msgOnlyLetters    = "Please enter only a letter as your guess."
	msgHangmanLevel   = "Select the difficulty of your next word: 1 for easy / 2 for medium / 3 for hard."
	msgHangmanBadPick = "Please input 1, 2 or 3 as the difficulty."
)

//go:embed words/*.txt
var wordFiles embed.FS

// wordLists - difficulty 1..3 mapped to upper-cased words.
var wordLists = mustLoadWords("words/easy.txt", "words/medium.txt", "words/hard.txt")

func mustLoadWords(paths ...string) map[int][]string {
	lists := make(map[int][]string, len(paths))
	for i, path := range paths {
		data, err := wordFiles.ReadFile(path)
		if err != nil {
			panic(fmt.Errorf("failed to read word list %s: %w", path, err))
		}

		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			if word := strings.ToUpper(strings.TrimSpace(scanner.Text())); word != "" {
				lists[i+1] = append(lists[i+1], word)
			}
		}

		if len(lists[i+1]) == 0 {
			panic(fmt.Errorf("word list %s is empty", path))
		}
	}

	return lists
}

// hiddenWord - a word with the letters guessed so far. Non-letters are always shown.
type hiddenWord struct {
	Word      string `json:"word"`
	Attempted string `json:"attempted"`
}

func (that hiddenWord) revealed(r rune) bool {
	return !unicode.IsLetter(r) || strings.ContainsRune(that.Attempted, r)
}

func (that hiddenWord) String() string {
	var sb strings.Builder
	for i, r := range []rune(that.Word) {
		if i > 0 {
			sb.WriteByte(' ')
		}
		if that.revealed(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}

	return sb.String()
}

func (that hiddenWord) tried(letter rune) bool {
	return strings.ContainsRune(that.Attempted, letter)
}

func (that hiddenWord) contains(letter rune) bool {
	return strings.ContainsRune(that.Word, letter)
}

func (that hiddenWord) occurrences(letter rune) int {
	return strings.Count(that.Word, string(letter))
}

func (that *hiddenWord) try(letter rune) {
	that.Attempted += string(letter)
}

func (that hiddenWord) solved() bool {
	for _, r := range that.Word {
		if !that.revealed(r) {
			return false
		}
	}

	return true
}

// fractionRevealed - share of distinct letters guessed, rounded to two decimals.
func (that hiddenWord) fractionRevealed() float64 {
	letters := map[rune]bool{}
	for _, r := range that.Word {
		if unicode.IsLetter(r) {
			letters[r] = that.revealed(r)
		}
	}

	if len(letters) == 0 {
		return 1
	}

	guessed := 0
	for _, ok := range letters {
		if ok {
			guessed++
		}
	}

	return math.Round(float64(guessed)/float64(len(letters))*100) / 100
}

// parseLetter - upper-cased single letter or the corrective message for the input.
func parseLetter(text string) (rune, string) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) != 1 {
		return 0, msgOneLetter
	}

	letter, _ := utf8.DecodeRuneInString(text)
	if !unicode.IsLetter(letter) {
		return 0, msgOnlyLetters
	}

	return unicode.ToUpper(letter), ""
}

type Hangman struct {
	rng         *rand.Rand
	startWrongs int
	state       State
	difficulty  int
	word        hiddenWord
	wrongsLeft  int
	score       float64
}

type hangmanSnapshot struct {
	State      State      `json:"state"`
	Difficulty int        `json:"difficulty"`
	Word       hiddenWord `json:"word"`
	WrongsLeft int        `json:"wrongs_left"`
	Score      float64    `json:"score"`
}

func NewHangman(rng *rand.Rand, allowedWrongs int) *Hangman {
	if allowedWrongs <= 0 {
		allowedWrongs = defaultAllowedWrongs
	}

	return &Hangman{
		rng:         rng,
		startWrongs: allowedWrongs,
		state:       StateDormant,
	}
}

func (that *Hangman) Kind() string {
	return KindHangman
}

func (that *Hangman) State() State {
	return that.state
}

func (that *Hangman) Start(_ context.Context) entity.Result {
	that.score = 0
	that.wrongsLeft = that.startWrongs
	that.word = hiddenWord{}
	that.difficulty = 0
	that.state = StateAwaitingDifficulty

	return entity.NewResult(
		entity.NewText("A new game of Hangman has been started!"),
		entity.NewText(msgHangmanLevel),
	)
}

func (that *Hangman) End() entity.Result {
	that.state = StateDormant

	return ended()
}

func (that *Hangman) HandleRestartChoice(ctx context.Context, text string) entity.Result {
	return restartChoice(ctx, text, that.Start, that.End)
}

func (that *Hangman) ParseAndReply(ctx context.Context, in entity.Input) entity.Result {
	switch that.state {
	case StateAwaitingDifficulty:
		return that.setDifficulty(in.Text)
	case StateAwaitingGuess:
		return that.guess(in.Text)
	case StateAwaitingRestart:
		return that.HandleRestartChoice(ctx, in.Text)
	default:
		return entity.Result{}
	}
}

func (that *Hangman) setDifficulty(text string) entity.Result {
	difficulty, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || difficulty < 1 || difficulty > len(wordLists) {
		return entity.NewResult(entity.NewText(msgHangmanBadPick))
	}

	words := wordLists[difficulty]
	that.difficulty = difficulty
	that.word = hiddenWord{Word: words[that.rng.IntN(len(words))]}
	that.state = StateAwaitingGuess

	return entity.NewResult(
		entity.NewText(fmt.Sprintf("Difficulty is set to %d. Guess the word one letter at a time!", difficulty)),
		entity.NewText(that.progress()),
	)
}

func (that *Hangman) progress() string {
	return fmt.Sprintf("%s\nAllowed wrong guesses left: %d", that.word, that.wrongsLeft)
}

func (that *Hangman) guess(text string) entity.Result {
	letter, problem := parseLetter(text)
	if problem != "" {
		return entity.NewResult(entity.NewText(problem))
	}

	if that.word.tried(letter) {
		return entity.NewResult(entity.NewText(fmt.Sprintf("You have guessed this letter before.\n%s", that.word)))
	}

	that.word.try(letter)

	var result entity.Result
	if !that.word.contains(letter) {
		that.wrongsLeft--
		result.Text("Wrong guess!")
	}

	if that.wrongsLeft <= 0 {
		that.score += that.word.fractionRevealed() * float64(that.difficulty) * 10
		that.state = StateAwaitingRestart
		result.Text(fmt.Sprintf("Game over! The word was %s. Your final score is %s.", that.word.Word, formatScore(that.score)))
		result.Text(msgPlayAgain)
		result.Outcome = &entity.Outcome{Result: entity.OutcomeScore, Score: that.score}

		return result
	}

	result.Text(that.progress())

	if that.word.solved() {
		that.score += float64(that.difficulty) * 10
		that.wrongsLeft += bonusWrongs
		that.state = StateAwaitingDifficulty
		result.Text(fmt.Sprintf("Nice answer! Your score is %s and you have %d wrong guesses left.", formatScore(that.score), that.wrongsLeft))
		result.Text(msgHangmanLevel)
	}

	return result
}

func formatScore(score float64) string {
	return strconv.FormatFloat(math.Round(score*100)/100, 'f', -1, 64)
}

func (that *Hangman) MarshalJSON() ([]byte, error) {
	return marshalSnapshot(KindHangman, hangmanSnapshot{
		State:      that.state,
		Difficulty: that.difficulty,
		Word:       that.word,
		WrongsLeft: that.wrongsLeft,
		Score:      that.score,
	})
}

func (that *Hangman) UnmarshalJSON(data []byte) error {
	var snapshot hangmanSnapshot
	if err := unmarshalSnapshot(KindHangman, data, &snapshot); err != nil {
		return err
	}

	that.state = snapshot.State
	that.difficulty = snapshot.Difficulty
	that.word = snapshot.Word
	that.wrongsLeft = snapshot.WrongsLeft
	that.score = snapshot.Score

	return nil
}
