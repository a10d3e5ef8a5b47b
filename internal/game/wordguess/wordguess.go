// Package wordguess implements the asymmetric word-guess game (hangman).
//
// One player sets a secret word, the other guesses it letter by letter.
// The secret leaves the package only in a GuessResult once the game is over.
package wordguess

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxWrongGuesses is the number of misses that ends the game for the setter.
const MaxWrongGuesses = 6

// MinWordLength is the shortest acceptable secret word.
const MinWordLength = 3

// Blank is the display symbol for an unrevealed letter.
const Blank = "_"

var (
	// ErrNotSetter is returned when someone other than the setter sets the word.
	ErrNotSetter = errors.New("only the word setter can do that")
	// ErrWordAlreadySet is returned for a second SetWord in the same game.
	ErrWordAlreadySet = errors.New("the secret word is already set")
	// ErrInvalidWord is returned for a word that is not all letters or is too short.
	ErrInvalidWord = errors.New("the word must contain only letters and be at least 3 long")
	// ErrNotGuesser is returned when someone other than the guesser guesses.
	ErrNotGuesser = errors.New("only the guesser can guess letters")
	// ErrWordNotSet is returned for a guess before the word is set.
	ErrWordNotSet = errors.New("waiting for the secret word to be set")
	// ErrGameAlreadyOver is returned for a guess after the game ended.
	ErrGameAlreadyOver = errors.New("the game is already over")
	// ErrInvalidLetter is returned when the guess is not exactly one letter.
	ErrInvalidLetter = errors.New("guess exactly one letter")
	// ErrLetterAlreadyGuessed is returned for a repeated letter.
	ErrLetterAlreadyGuessed = errors.New("that letter was already guessed")
)

// Game is the authoritative word-guess state for one room.
type Game struct {
	setter  string
	guesser string
	secret  []rune
	guessed []rune
	seen    map[rune]bool
	wrong   int
	over    bool
	winner  string
}

// SetResult describes an accepted secret word.
type SetResult struct {
	Display string
	Length  int
}

// GuessResult describes an accepted guess.
type GuessResult struct {
	Letter  string
	Hit     bool
	Display string
	Wrong   int
	Guessed []string
	Over    bool
	// Winner is the setter or guesser id once Over is true.
	Winner string
	// Secret is set only when Over is true.
	Secret string
}

// Snapshot is a copy of the public state. It never carries the secret.
type Snapshot struct {
	Setter   string
	Guesser  string
	WordSet  bool
	Display  string
	Length   int
	Guessed  []string
	Wrong    int
	MaxWrong int
	Over     bool
	Winner   string
}

// New creates a game where setter chooses the word and guesser guesses it.
//
// Precondition: setter and guesser must be distinct, non-empty connection ids.
func New(setter, guesser string) *Game {
	return &Game{
		setter:  setter,
		guesser: guesser,
		seen:    make(map[rune]bool),
	}
}

// SetWord stores the secret word after trimming and upper-casing it.
//
// Postcondition: On success the display has one blank per letter, no letters
// are guessed and the game is not over. On error the state is unchanged.
func (g *Game) SetWord(connID, word string) (SetResult, error) {
	if connID != g.setter {
		return SetResult{}, ErrNotSetter
	}
	if len(g.secret) > 0 {
		return SetResult{}, ErrWordAlreadySet
	}
	normalized := strings.ToUpper(strings.TrimSpace(word))
	if utf8.RuneCountInString(normalized) < MinWordLength || !allLetters(normalized) {
		return SetResult{}, fmt.Errorf("%q: %w", word, ErrInvalidWord)
	}

	g.secret = []rune(normalized)
	g.guessed = nil
	g.seen = make(map[rune]bool)
	g.wrong = 0
	g.over = false
	g.winner = ""
	return SetResult{Display: g.display(), Length: len(g.secret)}, nil
}

// Guess reveals every occurrence of letter, or counts a miss.
//
// Postcondition: On error the state is unchanged. The game is over exactly
// when no blanks remain (guesser wins) or the misses reach MaxWrongGuesses
// (setter wins); a full reveal is checked first.
func (g *Game) Guess(connID, letter string) (GuessResult, error) {
	if connID != g.guesser {
		return GuessResult{}, ErrNotGuesser
	}
	if len(g.secret) == 0 {
		return GuessResult{}, ErrWordNotSet
	}
	if g.over {
		return GuessResult{}, ErrGameAlreadyOver
	}
	normalized := strings.ToUpper(strings.TrimSpace(letter))
	if utf8.RuneCountInString(normalized) != 1 || !allLetters(normalized) {
		return GuessResult{}, fmt.Errorf("%q: %w", letter, ErrInvalidLetter)
	}
	r, _ := utf8.DecodeRuneInString(normalized)
	if g.seen[r] {
		return GuessResult{}, fmt.Errorf("%s: %w", normalized, ErrLetterAlreadyGuessed)
	}

	g.seen[r] = true
	g.guessed = append(g.guessed, r)
	hit := false
	for _, s := range g.secret {
		if s == r {
			hit = true
			break
		}
	}
	if !hit {
		g.wrong++
	}

	if g.blanks() == 0 {
		g.over = true
		g.winner = g.guesser
	} else if g.wrong >= MaxWrongGuesses {
		g.over = true
		g.winner = g.setter
	}

	res := GuessResult{
		Letter:  normalized,
		Hit:     hit,
		Display: g.display(),
		Wrong:   g.wrong,
		Guessed: g.guessedStrings(),
		Over:    g.over,
		Winner:  g.winner,
	}
	if g.over {
		res.Secret = string(g.secret)
	}
	return res, nil
}

// Reset starts a fresh game with the setter and guesser roles swapped.
func (g *Game) Reset() {
	*g = *New(g.guesser, g.setter)
}

// Snapshot returns a copy of the public state.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Setter:   g.setter,
		Guesser:  g.guesser,
		WordSet:  len(g.secret) > 0,
		Display:  g.display(),
		Length:   len(g.secret),
		Guessed:  g.guessedStrings(),
		Wrong:    g.wrong,
		MaxWrong: MaxWrongGuesses,
		Over:     g.over,
		Winner:   g.winner,
	}
}

// Setter returns the connection id of the word setter.
func (g *Game) Setter() string { return g.setter }

// Guesser returns the connection id of the guesser.
func (g *Game) Guesser() string { return g.guesser }

func (g *Game) display() string {
	symbols := make([]string, len(g.secret))
	for i, r := range g.secret {
		if g.seen[r] {
			symbols[i] = string(r)
		} else {
			symbols[i] = Blank
		}
	}
	return strings.Join(symbols, " ")
}

func (g *Game) blanks() int {
	n := 0
	for _, r := range g.secret {
		if !g.seen[r] {
			n++
		}
	}
	return n
}

func (g *Game) guessedStrings() []string {
	out := make([]string, len(g.guessed))
	for i, r := range g.guessed {
		out[i] = string(r)
	}
	return out
}

func allLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
