package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse_Empty(t *testing.T) {
	result := Parse("   ")
	assert.Equal(t, "", result.Command)
	assert.Nil(t, result.Args)
}

func TestParse_SingleWord(t *testing.T) {
	result := Parse("RESET")
	assert.Equal(t, "reset", result.Command)
	assert.Nil(t, result.Args)
	assert.Equal(t, "", result.RawArgs)
}

func TestParse_WithArgs(t *testing.T) {
	result := Parse("join  tic-tac-toe   Ana ")
	assert.Equal(t, "join", result.Command)
	assert.Equal(t, []string{"tic-tac-toe", "Ana"}, result.Args)
	assert.Equal(t, "tic-tac-toe   Ana", result.RawArgs)
}

func TestParse_ArgsKeepCase(t *testing.T) {
	result := Parse("Say Hello There")
	assert.Equal(t, "say", result.Command)
	assert.Equal(t, "Hello There", result.RawArgs)
}

func TestParse_SayPrefix(t *testing.T) {
	result := Parse("'good game")
	assert.Equal(t, "'", result.Command)
	assert.Equal(t, "good game", result.RawArgs)
	assert.Equal(t, []string{"good", "game"}, result.Args)
}

func TestPropertyParse_CommandIsLowercaseFirstWord(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[A-Za-z]{1,10}`).Draw(t, "word")
		args := rapid.SliceOfN(rapid.StringMatching(`[a-z0-9]{1,6}`), 0, 4).Draw(t, "args")
		line := strings.Join(append([]string{word}, args...), " ")

		result := Parse(line)
		if result.Command != strings.ToLower(word) {
			t.Fatalf("command %q, want %q", result.Command, strings.ToLower(word))
		}
		if len(result.Args) != len(args) {
			t.Fatalf("args %v, want %v", result.Args, args)
		}
		if result.RawArgs != strings.Join(args, " ") {
			t.Fatalf("raw args %q", result.RawArgs)
		}
	})
}
