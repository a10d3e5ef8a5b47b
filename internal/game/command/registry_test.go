package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry_ResolvesNamesAndAliases(t *testing.T) {
	r := DefaultRegistry()
	cases := map[string]string{
		"join":   HandlerJoin,
		"say":    HandlerSay,
		"'":      HandlerSay,
		"move":   HandlerMove,
		"m":      HandlerMove,
		"choose": HandlerChoose,
		"c":      HandlerChoose,
		"word":   HandlerWord,
		"guess":  HandlerGuess,
		"g":      HandlerGuess,
		"reset":  HandlerReset,
		"leave":  HandlerLeave,
		"help":   HandlerHelp,
		"?":      HandlerHelp,
		"quit":   HandlerQuit,
		"exit":   HandlerQuit,
	}
	for name, handler := range cases {
		cmd, ok := r.Resolve(name)
		require.True(t, ok, name)
		assert.Equal(t, handler, cmd.Handler, name)
	}

	_, ok := r.Resolve("attack")
	assert.False(t, ok)
}

func TestCommands_RegistrationOrder(t *testing.T) {
	cmds := DefaultRegistry().Commands()
	require.Len(t, cmds, len(BuiltinCommands()))
	assert.Equal(t, "join", cmds[0].Name)
	assert.Equal(t, "quit", cmds[len(cmds)-1].Name)
}

func TestNewRegistry_Collisions(t *testing.T) {
	_, err := NewRegistry([]Command{{Name: "go"}, {Name: "go"}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "go", Aliases: []string{"g"}}, {Name: "guess", Aliases: []string{"g"}}})
	assert.Error(t, err)

	_, err = NewRegistry([]Command{{Name: "go", Aliases: []string{"x"}}, {Name: "x"}})
	assert.Error(t, err)
}

func TestBind(t *testing.T) {
	r := DefaultRegistry()

	inv, err := r.Bind("m 4")
	require.NoError(t, err)
	assert.Equal(t, HandlerMove, inv.Command.Handler)
	assert.Equal(t, []string{"4"}, inv.Args)

	inv, err = r.Bind("'gl hf")
	require.NoError(t, err)
	assert.Equal(t, HandlerSay, inv.Command.Handler)
	assert.Equal(t, "gl hf", inv.RawArgs)

	_, err = r.Bind("join hangman")
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "join <game> <username> [room]")

	_, err = r.Bind("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	inv, err = r.Bind("")
	require.NoError(t, err)
	assert.Nil(t, inv.Command)
}

func TestPropertyBind_UnknownWordsRejected(t *testing.T) {
	r := DefaultRegistry()
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{6,12}`).Draw(t, "word")
		if _, ok := r.Resolve(word); ok {
			t.Skip("drew a real command")
		}
		if _, err := r.Bind(word + " x"); err == nil {
			t.Fatalf("unknown command %q bound", word)
		}
	})
}
