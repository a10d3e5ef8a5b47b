package choice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseChoice(t *testing.T) {
	cases := map[string]Choice{
		"rock":     Rock,
		" Paper ":  Paper,
		"SCISSORS": Scissors,
		"pedra":    Rock,
		"papel":    Paper,
		"Tesoura":  Scissors,
	}
	for raw, want := range cases {
		got, err := ParseChoice(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"", "lizard", "r"} {
		_, err := ParseChoice(raw)
		assert.ErrorIs(t, err, ErrInvalidChoice, raw)
	}
}

func TestBeatsCycle(t *testing.T) {
	assert.True(t, Rock.Beats(Scissors))
	assert.True(t, Scissors.Beats(Paper))
	assert.True(t, Paper.Beats(Rock))
	for _, c := range []Choice{Rock, Paper, Scissors} {
		assert.False(t, c.Beats(c))
	}
	assert.False(t, Scissors.Beats(Rock))
}

func TestRockBeatsScissors(t *testing.T) {
	g := New("c1", "c2")

	res, err := g.Submit("c1", "rock")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Ready)
	assert.Nil(t, res.Round)

	res, err = g.Submit("c2", "scissors")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Ready)
	require.NotNil(t, res.Round)
	assert.Equal(t, "c1", res.Round.Winner)
	assert.Equal(t, [2]Choice{Rock, Scissors}, res.Round.Choices)
	assert.Equal(t, map[string]int{"c1": 1, "c2": 0}, res.Round.Scores)
	assert.Equal(t, 1, res.Round.Round)

	s := g.Snapshot()
	assert.Equal(t, 0, s.Ready, "choices are cleared once the round resolves")
	assert.Equal(t, [2]bool{false, false}, s.Chosen)
	assert.Equal(t, 1, s.Rounds)
}

func TestSecondPlayerWins(t *testing.T) {
	g := New("c1", "c2")
	_, err := g.Submit("c2", "paper")
	require.NoError(t, err)
	res, err := g.Submit("c1", "rock")
	require.NoError(t, err)
	require.NotNil(t, res.Round)
	assert.Equal(t, "c2", res.Round.Winner)
	assert.Equal(t, 1, res.Round.Scores["c2"])
}

func TestDrawLeavesScores(t *testing.T) {
	g := New("c1", "c2")
	_, _ = g.Submit("c1", "paper")
	res, err := g.Submit("c2", "papel")
	require.NoError(t, err)
	require.NotNil(t, res.Round)
	assert.Equal(t, Draw, res.Round.Winner)
	assert.Equal(t, map[string]int{"c1": 0, "c2": 0}, res.Round.Scores)
}

func TestSubmitRejections(t *testing.T) {
	g := New("c1", "c2")

	_, err := g.Submit("stranger", "rock")
	assert.ErrorIs(t, err, ErrNotAPlayer)

	_, err = g.Submit("c1", "lizard")
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, 0, g.Snapshot().Ready)

	_, err = g.Submit("c1", "rock")
	require.NoError(t, err)
	_, err = g.Submit("c1", "paper")
	assert.ErrorIs(t, err, ErrAlreadyChosen)
	assert.Equal(t, 1, g.Snapshot().Ready)

	res, err := g.Submit("c2", "paper")
	require.NoError(t, err)
	assert.Equal(t, Rock, res.Round.Choices[0], "rejected resubmission must not overwrite")
}

func TestReset(t *testing.T) {
	g := New("c1", "c2")
	_, _ = g.Submit("c1", "rock")
	_, _ = g.Submit("c2", "scissors")
	_, _ = g.Submit("c2", "rock")

	g.Reset()
	s := g.Snapshot()
	assert.Equal(t, map[string]int{"c1": 0, "c2": 0}, s.Scores)
	assert.Equal(t, 0, s.Ready)
	assert.Equal(t, 0, s.Rounds)
	assert.Equal(t, [2]bool{false, false}, s.Chosen)
	assert.Equal(t, [2]string{"c1", "c2"}, s.Players)

	_, err := g.Submit("c2", "rock")
	assert.NoError(t, err, "reset clears the pending choice")
}

func TestPropertyScoreSumMatchesDecisiveRounds(t *testing.T) {
	choices := []string{"rock", "paper", "scissors"}
	rapid.Check(t, func(t *rapid.T) {
		g := New("c1", "c2")
		rounds := rapid.IntRange(0, 25).Draw(t, "rounds")
		decisive := 0
		for i := 0; i < rounds; i++ {
			before := g.Snapshot().Scores
			first := rapid.SampledFrom([]string{"c1", "c2"}).Draw(t, "first")
			second := "c2"
			if first == "c2" {
				second = "c1"
			}
			if _, err := g.Submit(first, rapid.SampledFrom(choices).Draw(t, "a")); err != nil {
				t.Fatalf("first submit: %v", err)
			}
			if g.Snapshot().Ready != 1 {
				t.Fatalf("readiness after one submission = %d", g.Snapshot().Ready)
			}
			res, err := g.Submit(second, rapid.SampledFrom(choices).Draw(t, "b"))
			if err != nil {
				t.Fatalf("second submit: %v", err)
			}
			if res.Round == nil {
				t.Fatalf("round did not resolve at readiness 2")
			}
			if res.Round.Winner == Draw {
				if res.Round.Scores["c1"] != before["c1"] || res.Round.Scores["c2"] != before["c2"] {
					t.Fatalf("draw changed scores %v -> %v", before, res.Round.Scores)
				}
			} else {
				decisive++
			}
			if s := g.Snapshot(); s.Ready != 0 || s.Chosen[0] || s.Chosen[1] {
				t.Fatalf("round left half-resolved: %+v", s)
			}
		}
		scores := g.Snapshot().Scores
		if scores["c1"]+scores["c2"] != decisive {
			t.Fatalf("score sum %d != decisive rounds %d", scores["c1"]+scores["c2"], decisive)
		}
		if g.Snapshot().Rounds != rounds {
			t.Fatalf("round counter %d != %d", g.Snapshot().Rounds, rounds)
		}
	})
}

func TestPropertyResubmissionDoesNotMutate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New("c1", "c2")
		who := rapid.SampledFrom([]string{"c1", "c2"}).Draw(t, "who")
		first := rapid.SampledFrom([]string{"rock", "paper", "scissors"}).Draw(t, "first")
		again := rapid.SampledFrom([]string{"rock", "paper", "scissors", "lizard"}).Draw(t, "again")

		if _, err := g.Submit(who, first); err != nil {
			t.Fatalf("submit: %v", err)
		}
		before := g.Snapshot()
		if _, err := g.Submit(who, again); err == nil {
			t.Fatalf("resubmission accepted")
		}
		after := g.Snapshot()
		if after.Ready != before.Ready || after.Chosen != before.Chosen || after.Rounds != before.Rounds {
			t.Fatalf("resubmission mutated state: %+v -> %+v", before, after)
		}
	})
}
