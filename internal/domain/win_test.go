package domain

import (
	"fmt"
	"testing"
)

func cards(prefix string, roles ...Role) []Card {
	out := make([]Card, len(roles))
	for i, r := range roles {
		out[i] = Card{ID: fmt.Sprintf("%s-%d", prefix, i), Role: r}
	}
	return out
}

func TestEvaluateWinnerStandard(t *testing.T) {
	tests := []struct {
		name string
		game func() *Game
		want Winner
	}{
		{
			name: "NoneBeforeDeal",
			game: func() *Game {
				g := NewGame()
				g.Players = testPlayers(4)
				return g
			},
			want: WinnerNone,
		},
		{
			name: "NoneMidGame",
			game: func() *Game {
				g := NewGame()
				g.Phase = PhaseDay
				g.Players = testPlayers(4)
				g.Players[0].Hand = cards("a", RoleWitch, RoleNotAWitch)
				g.Players[0].WitchAligned = true
				g.Players[1].Hand = cards("b", RoleConstable, RoleNotAWitch)
				g.Players[2].Hand = cards("c", RoleNotAWitch)
				g.Players[3].Hand = cards("d", RoleNotAWitch)
				return g
			},
			want: WinnerNone,
		},
		{
			name: "TownWhenWitchCardRevealed",
			game: func() *Game {
				g := NewGame()
				g.Phase = PhaseDay
				g.Players = testPlayers(4)
				g.Players[0].Hand = cards("a", RoleWitch, RoleNotAWitch)
				g.Players[0].Hand[0].Revealed = true
				g.Players[0].WitchAligned = true
				g.Players[1].Hand = cards("b", RoleNotAWitch)
				g.Players[2].Hand = cards("c", RoleNotAWitch)
				g.Players[3].Hand = cards("d", RoleConstable)
				return g
			},
			want: WinnerTown,
		},
		{
			name: "TownWhenWitchHolderDead",
			game: func() *Game {
				g := NewGame()
				g.Phase = PhaseDay
				g.Players = testPlayers(4)
				g.Players[0].Hand = cards("a", RoleWitch)
				g.Players[0].WitchAligned = true
				g.Players[0].IsDead = true
				g.Players[1].Hand = cards("b", RoleNotAWitch)
				g.Players[2].Hand = cards("c", RoleNotAWitch)
				g.Players[3].Hand = cards("d", RoleNotAWitch)
				return g
			},
			want: WinnerTown,
		},
		{
			name: "WitchesWhenAllLivingAligned",
			game: func() *Game {
				g := NewGame()
				g.Phase = PhaseDay
				g.Players = testPlayers(4)
				g.Players[0].Hand = cards("a", RoleWitch)
				g.Players[0].WitchAligned = true
				g.Players[1].Hand = cards("b", RoleNotAWitch)
				g.Players[1].WitchAligned = true
				g.Players[2].Hand = cards("c", RoleNotAWitch)
				g.Players[2].IsDead = true
				g.Players[3].Hand = cards("d", RoleNotAWitch)
				g.Players[3].IsDead = true
				return g
			},
			want: WinnerWitches,
		},
		{
			name: "TownHasPriorityOverWitches",
			game: func() *Game {
				g := NewGame()
				g.Phase = PhaseDay
				g.Players = testPlayers(2)
				g.Players[0].Hand = cards("a", RoleWitch)
				g.Players[0].Hand[0].Revealed = true
				g.Players[0].WitchAligned = true
				g.Players[1].Hand = cards("b", RoleNotAWitch)
				g.Players[1].WitchAligned = true
				return g
			},
			want: WinnerTown,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateWinner(tt.game()); got != tt.want {
				t.Fatalf("EvaluateWinner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func smallGameFixture() *Game {
	g := NewGame()
	g.Phase = PhaseDay
	g.SmallGame = true
	g.Players = testPlayers(2)
	g.Players = SynthesizeGhosts(g.Players, []string{"Ghost 1", "Ghost 2"})
	g.Players[0].Hand = cards("a", RoleWitch, RoleNotAWitch, RoleNotAWitch)
	g.Players[0].WitchAligned = true
	g.Players[1].Hand = cards("b", RoleNotAWitch, RoleNotAWitch, RoleNotAWitch)
	g.Players[2].Hand = cards("c", RoleConstable, RoleNotAWitch, RoleNotAWitch)
	g.Players[3].Hand = cards("d", RoleNotAWitch, RoleNotAWitch, RoleNotAWitch)
	return g
}

func TestEvaluateWinnerSmallGame(t *testing.T) {
	t.Run("NoneMidGame", func(t *testing.T) {
		if got := EvaluateWinner(smallGameFixture()); got != WinnerNone {
			t.Fatalf("EvaluateWinner() = %q, want none", got)
		}
	})

	t.Run("TownWhenLoneWitchRevealed", func(t *testing.T) {
		g := smallGameFixture()
		g.Players[0].Hand[0].Revealed = true
		if got := EvaluateWinner(g); got != WinnerTown {
			t.Fatalf("EvaluateWinner() = %q, want town", got)
		}
	})

	t.Run("TownEvenWhenWitchHolderIsDeadGhost", func(t *testing.T) {
		g := smallGameFixture()
		g.Players[0].Hand[0].Role = RoleNotAWitch
		g.Players[1].Hand[1].Role = RoleWitch
		g.Players[1].Hand[1].Revealed = true
		g.Players[1].IsDead = true
		// The dead ghost's fully hidden seat does not matter; the witch card is out.
		if got := EvaluateWinner(g); got != WinnerTown {
			t.Fatalf("EvaluateWinner() = %q, want town", got)
		}
	})

	t.Run("WitchesOnFullHandReveal", func(t *testing.T) {
		g := smallGameFixture()
		g.Players[3].RevealAll() // seat wiped out, witch card still hidden elsewhere
		if got := EvaluateWinner(g); got != WinnerWitches {
			t.Fatalf("EvaluateWinner() = %q, want witches", got)
		}
	})

	t.Run("WitchesWhenEveryLivingHumanAligned", func(t *testing.T) {
		g := smallGameFixture()
		g.Players[2].WitchAligned = true // the only other human seat
		if got := EvaluateWinner(g); got != WinnerWitches {
			t.Fatalf("EvaluateWinner() = %q, want witches", got)
		}
	})

	t.Run("TownHasPriorityOverFullWipe", func(t *testing.T) {
		g := smallGameFixture()
		g.Players[0].RevealAll() // wipes the seat and reveals the lone witch
		if got := EvaluateWinner(g); got != WinnerTown {
			t.Fatalf("EvaluateWinner() = %q, want town", got)
		}
	})
}

// Once a side has won, further reveals or deaths must never flip the result
// back to none or to the other side.
func TestEvaluateWinnerMonotonic(t *testing.T) {
	g := NewGame()
	g.Phase = PhaseDay
	g.Players = testPlayers(4)
	g.Players[0].Hand = cards("a", RoleWitch, RoleNotAWitch)
	g.Players[0].Hand[0].Revealed = true
	g.Players[0].WitchAligned = true
	g.Players[1].Hand = cards("b", RoleNotAWitch)
	g.Players[2].Hand = cards("c", RoleNotAWitch)
	g.Players[3].Hand = cards("d", RoleConstable)

	if got := EvaluateWinner(g); got != WinnerTown {
		t.Fatalf("EvaluateWinner() = %q, want town", got)
	}

	g.Players[0].IsDead = true
	g.Players[0].RevealAll()
	if got := EvaluateWinner(g); got != WinnerTown {
		t.Fatalf("after further death, EvaluateWinner() = %q, want town", got)
	}

	g.Players[3].RevealAll()
	g.Players[3].IsDead = true
	if got := EvaluateWinner(g); got != WinnerTown {
		t.Fatalf("after further reveals, EvaluateWinner() = %q, want town", got)
	}
}
