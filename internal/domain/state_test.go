package domain

import (
	"fmt"
	"testing"
)

func TestCloneIsDeep(t *testing.T) {
	g := NewGame()
	g.Phase = PhaseDay
	g.Players = testPlayers(3)
	g.Players[0].Hand = cards("a", RoleWitch, RoleNotAWitch)
	g.WitchVotes = []WitchVote{{VoterID: "p1", TargetID: "p2"}}
	g.Accusation = &Accusation{AccuserID: "p1", TargetID: "p2"}
	g.NightDamage = &NightDamage{TargetID: "p2", ChooserID: "p1", PendingReveal: true}
	g.ConspiracyPicks["p1"] = "a-0"
	g.NightConfirms["p1"] = true
	g.FakeVotes["p2"] = 1
	g.AddLog("before")

	clone := g.Clone()

	clone.Players[0].Hand[0].Revealed = true
	clone.Players[0].IsDead = true
	clone.WitchVotes[0].TargetID = "p3"
	clone.Accusation.Accepted = true
	clone.NightDamage.PendingReveal = false
	clone.ConspiracyPicks["p2"] = "b-0"
	clone.NightConfirms["p2"] = true
	clone.FakeVotes["p2"] = 9
	clone.AddLog("after")
	clone.Phase = PhaseGameOver

	if g.Players[0].Hand[0].Revealed || g.Players[0].IsDead {
		t.Fatalf("clone aliases player state")
	}
	if g.WitchVotes[0].TargetID != "p2" {
		t.Fatalf("clone aliases witch votes")
	}
	if g.Accusation.Accepted {
		t.Fatalf("clone aliases accusation")
	}
	if !g.NightDamage.PendingReveal {
		t.Fatalf("clone aliases night damage")
	}
	if _, ok := g.ConspiracyPicks["p2"]; ok {
		t.Fatalf("clone aliases conspiracy picks")
	}
	if g.NightConfirms["p2"] || g.FakeVotes["p2"] != 1 {
		t.Fatalf("clone aliases confirmation maps")
	}
	if len(g.Log) != 1 || g.Phase != PhaseDay {
		t.Fatalf("clone aliases log or phase")
	}
}

func TestAddLogCapsEntries(t *testing.T) {
	g := NewGame()
	for i := 0; i < maxLogEntries+10; i++ {
		g.AddLog(fmt.Sprintf("line %d", i))
	}
	if len(g.Log) != maxLogEntries {
		t.Fatalf("log size = %d, want %d", len(g.Log), maxLogEntries)
	}
	if g.Log[0].Message != "line 10" {
		t.Fatalf("oldest surviving line = %q, want line 10", g.Log[0].Message)
	}
}

func TestPlayerLookups(t *testing.T) {
	g := NewGame()
	g.Players = SynthesizeGhosts(testPlayers(2), nil)

	if p := g.PlayerByID("p2"); p == nil || p.Name != "Player 2" {
		t.Fatalf("PlayerByID(p2) = %v", p)
	}
	if p := g.PlayerByID("missing"); p != nil {
		t.Fatalf("PlayerByID(missing) = %v, want nil", p)
	}
	if p := g.PlayerByUserID("user-1"); p == nil || p.ID != "p1" {
		t.Fatalf("PlayerByUserID(user-1) = %v", p)
	}
	// Ghosts have empty user ids; an empty query must not match them.
	if p := g.PlayerByUserID(""); p != nil {
		t.Fatalf("PlayerByUserID(\"\") = %v, want nil", p)
	}
}

func TestCardHelpers(t *testing.T) {
	p := &Player{ID: "p1", Hand: cards("x", RoleWitch, RoleNotAWitch, RoleConstable)}

	if p.HiddenCount() != 3 {
		t.Fatalf("hidden = %d, want 3", p.HiddenCount())
	}
	if !p.HoldsUnrevealed(RoleWitch) {
		t.Fatalf("should hold an unrevealed witch")
	}
	if p.FullyRevealed() {
		t.Fatalf("fresh hand cannot be fully revealed")
	}

	card := p.CardByID("x-0")
	if card == nil {
		t.Fatalf("CardByID(x-0) = nil")
	}
	card.Revealed = true
	if p.HiddenCount() != 2 || p.HoldsUnrevealed(RoleWitch) {
		t.Fatalf("CardByID must point into the hand")
	}

	p.RevealAll()
	if !p.FullyRevealed() || p.HiddenCount() != 0 {
		t.Fatalf("RevealAll left hidden cards")
	}

	empty := &Player{ID: "p2"}
	if empty.FullyRevealed() {
		t.Fatalf("a card-less player is not fully revealed")
	}
}
