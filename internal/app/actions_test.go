package app

import (
	"errors"
	"testing"

	"witchhunt/internal/domain"
)

func TestApplyRejectsOutsideActivePhases(t *testing.T) {
	svc := testService(1)

	lobby := domain.NewGame()
	if _, _, err := svc.Apply(lobby, "p1", AccuseStart{TargetID: "p2"}); !errors.Is(err, ErrRejected) {
		t.Fatalf("lobby err = %v, want ErrRejected", err)
	}

	over := playingGame()
	over.Phase = domain.PhaseGameOver
	if _, _, err := svc.Apply(over, "p1", AccuseStart{TargetID: "p2"}); !errors.Is(err, ErrRejected) {
		t.Fatalf("game over err = %v, want ErrRejected", err)
	}
}

func TestApplyRejectsUnknownActor(t *testing.T) {
	svc := testService(1)
	g := playingGame()

	next, _, err := svc.Apply(g, "nobody", AccuseStart{TargetID: "p2"})
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}
	if next != g {
		t.Fatal("a rejection must hand back the input state")
	}
}

func TestApplyLeavesInputUntouched(t *testing.T) {
	svc := testService(1)
	g := playingGame()

	next, _, err := svc.Apply(g, "p1", AccuseStart{TargetID: "p2"})
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if next == g {
		t.Fatal("a successful apply must return a fresh state")
	}
	if g.Accusation != nil {
		t.Fatal("input state was mutated")
	}
	if next.Accusation == nil {
		t.Fatal("result state is missing the accusation")
	}
}

func TestShuffleHandKeepsRevealedPositions(t *testing.T) {
	svc := testService(5)
	g := playingGame()
	p1 := g.PlayerByID("p1")
	p1.Hand = hand("p1", domain.RoleNotAWitch, domain.RoleNotAWitch, domain.RoleConstable, domain.RoleNotAWitch)
	p1.Hand[1].Revealed = true

	next, _, err := svc.Apply(g, "p1", ShuffleHand{})
	if err != nil {
		t.Fatalf("shuffle error: %v", err)
	}
	got := next.PlayerByID("p1").Hand
	if got[1].ID != "p1-c2" || !got[1].Revealed {
		t.Fatalf("revealed card moved: %+v", got[1])
	}
	if len(got) != 4 {
		t.Fatalf("hand size = %d, want 4", len(got))
	}
}

func TestShuffleHandTargets(t *testing.T) {
	svc := testService(5)

	g := playingGame()
	if _, _, err := svc.Apply(g, "p1", ShuffleHand{TargetID: "p2"}); !errors.Is(err, ErrRejected) {
		t.Fatalf("shuffling another human's hand: err = %v, want ErrRejected", err)
	}

	sg := smallGame()
	if _, _, err := svc.Apply(sg, "p1", ShuffleHand{TargetID: "g1"}); err != nil {
		t.Fatalf("shuffling a ghost hand: %v", err)
	}
}
