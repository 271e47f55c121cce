package app

import (
	"fmt"

	"witchhunt/internal/domain"
)

// Action is one player-submitted move. The set is closed: Apply dispatches
// with an exhaustive type switch and anything out of precondition comes back
// wrapped in ErrRejected for the caller to drop silently.
type Action interface{ isAction() }

// AccuseStart opens an accusation against a living target.
type AccuseStart struct{ TargetID string }

// AccuseAccept is the accused conceding to face the accusation.
type AccuseAccept struct{}

// AccuseCancel withdraws the pending accusation.
type AccuseCancel struct{}

// AccuseReveal flips one chosen hidden card of the accused.
type AccuseReveal struct{ CardID string }

// NightConfirm marks the actor as having moved this night step. The optional
// fake target feeds the decoy tally that keeps real votes indistinguishable.
type NightConfirm struct{ FakeTargetID string }

// KillVote picks tonight's kill target. The latest vote wins.
type KillVote struct{ TargetID string }

// BlackCatVote places the black cat marker on the first night.
type BlackCatVote struct{ TargetID string }

// GuardVote sets the constable's protection target.
type GuardVote struct{ TargetID string }

// GuardSkip declines protection. Small-game mode only.
type GuardSkip struct{}

// SelfReveal flips one of the actor's own non-witch cards for night immunity.
type SelfReveal struct{ CardID string }

// ConfessionPass declines to confess.
type ConfessionPass struct{}

// ShuffleHand re-randomizes the hidden portion of a hand. An empty target
// means the actor's own hand; a ghost's hand may be shuffled on its behalf.
type ShuffleHand struct{ TargetID string }

// NightDamagePick names the cards the night-kill target loses. Small-game
// mode only, and only valid for the designated chooser.
type NightDamagePick struct{ CardIDs []string }

// TriggerConspiracy enters the conspiracy ritual. Host only, from day.
type TriggerConspiracy struct{}

// ConspiracySelect records the card taken from the left neighbor. ForID picks
// on behalf of a ghost seat when set.
type ConspiracySelect struct {
	CardID string
	ForID  string
}

func (AccuseStart) isAction()       {}
func (AccuseAccept) isAction()      {}
func (AccuseCancel) isAction()      {}
func (AccuseReveal) isAction()      {}
func (NightConfirm) isAction()      {}
func (KillVote) isAction()          {}
func (BlackCatVote) isAction()      {}
func (GuardVote) isAction()         {}
func (GuardSkip) isAction()         {}
func (SelfReveal) isAction()        {}
func (ConfessionPass) isAction()    {}
func (ShuffleHand) isAction()       {}
func (NightDamagePick) isAction()   {}
func (TriggerConspiracy) isAction() {}
func (ConspiracySelect) isAction()  {}

// Apply validates and applies one action, returning the next state plus the
// events to fan out. A rejected action returns the input state untouched.
func (s *Service) Apply(g *domain.Game, actorID string, action Action) (*domain.Game, []Event, error) {
	if g.Phase == domain.PhaseLobby || g.Phase == domain.PhaseGameOver {
		return g, nil, reject("no actions in phase %s", g.Phase)
	}

	next := g.Clone()
	actor := next.PlayerByID(actorID)
	if actor == nil {
		return g, nil, reject("unknown actor %s", actorID)
	}

	var err error
	switch a := action.(type) {
	case AccuseStart:
		err = s.accuseStart(next, actor, a)
	case AccuseAccept:
		err = s.accuseAccept(next, actor)
	case AccuseCancel:
		err = s.accuseCancel(next, actor)
	case AccuseReveal:
		err = s.accuseReveal(next, actor, a)
	case NightConfirm:
		err = s.nightConfirm(next, actor, a)
	case KillVote:
		err = s.killVote(next, actor, a)
	case BlackCatVote:
		err = s.blackCatVote(next, actor, a)
	case GuardVote:
		err = s.guardVote(next, actor, a)
	case GuardSkip:
		err = s.guardSkip(next, actor)
	case SelfReveal:
		err = s.selfReveal(next, actor, a)
	case ConfessionPass:
		err = s.confessionPass(next, actor)
	case ShuffleHand:
		err = s.shuffleHand(next, actor, a)
	case NightDamagePick:
		err = s.nightDamagePick(next, actor, a)
	case TriggerConspiracy:
		err = s.triggerConspiracy(next, actor)
	case ConspiracySelect:
		err = s.conspiracySelect(next, actor, a)
	default:
		err = reject("unsupported action %T", action)
	}
	if err != nil {
		return g, nil, err
	}

	s.checkWin(next)
	return next, s.stateEvents(next), nil
}

func reject(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrRejected, fmt.Sprintf(format, args...))
}

// shuffleHand reorders the hidden cards of the chosen hand in place. Players
// shuffle their own hand; ghost hands may be shuffled by any living human.
func (s *Service) shuffleHand(g *domain.Game, actor *domain.Player, a ShuffleHand) error {
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}

	target := actor
	if a.TargetID != "" && a.TargetID != actor.ID {
		target = g.PlayerByID(a.TargetID)
		if target == nil || !target.IsGhost || target.IsDead {
			return reject("only ghost hands may be shuffled for another seat")
		}
	}
	if target.IsDead {
		return reject("hand already face up")
	}
	domain.ShuffleHidden(target, s.rng)
	return nil
}
