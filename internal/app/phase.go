package app

import (
	"witchhunt/internal/domain"
	"witchhunt/internal/ghost"
)

// AdvancePhase moves the authoritative state to the next phase on the host's
// signal, running the mode-dependent automatic branches along the way.
func (s *Service) AdvancePhase(g *domain.Game, actorID string) (*domain.Game, []Event, error) {
	actor := g.PlayerByID(actorID)
	if actor == nil || !actor.IsHost {
		return g, nil, ErrNotHost
	}

	next := g.Clone()
	switch next.Phase {
	case domain.PhaseSetup:
		s.enterNightStep(next, domain.PhaseNightInitialWitch)
		// With no human witch the engine places the black cat itself.
		// Silently: a log line would give the ghost's role away.
		if next.SmallGame && ghost.OnlyGhostsAreWitches(next.Players) {
			if target := ghost.RandomLivingHuman(s.rng, next.Players); target != nil {
				for _, p := range next.Players {
					p.HasBlackCat = false
				}
				target.HasBlackCat = true
			}
		}

	case domain.PhaseNightInitialWitch:
		s.finishNight(next)

	case domain.PhaseDay:
		s.enterNightStep(next, domain.PhaseNightWitchVote)
		// Same silent branch as the first night, aimed at the kill target.
		if next.SmallGame && ghost.OnlyGhostsAreWitches(next.Players) {
			if target := ghost.RandomLivingHuman(s.rng, next.Players); target != nil {
				next.NightKillTargetID = target.ID
			}
		}

	case domain.PhaseNightWitchVote:
		if anyHiddenConstable(next) {
			s.enterNightStep(next, domain.PhaseNightConstable)
		} else {
			next.AddLog("No Constable to protect tonight.")
			s.enterNightStep(next, domain.PhaseNightConfession)
		}

	case domain.PhaseNightConstable:
		if next.ConstableGuardID == "" && ghost.HoldsHiddenConstable(next.Players) {
			next.ConstableGuardID = domain.GuardSkipped
		}
		s.enterNightStep(next, domain.PhaseNightConfession)

	case domain.PhaseNightConfession:
		next.AddLog("Confession period has ended.")
		s.enterNightStep(next, domain.PhaseNightResolution)

	case domain.PhaseConspiracy:
		// Lets the host force a stalled ritual through with whatever picks exist.
		s.resolveConspiracy(next)

	default:
		return g, nil, ErrWrongPhase
	}

	s.checkWin(next)
	return next, s.stateEvents(next), nil
}

// anyHiddenConstable reports whether some living seat still holds the
// unrevealed constable card.
func anyHiddenConstable(g *domain.Game) bool {
	for _, p := range domain.LivingPlayers(g.Players) {
		if p.HoldsUnrevealed(domain.RoleConstable) {
			return true
		}
	}
	return false
}

// enterNightStep switches the phase and resets the per-step confirmation
// bookkeeping.
func (s *Service) enterNightStep(g *domain.Game, phase domain.Phase) {
	g.Phase = phase
	g.NightConfirms = make(map[string]bool)
	g.FakeVotes = make(map[string]int)
}
