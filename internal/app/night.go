package app

import (
	"fmt"

	"witchhunt/internal/domain"
	"witchhunt/internal/ghost"
)

// nightConfirm marks the actor as having moved this night step. The fake
// target only feeds the decoy tally and never touches the outcome. Repeats
// are rejected so the tally cannot be inflated.
func (s *Service) nightConfirm(g *domain.Game, actor *domain.Player, a NightConfirm) error {
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}
	switch g.Phase {
	case domain.PhaseNightInitialWitch, domain.PhaseNightWitchVote, domain.PhaseNightConstable, domain.PhaseNightConfession:
	default:
		return reject("%s is not a night step", g.Phase)
	}
	if g.NightConfirms[actor.ID] {
		return reject("%s already confirmed this step", actor.ID)
	}

	g.NightConfirms[actor.ID] = true
	if a.FakeTargetID != "" {
		if t := g.PlayerByID(a.FakeTargetID); t != nil {
			g.FakeVotes[t.ID]++
		}
	}
	return nil
}

func (s *Service) killVote(g *domain.Game, actor *domain.Player, a KillVote) error {
	if g.Phase != domain.PhaseNightWitchVote {
		return reject("kill votes happen during the witch vote")
	}
	target, err := s.witchVote(g, actor, a.TargetID)
	if err != nil {
		return err
	}
	g.NightKillTargetID = target.ID
	return nil
}

func (s *Service) blackCatVote(g *domain.Game, actor *domain.Player, a BlackCatVote) error {
	if g.Phase != domain.PhaseNightInitialWitch {
		return reject("the black cat is placed on the first night")
	}
	target, err := s.witchVote(g, actor, a.TargetID)
	if err != nil {
		return err
	}
	for _, p := range g.Players {
		p.HasBlackCat = false
	}
	target.HasBlackCat = true
	return nil
}

// witchVote applies one witch-aligned vote plus the mirrored votes of every
// living ghost witch. A re-vote supersedes the voter's previous pick.
func (s *Service) witchVote(g *domain.Game, actor *domain.Player, targetID string) (*domain.Player, error) {
	if actor.IsDead || actor.IsGhost || !actor.WitchAligned {
		return nil, reject("voter %s is not a living witch", actor.ID)
	}
	target := g.PlayerByID(targetID)
	if target == nil || target.IsDead {
		return nil, reject("vote target is not alive")
	}

	upsertWitchVote(g, actor, target)
	for _, gw := range ghost.WitchSeats(g.Players) {
		upsertWitchVote(g, gw, target)
	}
	g.NightConfirms[actor.ID] = true
	return target, nil
}

func upsertWitchVote(g *domain.Game, voter, target *domain.Player) {
	for i := range g.WitchVotes {
		if g.WitchVotes[i].VoterID == voter.ID {
			g.WitchVotes[i].TargetID = target.ID
			g.WitchVotes[i].TargetName = target.Name
			return
		}
	}
	g.WitchVotes = append(g.WitchVotes, domain.WitchVote{
		VoterID:    voter.ID,
		VoterName:  voter.Name,
		TargetID:   target.ID,
		TargetName: target.Name,
	})
}

func (s *Service) guardVote(g *domain.Game, actor *domain.Player, a GuardVote) error {
	if g.Phase != domain.PhaseNightConstable {
		return reject("guarding happens during the constable step")
	}
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}
	target := g.PlayerByID(a.TargetID)
	if target == nil || target.IsDead {
		return reject("guard target is not alive")
	}

	g.ConstableGuardID = target.ID
	g.NightConfirms[actor.ID] = true
	return nil
}

func (s *Service) guardSkip(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhaseNightConstable {
		return reject("guarding happens during the constable step")
	}
	if !g.SmallGame {
		return reject("guard skip is a small-game move")
	}
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}

	g.ConstableGuardID = domain.GuardSkipped
	g.NightConfirms[actor.ID] = true
	return nil
}

func (s *Service) confessionPass(g *domain.Game, actor *domain.Player) error {
	if g.Phase != domain.PhaseNightConfession {
		return reject("confessions happen during the confession step")
	}
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}
	g.NightConfirms[actor.ID] = true
	return nil
}

// nightDamagePick resolves the pending small-game damage: the designated
// chooser names exactly the required number of the target's hidden cards,
// fewer only when the hand has fewer left.
func (s *Service) nightDamagePick(g *domain.Game, actor *domain.Player, a NightDamagePick) error {
	if g.Phase != domain.PhaseNightResolution {
		return reject("damage picks happen during night resolution")
	}
	nd := g.NightDamage
	if !g.SmallGame || nd == nil || !nd.PendingReveal {
		return reject("no pending night damage")
	}
	if nd.ChooserID != actor.ID {
		return reject("%s is not the designated chooser", actor.ID)
	}
	target := g.PlayerByID(nd.TargetID)
	if target == nil || target.IsDead {
		return reject("damage target is gone")
	}

	want := s.damageReveals
	if hidden := target.HiddenCount(); hidden < want {
		want = hidden
	}
	if len(a.CardIDs) != want {
		return reject("must name exactly %d cards", want)
	}
	seen := make(map[string]bool, len(a.CardIDs))
	for _, id := range a.CardIDs {
		if seen[id] {
			return reject("duplicate card id %s", id)
		}
		seen[id] = true
		if card := target.CardByID(id); card == nil || card.Revealed {
			return reject("card %s is not hidden in the target's hand", id)
		}
	}

	s.applyNightDamage(g, target, a.CardIDs)
	return nil
}

// applyNightDamage reveals the picked cards and completes the night.
func (s *Service) applyNightDamage(g *domain.Game, target *domain.Player, cardIDs []string) {
	for _, id := range cardIDs {
		if card := target.CardByID(id); card != nil {
			card.Revealed = true
		}
	}
	g.AddLog(fmt.Sprintf("%s lost %d card(s).", target.Name, len(cardIDs)))
	if target.HiddenCount() == 0 {
		killPlayer(g, target, fmt.Sprintf("%s has no cards left and dies.", target.Name))
	}
	s.finishNight(g)
}

// ResolveNight closes the night on the host's verdict. In small-game mode a
// death is downgraded to a card loss that waits for the chooser's pick; when
// that chooser is a ghost the engine picks on its behalf right away.
func (s *Service) ResolveNight(g *domain.Game, actorID string, targetDies bool) (*domain.Game, []Event, error) {
	actor := g.PlayerByID(actorID)
	if actor == nil || !actor.IsHost {
		return g, nil, ErrNotHost
	}
	if g.Phase != domain.PhaseNightResolution {
		return g, nil, ErrWrongPhase
	}

	next := g.Clone()
	target := next.PlayerByID(next.NightKillTargetID)

	switch {
	case target == nil || target.IsDead:
		next.AddLog("The witches did not select a target.")
		s.finishNight(next)

	case targetDies && next.SmallGame:
		chooser := ghost.DamageChooser(next.Players, target)
		if chooser == nil {
			next.AddLog("The witches did not select a target.")
			s.finishNight(next)
			break
		}
		next.NightDamage = &domain.NightDamage{
			TargetID:      target.ID,
			ChooserID:     chooser.ID,
			PendingReveal: true,
		}
		next.AddLog(fmt.Sprintf("The witches struck %s in the night.", target.Name))
		if chooser.IsGhost {
			s.applyNightDamage(next, target, ghost.PickHiddenCards(s.rng, target, s.damageReveals))
		}

	case targetDies:
		killPlayer(next, target, fmt.Sprintf("%s was killed in the night.", target.Name))
		s.finishNight(next)

	default:
		next.AddLog(fmt.Sprintf("%s survived the night.", target.Name))
		s.finishNight(next)
	}

	s.checkWin(next)
	return next, s.stateEvents(next), nil
}

// finishNight returns the game to day. Transient night state is cleared and
// the turn counter advances. Dropping the damage record here also cancels a
// pick the host resolved past, so it can never fire in a later phase.
func (s *Service) finishNight(g *domain.Game) {
	for _, p := range g.Players {
		p.NightImmune = false
	}
	g.WitchVotes = nil
	g.NightKillTargetID = ""
	g.ConstableGuardID = ""
	g.NightDamage = nil
	g.NightConfirms = make(map[string]bool)
	g.FakeVotes = make(map[string]int)
	g.TurnCounter++
	g.Phase = domain.PhaseDay
}
