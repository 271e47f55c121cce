package app

import (
	"fmt"

	"witchhunt/internal/domain"
)

// accuseStart opens an accusation. Ghost targets cannot answer for
// themselves, so those accusations are born accepted.
func (s *Service) accuseStart(g *domain.Game, actor *domain.Player, a AccuseStart) error {
	if actor.IsDead || actor.IsGhost {
		return reject("accuser %s cannot act", actor.ID)
	}
	if g.Accusation != nil {
		return reject("an accusation is already pending")
	}
	target := g.PlayerByID(a.TargetID)
	if target == nil || target.IsDead {
		return reject("accusation target is not alive")
	}
	if target.ID == actor.ID {
		return reject("cannot accuse yourself")
	}

	g.Accusation = &domain.Accusation{
		AccuserID:   actor.ID,
		AccuserName: actor.Name,
		TargetID:    target.ID,
		TargetName:  target.Name,
		Accepted:    target.IsGhost,
	}
	g.AddLog(fmt.Sprintf("%s has accused %s of witchcraft!", actor.Name, target.Name))
	return nil
}

func (s *Service) accuseAccept(g *domain.Game, actor *domain.Player) error {
	if g.Accusation == nil || g.Accusation.TargetID != actor.ID {
		return reject("no accusation against %s", actor.ID)
	}
	if g.Accusation.Accepted {
		return reject("accusation already accepted")
	}
	g.Accusation.Accepted = true
	g.AddLog(fmt.Sprintf("%s will face the accusation.", actor.Name))
	return nil
}

func (s *Service) accuseCancel(g *domain.Game, actor *domain.Player) error {
	if g.Accusation == nil {
		return reject("no accusation to cancel")
	}
	g.AddLog(fmt.Sprintf("The accusation against %s was withdrawn.", g.Accusation.TargetName))
	g.Accusation = nil
	return nil
}

// accuseReveal flips the accuser's chosen card. A witch card puts the accused
// to death on the spot; otherwise the accused dies only when nothing in the
// hand is left hidden.
func (s *Service) accuseReveal(g *domain.Game, actor *domain.Player, a AccuseReveal) error {
	acc := g.Accusation
	if acc == nil || !acc.Accepted {
		return reject("no accepted accusation to reveal against")
	}
	if acc.AccuserID != actor.ID {
		return reject("only the accuser may reveal")
	}
	target := g.PlayerByID(acc.TargetID)
	if target == nil || target.IsDead {
		return reject("the accused is gone")
	}
	card := target.CardByID(a.CardID)
	if card == nil || card.Revealed {
		return reject("card is not a hidden card of the accused")
	}

	card.Revealed = true
	g.Accusation = nil

	if card.Role == domain.RoleWitch {
		g.AddLog(fmt.Sprintf("%s held a Witch card!", target.Name))
		killPlayer(g, target, fmt.Sprintf("%s has been put to death.", target.Name))
		return nil
	}

	g.AddLog(fmt.Sprintf("%s revealed a %s card.", target.Name, roleLabel(card.Role)))
	if target.HiddenCount() == 0 {
		killPlayer(g, target, fmt.Sprintf("%s has no cards left and dies.", target.Name))
	}
	return nil
}

// selfReveal turns one of the actor's own cards face up in exchange for
// immunity from tonight's kill. Witch cards cannot be volunteered.
func (s *Service) selfReveal(g *domain.Game, actor *domain.Player, a SelfReveal) error {
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}
	card := actor.CardByID(a.CardID)
	if card == nil || card.Revealed || card.Role == domain.RoleWitch {
		return reject("card cannot be self-revealed")
	}

	card.Revealed = true
	actor.NightImmune = true
	if g.Phase == domain.PhaseNightConfession {
		g.NightConfirms[actor.ID] = true
	}
	g.AddLog(fmt.Sprintf("%s came forward with a %s card and is safe tonight.", actor.Name, roleLabel(card.Role)))
	return nil
}
