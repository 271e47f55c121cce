package app

import (
	"witchhunt/internal/domain"
	"witchhunt/internal/ghost"
)

func (s *Service) triggerConspiracy(g *domain.Game, actor *domain.Player) error {
	if !actor.IsHost {
		return reject("only the host can call a conspiracy")
	}
	if g.Phase != domain.PhaseDay {
		return reject("conspiracies begin during the day")
	}

	g.Phase = domain.PhaseConspiracy
	g.ConspiracyPicks = make(map[string]string)
	g.AddLog("A conspiracy is afoot! Everyone takes a card from their left neighbor.")
	return nil
}

// conspiracySelect records the subject's pick from its left neighbor. Humans
// pick for themselves; a ghost's pick may be entered on its behalf. The
// ritual resolves once every living human has a pick on record.
func (s *Service) conspiracySelect(g *domain.Game, actor *domain.Player, a ConspiracySelect) error {
	if g.Phase != domain.PhaseConspiracy {
		return reject("no conspiracy in progress")
	}
	if actor.IsDead || actor.IsGhost {
		return reject("actor %s cannot act", actor.ID)
	}

	subject := actor
	if a.ForID != "" && a.ForID != actor.ID {
		subject = g.PlayerByID(a.ForID)
		if subject == nil || !subject.IsGhost || subject.IsDead {
			return reject("picks can only be entered for a living ghost")
		}
	}
	neighbor := domain.LeftNeighbor(g.Players, subject.ID)
	if neighbor == nil || neighbor.ID == subject.ID {
		return reject("no neighbor to take from")
	}
	card := neighbor.CardByID(a.CardID)
	if card == nil || card.Revealed {
		return reject("card is not hidden in the neighbor's hand")
	}

	g.ConspiracyPicks[subject.ID] = card.ID
	if s.conspiracyReady(g) {
		s.resolveConspiracy(g)
	}
	return nil
}

func (s *Service) conspiracyReady(g *domain.Game) bool {
	for _, p := range domain.LivingNonGhosts(g.Players) {
		if _, ok := g.ConspiracyPicks[p.ID]; !ok {
			return false
		}
	}
	return true
}

// resolveConspiracy executes every transfer from one consistent snapshot of
// the pre-transfer picks, so picks from the same hand cannot disturb each
// other. Ghost picks still missing at this point are filled randomly from the
// ghost's own left neighbor.
func (s *Service) resolveConspiracy(g *domain.Game) {
	for _, p := range domain.LivingPlayers(g.Players) {
		if !p.IsGhost {
			continue
		}
		if _, ok := g.ConspiracyPicks[p.ID]; ok {
			continue
		}
		neighbor := domain.LeftNeighbor(g.Players, p.ID)
		if neighbor == nil || neighbor.ID == p.ID {
			continue
		}
		if cardID, ok := ghost.PickHiddenCard(s.rng, neighbor); ok {
			g.ConspiracyPicks[p.ID] = cardID
		}
	}

	type transfer struct {
		from, to *domain.Player
		cardID   string
	}
	transfers := make([]transfer, 0, len(g.ConspiracyPicks))
	for _, p := range domain.LivingPlayers(g.Players) {
		cardID, ok := g.ConspiracyPicks[p.ID]
		if !ok {
			continue
		}
		from := domain.LeftNeighbor(g.Players, p.ID)
		if from == nil || from.ID == p.ID {
			continue
		}
		transfers = append(transfers, transfer{from: from, to: p, cardID: cardID})
	}

	recipients := make([]*domain.Player, 0, len(transfers))
	for _, tr := range transfers {
		card := tr.from.CardByID(tr.cardID)
		if card == nil || card.Revealed {
			continue // the pick went stale between selection and resolution
		}
		taken := *card
		removeCard(tr.from, tr.cardID)
		tr.to.Hand = append(tr.to.Hand, taken)
		if taken.Role == domain.RoleWitch {
			tr.to.WitchAligned = true
		}
		recipients = append(recipients, tr.to)
	}
	for _, p := range recipients {
		domain.ShuffleHidden(p, s.rng)
	}

	g.ConspiracyPicks = make(map[string]string)
	g.Phase = domain.PhaseDay
	g.AddLog("The conspiracy has run its course.")
}

func removeCard(p *domain.Player, cardID string) {
	for i := range p.Hand {
		if p.Hand[i].ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return
		}
	}
}
