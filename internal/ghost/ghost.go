// Package ghost synthesizes moves for the placeholder seats that pad small
// games. Ghosts never act on their own; every decision here is a pure
// function of the current roster and a caller-supplied random source, so
// tests can seed the rng and assert exact behavior.
package ghost

import (
	"math/rand"

	"witchhunt/internal/domain"
)

// DefaultNames seeds ghost seats when the room config provides none.
var DefaultNames = []string{"Ghost of Abigail", "Ghost of Giles", "Ghost of Tituba"}

// Names returns the configured ghost name pool, or the default pool when the
// configuration is empty.
func Names(configured []string) []string {
	if len(configured) > 0 {
		return configured
	}
	return DefaultNames
}

// WitchSeats returns the living witch-aligned ghosts in seat order. Their
// votes mirror whatever a human witch casts.
func WitchSeats(players []*domain.Player) []*domain.Player {
	out := make([]*domain.Player, 0, len(players))
	for _, p := range players {
		if p.IsGhost && !p.IsDead && p.WitchAligned {
			out = append(out, p)
		}
	}
	return out
}

// OnlyGhostsAreWitches reports whether the witch side is made up entirely of
// ghost seats: at least one living witch-aligned ghost and no living
// witch-aligned human. The engine then has to move for the witches itself,
// silently, so the ghosts' roles stay hidden.
func OnlyGhostsAreWitches(players []*domain.Player) bool {
	ghostWitch := false
	for _, p := range players {
		if p.IsDead || !p.WitchAligned {
			continue
		}
		if p.IsGhost {
			ghostWitch = true
		} else {
			return false
		}
	}
	return ghostWitch
}

// HoldsHiddenConstable reports whether any living ghost privately holds the
// unrevealed constable card.
func HoldsHiddenConstable(players []*domain.Player) bool {
	for _, p := range players {
		if p.IsGhost && !p.IsDead && p.HoldsUnrevealed(domain.RoleConstable) {
			return true
		}
	}
	return false
}

// RandomLivingHuman picks a uniformly random living non-ghost seat, or nil
// when none remain.
func RandomLivingHuman(rng *rand.Rand, players []*domain.Player) *domain.Player {
	living := domain.LivingNonGhosts(players)
	if len(living) == 0 {
		return nil
	}
	return living[rng.Intn(len(living))]
}

// PickHiddenCard picks one uniformly random unrevealed card id from the
// player's hand. ok is false when the hand has no hidden cards.
func PickHiddenCard(rng *rand.Rand, p *domain.Player) (string, bool) {
	ids := PickHiddenCards(rng, p, 1)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// PickHiddenCards picks up to n distinct random unrevealed card ids from the
// player's hand, fewer when the hand holds fewer hidden cards.
func PickHiddenCards(rng *rand.Rand, p *domain.Player, n int) []string {
	hidden := make([]string, 0, len(p.Hand))
	for _, c := range p.Hand {
		if !c.Revealed {
			hidden = append(hidden, c.ID)
		}
	}
	rng.Shuffle(len(hidden), func(i, j int) { hidden[i], hidden[j] = hidden[j], hidden[i] })
	if len(hidden) > n {
		hidden = hidden[:n]
	}
	return hidden
}

// DamageChooser assigns who picks the cards a night-kill target loses: the
// target's left neighbor, or the first living human when the target is a
// ghost. Returns nil when no one can choose.
func DamageChooser(players []*domain.Player, target *domain.Player) *domain.Player {
	if target.IsGhost {
		living := domain.LivingNonGhosts(players)
		if len(living) == 0 {
			return nil
		}
		return living[0]
	}
	return domain.LeftNeighbor(players, target.ID)
}
