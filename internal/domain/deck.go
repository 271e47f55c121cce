package domain

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
)

// deckRow fixes the role mix dealt for one participant count. The three
// counts always sum to participants times the hand size for that count.
type deckRow struct {
	witches    int
	constables int
	townsfolk  int
}

// deckTable is the historical role distribution for 4 to 12 seats.
var deckTable = map[int]deckRow{
	4:  {witches: 1, constables: 1, townsfolk: 18},
	5:  {witches: 1, constables: 1, townsfolk: 23},
	6:  {witches: 2, constables: 1, townsfolk: 27},
	7:  {witches: 2, constables: 1, townsfolk: 32},
	8:  {witches: 2, constables: 1, townsfolk: 29},
	9:  {witches: 2, constables: 1, townsfolk: 33},
	10: {witches: 2, constables: 1, townsfolk: 27},
	11: {witches: 2, constables: 1, townsfolk: 30},
	12: {witches: 2, constables: 1, townsfolk: 33},
}

// HandSizeFor returns the per-player card allotment for a participant count.
func HandSizeFor(participants int) int {
	switch {
	case participants <= 7:
		return 5
	case participants <= 9:
		return 4
	default:
		return 3
	}
}

// BuildDeck returns a freshly shuffled deck for the given participant count.
// Counts outside the table fall back to one witch for five or fewer seats,
// two otherwise, a single constable, and townsfolk for the remainder.
func BuildDeck(participants int, rng *rand.Rand) []Card {
	total := participants * HandSizeFor(participants)

	row, ok := deckTable[participants]
	if !ok {
		row = deckRow{witches: 1, constables: 1}
		if participants > 5 {
			row.witches = 2
		}
		row.townsfolk = total - row.witches - row.constables
	}

	deck := make([]Card, 0, total)
	for i := 0; i < row.witches; i++ {
		deck = append(deck, Card{ID: uuid.NewString(), Role: RoleWitch})
	}
	for i := 0; i < row.constables; i++ {
		deck = append(deck, Card{ID: uuid.NewString(), Role: RoleConstable})
	}
	for i := 0; i < row.townsfolk; i++ {
		deck = append(deck, Card{ID: uuid.NewString(), Role: RoleNotAWitch})
	}

	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// DealHands deals the deck round-robin one card at a time until every seat
// holds the full allotment, marking witch alignment as witch cards land.
// Per-seat transient flags are reset before dealing.
func DealHands(players []*Player, deck []Card) {
	handSize := HandSizeFor(len(players))
	for _, p := range players {
		p.Hand = make([]Card, 0, handSize)
		p.IsDead = false
		p.HasBlackCat = false
		p.NightImmune = false
		p.WitchAligned = false
	}

	i := 0
	for round := 0; round < handSize; round++ {
		for _, p := range players {
			card := deck[i]
			i++
			p.Hand = append(p.Hand, card)
			if card.Role == RoleWitch {
				p.WitchAligned = true
			}
		}
	}
}

// SynthesizeGhosts pads a two or three player roster with ghost seats so the
// deal draws from a workable role distribution. Two players produce the fixed
// ring player, ghost, player, ghost; three players get a single ghost after
// the last seat. Other counts are returned unchanged.
func SynthesizeGhosts(players []*Player, names []string) []*Player {
	ghost := func(i int) *Player {
		name := fmt.Sprintf("Ghost %d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}
		return &Player{ID: uuid.NewString(), Name: name, IsGhost: true}
	}

	switch len(players) {
	case 2:
		return []*Player{players[0], ghost(0), players[1], ghost(1)}
	case 3:
		return append(append([]*Player{}, players...), ghost(0))
	default:
		return players
	}
}

// ShuffleHidden reorders only the unrevealed cards in the hand. Revealed
// cards keep their visible positions.
func ShuffleHidden(p *Player, rng *rand.Rand) {
	idx := make([]int, 0, len(p.Hand))
	for i, c := range p.Hand {
		if !c.Revealed {
			idx = append(idx, i)
		}
	}
	rng.Shuffle(len(idx), func(a, b int) {
		p.Hand[idx[a]], p.Hand[idx[b]] = p.Hand[idx[b]], p.Hand[idx[a]]
	})
}
