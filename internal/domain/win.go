package domain

// EvaluateWinner decides whether the game has ended and for which side. It is
// a pure predicate over the roster; callers re-run it after every mutation.
// Town is checked before witches so simultaneous conditions always resolve
// the same way. Returns WinnerNone while no side has won, and always before
// any cards have been dealt.
func EvaluateWinner(g *Game) Winner {
	dealt := false
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			dealt = true
			break
		}
	}
	if !dealt {
		return WinnerNone
	}

	if g.SmallGame {
		return evaluateSmallGame(g)
	}
	return evaluateStandard(g)
}

// evaluateStandard: town wins when no living player holds an unrevealed witch
// card; witches win when every living player is witch-aligned.
func evaluateStandard(g *Game) Winner {
	witchCardLoose := false
	allAligned := true
	for _, p := range g.Players {
		if p.IsDead {
			continue
		}
		if p.HoldsUnrevealed(RoleWitch) {
			witchCardLoose = true
		}
		if !p.WitchAligned {
			allAligned = false
		}
	}

	if !witchCardLoose {
		return WinnerTown
	}
	if allAligned {
		return WinnerWitches
	}
	return WinnerNone
}

// evaluateSmallGame: town wins once the lone witch card is revealed, no
// matter whose hand it sits in or whether they live. Witches win when any
// seat has its entire hand face up, or when every living human is
// witch-aligned.
func evaluateSmallGame(g *Game) Winner {
	witchRevealed := false
	fullWipe := false
	allHumansAligned := true
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c.Role == RoleWitch && c.Revealed {
				witchRevealed = true
			}
		}
		if p.FullyRevealed() {
			fullWipe = true
		}
		if !p.IsDead && !p.IsGhost && !p.WitchAligned {
			allHumansAligned = false
		}
	}

	if witchRevealed {
		return WinnerTown
	}
	if fullWipe || allHumansAligned {
		return WinnerWitches
	}
	return WinnerNone
}
