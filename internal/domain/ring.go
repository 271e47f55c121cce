package domain

// LivingPlayers returns the living members of the seating ring in seat
// order, ghosts included.
func LivingPlayers(players []*Player) []*Player {
	out := make([]*Player, 0, len(players))
	for _, p := range players {
		if !p.IsDead {
			out = append(out, p)
		}
	}
	return out
}

// LivingNonGhosts returns the living human seats in seat order.
func LivingNonGhosts(players []*Player) []*Player {
	out := make([]*Player, 0, len(players))
	for _, p := range players {
		if !p.IsDead && !p.IsGhost {
			out = append(out, p)
		}
	}
	return out
}

// LeftNeighbor returns the previous living player in seating order relative
// to the player with the given id, wrapping around the ring. Ghosts count as
// ring members. Returns nil when the id is not among the living.
func LeftNeighbor(players []*Player, id string) *Player {
	living := LivingPlayers(players)
	for i, p := range living {
		if p.ID == id {
			return living[(i-1+len(living))%len(living)]
		}
	}
	return nil
}
