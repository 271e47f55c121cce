package domain

// CardView is a card as seen in the public broadcast. Role is nil while the
// card is face down; presence and position stay visible.
type CardView struct {
	ID       string `json:"id"`
	Role     *Role  `json:"role"`
	Revealed bool   `json:"revealed"`
}

// PlayerView is one seat in the public broadcast. Witch alignment is absent
// on purpose: whether a seat has held a witch card is the game's secret.
type PlayerView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	IsHost       bool       `json:"is_host"`
	IsGhost      bool       `json:"is_ghost"`
	IsDead       bool       `json:"is_dead"`
	Disconnected bool       `json:"disconnected"`
	HasBlackCat  bool       `json:"has_black_cat"`
	NightImmune  bool       `json:"night_immune"`
	Hand         []CardView `json:"hand"`
}

// GameView is the masked state broadcast to every participant. The real
// witch-vote list never rides it; clients render the decoy tally instead.
type GameView struct {
	Phase             Phase             `json:"phase"`
	Players           []PlayerView      `json:"players"`
	Log               []LogEntry        `json:"log"`
	TurnCounter       int               `json:"turn_counter"`
	SmallGame         bool              `json:"small_game"`
	NightKillTargetID string            `json:"night_kill_target_id"`
	ConstableGuardID  string            `json:"constable_guard_id"`
	Accusation        *Accusation       `json:"accusation,omitempty"`
	ConspiracyPicks   map[string]string `json:"conspiracy_picks"`
	NightConfirms     map[string]bool   `json:"night_confirms"`
	FakeVotes         map[string]int    `json:"fake_votes"`
	NightDamage       *NightDamage      `json:"night_damage,omitempty"`
	Winner            Winner            `json:"winner"`
}

// PublicView derives the masked broadcast state. Every unrevealed card loses
// its role, seat alignment and the live witch votes are dropped, and the
// night's kill and guard choices are withheld until the resolution step
// announces them. Recomputed from the authoritative state on every mutation,
// never cached.
func PublicView(g *Game) GameView {
	view := GameView{
		Phase:       g.Phase,
		TurnCounter: g.TurnCounter,
		SmallGame:   g.SmallGame,
		Winner:      g.Winner,
		Log:         append([]LogEntry(nil), g.Log...),
	}
	if g.Phase == PhaseNightResolution {
		view.NightKillTargetID = g.NightKillTargetID
		view.ConstableGuardID = g.ConstableGuardID
	}

	if g.Accusation != nil {
		acc := *g.Accusation
		view.Accusation = &acc
	}
	if g.NightDamage != nil {
		nd := *g.NightDamage
		view.NightDamage = &nd
	}

	view.ConspiracyPicks = make(map[string]string, len(g.ConspiracyPicks))
	for k, v := range g.ConspiracyPicks {
		view.ConspiracyPicks[k] = v
	}
	view.NightConfirms = make(map[string]bool, len(g.NightConfirms))
	for k, v := range g.NightConfirms {
		view.NightConfirms[k] = v
	}
	view.FakeVotes = make(map[string]int, len(g.FakeVotes))
	for k, v := range g.FakeVotes {
		view.FakeVotes[k] = v
	}

	view.Players = make([]PlayerView, len(g.Players))
	for i, p := range g.Players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			IsHost:       p.IsHost,
			IsGhost:      p.IsGhost,
			IsDead:       p.IsDead,
			Disconnected: p.Disconnected,
			HasBlackCat:  p.HasBlackCat,
			NightImmune:  p.NightImmune,
			Hand:         make([]CardView, len(p.Hand)),
		}
		for j, c := range p.Hand {
			cv := CardView{ID: c.ID, Revealed: c.Revealed}
			if c.Revealed {
				role := c.Role
				cv.Role = &role
			}
			pv.Hand[j] = cv
		}
		view.Players[i] = pv
	}

	return view
}

// PrivateHand returns the unmasked hand for one player, as sent individually
// to that participant and nobody else.
func PrivateHand(g *Game, playerID string) []Card {
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil
	}
	return append([]Card(nil), p.Hand...)
}
