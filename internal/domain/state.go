package domain

import "time"

// Phase represents the lifecycle stage of a trial session.
type Phase string

const (
	// PhaseLobby is the pre-game state where players can join.
	PhaseLobby Phase = "lobby"
	// PhaseSetup is the post-deal state before the first night begins.
	PhaseSetup Phase = "setup"
	// PhaseNightInitialWitch is the first night, when the witches place the black cat.
	PhaseNightInitialWitch Phase = "night_initial_witch"
	// PhaseDay is the open accusation state.
	PhaseDay Phase = "day"
	// PhaseNightWitchVote is the nightly witch kill vote.
	PhaseNightWitchVote Phase = "night_witch_vote"
	// PhaseNightConstable is the constable's guard pick.
	PhaseNightConstable Phase = "night_constable"
	// PhaseNightConfession is the confession window before dawn.
	PhaseNightConfession Phase = "night_confession"
	// PhaseNightResolution waits for the host to resolve the night kill.
	PhaseNightResolution Phase = "night_resolution"
	// PhaseConspiracy is the host-triggered card-passing ritual. Returns to day.
	PhaseConspiracy Phase = "conspiracy"
	// PhaseGameOver is terminal.
	PhaseGameOver Phase = "game_over"
)

// Role is the hidden face of a card.
type Role string

const (
	RoleNotAWitch Role = "not_a_witch"
	RoleWitch     Role = "witch"
	RoleConstable Role = "constable"
)

// Winner names the side a finished game went to.
type Winner string

const (
	WinnerNone    Winner = ""
	WinnerTown    Winner = "town"
	WinnerWitches Winner = "witches"
)

// GuardSkipped is the constable guard sentinel meaning "protect nobody".
const GuardSkipped = "skip"

// Card is a single dealt card. Revealed flips false to true, never back.
type Card struct {
	ID       string `json:"id"`
	Role     Role   `json:"role"`
	Revealed bool   `json:"revealed"`
}

// Player is a seated participant or a synthesized ghost. Slice order in
// Game.Players is the seating ring used for left-neighbor lookups.
type Player struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	UserID       string `json:"user_id"` // transport session owner; empty for ghosts
	IsHost       bool   `json:"is_host"`
	IsGhost      bool   `json:"is_ghost"`
	IsDead       bool   `json:"is_dead"`
	Disconnected bool   `json:"disconnected"`
	HasBlackCat  bool   `json:"has_black_cat"`
	WitchAligned bool   `json:"witch_aligned"` // sticky once a witch card enters the hand
	NightImmune  bool   `json:"night_immune"`
	Hand         []Card `json:"hand"`
}

// CardByID returns a pointer into the player's hand, or nil.
func (p *Player) CardByID(id string) *Card {
	for i := range p.Hand {
		if p.Hand[i].ID == id {
			return &p.Hand[i]
		}
	}
	return nil
}

// HiddenCount returns the number of unrevealed cards in the hand.
func (p *Player) HiddenCount() int {
	n := 0
	for _, c := range p.Hand {
		if !c.Revealed {
			n++
		}
	}
	return n
}

// HoldsUnrevealed reports whether the hand contains an unrevealed card of the given role.
func (p *Player) HoldsUnrevealed(role Role) bool {
	for _, c := range p.Hand {
		if !c.Revealed && c.Role == role {
			return true
		}
	}
	return false
}

// FullyRevealed reports whether the player has been dealt cards and has no hidden ones left.
func (p *Player) FullyRevealed() bool {
	return len(p.Hand) > 0 && p.HiddenCount() == 0
}

// RevealAll flips every card in the hand face up.
func (p *Player) RevealAll() {
	for i := range p.Hand {
		p.Hand[i].Revealed = true
	}
}

// WitchVote is one witch-aligned voter's current pick. Re-votes supersede,
// they do not accumulate.
type WitchVote struct {
	VoterID    string `json:"voter_id"`
	VoterName  string `json:"voter_name"`
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
}

// Accusation is the single live accusation, if any.
type Accusation struct {
	AccuserID   string `json:"accuser_id"`
	AccuserName string `json:"accuser_name"`
	TargetID    string `json:"target_id"`
	TargetName  string `json:"target_name"`
	Accepted    bool   `json:"accepted"`
}

// NightDamage tracks the small-game partial kill awaiting a card pick.
type NightDamage struct {
	TargetID      string `json:"target_id"`
	ChooserID     string `json:"chooser_id"`
	PendingReveal bool   `json:"pending_reveal"`
}

// LogEntry is one line of the public game chronicle.
type LogEntry struct {
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// maxLogEntries bounds the chronicle; the oldest lines are dropped past it.
const maxLogEntries = 512

// Game is the single authoritative state aggregate for one room. Engine
// operations never mutate a Game in place; they work on a Clone and replace
// the previous value wholesale.
type Game struct {
	Phase             Phase             `json:"phase"`
	Players           []*Player         `json:"players"`
	Log               []LogEntry        `json:"log"`
	TurnCounter       int               `json:"turn_counter"`
	SmallGame         bool              `json:"small_game"`
	NightKillTargetID string            `json:"night_kill_target_id"`
	ConstableGuardID  string            `json:"constable_guard_id"`
	WitchVotes        []WitchVote       `json:"witch_votes"`
	Accusation        *Accusation       `json:"accusation,omitempty"`
	ConspiracyPicks   map[string]string `json:"conspiracy_picks"`
	NightConfirms     map[string]bool   `json:"night_confirms"`
	FakeVotes         map[string]int    `json:"fake_votes"`
	NightDamage       *NightDamage      `json:"night_damage,omitempty"`
	Winner            Winner            `json:"winner"`
}

// NewGame returns an empty lobby-phase game.
func NewGame() *Game {
	return &Game{
		Phase:           PhaseLobby,
		ConspiracyPicks: map[string]string{},
		NightConfirms:   map[string]bool{},
		FakeVotes:       map[string]int{},
	}
}

// PlayerByID returns the roster member with the given id, or nil.
func (g *Game) PlayerByID(id string) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByUserID returns the roster member bound to the given transport
// session, or nil. Ghosts never match.
func (g *Game) PlayerByUserID(userID string) *Player {
	if userID == "" {
		return nil
	}
	for _, p := range g.Players {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

// AddLog appends a timestamped line to the chronicle.
func (g *Game) AddLog(message string) {
	g.Log = append(g.Log, LogEntry{At: time.Now().UTC(), Message: message})
	if len(g.Log) > maxLogEntries {
		g.Log = g.Log[len(g.Log)-maxLogEntries:]
	}
}

// Clone returns a deep copy of the game so callers can derive the next state
// without aliasing the previous snapshot.
func (g *Game) Clone() *Game {
	out := &Game{
		Phase:             g.Phase,
		TurnCounter:       g.TurnCounter,
		SmallGame:         g.SmallGame,
		NightKillTargetID: g.NightKillTargetID,
		ConstableGuardID:  g.ConstableGuardID,
		Winner:            g.Winner,
	}

	out.Players = make([]*Player, len(g.Players))
	for i, p := range g.Players {
		cp := *p
		cp.Hand = append([]Card(nil), p.Hand...)
		out.Players[i] = &cp
	}

	out.Log = append([]LogEntry(nil), g.Log...)
	out.WitchVotes = append([]WitchVote(nil), g.WitchVotes...)

	if g.Accusation != nil {
		acc := *g.Accusation
		out.Accusation = &acc
	}
	if g.NightDamage != nil {
		nd := *g.NightDamage
		out.NightDamage = &nd
	}

	out.ConspiracyPicks = make(map[string]string, len(g.ConspiracyPicks))
	for k, v := range g.ConspiracyPicks {
		out.ConspiracyPicks[k] = v
	}
	out.NightConfirms = make(map[string]bool, len(g.NightConfirms))
	for k, v := range g.NightConfirms {
		out.NightConfirms[k] = v
	}
	out.FakeVotes = make(map[string]int, len(g.FakeVotes))
	for k, v := range g.FakeVotes {
		out.FakeVotes[k] = v
	}

	return out
}
