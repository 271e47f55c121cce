package app

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	"witchhunt/internal/domain"
	"witchhunt/internal/ghost"

	"github.com/google/uuid"
)

// Service contains the moderator use-cases operating on domain state. Every
// method takes the current authoritative game and returns a replacement built
// from a clone; the input value is never mutated, so a failed call leaves the
// caller's state exactly as it was.
type Service struct {
	rng           *rand.Rand
	ghostNames    []string
	damageReveals int
}

// NewService constructs a Service. rng may be nil for a time-seeded default,
// ghostNames may be nil for the stock pool, and damageReveals <= 0 selects
// the standard two-card night damage.
func NewService(rng *rand.Rand, ghostNames []string, damageReveals int) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if damageReveals <= 0 {
		damageReveals = defaultDamageReveals
	}
	return &Service{
		rng:           rng,
		ghostNames:    ghost.Names(ghostNames),
		damageReveals: damageReveals,
	}
}

var (
	ErrNotHost        = errors.New("actor is not the host")
	ErrWrongPhase     = errors.New("operation not allowed in this phase")
	ErrNameRequired   = errors.New("display name required")
	ErrNameTaken      = errors.New("display name already taken")
	ErrGameInProgress = errors.New("game already in progress")
	ErrTooFewPlayers  = errors.New("not enough players to start")
	ErrTooManyPlayers = errors.New("too many players to start")
	ErrUnknownPlayer  = errors.New("player not found")
	ErrRejected       = errors.New("action rejected")
)

// Join attaches a new participant in the lobby, or reattaches a disconnected
// seat by display name once the game is already running.
func (s *Service) Join(g *domain.Game, name, userID string) (*domain.Game, *domain.Player, []Event, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return g, nil, nil, ErrNameRequired
	}

	if g.Phase == domain.PhaseLobby {
		for _, p := range g.Players {
			if strings.EqualFold(p.Name, name) {
				return g, nil, nil, ErrNameTaken
			}
		}
		next := g.Clone()
		player := &domain.Player{
			ID:     uuid.NewString(),
			Name:   name,
			UserID: userID,
			IsHost: !hasHost(next.Players),
		}
		next.Players = append(next.Players, player)
		events := append([]Event{welcomeEvent(next, player)}, s.stateEvents(next)...)
		return next, player, events, nil
	}

	// Mid-game a join can only reclaim a disconnected seat with the same name.
	for _, p := range g.Players {
		if !p.IsGhost && p.Disconnected && strings.EqualFold(p.Name, name) {
			return s.attach(g, p.ID, userID)
		}
	}
	return g, nil, nil, ErrGameInProgress
}

// Rejoin reattaches an existing seat by id. Unknown ids degrade to a fresh
// join so a client holding a stale seat can always get back into the room.
func (s *Service) Rejoin(g *domain.Game, playerID, name, userID string) (*domain.Game, *domain.Player, []Event, error) {
	if p := g.PlayerByID(playerID); p != nil && !p.IsGhost {
		return s.attach(g, p.ID, userID)
	}
	return s.Join(g, name, userID)
}

// attach binds a transport address to a seat and re-issues the welcome.
func (s *Service) attach(g *domain.Game, playerID, userID string) (*domain.Game, *domain.Player, []Event, error) {
	next := g.Clone()
	p := next.PlayerByID(playerID)
	p.UserID = userID
	p.Disconnected = false
	events := append([]Event{welcomeEvent(next, p)}, s.stateEvents(next)...)
	return next, p, events, nil
}

// Leave removes a lobby participant entirely. Once the game has started the
// seat is only marked disconnected so its hand and role survive for a rejoin.
func (s *Service) Leave(g *domain.Game, playerID string) (*domain.Game, []Event, error) {
	target := g.PlayerByID(playerID)
	if target == nil || target.IsGhost {
		return g, nil, ErrUnknownPlayer
	}

	next := g.Clone()
	if next.Phase == domain.PhaseLobby {
		kept := make([]*domain.Player, 0, len(next.Players)-1)
		for _, p := range next.Players {
			if p.ID != playerID {
				kept = append(kept, p)
			}
		}
		next.Players = kept
	} else {
		p := next.PlayerByID(playerID)
		p.Disconnected = true
		p.UserID = ""
	}
	reassignHost(next.Players)
	return next, s.stateEvents(next), nil
}

// StartGame deals the opening hands and moves the room out of the lobby. Two
// or three participants play the small-game variant with ghost seats padding
// the circle.
func (s *Service) StartGame(g *domain.Game, actorID string) (*domain.Game, []Event, error) {
	actor := g.PlayerByID(actorID)
	if actor == nil || !actor.IsHost {
		return g, nil, ErrNotHost
	}
	if g.Phase != domain.PhaseLobby {
		return g, nil, ErrWrongPhase
	}
	if len(g.Players) < MinPlayersToStart {
		return g, nil, ErrTooFewPlayers
	}
	if len(g.Players) > MaxPlayersToStart {
		return g, nil, ErrTooManyPlayers
	}

	next := g.Clone()
	if len(next.Players) <= 3 {
		next.SmallGame = true
		next.Players = domain.SynthesizeGhosts(next.Players, s.ghostNames)
	}

	deck := domain.BuildDeck(len(next.Players), s.rng)
	domain.DealHands(next.Players, deck)
	next.Phase = domain.PhaseSetup
	next.TurnCounter = 0
	next.AddLog("The game has begun.")
	return next, s.stateEvents(next), nil
}

// stateEvents derives the fan-out sent after every successful mutation: the
// masked public state for everyone plus each connected human's private hand.
func (s *Service) stateEvents(g *domain.Game) []Event {
	events := []Event{{
		Kind:    EventStateUpdated,
		Payload: StateUpdatedPayload{State: domain.PublicView(g)},
	}}
	for _, p := range g.Players {
		if p.IsGhost || p.UserID == "" {
			continue
		}
		events = append(events, Event{
			Kind:       EventHandUpdated,
			Payload:    HandUpdatedPayload{PlayerID: p.ID, Cards: domain.PrivateHand(g, p.ID)},
			Recipients: []string{p.UserID},
		})
	}
	return events
}

func welcomeEvent(g *domain.Game, p *domain.Player) Event {
	return Event{
		Kind:       EventWelcome,
		Payload:    WelcomePayload{PlayerID: p.ID, Name: p.Name, State: domain.PublicView(g)},
		Recipients: []string{p.UserID},
	}
}

// checkWin re-evaluates the win predicate and forces the terminal phase on a
// result. Safe to call after every mutation; once reached, game over absorbs.
func (s *Service) checkWin(g *domain.Game) {
	if g.Phase == domain.PhaseLobby || g.Phase == domain.PhaseGameOver {
		return
	}
	winner := domain.EvaluateWinner(g)
	if winner == domain.WinnerNone {
		return
	}
	g.Winner = winner
	g.Phase = domain.PhaseGameOver
	switch winner {
	case domain.WinnerTown:
		g.AddLog("The town prevails. The witches are undone!")
	case domain.WinnerWitches:
		g.AddLog("The witches prevail. Darkness falls over the town!")
	}
}

// killPlayer marks a seat dead, turns its whole hand face up and records why.
func killPlayer(g *domain.Game, p *domain.Player, message string) {
	p.IsDead = true
	p.RevealAll()
	g.AddLog(message)
}

func hasHost(players []*domain.Player) bool {
	for _, p := range players {
		if !p.IsGhost && p.IsHost {
			return true
		}
	}
	return false
}

// reassignHost keeps the host seat on a connected human. If the current host
// is gone the first connected human inherits; with nobody connected the flag
// stays put until someone returns.
func reassignHost(players []*domain.Player) {
	for _, p := range players {
		if p.IsHost && !p.IsGhost && !p.Disconnected {
			return
		}
	}
	for _, p := range players {
		if !p.IsGhost && !p.Disconnected {
			for _, q := range players {
				q.IsHost = false
			}
			p.IsHost = true
			return
		}
	}
}

func roleLabel(r domain.Role) string {
	switch r {
	case domain.RoleWitch:
		return "Witch"
	case domain.RoleConstable:
		return "Constable"
	default:
		return "Not A Witch"
	}
}
