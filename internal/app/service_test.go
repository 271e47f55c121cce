package app

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"witchhunt/internal/domain"
)

func testService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), nil, 0)
}

// lobbyGame builds a lobby with the given display names joined in order.
// Transport ids are user-1, user-2, ...
func lobbyGame(t *testing.T, svc *Service, names ...string) *domain.Game {
	t.Helper()
	g := domain.NewGame()
	for i, name := range names {
		next, _, _, err := svc.Join(g, name, fmt.Sprintf("user-%d", i+1))
		if err != nil {
			t.Fatalf("join %s error: %v", name, err)
		}
		g = next
	}
	return g
}

func hand(prefix string, roles ...domain.Role) []domain.Card {
	cards := make([]domain.Card, len(roles))
	for i, r := range roles {
		cards[i] = domain.Card{ID: fmt.Sprintf("%s-c%d", prefix, i+1), Role: r}
	}
	return cards
}

// playingGame hand-builds a standard 4-seat game in the day phase. Anna is
// host, Ben holds the witch card, Cora the constable.
func playingGame() *domain.Game {
	g := domain.NewGame()
	g.Phase = domain.PhaseDay
	g.Players = []*domain.Player{
		{ID: "p1", Name: "Anna", UserID: "user-1", IsHost: true, Hand: hand("p1", domain.RoleNotAWitch, domain.RoleNotAWitch)},
		{ID: "p2", Name: "Ben", UserID: "user-2", WitchAligned: true, Hand: hand("p2", domain.RoleWitch, domain.RoleNotAWitch)},
		{ID: "p3", Name: "Cora", UserID: "user-3", Hand: hand("p3", domain.RoleConstable, domain.RoleNotAWitch)},
		{ID: "p4", Name: "Dan", UserID: "user-4", Hand: hand("p4", domain.RoleNotAWitch, domain.RoleNotAWitch)},
	}
	return g
}

// smallGame hand-builds a two-human small game with the ring [p1, g1, p2, g2].
// The ghost g1 is the only witch-aligned seat.
func smallGame() *domain.Game {
	g := domain.NewGame()
	g.Phase = domain.PhaseDay
	g.SmallGame = true
	g.Players = []*domain.Player{
		{ID: "p1", Name: "Anna", UserID: "user-1", IsHost: true, Hand: hand("p1", domain.RoleNotAWitch, domain.RoleNotAWitch)},
		{ID: "g1", Name: "Ghost of Abigail", IsGhost: true, WitchAligned: true, Hand: hand("g1", domain.RoleWitch, domain.RoleNotAWitch)},
		{ID: "p2", Name: "Ben", UserID: "user-2", Hand: hand("p2", domain.RoleNotAWitch, domain.RoleNotAWitch)},
		{ID: "g2", Name: "Ghost of Giles", IsGhost: true, Hand: hand("g2", domain.RoleConstable, domain.RoleNotAWitch)},
	}
	return g
}

// smallGame3 hand-builds a three-human small game [p1, p2, p3, g1] where Ben
// has a three-card hand and the witch card hides with the ghost.
func smallGame3() *domain.Game {
	g := domain.NewGame()
	g.Phase = domain.PhaseDay
	g.SmallGame = true
	g.Players = []*domain.Player{
		{ID: "p1", Name: "Anna", UserID: "user-1", IsHost: true, Hand: hand("p1", domain.RoleNotAWitch, domain.RoleNotAWitch)},
		{ID: "p2", Name: "Ben", UserID: "user-2", Hand: hand("p2", domain.RoleNotAWitch, domain.RoleNotAWitch, domain.RoleNotAWitch)},
		{ID: "p3", Name: "Cora", UserID: "user-3", Hand: hand("p3", domain.RoleConstable, domain.RoleNotAWitch)},
		{ID: "g1", Name: "Ghost of Abigail", IsGhost: true, WitchAligned: true, Hand: hand("g1", domain.RoleWitch, domain.RoleNotAWitch)},
	}
	return g
}

func findEvent(events []Event, kind EventKind) (Event, bool) {
	for _, ev := range events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

func TestJoinLobby(t *testing.T) {
	svc := testService(1)
	g := domain.NewGame()

	g, anna, events, err := svc.Join(g, "Anna", "user-1")
	if err != nil {
		t.Fatalf("join error: %v", err)
	}
	if !anna.IsHost {
		t.Fatal("first join should become host")
	}
	if anna.ID == "" || anna.UserID != "user-1" {
		t.Fatalf("player = %+v, want id and transport address set", anna)
	}
	welcome, ok := findEvent(events, EventWelcome)
	if !ok {
		t.Fatal("expected a welcome event")
	}
	if len(welcome.Recipients) != 1 || welcome.Recipients[0] != "user-1" {
		t.Fatalf("welcome recipients = %v, want [user-1]", welcome.Recipients)
	}
	if _, ok := findEvent(events, EventStateUpdated); !ok {
		t.Fatal("expected a state update broadcast")
	}

	g, ben, _, err := svc.Join(g, "Ben", "user-2")
	if err != nil {
		t.Fatalf("second join error: %v", err)
	}
	if ben.IsHost {
		t.Fatal("second join must not take the host seat")
	}
	if ben.ID == anna.ID {
		t.Fatal("player ids must be unique")
	}
	if len(g.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(g.Players))
	}
}

func TestJoinRejectsDuplicateName(t *testing.T) {
	svc := testService(1)
	g := lobbyGame(t, svc, "Anna")

	if _, _, _, err := svc.Join(g, "anna", "user-9"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("err = %v, want ErrNameTaken", err)
	}
	if _, _, _, err := svc.Join(g, "  ", "user-9"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("err = %v, want ErrNameRequired", err)
	}
}

func TestJoinMidGameReattachesDisconnectedSeat(t *testing.T) {
	svc := testService(1)
	g := playingGame()
	g.PlayerByID("p2").Disconnected = true
	g.PlayerByID("p2").UserID = ""

	next, p, _, err := svc.Join(g, "ben", "user-9")
	if err != nil {
		t.Fatalf("join error: %v", err)
	}
	if p.ID != "p2" {
		t.Fatalf("player id = %s, want p2", p.ID)
	}
	if p.Disconnected || p.UserID != "user-9" {
		t.Fatalf("seat = %+v, want reattached to user-9", p)
	}
	if len(next.Players) != 4 {
		t.Fatalf("players = %d, want 4", len(next.Players))
	}

	if _, _, _, err := svc.Join(g, "Newcomer", "user-9"); !errors.Is(err, ErrGameInProgress) {
		t.Fatalf("err = %v, want ErrGameInProgress", err)
	}
}

func TestRejoin(t *testing.T) {
	svc := testService(1)
	g := playingGame()
	g.PlayerByID("p3").Disconnected = true
	g.PlayerByID("p3").UserID = ""

	next, p, events, err := svc.Rejoin(g, "p3", "Cora", "user-9")
	if err != nil {
		t.Fatalf("rejoin error: %v", err)
	}
	if p.ID != "p3" || p.Disconnected || p.UserID != "user-9" {
		t.Fatalf("seat = %+v, want p3 reattached", p)
	}
	if _, ok := findEvent(events, EventWelcome); !ok {
		t.Fatal("expected a welcome event on rejoin")
	}

	// An unknown seat id degrades to a fresh join.
	lobby := lobbyGame(t, svc, "Anna")
	next, p, _, err = svc.Rejoin(lobby, "no-such-seat", "Ben", "user-9")
	if err != nil {
		t.Fatalf("rejoin as fresh join error: %v", err)
	}
	if p.Name != "Ben" || len(next.Players) != 2 {
		t.Fatalf("fresh join result = %+v with %d players, want new seat Ben", p, len(next.Players))
	}
}

func TestLeaveInLobbyRemovesSeatAndPromotesHost(t *testing.T) {
	svc := testService(1)
	g := lobbyGame(t, svc, "Anna", "Ben", "Cora")
	hostID := g.Players[0].ID

	next, _, err := svc.Leave(g, hostID)
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	if len(next.Players) != 2 {
		t.Fatalf("players = %d, want 2", len(next.Players))
	}
	if next.PlayerByID(hostID) != nil {
		t.Fatal("leaving the lobby must remove the seat")
	}
	if !next.Players[0].IsHost {
		t.Fatal("host seat must transfer to the next participant")
	}
}

func TestLeaveMidGameMarksDisconnected(t *testing.T) {
	svc := testService(1)
	g := playingGame()

	next, _, err := svc.Leave(g, "p1")
	if err != nil {
		t.Fatalf("leave error: %v", err)
	}
	p1 := next.PlayerByID("p1")
	if p1 == nil || !p1.Disconnected {
		t.Fatal("mid-game leave must keep the seat and mark it disconnected")
	}
	if p1.IsHost {
		t.Fatal("disconnected seat must not keep the host flag")
	}
	if !next.PlayerByID("p2").IsHost {
		t.Fatal("host must pass to the first connected participant")
	}
	if p1.Hand == nil || len(p1.Hand) != 2 {
		t.Fatalf("hand = %v, want preserved for rejoin", p1.Hand)
	}
}

func TestStartGameStandard(t *testing.T) {
	svc := testService(7)
	g := lobbyGame(t, svc, "Anna", "Ben", "Cora", "Dan")

	next, events, err := svc.StartGame(g, g.Players[0].ID)
	if err != nil {
		t.Fatalf("start error: %v", err)
	}
	if next.Phase != domain.PhaseSetup {
		t.Fatalf("phase = %s, want %s", next.Phase, domain.PhaseSetup)
	}
	if next.SmallGame {
		t.Fatal("four humans must not enter small-game mode")
	}
	for _, p := range next.Players {
		if len(p.Hand) != 5 {
			t.Fatalf("hand size = %d, want 5", len(p.Hand))
		}
	}

	handEvents := 0
	for _, ev := range events {
		if ev.Kind == EventHandUpdated {
			handEvents++
			if len(ev.Recipients) != 1 {
				t.Fatalf("hand update recipients = %v, want exactly one", ev.Recipients)
			}
		}
	}
	if handEvents != 4 {
		t.Fatalf("hand events = %d, want 4", handEvents)
	}
}

func TestStartGameTwoPlayersBuildsGhostRing(t *testing.T) {
	svc := testService(11)
	g := lobbyGame(t, svc, "Anna", "Ben")

	next, events, err := svc.StartGame(g, g.Players[0].ID)
	if err != nil {
		t.Fatalf("start error: %v", err)
	}
	if !next.SmallGame {
		t.Fatal("two humans must enter small-game mode")
	}
	if len(next.Players) != 4 {
		t.Fatalf("seats = %d, want 4", len(next.Players))
	}
	wantGhost := []bool{false, true, false, true}
	for i, p := range next.Players {
		if p.IsGhost != wantGhost[i] {
			t.Fatalf("seat %d ghost = %v, want %v", i, p.IsGhost, wantGhost[i])
		}
		if len(p.Hand) != 5 {
			t.Fatalf("seat %d hand size = %d, want 5 from the four-seat row", i, len(p.Hand))
		}
	}
	if next.Players[0].Name != "Anna" || next.Players[2].Name != "Ben" {
		t.Fatalf("humans out of order: %s, %s", next.Players[0].Name, next.Players[2].Name)
	}

	// Ghost seats have no transport address and must never get a hand event.
	for _, ev := range events {
		if ev.Kind != EventHandUpdated {
			continue
		}
		payload := ev.Payload.(HandUpdatedPayload)
		if p := next.PlayerByID(payload.PlayerID); p == nil || p.IsGhost {
			t.Fatalf("hand update addressed to ghost seat %s", payload.PlayerID)
		}
	}
}

func TestStartGameGates(t *testing.T) {
	svc := testService(1)
	g := lobbyGame(t, svc, "Anna", "Ben")

	if _, _, err := svc.StartGame(g, g.Players[1].ID); !errors.Is(err, ErrNotHost) {
		t.Fatalf("err = %v, want ErrNotHost", err)
	}

	solo := lobbyGame(t, svc, "Anna")
	if _, _, err := svc.StartGame(solo, solo.Players[0].ID); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}

	started := playingGame()
	if _, _, err := svc.StartGame(started, "p1"); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("err = %v, want ErrWrongPhase", err)
	}
}

func TestStartGameDoesNotMutateInput(t *testing.T) {
	svc := testService(3)
	g := lobbyGame(t, svc, "Anna", "Ben", "Cora", "Dan")

	if _, _, err := svc.StartGame(g, g.Players[0].ID); err != nil {
		t.Fatalf("start error: %v", err)
	}
	if g.Phase != domain.PhaseLobby {
		t.Fatalf("input phase = %s, want untouched lobby", g.Phase)
	}
	for _, p := range g.Players {
		if len(p.Hand) != 0 {
			t.Fatal("input roster must stay undealt")
		}
	}
}
