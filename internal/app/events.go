package app

import "witchhunt/internal/domain"

// EventKind identifies emitted app events for transport dispatch.
type EventKind string

const (
	EventWelcome      EventKind = "welcome"
	EventStateUpdated EventKind = "state_updated"
	EventHandUpdated  EventKind = "hand_updated"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // transport user IDs; empty means broadcast
}

// WelcomePayload greets a newly attached participant with its seat id and the
// current masked state.
type WelcomePayload struct {
	PlayerID string
	Name     string
	State    domain.GameView
}

// StateUpdatedPayload carries the public masked state broadcast on every mutation.
type StateUpdatedPayload struct {
	State domain.GameView
}

// HandUpdatedPayload carries one participant's private unmasked hand.
type HandUpdatedPayload struct {
	PlayerID string
	Cards    []domain.Card
}
