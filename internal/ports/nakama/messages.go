package nakama

import (
	"encoding/json"
	"fmt"

	"witchhunt/internal/app"
	"witchhunt/internal/domain"
)

// Client -> server payloads.

type JoinMessage struct {
	Name string `json:"name"`
}

type RejoinMessage struct {
	Name     string `json:"name,omitempty"`
	EntityID string `json:"entity_id,omitempty"`
	Ticket   string `json:"ticket,omitempty"`
}

type LeaveMessage struct {
	EntityID string `json:"entity_id,omitempty"`
}

// ActionMessage is the envelope for every in-game move. Kind selects the
// action and Payload carries its parameters, if any.
type ActionMessage struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type ResolveNightMessage struct {
	TargetDies bool `json:"target_dies"`
}

// Server -> client payloads.

type WelcomeMessage struct {
	EntityID string          `json:"entity_id"`
	Ticket   string          `json:"ticket,omitempty"`
	State    domain.GameView `json:"state"`
}

type StateUpdateMessage struct {
	State domain.GameView `json:"state"`
}

type HandUpdateMessage struct {
	EntityID string        `json:"entity_id"`
	Cards    []domain.Card `json:"cards"`
}

type ErrorMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Action payload shapes, keyed by ActionMessage.Kind.

type targetPayload struct {
	TargetID string `json:"target_id"`
}

type cardPayload struct {
	CardID string `json:"card_id"`
}

type confirmPayload struct {
	FakeTargetID string `json:"fake_target_id,omitempty"`
}

type damagePayload struct {
	CardIDs []string `json:"card_ids"`
}

type conspiracyPayload struct {
	CardID string `json:"card_id"`
	ForID  string `json:"for_id,omitempty"`
}

// decodeAction maps a wire action onto the service's closed action set.
func decodeAction(kind string, raw json.RawMessage) (app.Action, error) {
	unmarshal := func(v interface{}) error {
		if len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("invalid %s payload: %w", kind, err)
		}
		return nil
	}

	switch kind {
	case "accuse_start":
		var p targetPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.AccuseStart{TargetID: p.TargetID}, nil
	case "accuse_accept":
		return app.AccuseAccept{}, nil
	case "accuse_cancel":
		return app.AccuseCancel{}, nil
	case "accuse_reveal":
		var p cardPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.AccuseReveal{CardID: p.CardID}, nil
	case "night_confirm":
		var p confirmPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.NightConfirm{FakeTargetID: p.FakeTargetID}, nil
	case "kill_vote":
		var p targetPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.KillVote{TargetID: p.TargetID}, nil
	case "black_cat":
		var p targetPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.BlackCatVote{TargetID: p.TargetID}, nil
	case "guard_vote":
		var p targetPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.GuardVote{TargetID: p.TargetID}, nil
	case "guard_skip":
		return app.GuardSkip{}, nil
	case "self_reveal":
		var p cardPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.SelfReveal{CardID: p.CardID}, nil
	case "confession_pass":
		return app.ConfessionPass{}, nil
	case "shuffle_hand", "shuffle_ghost":
		var p targetPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.ShuffleHand{TargetID: p.TargetID}, nil
	case "night_damage_select":
		var p damagePayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.NightDamagePick{CardIDs: p.CardIDs}, nil
	case "trigger_conspiracy":
		return app.TriggerConspiracy{}, nil
	case "conspiracy_select", "conspiracy_select_for_other":
		var p conspiracyPayload
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return app.ConspiracySelect{CardID: p.CardID, ForID: p.ForID}, nil
	default:
		return nil, fmt.Errorf("unknown action kind: %q", kind)
	}
}
