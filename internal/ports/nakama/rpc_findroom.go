package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"witchhunt/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// FindRoomResponse is the payload returned to clients looking for a joinable room.
type FindRoomResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcFindRoom, rpcFindRoom)
}

func rpcFindRoom(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	// Find any room that is open, in its lobby and is our game.
	query := fmt.Sprintf("+label.open:T +label.game:%s +label.phase:lobby", MatchLabelGame)

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := config.GetMaxPlayers() - 1 // leave a presence slot for the caller

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("MatchList error: %v", err)
		return "", err
	}

	if len(matches) > 0 {
		resp := FindRoomResponse{MatchID: matches[0].MatchId, IsNew: false}
		b, _ := json.Marshal(resp)
		return string(b), nil
	}

	// Create a new room; seat claims happen in the match loop (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameWitchhunt, map[string]interface{}{})
	if err != nil {
		logger.Error("MatchCreate error: %v", err)
		return "", err
	}

	resp := FindRoomResponse{MatchID: matchID, IsNew: true}
	b, _ := json.Marshal(resp)
	return string(b), nil
}
