package nakama

const (
	// RpcFindRoom is the Nakama RPC id clients call to find or create a joinable room.
	RpcFindRoom = "find_room"

	// MatchNameWitchhunt is the authoritative match handler name registered with Nakama.
	MatchNameWitchhunt = "witchhunt_match"

	// MatchLabelGame is the game tag indexed in every room's match label.
	MatchLabelGame = "witchhunt"

	// StorageCollectionRooms holds one snapshot per room so seats survive a restart.
	StorageCollectionRooms = "witchhunt_rooms"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpJoin         int64 = 1
	OpRejoin       int64 = 2
	OpAction       int64 = 3
	OpStartGame    int64 = 4
	OpAdvancePhase int64 = 5
	OpResolveNight int64 = 6
	OpLeave        int64 = 7

	// Server -> Client events
	OpWelcome     int64 = 101 // send privately
	OpStateUpdate int64 = 102
	OpHandUpdate  int64 = 103 // send privately
	OpError       int64 = 104 // send privately
)
