package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameBridge is the authoritative match handler name registered with Nakama.
	MatchNameBridge = "sgbridge_match"

	// matchLabelGame tags match labels for quick-match queries.
	matchLabelGame = "sgbridge"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame   int64 = 1
	OpSubmitBid   int64 = 2
	OpCallPartner int64 = 3
	OpPlayCard    int64 = 4
	OpAddBot      int64 = 5
	OpNewGame     int64 = 6

	// Server -> Client events
	OpPlayerJoined    int64 = 101
	OpPlayerLeft      int64 = 102
	OpGameStarted     int64 = 103
	OpHandDealt       int64 = 104 // send privately
	OpHandRedealt     int64 = 105
	OpBidSubmitted    int64 = 106
	OpBiddingClosed   int64 = 107
	OpPartnerCalled   int64 = 108
	OpCardPlayed      int64 = 109
	OpPartnerRevealed int64 = 110
	OpTrickWon        int64 = 111
	OpGameEnded       int64 = 112
	OpGameError       int64 = 120
)
