package core

import "encoding/json"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandCreateRoom creates a room and admits the creator in one step.
	CommandCreateRoom CommandKind = iota
	// CommandJoinRoom admits the client into an existing room.
	CommandJoinRoom
	// CommandLeaveRoom removes the client from its current room.
	CommandLeaveRoom
	// CommandToggleMedia updates the client's audio/video flag.
	CommandToggleMedia
	// CommandSendChat delivers a chat message to room members.
	CommandSendChat
	// CommandRelay forwards an addressed signaling payload to a target
	// connection.
	CommandRelay
)

// SignalKind distinguishes the addressed relay message kinds. All
// follow the same best-effort delivery contract.
type SignalKind string

const (
	SignalOffer           SignalKind = "offer"
	SignalAnswer          SignalKind = "answer"
	SignalICECandidate    SignalKind = "ice-candidate"
	SignalPing            SignalKind = "ping"
	SignalRequest         SignalKind = "request"
	SignalRequestResponse SignalKind = "request-response"
)

// Relay addresses an opaque payload to a target connection. The
// payload is never inspected by the server.
type Relay struct {
	Kind    SignalKind
	To      string
	Payload json.RawMessage
}

// Command represents an action requested by a client.
type Command struct {
	Kind        CommandKind
	RoomID      string
	RoomName    string
	DisplayName string
	Media       MediaKind
	Enabled     bool
	Text        string
	Relay       *Relay
}
