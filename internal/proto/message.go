package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeRoomCreate     = "room:create"
	InboundTypeRoomJoin       = "room:join"
	InboundTypeRoomLeave      = "room:leave"
	InboundTypeOffer          = "webrtc:offer"
	InboundTypeAnswer         = "webrtc:answer"
	InboundTypeICECandidate   = "webrtc:ice-candidate"
	InboundTypeMediaToggle    = "media:toggle"
	InboundTypeChatMessage    = "chat:message"
	InboundTypePing           = "user:ping"
	InboundTypeRequestSend    = "request:send"
	InboundTypeRequestRespond = "request:respond"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventRoomsList       = "rooms:list"
	EventRoomCreated     = "room:created"
	EventRoomJoined      = "room:joined"
	EventUserJoined      = "user:joined"
	EventUserLeft        = "user:left"
	EventMediaToggle     = "user:media-toggle"
	EventChatMessage     = "chat:message"
	EventOffer           = "webrtc:offer"
	EventAnswer          = "webrtc:answer"
	EventICECandidate    = "webrtc:ice-candidate"
	EventPinged          = "user:pinged"
	EventRequestReceived = "request:received"
	EventRequestResponse = "request:response"
)

// CreateRoomData requests a new room; the creator joins atomically.
type CreateRoomData struct {
	RoomName    string `json:"roomName,omitempty"`
	DisplayName string `json:"displayName"`
}

// JoinRoomData requests admission into an existing room.
type JoinRoomData struct {
	RoomID      string `json:"roomId"`
	DisplayName string `json:"displayName"`
}

// RelayData addresses an opaque payload to another connection.
// The server never inspects Payload.
type RelayData struct {
	To      string          `json:"to"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MediaToggleData reports the client's new audio/video state.
type MediaToggleData struct {
	Kind    string `json:"kind"`
	Enabled bool   `json:"enabled"`
}

// ChatData is a chat message from the client.
type ChatData struct {
	Text string `json:"text"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// RoomSummary is one row of the room directory listing.
type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MemberCount int    `json:"memberCount"`
	CreatedAt   int64  `json:"createdAt"`
}

// Member is the participant view shared with other clients.
type Member struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	AudioEnabled bool   `json:"audioEnabled"`
	VideoEnabled bool   `json:"videoEnabled"`
}

// ChatMessage is a chat entry with server-assigned id and timestamp.
type ChatMessage struct {
	ID           string `json:"id"`
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
	Text         string `json:"text"`
	Timestamp    int64  `json:"timestamp"`
}

// RoomInfo is the room snapshot returned on admission.
type RoomInfo struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt int64         `json:"createdAt"`
	Members   []Member      `json:"members"`
	Chat      []ChatMessage `json:"chat,omitempty"`
}

// EventRoomCreatedData confirms room creation to the creator.
type EventRoomCreatedData struct {
	RoomID string   `json:"roomId"`
	Room   RoomInfo `json:"room"`
}

// EventRoomJoinedData confirms admission; ExistingMembers lists the
// members present before this join so the client can initiate
// signaling toward each.
type EventRoomJoinedData struct {
	Room            RoomInfo `json:"room"`
	ExistingMembers []Member `json:"existingMembers"`
}

// EventUserJoinedData notifies other room members about a new participant.
type EventUserJoinedData struct {
	ConnectionID string `json:"connectionId"`
	DisplayName  string `json:"displayName"`
}

// EventUserLeftData notifies other room members about a departure.
type EventUserLeftData struct {
	ConnectionID string `json:"connectionId"`
}

// EventMediaToggleData notifies other room members about a media change.
type EventMediaToggleData struct {
	ConnectionID string `json:"connectionId"`
	Kind         string `json:"kind"`
	Enabled      bool   `json:"enabled"`
}

// EventSignalData is an addressed relay payload tagged with the sender.
type EventSignalData struct {
	From     string          `json:"from"`
	FromName string          `json:"fromName,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
