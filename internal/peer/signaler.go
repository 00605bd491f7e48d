package peer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/proto"
)

// RelaySignaler sends handshake payloads through the server's signaling
// relay over an established WebSocket connection.
type RelaySignaler struct {
	ctx  context.Context
	conn *websocket.Conn
}

// NewRelaySignaler wraps a connected WebSocket. The context bounds
// every outbound write.
func NewRelaySignaler(ctx context.Context, conn *websocket.Conn) *RelaySignaler {
	return &RelaySignaler{ctx: ctx, conn: conn}
}

func (s *RelaySignaler) SendOffer(to string, payload json.RawMessage) error {
	return s.relay(proto.InboundTypeOffer, to, payload)
}

func (s *RelaySignaler) SendAnswer(to string, payload json.RawMessage) error {
	return s.relay(proto.InboundTypeAnswer, to, payload)
}

func (s *RelaySignaler) SendCandidate(to string, payload json.RawMessage) error {
	return s.relay(proto.InboundTypeICECandidate, to, payload)
}

func (s *RelaySignaler) relay(msgType, to string, payload json.RawMessage) error {
	data, err := json.Marshal(proto.RelayData{To: to, Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal relay data: %w", err)
	}
	if err := wsjson.Write(s.ctx, s.conn, proto.Inbound{Type: msgType, Data: data}); err != nil {
		return fmt.Errorf("write %s: %w", msgType, err)
	}
	return nil
}
