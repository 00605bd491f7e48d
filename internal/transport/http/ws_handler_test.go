package http

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/proto"
)

// outboundFrame mirrors proto.Outbound with raw data for test decoding.
type outboundFrame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func dialWS(ctx context.Context, t *testing.T, ts string) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "done") })

	return conn
}

func sendInbound(ctx context.Context, t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()

	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal %s payload: %v", msgType, err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// nextEvent reads frames until one carries the named event. Directory
// broadcasts interleave with everything, so callers skip past them.
func nextEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) outboundFrame {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read while waiting for %q: %v", event, err)
		}
		if frame.Type == proto.OutboundTypeError {
			t.Fatalf("error frame while waiting for %q: %+v", event, frame.Error)
		}
		if frame.Event == event {
			return frame
		}
	}
}

func nextError(ctx context.Context, t *testing.T, conn *websocket.Conn) *proto.Error {
	t.Helper()

	for {
		var frame outboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			t.Fatalf("read while waiting for error frame: %v", err)
		}
		if frame.Type == proto.OutboundTypeError {
			if frame.Error == nil {
				t.Fatal("error frame without error body")
			}
			return frame.Error
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts, _, _ := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketRoomLifecycleAndChat(t *testing.T) {
	ts, _, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(ctx, t, ts.URL)
	connB := dialWS(ctx, t, ts.URL)

	sendInbound(ctx, t, connA, proto.InboundTypeRoomCreate, proto.CreateRoomData{
		RoomName:    "deep work",
		DisplayName: "alice",
	})

	created := nextEvent(ctx, t, connA, proto.EventRoomCreated)
	var createdData proto.EventRoomCreatedData
	if err := json.Unmarshal(created.Data, &createdData); err != nil {
		t.Fatalf("unmarshal room:created: %v", err)
	}
	if createdData.Room.Name != "deep work" {
		t.Fatalf("unexpected room name: %q", createdData.Room.Name)
	}
	if len(createdData.Room.Members) != 1 {
		t.Fatalf("expected creator as sole member, got %d", len(createdData.Room.Members))
	}
	aliceConnID := createdData.Room.Members[0].ConnectionID

	// The new room shows up in B's directory broadcast.
	listed := nextEvent(ctx, t, connB, proto.EventRoomsList)
	var rooms []proto.RoomSummary
	for {
		if err := json.Unmarshal(listed.Data, &rooms); err != nil {
			t.Fatalf("unmarshal rooms:list: %v", err)
		}
		if len(rooms) > 0 {
			break
		}
		listed = nextEvent(ctx, t, connB, proto.EventRoomsList)
	}
	if rooms[0].ID != createdData.RoomID || rooms[0].MemberCount != 1 {
		t.Fatalf("unexpected directory entry: %+v", rooms[0])
	}

	sendInbound(ctx, t, connB, proto.InboundTypeRoomJoin, proto.JoinRoomData{
		RoomID:      createdData.RoomID,
		DisplayName: "bob",
	})

	joined := nextEvent(ctx, t, connB, proto.EventRoomJoined)
	var joinedData proto.EventRoomJoinedData
	if err := json.Unmarshal(joined.Data, &joinedData); err != nil {
		t.Fatalf("unmarshal room:joined: %v", err)
	}
	if len(joinedData.ExistingMembers) != 1 || joinedData.ExistingMembers[0].ConnectionID != aliceConnID {
		t.Fatalf("unexpected existing members: %+v", joinedData.ExistingMembers)
	}

	notified := nextEvent(ctx, t, connA, proto.EventUserJoined)
	var joinNote proto.EventUserJoinedData
	if err := json.Unmarshal(notified.Data, &joinNote); err != nil {
		t.Fatalf("unmarshal user:joined: %v", err)
	}
	if joinNote.DisplayName != "bob" {
		t.Fatalf("unexpected joiner: %+v", joinNote)
	}

	sendInbound(ctx, t, connA, proto.InboundTypeChatMessage, proto.ChatData{Text: "hi there"})

	for _, conn := range []*websocket.Conn{connA, connB} {
		frame := nextEvent(ctx, t, conn, proto.EventChatMessage)
		var msg proto.ChatMessage
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			t.Fatalf("unmarshal chat:message: %v", err)
		}
		if msg.Text != "hi there" || msg.ConnectionID != aliceConnID {
			t.Fatalf("unexpected chat message: %+v", msg)
		}
		if msg.ID == "" || msg.Timestamp == 0 {
			t.Fatalf("chat message missing server-assigned fields: %+v", msg)
		}
	}
}

func TestWebSocketSignalRelay(t *testing.T) {
	ts, _, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	connA := dialWS(ctx, t, ts.URL)
	connB := dialWS(ctx, t, ts.URL)

	sendInbound(ctx, t, connA, proto.InboundTypeRoomCreate, proto.CreateRoomData{DisplayName: "alice"})
	created := nextEvent(ctx, t, connA, proto.EventRoomCreated)
	var createdData proto.EventRoomCreatedData
	if err := json.Unmarshal(created.Data, &createdData); err != nil {
		t.Fatalf("unmarshal room:created: %v", err)
	}
	aliceConnID := createdData.Room.Members[0].ConnectionID

	sendInbound(ctx, t, connB, proto.InboundTypeRoomJoin, proto.JoinRoomData{
		RoomID:      createdData.RoomID,
		DisplayName: "bob",
	})
	nextEvent(ctx, t, connB, proto.EventRoomJoined)

	offer := json.RawMessage(`{"sdp":"v=0 fake","type":"offer"}`)
	sendInbound(ctx, t, connB, proto.InboundTypeOffer, proto.RelayData{
		To:      aliceConnID,
		Payload: offer,
	})

	frame := nextEvent(ctx, t, connA, proto.EventOffer)
	var signal proto.EventSignalData
	if err := json.Unmarshal(frame.Data, &signal); err != nil {
		t.Fatalf("unmarshal signal: %v", err)
	}
	if signal.From == "" || signal.From == aliceConnID {
		t.Fatalf("unexpected sender tag: %q", signal.From)
	}
	if signal.FromName != "bob" {
		t.Fatalf("offer should carry sender display name, got %q", signal.FromName)
	}
	if string(signal.Payload) != string(offer) {
		t.Fatalf("payload altered in transit: %s", signal.Payload)
	}
}

func TestWebSocketRejectsMalformedMessages(t *testing.T) {
	ts, _, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(ctx, t, ts.URL)

	sendInbound(ctx, t, conn, "bogus:type", struct{}{})
	if perr := nextError(ctx, t, conn); perr.Code != "invalid_message" {
		t.Fatalf("unexpected error code: %q", perr.Code)
	}

	// Connection survives the rejection.
	sendInbound(ctx, t, conn, proto.InboundTypeRoomJoin, proto.JoinRoomData{RoomID: "missing"})
	if perr := nextError(ctx, t, conn); perr.Code != "room_not_found" {
		t.Fatalf("unexpected error code: %q", perr.Code)
	}
}

func TestWebSocketRejectsInvalidToken(t *testing.T) {
	ts, _, _ := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws?token=not-a-jwt"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		// Some servers reject at upgrade time, which is fine too.
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	var frame outboundFrame
	readErr := wsjson.Read(ctx, conn, &frame)
	if readErr == nil {
		t.Fatal("expected connection to be closed for invalid token")
	}
	if websocket.CloseStatus(readErr) != websocket.StatusPolicyViolation {
		t.Fatalf("expected policy violation close, got: %v", readErr)
	}
}
