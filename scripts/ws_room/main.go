// Command ws_room is an interactive smoke client: it connects to a
// running server, creates or joins a room, chats from stdin, and runs
// the peer orchestrator against every other member it discovers.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/pion/webrtc/v4"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/peer"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_room: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	name := flag.String("name", "cli-user", "display name")
	room := flag.String("room", "", "room id to join; empty creates a new room")
	token := flag.String("token", "", "optional JWT")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	url := *addr
	if *token != "" {
		url += "?token=" + *token
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(msgType string, data any) {
		payload, marshalErr := json.Marshal(data)
		if marshalErr != nil {
			log.Printf("marshal %s: %v", msgType, marshalErr)
			return
		}
		if writeErr := wsjson.Write(ctx, conn, proto.Inbound{Type: msgType, Data: payload}); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}

	manager := peer.NewManager(func(string) (peer.Link, error) {
		track, trackErr := webrtc.NewTrackLocalStaticSample(
			webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus}, "audio", "ws_room")
		if trackErr != nil {
			return nil, trackErr
		}
		return peer.NewPionLink(peer.DefaultRTCConfig(), []webrtc.TrackLocal{track})
	}, peer.NewRelaySignaler(ctx, conn), nil)
	defer manager.CloseAll()

	if *room == "" {
		send(proto.InboundTypeRoomCreate, proto.CreateRoomData{DisplayName: *name})
	} else {
		send(proto.InboundTypeRoomJoin, proto.JoinRoomData{RoomID: *room, DisplayName: *name})
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *name)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn, manager)
	}()

	writeLoop(ctx, send)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn, manager *peer.Manager) {
	for {
		var frame struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if frame.Type == proto.OutboundTypeError {
			log.Printf("server error: %s: %s", frame.Error.Code, frame.Error.Msg)
			continue
		}

		switch frame.Event {
		case proto.EventRoomCreated:
			var evt proto.EventRoomCreatedData
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				log.Printf("unmarshal room:created: %v", err)
				continue
			}
			fmt.Printf("created room %s (%s)\n", evt.Room.Name, evt.RoomID)
		case proto.EventRoomJoined:
			var evt proto.EventRoomJoinedData
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				log.Printf("unmarshal room:joined: %v", err)
				continue
			}
			fmt.Printf("joined room %s with %d other member(s)\n", evt.Room.Name, len(evt.ExistingMembers))
			for _, msg := range evt.Room.Chat {
				fmt.Printf("[history] %s: %s\n", msg.DisplayName, msg.Text)
			}
			// Initiate toward everyone already present.
			for _, member := range evt.ExistingMembers {
				if err := manager.Initiate(member.ConnectionID); err != nil {
					log.Printf("initiate %s: %v", member.ConnectionID, err)
				}
			}
		case proto.EventUserJoined:
			var evt proto.EventUserJoinedData
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				log.Printf("unmarshal user:joined: %v", err)
				continue
			}
			fmt.Printf("%s joined\n", evt.DisplayName)
		case proto.EventUserLeft:
			var evt proto.EventUserLeftData
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				log.Printf("unmarshal user:left: %v", err)
				continue
			}
			manager.ClosePeer(evt.ConnectionID)
			fmt.Printf("%s left\n", evt.ConnectionID)
		case proto.EventChatMessage:
			var msg proto.ChatMessage
			if err := json.Unmarshal(frame.Data, &msg); err != nil {
				log.Printf("unmarshal chat:message: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", msg.DisplayName, msg.Text)
		case proto.EventOffer, proto.EventAnswer, proto.EventICECandidate:
			var sig proto.EventSignalData
			if err := json.Unmarshal(frame.Data, &sig); err != nil {
				log.Printf("unmarshal signal: %v", err)
				continue
			}
			var err error
			switch frame.Event {
			case proto.EventOffer:
				err = manager.HandleOffer(sig.From, sig.Payload)
			case proto.EventAnswer:
				err = manager.HandleAnswer(sig.From, sig.Payload)
			case proto.EventICECandidate:
				err = manager.HandleCandidate(sig.From, sig.Payload)
			}
			if err != nil {
				log.Printf("signal from %s: %v", sig.From, err)
			}
		case proto.EventRoomsList:
			// Directory refreshes are noisy; skip.
		default:
			fmt.Printf("event=%s data=%s\n", frame.Event, frame.Data)
		}
	}
}

func writeLoop(ctx context.Context, send func(string, any)) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			send(proto.InboundTypeChatMessage, proto.ChatData{Text: text})
		}
	}
}
