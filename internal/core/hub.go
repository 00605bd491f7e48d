package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/store"
)

// recordTimeout bounds best-effort persistence calls.
const recordTimeout = 5 * time.Second

type clientCommand struct {
	client *Client
	cmd    *Command
}

type snapshotRequest struct {
	reply chan []RoomSummary
}

// Hub owns the room registry and the participant directory. All state
// is mutated on the single goroutine running Run, so each command is
// handled to completion before the next and no locking is needed.
// Event delivery is best-effort: sends to a full client buffer are
// dropped rather than blocking the dispatch loop.
type Hub struct {
	records store.RecordStore
	log     *zerolog.Logger

	register   chan *Client
	unregister chan *Client
	commands   chan clientCommand
	snapshots  chan snapshotRequest

	rooms        map[string]*Room
	participants map[string]*Participant
	clients      map[string]*Client

	roomSeq int
}

// NewHub creates a hub. The record store may be nil, in which case no
// chat or session records are persisted.
func NewHub(records store.RecordStore, logger *zerolog.Logger) *Hub {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Hub{
		records:      records,
		log:          logger,
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		commands:     make(chan clientCommand, 64),
		snapshots:    make(chan snapshotRequest),
		rooms:        make(map[string]*Room),
		participants: make(map[string]*Participant),
		clients:      make(map[string]*Client),
	}
}

// RegisterClient announces a new connection to the hub. The client
// immediately receives the current room directory.
func (h *Hub) RegisterClient(c *Client) {
	h.register <- c
}

// UnregisterClient removes a connection. This is the single teardown
// path for both explicit disconnect and transport-level close; it
// performs the same leave as an explicit room:leave.
func (h *Hub) UnregisterClient(c *Client) {
	h.unregister <- c
}

// Snapshot returns a consistent point-in-time view of the room
// directory, produced on the dispatch goroutine.
func (h *Hub) Snapshot(ctx context.Context) ([]RoomSummary, error) {
	req := snapshotRequest{reply: make(chan []RoomSummary, 1)}
	select {
	case h.snapshots <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case rooms := <-req.reply:
		return rooms, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Run drives the dispatch loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case c := <-h.register:
			h.clients[c.ID] = c
			go h.forward(ctx, c)
			h.send(c, &Event{Kind: EventRoomsList, Rooms: h.roomSummaries()})
			h.log.Debug().Str("client_id", c.ID).Msg("client registered")

		case c := <-h.unregister:
			if _, ok := h.clients[c.ID]; !ok {
				continue
			}
			if h.leave(c) {
				h.broadcastDirectory()
			}
			delete(h.clients, c.ID)
			close(c.done)
			close(c.Events)
			h.log.Debug().Str("client_id", c.ID).Msg("client unregistered")

		case cc := <-h.commands:
			if _, ok := h.clients[cc.client.ID]; !ok {
				continue
			}
			h.dispatch(cc.client, cc.cmd)

		case req := <-h.snapshots:
			req.reply <- h.roomSummaries()

		case <-ctx.Done():
			return
		}
	}
}

// forward funnels one client's commands into the dispatch loop,
// preserving per-connection ordering. It exits when the hub closes the
// client's done channel at unregister.
func (h *Hub) forward(ctx context.Context, c *Client) {
	for {
		select {
		case cmd, ok := <-c.Commands:
			if !ok {
				return
			}
			select {
			case h.commands <- clientCommand{client: c, cmd: cmd}:
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) dispatch(c *Client, cmd *Command) {
	switch cmd.Kind {
	case CommandCreateRoom:
		h.handleCreateRoom(c, cmd)
	case CommandJoinRoom:
		h.handleJoinRoom(c, cmd)
	case CommandLeaveRoom:
		if h.leave(c) {
			h.broadcastDirectory()
		}
	case CommandToggleMedia:
		h.handleToggleMedia(c, cmd)
	case CommandSendChat:
		h.handleSendChat(c, cmd)
	case CommandRelay:
		h.handleRelay(c, cmd)
	}
}

func (h *Hub) handleCreateRoom(c *Client, cmd *Command) {
	now := time.Now()
	h.roomSeq++
	name := cmd.RoomName
	if name == "" {
		name = fmt.Sprintf("Focus Room %d", h.roomSeq)
	}

	room := NewRoom(uuid.NewString(), name, now)
	h.rooms[room.ID] = room

	// Creation and self-join are one atomic admission: the creator can
	// never observe their own room as absent.
	h.admit(c, room, cmd.DisplayName, now)
	h.send(c, &Event{Kind: EventRoomCreated, Room: h.snapshotRoom(room)})
	h.broadcastDirectory()

	h.log.Info().Str("room_id", room.ID).Str("room_name", name).Str("client_id", c.ID).Msg("room created")
}

func (h *Hub) handleJoinRoom(c *Client, cmd *Command) {
	room, ok := h.rooms[cmd.RoomID]
	if !ok {
		h.send(c, &Event{Kind: EventError, Error: coreError(ErrCodeRoomNotFound, "room not found")})
		return
	}

	existing, changed := h.admit(c, room, cmd.DisplayName, time.Now())
	h.send(c, &Event{Kind: EventRoomJoined, Room: h.snapshotRoom(room), ExistingMembers: existing})
	if changed {
		h.broadcastDirectory()
	}
}

// admit inserts the client into the room and returns the members that
// were present before this join. A duplicate join for the same room
// re-affirms membership without duplicating it; joining while in
// another room leaves that room first.
func (h *Hub) admit(c *Client, room *Room, displayName string, now time.Time) ([]MemberInfo, bool) {
	if p, ok := h.participants[c.ID]; ok {
		if p.RoomID == room.ID {
			if displayName != "" {
				p.DisplayName = displayName
			}
			return h.memberInfos(room, c.ID), false
		}
		h.leave(c)
	}

	if displayName == "" {
		displayName = c.Name
	}

	existing := h.memberInfos(room, c.ID)

	h.participants[c.ID] = &Participant{
		ConnID:       c.ID,
		DisplayName:  displayName,
		RoomID:       room.ID,
		AudioEnabled: true,
		VideoEnabled: true,
		JoinedAt:     now,
	}
	room.AddMember(c.ID)

	h.broadcastRoom(room, &Event{
		Kind:        EventUserJoined,
		ConnID:      c.ID,
		DisplayName: displayName,
	}, c.ID)

	return existing, true
}

// leave removes the participant from its room and deletes the room if
// it became empty. Idempotent: unknown participants are a no-op.
func (h *Hub) leave(c *Client) bool {
	p, ok := h.participants[c.ID]
	if !ok {
		return false
	}
	delete(h.participants, c.ID)

	if room, ok := h.rooms[p.RoomID]; ok {
		room.RemoveMember(c.ID)
		h.broadcastRoom(room, &Event{
			Kind:        EventUserLeft,
			ConnID:      c.ID,
			DisplayName: p.DisplayName,
		}, c.ID)
		if room.Empty() {
			delete(h.rooms, room.ID)
			h.log.Info().Str("room_id", room.ID).Msg("room deleted")
		}
	}

	h.recordSession(c, p)
	return true
}

func (h *Hub) handleToggleMedia(c *Client, cmd *Command) {
	p, ok := h.participants[c.ID]
	if !ok {
		// Toggle raced with a just-completed leave.
		return
	}
	switch cmd.Media {
	case MediaAudio:
		p.AudioEnabled = cmd.Enabled
	case MediaVideo:
		p.VideoEnabled = cmd.Enabled
	default:
		return
	}

	room, ok := h.rooms[p.RoomID]
	if !ok {
		return
	}
	// The sender already knows its own new state.
	h.broadcastRoom(room, &Event{
		Kind:    EventMediaToggle,
		ConnID:  c.ID,
		Media:   cmd.Media,
		Enabled: cmd.Enabled,
	}, c.ID)
}

func (h *Hub) handleSendChat(c *Client, cmd *Command) {
	p, ok := h.participants[c.ID]
	if !ok {
		return
	}
	room, ok := h.rooms[p.RoomID]
	if !ok {
		return
	}

	msg := ChatMessage{
		ID:          uuid.NewString(),
		ConnID:      c.ID,
		DisplayName: p.DisplayName,
		Text:        cmd.Text,
		Timestamp:   time.Now(),
	}
	room.AppendChat(msg)

	// The sender is included so it sees the server-assigned id and
	// timestamp echoed back.
	h.broadcastRoom(room, &Event{Kind: EventChatMessage, Message: &msg}, "")

	h.recordChat(c, room, msg)
}

// handleRelay forwards an addressed payload to the target connection.
// Delivery is an existence check at the moment of relay: a missing
// target drops the message silently.
func (h *Hub) handleRelay(c *Client, cmd *Command) {
	relay := cmd.Relay
	if relay == nil {
		return
	}
	target, ok := h.clients[relay.To]
	if !ok {
		h.log.Debug().Str("client_id", c.ID).Str("target", relay.To).Str("kind", string(relay.Kind)).Msg("relay target gone")
		return
	}

	sig := &Signal{Kind: relay.Kind, From: c.ID, Payload: relay.Payload}
	if relay.Kind == SignalOffer {
		if p, ok := h.participants[c.ID]; ok {
			sig.FromName = p.DisplayName
		} else {
			sig.FromName = c.Name
		}
	}

	h.send(target, &Event{Kind: EventSignal, Signal: sig})
}

func (h *Hub) recordChat(c *Client, room *Room, msg ChatMessage) {
	if h.records == nil {
		return
	}
	rec := store.ChatRecord{
		UserID:      c.UserID,
		RoomID:      room.ID,
		ConnID:      msg.ConnID,
		DisplayName: msg.DisplayName,
		Text:        msg.Text,
		CreatedAt:   msg.Timestamp,
	}
	logger := h.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := h.records.SaveChatRecord(ctx, rec); err != nil {
			logger.Warn().Err(err).Str("room_id", rec.RoomID).Msg("save chat record")
		}
	}()
}

func (h *Hub) recordSession(c *Client, p *Participant) {
	if h.records == nil || c.UserID == 0 {
		return
	}
	rec := store.SessionRecord{
		UserID:   c.UserID,
		RoomID:   p.RoomID,
		JoinedAt: p.JoinedAt,
		Duration: time.Since(p.JoinedAt),
	}
	logger := h.log
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := h.records.SaveSessionRecord(ctx, rec); err != nil {
			logger.Warn().Err(err).Int64("user_id", rec.UserID).Msg("save session record")
		}
	}()
}

// broadcastDirectory sends the full room listing to every connected
// client. Full list, not a delta: room counts are small.
func (h *Hub) broadcastDirectory() {
	ev := &Event{Kind: EventRoomsList, Rooms: h.roomSummaries()}
	for _, c := range h.clients {
		h.send(c, ev)
	}
}

// broadcastRoom sends an event to every member of a room except the
// excluded connection.
func (h *Hub) broadcastRoom(room *Room, ev *Event, exclude string) {
	for id := range room.members {
		if id == exclude {
			continue
		}
		if c, ok := h.clients[id]; ok {
			h.send(c, ev)
		}
	}
}

func (h *Hub) send(c *Client, ev *Event) {
	select {
	case c.Events <- ev:
	default:
		// Drop if slow consumer.
		h.log.Warn().Str("client_id", c.ID).Msg("event dropped, slow consumer")
	}
}

func (h *Hub) roomSummaries() []RoomSummary {
	out := make([]RoomSummary, 0, len(h.rooms))
	for _, room := range h.rooms {
		out = append(out, RoomSummary{
			ID:          room.ID,
			Name:        room.Name,
			MemberCount: room.MemberCount(),
			CreatedAt:   room.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func (h *Hub) snapshotRoom(room *Room) *RoomSnapshot {
	return &RoomSnapshot{
		ID:        room.ID,
		Name:      room.Name,
		CreatedAt: room.CreatedAt,
		Members:   h.memberInfos(room, ""),
		Chat:      room.ChatHistory(),
	}
}

func (h *Hub) memberInfos(room *Room, exclude string) []MemberInfo {
	infos := make([]MemberInfo, 0, room.MemberCount())
	for id := range room.members {
		if id == exclude {
			continue
		}
		if p, ok := h.participants[id]; ok {
			infos = append(infos, p.info())
		}
	}
	return infos
}
