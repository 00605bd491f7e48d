package http

import (
	"encoding/json"
	"strings"

	"github.com/amananurag20/Virtual-focus-room-sub000/internal/core"
	"github.com/amananurag20/Virtual-focus-room-sub000/internal/proto"
)

var relaySignalKinds = map[string]core.SignalKind{
	proto.InboundTypeOffer:          core.SignalOffer,
	proto.InboundTypeAnswer:         core.SignalAnswer,
	proto.InboundTypeICECandidate:   core.SignalICECandidate,
	proto.InboundTypePing:           core.SignalPing,
	proto.InboundTypeRequestSend:    core.SignalRequest,
	proto.InboundTypeRequestRespond: core.SignalRequestResponse,
}

var signalEventNames = map[core.SignalKind]string{
	core.SignalOffer:           proto.EventOffer,
	core.SignalAnswer:          proto.EventAnswer,
	core.SignalICECandidate:    proto.EventICECandidate,
	core.SignalPing:            proto.EventPinged,
	core.SignalRequest:         proto.EventRequestReceived,
	core.SignalRequestResponse: proto.EventRequestResponse,
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeRoomCreate:
		var create proto.CreateRoomData
		if err := json.Unmarshal(inbound.Data, &create); err != nil {
			return nil, badRequest("malformed room:create payload")
		}
		return &core.Command{
			Kind:        core.CommandCreateRoom,
			RoomName:    strings.TrimSpace(create.RoomName),
			DisplayName: strings.TrimSpace(create.DisplayName),
		}, nil

	case proto.InboundTypeRoomJoin:
		var join proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, badRequest("malformed room:join payload")
		}
		if join.RoomID == "" {
			return nil, badRequest("roomId is required")
		}
		return &core.Command{
			Kind:        core.CommandJoinRoom,
			RoomID:      join.RoomID,
			DisplayName: strings.TrimSpace(join.DisplayName),
		}, nil

	case proto.InboundTypeRoomLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil

	case proto.InboundTypeMediaToggle:
		var toggle proto.MediaToggleData
		if err := json.Unmarshal(inbound.Data, &toggle); err != nil {
			return nil, badRequest("malformed media:toggle payload")
		}
		kind := core.MediaKind(toggle.Kind)
		if kind != core.MediaAudio && kind != core.MediaVideo {
			return nil, badRequest("kind must be audio or video")
		}
		return &core.Command{
			Kind:    core.CommandToggleMedia,
			Media:   kind,
			Enabled: toggle.Enabled,
		}, nil

	case proto.InboundTypeChatMessage:
		var chat proto.ChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, badRequest("malformed chat:message payload")
		}
		if strings.TrimSpace(chat.Text) == "" {
			return nil, badRequest("text is required")
		}
		return &core.Command{
			Kind: core.CommandSendChat,
			Text: chat.Text,
		}, nil
	}

	if kind, ok := relaySignalKinds[inbound.Type]; ok {
		var relay proto.RelayData
		if err := json.Unmarshal(inbound.Data, &relay); err != nil {
			return nil, badRequest("malformed relay payload")
		}
		if relay.To == "" {
			return nil, badRequest("to is required")
		}
		return &core.Command{
			Kind: core.CommandRelay,
			Relay: &core.Relay{
				Kind:    kind,
				To:      relay.To,
				Payload: relay.Payload,
			},
		}, nil
	}

	return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}
}

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoomsList:
		return eventOutbound(proto.EventRoomsList, roomSummaries(event.Rooms))

	case core.EventRoomCreated:
		info := roomInfo(event.Room)
		return eventOutbound(proto.EventRoomCreated, proto.EventRoomCreatedData{
			RoomID: info.ID,
			Room:   info,
		})

	case core.EventRoomJoined:
		return eventOutbound(proto.EventRoomJoined, proto.EventRoomJoinedData{
			Room:            roomInfo(event.Room),
			ExistingMembers: members(event.ExistingMembers),
		})

	case core.EventUserJoined:
		return eventOutbound(proto.EventUserJoined, proto.EventUserJoinedData{
			ConnectionID: event.ConnID,
			DisplayName:  event.DisplayName,
		})

	case core.EventUserLeft:
		return eventOutbound(proto.EventUserLeft, proto.EventUserLeftData{
			ConnectionID: event.ConnID,
		})

	case core.EventMediaToggle:
		return eventOutbound(proto.EventMediaToggle, proto.EventMediaToggleData{
			ConnectionID: event.ConnID,
			Kind:         string(event.Media),
			Enabled:      event.Enabled,
		})

	case core.EventChatMessage:
		if event.Message == nil {
			return proto.Outbound{Type: proto.OutboundTypeEvent}
		}
		return eventOutbound(proto.EventChatMessage, chatMessage(*event.Message))

	case core.EventSignal:
		if event.Signal == nil {
			return proto.Outbound{Type: proto.OutboundTypeEvent}
		}
		return eventOutbound(signalEventNames[event.Signal.Kind], proto.EventSignalData{
			From:     event.Signal.From,
			FromName: event.Signal.FromName,
			Payload:  event.Signal.Payload,
		})

	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}

	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func roomSummaries(rooms []core.RoomSummary) []proto.RoomSummary {
	out := make([]proto.RoomSummary, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, proto.RoomSummary{
			ID:          r.ID,
			Name:        r.Name,
			MemberCount: r.MemberCount,
			CreatedAt:   r.CreatedAt.UnixMilli(),
		})
	}
	return out
}

func roomInfo(snapshot *core.RoomSnapshot) proto.RoomInfo {
	if snapshot == nil {
		return proto.RoomInfo{}
	}
	chat := make([]proto.ChatMessage, 0, len(snapshot.Chat))
	for _, msg := range snapshot.Chat {
		chat = append(chat, chatMessage(msg))
	}
	return proto.RoomInfo{
		ID:        snapshot.ID,
		Name:      snapshot.Name,
		CreatedAt: snapshot.CreatedAt.UnixMilli(),
		Members:   members(snapshot.Members),
		Chat:      chat,
	}
}

func members(infos []core.MemberInfo) []proto.Member {
	out := make([]proto.Member, 0, len(infos))
	for _, m := range infos {
		out = append(out, proto.Member{
			ConnectionID: m.ConnID,
			DisplayName:  m.DisplayName,
			AudioEnabled: m.AudioEnabled,
			VideoEnabled: m.VideoEnabled,
		})
	}
	return out
}

func chatMessage(msg core.ChatMessage) proto.ChatMessage {
	return proto.ChatMessage{
		ID:           msg.ID,
		ConnectionID: msg.ConnID,
		DisplayName:  msg.DisplayName,
		Text:         msg.Text,
		Timestamp:    msg.Timestamp.UnixMilli(),
	}
}
