package core

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub(nil, nil)
	go hub.Run(ctx)

	sender := NewClient("sender", "sender", 0, "")
	hub.RegisterClient(sender)
	sender.Commands <- &Command{Kind: CommandCreateRoom, RoomName: "bench", DisplayName: "sender"}

	var roomID string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && roomID == "" {
		select {
		case ev := <-sender.Events:
			if ev != nil && ev.Kind == EventRoomCreated {
				roomID = ev.Room.ID
			}
		default:
			time.Sleep(time.Millisecond)
		}
	}
	if roomID == "" {
		b.Fatal("room was not created")
	}

	// All recipients but the measured target are drained in the
	// background to avoid channel backpressure.
	for i := 0; i < recipients-1; i++ {
		c := NewClient(fmt.Sprintf("c%d", i), "client", 0, "")
		hub.RegisterClient(c)
		c.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
		go func(cl *Client) {
			for range cl.Events {
			}
		}(c)
	}
	go func() {
		for range sender.Events {
		}
	}()

	// The target joins last so no membership churn lands in its buffer
	// once the measured loop starts.
	target := NewClient("target", "target", 0, "")
	hub.RegisterClient(target)
	target.Commands <- &Command{Kind: CommandJoinRoom, RoomID: roomID}
	for ev := range target.Events {
		if ev.Kind == EventRoomJoined {
			break
		}
	}
	for len(target.Events) > 0 {
		<-target.Events
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		sender.Commands <- &Command{Kind: CommandSendChat, Text: "payload"}
		for ev := range target.Events {
			if ev.Kind == EventChatMessage {
				break
			}
		}
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
