package peer

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"
)

// DefaultRTCConfig returns the ICE server set used when no explicit
// configuration is supplied.
func DefaultRTCConfig() webrtc.Configuration {
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{"stun:stun.l.google.com:19302"},
			},
		},
	}
}

// pionLink implements Link on a pion PeerConnection.
type pionLink struct {
	pc *webrtc.PeerConnection

	mu      sync.Mutex
	senders map[string]*webrtc.RTPSender

	onCandidate func(json.RawMessage)
	onClosed    func()
	closedOnce  sync.Once
}

// NewPionLink builds a transport context seeded with the locally
// captured tracks. The returned link gathers trickle candidates and
// reports transport failure through OnClosed.
func NewPionLink(cfg webrtc.Configuration, tracks []webrtc.TrackLocal) (Link, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("new peer connection: %w", err)
	}

	l := &pionLink{
		pc:      pc,
		senders: make(map[string]*webrtc.RTPSender),
	}

	for _, track := range tracks {
		sender, err := pc.AddTrack(track)
		if err != nil {
			_ = pc.Close()
			return nil, fmt.Errorf("add track: %w", err)
		}
		l.senders[track.Kind().String()] = sender
	}

	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand == nil {
			return
		}
		l.mu.Lock()
		fn := l.onCandidate
		l.mu.Unlock()
		if fn == nil {
			return
		}
		payload, err := json.Marshal(cand.ToJSON())
		if err != nil {
			return
		}
		fn(payload)
	})

	pc.OnConnectionStateChange(func(s webrtc.PeerConnectionState) {
		if s == webrtc.PeerConnectionStateFailed || s == webrtc.PeerConnectionStateClosed {
			l.fireClosed()
		}
	})

	return l, nil
}

func (l *pionLink) CreateOffer() (json.RawMessage, error) {
	offer, err := l.pc.CreateOffer(nil)
	if err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}
	if err := l.pc.SetLocalDescription(offer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(l.pc.LocalDescription())
}

func (l *pionLink) ApplyOfferCreateAnswer(payload json.RawMessage) (json.RawMessage, error) {
	var offer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil {
		return nil, fmt.Errorf("decode offer: %w", err)
	}
	if err := l.pc.SetRemoteDescription(offer); err != nil {
		return nil, fmt.Errorf("set remote description: %w", err)
	}

	answer, err := l.pc.CreateAnswer(nil)
	if err != nil {
		return nil, fmt.Errorf("create answer: %w", err)
	}
	if err := l.pc.SetLocalDescription(answer); err != nil {
		return nil, fmt.Errorf("set local description: %w", err)
	}
	return json.Marshal(l.pc.LocalDescription())
}

func (l *pionLink) ApplyAnswer(payload json.RawMessage) error {
	var answer webrtc.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil {
		return fmt.Errorf("decode answer: %w", err)
	}
	if err := l.pc.SetRemoteDescription(answer); err != nil {
		return fmt.Errorf("set remote description: %w", err)
	}
	return nil
}

func (l *pionLink) AddCandidate(payload json.RawMessage) error {
	var cand webrtc.ICECandidateInit
	if err := json.Unmarshal(payload, &cand); err != nil {
		return fmt.Errorf("decode candidate: %w", err)
	}
	return l.pc.AddICECandidate(cand)
}

func (l *pionLink) ReplaceTrack(track webrtc.TrackLocal) error {
	l.mu.Lock()
	sender, ok := l.senders[track.Kind().String()]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("no outbound %s sender", track.Kind())
	}
	return sender.ReplaceTrack(track)
}

func (l *pionLink) OnCandidate(fn func(payload json.RawMessage)) {
	l.mu.Lock()
	l.onCandidate = fn
	l.mu.Unlock()
}

func (l *pionLink) OnClosed(fn func()) {
	l.mu.Lock()
	l.onClosed = fn
	l.mu.Unlock()
}

func (l *pionLink) Close() error {
	return l.pc.Close()
}

// fireClosed runs the closed callback at most once, off the pion event
// goroutine's lock.
func (l *pionLink) fireClosed() {
	l.closedOnce.Do(func() {
		l.mu.Lock()
		fn := l.onClosed
		l.mu.Unlock()
		if fn != nil {
			fn()
		}
	})
}
