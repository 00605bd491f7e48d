// Package peer implements the client-side per-remote-peer connection
// orchestrator. The server only relays opaque handshake payloads; each
// client runs one state machine per remote participant to turn those
// payloads into an established media channel.
package peer

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"
)

// State of a single remote-peer context.
type State int

const (
	// StateIdle means no transport context exists for the peer.
	StateIdle State = iota
	// StateOffering means a local offer is in flight, awaiting an answer.
	StateOffering
	// StateAnswering means a remote offer is being answered.
	StateAnswering
	// StateConnected means local and remote descriptions are both set.
	StateConnected
	// StateClosed means the context was torn down.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOffering:
		return "offering"
	case StateAnswering:
		return "answering"
	case StateConnected:
		return "connected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Signaler transmits handshake payloads toward a remote connection id.
// Delivery is best-effort; a lost message is recovered by the remote
// peer's own reconnect cycle, never by retry here.
type Signaler interface {
	SendOffer(to string, payload json.RawMessage) error
	SendAnswer(to string, payload json.RawMessage) error
	SendCandidate(to string, payload json.RawMessage) error
}

// Link is one transport context toward a remote peer. Payloads are the
// browser-compatible JSON encodings of session descriptions and ICE
// candidates; the orchestrator treats them as opaque.
type Link interface {
	// CreateOffer produces a local offer. Candidates gather in the
	// background and trickle out through OnCandidate.
	CreateOffer() (json.RawMessage, error)

	// ApplyOfferCreateAnswer applies a remote offer and produces the
	// answer in one round.
	ApplyOfferCreateAnswer(payload json.RawMessage) (json.RawMessage, error)

	// ApplyAnswer completes an outstanding offer.
	ApplyAnswer(payload json.RawMessage) error

	// AddCandidate applies a remote ICE candidate.
	AddCandidate(payload json.RawMessage) error

	// ReplaceTrack swaps the outbound track of the same kind in place,
	// without renegotiation.
	ReplaceTrack(track webrtc.TrackLocal) error

	// OnCandidate registers a callback for locally gathered trickle
	// candidates.
	OnCandidate(fn func(payload json.RawMessage))

	// OnClosed registers a callback fired when the underlying
	// transport fails or closes.
	OnClosed(fn func())

	// Close tears the context down.
	Close() error
}

// LinkFactory builds a fresh transport context for a remote peer.
type LinkFactory func(remoteID string) (Link, error)
