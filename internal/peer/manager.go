package peer

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pion/webrtc/v4"
)

// Manager owns one orchestrator context per remote connection id and
// drives the Idle -> Offering/Answering -> Connected -> Closed machine
// from relayed signaling messages.
type Manager struct {
	mu       sync.Mutex
	contexts map[string]*peerContext

	newLink  LinkFactory
	signaler Signaler
	log      *zerolog.Logger
}

type peerContext struct {
	link  Link
	state State
}

// NewManager creates an orchestrator manager. The factory is invoked
// once per negotiation cycle; a torn-down peer gets a fresh link on the
// next cycle.
func NewManager(factory LinkFactory, signaler Signaler, logger *zerolog.Logger) *Manager {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Manager{
		contexts: make(map[string]*peerContext),
		newLink:  factory,
		signaler: signaler,
		log:      logger,
	}
}

// State reports the current machine state for a remote peer. Peers
// without a context are Idle.
func (m *Manager) State(remoteID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, ok := m.contexts[remoteID]
	if !ok {
		return StateIdle
	}
	return pc.state
}

// Initiate starts a negotiation toward a newly discovered peer: build a
// context, send an offer, move to Offering. A peer that already has a
// context is left alone.
func (m *Manager) Initiate(remoteID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contexts[remoteID]; ok {
		return nil
	}

	link, err := m.buildLink(remoteID)
	if err != nil {
		return fmt.Errorf("build link: %w", err)
	}

	offer, err := link.CreateOffer()
	if err != nil {
		_ = link.Close()
		return fmt.Errorf("create offer: %w", err)
	}

	m.contexts[remoteID] = &peerContext{link: link, state: StateOffering}

	if err := m.signaler.SendOffer(remoteID, offer); err != nil {
		// Best-effort transport: the offer is simply lost and the
		// remote peer's reconnect restarts the cycle.
		m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("send offer")
	}

	m.log.Debug().Str("remote_id", remoteID).Msg("offering")
	return nil
}

// HandleOffer answers a relayed offer from a peer with no existing
// context. An offer that collides with a live context is dropped; the
// remote side recovers through its own close/reconnect cycle.
func (m *Manager) HandleOffer(remoteID string, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.contexts[remoteID]; ok {
		m.log.Debug().Str("remote_id", remoteID).Msg("dropping offer for existing context")
		return nil
	}

	link, err := m.buildLink(remoteID)
	if err != nil {
		return fmt.Errorf("build link: %w", err)
	}

	pc := &peerContext{link: link, state: StateAnswering}
	m.contexts[remoteID] = pc

	answer, err := link.ApplyOfferCreateAnswer(payload)
	if err != nil {
		m.teardown(remoteID)
		return fmt.Errorf("answer offer: %w", err)
	}

	if err := m.signaler.SendAnswer(remoteID, answer); err != nil {
		m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("send answer")
	}

	// The answering side has both descriptions set in one round.
	pc.state = StateConnected
	m.log.Debug().Str("remote_id", remoteID).Msg("connected (answered)")
	return nil
}

// HandleAnswer completes an outstanding offer. Answers without a
// matching Offering context are stale and dropped.
func (m *Manager) HandleAnswer(remoteID string, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, ok := m.contexts[remoteID]
	if !ok || pc.state != StateOffering {
		m.log.Debug().Str("remote_id", remoteID).Msg("dropping stale answer")
		return nil
	}

	if err := pc.link.ApplyAnswer(payload); err != nil {
		m.teardown(remoteID)
		return fmt.Errorf("apply answer: %w", err)
	}

	pc.state = StateConnected
	m.log.Debug().Str("remote_id", remoteID).Msg("connected (offered)")
	return nil
}

// HandleCandidate applies a relayed ICE candidate to the matching
// context. Candidates outside a context's lifetime are dropped.
func (m *Manager) HandleCandidate(remoteID string, payload json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pc, ok := m.contexts[remoteID]
	if !ok {
		m.log.Debug().Str("remote_id", remoteID).Msg("dropping candidate without context")
		return nil
	}

	if err := pc.link.AddCandidate(payload); err != nil {
		m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("add candidate")
	}
	return nil
}

// ClosePeer tears down the context for a departed peer so a fresh cycle
// can start if it reappears. Unknown peers are a no-op.
func (m *Manager) ClosePeer(remoteID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teardown(remoteID)
}

// CloseAll tears down every context, e.g. on room leave.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for remoteID := range m.contexts {
		m.teardown(remoteID)
	}
}

// ReplaceLocalTrack swaps the outbound track on every connected context
// in place, without renegotiation.
func (m *Manager) ReplaceLocalTrack(track webrtc.TrackLocal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for remoteID, pc := range m.contexts {
		if pc.state != StateConnected {
			continue
		}
		if err := pc.link.ReplaceTrack(track); err != nil {
			m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("replace track")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// buildLink constructs and wires a link. Caller holds m.mu.
func (m *Manager) buildLink(remoteID string) (Link, error) {
	link, err := m.newLink(remoteID)
	if err != nil {
		return nil, err
	}

	link.OnCandidate(func(payload json.RawMessage) {
		if err := m.signaler.SendCandidate(remoteID, payload); err != nil {
			m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("send candidate")
		}
	})
	link.OnClosed(func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.teardown(remoteID)
	})

	return link, nil
}

// teardown closes and removes a context. Caller holds m.mu.
func (m *Manager) teardown(remoteID string) {
	pc, ok := m.contexts[remoteID]
	if !ok {
		return
	}
	delete(m.contexts, remoteID)
	pc.state = StateClosed
	if err := pc.link.Close(); err != nil {
		m.log.Warn().Err(err).Str("remote_id", remoteID).Msg("close link")
	}
	m.log.Debug().Str("remote_id", remoteID).Msg("closed")
}
