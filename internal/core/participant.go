package core

import "time"

// Participant is the registry record for a live connection that has
// joined a room. A participant belongs to at most one room at a time.
type Participant struct {
	ConnID       string
	DisplayName  string
	RoomID       string
	AudioEnabled bool
	VideoEnabled bool
	JoinedAt     time.Time
}

// MediaKind selects which media flag a toggle applies to.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)

// MemberInfo is the participant view shared with other clients.
type MemberInfo struct {
	ConnID       string
	DisplayName  string
	AudioEnabled bool
	VideoEnabled bool
}

func (p *Participant) info() MemberInfo {
	return MemberInfo{
		ConnID:       p.ConnID,
		DisplayName:  p.DisplayName,
		AudioEnabled: p.AudioEnabled,
		VideoEnabled: p.VideoEnabled,
	}
}
