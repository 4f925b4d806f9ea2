// Package watchparty relays host-driven playback state between viewers of
// the same room over websockets.
package watchparty

import "math"

// DriftTolerance is how far, in seconds, a member may be from the host
// before the server tells it to seek.
const DriftTolerance = 3.0

// Message types.
const (
	TypeWelcome = "welcome"
	TypeMembers = "members"
	TypeHost    = "host"
	TypeState   = "state"
	TypeReport  = "report"
	TypeSync    = "sync"
	TypeChat    = "chat"
	TypeError   = "error"
)

const maxChatLength = 500

// Message is the single envelope used in both directions. Playback fields
// are always present so clients can read state and sync messages alike.
type Message struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
	Playing     bool    `json:"playing"`
	Episode     int     `json:"episode"`
	Text        string  `json:"text,omitempty"`
	From        string  `json:"from,omitempty"`
	ClientID    string  `json:"clientId,omitempty"`
	IsHost      bool    `json:"isHost,omitempty"`
	Members     int     `json:"members,omitempty"`
}

// NeedsResync reports whether a member at client seconds has drifted from
// the host position by more than DriftTolerance.
func NeedsResync(client, host float64) bool {
	return math.Abs(client-host) > DriftTolerance
}
