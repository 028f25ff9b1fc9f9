package server

import (
	"encoding/json"

	"github.com/duelforge/arena-server/internal/engine"
)

// InboundEnvelope is the generic envelope for all client-to-server
// messages. Type routes the message; Raw keeps the full payload for the
// typed second decode.
type InboundEnvelope struct {
	Type string          `json:"type"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON captures the raw payload alongside the routing type.
func (e *InboundEnvelope) UnmarshalJSON(data []byte) error {
	type typeOnly struct {
		Type string `json:"type"`
	}
	var t typeOnly
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	e.Type = t.Type
	e.Raw = json.RawMessage(data)
	return nil
}

// --- Client-to-server payloads ---

// JoinMsg attaches the connection to one side of a match. It must be the
// first message on a connection.
type JoinMsg struct {
	Type    string      `json:"type"`
	MatchID string      `json:"matchId"`
	Side    engine.Side `json:"side"`
}

// IntentMsg submits one player action for the joined match.
type IntentMsg struct {
	Type   string        `json:"type"`
	Intent engine.Intent `json:"intent"`
}

// ResyncMsg requests a fresh authoritative snapshot.
type ResyncMsg struct {
	Type string `json:"type"`
}

// --- Server-to-client messages ---

// JoinedMsg confirms the join and carries the side's first snapshot.
type JoinedMsg struct {
	Type  string            `json:"type"`
	Side  engine.Side       `json:"side"`
	State *engine.MatchView `json:"state"`
}

// UpdateMsg carries the event stream of one accepted intent plus the
// recipient's fresh snapshot. Seq mirrors the snapshot's sequence number so
// clients can detect missed updates.
type UpdateMsg struct {
	Type   string            `json:"type"`
	Seq    uint64            `json:"seq"`
	Events []engine.Event    `json:"events"`
	State  *engine.MatchView `json:"state"`
}

// StateMsg answers a resync request.
type StateMsg struct {
	Type  string            `json:"type"`
	State *engine.MatchView `json:"state"`
}

// RejectedMsg reports a refused intent to its issuer. Nobody else hears
// about it.
type RejectedMsg struct {
	Type   string        `json:"type"`
	Reason engine.Reason `json:"reason"`
	Detail string        `json:"detail,omitempty"`
}

// ErrorMsg reports a protocol-level problem (malformed JSON, unknown
// message type, message before join).
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// redactEvents prepares a per-recipient copy of the event stream. Draw
// events are hidden from the opponent: the drawing side sees which card it
// drew, the other side only learns that a draw happened.
func redactEvents(events []engine.Event, recipient engine.Side) []engine.Event {
	out := make([]engine.Event, len(events))
	copy(out, events)
	for i := range out {
		if out[i].Hidden && out[i].Side != recipient {
			out[i].CardID = ""
			out[i].DefID = ""
		}
	}
	return out
}
