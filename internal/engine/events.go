package engine

// EventType tags discrete, replay-idempotent descriptions of what just
// happened. Clients use events for animation and logging; snapshots remain
// the source of truth.
type EventType string

const (
	EventMatchStarted   EventType = "matchStarted"
	EventTurnStart      EventType = "turnStart"
	EventDraw           EventType = "draw"
	EventSummon         EventType = "summon"
	EventAttack         EventType = "attack"
	EventAbility        EventType = "ability"
	EventDeaths         EventType = "deaths"
	EventPoisonTick     EventType = "poisonTick"
	EventMindControlEnd EventType = "mindControlEnd"
	EventGameOver       EventType = "gameOver"
)

// Event is one outbound event record. Fields are populated per type; unset
// fields are omitted on the wire.
type Event struct {
	Type      EventType     `json:"type"`
	Side      Side          `json:"side,omitempty"`
	CardID    string        `json:"cardId,omitempty"`
	DefID     string        `json:"defId,omitempty"`
	Row       Row           `json:"row,omitempty"`
	Slot      int           `json:"slot,omitempty"`
	AbilityID string        `json:"abilityId,omitempty"`
	Summary   string        `json:"summary,omitempty"`
	Strike    *StrikeResult `json:"strike,omitempty"`
	Deaths    []Death       `json:"deaths,omitempty"`
	Amount    int           `json:"amount,omitempty"`
	Turn      int           `json:"turn,omitempty"`
	Round     int           `json:"round,omitempty"`
	Winner    Side          `json:"winner,omitempty"`
	Loser     Side          `json:"loser,omitempty"`
	// Hidden marks events whose card detail must be withheld from the
	// opponent (draws): the transport blanks CardID/DefID for the other
	// side.
	Hidden bool `json:"-"`
}
