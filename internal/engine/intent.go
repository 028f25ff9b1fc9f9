package engine

import "fmt"

// IntentType enumerates the player-issued actions the engine accepts.
type IntentType string

const (
	IntentPlayCard    IntentType = "playCard"
	IntentAttack      IntentType = "attack"
	IntentUseSkill    IntentType = "useSkill"
	IntentUseUltimate IntentType = "useUltimate"
	IntentEndTurn     IntentType = "endTurn"
	IntentDrawCard    IntentType = "drawCard"
)

// SlotRef addresses a board slot on the issuer's own side.
type SlotRef struct {
	Row  Row `json:"row"`
	Slot int `json:"slot"`
}

// TargetRef addresses a board slot on either side, or a player directly.
type TargetRef struct {
	Side   Side `json:"side"`
	Row    Row  `json:"row"`
	Slot   int  `json:"slot"`
	Player bool `json:"player,omitempty"`
}

// Intent is one player-issued action. Every intent is validated against the
// authoritative state and either applied whole or rejected without any
// state change.
type Intent struct {
	Type      IntentType `json:"type"`
	HandIndex int        `json:"handIndex,omitempty"`
	From      *SlotRef   `json:"from,omitempty"`
	To        *SlotRef   `json:"to,omitempty"`
	Target    *TargetRef `json:"target,omitempty"`
}

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonMalformed         Reason = "malformed"
	ReasonNotParticipant    Reason = "notParticipant"
	ReasonNotYourTurn       Reason = "notYourTurn"
	ReasonMatchOver         Reason = "matchOver"
	ReasonInsufficientPI    Reason = "insufficientResources"
	ReasonInsufficientPA    Reason = "insufficientActionPoints"
	ReasonUsageLimit        Reason = "usageLimitReached"
	ReasonIllegalTarget     Reason = "illegalTarget"
	ReasonBackRowProtected  Reason = "backRowProtected"
	ReasonEmptySource       Reason = "emptySource"
	ReasonEmptySlot         Reason = "emptySlot"
	ReasonSlotOccupied      Reason = "slotOccupied"
	ReasonUnknownCard       Reason = "unknownCard"
	ReasonMatchNotFound     Reason = "matchNotFound"
	ReasonNotStarted        Reason = "notStarted"
)

// Rejection is the error type for refused intents. Rejections never mutate
// state and are reported only to the issuing side.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps an error into a *Rejection when it is one.
func AsRejection(err error) (*Rejection, bool) {
	rej, ok := err.(*Rejection)
	return rej, ok
}
