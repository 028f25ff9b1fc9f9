package effect

// Kind identifies the behaviour of a status effect. The set is closed: the
// combat resolver and turn controller switch over it.
type Kind string

const (
	// Card-scoped kinds.
	KindFlatAttack          Kind = "FLAT_ATTACK"           // +Magnitude attack
	KindMultAttack          Kind = "MULT_ATTACK"           // ×Magnitude attack
	KindTribeAttack         Kind = "TRIBE_ATTACK"          // +Magnitude per board ally of Meta.Tribe
	KindMissingHealthAttack Kind = "MISSING_HEALTH_ATTACK" // +Magnitude per missing health point
	KindDefenseZero         Kind = "DEFENSE_ZERO"          // forces effective defense to zero
	KindDamageReduction     Kind = "DAMAGE_REDUCTION"      // additive fraction, summed and capped
	KindDamageImmunity      Kind = "DAMAGE_IMMUNITY"       // target takes zero
	KindDamageTakenMult     Kind = "DAMAGE_TAKEN_MULT"     // ×Magnitude incoming damage
	KindShield              Kind = "SHIELD"                // Magnitude absorbed before health
	KindPacifism            Kind = "PACIFISM"              // source deals zero
	KindIntercept           Kind = "INTERCEPT"             // strikes re-target to Meta.TargetID
	KindPoison              Kind = "POISON"                // Magnitude damage at owner turn start
	KindMindControl         Kind = "MIND_CONTROL"          // card fights for the other side
	KindTurnStartResource   Kind = "TURN_START_RESOURCE"   // +Magnitude PA at owner turn start
	KindCritChance          Kind = "CRIT_CHANCE"           // Magnitude chance to double a strike

	// Side-scoped (team) kinds.
	KindUtilityAmplify    Kind = "UTILITY_AMPLIFY"    // utility magnitudes ×Magnitude
	KindBackRowAccess     Kind = "BACK_ROW_ACCESS"    // melee/tank may strike the back row
	KindSuppressTemporary Kind = "SUPPRESS_TEMPORARY" // non-permanent effects ignored
)

// Meta holds kind-specific parameters.
type Meta struct {
	// TargetID is the redirect destination for KindIntercept.
	TargetID string `json:"targetId,omitempty"`
	// Tribe filters KindTribeAttack counting.
	Tribe string `json:"tribe,omitempty"`
	// OriginSide/OriginRow/OriginSlot record where a mind-controlled card
	// came from so it can be returned when the control window expires.
	OriginSide string `json:"originSide,omitempty"`
	OriginRow  string `json:"originRow,omitempty"`
	OriginSlot int    `json:"originSlot,omitempty"`
}

// Effect is a timed or permanent modifier attached to one card instance or,
// as a team effect, to an entire side. The ID is stable per logical
// application: re-applying the same cause replaces rather than stacks.
type Effect struct {
	ID        string  `json:"id"`
	SourceID  string  `json:"sourceId"`
	Kind      Kind    `json:"kind"`
	Magnitude float64 `json:"magnitude"`
	TurnsLeft int     `json:"turnsLeft"`
	Permanent bool    `json:"permanent"`
	Meta      Meta    `json:"meta"`
}

// Copy returns a value copy of the effect.
func (e *Effect) Copy() *Effect {
	cp := *e
	return &cp
}

// suppressionExempt reports whether the effect survives a side-wide
// suppress-temporary team effect. Shields were already paid for and mind
// control changes ownership, so both stay live.
func (e *Effect) suppressionExempt() bool {
	return e.Permanent || e.Kind == KindShield || e.Kind == KindMindControl
}

// Expired pairs a removed effect with the card (or side, for team effects)
// it was attached to. Returned by DecrementSide so the turn controller can
// resolve deferred consequences such as mind-control re-ownership.
type Expired struct {
	CardID string // empty for team effects
	Side   string
	Effect *Effect
}
