package engine

import (
	"github.com/google/uuid"

	"github.com/duelforge/arena-server/internal/catalog"
)

// ActionKind distinguishes the two activatable actions a card has.
type ActionKind string

const (
	ActionSkill    ActionKind = "SKILL"
	ActionUltimate ActionKind = "ULTIMATE"
	actionAttack   ActionKind = "ATTACK"
)

// CardInstance is the mutable runtime incarnation of a card definition.
// Effective attack/defense are always computed through the effect store;
// Attack/Defense here are the base values the computation starts from.
type CardInstance struct {
	ID         string
	Def        *catalog.Definition
	Owner      Side // original owner, never changes
	Controller Side // current side; differs from Owner under mind control
	Health     int
	MaxHealth  int
	Attack     int
	Defense    int
	PA         int
	// usage counts actions per turn token so usage limits reset exactly
	// once per owner turn, even when a turn is re-entered after reconnect.
	usage map[int]map[ActionKind]int
}

// NewCardInstance builds a runtime instance for a definition on a side.
func NewCardInstance(def *catalog.Definition, side Side) *CardInstance {
	return &CardInstance{
		ID:         uuid.NewString(),
		Def:        def,
		Owner:      side,
		Controller: side,
		Health:     def.MaxHealth,
		MaxHealth:  def.MaxHealth,
		Attack:     def.Attack,
		Defense:    def.Defense,
		PA:         def.StartPA,
		usage:      make(map[int]map[ActionKind]int),
	}
}

// UsageCount returns how many times the action was taken under the token.
func (c *CardInstance) UsageCount(token int, kind ActionKind) int {
	if counts, ok := c.usage[token]; ok {
		return counts[kind]
	}
	return 0
}

// MarkUsage records one use of the action under the token. Older tokens are
// pruned; the token is strictly increasing for the life of a match.
func (c *CardInstance) MarkUsage(token int, kind ActionKind) {
	if c.usage == nil {
		c.usage = make(map[int]map[ActionKind]int)
	}
	for t := range c.usage {
		if t < token {
			delete(c.usage, t)
		}
	}
	counts, ok := c.usage[token]
	if !ok {
		counts = make(map[ActionKind]int)
		c.usage[token] = counts
	}
	counts[kind]++
}

// RefundUsage undoes one recorded use, paired with a cost refund when an
// ability reports its own precondition failure mid-dispatch.
func (c *CardInstance) RefundUsage(token int, kind ActionKind) {
	if counts, ok := c.usage[token]; ok && counts[kind] > 0 {
		counts[kind]--
	}
}

// SpendPA deducts action points; callers must have checked availability.
func (c *CardInstance) SpendPA(amount int) {
	c.PA -= amount
	if c.PA < 0 {
		c.PA = 0
	}
}

// GainPA adds action points, clamped to the card's maximum.
func (c *CardInstance) GainPA(amount int) {
	c.PA += amount
	if c.PA > c.Def.MaxPA {
		c.PA = c.Def.MaxPA
	}
	if c.PA < 0 {
		c.PA = 0
	}
}

// Heal raises health, clamped to current max health.
func (c *CardInstance) Heal(amount int) int {
	if amount <= 0 {
		return 0
	}
	before := c.Health
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
	return c.Health - before
}

// usageSnapshot exports the usage map for persistence.
func (c *CardInstance) usageSnapshot() map[int]map[ActionKind]int {
	out := make(map[int]map[ActionKind]int, len(c.usage))
	for token, counts := range c.usage {
		cp := make(map[ActionKind]int, len(counts))
		for k, v := range counts {
			cp[k] = v
		}
		out[token] = cp
	}
	return out
}
