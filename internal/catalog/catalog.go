package catalog

import "fmt"

// Class describes the combat role of a card.
type Class string

const (
	ClassMelee   Class = "MELEE"
	ClassTank    Class = "TANK"
	ClassRanged  Class = "RANGED"
	ClassSupport Class = "SUPPORT"
	ClassUtility Class = "UTILITY"
)

// Rarity describes how constrained a card is in deck building.
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
	RarityUtility   Rarity = "UTILITY"
)

// Tribe groups cards for tribal synergies (tribe buffs, redirects).
type Tribe string

const (
	TribeDragon Tribe = "DRAGON"
	TribeUndead Tribe = "UNDEAD"
	TribeBeast  Tribe = "BEAST"
	TribeMech   Tribe = "MECH"
	TribeSpirit Tribe = "SPIRIT"
)

// Definition is the immutable description of a card. The match engine only
// reads definitions; deck validation against collection rules happens
// upstream in the lobby.
type Definition struct {
	ID        string
	Name      string
	Tribe     Tribe
	Class     Class
	Rarity    Rarity
	Attack    int
	Defense   int
	MaxHealth int
	// Action point budget: StartPA is granted at summon, MaxPA caps
	// end-of-turn regeneration.
	StartPA int
	MaxPA   int
	// Cost is the resource pool price to play the card from hand.
	Cost int
	// SkillID and UltimateID key into the ability registry. Empty means the
	// card has no action of that kind.
	SkillID    string
	UltimateID string
}

// Lookup returns the definition for the given card identity.
func Lookup(id string) (*Definition, error) {
	def, ok := builtin[id]
	if !ok {
		return nil, fmt.Errorf("unknown card definition %q", id)
	}
	return def, nil
}

// All returns every built-in definition, for set enumeration.
func All() []*Definition {
	defs := make([]*Definition, 0, len(builtin))
	for _, def := range builtin {
		defs = append(defs, def)
	}
	return defs
}
