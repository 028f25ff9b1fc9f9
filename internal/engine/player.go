package engine

import "github.com/duelforge/arena-server/internal/catalog"

// Side identifies one of the two match participants.
type Side string

const (
	SideA Side = "A"
	SideB Side = "B"
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Valid reports whether the side is one of the two participants.
func (s Side) Valid() bool {
	return s == SideA || s == SideB
}

// Row addresses one of the two board lines.
type Row string

const (
	RowFront Row = "FRONT"
	RowBack  Row = "BACK"
)

// SlotsPerRow is the number of addressable slots in each board line.
const SlotsPerRow = 5

// PlayerState holds everything one side owns: life total, resource pool,
// zones, and board lines. Card instances move between zones but are never
// duplicated; a card occupies exactly one zone at a time.
type PlayerState struct {
	Side        Side
	Name        string
	Health      int
	MaxHealth   int
	Defense     int
	Resource    int // PI, spent to play cards, refreshed every full round
	MaxResource int
	Hand        []*CardInstance
	Deck        []*CardInstance // front of slice is the next draw
	Graveyard   []*CardInstance
	Front       [SlotsPerRow]*CardInstance
	Back        [SlotsPerRow]*CardInstance
}

// Line returns the addressed board line.
func (p *PlayerState) Line(row Row) *[SlotsPerRow]*CardInstance {
	if row == RowBack {
		return &p.Back
	}
	return &p.Front
}

// CardAt returns the card in the slot, or nil.
func (p *PlayerState) CardAt(row Row, slot int) *CardInstance {
	if slot < 0 || slot >= SlotsPerRow {
		return nil
	}
	return p.Line(row)[slot]
}

// FrontEmpty reports whether the front line holds no cards.
func (p *PlayerState) FrontEmpty() bool {
	for _, c := range p.Front {
		if c != nil {
			return false
		}
	}
	return true
}

// FirstEmptySlot returns the first free slot in the row, or -1.
func (p *PlayerState) FirstEmptySlot(row Row) int {
	line := p.Line(row)
	for i, c := range line {
		if c == nil {
			return i
		}
	}
	return -1
}

// BoardCards returns every card on both lines, front first.
func (p *PlayerState) BoardCards() []*CardInstance {
	cards := make([]*CardInstance, 0, 2*SlotsPerRow)
	for _, c := range p.Front {
		if c != nil {
			cards = append(cards, c)
		}
	}
	for _, c := range p.Back {
		if c != nil {
			cards = append(cards, c)
		}
	}
	return cards
}

// TribeCounts tallies board cards per tribe, excluding the given card.
func (p *PlayerState) TribeCounts(except string) map[string]int {
	counts := make(map[string]int)
	for _, c := range p.BoardCards() {
		if c.ID == except {
			continue
		}
		counts[string(c.Def.Tribe)]++
	}
	return counts
}

// ControlledCopies counts board cards sharing the given definition id.
// Used by graveyard summons to enforce the concurrent copy cap.
func (p *PlayerState) ControlledCopies(defID string) int {
	count := 0
	for _, c := range p.BoardCards() {
		if c.Def.ID == defID {
			count++
		}
	}
	return count
}

// Draw removes and returns the next card from the deck. Returns nil when
// the deck is empty; failure to draw is never fatal.
func (p *PlayerState) Draw() *CardInstance {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	p.Hand = append(p.Hand, card)
	return card
}

// RemoveFromHand removes the card at the index and returns it.
func (p *PlayerState) RemoveFromHand(index int) *CardInstance {
	if index < 0 || index >= len(p.Hand) {
		return nil
	}
	card := p.Hand[index]
	p.Hand = append(p.Hand[:index], p.Hand[index+1:]...)
	return card
}

// RemoveFromGraveyard removes the card by instance id and returns it.
func (p *PlayerState) RemoveFromGraveyard(cardID string) *CardInstance {
	for i, c := range p.Graveyard {
		if c.ID == cardID {
			p.Graveyard = append(p.Graveyard[:i], p.Graveyard[i+1:]...)
			return c
		}
	}
	return nil
}

// SpendResource deducts from the resource pool; callers check availability.
func (p *PlayerState) SpendResource(amount int) {
	p.Resource -= amount
	if p.Resource < 0 {
		p.Resource = 0
	}
}

// GainResource adds to the resource pool, clamped to the maximum.
func (p *PlayerState) GainResource(amount int) {
	p.Resource += amount
	if p.Resource > p.MaxResource {
		p.Resource = p.MaxResource
	}
	if p.Resource < 0 {
		p.Resource = 0
	}
}

// rarityAllowsResurrection gates graveyard summons: legendary cards stay
// dead once destroyed.
func rarityAllowsResurrection(r catalog.Rarity) bool {
	return r != catalog.RarityLegendary
}
