package engine

import "github.com/duelforge/arena-server/internal/engine/effect"

// CardView is the wire representation of one card instance. Effective
// attack/defense are computed at snapshot time; base values ride along so
// clients can show buff deltas.
type CardView struct {
	ID         string       `json:"id"`
	DefID      string       `json:"defId"`
	Name       string       `json:"name"`
	Tribe      string       `json:"tribe"`
	Class      string       `json:"class"`
	Rarity     string       `json:"rarity"`
	Owner      Side         `json:"owner"`
	Controller Side         `json:"controller"`
	Health     int          `json:"health"`
	MaxHealth  int          `json:"maxHealth"`
	Attack     int          `json:"attack"`
	Defense    int          `json:"defense"`
	EffAttack  int          `json:"effAttack"`
	EffDefense int          `json:"effDefense"`
	PA         int          `json:"pa"`
	MaxPA      int          `json:"maxPa"`
	Cost       int          `json:"cost"`
	Shield     int          `json:"shield"`
	Effects    []EffectView `json:"effects,omitempty"`
}

// EffectView is the wire representation of one active effect.
type EffectView struct {
	ID        string  `json:"id"`
	SourceID  string  `json:"sourceId"`
	Kind      string  `json:"kind"`
	Magnitude float64 `json:"magnitude"`
	TurnsLeft int     `json:"turnsLeft"`
	Permanent bool    `json:"permanent"`
}

// PlayerView is one side as seen by a viewer. For the opponent's side the
// hand and deck are withheld: the lists stay empty and only the counts are
// populated. Board, graveyard, resources, and effects are fully visible to
// both viewers.
type PlayerView struct {
	Side        Side         `json:"side"`
	Name        string       `json:"name"`
	Health      int          `json:"health"`
	MaxHealth   int          `json:"maxHealth"`
	Defense     int          `json:"defense"`
	Resource    int          `json:"resource"`
	MaxResource int          `json:"maxResource"`
	Hand        []*CardView  `json:"hand,omitempty"`
	HandCount   int          `json:"handCount"`
	Deck        []*CardView  `json:"deck,omitempty"`
	DeckCount   int          `json:"deckCount"`
	Graveyard   []*CardView  `json:"graveyard"`
	Front       []*CardView  `json:"front"`
	Back        []*CardView  `json:"back"`
	TeamEffects []EffectView `json:"teamEffects,omitempty"`
}

// MatchView is a complete per-recipient snapshot of a match. Two views of
// the same state differ only in which hand/deck is enumerated.
type MatchView struct {
	MatchID string              `json:"matchId"`
	Seq     uint64              `json:"seq"`
	Phase   Phase               `json:"phase"`
	Active  Side                `json:"active"`
	Round   int                 `json:"round"`
	Turn    int                 `json:"turn"`
	Winner  Side                `json:"winner,omitempty"`
	Loser   Side                `json:"loser,omitempty"`
	Viewer  Side                `json:"viewer"`
	Players map[Side]*PlayerView `json:"players"`
}

func (m *Match) cardView(c *CardInstance) *CardView {
	view := &CardView{
		ID:         c.ID,
		DefID:      c.Def.ID,
		Name:       c.Def.Name,
		Tribe:      string(c.Def.Tribe),
		Class:      string(c.Def.Class),
		Rarity:     string(c.Def.Rarity),
		Owner:      c.Owner,
		Controller: c.Controller,
		Health:     c.Health,
		MaxHealth:  c.MaxHealth,
		Attack:     c.Attack,
		Defense:    c.Defense,
		EffAttack:  m.EffectiveAttack(c),
		EffDefense: m.EffectiveDefense(c),
		PA:         c.PA,
		MaxPA:      c.Def.MaxPA,
		Cost:       c.Def.Cost,
		Shield:     m.Effects.Shield(c.ID),
	}
	for _, eff := range m.Effects.Effects(c.ID) {
		view.Effects = append(view.Effects, effectView(eff))
	}
	return view
}

func effectView(eff *effect.Effect) EffectView {
	return EffectView{
		ID:        eff.ID,
		SourceID:  eff.SourceID,
		Kind:      string(eff.Kind),
		Magnitude: eff.Magnitude,
		TurnsLeft: eff.TurnsLeft,
		Permanent: eff.Permanent,
	}
}

// playerView renders one side, redacting hand and deck contents unless the
// viewer owns them.
func (m *Match) playerView(side, viewer Side) *PlayerView {
	ps := m.player(side)
	view := &PlayerView{
		Side:        side,
		Name:        ps.Name,
		Health:      ps.Health,
		MaxHealth:   ps.MaxHealth,
		Defense:     ps.Defense,
		Resource:    ps.Resource,
		MaxResource: ps.MaxResource,
		HandCount:   len(ps.Hand),
		DeckCount:   len(ps.Deck),
		Graveyard:   make([]*CardView, 0, len(ps.Graveyard)),
		Front:       make([]*CardView, SlotsPerRow),
		Back:        make([]*CardView, SlotsPerRow),
	}

	if side == viewer {
		for _, c := range ps.Hand {
			view.Hand = append(view.Hand, m.cardView(c))
		}
		for _, c := range ps.Deck {
			view.Deck = append(view.Deck, m.cardView(c))
		}
	}

	for _, c := range ps.Graveyard {
		view.Graveyard = append(view.Graveyard, m.cardView(c))
	}
	for i, c := range ps.Front {
		if c != nil {
			view.Front[i] = m.cardView(c)
		}
	}
	for i, c := range ps.Back {
		if c != nil {
			view.Back[i] = m.cardView(c)
		}
	}
	for _, eff := range m.Effects.TeamEffects(string(side)) {
		view.TeamEffects = append(view.TeamEffects, effectView(eff))
	}
	return view
}

// viewFor builds the complete snapshot for one recipient. Callers hold the
// match lock.
func (m *Match) viewFor(viewer Side) *MatchView {
	return &MatchView{
		MatchID: m.ID,
		Seq:     m.seq,
		Phase:   m.Phase,
		Active:  m.Active,
		Round:   m.Round,
		Turn:    m.Turn,
		Winner:  m.Winner,
		Loser:   m.Loser,
		Viewer:  viewer,
		Players: map[Side]*PlayerView{
			SideA: m.playerView(SideA, viewer),
			SideB: m.playerView(SideB, viewer),
		},
	}
}
