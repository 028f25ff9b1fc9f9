package engine

import "github.com/duelforge/arena-server/internal/engine/effect"

// paRegenPerTurn is the action point regeneration granted to every board
// card when its owner ends a turn, clamped to the card's maximum.
const paRegenPerTurn = 2

// startTurn runs the start-of-turn sequence for a side: start-of-turn
// resource bonuses, poison ticks with a death sweep, timed-effect
// decrement (resolving expired mind-control windows), activation, and
// exactly one automatic draw. An empty deck simply yields no card.
func (m *Match) startTurn(side Side) []Event {
	m.Active = side
	ps := m.player(side)

	events := []Event{{Type: EventTurnStart, Side: side, Turn: m.Turn, Round: m.Round}}

	// Start-of-turn action point bonuses.
	for _, c := range ps.BoardCards() {
		if bonus := m.Effects.TurnStartResource(c.ID); bonus > 0 {
			c.GainPA(bonus)
		}
	}

	// Poison ticks bypass mitigation: the dose was already mitigated when
	// it landed.
	var deaths []Death
	for _, c := range ps.BoardCards() {
		dose := m.Effects.PoisonDamage(c.ID)
		if dose <= 0 {
			continue
		}
		c.Health -= dose
		events = append(events, Event{Type: EventPoisonTick, Side: side, CardID: c.ID, DefID: c.Def.ID, Amount: dose})
		if c.Health <= 0 {
			deaths = append(deaths, m.recordDeath(c))
		}
	}
	if len(deaths) > 0 {
		events = append(events, Event{Type: EventDeaths, Side: side, Deaths: deaths})
	}

	// Timed effects on this side tick down once per owner turn.
	for _, expired := range m.Effects.DecrementSide(string(side)) {
		if expired.Effect.Kind != effect.KindMindControl || expired.CardID == "" {
			continue
		}
		meta := expired.Effect.Meta
		if m.releaseMindControl(expired.CardID, meta) {
			events = append(events, Event{
				Type: EventMindControlEnd, Side: Side(meta.OriginSide),
				CardID: expired.CardID,
			})
		}
	}

	// Exactly one automatic draw; drawing from an empty deck is a no-op.
	if card := ps.Draw(); card != nil {
		events = append(events, Event{
			Type: EventDraw, Side: side,
			CardID: card.ID, DefID: card.Def.ID, Amount: 1, Hidden: true,
		})
	} else {
		events = append(events, Event{Type: EventDraw, Side: side, Amount: 0})
	}

	return events
}

// endTurn closes the active side's turn: board-wide action point
// regeneration, round advancement and resource refresh once side B closes
// the round, turn counter advance, then the opposing side's startTurn.
func (m *Match) endTurn(side Side) []Event {
	ps := m.player(side)
	for _, c := range ps.BoardCards() {
		c.GainPA(paRegenPerTurn)
	}

	if side == SideB {
		m.Round++
		for _, s := range []Side{SideA, SideB} {
			p := m.player(s)
			p.Resource = p.MaxResource
		}
	}

	m.Turn++
	return m.startTurn(side.Other())
}
