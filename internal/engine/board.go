package engine

import (
	"fmt"

	"github.com/duelforge/arena-server/internal/engine/effect"
)

// graveyardCopyCap limits concurrent controlled copies of a definition
// brought back by graveyard summons.
const graveyardCopyCap = 2

// mindControl moves an enemy board card to the caster's side for a fixed
// number of turns. The origin slot is recorded on the effect so expiry can
// send the card home, or to any empty slot on its original side if the
// origin is occupied by then.
func (m *Match) mindControl(caster *CardInstance, target *TargetRef, turns int) (*AbilityOutcome, error) {
	enemy, err := resolveEnemyTarget(m, caster, target)
	if err != nil {
		return nil, err
	}

	own := m.player(caster.Controller)
	destRow := target.Row
	destSlot := own.FirstEmptySlot(destRow)
	if destSlot < 0 {
		destRow = otherRow(destRow)
		destSlot = own.FirstEmptySlot(destRow)
	}
	if destSlot < 0 {
		return nil, reject(ReasonSlotOccupied, "no empty slot to receive the stolen card")
	}

	m.player(target.Side).Line(target.Row)[target.Slot] = nil
	own.Line(destRow)[destSlot] = enemy
	enemy.Controller = caster.Controller
	m.Effects.Register(enemy.ID, string(caster.Controller))
	m.Effects.Apply(enemy.ID, &effect.Effect{
		ID: effectID(caster, "mind-control"), SourceID: caster.ID,
		Kind: effect.KindMindControl, Magnitude: 1, TurnsLeft: turns,
		Meta: effect.Meta{
			OriginSide: string(target.Side),
			OriginRow:  string(target.Row),
			OriginSlot: target.Slot,
		},
	})

	return &AbilityOutcome{Summary: fmt.Sprintf("dominate: %s changes sides", enemy.Def.Name)}, nil
}

// releaseMindControl sends an expired mind-controlled card back to its
// original side: its origin slot if free, otherwise any empty slot there.
// With the whole original board full the card stays put until a slot opens;
// the effect is re-applied for one more turn to retry.
func (m *Match) releaseMindControl(cardID string, meta effect.Meta) bool {
	ps, row, slot, card := m.findOnBoard(cardID)
	if card == nil {
		return false
	}

	origin := m.player(Side(meta.OriginSide))
	destRow := Row(meta.OriginRow)
	destSlot := meta.OriginSlot
	if origin.CardAt(destRow, destSlot) != nil {
		destSlot = origin.FirstEmptySlot(destRow)
		if destSlot < 0 {
			destRow = otherRow(destRow)
			destSlot = origin.FirstEmptySlot(destRow)
		}
	}
	if destSlot < 0 {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: "mind-control-hold:" + card.ID, SourceID: card.ID,
			Kind: effect.KindMindControl, Magnitude: 1, TurnsLeft: 1,
			Meta: meta,
		})
		return false
	}

	ps.Line(row)[slot] = nil
	origin.Line(destRow)[destSlot] = card
	card.Controller = Side(meta.OriginSide)
	m.Effects.Register(card.ID, meta.OriginSide)
	return true
}

// summonFromGraveyard recalls the most recently fallen, non-legendary card
// from the caster's graveyard into a target empty slot on its own side,
// subject to the concurrent copy cap.
func (m *Match) summonFromGraveyard(caster *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
	if err := requireTarget(target); err != nil {
		return nil, err
	}
	if target.Side != caster.Controller {
		return nil, reject(ReasonIllegalTarget, "summon slot must be on own side")
	}
	own := m.player(caster.Controller)
	if target.Slot < 0 || target.Slot >= SlotsPerRow {
		return nil, reject(ReasonMalformed, "slot %d out of range", target.Slot)
	}
	if own.CardAt(target.Row, target.Slot) != nil {
		return nil, reject(ReasonSlotOccupied, "summon slot is occupied")
	}

	var pick *CardInstance
	for i := len(own.Graveyard) - 1; i >= 0; i-- {
		c := own.Graveyard[i]
		if !rarityAllowsResurrection(c.Def.Rarity) {
			continue
		}
		if own.ControlledCopies(c.Def.ID) >= graveyardCopyCap {
			continue
		}
		pick = c
		break
	}
	if pick == nil {
		return nil, reject(ReasonEmptySource, "no eligible card in the graveyard")
	}

	own.RemoveFromGraveyard(pick.ID)
	pick.Health = pick.MaxHealth
	pick.PA = pick.Def.StartPA
	if err := m.placeOnBoard(caster.Controller, target.Row, target.Slot, pick); err != nil {
		// Slot was checked above; treat as occupied if it races anyway.
		own.Graveyard = append(own.Graveyard, pick)
		return nil, reject(ReasonSlotOccupied, "summon slot is occupied")
	}

	return &AbilityOutcome{Summary: fmt.Sprintf("reanimate: %s returns", pick.Def.Name)}, nil
}

// swapRows moves an own board card to the mirrored slot on the other line.
func (m *Match) swapRows(caster *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
	ally, err := resolveAllyTarget(m, caster, target)
	if err != nil {
		return nil, err
	}
	own := m.player(caster.Controller)
	dest := otherRow(target.Row)
	if own.CardAt(dest, target.Slot) != nil {
		return nil, reject(ReasonSlotOccupied, "mirrored slot is occupied")
	}
	own.Line(target.Row)[target.Slot] = nil
	own.Line(dest)[target.Slot] = ally
	return &AbilityOutcome{Summary: fmt.Sprintf("reposition: %s moves to the %s row", ally.Def.Name, dest)}, nil
}

// returnToDeck clears a board card and shuffles it to the bottom of its
// owner's deck, fully reset.
func (m *Match) returnToDeck(card *CardInstance) {
	if ps, row, slot, found := m.findOnBoard(card.ID); found != nil {
		ps.Line(row)[slot] = nil
	}
	m.Effects.Clear(card.ID)
	card.Controller = card.Owner
	m.Effects.Register(card.ID, string(card.Owner))
	card.Health = card.MaxHealth
	card.PA = card.Def.StartPA
	owner := m.player(card.Owner)
	owner.Deck = append(owner.Deck, card)
}

func otherRow(row Row) Row {
	if row == RowFront {
		return RowBack
	}
	return RowFront
}
