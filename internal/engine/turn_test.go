package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelforge/arena-server/internal/engine/effect"
)

func drawEvents(events []Event) []Event {
	var out []Event
	for _, e := range events {
		if e.Type == EventDraw {
			out = append(out, e)
		}
	}
	return out
}

func TestStartTurn_ExactlyOneDraw(t *testing.T) {
	m := newTestMatch(t, []string{"fang-ravager", "fang-ravager", "fang-ravager", "fang-ravager", "fang-ravager", "grave-warden"}, nil)

	// Starting hand took 4, deck holds 2 more.
	require.Len(t, m.player(SideA).Hand, 4)

	events := m.startTurn(SideA)
	draws := drawEvents(events)
	require.Len(t, draws, 1)
	assert.Equal(t, 1, draws[0].Amount)
	assert.True(t, draws[0].Hidden, "card identity is for the drawer only")
	assert.NotEmpty(t, draws[0].CardID)
	assert.Len(t, m.player(SideA).Hand, 5)
}

func TestStartTurn_EmptyDeckDrawIsNoOp(t *testing.T) {
	m := newTestMatch(t, nil, nil)

	events := m.startTurn(SideA)
	draws := drawEvents(events)
	require.Len(t, draws, 1)
	assert.Equal(t, 0, draws[0].Amount)
	assert.Empty(t, draws[0].CardID)
	assert.Empty(t, m.player(SideA).Hand)
}

func TestStartTurn_PoisonTicksBypassMitigation(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "grave-warden")

	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "venom", Kind: effect.KindPoison, Magnitude: 10, TurnsLeft: 3,
	})
	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "dr", Kind: effect.KindDamageReduction, Magnitude: 0.9, TurnsLeft: 3,
	})
	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "sh", Kind: effect.KindShield, Magnitude: 50, TurnsLeft: 3,
	})

	m.startTurn(SideA)

	assert.Equal(t, card.MaxHealth-10, card.Health, "the dose was mitigated when it landed, not on tick")
	assert.Equal(t, 50, m.Effects.Shield(card.ID), "shield does not absorb poison")
}

func TestStartTurn_PoisonDeathSweep(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "echo-sage")
	card.Health = 5

	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "venom", Kind: effect.KindPoison, Magnitude: 10, TurnsLeft: 3,
	})

	events := m.startTurn(SideA)

	assert.Nil(t, m.player(SideA).CardAt(RowFront, 0))
	assert.True(t, findInGraveyard(m, SideA, card.ID))

	var sawDeaths bool
	for _, e := range events {
		if e.Type == EventDeaths {
			sawDeaths = true
		}
	}
	assert.True(t, sawDeaths)
}

func TestStartTurn_TurnStartResourceBonus(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "fang-ravager")
	card.PA = 1

	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "vigor", Kind: effect.KindTurnStartResource, Magnitude: 2, TurnsLeft: 2,
	})

	m.startTurn(SideA)
	assert.Equal(t, 3, card.PA)
}

func TestEndTurn_RegenClampsAtMax(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "fang-ravager") // MaxPA 6
	card.PA = 5

	m.endTurn(SideA)
	assert.Equal(t, 6, card.PA)
	assert.Equal(t, SideB, m.Active)
}

func TestEndTurn_RoundAdvancesAfterSideB(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	m.player(SideA).Resource = 1
	m.player(SideB).Resource = 0

	m.endTurn(SideA)
	assert.Equal(t, 1, m.Round, "half a round: no refresh yet")
	assert.Equal(t, 1, m.player(SideA).Resource)
	assert.Equal(t, 2, m.Turn)

	m.endTurn(SideB)
	assert.Equal(t, 2, m.Round)
	assert.Equal(t, m.Rules.MaxResource, m.player(SideA).Resource)
	assert.Equal(t, m.Rules.MaxResource, m.player(SideB).Resource)
	assert.Equal(t, SideA, m.Active)
	assert.Equal(t, 3, m.Turn)
}

func TestEffectExpiry_TicksOnOwnersTurnOnly(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "fang-ravager")

	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "buff", Kind: effect.KindFlatAttack, Magnitude: 10, TurnsLeft: 2,
	})

	m.startTurn(SideB)
	require.Len(t, m.Effects.Effects(card.ID), 1, "opponent turns do not tick A's effects")

	m.startTurn(SideA)
	require.Len(t, m.Effects.Effects(card.ID), 1)

	m.startTurn(SideA)
	assert.Empty(t, m.Effects.Effects(card.ID))
}
