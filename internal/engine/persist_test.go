package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelforge/arena-server/internal/engine/effect"
)

func TestPersist_RoundTripThroughJSON(t *testing.T) {
	m := newTestMatch(t, testDeck(), testDeck())
	m.MarkJoined(SideA)
	m.MarkJoined(SideB)
	m.startTurn(SideA)

	card := place(t, m, SideA, RowFront, 2, "fang-ravager")
	card.Health = 77
	card.MarkUsage(m.Turn, ActionSkill)
	m.Effects.Apply(card.ID, &effect.Effect{
		ID: "sh", Kind: effect.KindShield, Magnitude: 20, TurnsLeft: 3,
	})
	m.Effects.ApplyTeam(string(SideB), &effect.Effect{
		ID: "team", Kind: effect.KindBackRowAccess, Magnitude: 1, TurnsLeft: 2,
	})
	m.Turn = 5
	m.Round = 3
	m.seq = 12
	m.manualDrawTurn[SideA] = 5

	data, err := json.Marshal(m.Persist())
	require.NoError(t, err)

	var p PersistedMatch
	require.NoError(t, json.Unmarshal(data, &p))

	restored, err := RestoreMatch(&p)
	require.NoError(t, err)

	assert.Equal(t, m.ID, restored.ID)
	assert.Equal(t, PhaseInProgress, restored.Phase)
	assert.Equal(t, 5, restored.Turn)
	assert.Equal(t, 3, restored.Round)
	assert.Equal(t, uint64(12), restored.seq)
	assert.Equal(t, SideA, restored.Active)
	assert.True(t, restored.joined[SideA] && restored.joined[SideB])
	assert.Equal(t, 5, restored.manualDrawTurn[SideA])

	rp := restored.player(SideA)
	assert.Equal(t, m.player(SideA).Resource, rp.Resource)
	assert.Len(t, rp.Hand, len(m.player(SideA).Hand))
	assert.Len(t, rp.Deck, len(m.player(SideA).Deck))

	rc := rp.CardAt(RowFront, 2)
	require.NotNil(t, rc)
	assert.Equal(t, card.ID, rc.ID)
	assert.Equal(t, 77, rc.Health)
	assert.Equal(t, "fang-ravager", rc.Def.ID, "definition re-resolved from the catalog")
	assert.Equal(t, 1, rc.UsageCount(5, ActionSkill), "usage ledger survives restarts")

	assert.Equal(t, 20, restored.Effects.Shield(card.ID), "shield totals rebuild from effects")
	assert.True(t, restored.Effects.HasBackRowAccess(string(SideB)))
}

func TestPersist_NilSlotsStayNil(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	place(t, m, SideA, RowBack, 4, "echo-sage")

	restored, err := RestoreMatch(m.Persist())
	require.NoError(t, err)

	rp := restored.player(SideA)
	for i := 0; i < SlotsPerRow-1; i++ {
		assert.Nil(t, rp.CardAt(RowBack, i))
	}
	assert.NotNil(t, rp.CardAt(RowBack, 4))
}

func TestPersist_UnknownDefinitionFailsRestore(t *testing.T) {
	m := newTestMatch(t, []string{"fang-ravager"}, nil)
	p := m.Persist()
	p.Players[SideA].Hand[0].DefID = "no-such-card"

	_, err := RestoreMatch(p)
	require.Error(t, err)
}

func TestRestoreMatch_ResumesPlay(t *testing.T) {
	m := newTestMatch(t, testDeck(), testDeck())
	m.MarkJoined(SideA)
	m.MarkJoined(SideB)
	m.startTurn(SideA)

	restored, err := RestoreMatch(m.Persist())
	require.NoError(t, err)

	// The restored match accepts the next turn handover directly.
	events := restored.endTurn(SideA)
	require.NotEmpty(t, events)
	assert.Equal(t, SideB, restored.Active)
}

func TestPersist_UsageMarshalsWithIntKeys(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	card := place(t, m, SideA, RowFront, 0, "fang-ravager")
	card.MarkUsage(3, actionAttack)

	data, err := json.Marshal(m.Persist())
	require.NoError(t, err)

	var p PersistedMatch
	require.NoError(t, json.Unmarshal(data, &p))
	restored, err := RestoreMatch(&p)
	require.NoError(t, err)

	rc := restored.player(SideA).CardAt(RowFront, 0)
	require.NotNil(t, rc)
	assert.Equal(t, 1, rc.UsageCount(3, actionAttack))
}
