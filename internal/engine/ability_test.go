package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelforge/arena-server/internal/engine/effect"
)

func TestDispatch_PaysCostAndMarksUsage(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	oracle := place(t, m, SideA, RowBack, 0, "tide-oracle")
	ally := place(t, m, SideA, RowFront, 0, "grave-warden")
	oracle.PA = 5
	ally.Health = 100

	outcome, err := m.dispatchAbility(oracle, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 0})
	require.NoError(t, err)

	assert.Equal(t, "tide-oracle.skill", outcome.AbilityID)
	assert.Equal(t, 2, oracle.PA, "default skill cost is 3")
	assert.Equal(t, 125, ally.Health)
	assert.Equal(t, 1, oracle.UsageCount(m.Turn, ActionSkill))
}

func TestDispatch_InsufficientPA(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	oracle := place(t, m, SideA, RowBack, 0, "tide-oracle") // starts with 2 PA

	_, err := m.dispatchAbility(oracle, ActionSkill, &TargetRef{Side: SideA, Row: RowBack, Slot: 0})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInsufficientPA, rej.Reason)
	assert.Equal(t, 2, oracle.PA)
}

// A rejection raised inside the routine refunds cost and usage together.
func TestDispatch_AtomicRefundOnRejection(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	oracle := place(t, m, SideA, RowBack, 0, "tide-oracle")
	oracle.PA = 5

	// Empty target slot: the routine rejects after payment was taken.
	_, err := m.dispatchAbility(oracle, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 3})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEmptySlot, rej.Reason)

	assert.Equal(t, 5, oracle.PA, "cost refunded")
	assert.Equal(t, 0, oracle.UsageCount(m.Turn, ActionSkill), "usage refunded")

	// The refund left the ability fully usable.
	place(t, m, SideA, RowFront, 3, "grave-warden")
	_, err = m.dispatchAbility(oracle, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 3})
	require.NoError(t, err)
}

func TestDispatch_UsageLimitPerTurn(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	oracle := place(t, m, SideA, RowBack, 0, "tide-oracle")
	ally := place(t, m, SideA, RowFront, 0, "grave-warden")
	oracle.PA = 10
	ally.Health = 50

	target := &TargetRef{Side: SideA, Row: RowFront, Slot: 0}
	_, err := m.dispatchAbility(oracle, ActionSkill, target)
	require.NoError(t, err)

	_, err = m.dispatchAbility(oracle, ActionSkill, target)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUsageLimit, rej.Reason)

	// The turn counter is the idempotency token: a new turn resets the
	// limit without any per-card cleanup.
	m.Turn++
	_, err = m.dispatchAbility(oracle, ActionSkill, target)
	require.NoError(t, err)
}

// Arc Trickster's reposition allows two uses a turn at reduced cost.
func TestDispatch_RaisedUsageLimit(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	trickster := place(t, m, SideA, RowBack, 0, "arc-trickster")
	mover := place(t, m, SideA, RowFront, 2, "grave-warden")
	trickster.PA = 6

	_, err := m.dispatchAbility(trickster, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 2})
	require.NoError(t, err)
	assert.Equal(t, mover, m.player(SideA).CardAt(RowBack, 2))

	_, err = m.dispatchAbility(trickster, ActionSkill, &TargetRef{Side: SideA, Row: RowBack, Slot: 2})
	require.NoError(t, err)
	assert.Equal(t, mover, m.player(SideA).CardAt(RowFront, 2))
	assert.Equal(t, 2, trickster.PA, "reposition costs 2 per use")

	_, err = m.dispatchAbility(trickster, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 2})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUsageLimit, rej.Reason)
}

// Melee offensive abilities cannot reach a protected back row; ranged
// ones and sides with a back-row-access effect can.
func TestDispatch_BackRowProtection(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	melee := place(t, m, SideA, RowFront, 0, "emberdrake")
	ranged := place(t, m, SideA, RowBack, 0, "plague-herald")
	place(t, m, SideB, RowFront, 0, "clockwork-bulwark")
	place(t, m, SideB, RowBack, 1, "echo-sage")
	melee.PA = 10
	ranged.PA = 10

	backTarget := &TargetRef{Side: SideB, Row: RowBack, Slot: 1}

	_, err := m.dispatchAbility(melee, ActionSkill, backTarget)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBackRowProtected, rej.Reason)
	assert.Equal(t, 10, melee.PA, "gate check happens before payment")

	_, err = m.dispatchAbility(ranged, ActionSkill, backTarget)
	require.NoError(t, err, "ranged class reaches over the front row")

	m.Effects.ApplyTeam(string(SideA), &effect.Effect{
		ID: "order", Kind: effect.KindBackRowAccess, Magnitude: 1, TurnsLeft: 2,
	})
	_, err = m.dispatchAbility(melee, ActionSkill, backTarget)
	require.NoError(t, err, "team back-row access lifts the restriction")
}

func TestDispatch_OffensiveCannotTargetOwnSide(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	melee := place(t, m, SideA, RowFront, 0, "emberdrake")
	place(t, m, SideA, RowFront, 1, "grave-warden")
	melee.PA = 10

	_, err := m.dispatchAbility(melee, ActionSkill, &TargetRef{Side: SideA, Row: RowFront, Slot: 1})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonIllegalTarget, rej.Reason)
}

// Utility-class magnitudes scale with the side's amplifier at application
// time; amplification ending later does not retro-shrink anything.
func TestUtilityAmplify_AppliesAtApplicationTime(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	sage := place(t, m, SideA, RowBack, 0, "echo-sage")
	sapper := place(t, m, SideA, RowBack, 1, "aether-sapper")
	sage.PA = 10
	sapper.PA = 10
	m.player(SideA).Resource = 0

	_, err := m.dispatchAbility(sapper, ActionUltimate, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, m.player(SideA).Resource)

	_, err = m.dispatchAbility(sage, ActionSkill, nil)
	require.NoError(t, err)

	m.Turn++
	sapper.PA = 10
	_, err = m.dispatchAbility(sapper, ActionUltimate, nil)
	require.NoError(t, err)
	assert.Equal(t, 6, m.player(SideA).Resource, "amplified gain is doubled")
}

func TestMindControl_StealAndReturn(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	sovereign := place(t, m, SideA, RowBack, 0, "mind-sovereign")
	victim := place(t, m, SideB, RowFront, 2, "fang-ravager")
	sovereign.PA = 8

	_, err := m.dispatchAbility(sovereign, ActionUltimate, &TargetRef{Side: SideB, Row: RowFront, Slot: 2})
	require.NoError(t, err)

	assert.Equal(t, SideA, victim.Controller)
	assert.Equal(t, SideB, victim.Owner, "ownership never changes")
	assert.Nil(t, m.player(SideB).CardAt(RowFront, 2))
	assert.Equal(t, victim, m.player(SideA).CardAt(RowFront, 0))
	assert.Equal(t, string(SideA), m.Effects.Side(victim.ID))

	// Two of the controller's turn starts later, the card goes home.
	m.startTurn(SideA)
	assert.Equal(t, SideA, victim.Controller)
	m.startTurn(SideA)

	assert.Equal(t, SideB, victim.Controller)
	assert.Equal(t, victim, m.player(SideB).CardAt(RowFront, 2))
	assert.Equal(t, string(SideB), m.Effects.Side(victim.ID))
}

func TestMindControl_OccupiedOriginFallsBack(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	sovereign := place(t, m, SideA, RowBack, 0, "mind-sovereign")
	victim := place(t, m, SideB, RowFront, 2, "fang-ravager")
	sovereign.PA = 8

	_, err := m.dispatchAbility(sovereign, ActionUltimate, &TargetRef{Side: SideB, Row: RowFront, Slot: 2})
	require.NoError(t, err)

	// The origin slot gets reoccupied while the card is away.
	place(t, m, SideB, RowFront, 2, "grave-warden")

	m.startTurn(SideA)
	m.startTurn(SideA)

	assert.Equal(t, SideB, victim.Controller)
	assert.Equal(t, victim, m.player(SideB).CardAt(RowFront, 0), "falls back to the first free slot")
}

// A dead mind-controlled card goes to its owner's graveyard, not the
// thief's.
func TestMindControl_DeathReturnsToOwnerGraveyard(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	sovereign := place(t, m, SideA, RowBack, 0, "mind-sovereign")
	victim := place(t, m, SideB, RowFront, 2, "echo-sage")
	sovereign.PA = 8

	_, err := m.dispatchAbility(sovereign, ActionUltimate, &TargetRef{Side: SideB, Row: RowFront, Slot: 2})
	require.NoError(t, err)

	victim.Health = 1
	res := &StrikeResult{TargetID: victim.ID, TargetSide: SideA}
	m.applyDamage(victim, 10, res)

	assert.True(t, findInGraveyard(m, SideB, victim.ID))
	assert.False(t, findInGraveyard(m, SideA, victim.ID))
}

func TestSummonFromGraveyard_RespectsRarityAndCopyCap(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	marshal := place(t, m, SideA, RowBack, 0, "bone-marshal")
	marshal.PA = 10

	// Legendary deaths are final.
	legendary := place(t, m, SideA, RowFront, 0, "mind-sovereign")
	legendary.Health = 0
	m.moveToGraveyard(legendary)

	_, err := m.dispatchAbility(marshal, ActionUltimate, &TargetRef{Side: SideA, Row: RowFront, Slot: 1})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonEmptySource, rej.Reason)

	// A common card comes back fully reset.
	fallen := place(t, m, SideA, RowFront, 2, "fang-ravager")
	fallen.Health = 0
	m.moveToGraveyard(fallen)

	outcome, err := m.dispatchAbility(marshal, ActionUltimate, &TargetRef{Side: SideA, Row: RowFront, Slot: 2})
	require.NoError(t, err)
	assert.Contains(t, outcome.Summary, "Fang Ravager")
	assert.Equal(t, fallen, m.player(SideA).CardAt(RowFront, 2))
	assert.Equal(t, fallen.MaxHealth, fallen.Health)
	assert.False(t, findInGraveyard(m, SideA, fallen.ID))
}

func TestLifesteal_HealsAttacker(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	chanter := place(t, m, SideA, RowBack, 0, "blood-chanter")
	place(t, m, SideB, RowFront, 0, "echo-sage") // defense 15
	chanter.PA = 10
	chanter.Health = 50

	// blood-chanter.skill: 35 attack - 15 defense = 20 damage, heal 10.
	_, err := m.dispatchAbility(chanter, ActionSkill, &TargetRef{Side: SideB, Row: RowFront, Slot: 0})
	require.NoError(t, err)
	assert.Equal(t, 60, chanter.Health)
}

func TestPoison_AppliedOnHit(t *testing.T) {
	m := newTestMatch(t, nil, nil)
	herald := place(t, m, SideA, RowBack, 0, "plague-herald")
	target := place(t, m, SideB, RowFront, 0, "echo-sage")
	herald.PA = 10

	_, err := m.dispatchAbility(herald, ActionSkill, &TargetRef{Side: SideB, Row: RowFront, Slot: 0})
	require.NoError(t, err)
	assert.Equal(t, 10, m.Effects.PoisonDamage(target.ID))
}
