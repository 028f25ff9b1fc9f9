package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func testDeck() []string {
	return []string{
		"fang-ravager", "grave-warden", "plague-herald", "tide-oracle",
		"clockwork-bulwark", "echo-sage",
	}
}

func newTestEngine(t *testing.T) (*Engine, *Match) {
	t.Helper()
	eng := NewEngine(zaptest.NewLogger(t))
	m, err := eng.CreateMatch(Bootstrap{
		MatchID: "match-1",
		Sides: map[Side]SideBootstrap{
			SideA: {Name: "Alice", Deck: testDeck()},
			SideB: {Name: "Bob", Deck: testDeck()},
		},
		Seed: 7,
	})
	require.NoError(t, err)
	return eng, m
}

// joinBoth connects both sides, which starts the match.
func joinBoth(t *testing.T, eng *Engine) *IntentResult {
	t.Helper()
	ctx := context.Background()
	_, err := eng.Join(ctx, "match-1", SideA)
	require.NoError(t, err)
	result, err := eng.Join(ctx, "match-1", SideB)
	require.NoError(t, err)
	return result
}

func TestEngine_MatchStartsOnSecondJoin(t *testing.T) {
	eng, m := newTestEngine(t)
	ctx := context.Background()

	first, err := eng.Join(ctx, "match-1", SideA)
	require.NoError(t, err)
	assert.Empty(t, first.Events)
	assert.Equal(t, PhaseWaitingForPlayers, m.Phase)

	second, err := eng.Join(ctx, "match-1", SideB)
	require.NoError(t, err)
	assert.Equal(t, PhaseInProgress, m.Phase)
	assert.Equal(t, SideA, m.Active)

	require.NotEmpty(t, second.Events)
	assert.Equal(t, EventMatchStarted, second.Events[0].Type)

	// Side A's first turn already ran: 4 opening cards plus the automatic
	// draw.
	assert.Len(t, m.player(SideA).Hand, 5)
	assert.Len(t, m.player(SideB).Hand, 4)
}

func TestEngine_IntentBeforeStartRejected(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()
	_, err := eng.Join(ctx, "match-1", SideA)
	require.NoError(t, err)

	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentEndTurn})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotStarted, rej.Reason)
}

func TestEngine_OnlyActiveSideMayAct(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	seqBefore := m.seq

	_, err := eng.HandleIntent(context.Background(), "match-1", SideB, Intent{Type: IntentEndTurn})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotYourTurn, rej.Reason)
	assert.Equal(t, seqBefore, m.seq, "a rejection must not advance the sequence")
}

func TestEngine_PlayCardFlow(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	// Hand order matches deck order: fang-ravager (cost 3) first.
	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type: IntentPlayCard, HandIndex: 0,
		To: &SlotRef{Row: RowFront, Slot: 2},
	})
	require.NoError(t, err)

	require.Len(t, result.Events, 1)
	assert.Equal(t, EventSummon, result.Events[0].Type)
	assert.Equal(t, "fang-ravager", result.Events[0].DefID)

	ps := m.player(SideA)
	assert.Len(t, ps.Hand, 4)
	assert.NotNil(t, ps.CardAt(RowFront, 2))
	assert.Equal(t, m.Rules.StartingResource-3, ps.Resource)

	// The occupied slot refuses a second summon.
	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type: IntentPlayCard, HandIndex: 0,
		To: &SlotRef{Row: RowFront, Slot: 2},
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonSlotOccupied, rej.Reason)
}

func TestEngine_PlayCardInsufficientResources(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	m.player(SideA).Resource = 1

	_, err := eng.HandleIntent(context.Background(), "match-1", SideA, Intent{
		Type: IntentPlayCard, HandIndex: 0,
		To: &SlotRef{Row: RowFront, Slot: 0},
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonInsufficientPI, rej.Reason)
	assert.Len(t, m.player(SideA).Hand, 5, "rejected play must not leave the hand")
}

func TestEngine_AttackOncePerTurn(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	attacker := place(t, m, SideA, RowFront, 0, "fang-ravager")
	place(t, m, SideB, RowFront, 0, "echo-sage")
	attacker.PA = 5

	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type:   IntentAttack,
		From:   &SlotRef{Row: RowFront, Slot: 0},
		Target: &TargetRef{Side: SideB, Row: RowFront, Slot: 0},
	})
	require.NoError(t, err)
	assert.Equal(t, EventAttack, result.Events[0].Type)
	assert.Equal(t, 4, attacker.PA)

	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type:   IntentAttack,
		From:   &SlotRef{Row: RowFront, Slot: 0},
		Target: &TargetRef{Side: SideB, Row: RowFront, Slot: 0},
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUsageLimit, rej.Reason)
}

func TestEngine_DirectPlayerAttackNeedsEmptyFront(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	attacker := place(t, m, SideA, RowFront, 0, "fang-ravager")
	blocker := place(t, m, SideB, RowFront, 3, "grave-warden")
	attacker.PA = 5

	playerTarget := &TargetRef{Side: SideB, Player: true}
	_, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type: IntentAttack, From: &SlotRef{Row: RowFront, Slot: 0}, Target: playerTarget,
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonIllegalTarget, rej.Reason)

	blocker.Health = 0
	m.moveToGraveyard(blocker)

	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type: IntentAttack, From: &SlotRef{Row: RowFront, Slot: 0}, Target: playerTarget,
	})
	require.NoError(t, err)
	assert.Equal(t, 30, result.Events[0].Strike.Damage)
	assert.Equal(t, m.Rules.StartingHealth-30, m.player(SideB).Health)
}

func TestEngine_BackRowAttackProtected(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)

	attacker := place(t, m, SideA, RowFront, 0, "fang-ravager")
	place(t, m, SideB, RowFront, 0, "grave-warden")
	place(t, m, SideB, RowBack, 0, "echo-sage")
	attacker.PA = 5

	_, err := eng.HandleIntent(context.Background(), "match-1", SideA, Intent{
		Type:   IntentAttack,
		From:   &SlotRef{Row: RowFront, Slot: 0},
		Target: &TargetRef{Side: SideB, Row: RowBack, Slot: 0},
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonBackRowProtected, rej.Reason)
	assert.Equal(t, 5, attacker.PA, "gate check precedes payment")
}

func TestEngine_ManualDrawOncePerTurn(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentDrawCard})
	require.NoError(t, err)
	assert.Equal(t, EventDraw, result.Events[0].Type)
	assert.True(t, result.Events[0].Hidden)
	assert.Equal(t, m.Rules.StartingResource-1, m.player(SideA).Resource)
	assert.Len(t, m.player(SideA).Hand, 6)

	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentDrawCard})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonUsageLimit, rej.Reason)
}

func TestEngine_UseSkillThroughIntent(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)

	oracle := place(t, m, SideA, RowBack, 0, "tide-oracle")
	ally := place(t, m, SideA, RowFront, 0, "grave-warden")
	oracle.PA = 5
	ally.Health = 100

	result, err := eng.HandleIntent(context.Background(), "match-1", SideA, Intent{
		Type:   IntentUseSkill,
		From:   &SlotRef{Row: RowBack, Slot: 0},
		Target: &TargetRef{Side: SideA, Row: RowFront, Slot: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, EventAbility, result.Events[0].Type)
	assert.Equal(t, "tide-oracle.skill", result.Events[0].AbilityID)
	assert.Equal(t, 125, ally.Health)
}

func TestEngine_EndTurnHandsOver(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentEndTurn})
	require.NoError(t, err)
	assert.Equal(t, SideB, m.Active)
	assert.Equal(t, EventTurnStart, result.Events[0].Type)
	assert.Equal(t, SideB, result.Events[0].Side)

	// Now B acts and A is refused.
	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentEndTurn})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotYourTurn, rej.Reason)

	_, err = eng.HandleIntent(ctx, "match-1", SideB, Intent{Type: IntentEndTurn})
	require.NoError(t, err)
	assert.Equal(t, SideA, m.Active)
}

func TestEngine_SequenceAdvancesPerAcceptedIntent(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	start := m.seq
	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentEndTurn})
	require.NoError(t, err)
	assert.Equal(t, start+1, result.Views[SideA].Seq)
	assert.Equal(t, result.Views[SideA].Seq, result.Views[SideB].Seq,
		"both snapshots come from the same state")
}

func TestEngine_LethalAbilityReportsDeaths(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)

	attacker := place(t, m, SideA, RowFront, 0, "storm-caller")
	attacker.PA = 5
	victim := place(t, m, SideB, RowFront, 0, "echo-sage")
	victim.Health = 30

	result, err := eng.HandleIntent(context.Background(), "match-1", SideA, Intent{
		Type:   IntentUseSkill,
		From:   &SlotRef{Row: RowFront, Slot: 0},
		Target: &TargetRef{Side: SideB, Row: RowFront, Slot: 0},
	})
	require.NoError(t, err)

	var deaths *Event
	for i := range result.Events {
		if result.Events[i].Type == EventDeaths {
			deaths = &result.Events[i]
		}
	}
	require.NotNil(t, deaths, "lethal ability must emit a deaths event")
	require.Len(t, deaths.Deaths, 1)
	assert.Equal(t, victim.ID, deaths.Deaths[0].CardID)
	assert.True(t, findInGraveyard(m, SideB, victim.ID))
}

func TestEngine_GameOverEventAndLockout(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	attacker := place(t, m, SideA, RowFront, 0, "fang-ravager")
	attacker.PA = 5
	m.player(SideB).Health = 20

	result, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type:   IntentAttack,
		From:   &SlotRef{Row: RowFront, Slot: 0},
		Target: &TargetRef{Side: SideB, Player: true},
	})
	require.NoError(t, err)

	last := result.Events[len(result.Events)-1]
	assert.Equal(t, EventGameOver, last.Type)
	assert.Equal(t, SideA, last.Winner)
	assert.Equal(t, PhaseFinished, result.Views[SideA].Phase)

	_, err = eng.HandleIntent(ctx, "match-1", SideA, Intent{Type: IntentEndTurn})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonMatchOver, rej.Reason)
}

func TestEngine_UnknownMatchAndSide(t *testing.T) {
	eng, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.HandleIntent(ctx, "nope", SideA, Intent{Type: IntentEndTurn})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonMatchNotFound, rej.Reason)

	_, err = eng.Join(ctx, "match-1", Side("C"))
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, ReasonNotParticipant, rej.Reason)
}

// Every instance a side owns stays accounted for across zone moves.
func TestEngine_ZoneConservation(t *testing.T) {
	eng, m := newTestEngine(t)
	joinBoth(t, eng)
	ctx := context.Background()

	total := len(testDeck())
	require.Len(t, m.InstanceIDs(SideA), total)

	_, err := eng.HandleIntent(ctx, "match-1", SideA, Intent{
		Type: IntentPlayCard, HandIndex: 0, To: &SlotRef{Row: RowFront, Slot: 0},
	})
	require.NoError(t, err)
	assert.Len(t, m.InstanceIDs(SideA), total)

	// Kill the played card; it must land in the graveyard, not vanish.
	card := m.player(SideA).CardAt(RowFront, 0)
	card.Health = 0
	m.moveToGraveyard(card)
	assert.Len(t, m.InstanceIDs(SideA), total)
	assert.Len(t, m.InstanceIDs(SideB), total)
}

func TestEngine_ResyncIsStable(t *testing.T) {
	eng, _ := newTestEngine(t)
	joinBoth(t, eng)

	v1, err := eng.Resync("match-1", SideA)
	require.NoError(t, err)
	v2, err := eng.Resync("match-1", SideA)
	require.NoError(t, err)

	assert.Equal(t, v1.Seq, v2.Seq, "no intervening mutation, identical snapshots")
	assert.Equal(t, v1.Turn, v2.Turn)
}
