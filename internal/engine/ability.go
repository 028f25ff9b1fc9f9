package engine

import (
	"fmt"

	"github.com/duelforge/arena-server/internal/catalog"
)

// Default action point costs; registry entries override per card.
const (
	defaultSkillCost    = 3
	defaultUltimateCost = 5
	defaultUsageLimit   = 1
)

// AbilityOutcome reports what an executed ability did, for event emission.
// Deaths are carried on the strike result; every routine that kills does it
// through the damage pipeline.
type AbilityOutcome struct {
	AbilityID string
	Summary   string
	Strike    *StrikeResult
}

// abilityEntry is one registry row: everything the dispatcher needs to
// gate, charge, and run a card action. Execute returns a *Rejection for its
// own precondition failures (wrong-side target, occupied slot); the
// dispatcher then refunds cost and usage together.
type abilityEntry struct {
	Cost       int
	UsageLimit int
	Offensive  bool
	Execute    func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error)
}

func (e abilityEntry) cost(kind ActionKind) int {
	if e.Cost > 0 {
		return e.Cost
	}
	if kind == ActionUltimate {
		return defaultUltimateCost
	}
	return defaultSkillCost
}

func (e abilityEntry) usageLimit() int {
	if e.UsageLimit > 0 {
		return e.UsageLimit
	}
	return defaultUsageLimit
}

// canReachBackRow applies the back-row-access rule: the defending front row
// is empty, the attacker's class is ranged or support, or a side-wide
// back-row-access effect is up for the attacker's side.
func (m *Match) canReachBackRow(attacker *CardInstance, defSide Side) bool {
	if m.player(defSide).FrontEmpty() {
		return true
	}
	switch attacker.Def.Class {
	case catalog.ClassRanged, catalog.ClassSupport:
		return true
	}
	return m.Effects.HasBackRowAccess(string(attacker.Controller))
}

// dispatchAbility validates, charges, and executes a skill or ultimate.
// Cost and usage are committed before execution; if the routine reports its
// own precondition failure both are refunded atomically.
func (m *Match) dispatchAbility(card *CardInstance, kind ActionKind, target *TargetRef) (*AbilityOutcome, error) {
	abilityID := card.Def.SkillID
	if kind == ActionUltimate {
		abilityID = card.Def.UltimateID
	}
	if abilityID == "" {
		return nil, reject(ReasonUnknownCard, "%s has no %s", card.Def.ID, kind)
	}

	entry, ok := abilityRegistry[abilityID]
	if !ok {
		return nil, reject(ReasonUnknownCard, "no ability routine for %s", abilityID)
	}

	cost := entry.cost(kind)
	if card.PA < cost {
		return nil, reject(ReasonInsufficientPA, "%s needs %d PA, has %d", abilityID, cost, card.PA)
	}
	if card.UsageCount(m.Turn, kind) >= entry.usageLimit() {
		return nil, reject(ReasonUsageLimit, "%s already used this turn", abilityID)
	}

	if entry.Offensive && target != nil && !target.Player {
		if target.Side == card.Controller {
			return nil, reject(ReasonIllegalTarget, "offensive ability targeting own side")
		}
		if target.Row == RowBack && !m.canReachBackRow(card, target.Side) {
			return nil, reject(ReasonBackRowProtected, "back row is protected by the front row")
		}
	}

	// Pay up front so a routine can never double-free action points on a
	// mid-effect failure.
	card.SpendPA(cost)
	card.MarkUsage(m.Turn, kind)

	outcome, err := entry.Execute(m, card, target)
	if err != nil {
		if _, isRejection := AsRejection(err); isRejection {
			// Refund cost and usage together, or not at all.
			card.GainPA(cost)
			card.RefundUsage(m.Turn, kind)
		}
		return nil, err
	}

	if outcome == nil {
		outcome = &AbilityOutcome{}
	}
	outcome.AbilityID = abilityID
	m.checkWin()
	return outcome, nil
}

// requireTarget rejects a nil board target.
func requireTarget(target *TargetRef) error {
	if target == nil || target.Player {
		return reject(ReasonIllegalTarget, "a board target is required")
	}
	if !target.Side.Valid() {
		return reject(ReasonMalformed, "invalid target side")
	}
	return nil
}

// resolveAllyTarget resolves a target that must be on the caster's side.
func resolveAllyTarget(m *Match, card *CardInstance, target *TargetRef) (*CardInstance, error) {
	if err := requireTarget(target); err != nil {
		return nil, err
	}
	if target.Side != card.Controller {
		return nil, reject(ReasonIllegalTarget, "target must be an ally")
	}
	ally := m.player(target.Side).CardAt(target.Row, target.Slot)
	if ally == nil {
		return nil, reject(ReasonEmptySlot, "no ally at %s/%d", target.Row, target.Slot)
	}
	return ally, nil
}

// resolveEnemyTarget resolves a target that must be on the opposing side.
func resolveEnemyTarget(m *Match, card *CardInstance, target *TargetRef) (*CardInstance, error) {
	if err := requireTarget(target); err != nil {
		return nil, err
	}
	if target.Side == card.Controller {
		return nil, reject(ReasonIllegalTarget, "target must be an enemy")
	}
	enemy := m.player(target.Side).CardAt(target.Row, target.Slot)
	if enemy == nil {
		return nil, reject(ReasonEmptySlot, "no enemy at %s/%d", target.Row, target.Slot)
	}
	return enemy, nil
}

// effectID derives the stable id for an effect applied by an ability, so a
// repeat application replaces instead of stacking.
func effectID(source *CardInstance, abilityID string) string {
	return fmt.Sprintf("%s:%s", source.ID, abilityID)
}

// utilityMagnitude scales a utility card's effect magnitude by the side's
// active amplifier at application time.
func (m *Match) utilityMagnitude(card *CardInstance, base float64) float64 {
	if card.Def.Class != catalog.ClassUtility {
		return base
	}
	return base * m.Effects.UtilityAmplify(string(card.Controller))
}
