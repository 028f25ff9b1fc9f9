package engine

import "github.com/duelforge/arena-server/internal/engine/effect"

// StrikeOptions tune a single strike resolution. The zero value is a basic
// attack: ×1 power, defense applies, counter-damage live.
type StrikeOptions struct {
	Multiplier    float64
	IgnoreDefense bool
	// SkipCounter disables the bounce rule for follow-up damage (splash,
	// redirect chains) that is not a forward attack.
	SkipCounter bool
	AllowCrit   bool
	// Hooks run after the primary damage event, outside the resolver, so
	// mutually recursive side effects never re-enter it.
	Hooks []PostDamageHook
}

// PostDamageHook is invoked once the primary strike has fully resolved.
type PostDamageHook func(m *Match, res *StrikeResult)

// Death records one card removed from the board during a resolution.
type Death struct {
	CardID string `json:"cardId"`
	DefID  string `json:"defId"`
	Side   Side   `json:"side"`
}

// StrikeResult is the full damage breakdown of one strike.
type StrikeResult struct {
	AttackerID   string  `json:"attackerId"`
	TargetID     string  `json:"targetId,omitempty"`
	TargetSide   Side    `json:"targetSide"`
	TargetPlayer bool    `json:"targetPlayer,omitempty"`
	Redirected   bool    `json:"redirected,omitempty"`
	Power        int     `json:"power"`
	Damage       int     `json:"damage"`
	Absorbed     int     `json:"absorbed"`
	Counter      int     `json:"counter"`
	Crit         bool    `json:"crit,omitempty"`
	Deaths       []Death `json:"deaths,omitempty"`
}

// snapshotFor builds the effect-store snapshot for a board card.
func (m *Match) snapshotFor(card *CardInstance) effect.Snapshot {
	return effect.Snapshot{
		CardID:      card.ID,
		Side:        string(card.Controller),
		BaseAttack:  card.Attack,
		BaseDefense: card.Defense,
		Health:      card.Health,
		MaxHealth:   card.MaxHealth,
		TribeAllies: m.player(card.Controller).TribeCounts(card.ID),
	}
}

// EffectiveAttack computes the card's current attack through the effect
// store, against live board state.
func (m *Match) EffectiveAttack(card *CardInstance) int {
	return m.Effects.EffectiveAttack(m.snapshotFor(card))
}

// EffectiveDefense computes the card's current defense through the effect
// store.
func (m *Match) EffectiveDefense(card *CardInstance) int {
	return m.Effects.EffectiveDefense(m.snapshotFor(card))
}

// strikePower rolls the attacker's final power for one strike.
func (m *Match) strikePower(attacker *CardInstance, opts StrikeOptions, res *StrikeResult) int {
	mult := opts.Multiplier
	if mult <= 0 {
		mult = 1
	}
	power := int(float64(m.EffectiveAttack(attacker)) * mult)
	if opts.AllowCrit {
		if chance := m.Effects.CritChance(attacker.ID); chance > 0 && m.rng.Float64() < chance {
			power *= 2
			res.Crit = true
		}
	}
	return power
}

// resolveStrike computes and applies one strike from a board card onto a
// defender slot. The full pipeline, in order: intercept re-targeting,
// pacifism, power minus effective defense (floored at zero), immunity,
// damage-taken multiplier, additive reduction (capped), shield absorption,
// health. Raw power strictly below effective defense bounces the deficit
// back onto the attacker as unmitigated self-damage instead.
func (m *Match) resolveStrike(attacker *CardInstance, defSide Side, row Row, slot int, opts StrikeOptions) (*StrikeResult, error) {
	defender := m.player(defSide).CardAt(row, slot)
	if defender == nil {
		return nil, reject(ReasonEmptySlot, "no card at %s %s/%d", defSide, row, slot)
	}

	res := &StrikeResult{
		AttackerID: attacker.ID,
		TargetID:   defender.ID,
		TargetSide: defSide,
	}

	// Intercept re-targets before anything else in the pipeline runs.
	if interceptID := m.Effects.InterceptTarget(defender.ID); interceptID != "" && interceptID != defender.ID {
		if _, _, _, redirected := m.findOnBoard(interceptID); redirected != nil {
			defender = redirected
			res.TargetID = defender.ID
			res.TargetSide = defender.Controller
			res.Redirected = true
		}
	}

	// A pacified source deals zero; the strike never connects, so the
	// bounce rule does not apply either.
	if m.Effects.IsPacified(attacker.ID) {
		return res, nil
	}

	power := m.strikePower(attacker, opts, res)
	res.Power = power

	defense := 0
	if !opts.IgnoreDefense {
		defense = m.EffectiveDefense(defender)
	}

	// Counter-damage: bouncing off overwhelming defense. The deficit hits
	// the attacker directly, skipping mitigation and on-hit hooks.
	if power < defense && !opts.SkipCounter {
		res.Counter = defense - power
		attacker.Health -= res.Counter
		if attacker.Health <= 0 {
			res.Deaths = append(res.Deaths, m.recordDeath(attacker))
		}
		return res, nil
	}

	raw := power - defense
	if raw < 0 {
		raw = 0
	}
	m.applyDamage(defender, raw, res)

	for _, hook := range opts.Hooks {
		hook(m, res)
	}

	return res, nil
}

// applyDamage runs the mitigation pipeline for damage already past the
// defense subtraction: immunity, taken-multiplier, additive reduction,
// shield, health. Deaths are appended to the result.
func (m *Match) applyDamage(target *CardInstance, raw int, res *StrikeResult) {
	if raw <= 0 || m.Effects.IsImmune(target.ID) {
		return
	}

	dmg := int(float64(raw) * m.Effects.DamageTakenMult(target.ID))
	dmg = int(float64(dmg) * (1 - m.Effects.ReductionPct(target.ID)))
	if dmg <= 0 {
		return
	}

	absorbed := m.Effects.AbsorbShield(target.ID, dmg)
	dmg -= absorbed

	target.Health -= dmg
	if target.ID == res.TargetID {
		res.Damage += dmg
		res.Absorbed += absorbed
	}
	if target.Health <= 0 {
		res.Deaths = append(res.Deaths, m.recordDeath(target))
	}
}

// resolveStrikePlayer applies a strike straight onto a side's life total.
// Player defense participates in the bounce rule the same way card defense
// does.
func (m *Match) resolveStrikePlayer(attacker *CardInstance, defSide Side, opts StrikeOptions) *StrikeResult {
	res := &StrikeResult{
		AttackerID:   attacker.ID,
		TargetSide:   defSide,
		TargetPlayer: true,
	}

	if m.Effects.IsPacified(attacker.ID) {
		return res
	}

	power := m.strikePower(attacker, opts, res)
	res.Power = power

	target := m.player(defSide)
	defense := 0
	if !opts.IgnoreDefense {
		defense = target.Defense
	}

	if power < defense && !opts.SkipCounter {
		res.Counter = defense - power
		attacker.Health -= res.Counter
		if attacker.Health <= 0 {
			res.Deaths = append(res.Deaths, m.recordDeath(attacker))
		}
		return res
	}

	dmg := power - defense
	if dmg < 0 {
		dmg = 0
	}
	target.Health -= dmg
	res.Damage = dmg
	m.checkWin()

	for _, hook := range opts.Hooks {
		hook(m, res)
	}
	return res
}

// recordDeath moves a dead card to its owner's graveyard and reports it.
func (m *Match) recordDeath(card *CardInstance) Death {
	death := Death{CardID: card.ID, DefID: card.Def.ID, Side: card.Controller}
	m.moveToGraveyard(card)
	return death
}
