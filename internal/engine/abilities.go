package engine

import (
	"fmt"

	"github.com/duelforge/arena-server/internal/engine/effect"
)

// abilityRegistry maps ability ids to their routines. One closed table, one
// routine per card action; each entry is independently unit-testable.
var abilityRegistry = map[string]abilityEntry{
	// --- Emberdrake: melee striker with splash ---
	"emberdrake.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Multiplier: 1.5,
			Hooks:      []PostDamageHook{splashAdjacentHook(0.5)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "flame sweep with splash", Strike: res}, nil
	}},
	"emberdrake.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Multiplier: 2.5,
			AllowCrit:  true,
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "incinerating dive", Strike: res}, nil
	}},

	// --- Cinder Colossus: shield + intercept tank ---
	"cinder-colossus.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: effectID(card, "cinder-colossus.skill"), SourceID: card.ID,
			Kind: effect.KindShield, Magnitude: 30, TurnsLeft: 3,
		})
		return &AbilityOutcome{Summary: "molten carapace: shield 30"}, nil
	}},
	"cinder-colossus.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		protected := 0
		for _, ally := range m.player(card.Controller).BoardCards() {
			if ally.ID == card.ID {
				continue
			}
			m.Effects.Apply(ally.ID, &effect.Effect{
				ID: effectID(card, "cinder-colossus.ult"), SourceID: card.ID,
				Kind: effect.KindIntercept, Magnitude: 1, TurnsLeft: 2,
				Meta: effect.Meta{TargetID: card.ID},
			})
			protected++
		}
		return &AbilityOutcome{Summary: fmt.Sprintf("bulwark stance: intercepting for %d allies", protected)}, nil
	}},

	// --- Grave Warden: mitigation and curses ---
	"grave-warden.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(ally.ID, &effect.Effect{
			ID: effectID(card, "grave-warden.skill"), SourceID: card.ID,
			Kind: effect.KindDamageReduction, Magnitude: 0.30, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "warding vigil: 30% damage reduction"}, nil
	}},
	"grave-warden.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		enemy, err := resolveEnemyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(enemy.ID, &effect.Effect{
			ID: effectID(card, "grave-warden.ult"), SourceID: card.ID,
			Kind: effect.KindDamageTakenMult, Magnitude: 1.5, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "grave brand: +50% damage taken"}, nil
	}},

	// --- Plague Herald: poison and infection spread ---
	"plague-herald.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Hooks: []PostDamageHook{poisonHook(card, "plague-herald.skill", 10, 3)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "venom bolt", Strike: res}, nil
	}},
	"plague-herald.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Multiplier: 1.2,
			Hooks: []PostDamageHook{
				poisonHook(card, "plague-herald.ult", 12, 3),
				infectionSpreadHook(card, 15),
			},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "pandemic surge", Strike: res}, nil
	}},

	// --- Bone Marshal: buffs and graveyard recall ---
	"bone-marshal.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(ally.ID, &effect.Effect{
			ID: effectID(card, "bone-marshal.skill"), SourceID: card.ID,
			Kind: effect.KindFlatAttack, Magnitude: 15, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "marrow rally: +15 attack"}, nil
	}},
	"bone-marshal.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		return m.summonFromGraveyard(card, target)
	}},

	// --- Tide Oracle: healing ---
	"tide-oracle.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		healed := ally.Heal(25)
		return &AbilityOutcome{Summary: fmt.Sprintf("tidal mend: healed %d", healed)}, nil
	}},
	"tide-oracle.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		healed := ally.Heal(ally.MaxHealth)
		return &AbilityOutcome{Summary: fmt.Sprintf("spring of renewal: healed %d", healed)}, nil
	}},

	// --- Mind Sovereign: pacify and mind control ---
	"mind-sovereign.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		enemy, err := resolveEnemyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(enemy.ID, &effect.Effect{
			ID: effectID(card, "mind-sovereign.skill"), SourceID: card.ID,
			Kind: effect.KindPacifism, Magnitude: 1, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "stupor: target pacified"}, nil
	}},
	"mind-sovereign.ult": {Cost: 6, Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		return m.mindControl(card, target, 2)
	}},

	// --- Aether Sapper: resource theft and charges ---
	"aether-sapper.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Hooks: []PostDamageHook{paTheftHook(card, 2)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "siphon strike", Strike: res}, nil
	}},
	"aether-sapper.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		gain := int(m.utilityMagnitude(card, 2))
		m.player(card.Controller).GainResource(gain)
		return &AbilityOutcome{Summary: fmt.Sprintf("aether infusion: +%d resource", gain)}, nil
	}},

	// --- Clockwork Bulwark: shields and immunity ---
	"clockwork-bulwark.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(ally.ID, &effect.Effect{
			ID: effectID(card, "clockwork-bulwark.skill"), SourceID: card.ID,
			Kind: effect.KindShield, Magnitude: 20, TurnsLeft: 3,
		})
		return &AbilityOutcome{Summary: "deploy barrier: shield 20"}, nil
	}},
	"clockwork-bulwark.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: effectID(card, "clockwork-bulwark.ult"), SourceID: card.ID,
			Kind: effect.KindDamageImmunity, Magnitude: 1, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "lockdown: immune to damage"}, nil
	}},

	// --- Storm Caller: piercing and crits ---
	"storm-caller.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			IgnoreDefense: true,
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "chain lightning: ignores defense", Strike: res}, nil
	}},
	"storm-caller.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: effectID(card, "storm-caller.ult"), SourceID: card.ID,
			Kind: effect.KindCritChance, Magnitude: 0.5, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "eye of the storm: 50% crit"}, nil
	}},

	// --- Fang Ravager: self buffs ---
	"fang-ravager.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: effectID(card, "fang-ravager.skill"), SourceID: card.ID,
			Kind: effect.KindMultAttack, Magnitude: 1.5, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "frenzy: attack x1.5"}, nil
	}},
	"fang-ravager.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.Apply(card.ID, &effect.Effect{
			ID: effectID(card, "fang-ravager.ult"), SourceID: card.ID,
			Kind: effect.KindMissingHealthAttack, Magnitude: 0.25, TurnsLeft: 3,
		})
		return &AbilityOutcome{Summary: "cornered fury: attack scales with wounds"}, nil
	}},

	// --- Pack Alpha: tribal buff and back-row access ---
	"pack-alpha.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(ally.ID, &effect.Effect{
			ID: effectID(card, "pack-alpha.skill"), SourceID: card.ID,
			Kind: effect.KindTribeAttack, Magnitude: 8, TurnsLeft: 2,
			Meta: effect.Meta{Tribe: "BEAST"},
		})
		return &AbilityOutcome{Summary: "pack howl: +8 attack per beast ally"}, nil
	}},
	"pack-alpha.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.ApplyTeam(string(card.Controller), &effect.Effect{
			ID: effectID(card, "pack-alpha.ult"), SourceID: card.ID,
			Kind: effect.KindBackRowAccess, Magnitude: 1, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "flanking order: back row exposed"}, nil
	}},

	// --- Blood Chanter: lifesteal and defense shred ---
	"blood-chanter.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Hooks: []PostDamageHook{lifestealHook(card, 0.5)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "blood tithe", Strike: res}, nil
	}},
	"blood-chanter.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		enemy, err := resolveEnemyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(enemy.ID, &effect.Effect{
			ID: effectID(card, "blood-chanter.ult"), SourceID: card.ID,
			Kind: effect.KindDefenseZero, Magnitude: 1, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "hex of frailty: defense nullified"}, nil
	}},

	// --- Arc Trickster: board manipulation, twice a turn ---
	"arc-trickster.skill": {Cost: 2, UsageLimit: 2, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		return m.swapRows(card, target)
	}},
	"arc-trickster.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		enemy, err := resolveEnemyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.returnToDeck(enemy)
		return &AbilityOutcome{Summary: fmt.Sprintf("phase displacement: %s returned to deck", enemy.Def.Name)}, nil
	}},

	// --- Echo Sage: utility amplification ---
	"echo-sage.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		m.Effects.ApplyTeam(string(card.Controller), &effect.Effect{
			ID: effectID(card, "echo-sage.skill"), SourceID: card.ID,
			Kind: effect.KindUtilityAmplify, Magnitude: 2, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "resonance: utility effects doubled"}, nil
	}},
	"echo-sage.ult": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		bonus := m.utilityMagnitude(card, 1)
		count := 0
		for _, ally := range m.player(card.Controller).BoardCards() {
			m.Effects.Apply(ally.ID, &effect.Effect{
				ID: effectID(card, "echo-sage.ult"), SourceID: card.ID,
				Kind: effect.KindTurnStartResource, Magnitude: bonus, TurnsLeft: 2,
			})
			count++
		}
		return &AbilityOutcome{Summary: fmt.Sprintf("echoing vigor: %d allies energized", count)}, nil
	}},

	// --- Dusk Stalker: tribe redirect and draining strikes ---
	"dusk-stalker.skill": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Hooks: []PostDamageHook{tribeEchoHook(0.5)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "shadow rend: wounds echo through the tribe", Strike: res}, nil
	}},
	"dusk-stalker.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		if _, err := resolveEnemyTarget(m, card, target); err != nil {
			return nil, err
		}
		res, err := m.resolveStrike(card, target.Side, target.Row, target.Slot, StrikeOptions{
			Multiplier: 2,
			Hooks:      []PostDamageHook{lifestealHook(card, 1)},
		})
		if err != nil {
			return nil, err
		}
		return &AbilityOutcome{Summary: "gloom feast", Strike: res}, nil
	}},

	// --- Hex Veiler: wards and suppression ---
	"hex-veiler.skill": {Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		ally, err := resolveAllyTarget(m, card, target)
		if err != nil {
			return nil, err
		}
		m.Effects.Apply(ally.ID, &effect.Effect{
			ID: effectID(card, "hex-veiler.skill"), SourceID: card.ID,
			Kind: effect.KindDamageReduction, Magnitude: 0.20, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "veil ward: 20% damage reduction"}, nil
	}},
	"hex-veiler.ult": {Offensive: true, Execute: func(m *Match, card *CardInstance, target *TargetRef) (*AbilityOutcome, error) {
		enemySide := card.Controller.Other()
		m.Effects.ApplyTeam(string(enemySide), &effect.Effect{
			ID: effectID(card, "hex-veiler.ult"), SourceID: card.ID,
			Kind: effect.KindSuppressTemporary, Magnitude: 1, TurnsLeft: 2,
		})
		return &AbilityOutcome{Summary: "nullfield: enemy boons suppressed"}, nil
	}},
}

// splashAdjacentHook deals a fraction of the primary damage to the slots
// adjacent to the final target, through the regular mitigation pipeline.
func splashAdjacentHook(frac float64) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		if res.Damage <= 0 {
			return
		}
		ps, row, slot, target := m.findOnBoard(res.TargetID)
		if target == nil {
			// Primary target already died; nothing left to splash around.
			return
		}
		splash := int(float64(res.Damage) * frac)
		for _, adj := range []int{slot - 1, slot + 1} {
			if adj < 0 || adj >= SlotsPerRow {
				continue
			}
			if neighbor := ps.CardAt(row, adj); neighbor != nil {
				m.applyDamage(neighbor, splash, res)
			}
		}
	}
}

// poisonHook infects the target if it survived the strike.
func poisonHook(source *CardInstance, abilityID string, magnitude float64, turns int) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		_, _, _, target := m.findOnBoard(res.TargetID)
		if target == nil {
			return
		}
		m.Effects.Apply(target.ID, &effect.Effect{
			ID: effectID(source, abilityID), SourceID: source.ID,
			Kind: effect.KindPoison, Magnitude: magnitude, TurnsLeft: turns,
		})
	}
}

// infectionSpreadHook damages every other already-infected card on the
// target's side through the mitigation pipeline.
func infectionSpreadHook(source *CardInstance, damage int) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		infected := make([]*CardInstance, 0, 2*SlotsPerRow)
		for _, c := range m.player(res.TargetSide).BoardCards() {
			if c.ID != res.TargetID && m.Effects.IsInfected(c.ID) {
				infected = append(infected, c)
			}
		}
		for _, c := range infected {
			m.applyDamage(c, damage, res)
		}
	}
}

// lifestealHook heals the attacker for a fraction of the damage dealt.
func lifestealHook(attacker *CardInstance, frac float64) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		if res.Damage <= 0 || attacker.Health <= 0 {
			return
		}
		attacker.Heal(int(float64(res.Damage) * frac))
	}
}

// paTheftHook steals up to n action points from a surviving target.
func paTheftHook(attacker *CardInstance, n int) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		_, _, _, target := m.findOnBoard(res.TargetID)
		if target == nil {
			return
		}
		stolen := n
		if target.PA < stolen {
			stolen = target.PA
		}
		if stolen <= 0 {
			return
		}
		target.SpendPA(stolen)
		attacker.GainPA(stolen)
	}
}

// tribeEchoHook repeats a fraction of the dealt damage onto the first board
// ally sharing the target's tribe, through the mitigation pipeline.
func tribeEchoHook(frac float64) PostDamageHook {
	return func(m *Match, res *StrikeResult) {
		if res.Damage <= 0 {
			return
		}
		_, _, _, target := m.findOnBoard(res.TargetID)
		var tribe string
		if target != nil {
			tribe = string(target.Def.Tribe)
		}
		if tribe == "" {
			return
		}
		echo := int(float64(res.Damage) * frac)
		for _, c := range m.player(res.TargetSide).BoardCards() {
			if c.ID == res.TargetID || string(c.Def.Tribe) != tribe {
				continue
			}
			m.applyDamage(c, echo, res)
			return
		}
	}
}
