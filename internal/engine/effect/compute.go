package effect

// Snapshot carries the board context a derived-value computation needs.
// Effective values are always computed from base values plus the live
// effect list; they are never stored back on the card.
type Snapshot struct {
	CardID      string
	Side        string
	BaseAttack  int
	BaseDefense int
	Health      int
	MaxHealth   int
	// TribeAllies counts board allies per tribe, excluding the card itself.
	TribeAllies map[string]int
}

// maxReduction caps stacked additive damage reduction.
const maxReduction = 0.90

// EffectiveAttack folds every active, non-suppressed effect into a single
// attack value: flat bonuses (including tribe-count and missing-health
// bonuses) sum first, then multiplicative bonuses apply.
func (s *Store) EffectiveAttack(snap Snapshot) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attack := float64(snap.BaseAttack)
	mult := 1.0

	for _, eff := range s.activeLocked(snap.CardID) {
		switch eff.Kind {
		case KindFlatAttack:
			attack += eff.Magnitude
		case KindMultAttack:
			mult *= eff.Magnitude
		case KindTribeAttack:
			if snap.TribeAllies != nil {
				attack += eff.Magnitude * float64(snap.TribeAllies[eff.Meta.Tribe])
			}
		case KindMissingHealthAttack:
			missing := snap.MaxHealth - snap.Health
			if missing > 0 {
				attack += eff.Magnitude * float64(missing)
			}
		}
	}

	result := int(attack * mult)
	if result < 0 {
		return 0
	}
	return result
}

// EffectiveDefense returns the card's defense after effects. A defense-zero
// override wins over everything else.
func (s *Store) EffectiveDefense(snap Snapshot) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, eff := range s.activeLocked(snap.CardID) {
		if eff.Kind == KindDefenseZero {
			return 0
		}
	}
	if snap.BaseDefense < 0 {
		return 0
	}
	return snap.BaseDefense
}

// ReductionPct sums additive damage reduction on the card, capped at 90%.
func (s *Store) ReductionPct(cardID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindDamageReduction {
			total += eff.Magnitude
		}
	}
	if total > maxReduction {
		return maxReduction
	}
	if total < 0 {
		return 0
	}
	return total
}

// DamageTakenMult multiplies the card's incoming damage multipliers.
func (s *Store) DamageTakenMult(cardID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	mult := 1.0
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindDamageTakenMult {
			mult *= eff.Magnitude
		}
	}
	return mult
}

// IsImmune reports whether the card currently takes zero damage.
func (s *Store) IsImmune(cardID string) bool {
	return s.hasKind(cardID, KindDamageImmunity)
}

// IsPacified reports whether the card currently deals zero damage.
func (s *Store) IsPacified(cardID string) bool {
	return s.hasKind(cardID, KindPacifism)
}

// CritChance returns the card's crit chance in [0,1].
func (s *Store) CritChance(cardID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	chance := 0.0
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindCritChance && eff.Magnitude > chance {
			chance = eff.Magnitude
		}
	}
	if chance > 1 {
		return 1
	}
	return chance
}

// PoisonDamage sums the poison magnitudes ticking on a card.
func (s *Store) PoisonDamage(cardID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0.0
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindPoison {
			total += eff.Magnitude
		}
	}
	return int(total)
}

// IsInfected reports whether the card carries any poison effect, suppressed
// or not; infection spread keys off the stored effect, not its computation.
func (s *Store) IsInfected(cardID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eff := range s.cards[cardID] {
		if eff.Kind == KindPoison {
			return true
		}
	}
	return false
}

// InterceptTarget returns the card id strikes on cardID are redirected to,
// or empty when no intercept is active.
func (s *Store) InterceptTarget(cardID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindIntercept {
			return eff.Meta.TargetID
		}
	}
	return ""
}

// TurnStartResource sums the card's start-of-turn action point bonuses.
func (s *Store) TurnStartResource(cardID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0.0
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == KindTurnStartResource {
			total += eff.Magnitude
		}
	}
	return int(total)
}

// Shield returns the card's current derived shield total.
func (s *Store) Shield(cardID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shields[cardID]
}

// AbsorbShield consumes up to damage points of shield, oldest application
// first, and returns the amount absorbed. Exhausted shield effects are
// removed and the derived total updated immediately.
func (s *Store) AbsorbShield(cardID string, damage int) int {
	if damage <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := damage
	list := s.cards[cardID]
	kept := list[:0]
	for _, eff := range list {
		if eff.Kind != KindShield || remaining <= 0 {
			kept = append(kept, eff)
			continue
		}
		avail := int(eff.Magnitude)
		if avail > remaining {
			eff.Magnitude = float64(avail - remaining)
			s.shields[cardID] -= remaining
			remaining = 0
			kept = append(kept, eff)
			continue
		}
		remaining -= avail
		s.shields[cardID] -= avail
	}
	s.cards[cardID] = kept
	if s.shields[cardID] < 0 {
		s.shields[cardID] = 0
	}
	return damage - remaining
}

// HasBackRowAccess reports whether a side-wide back-row-access effect is up.
func (s *Store) HasBackRowAccess(side string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasTeamKindLocked(side, KindBackRowAccess)
}

// UtilityAmplify returns the factor utility-effect magnitudes are scaled by
// when applied for the side. 1 when no amplifier is up.
func (s *Store) UtilityAmplify(side string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	factor := 1.0
	suppressed := s.suppressedLocked(side)
	for _, eff := range s.teams[side] {
		if eff.Kind != KindUtilityAmplify {
			continue
		}
		if suppressed && !eff.suppressionExempt() {
			continue
		}
		factor *= eff.Magnitude
	}
	return factor
}

func (s *Store) hasKind(cardID string, kind Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eff := range s.activeLocked(cardID) {
		if eff.Kind == kind {
			return true
		}
	}
	return false
}
