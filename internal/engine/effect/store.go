package effect

import (
	"sync"
)

// Store holds every active status effect in a match: per-card ordered lists
// plus per-side team effects. Derived values (effective attack, mitigation,
// shield totals) are computed on demand; nothing numeric is cached on the
// card itself.
type Store struct {
	mu      sync.RWMutex
	cards   map[string][]*Effect // card instance id -> ordered effects
	teams   map[string][]*Effect // side -> ordered team effects
	sides   map[string]string    // card instance id -> current side
	shields map[string]int       // card instance id -> derived shield total
}

// NewStore creates an empty effect store.
func NewStore() *Store {
	return &Store{
		cards:   make(map[string][]*Effect),
		teams:   make(map[string][]*Effect),
		sides:   make(map[string]string),
		shields: make(map[string]int),
	}
}

// Register records which side a card fights for. Must be called before the
// card can be affected; mind control re-registers the card on the other side.
func (s *Store) Register(cardID, side string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sides[cardID] = side
}

// Side returns the side a card is currently registered on.
func (s *Store) Side(cardID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sides[cardID]
}

// Apply inserts or replaces (by effect id) an effect on a card. Shield
// totals are updated immediately when the kind is a shield.
func (s *Store) Apply(cardID string, eff *Effect) {
	if eff == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.cards[cardID]
	replaced := false
	for i, existing := range list {
		if existing.ID == eff.ID {
			if existing.Kind == KindShield {
				s.shields[cardID] -= int(existing.Magnitude)
			}
			list[i] = eff
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, eff)
	}
	s.cards[cardID] = list

	if eff.Kind == KindShield {
		s.shields[cardID] += int(eff.Magnitude)
	}
}

// ApplyTeam inserts or replaces (by effect id) a team effect on a side.
func (s *Store) ApplyTeam(side string, eff *Effect) {
	if eff == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.teams[side]
	for i, existing := range list {
		if existing.ID == eff.ID {
			list[i] = eff
			s.teams[side] = list
			return
		}
	}
	s.teams[side] = append(list, eff)
}

// Remove deletes an effect from a card by id.
func (s *Store) Remove(cardID, effectID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(cardID, effectID)
}

func (s *Store) removeLocked(cardID, effectID string) {
	list := s.cards[cardID]
	for i, eff := range list {
		if eff.ID == effectID {
			if eff.Kind == KindShield {
				s.shields[cardID] -= int(eff.Magnitude)
				if s.shields[cardID] < 0 {
					s.shields[cardID] = 0
				}
			}
			s.cards[cardID] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Clear drops every effect on a card (death, return to deck) and its shield
// total. The side registration is kept until Unregister.
func (s *Store) Clear(cardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, cardID)
	delete(s.shields, cardID)
}

// Unregister forgets a card entirely.
func (s *Store) Unregister(cardID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cards, cardID)
	delete(s.shields, cardID)
	delete(s.sides, cardID)
}

// Effects returns a copy of the active effects on a card, in application
// order.
func (s *Store) Effects(cardID string) []*Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.cards[cardID]
	out := make([]*Effect, 0, len(list))
	for _, eff := range list {
		out = append(out, eff.Copy())
	}
	return out
}

// TeamEffects returns a copy of the active team effects on a side.
func (s *Store) TeamEffects(side string) []*Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.teams[side]
	out := make([]*Effect, 0, len(list))
	for _, eff := range list {
		out = append(out, eff.Copy())
	}
	return out
}

// Find returns the effect with the given id on a card, or nil.
func (s *Store) Find(cardID, effectID string) *Effect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, eff := range s.cards[cardID] {
		if eff.ID == effectID {
			return eff.Copy()
		}
	}
	return nil
}

// DecrementSide ticks down every non-permanent effect on every card
// registered to the side, plus the side's non-permanent team effects.
// Effects reaching zero turns are removed (shield totals adjusted) and
// reported so deferred consequences can be resolved by the caller.
func (s *Store) DecrementSide(side string) []Expired {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []Expired

	for cardID, cardSide := range s.sides {
		if cardSide != side {
			continue
		}
		list := s.cards[cardID]
		kept := list[:0]
		for _, eff := range list {
			if eff.Permanent {
				kept = append(kept, eff)
				continue
			}
			eff.TurnsLeft--
			if eff.TurnsLeft > 0 {
				kept = append(kept, eff)
				continue
			}
			if eff.Kind == KindShield {
				s.shields[cardID] -= int(eff.Magnitude)
				if s.shields[cardID] < 0 {
					s.shields[cardID] = 0
				}
			}
			expired = append(expired, Expired{CardID: cardID, Side: side, Effect: eff})
		}
		if len(kept) == 0 {
			delete(s.cards, cardID)
		} else {
			s.cards[cardID] = kept
		}
	}

	teamList := s.teams[side]
	keptTeam := teamList[:0]
	for _, eff := range teamList {
		if eff.Permanent {
			keptTeam = append(keptTeam, eff)
			continue
		}
		eff.TurnsLeft--
		if eff.TurnsLeft > 0 {
			keptTeam = append(keptTeam, eff)
			continue
		}
		expired = append(expired, Expired{Side: side, Effect: eff})
	}
	if len(keptTeam) == 0 {
		delete(s.teams, side)
	} else {
		s.teams[side] = keptTeam
	}

	return expired
}

// suppressedLocked reports whether non-permanent effects are currently
// filtered out for the side. Evaluated lazily on every read; the stored
// effects are never mutated by suppression.
func (s *Store) suppressedLocked(side string) bool {
	for _, eff := range s.teams[side] {
		if eff.Kind == KindSuppressTemporary {
			return true
		}
	}
	return false
}

// activeLocked yields the card's effects that count for derived-value
// computation, honouring side-wide suppression.
func (s *Store) activeLocked(cardID string) []*Effect {
	list := s.cards[cardID]
	if !s.suppressedLocked(s.sides[cardID]) {
		return list
	}
	active := make([]*Effect, 0, len(list))
	for _, eff := range list {
		if eff.suppressionExempt() {
			active = append(active, eff)
		}
	}
	return active
}

// hasTeamKindLocked reports whether the side has an active team effect of
// the kind, honouring suppression.
func (s *Store) hasTeamKindLocked(side string, kind Kind) bool {
	suppressed := s.suppressedLocked(side)
	for _, eff := range s.teams[side] {
		if eff.Kind != kind {
			continue
		}
		if suppressed && !eff.suppressionExempt() && kind != KindSuppressTemporary {
			continue
		}
		return true
	}
	return false
}
