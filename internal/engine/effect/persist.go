package effect

// Export produces a serializable snapshot of the store. Shield totals are
// derived state and are not exported; Import rebuilds them from the shield
// effects themselves.
type Export struct {
	Cards map[string][]*Effect `json:"cards,omitempty"`
	Teams map[string][]*Effect `json:"teams,omitempty"`
	Sides map[string]string    `json:"sides,omitempty"`
}

// Snapshot copies the store into an exportable form.
func (s *Store) Snapshot() *Export {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &Export{
		Cards: make(map[string][]*Effect, len(s.cards)),
		Teams: make(map[string][]*Effect, len(s.teams)),
		Sides: make(map[string]string, len(s.sides)),
	}
	for cardID, list := range s.cards {
		copied := make([]*Effect, 0, len(list))
		for _, eff := range list {
			copied = append(copied, eff.Copy())
		}
		out.Cards[cardID] = copied
	}
	for side, list := range s.teams {
		copied := make([]*Effect, 0, len(list))
		for _, eff := range list {
			copied = append(copied, eff.Copy())
		}
		out.Teams[side] = copied
	}
	for cardID, side := range s.sides {
		out.Sides[cardID] = side
	}
	return out
}

// Restore builds a store from an exported snapshot.
func Restore(exp *Export) *Store {
	s := NewStore()
	if exp == nil {
		return s
	}
	for cardID, side := range exp.Sides {
		s.sides[cardID] = side
	}
	for cardID, list := range exp.Cards {
		for _, eff := range list {
			s.Apply(cardID, eff.Copy())
		}
	}
	for side, list := range exp.Teams {
		for _, eff := range list {
			s.ApplyTeam(side, eff.Copy())
		}
	}
	return s
}
