package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duelforge/arena-server/internal/catalog"
)

// newTestMatch bootstraps an in-progress match with the given decks and a
// fixed seed, bypassing the join handshake.
func newTestMatch(t *testing.T, deckA, deckB []string) *Match {
	t.Helper()
	m, err := NewMatch(Bootstrap{
		MatchID: "match-test",
		Sides: map[Side]SideBootstrap{
			SideA: {Name: "Alice", Deck: deckA},
			SideB: {Name: "Bob", Deck: deckB},
		},
		Seed: 42,
	})
	require.NoError(t, err)
	m.Phase = PhaseInProgress
	return m
}

// place summons a fresh instance of the definition straight onto the board.
func place(t *testing.T, m *Match, side Side, row Row, slot int, defID string) *CardInstance {
	t.Helper()
	def, err := catalog.Lookup(defID)
	require.NoError(t, err)
	card := NewCardInstance(def, side)
	require.NoError(t, m.placeOnBoard(side, row, slot, card))
	return card
}

// findInGraveyard reports whether the side's graveyard holds the instance.
func findInGraveyard(m *Match, side Side, cardID string) bool {
	for _, c := range m.player(side).Graveyard {
		if c.ID == cardID {
			return true
		}
	}
	return false
}
