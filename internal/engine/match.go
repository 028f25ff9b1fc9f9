package engine

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/duelforge/arena-server/internal/catalog"
	"github.com/duelforge/arena-server/internal/engine/effect"
)

// Phase is the match-level state machine.
type Phase string

const (
	PhaseWaitingForPlayers Phase = "WAITING_FOR_PLAYERS"
	PhaseInProgress        Phase = "IN_PROGRESS"
	PhaseFinished          Phase = "FINISHED"
)

// Defaults applied when a match is bootstrapped. Overridable through the
// Game section of the config file.
type MatchRules struct {
	StartingHealth   int
	PlayerDefense    int
	MaxResource      int
	StartingResource int
	StartingHand     int
}

// DefaultRules returns the base ruleset.
func DefaultRules() MatchRules {
	return MatchRules{
		StartingHealth:   1000,
		PlayerDefense:    10,
		MaxResource:      10,
		StartingResource: 5,
		StartingHand:     4,
	}
}

// SideBootstrap is one side's validated deck and display name, delivered by
// the external lobby. The engine trusts that deck validation already ran.
type SideBootstrap struct {
	Name string
	Deck []string // ordained card definition ids, front = first draw
}

// Bootstrap is a completed match request from the lobby.
type Bootstrap struct {
	MatchID string
	Sides   map[Side]SideBootstrap
	Rules   MatchRules
	Seed    int64 // crit rolls; zero means unseeded play
}

// Match is the authoritative state of one game. All mutation happens under
// mu so exactly one intent resolves at a time; matches are independent of
// each other.
type Match struct {
	mu sync.Mutex

	ID      string
	Phase   Phase
	Players map[Side]*PlayerState
	Active  Side
	Round   int
	Turn    int // strictly increasing, the usage-limit token
	Winner  Side
	Loser   Side
	Rules   MatchRules
	Effects *effect.Store

	seq  uint64
	rng  *rand.Rand
	seed int64

	// joined tracks which sides have connected at least once; the match
	// starts when both are present.
	joined map[Side]bool

	// manualDrawTurn records the last turn each side paid for an extra
	// draw; at most one per side per turn.
	manualDrawTurn map[Side]int
}

// NewMatch builds the authoritative match state from a bootstrap request.
func NewMatch(b Bootstrap) (*Match, error) {
	if b.MatchID == "" {
		return nil, fmt.Errorf("match id is required")
	}
	for _, side := range []Side{SideA, SideB} {
		if _, ok := b.Sides[side]; !ok {
			return nil, fmt.Errorf("bootstrap missing side %s", side)
		}
	}

	rules := b.Rules
	if rules.StartingHealth == 0 {
		rules = DefaultRules()
	}

	m := &Match{
		ID:      b.MatchID,
		Phase:   PhaseWaitingForPlayers,
		Players: make(map[Side]*PlayerState, 2),
		Active:  SideA,
		Round:   1,
		Turn:    1,
		Rules:   rules,
		Effects: effect.NewStore(),
		seed:    b.Seed,
		rng:     rand.New(rand.NewSource(b.Seed)),
		joined:  make(map[Side]bool, 2),

		manualDrawTurn: make(map[Side]int, 2),
	}

	for _, side := range []Side{SideA, SideB} {
		sb := b.Sides[side]
		ps := &PlayerState{
			Side:        side,
			Name:        sb.Name,
			Health:      rules.StartingHealth,
			MaxHealth:   rules.StartingHealth,
			Defense:     rules.PlayerDefense,
			Resource:    rules.StartingResource,
			MaxResource: rules.MaxResource,
		}
		for _, defID := range sb.Deck {
			def, err := catalog.Lookup(defID)
			if err != nil {
				return nil, fmt.Errorf("side %s deck: %w", side, err)
			}
			card := NewCardInstance(def, side)
			m.Effects.Register(card.ID, string(side))
			ps.Deck = append(ps.Deck, card)
		}
		for i := 0; i < rules.StartingHand && len(ps.Deck) > 0; i++ {
			ps.Draw()
		}
		m.Players[side] = ps
	}

	return m, nil
}

// MarkJoined records a participant connection. Returns true when the join
// completed the pair and the match moved to InProgress.
func (m *Match) MarkJoined(side Side) bool {
	m.joined[side] = true
	if m.Phase == PhaseWaitingForPlayers && m.joined[SideA] && m.joined[SideB] {
		m.Phase = PhaseInProgress
		return true
	}
	return false
}

// player returns the state for a side; sides are fixed at bootstrap.
func (m *Match) player(side Side) *PlayerState {
	return m.Players[side]
}

// findOnBoard locates a card instance on either board by id.
func (m *Match) findOnBoard(cardID string) (*PlayerState, Row, int, *CardInstance) {
	for _, side := range []Side{SideA, SideB} {
		ps := m.Players[side]
		for _, row := range []Row{RowFront, RowBack} {
			line := ps.Line(row)
			for i, c := range line {
				if c != nil && c.ID == cardID {
					return ps, row, i, c
				}
			}
		}
	}
	return nil, "", -1, nil
}

// placeOnBoard puts a card into a slot. The slot must be empty.
func (m *Match) placeOnBoard(side Side, row Row, slot int, card *CardInstance) error {
	if slot < 0 || slot >= SlotsPerRow {
		return fmt.Errorf("slot %d out of range", slot)
	}
	line := m.player(side).Line(row)
	if line[slot] != nil {
		return fmt.Errorf("slot %s/%d occupied", row, slot)
	}
	line[slot] = card
	card.Controller = side
	m.Effects.Register(card.ID, string(side))
	return nil
}

// moveToGraveyard clears the card's slot and moves it to its owner's
// graveyard, dropping all of its effects. Mind-controlled cards go home.
func (m *Match) moveToGraveyard(card *CardInstance) {
	ps, row, slot, found := m.findOnBoard(card.ID)
	if found != nil {
		ps.Line(row)[slot] = nil
	}
	m.Effects.Clear(card.ID)
	card.Controller = card.Owner
	m.Effects.Register(card.ID, string(card.Owner))
	card.Health = 0
	owner := m.player(card.Owner)
	owner.Graveyard = append(owner.Graveyard, card)
}

// checkWin runs win detection after a health-affecting event. The first
// side whose health is at zero, checked A before B, is declared loser; the
// ordering is a deterministic tie-break for mutual zero.
func (m *Match) checkWin() bool {
	if m.Phase == PhaseFinished {
		return true
	}
	for _, side := range []Side{SideA, SideB} {
		if m.Players[side].Health <= 0 {
			m.Players[side].Health = 0
			m.Loser = side
			m.Winner = side.Other()
			m.Phase = PhaseFinished
			return true
		}
	}
	return false
}

// InstanceIDs returns every card instance id a side owns across all zones,
// board slots included. Used by tests to assert zone conservation.
func (m *Match) InstanceIDs(side Side) []string {
	ps := m.player(side)
	var ids []string
	for _, c := range ps.Hand {
		ids = append(ids, c.ID)
	}
	for _, c := range ps.Deck {
		ids = append(ids, c.ID)
	}
	for _, c := range ps.Graveyard {
		ids = append(ids, c.ID)
	}
	// Board cards are keyed by owner, not controller: a mind-controlled
	// card still counts for its original side.
	for _, other := range []Side{SideA, SideB} {
		for _, c := range m.player(other).BoardCards() {
			if c.Owner == side {
				ids = append(ids, c.ID)
			}
		}
	}
	return ids
}
