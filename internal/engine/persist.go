package engine

import (
	"fmt"
	"math/rand"

	"github.com/duelforge/arena-server/internal/catalog"
	"github.com/duelforge/arena-server/internal/engine/effect"
)

// PersistedCard is the serializable form of a card instance. Only the
// definition id is stored; the definition itself is re-resolved from the
// catalog on restore.
type PersistedCard struct {
	ID         string                     `json:"id"`
	DefID      string                     `json:"defId"`
	Owner      Side                       `json:"owner"`
	Controller Side                       `json:"controller"`
	Health     int                        `json:"health"`
	MaxHealth  int                        `json:"maxHealth"`
	Attack     int                        `json:"attack"`
	Defense    int                        `json:"defense"`
	PA         int                        `json:"pa"`
	Usage      map[int]map[ActionKind]int `json:"usage,omitempty"`
}

// PersistedPlayer is the serializable form of one side's state.
type PersistedPlayer struct {
	Side        Side             `json:"side"`
	Name        string           `json:"name"`
	Health      int              `json:"health"`
	MaxHealth   int              `json:"maxHealth"`
	Defense     int              `json:"defense"`
	Resource    int              `json:"resource"`
	MaxResource int              `json:"maxResource"`
	Hand        []*PersistedCard `json:"hand"`
	Deck        []*PersistedCard `json:"deck"`
	Graveyard   []*PersistedCard `json:"graveyard"`
	Front       []*PersistedCard `json:"front"` // fixed length, nil for empty slots
	Back        []*PersistedCard `json:"back"`
}

// PersistedMatch is the full serializable snapshot of a match, written
// after every accepted intent. Restoring one resumes play from exactly
// that point; only the crit-roll stream position is lost, which restarts
// from the original seed.
type PersistedMatch struct {
	ID             string                    `json:"id"`
	Phase          Phase                     `json:"phase"`
	Players        map[Side]*PersistedPlayer `json:"players"`
	Active         Side                      `json:"active"`
	Round          int                       `json:"round"`
	Turn           int                       `json:"turn"`
	Winner         Side                      `json:"winner,omitempty"`
	Loser          Side                      `json:"loser,omitempty"`
	Rules          MatchRules                `json:"rules"`
	Seq            uint64                    `json:"seq"`
	Seed           int64                     `json:"seed"`
	Joined         map[Side]bool             `json:"joined"`
	ManualDrawTurn map[Side]int              `json:"manualDrawTurn,omitempty"`
	Effects        *effect.Export            `json:"effects"`
}

func persistCard(c *CardInstance) *PersistedCard {
	if c == nil {
		return nil
	}
	return &PersistedCard{
		ID:         c.ID,
		DefID:      c.Def.ID,
		Owner:      c.Owner,
		Controller: c.Controller,
		Health:     c.Health,
		MaxHealth:  c.MaxHealth,
		Attack:     c.Attack,
		Defense:    c.Defense,
		PA:         c.PA,
		Usage:      c.usageSnapshot(),
	}
}

func persistCards(cards []*CardInstance) []*PersistedCard {
	out := make([]*PersistedCard, 0, len(cards))
	for _, c := range cards {
		out = append(out, persistCard(c))
	}
	return out
}

func persistLine(line []*CardInstance) []*PersistedCard {
	out := make([]*PersistedCard, len(line))
	for i, c := range line {
		out[i] = persistCard(c)
	}
	return out
}

// Persist snapshots the match for durable storage. Callers hold the match
// lock.
func (m *Match) Persist() *PersistedMatch {
	p := &PersistedMatch{
		ID:             m.ID,
		Phase:          m.Phase,
		Players:        make(map[Side]*PersistedPlayer, 2),
		Active:         m.Active,
		Round:          m.Round,
		Turn:           m.Turn,
		Winner:         m.Winner,
		Loser:          m.Loser,
		Rules:          m.Rules,
		Seq:            m.seq,
		Seed:           m.seed,
		Joined:         make(map[Side]bool, 2),
		ManualDrawTurn: make(map[Side]int, 2),
		Effects:        m.Effects.Snapshot(),
	}
	for side, joined := range m.joined {
		p.Joined[side] = joined
	}
	for side, turn := range m.manualDrawTurn {
		p.ManualDrawTurn[side] = turn
	}
	for _, side := range []Side{SideA, SideB} {
		ps := m.Players[side]
		p.Players[side] = &PersistedPlayer{
			Side:        ps.Side,
			Name:        ps.Name,
			Health:      ps.Health,
			MaxHealth:   ps.MaxHealth,
			Defense:     ps.Defense,
			Resource:    ps.Resource,
			MaxResource: ps.MaxResource,
			Hand:        persistCards(ps.Hand),
			Deck:        persistCards(ps.Deck),
			Graveyard:   persistCards(ps.Graveyard),
			Front:       persistLine(ps.Front[:]),
			Back:        persistLine(ps.Back[:]),
		}
	}
	return p
}

func restoreCard(pc *PersistedCard) (*CardInstance, error) {
	if pc == nil {
		return nil, nil
	}
	def, err := catalog.Lookup(pc.DefID)
	if err != nil {
		return nil, err
	}
	usage := pc.Usage
	if usage == nil {
		usage = make(map[int]map[ActionKind]int)
	}
	return &CardInstance{
		ID:         pc.ID,
		Def:        def,
		Owner:      pc.Owner,
		Controller: pc.Controller,
		Health:     pc.Health,
		MaxHealth:  pc.MaxHealth,
		Attack:     pc.Attack,
		Defense:    pc.Defense,
		PA:         pc.PA,
		usage:      usage,
	}, nil
}

func restoreCards(pcs []*PersistedCard) ([]*CardInstance, error) {
	out := make([]*CardInstance, 0, len(pcs))
	for _, pc := range pcs {
		c, err := restoreCard(pc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// RestoreMatch rebuilds a live match from a persisted snapshot.
func RestoreMatch(p *PersistedMatch) (*Match, error) {
	if p == nil {
		return nil, fmt.Errorf("nil match snapshot")
	}
	m := &Match{
		ID:      p.ID,
		Phase:   p.Phase,
		Players: make(map[Side]*PlayerState, 2),
		Active:  p.Active,
		Round:   p.Round,
		Turn:    p.Turn,
		Winner:  p.Winner,
		Loser:   p.Loser,
		Rules:   p.Rules,
		Effects: effect.Restore(p.Effects),
		seq:     p.Seq,
		seed:    p.Seed,
		rng:     rand.New(rand.NewSource(p.Seed)),
		joined:  make(map[Side]bool, 2),

		manualDrawTurn: make(map[Side]int, 2),
	}
	for side, joined := range p.Joined {
		m.joined[side] = joined
	}
	for side, turn := range p.ManualDrawTurn {
		m.manualDrawTurn[side] = turn
	}

	for _, side := range []Side{SideA, SideB} {
		pp, ok := p.Players[side]
		if !ok {
			return nil, fmt.Errorf("snapshot missing side %s", side)
		}
		ps := &PlayerState{
			Side:        pp.Side,
			Name:        pp.Name,
			Health:      pp.Health,
			MaxHealth:   pp.MaxHealth,
			Defense:     pp.Defense,
			Resource:    pp.Resource,
			MaxResource: pp.MaxResource,
		}
		var err error
		if ps.Hand, err = restoreCards(pp.Hand); err != nil {
			return nil, fmt.Errorf("side %s hand: %w", side, err)
		}
		if ps.Deck, err = restoreCards(pp.Deck); err != nil {
			return nil, fmt.Errorf("side %s deck: %w", side, err)
		}
		if ps.Graveyard, err = restoreCards(pp.Graveyard); err != nil {
			return nil, fmt.Errorf("side %s graveyard: %w", side, err)
		}
		for i := 0; i < SlotsPerRow && i < len(pp.Front); i++ {
			c, err := restoreCard(pp.Front[i])
			if err != nil {
				return nil, fmt.Errorf("side %s front: %w", side, err)
			}
			ps.Front[i] = c
		}
		for i := 0; i < SlotsPerRow && i < len(pp.Back); i++ {
			c, err := restoreCard(pp.Back[i])
			if err != nil {
				return nil, fmt.Errorf("side %s back: %w", side, err)
			}
			ps.Back[i] = c
		}
		m.Players[side] = ps
	}

	return m, nil
}

// AdoptMatch inserts a restored match into the engine's live set so play
// can resume after a restart.
func (e *Engine) AdoptMatch(m *Match) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.matches[m.ID]; exists {
		return fmt.Errorf("match %s already live", m.ID)
	}
	e.matches[m.ID] = m
	return nil
}
