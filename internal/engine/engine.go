package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// attackCost is the action point price of a basic attack.
const attackCost = 1

// manualDrawCost is the resource pool price of an optional extra draw.
const manualDrawCost = 1

// MatchStore persists full match state between process restarts. The
// engine writes the complete snapshot after every accepted intent; a
// reloaded record resumes directly into the turn controller.
type MatchStore interface {
	Save(ctx context.Context, p *PersistedMatch) error
	Delete(ctx context.Context, matchID string) error
}

// IntentResult is everything an accepted intent produced: the event stream
// and one fresh snapshot per side.
type IntentResult struct {
	Events []Event
	Views  map[Side]*MatchView
}

// Engine owns every live match. Matches are independent: each carries its
// own lock, so intents for different matches resolve fully in parallel
// while intents within one match are strictly serialized.
type Engine struct {
	logger  *zap.Logger
	mu      sync.RWMutex
	matches map[string]*Match
	store   MatchStore
	rules   MatchRules
}

// NewEngine creates an engine with no live matches.
func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{
		logger:  logger,
		matches: make(map[string]*Match),
		rules:   DefaultRules(),
	}
}

// SetDefaultRules overrides the ruleset applied to bootstraps that carry
// none of their own.
func (e *Engine) SetDefaultRules(rules MatchRules) {
	if rules.StartingHealth > 0 {
		e.rules = rules
	}
}

// SetStore attaches an optional durable match store.
func (e *Engine) SetStore(store MatchStore) {
	e.store = store
}

// CreateMatch bootstraps a new match from a lobby request.
func (e *Engine) CreateMatch(b Bootstrap) (*Match, error) {
	if b.Rules.StartingHealth == 0 {
		b.Rules = e.rules
	}
	m, err := NewMatch(b)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.matches[m.ID]; exists {
		return nil, reject(ReasonMalformed, "match %s already exists", m.ID)
	}
	e.matches[m.ID] = m

	e.logger.Info("match created",
		zap.String("match_id", m.ID),
		zap.String("side_a", m.Players[SideA].Name),
		zap.String("side_b", m.Players[SideB].Name),
	)
	return m, nil
}

// match looks up a live match.
func (e *Engine) match(matchID string) (*Match, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	m, ok := e.matches[matchID]
	if !ok {
		return nil, reject(ReasonMatchNotFound, "match %s not found", matchID)
	}
	return m, nil
}

// Join registers a participant connection. When the second side joins, the
// match starts: side A's first turn begins and both sides receive their
// opening snapshot.
func (e *Engine) Join(ctx context.Context, matchID string, side Side) (*IntentResult, error) {
	m, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, reject(ReasonNotParticipant, "unknown side %q", side)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var events []Event
	if m.MarkJoined(side) {
		events = append(events, Event{Type: EventMatchStarted, Turn: m.Turn, Round: m.Round})
		events = append(events, m.startTurn(SideA)...)
		m.seq++
		e.logger.Info("match started", zap.String("match_id", m.ID))
	}

	result := &IntentResult{Events: events, Views: m.bothViews()}
	e.persist(ctx, m)
	return result, nil
}

// Resync returns the latest authoritative snapshot for one side, atomically
// with respect to intent processing. Two resyncs with no intervening
// mutation return identical snapshots.
func (e *Engine) Resync(matchID string, side Side) (*MatchView, error) {
	m, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, reject(ReasonNotParticipant, "unknown side %q", side)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewFor(side), nil
}

// HandleIntent validates and applies one player intent. Rejections leave
// the match untouched and are reported only to the issuer; accepted
// intents mutate state, bump the sequence number, and produce fresh
// snapshots for both sides atomically.
func (e *Engine) HandleIntent(ctx context.Context, matchID string, side Side, intent Intent) (*IntentResult, error) {
	m, err := e.match(matchID)
	if err != nil {
		return nil, err
	}
	if !side.Valid() {
		return nil, reject(ReasonNotParticipant, "unknown side %q", side)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.Phase {
	case PhaseFinished:
		return nil, reject(ReasonMatchOver, "match already decided")
	case PhaseWaitingForPlayers:
		return nil, reject(ReasonNotStarted, "waiting for both players")
	}
	if side != m.Active {
		return nil, reject(ReasonNotYourTurn, "side %s is active", m.Active)
	}

	var events []Event
	switch intent.Type {
	case IntentPlayCard:
		events, err = m.applyPlayCard(side, intent)
	case IntentAttack:
		events, err = m.applyAttack(side, intent)
	case IntentUseSkill:
		events, err = m.applyAbility(side, intent, ActionSkill)
	case IntentUseUltimate:
		events, err = m.applyAbility(side, intent, ActionUltimate)
	case IntentDrawCard:
		events, err = m.applyManualDraw(side)
	case IntentEndTurn:
		events = m.endTurn(side)
	default:
		err = reject(ReasonMalformed, "unknown intent type %q", intent.Type)
	}
	if err != nil {
		return nil, err
	}

	if m.Phase == PhaseFinished {
		events = append(events, Event{Type: EventGameOver, Winner: m.Winner, Loser: m.Loser})
	}

	m.seq++
	result := &IntentResult{Events: events, Views: m.bothViews()}
	e.persist(ctx, m)

	e.logger.Debug("intent applied",
		zap.String("match_id", m.ID),
		zap.String("side", string(side)),
		zap.String("intent", string(intent.Type)),
		zap.Uint64("seq", m.seq),
	)
	return result, nil
}

// bothViews renders both recipients' snapshots. Callers hold the match
// lock.
func (m *Match) bothViews() map[Side]*MatchView {
	return map[Side]*MatchView{
		SideA: m.viewFor(SideA),
		SideB: m.viewFor(SideB),
	}
}

// persist writes the match snapshot to the durable store when one is
// configured; a write failure never fails the intent.
func (e *Engine) persist(ctx context.Context, m *Match) {
	if e.store == nil {
		return
	}
	if err := e.store.Save(ctx, m.Persist()); err != nil {
		e.logger.Warn("failed to persist match",
			zap.String("match_id", m.ID),
			zap.Error(err),
		)
	}
}

// applyPlayCard summons a card from the hand onto an own empty slot.
func (m *Match) applyPlayCard(side Side, intent Intent) ([]Event, error) {
	ps := m.player(side)
	if intent.HandIndex < 0 || intent.HandIndex >= len(ps.Hand) {
		return nil, reject(ReasonMalformed, "hand index %d out of range", intent.HandIndex)
	}
	if intent.To == nil {
		return nil, reject(ReasonMalformed, "a destination slot is required")
	}
	if intent.To.Slot < 0 || intent.To.Slot >= SlotsPerRow {
		return nil, reject(ReasonMalformed, "slot %d out of range", intent.To.Slot)
	}
	card := ps.Hand[intent.HandIndex]
	if ps.Resource < card.Def.Cost {
		return nil, reject(ReasonInsufficientPI, "%s costs %d, pool has %d", card.Def.ID, card.Def.Cost, ps.Resource)
	}
	if ps.CardAt(intent.To.Row, intent.To.Slot) != nil {
		return nil, reject(ReasonSlotOccupied, "slot %s/%d is occupied", intent.To.Row, intent.To.Slot)
	}

	ps.RemoveFromHand(intent.HandIndex)
	ps.SpendResource(card.Def.Cost)
	if err := m.placeOnBoard(side, intent.To.Row, intent.To.Slot, card); err != nil {
		return nil, reject(ReasonSlotOccupied, "%v", err)
	}

	return []Event{{
		Type: EventSummon, Side: side,
		CardID: card.ID, DefID: card.Def.ID,
		Row: intent.To.Row, Slot: intent.To.Slot,
	}}, nil
}

// applyAttack resolves a basic attack (×1 power) from an own board card
// onto an enemy slot or, when the defending front row is empty, straight
// onto the enemy life total.
func (m *Match) applyAttack(side Side, intent Intent) ([]Event, error) {
	attacker, err := m.sourceCard(side, intent.From)
	if err != nil {
		return nil, err
	}
	if intent.Target == nil {
		return nil, reject(ReasonMalformed, "a target is required")
	}
	if attacker.PA < attackCost {
		return nil, reject(ReasonInsufficientPA, "attack needs %d PA", attackCost)
	}
	if attacker.UsageCount(m.Turn, actionAttack) >= 1 {
		return nil, reject(ReasonUsageLimit, "already attacked this turn")
	}

	target := intent.Target
	if !target.Player {
		if target.Side == side {
			return nil, reject(ReasonIllegalTarget, "cannot attack own side")
		}
		if target.Row == RowBack && !m.canReachBackRow(attacker, target.Side) {
			return nil, reject(ReasonBackRowProtected, "back row is protected by the front row")
		}
		if m.player(target.Side).CardAt(target.Row, target.Slot) == nil {
			return nil, reject(ReasonEmptySlot, "no card at %s/%d", target.Row, target.Slot)
		}
	} else {
		if target.Side == side {
			return nil, reject(ReasonIllegalTarget, "cannot attack own side")
		}
		if !m.player(target.Side).FrontEmpty() {
			return nil, reject(ReasonIllegalTarget, "the front row still protects the player")
		}
	}

	attacker.SpendPA(attackCost)
	attacker.MarkUsage(m.Turn, actionAttack)

	var res *StrikeResult
	if target.Player {
		res = m.resolveStrikePlayer(attacker, target.Side, StrikeOptions{AllowCrit: true})
	} else {
		res, err = m.resolveStrike(attacker, target.Side, target.Row, target.Slot, StrikeOptions{AllowCrit: true})
		if err != nil {
			attacker.GainPA(attackCost)
			attacker.RefundUsage(m.Turn, actionAttack)
			return nil, err
		}
	}

	m.checkWin()
	events := []Event{{Type: EventAttack, Side: side, CardID: attacker.ID, DefID: attacker.Def.ID, Strike: res}}
	if len(res.Deaths) > 0 {
		events = append(events, Event{Type: EventDeaths, Deaths: res.Deaths})
	}
	return events, nil
}

// applyAbility dispatches a skill or ultimate through the ability registry.
func (m *Match) applyAbility(side Side, intent Intent, kind ActionKind) ([]Event, error) {
	card, err := m.sourceCard(side, intent.From)
	if err != nil {
		return nil, err
	}
	outcome, err := m.dispatchAbility(card, kind, intent.Target)
	if err != nil {
		return nil, err
	}

	events := []Event{{
		Type: EventAbility, Side: side,
		CardID: card.ID, DefID: card.Def.ID,
		AbilityID: outcome.AbilityID, Summary: outcome.Summary,
		Strike: outcome.Strike,
	}}
	if outcome.Strike != nil && len(outcome.Strike.Deaths) > 0 {
		events = append(events, Event{Type: EventDeaths, Deaths: outcome.Strike.Deaths})
	}
	return events, nil
}

// applyManualDraw performs an optional extra draw, once per turn, paid
// from the resource pool.
func (m *Match) applyManualDraw(side Side) ([]Event, error) {
	ps := m.player(side)
	if m.manualDrawTurn[side] == m.Turn {
		return nil, reject(ReasonUsageLimit, "already drew manually this turn")
	}
	if ps.Resource < manualDrawCost {
		return nil, reject(ReasonInsufficientPI, "manual draw costs %d", manualDrawCost)
	}
	if len(ps.Deck) == 0 {
		return nil, reject(ReasonEmptySource, "deck is empty")
	}

	ps.SpendResource(manualDrawCost)
	m.manualDrawTurn[side] = m.Turn
	card := ps.Draw()
	return []Event{{
		Type: EventDraw, Side: side,
		CardID: card.ID, DefID: card.Def.ID, Amount: 1, Hidden: true,
	}}, nil
}

// sourceCard resolves an intent's From reference to an own board card.
func (m *Match) sourceCard(side Side, from *SlotRef) (*CardInstance, error) {
	if from == nil {
		return nil, reject(ReasonMalformed, "a source slot is required")
	}
	if from.Slot < 0 || from.Slot >= SlotsPerRow {
		return nil, reject(ReasonMalformed, "slot %d out of range", from.Slot)
	}
	card := m.player(side).CardAt(from.Row, from.Slot)
	if card == nil {
		return nil, reject(ReasonEmptySource, "no card at %s/%d", from.Row, from.Slot)
	}
	return card, nil
}
