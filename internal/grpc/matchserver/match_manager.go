package matchserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/mobai/internal/game"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
	"github.com/mitchelldurbincs/mobai/internal/game/orders"
	"github.com/mitchelldurbincs/mobai/internal/replay"
)

const (
	cleanupInterval       = 1 * time.Minute
	finishedMatchTTL      = 10 * time.Minute
	abandonedMatchTimeout = 30 * time.Minute
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrAtCapacity       = errors.New("server at capacity")
	ErrAlreadySubmitted = errors.New("side already submitted orders this turn")
)

// match is one running engine plus the per-turn bookkeeping of who has
// submitted. mu gives the engine exclusive access.
type match struct {
	mu           sync.Mutex
	id           string
	engine       *game.Engine
	submitted    map[core.Side]bool
	createdAt    time.Time
	lastActivity time.Time
}

// SubmitOutcome describes what a SubmitOrders call did
type SubmitOutcome struct {
	Result orders.Result
	// Turn the orders were applied to
	Turn int
	// Evaluated is set when this submission completed the turn
	Evaluated bool
	// CurrentTurn is the turn accepting orders after the call
	CurrentTurn int
	Finished    bool
	Winner      core.Side
}

// MatchManager owns every live match of the server
type MatchManager struct {
	mu         sync.RWMutex
	matches    map[string]*match
	maxMatches int
	store      replay.Store
	logger     zerolog.Logger
	newConfig  func() game.GameConfig
	now        func() time.Time
	onTurn     func(TurnNotice)
}

// TurnNotice is published after every evaluated turn
type TurnNotice struct {
	MatchID  string                       `json:"match_id"`
	Turn     int                          `json:"turn"`
	Finished bool                         `json:"finished"`
	Winner   int                          `json:"winner"`
	Stats    map[core.Side]game.SideStats `json:"stats"`
}

// NewMatchManager creates a manager holding at most maxMatches matches;
// zero means unlimited. store may be nil to disable recording.
func NewMatchManager(maxMatches int, store replay.Store, logger zerolog.Logger) *MatchManager {
	if store == nil {
		store = replay.NullStore{}
	}
	return &MatchManager{
		matches:    make(map[string]*match),
		maxMatches: maxMatches,
		store:      store,
		logger:     logger.With().Str("component", "MatchManager").Logger(),
		newConfig:  game.DefaultGameConfig,
		now:        time.Now,
	}
}

// CreateMatch starts a new engine with turn 0 begun
func (m *MatchManager) CreateMatch(ctx context.Context) (string, int, error) {
	m.mu.RLock()
	active := len(m.matches)
	m.mu.RUnlock()
	if m.maxMatches > 0 && active >= m.maxMatches {
		return "", 0, fmt.Errorf("%w: %d/%d matches active", ErrAtCapacity, active, m.maxMatches)
	}

	cfg := m.newConfig()
	cfg.GameID = uuid.NewString()
	cfg.Logger = m.logger

	engine, err := game.NewEngine(ctx, cfg)
	if err != nil {
		return "", 0, err
	}
	if err := engine.BeginTurn(); err != nil {
		return "", 0, err
	}

	if err := m.add(engine); err != nil {
		return "", 0, err
	}
	m.record(ctx, engine)

	m.logger.Info().Str("match_id", engine.GameID()).Msg("Match created")
	return engine.GameID(), engine.Turn(), nil
}

// ResumeMatch reloads a recorded match from the replay store. Orders
// submitted for the interrupted turn have to be sent again.
func (m *MatchManager) ResumeMatch(ctx context.Context, matchID string) (int, error) {
	if _, ok := m.get(matchID); ok {
		return 0, fmt.Errorf("resume %s: match already active", matchID)
	}

	cfg := m.newConfig()
	cfg.Logger = m.logger
	engine, err := replay.Restore(ctx, m.store, matchID, cfg)
	if err != nil {
		return 0, fmt.Errorf("resume %s: %w", matchID, err)
	}
	if !engine.TurnBegun() && !engine.IsGameOver() {
		if err := engine.BeginTurn(); err != nil {
			return 0, err
		}
	}

	if err := m.add(engine); err != nil {
		return 0, err
	}
	m.logger.Info().Str("match_id", matchID).Int("turn", engine.Turn()).Msg("Match resumed")
	return engine.Turn(), nil
}

func (m *MatchManager) add(engine *game.Engine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// re-check under the write lock; another create may have raced us
	if m.maxMatches > 0 && len(m.matches) >= m.maxMatches {
		return fmt.Errorf("%w: %d/%d matches active", ErrAtCapacity, len(m.matches), m.maxMatches)
	}
	now := m.now()
	m.matches[engine.GameID()] = &match{
		id:           engine.GameID(),
		engine:       engine,
		submitted:    make(map[core.Side]bool, len(core.Sides)),
		createdAt:    now,
		lastActivity: now,
	}
	return nil
}

func (m *MatchManager) get(matchID string) (*match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mt, ok := m.matches[matchID]
	return mt, ok
}

// SubmitOrders applies side's orders for the current turn. The second side
// to submit triggers evaluation and the next turn begins unless the game
// ended.
func (m *MatchManager) SubmitOrders(ctx context.Context, matchID string, side core.Side, raw []json.RawMessage) (SubmitOutcome, error) {
	mt, ok := m.get(matchID)
	if !ok {
		return SubmitOutcome{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.lastActivity = m.now()

	e := mt.engine
	if mt.submitted[side] {
		return SubmitOutcome{}, fmt.Errorf("%w: %s turn %d", ErrAlreadySubmitted, side, e.Turn())
	}

	out := SubmitOutcome{Turn: e.Turn(), Winner: core.NoSide}
	res, err := e.SubmitOrders(side, raw)
	if err != nil {
		return out, err
	}
	out.Result = res
	mt.submitted[side] = true

	if len(mt.submitted) == len(core.Sides) {
		if err := m.advance(ctx, mt); err != nil {
			return out, err
		}
		out.Evaluated = true
	}

	out.CurrentTurn = e.Turn()
	out.Finished = e.IsGameOver()
	if winner, ok := e.Winner(); ok {
		out.Winner = winner
	}
	return out, nil
}

// advance evaluates the current turn and begins the next one. Called with
// mt.mu held.
func (m *MatchManager) advance(ctx context.Context, mt *match) error {
	e := mt.engine
	if err := e.EvaluateTurn(); err != nil {
		return err
	}
	mt.submitted = make(map[core.Side]bool, len(core.Sides))

	if !e.IsGameOver() {
		if err := e.BeginTurn(); err != nil {
			return err
		}
	}
	m.record(ctx, e)

	m.mu.RLock()
	onTurn := m.onTurn
	m.mu.RUnlock()
	if onTurn != nil {
		notice := TurnNotice{
			MatchID:  mt.id,
			Turn:     e.Turn(),
			Finished: e.IsGameOver(),
			Winner:   int(core.NoSide),
			Stats:    e.SideStats(),
		}
		if winner, ok := e.Winner(); ok {
			notice.Winner = int(winner)
		}
		onTurn(notice)
	}

	m.logger.Debug().
		Str("match_id", mt.id).
		Int("turn", e.Turn()).
		Bool("finished", e.IsGameOver()).
		Msg("Turn advanced")
	return nil
}

// record writes a replay frame; failures are logged and never fail the match
func (m *MatchManager) record(ctx context.Context, e *game.Engine) {
	if _, disabled := m.store.(replay.NullStore); disabled {
		return
	}
	if err := replay.Record(ctx, m.store, e); err != nil {
		m.logger.Warn().Err(err).Str("match_id", e.GameID()).Msg("Failed to record replay frame")
	}
}

// State returns side's fog-filtered view of a match
func (m *MatchManager) State(matchID string, side core.Side) (game.PlayerView, error) {
	mt, ok := m.get(matchID)
	if !ok {
		return game.PlayerView{}, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.lastActivity = m.now()
	return mt.engine.StateFor(side)
}

// Board renders a match as text from viewer's side; core.NoSide shows
// everything
func (m *MatchManager) Board(matchID string, viewer core.Side) (string, error) {
	mt, ok := m.get(matchID)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()
	return mt.engine.Board(viewer), nil
}

// OnTurn sets the function called after every evaluated turn. It runs
// while the match is locked and must not block.
func (m *MatchManager) OnTurn(fn func(TurnNotice)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTurn = fn
}

// ActiveMatches reports the number of live matches
func (m *MatchManager) ActiveMatches() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.matches)
}

// SetMaxMatches changes the capacity limit; existing matches are kept
func (m *MatchManager) SetMaxMatches(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxMatches = n
}

// RunCleanup removes finished and abandoned matches until ctx is done.
// onRemove is called with the id of every removed match and may be nil.
func (m *MatchManager) RunCleanup(ctx context.Context, onRemove func(matchID string)) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for _, id := range m.cleanupMatches() {
				if onRemove != nil {
					onRemove(id)
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// cleanupMatches drops expired matches and returns their ids
func (m *MatchManager) cleanupMatches() []string {
	// Phase 1: collect references without holding the manager lock while
	// taking match locks
	m.mu.RLock()
	refs := make([]*match, 0, len(m.matches))
	for _, mt := range m.matches {
		refs = append(refs, mt)
	}
	m.mu.RUnlock()

	// Phase 2: check each match independently
	now := m.now()
	var toDelete []string
	for _, mt := range refs {
		mt.mu.Lock()
		inactive := now.Sub(mt.lastActivity)
		finished := mt.engine.IsGameOver()
		mt.mu.Unlock()

		reason := ""
		switch {
		case finished && inactive > finishedMatchTTL:
			reason = "finished match TTL expired"
		case inactive > abandonedMatchTimeout:
			reason = "match abandoned (no activity)"
		}
		if reason == "" {
			continue
		}

		toDelete = append(toDelete, mt.id)
		m.logger.Info().
			Str("match_id", mt.id).
			Str("reason", reason).
			Dur("age", now.Sub(mt.createdAt)).
			Dur("inactive", inactive).
			Msg("Cleaning up match")
	}

	if len(toDelete) == 0 {
		return nil
	}

	// Phase 3: remove with a single lock
	m.mu.Lock()
	for _, id := range toDelete {
		delete(m.matches, id)
	}
	remaining := len(m.matches)
	m.mu.Unlock()

	m.logger.Info().
		Int("cleaned", len(toDelete)).
		Int("remaining", remaining).
		Msg("Match cleanup completed")
	return toDelete
}
