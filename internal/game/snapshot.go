package game

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// Snapshot is the complete serializable state of a game between turns.
// Units are listed in evaluation order so that restoring them reproduces
// each tile's occupant order.
type Snapshot struct {
	GameID    string         `json:"game_id"`
	Turn      int            `json:"turn"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	RatioX    int            `json:"ratio_x"`
	RatioY    int            `json:"ratio_y"`
	TurnBegun bool           `json:"turn_begun"`
	Finished  bool           `json:"finished"`
	Winner    int            `json:"winner"`
	Units     []UnitSnapshot `json:"units"`
}

// UnitSnapshot is one unit inside a Snapshot
type UnitSnapshot struct {
	ID           string         `json:"id"`
	Kind         string         `json:"kind"`
	Side         int            `json:"side"`
	PosX         int            `json:"posx"`
	PosY         int            `json:"posy"`
	Health       int            `json:"health"`
	Vision       int            `json:"vision"`
	Hit          int            `json:"hit"`
	Attack       int            `json:"attack"`
	ActionPoints int            `json:"action_points"`
	TargetUnit   string         `json:"target_unit,omitempty"`
	TargetTile   *PositionView  `json:"target_tile,omitempty"`
	Path         []PositionView `json:"path,omitempty"`
}

// Snapshot captures the game state. It is refused while a turn is being
// evaluated.
func (e *Engine) Snapshot() (*Snapshot, error) {
	if e.evaluating {
		return nil, core.WrapGameStateError(e.gs.Turn, "snapshot", ErrMidTurnSnapshot)
	}
	if phase := e.stateMachine.CurrentPhase(); !phase.CanSnapshot() {
		return nil, core.WrapGameStateError(e.gs.Turn, "snapshot", fmt.Errorf("%w: phase %s", ErrNotRunning, phase))
	}

	g := e.gs.Grid
	ratio := g.Ratio()
	snap := &Snapshot{
		GameID:    e.gameID,
		Turn:      e.gs.Turn,
		Width:     g.Width(),
		Height:    g.Height(),
		RatioX:    ratio.X,
		RatioY:    ratio.Y,
		TurnBegun: e.turnBegun,
		Finished:  e.gs.Finished,
		Winner:    int(core.NoSide),
	}
	if e.gs.HasWinner {
		snap.Winner = int(e.gs.Winner)
	}

	units := g.Units()
	snap.Units = make([]UnitSnapshot, 0, len(units))
	for _, u := range units {
		pos, _ := g.PositionOf(u)
		us := UnitSnapshot{
			ID:           string(u.ID),
			Kind:         u.Kind.String(),
			Side:         int(u.Side),
			PosX:         pos.X,
			PosY:         pos.Y,
			Health:       u.Health,
			Vision:       u.Vision,
			Hit:          u.Hit,
			Attack:       u.Attack,
			ActionPoints: u.ActionPoints,
		}
		if target := u.TargetUnit(); target != nil {
			us.TargetUnit = string(target.ID)
		}
		if tile := u.TargetTile(); tile != nil {
			us.TargetTile = &PositionView{PosX: tile.Pos.X, PosY: tile.Pos.Y}
		}
		for _, step := range u.Path() {
			us.Path = append(us.Path, PositionView{PosX: step.Pos.X, PosY: step.Pos.Y})
		}
		snap.Units = append(snap.Units, us)
	}
	return snap, nil
}

// MarshalSnapshot encodes a snapshot as JSON
func MarshalSnapshot(snap *Snapshot) ([]byte, error) {
	return json.Marshal(snap)
}

// UnmarshalSnapshot decodes a snapshot produced by MarshalSnapshot
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return &snap, nil
}

// RestoreEngine rebuilds an engine from snap. Map dimensions, game id and
// turn come from the snapshot; spawn settings, action points, logger, id
// source and event bus come from cfg. The id source must not reissue ids
// already present in the snapshot.
func RestoreEngine(ctx context.Context, cfg GameConfig, snap *Snapshot) (*Engine, error) {
	if snap == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	cfg.GameID = snap.GameID
	cfg.Width = snap.Width
	cfg.Height = snap.Height
	cfg.Ratio = core.Ratio{X: snap.RatioX, Y: snap.RatioY}

	ei := NewEngineInitializer(cfg)
	if err := ei.setupDefaults(); err != nil {
		return nil, err
	}

	grid, err := core.NewGrid(snap.Width, snap.Height, ei.config.Ratio)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if err := restoreUnits(grid, snap.Units); err != nil {
		return nil, err
	}

	gs := newGameState(grid, snap.Turn)
	engine := ei.createEngine(gs)
	engine.turnBegun = snap.TurnBegun
	engine.updateFogOfWar()
	if snap.TurnBegun {
		engine.validator.SetTurn(snap.Turn)
	}

	if err := ei.initializeStateMachine(engine); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}
	if snap.Finished {
		if err := engine.checkGameOver(ei.logger); err != nil {
			return nil, err
		}
		if !engine.gs.Finished {
			return nil, fmt.Errorf("%w: marked finished but both sides have units", ErrInvalidSnapshot)
		}
	}

	ei.logger.Info().
		Int("turn", snap.Turn).
		Int("units", len(snap.Units)).
		Bool("turn_begun", snap.TurnBegun).
		Msg("Engine restored from snapshot")
	return engine, nil
}

// restoreUnits places every unit first, then resolves targets and paths
// which may reference units placed later
func restoreUnits(grid *core.Grid, units []UnitSnapshot) error {
	placed := make(map[core.UnitID]*core.Unit, len(units))
	for i, us := range units {
		kind, err := core.ParseUnitKind(us.Kind)
		if err != nil {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalidSnapshot, i, err)
		}
		side := core.Side(us.Side)
		if !side.Valid() {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalidSnapshot, i, core.ErrInvalidSide)
		}
		id := core.UnitID(us.ID)
		if _, dup := placed[id]; dup || id == "" {
			return fmt.Errorf("%w: unit %d: missing or duplicate id %q", ErrInvalidSnapshot, i, us.ID)
		}

		u := core.NewUnit(id, kind, side, core.Stats{
			Health: us.Health,
			Vision: us.Vision,
			Hit:    us.Hit,
			Attack: us.Attack,
		})
		u.ActionPoints = us.ActionPoints
		if err := grid.Place(u, core.NewCoordinate(us.PosX, us.PosY)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
		placed[id] = u
	}

	for i, us := range units {
		u := placed[core.UnitID(us.ID)]
		target, err := restoreTarget(grid, placed, us)
		if err != nil {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalidSnapshot, i, err)
		}
		path, err := restorePath(grid, u, us.Path)
		if err != nil {
			return fmt.Errorf("%w: unit %d: %v", ErrInvalidSnapshot, i, err)
		}
		if err := u.Restore(target, path); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
		}
	}
	return nil
}

func restoreTarget(grid *core.Grid, placed map[core.UnitID]*core.Unit, us UnitSnapshot) (core.Target, error) {
	switch {
	case us.TargetUnit != "" && us.TargetTile != nil:
		return core.Target{}, fmt.Errorf("both unit and tile target set")
	case us.TargetUnit != "":
		target, ok := placed[core.UnitID(us.TargetUnit)]
		if !ok {
			return core.Target{}, fmt.Errorf("target unit %q not in snapshot", us.TargetUnit)
		}
		return core.Target{Unit: target}, nil
	case us.TargetTile != nil:
		tile, err := grid.TileAt(core.NewCoordinate(us.TargetTile.PosX, us.TargetTile.PosY))
		if err != nil {
			return core.Target{}, err
		}
		return core.Target{Tile: tile}, nil
	}
	return core.Target{}, nil
}

func restorePath(grid *core.Grid, u *core.Unit, steps []PositionView) ([]*core.Tile, error) {
	prev := grid.TileOf(u)
	path := make([]*core.Tile, 0, len(steps))
	for _, step := range steps {
		tile, err := grid.TileAt(core.NewCoordinate(step.PosX, step.PosY))
		if err != nil {
			return nil, err
		}
		if !grid.IsNeighbor(prev, tile) {
			return nil, fmt.Errorf("%w: %s -> %s", core.ErrNotAdjacent, prev.Pos, tile.Pos)
		}
		path = append(path, tile)
		prev = tile
	}
	return path, nil
}
