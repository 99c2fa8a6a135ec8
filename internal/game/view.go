package game

import (
	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// PlayerView is what one side is allowed to see of the game. Map is indexed
// [y][x]; a cell is nil when the position holds no tile or lies outside the
// side's fog-of-war, and an empty list for a visible tile without units.
type PlayerView struct {
	PlayerID int            `json:"player_id"`
	Turn     int            `json:"turn"`
	Finished bool           `json:"finished"`
	Winner   int            `json:"winner"`
	Map      [][][]UnitView `json:"map"`
}

// UnitView is the serialized form of a visible unit
type UnitView struct {
	ID           string          `json:"id"`
	PosX         int             `json:"posx"`
	PosY         int             `json:"posy"`
	Type         string          `json:"type"`
	Target       *TargetView     `json:"target"`
	Health       int             `json:"health"`
	Vision       int             `json:"vision"`
	Hit          int             `json:"hit"`
	Attack       int             `json:"attack"`
	ActionPoints int             `json:"action_points"`
	Player       int             `json:"player"`
	Path         *[]PositionView `json:"path,omitempty"`
}

// TargetView references a unit target by id and position, or a tile
// target by position only
type TargetView struct {
	ID   string `json:"id,omitempty"`
	PosX int    `json:"posx"`
	PosY int    `json:"posy"`
	Type string `json:"type,omitempty"`
}

// PositionView is one path step
type PositionView struct {
	PosX int `json:"posx"`
	PosY int `json:"posy"`
}

// StateFor builds the view of side from the current map
func (e *Engine) StateFor(side core.Side) (PlayerView, error) {
	if !side.Valid() {
		return PlayerView{}, core.WrapGameStateError(e.gs.Turn, "state for", core.ErrInvalidSide)
	}

	visible := core.VisibleBy(e.gs.Grid, side)
	view := PlayerView{
		PlayerID: int(side),
		Turn:     e.gs.Turn,
		Finished: e.gs.Finished,
		Winner:   int(core.NoSide),
		Map:      buildViewMap(e.gs.Grid, visible),
	}
	if winner, ok := e.Winner(); ok {
		view.Winner = int(winner)
	}
	return view, nil
}

func buildViewMap(g *core.Grid, visible core.PositionSet) [][][]UnitView {
	rows := make([][][]UnitView, g.Height())
	for y := range rows {
		rows[y] = make([][]UnitView, g.Width())
	}

	for _, tile := range g.Tiles() {
		if !visible.Contains(tile.Pos) {
			continue
		}
		occupants := tile.Occupants()
		cell := make([]UnitView, 0, len(occupants))
		for _, u := range occupants {
			cell = append(cell, newUnitView(g, tile.Pos, u))
		}
		rows[tile.Pos.Y][tile.Pos.X] = cell
	}
	return rows
}

func newUnitView(g *core.Grid, pos core.Coordinate, u *core.Unit) UnitView {
	uv := UnitView{
		ID:           string(u.ID),
		PosX:         pos.X,
		PosY:         pos.Y,
		Type:         u.Kind.String(),
		Health:       u.Health,
		Vision:       u.Vision,
		Hit:          u.Hit,
		Attack:       u.Attack,
		ActionPoints: u.ActionPoints,
		Player:       int(u.Side),
	}

	switch target := u.Target(); {
	case target.Unit != nil:
		tv := &TargetView{ID: string(target.Unit.ID), Type: target.Unit.Kind.String()}
		if tpos, ok := g.PositionOf(target.Unit); ok {
			tv.PosX, tv.PosY = tpos.X, tpos.Y
		}
		uv.Target = tv
	case target.Tile != nil:
		uv.Target = &TargetView{PosX: target.Tile.Pos.X, PosY: target.Tile.Pos.Y}
	}

	if u.IsMobile() {
		path := make([]PositionView, 0)
		for _, step := range u.Path() {
			path = append(path, PositionView{PosX: step.Pos.X, PosY: step.Pos.Y})
		}
		uv.Path = &path
	}
	return uv
}
