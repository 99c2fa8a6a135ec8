package game

import (
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// This file contains the ASCII map rendering used by the headless runner.

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorBlue  = "\033[34m"
	ColorWhite = "\033[37m"
	ColorGray  = "\033[90m"
)

var sideColors = map[core.Side]string{
	core.Side0: ColorRed,
	core.Side1: ColorBlue,
}

const (
	FortSymbol    = "F"
	TowerSymbol   = "T"
	SoldierSymbol = "S"
	EmptySymbol   = "·"
	HiddenSymbol  = "?"
)

// Board returns a colored text rendering of the map as seen by viewer.
// core.NoSide renders the whole map without fog.
func (e *Engine) Board(viewer core.Side) string {
	g := e.gs.Grid
	width, height := g.Width(), g.Height()

	var visible core.PositionSet
	if viewer.Valid() {
		visible = core.VisibleBy(g, viewer)
	}

	var sb strings.Builder
	sb.Grow((width*12+8)*(height+3) + 100)

	sb.WriteString("   ")
	for x := 0; x < width; x++ {
		sb.WriteString(strconv.Itoa(x % 10))
		sb.WriteString(" ")
	}
	sb.WriteString("\n")

	for y := 0; y < height; y++ {
		if y < 10 {
			sb.WriteString(" ")
		}
		sb.WriteString(strconv.Itoa(y))
		sb.WriteString(" ")
		for x := 0; x < width; x++ {
			pos := core.NewCoordinate(x, y)
			tile, err := g.TileAt(pos)
			if err != nil {
				sb.WriteString("  ")
				continue
			}
			if visible != nil && !visible.Contains(pos) {
				writeCell(&sb, ColorGray, HiddenSymbol)
				continue
			}
			color, symbol := tileDisplay(tile)
			writeCell(&sb, color, symbol)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(FortSymbol + "=fort " + TowerSymbol + "=tower " + SoldierSymbol + "=soldier ")
	sb.WriteString(EmptySymbol + "=empty " + HiddenSymbol + "=hidden\n")
	return sb.String()
}

func writeCell(sb *strings.Builder, color, symbol string) {
	sb.WriteString(color)
	sb.WriteString(symbol)
	sb.WriteString(ColorReset)
	sb.WriteString(" ")
}

// tileDisplay shows the most important occupant: a fort, else a tower,
// else a soldier
func tileDisplay(t *core.Tile) (string, string) {
	occupants := t.Occupants()
	for _, kind := range []core.UnitKind{core.KindFort, core.KindTower, core.KindSoldier} {
		for _, u := range occupants {
			if u.Kind == kind {
				return sideColor(u.Side), kindSymbol(kind)
			}
		}
	}
	return ColorGray, EmptySymbol
}

func kindSymbol(k core.UnitKind) string {
	switch k {
	case core.KindFort:
		return FortSymbol
	case core.KindTower:
		return TowerSymbol
	default:
		return SoldierSymbol
	}
}

func sideColor(side core.Side) string {
	if c, ok := sideColors[side]; ok {
		return c
	}
	return ColorWhite
}
