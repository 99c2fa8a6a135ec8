package game

import (
	"github.com/mitchelldurbincs/mobai/internal/config"
	"github.com/mitchelldurbincs/mobai/internal/game/core"
)

// Map layout functions
func MapWidth() int {
	return config.Get().Game.Map.Width
}

func MapHeight() int {
	return config.Get().Game.Map.Height
}

func MapRatio() core.Ratio {
	m := config.Get().Game.Map
	return core.Ratio{X: m.RatioX, Y: m.RatioY}
}

// Turn rule functions
func SpawnInterval() int {
	return config.Get().Game.Spawn.Interval
}

func SpawnCount() int {
	return config.Get().Game.Spawn.Count
}

func ActionPointsPerTurn() int {
	return config.Get().Game.ActionPoints
}

// UnitStats returns the configured base stats of every unit kind
func UnitStats() map[core.UnitKind]core.Stats {
	u := config.Get().Game.Units
	toStats := func(s config.UnitStatsConfig) core.Stats {
		return core.Stats{Health: s.Health, Vision: s.Vision, Hit: s.Hit, Attack: s.Attack}
	}
	return map[core.UnitKind]core.Stats{
		core.KindTower:   toStats(u.Tower),
		core.KindFort:    toStats(u.Fort),
		core.KindSoldier: toStats(u.Soldier),
	}
}
