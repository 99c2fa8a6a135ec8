package game

import "github.com/mitchelldurbincs/mobai/internal/game/core"

// This file contains per-side statistics derived from the map.

// SideStats summarizes what one side has on the map
type SideStats struct {
	Units       int `json:"units"`
	Soldiers    int `json:"soldiers"`
	Buildings   int `json:"buildings"`
	TotalHealth int `json:"total_health"`
}

// SideStats recalculates statistics for every side with a full scan
func (e *Engine) SideStats() map[core.Side]SideStats {
	stats := make(map[core.Side]SideStats, len(core.Sides))
	for _, side := range core.Sides {
		stats[side] = SideStats{}
	}

	for _, u := range e.gs.Grid.Units() {
		s := stats[u.Side]
		s.Units++
		if u.IsMobile() {
			s.Soldiers++
		} else {
			s.Buildings++
		}
		s.TotalHealth += u.Health
		stats[u.Side] = s
	}

	e.logger.Debug().
		Int("side0_units", stats[core.Side0].Units).
		Int("side1_units", stats[core.Side1].Units).
		Msg("Side stats updated")
	return stats
}
