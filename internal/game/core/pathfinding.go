package core

import (
	"container/heap"
	"fmt"
)

type pathNode struct {
	pos  Coordinate
	cost int
	f    int
	seq  int
}

// frontier is a min-heap on f, ties broken by insertion sequence so equal
// inputs always yield the same path.
type frontier []pathNode

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *frontier) Push(x any)   { *q = append(*q, x.(pathNode)) }
func (q *frontier) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// ShortestPath runs A* over the lane graph with unit step cost and the
// Manhattan heuristic. The result excludes from and includes to; it is
// empty when from == to.
func ShortestPath(g *Grid, from, to Coordinate) ([]Coordinate, error) {
	if !g.IsValid(from) {
		return nil, fmt.Errorf("path start: %w: %s", ErrTileNotFound, from)
	}
	if !g.IsValid(to) {
		return nil, fmt.Errorf("path end: %w: %s", ErrTileNotFound, to)
	}
	if from == to {
		return nil, nil
	}

	cameFrom := map[Coordinate]Coordinate{}
	costSoFar := map[Coordinate]int{from: 0}
	seq := 0
	open := &frontier{{pos: from, cost: 0, f: from.DistanceTo(to), seq: seq}}

	found := false
	for open.Len() > 0 {
		current := heap.Pop(open).(pathNode)
		if current.cost > costSoFar[current.pos] {
			continue // stale entry
		}
		if current.pos == to {
			found = true
			break
		}
		for _, next := range g.NeighborPositions(current.pos) {
			newCost := current.cost + 1
			if old, seen := costSoFar[next]; seen && newCost >= old {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = current.pos
			seq++
			heap.Push(open, pathNode{pos: next, cost: newCost, f: newCost + next.DistanceTo(to), seq: seq})
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnreachable, from, to)
	}

	path := make([]Coordinate, costSoFar[to])
	for at, i := to, len(path)-1; at != from; at, i = cameFrom[at], i-1 {
		path[i] = at
	}
	return path, nil
}

// PathTiles resolves ShortestPath between two tiles into tiles.
func PathTiles(g *Grid, from, to *Tile) ([]*Tile, error) {
	if from == nil || to == nil {
		return nil, ErrTileNotFound
	}
	positions, err := ShortestPath(g, from.Pos, to.Pos)
	if err != nil {
		return nil, err
	}
	tiles := make([]*Tile, 0, len(positions))
	for _, p := range positions {
		t, err := g.TileAt(p)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// PathDistance returns the number of lane steps between two positions.
func PathDistance(g *Grid, from, to Coordinate) (int, error) {
	path, err := ShortestPath(g, from, to)
	if err != nil {
		return 0, err
	}
	return len(path), nil
}
