package models

import "math"

// Grid bounds, inclusive on both ends.
const (
	MinCoord = 0
	MaxCoord = 100
)

// Position is an immutable point on the grid.
type Position struct {
	X, Y int
}

func InBounds(x, y int) bool {
	return x >= MinCoord && x <= MaxCoord && y >= MinCoord && y <= MaxCoord
}

// Distance computes the Euclidean distance between two positions.
func Distance(a, b Position) float64 {
	return math.Hypot(float64(b.X-a.X), float64(b.Y-a.Y))
}
