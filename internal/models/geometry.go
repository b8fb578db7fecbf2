package models

import "gonum.org/v1/gonum/spatial/r2"

// Point is a coordinate in a projected (planar) reference system
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec returns the point as a gonum planar vector
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func PointFromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Sub returns the offset from o to p
func (p Point) Sub(o Point) r2.Vec {
	return r2.Sub(p.Vec(), o.Vec())
}

// Distance is the Euclidean distance between two points
func (p Point) Distance(o Point) float64 {
	return r2.Norm(p.Sub(o))
}

// PointFromSlice converts a raw coordinate tuple; ok is false unless the tuple is 2D.
func PointFromSlice(coords []float64) (Point, bool) {
	if len(coords) != 2 {
		return Point{}, false
	}
	return Point{X: coords[0], Y: coords[1]}, true
}
