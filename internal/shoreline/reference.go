package shoreline

import (
	"math"

	"github.com/bbernstein/shorewatch/internal/models"
	"gonum.org/v1/gonum/spatial/r2"
)

// FilterByReference keeps the shoreline points lying within maxDist of the
// reference shoreline polyline. A zero maxDist or an empty reference returns
// the points unchanged. Cost is O(points * reference segments).
func FilterByReference(points, reference []models.Point, maxDist float64) []models.Point {
	if maxDist <= 0 || len(reference) == 0 {
		return points
	}

	kept := make([]models.Point, 0, len(points))
	for _, p := range points {
		if distanceToPolyline(p, reference) <= maxDist {
			kept = append(kept, p)
		}
	}
	return kept
}

// FilterObservationsByReference applies FilterByReference to every observation.
// Malformed observations are passed through untouched so the engine reports them.
func FilterObservationsByReference(observations []models.Observation, reference []models.Point, maxDist float64) []models.Observation {
	if maxDist <= 0 || len(reference) == 0 {
		return observations
	}

	out := make([]models.Observation, len(observations))
	for i, o := range observations {
		points, err := o.Shoreline()
		if err != nil {
			out[i] = o
			continue
		}
		kept := FilterByReference(points, reference, maxDist)
		coords := make([][]float64, len(kept))
		for k, p := range kept {
			coords[k] = []float64{p.X, p.Y}
		}
		o.Points = coords
		out[i] = o
	}
	return out
}

func distanceToPolyline(p models.Point, line []models.Point) float64 {
	if len(line) == 1 {
		return p.Distance(line[0])
	}
	best := math.Inf(1)
	for i := 1; i < len(line); i++ {
		if d := distanceToSegment(p, line[i-1], line[i]); d < best {
			best = d
		}
	}
	return best
}

func distanceToSegment(p, a, b models.Point) float64 {
	ab := b.Sub(a)
	lenSq := r2.Norm2(ab)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := r2.Dot(p.Sub(a), ab) / lenSq
	t = math.Max(0, math.Min(1, t))
	closest := models.PointFromVec(r2.Add(a.Vec(), r2.Scale(t, ab)))
	return p.Distance(closest)
}
