package analysis

import "sort"

// RankByNPV returns the points sorted by descending NPV. Ties keep the
// smaller installation first.
func RankByNPV(points []Point) []Point {
	out := make([]Point, len(points))
	copy(out, points)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Summary.NPV != out[j].Summary.NPV {
			return out[i].Summary.NPV > out[j].Summary.NPV
		}
		return out[i].Panels < out[j].Panels
	})
	return out
}

// Best is the highest-NPV point, or false for an empty sweep.
func Best(points []Point) (Point, bool) {
	if len(points) == 0 {
		return Point{}, false
	}
	return RankByNPV(points)[0], true
}
