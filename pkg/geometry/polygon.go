package geometry

import "sort"

// ConvexHull returns the convex hull of the points in counter-clockwise
// order (monotone chain). Collinear points on the hull are dropped. Inputs
// with fewer than three points are returned as a copy.
func ConvexHull(points []Point2D) []Point2D {
	pts := make([]Point2D, len(points))
	copy(pts, points)
	if len(pts) < 3 {
		return pts
	}

	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	hull := make([]Point2D, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	// The last point repeats the first.
	return hull[:len(hull)-1]
}

// MaxDistance returns the largest distance of a point from center, or 0
// for no points.
func MaxDistance(center Point2D, points []Point2D) float64 {
	d := 0.0
	for _, p := range points {
		if dist := center.Distance(p); dist > d {
			d = dist
		}
	}
	return d
}

// cross is the z component of (a-o) x (b-o); positive for a left turn.
func cross(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
